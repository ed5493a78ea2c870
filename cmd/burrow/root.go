package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/0x6d61/burrow/internal/config"
)

// opts holds the raw flag destinations; flagsToConfig converts it to a
// *config.Config once cobra has parsed os.Args.
var opts struct {
	wordlist       string
	targets        []string
	extensions     []string
	methods        []string
	postBody       string
	statusCodes    []int
	replayCodes    []int
	filterStatus   []int
	filterSize     []int64
	filterLines    []int
	filterWords    []int
	filterRegex    []string
	filterSimilar  []string
	threads        int
	timeout        time.Duration
	depth          int
	scanLimit      int
	parallel       int
	rateLimit      int
	timeLimit      string
	proxy          string
	replayProxy    string
	headers        []string
	cookies        []string
	queries        []string
	verbosity      int
	quiet          bool
	silent         bool
	jsonOutput     bool
	addSlash       bool
	noRecursion    bool
	forceRecursion bool
	extractLinks   bool
	collectExt     bool
	collectExtAll  bool
	collectBackups bool
	collectWords   bool
	dontCollect    []string
	urlDenylist    []string
	insecure       bool
	redirects      bool
	autoBail       bool
	autoTune       bool
	saveState      bool
	resumeFrom     string
	stateFile      string
	outputPath     string
	scanDirListing bool
	requestFile    string
	protocol       string
	configFile     string
	dontFilter     bool
	interactive    bool
}

var rootCmd = &cobra.Command{
	Use:   "burrow [flags] <url>...",
	Short: "Recursive content-discovery scanner",
	Long: `burrow brute-forces directories and files on one or more web servers,
recursing into discovered directories, filtering wildcard/soft-404
responses, and adaptively backing off under heavy error or throttle
rates.`,
	Example: `  burrow -u https://target.local -w raft-small.txt
  burrow https://target.local --extensions php,html,js --threads 50
  burrow https://target.local --auto-tune --extract-links
  burrow --resume-from scan.state`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.ArbitraryArgs,
	PreRunE:       validateOpts,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts.targets = append(opts.targets, args...)
		cfg, err := flagsToConfig()
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	f := rootCmd.Flags()

	f.StringVarP(&opts.wordlist, "wordlist", "w", "", "Wordlist file path")
	f.StringSliceVarP(&opts.targets, "url", "u", nil, "Target URL (repeatable)")
	f.StringSliceVarP(&opts.extensions, "extensions", "x", nil, "Extensions to append (e.g. php,html,js)")
	f.StringSliceVarP(&opts.methods, "methods", "m", []string{"GET"}, "HTTP methods to try per word")
	f.StringVar(&opts.postBody, "data", "", "Body sent with non-GET methods")

	f.IntSliceVarP(&opts.statusCodes, "status-codes", "s", nil, "Status codes to report (default: 200,204,301,302,307,308,401,403,405)")
	f.IntSliceVar(&opts.replayCodes, "replay-codes", nil, "Status codes to replay through --replay-proxy (recorded only; not applied)")
	f.IntSliceVarP(&opts.filterStatus, "filter-status", "C", nil, "Status codes to filter out")
	f.Int64SliceVar(&opts.filterSize, "filter-size", nil, "Content lengths to filter out")
	f.IntSliceVar(&opts.filterLines, "filter-lines", nil, "Line counts to filter out")
	f.IntSliceVar(&opts.filterWords, "filter-words", nil, "Word counts to filter out")
	f.StringSliceVar(&opts.filterRegex, "filter-regex", nil, "Body regexes to filter out")
	f.StringSliceVar(&opts.filterSimilar, "filter-similar-to", nil, "ssdeep hashes to filter near-duplicates of")

	f.IntVarP(&opts.threads, "threads", "t", 50, "Concurrent workers per scan")
	f.DurationVar(&opts.timeout, "timeout", 7*time.Second, "Per-request timeout")
	f.IntVarP(&opts.depth, "depth", "d", 4, "Maximum recursion depth (0 = unlimited)")
	f.IntVar(&opts.scanLimit, "scan-limit", 0, "Maximum concurrently active scans (0 = unlimited)")
	f.IntVarP(&opts.parallel, "parallel", "p", 0, "Maximum targets scanned in parallel (recorded only; not applied)")
	f.IntVar(&opts.rateLimit, "rate-limit", 0, "Requests/second cap per scan (0 = unlimited)")
	f.StringVar(&opts.timeLimit, "time-limit", "", "Overall time budget, e.g. 30m, 2h")

	f.StringVar(&opts.proxy, "proxy", "", "HTTP/SOCKS proxy URL")
	f.StringVar(&opts.replayProxy, "replay-proxy", "", "Proxy to replay matched responses through (recorded only; not applied)")
	f.StringSliceVarP(&opts.headers, "headers", "H", nil, "Header 'Name: Value' (repeatable)")
	f.StringSliceVar(&opts.cookies, "cookies", nil, "Cookie 'name=value' (repeatable, merged into Cookie header)")
	f.StringSliceVarP(&opts.queries, "queries", "q", nil, "Query 'k=v' appended to every request (repeatable)")

	f.CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (repeatable)")
	f.BoolVar(&opts.quiet, "quiet", false, "Quiet text output")
	f.BoolVar(&opts.silent, "silent", false, "Print only discovered URLs")
	f.BoolVar(&opts.jsonOutput, "json", false, "Newline-delimited JSON output")

	f.BoolVar(&opts.addSlash, "add-slash", false, "Append '/' to every directory-shaped word (recorded only; not applied)")
	f.BoolVar(&opts.noRecursion, "no-recursion", false, "Disable recursion into discovered directories")
	f.BoolVar(&opts.forceRecursion, "force-recursion", false, "Recurse even into wildcard/heuristically-suppressed directories")
	f.BoolVar(&opts.extractLinks, "extract-links", false, "Follow links found in response bodies")
	f.BoolVar(&opts.collectExt, "collect-extensions", false, "Learn extensions from discovered files")
	f.BoolVar(&opts.collectExtAll, "collect-extensions-all", false, "collect-extensions without a frequency floor (recorded only; not applied)")
	f.BoolVar(&opts.collectBackups, "collect-backups", false, "Also try common backup suffixes (~, .bak, .old) (recorded only; not applied)")
	f.BoolVar(&opts.collectWords, "collect-words", false, "Feed response bodies into the TF-IDF word model")
	f.StringSliceVar(&opts.dontCollect, "dont-collect", nil, "Extensions to exclude from collect-extensions (recorded only; not applied)")

	f.StringSliceVar(&opts.urlDenylist, "url-denylist", nil, "Absolute URL or regex to never scan")
	f.BoolVar(&opts.insecure, "insecure", false, "Skip TLS certificate verification")
	f.BoolVar(&opts.redirects, "redirects", false, "Follow HTTP redirects")
	f.BoolVar(&opts.dontFilter, "dont-filter", false, "Skip the wildcard heuristic probe")

	f.BoolVar(&opts.autoBail, "auto-bail", false, "Abort a scan once its error/403/429 budget is exceeded")
	f.BoolVar(&opts.autoTune, "auto-tune", false, "Halve rps on elevated error rates, heal back gradually")

	f.BoolVar(&opts.saveState, "save-state", false, "Persist a resumable state file as the scan runs")
	f.StringVar(&opts.stateFile, "state-file", "", "Path to write with --save-state (default: the --resume-from path, or burrow.state)")
	f.StringVar(&opts.resumeFrom, "resume-from", "", "Resume from a previously saved state file")
	f.StringVar(&opts.outputPath, "output", "", "Mirror output to this file in addition to stdout")
	f.BoolVar(&opts.scanDirListing, "scan-dir-listings", false, "Scan directories whose response looks like an index listing (recorded only; not applied)")
	f.StringVarP(&opts.requestFile, "request-file", "r", "", "Raw HTTP request file providing URL/headers/body")
	f.StringVar(&opts.protocol, "protocol", "", "Scheme to assume for request-file relative URIs (http|https)")
	f.StringVar(&opts.configFile, "config", "", "YAML overlay file (extensions/denylist/filter_regex defaults)")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "Open the scan menu (list/cancel/filter/resume) after scans start")
}

func validateOpts(cmd *cobra.Command, args []string) error {
	if len(opts.targets) == 0 && len(args) == 0 && opts.resumeFrom == "" && opts.requestFile == "" {
		_ = cmd.Help()
		return fmt.Errorf("at least one target is required: use -u, a positional URL, --request-file, or --resume-from")
	}
	if opts.quiet && opts.silent {
		return fmt.Errorf("--quiet and --silent are mutually exclusive")
	}
	if opts.noRecursion && opts.forceRecursion {
		return fmt.Errorf("--no-recursion and --force-recursion are mutually exclusive")
	}
	if opts.autoBail && opts.autoTune {
		return fmt.Errorf("--auto-bail and --auto-tune are mutually exclusive")
	}
	return nil
}

// flagsToConfig builds a *config.Config from opts, applying the YAML
// overlay (if any) under CLI precedence per config.Merge.
func flagsToConfig() (*config.Config, error) {
	cfg := config.Defaults()

	cfg.Wordlist = opts.wordlist
	cfg.Targets = opts.targets
	cfg.Extensions = opts.extensions
	cfg.Methods = opts.methods
	cfg.PostBody = opts.postBody
	if len(opts.statusCodes) > 0 {
		cfg.StatusCodes = opts.statusCodes
	}
	if len(opts.replayCodes) > 0 {
		cfg.ReplayCodes = opts.replayCodes
	} else {
		cfg.ReplayCodes = cfg.StatusCodes
	}
	cfg.FilterStatus = opts.filterStatus
	cfg.FilterSize = opts.filterSize
	cfg.FilterLineCount = opts.filterLines
	cfg.FilterWordCount = opts.filterWords
	cfg.FilterRegex = opts.filterRegex
	cfg.FilterSimilarity = opts.filterSimilar
	cfg.Threads = opts.threads
	cfg.Timeout = opts.timeout
	cfg.Depth = opts.depth
	cfg.ScanLimit = opts.scanLimit
	cfg.ParallelTargetLimit = opts.parallel
	cfg.RateLimit = opts.rateLimit
	cfg.TimeLimit = opts.timeLimit
	cfg.FollowRedirects = opts.redirects
	cfg.InsecureSkipVerify = opts.insecure
	cfg.AddSlash = opts.addSlash
	cfg.NoRecursion = opts.noRecursion
	cfg.ForceRecursion = opts.forceRecursion
	cfg.ExtractLinks = opts.extractLinks
	cfg.CollectExtensions = opts.collectExt
	cfg.CollectExtensionsAll = opts.collectExtAll
	cfg.CollectBackups = opts.collectBackups
	cfg.CollectWords = opts.collectWords
	cfg.DontCollect = opts.dontCollect
	cfg.URLDenylist = opts.urlDenylist
	cfg.Proxy = opts.proxy
	cfg.ReplayProxy = opts.replayProxy
	cfg.DontFilter = opts.dontFilter
	cfg.ScanDirListings = opts.scanDirListing
	cfg.SaveState = opts.saveState
	switch {
	case opts.stateFile != "":
		cfg.StateFile = opts.stateFile
	case opts.resumeFrom != "":
		cfg.StateFile = opts.resumeFrom
	default:
		cfg.StateFile = "burrow.state"
	}

	if cfg.RequesterPolicy == "" {
		cfg.RequesterPolicy = config.PolicyDefault
	}
	if opts.autoBail {
		cfg.RequesterPolicy = config.PolicyAutoBail
	}
	if opts.autoTune {
		cfg.RequesterPolicy = config.PolicyAutoTune
	}

	cfg.OutputLevel = outputLevel()

	headers, err := parseKV(opts.headers, ":")
	if err != nil {
		return nil, fmt.Errorf("parsing --headers: %w", err)
	}
	cfg.Headers = headers

	queries, err := parseKV(opts.queries, "=")
	if err != nil {
		return nil, fmt.Errorf("parsing --queries: %w", err)
	}
	cfg.Queries = queries

	if len(opts.cookies) > 0 {
		cookies, err := parseKV(opts.cookies, "=")
		if err != nil {
			return nil, fmt.Errorf("parsing --cookies: %w", err)
		}
		var parts []string
		for k, v := range cookies {
			parts = append(parts, k+"="+v)
		}
		if existing, ok := cfg.Headers["Cookie"]; ok && existing != "" {
			cfg.Headers["Cookie"] = existing + "; " + strings.Join(parts, "; ")
		} else {
			cfg.Headers["Cookie"] = strings.Join(parts, "; ")
		}
	}

	if opts.configFile != "" {
		overlay, err := config.LoadOverlay(opts.configFile)
		if err != nil {
			return nil, err
		}
		cfg.Merge(overlay)
	}

	return cfg, nil
}

func outputLevel() config.OutputLevel {
	switch {
	case opts.jsonOutput:
		return config.OutputSilentJSON
	case opts.silent:
		return config.OutputSilent
	case opts.quiet:
		return config.OutputQuiet
	default:
		return config.OutputDefault
	}
}

// parseKV parses "key<sep>value" pairs, trimming surrounding whitespace.
func parseKV(raw []string, sep string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, entry := range raw {
		name, value, ok := strings.Cut(entry, sep)
		if !ok {
			return nil, fmt.Errorf("malformed entry %q, expected 'key%svalue'", entry, sep)
		}
		out[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return out, nil
}

// verbosityLevel maps a repeated -v count (or RUST_LOG if set) to a
// coarse level name, per spec.md §6's environment note.
func verbosityLevel() string {
	if lvl := os.Getenv("RUST_LOG"); lvl != "" {
		return lvl
	}
	switch {
	case opts.verbosity <= 0:
		return "off"
	case opts.verbosity == 1:
		return "warn"
	case opts.verbosity == 2:
		return "info"
	case opts.verbosity == 3:
		return "debug"
	default:
		return "trace"
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
