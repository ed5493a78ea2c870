package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/0x6d61/burrow/internal/banner"
	"github.com/0x6d61/burrow/internal/config"
	"github.com/0x6d61/burrow/internal/events"
	"github.com/0x6d61/burrow/internal/filters"
	"github.com/0x6d61/burrow/internal/heuristics"
	"github.com/0x6d61/burrow/internal/nlp"
	"github.com/0x6d61/burrow/internal/output"
	"github.com/0x6d61/burrow/internal/policy"
	"github.com/0x6d61/burrow/internal/requester"
	"github.com/0x6d61/burrow/internal/requestfile"
	"github.com/0x6d61/burrow/internal/scan"
	"github.com/0x6d61/burrow/internal/statefile"
	"github.com/0x6d61/burrow/internal/stats"
	"github.com/0x6d61/burrow/internal/tui"
	"github.com/0x6d61/burrow/internal/wordlist"
)

var version = "dev"

// run wires every engine component together and drives one invocation:
// load inputs, admit initial scans, run them to completion (including any
// recursion they trigger), then persist state.
func run(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("burrow: logger init: %w", err)
	}
	defer logger.Sync()

	if opts.resumeFrom != "" {
		if err := resumeInto(cfg); err != nil {
			return fmt.Errorf("burrow: resume: %w", err)
		}
	}

	if opts.requestFile != "" {
		if err := applyRequestFile(cfg); err != nil {
			return err
		}
	}

	if len(cfg.Targets) == 0 {
		return fmt.Errorf("burrow: no reachable targets: none supplied")
	}

	rawWords, err := loadWordlist(cfg.Wordlist)
	if err != nil {
		return fmt.Errorf("burrow: loading wordlist: %w", err)
	}
	wl := wordlist.New(rawWords)
	words := wl.Words()

	var outFile *os.File
	if opts.outputPath != "" {
		outFile, err = output.OpenFile(opts.outputPath)
		if err != nil {
			return fmt.Errorf("burrow: opening output file: %w", err)
		}
		defer outFile.Close()
	}

	if cfg.OutputLevel != config.OutputSilent && cfg.OutputLevel != config.OutputSilentJSON {
		if rendered, err := banner.Render(cfg, version, 100); err == nil {
			fmt.Println(rendered)
		}
	}

	statsStore := stats.New()
	statsStore.AddToUsizeField(stats.FieldTotalExpected, int64(wl.Len()*len(cfg.Targets)))

	statsBus := events.New(events.StatsHandler{Stats: statsStore}, logger)
	go statsBus.Run(ctx)
	defer statsBus.Sender().Send(events.Command{Kind: events.Exit})

	filterCollection := filters.New()
	if err := seedFilters(filterCollection, cfg); err != nil {
		return fmt.Errorf("burrow: invalid filter flag: %w", err)
	}

	filterBus := events.New(events.FilterHandler{Filters: filterCollection}, logger)
	go filterBus.Run(ctx)
	defer filterBus.Sender().Send(events.Command{Kind: events.Exit})

	sink := output.New(cfg.OutputLevel, os.Stdout, outFile)

	denylist, err := buildDenylist(cfg)
	if err != nil {
		return fmt.Errorf("burrow: invalid denylist entry: %w", err)
	}

	manager := scan.NewManager(cfg.ScanLimit, cfg.Depth, cfg.NoRecursion, denylist)
	extSet := wordlist.NewExtensionSet()
	for _, e := range cfg.Extensions {
		extSet.Add(e)
	}

	handles := requester.Handles{
		ScanManager: manager,
		StatsBus:    statsBus.Sender(),
		Filters:     filterCollection,
		Output:      sink,
		Extensions:  extSet,
		TFIDF:       nlp.NewModel(),
	}

	prober := heuristics.NewProber(nil)

	var spawn func(ctx context.Context, s *scan.FeroxScan)
	spawn = func(ctx context.Context, s *scan.FeroxScan) {
		runScan(ctx, handles, cfg, s, prober, spawn, words, logger)
	}

	if deadline := requester.TimeLimitDeadline(cfg.TimeLimit); deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, deadline)
		defer cancel()
	}

	var localWG sync.WaitGroup
	reachable := 0
	for _, target := range cfg.Targets {
		if err := heuristics.ConnectivityCheck(ctx, nil, target); err != nil {
			sink.Warn(fmt.Sprintf("skipping unreachable target %s: %v", target, err))
			continue
		}
		reachable++

		inserted, s, err := manager.AddDirectoryScan(target)
		if err != nil || !inserted {
			continue
		}

		scanCtx, cancel := context.WithCancel(ctx)
		s.SetTask(cancel)
		s.SetStatus(scan.StatusRunning)

		localWG.Add(1)
		go func(scanCtx context.Context, s *scan.FeroxScan) {
			defer localWG.Done()
			runScan(scanCtx, handles, cfg, s, prober, spawn, words, logger)
		}(scanCtx, s)
	}

	if reachable == 0 {
		return fmt.Errorf("burrow: no reachable targets")
	}

	done := make(chan struct{})
	go func() {
		localWG.Wait()
		manager.JoinAll()
		close(done)
	}()

	if opts.interactive {
		src := &scanMenuSource{manager: manager, filters: filterCollection}
		p := tea.NewProgram(tui.New(src), tea.WithAltScreen())
		go func() {
			<-done
			p.Quit()
		}()
		if _, err := p.Run(); err != nil {
			logger.Warn("tui exited with error", zap.Error(err))
		}
	}

	<-done

	if cfg.SaveState && cfg.StateFile != "" {
		if err := persistState(cfg, manager, statsStore); err != nil {
			sink.Warn(fmt.Sprintf("failed to save state: %v", err))
		}
	}

	return nil
}

// runScan admits and starts one scan's wordlist iteration: a wildcard
// probe (unless suppressed), a fresh policy controller, then a blocking
// requester.Run on the calling goroutine. Used both for initial targets
// and, via spawnFn, every recursively admitted directory.
func runScan(ctx context.Context, handles requester.Handles, cfg *config.Config, s *scan.FeroxScan, prober *heuristics.Prober, spawnFn func(context.Context, *scan.FeroxScan), words []string, logger *zap.Logger) {
	handles.ScanManager.Acquire()
	defer handles.ScanManager.Release()

	prober.DontFilter = cfg.DontFilter && !cfg.ForceRecursion
	if wf, _, err := prober.Probe(ctx, s.URL, cfg); err == nil && wf != nil {
		handles.Filters.Add(wf)
	}

	pol := policy.New(cfg.RequesterPolicy)
	req := requester.New(handles, cfg, s, pol)
	req.Spawn = spawnFn

	if err := req.Run(ctx, words); err != nil {
		logger.Warn("scan ended with error", zap.String("url", s.URL), zap.Error(err))
	}
	s.Finish()
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	switch verbosityLevel() {
	case "off":
		cfg.Level = zap.NewAtomicLevelAt(zap.FatalLevel + 1)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func loadWordlist(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("no --wordlist supplied")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return words, scanner.Err()
}

func seedFilters(c *filters.Collection, cfg *config.Config) error {
	for _, code := range cfg.FilterStatus {
		c.Add(filters.StatusCode{Code: code})
	}
	for _, size := range cfg.FilterSize {
		c.Add(filters.Size{Bytes: size})
	}
	for _, lc := range cfg.FilterLineCount {
		c.Add(filters.LineCount{Lines: lc})
	}
	for _, wc := range cfg.FilterWordCount {
		c.Add(filters.WordCount{Words: wc})
	}
	for _, pattern := range cfg.FilterRegex {
		re, err := filters.NewRegex(pattern)
		if err != nil {
			return err
		}
		c.Add(re)
	}
	for _, hash := range cfg.FilterSimilarity {
		c.Add(filters.Similarity{Hash: hash, Threshold: filters.DefaultSimilarityThreshold})
	}
	return nil
}

func buildDenylist(cfg *config.Config) (scan.Denylist, error) {
	var d scan.Denylist
	for _, entry := range cfg.URLDenylist {
		if strings.HasPrefix(entry, "http://") || strings.HasPrefix(entry, "https://") {
			d.Exact = append(d.Exact, entry)
			continue
		}
		re, err := regexp.Compile(entry)
		if err != nil {
			return d, fmt.Errorf("%q: %w", entry, err)
		}
		d.Regex = append(d.Regex, re)
	}
	for _, entry := range cfg.RegexDenylist {
		re, err := regexp.Compile(entry)
		if err != nil {
			return d, fmt.Errorf("%q: %w", entry, err)
		}
		d.Regex = append(d.Regex, re)
	}
	return d, nil
}

func applyRequestFile(cfg *config.Config) error {
	req, err := requestfile.Parse(opts.requestFile, opts.protocol)
	if err != nil {
		return fmt.Errorf("burrow: parsing --request-file: %w", err)
	}
	req.Merge(cfg.Headers, cfg.PostBody, nil)
	cfg.Targets = append(cfg.Targets, req.URL)
	cfg.Headers = req.Headers
	if req.Body != "" {
		cfg.PostBody = req.Body
	}
	if len(cfg.Methods) == 0 || cfg.Methods[0] == "GET" {
		cfg.Methods = []string{req.Method}
	}
	return nil
}

func resumeInto(cfg *config.Config) error {
	doc, err := statefile.Load(opts.resumeFrom)
	if err != nil {
		return err
	}
	cfg.Merge(&config.Overlay{
		Extensions:  doc.Config.Extensions,
		Denylist:    doc.Config.URLDenylist,
		FilterRegex: doc.Config.FilterRegex,
	})
	cfg.Resumed = true
	if opts.stateFile == "" {
		cfg.StateFile = opts.resumeFrom
	}
	for _, rec := range doc.ResumableScans() {
		cfg.Targets = append(cfg.Targets, rec.URL)
	}
	return nil
}

func persistState(cfg *config.Config, manager *scan.Manager, st *stats.Stats) error {
	var scans []statefile.ScanRecord
	for _, s := range manager.DisplayScans() {
		scans = append(scans, statefile.ScanRecord{ID: s.ID, URL: s.URL, Kind: string(s.Kind), Status: string(s.Status())})
	}
	doc := &statefile.Document{
		Config:     cfg,
		Scans:      scans,
		Statistics: st.Snapshot(),
	}
	return statefile.Save(cfg.StateFile, doc)
}

// scanMenuSource adapts the live ScanManager and filter collection to
// tui.Source for the interactive menu.
type scanMenuSource struct {
	manager *scan.Manager
	filters *filters.Collection
}

func (s *scanMenuSource) Scans() []tui.ScanSummary {
	scans := s.manager.DisplayScans()
	out := make([]tui.ScanSummary, len(scans))
	for i, sc := range scans {
		out[i] = tui.ScanSummary{
			ID:       sc.ID,
			URL:      sc.URL,
			Status:   string(sc.Status()),
			Position: sc.Requests(),
			Total:    sc.Requests() + sc.RemainingTicks(),
		}
	}
	return out
}

func (s *scanMenuSource) Cancel(indices []int) { s.manager.Cancel(indices) }

func (s *scanMenuSource) Filters() []string {
	var out []string
	for _, f := range s.filters.List() {
		out = append(out, f.String())
	}
	return out
}

func (s *scanMenuSource) AddFilter(kind string, args []string) error {
	switch kind {
	case "status":
		if len(args) != 1 {
			return fmt.Errorf("status filter needs one code")
		}
		var code int
		if _, err := fmt.Sscanf(args[0], "%d", &code); err != nil {
			return err
		}
		s.filters.Add(filters.StatusCode{Code: code})
	case "regex":
		if len(args) == 0 {
			return fmt.Errorf("regex filter needs a pattern")
		}
		re, err := filters.NewRegex(strings.Join(args, " "))
		if err != nil {
			return err
		}
		s.filters.Add(re)
	default:
		return fmt.Errorf("unknown filter kind %q", kind)
	}
	return nil
}

func (s *scanMenuSource) RemoveFilters(indices []int) error {
	s.filters.Remove(indices)
	return nil
}

// Resume is a no-op within a single process: resumption happens at
// startup via --resume-from, before the menu is ever constructed.
func (s *scanMenuSource) Resume() {}
