// Package config defines the Configuration type consumed by the scanning
// engine and an optional YAML overlay loader. CLI flag parsing and final
// merge precedence live in cmd/burrow; the engine only ever sees a
// resolved *Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// RequesterPolicy selects how the per-scan policy controller reacts to
// elevated error rates.
type RequesterPolicy string

const (
	PolicyDefault  RequesterPolicy = "default"
	PolicyAutoTune RequesterPolicy = "auto-tune"
	PolicyAutoBail RequesterPolicy = "auto-bail"
)

// OutputLevel controls how much the output sink prints.
type OutputLevel string

const (
	OutputDefault    OutputLevel = "default"
	OutputQuiet      OutputLevel = "quiet"
	OutputSilent     OutputLevel = "silent"
	OutputSilentJSON OutputLevel = "silent-json"
)

// Config is the effectively-constant, post-merge configuration consumed
// by every engine component, matching spec.md §3's Configuration fields.
type Config struct {
	Wordlist            string
	Extensions           []string
	CollectExtensions    bool
	Methods              []string
	PostBody             string
	Targets              []string
	StatusCodes          []int
	ReplayCodes          []int
	FilterStatus         []int
	FilterSize           []int64
	FilterLineCount      []int
	FilterWordCount      []int
	FilterRegex          []string
	FilterSimilarity     []string
	Threads              int
	Timeout              time.Duration
	Depth                int
	ScanLimit            int
	ParallelTargetLimit  int
	RateLimit            int
	TimeLimit            string
	FollowRedirects      bool
	InsecureSkipVerify   bool
	AddSlash             bool
	NoRecursion          bool
	ForceRecursion       bool
	ExtractLinks         bool
	CollectExtensionsAll bool
	CollectBackups       bool
	CollectWords         bool
	DontCollect          []string
	URLDenylist          []string
	RegexDenylist        []string
	Headers              map[string]string
	Queries              map[string]string
	RequesterPolicy      RequesterPolicy
	OutputLevel          OutputLevel
	SaveState            bool
	StateFile            string
	Resumed              bool
	Proxy                string
	ReplayProxy          string
	DontFilter           bool
	ScanDirListings      bool
}

// Defaults returns a Config populated with the engine's documented
// defaults (spec.md §4.5/§4.8 constants, common content-discovery
// defaults).
func Defaults() *Config {
	return &Config{
		Methods:         []string{"GET"},
		StatusCodes:     []int{200, 204, 301, 302, 307, 308, 401, 403, 405},
		Threads:         50,
		Timeout:         7 * time.Second,
		Depth:           4,
		ScanLimit:       0,
		RateLimit:       0,
		RequesterPolicy: PolicyDefault,
		OutputLevel:     OutputDefault,
		Headers:         map[string]string{},
		Queries:         map[string]string{},
	}
}

// Overlay is the YAML-file shape merged under CLI flags: denylist
// fragments and default filter/extension presets shared across runs.
type Overlay struct {
	Extensions  []string `yaml:"extensions"`
	Denylist    []string `yaml:"denylist"`
	FilterRegex []string `yaml:"filter_regex"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// LoadOverlay は任意の YAML 設定ファイルを読み込む。
// ファイルが存在しない場合はデフォルト（空）の Overlay を返す。
func LoadOverlay(path string) (*Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Overlay{}, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var overlay Overlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	// denylist の ${VAR} を環境変数で展開する
	for i := range overlay.Denylist {
		overlay.Denylist[i] = expandEnvString(overlay.Denylist[i])
	}

	return &overlay, nil
}

func expandEnvString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// StatusAllowed reports whether status is in the configured status-code
// allow-list (spec.md §3's "status-code allow-list" field). An empty
// list allows everything, matching a zero-value Config in tests;
// Defaults() always populates one for real runs.
func (c *Config) StatusAllowed(status int) bool {
	if c == nil || len(c.StatusCodes) == 0 {
		return true
	}
	for _, s := range c.StatusCodes {
		if s == status {
			return true
		}
	}
	return false
}

// Merge layers overlay fields into cfg; fields the CLI already set on cfg
// take precedence over the overlay's values.
func (c *Config) Merge(overlay *Overlay) {
	if overlay == nil {
		return
	}
	if len(c.Extensions) == 0 {
		c.Extensions = overlay.Extensions
	}
	c.URLDenylist = append(c.URLDenylist, overlay.Denylist...)
	c.FilterRegex = append(c.FilterRegex, overlay.FilterRegex...)
}
