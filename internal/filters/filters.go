// Package filters implements the ordered, pluggable response-filter
// pipeline from spec.md §4.6.
package filters

import (
	"regexp"

	"github.com/glaslos/ssdeep"

	"github.com/0x6d61/burrow/internal/httpresponse"
	"github.com/0x6d61/burrow/internal/urlutil"
)

// DefaultSimilarityThreshold is SIMILARITY_THRESHOLD from
// original_source/src/scanner.rs — 95 parts in 100.
const DefaultSimilarityThreshold = 95

// Filter is one predicate in the pipeline. Equality is structural, used by
// the interactive menu to reject duplicates and remove by index.
type Filter interface {
	ShouldFilter(r *httpresponse.Response) bool
	Equal(other Filter) bool
	String() string
}

// Wildcard suppresses catch-all (wildcard) directory responses. Installed
// by the heuristics package after probing a new directory target.
type Wildcard struct {
	Dynamic int64
	Size    int64
}

func (w Wildcard) ShouldFilter(r *httpresponse.Response) bool {
	if w.Size > 0 && w.Size == r.ContentLength {
		return true
	}
	if w.Dynamic > 0 {
		urlLen := int64(urlutil.PathLength(r.URL))
		if urlLen+w.Dynamic == r.ContentLength {
			return true
		}
	}
	return false
}

func (w Wildcard) Equal(other Filter) bool {
	o, ok := other.(Wildcard)
	return ok && o == w
}

func (w Wildcard) String() string { return "Wildcard" }

// StatusCode suppresses responses with an exact status code match.
type StatusCode struct{ Code int }

func (f StatusCode) ShouldFilter(r *httpresponse.Response) bool { return r.Status == f.Code }
func (f StatusCode) Equal(other Filter) bool                    { o, ok := other.(StatusCode); return ok && o == f }
func (f StatusCode) String() string                             { return "StatusCode" }

// Size suppresses responses with an exact content-length match.
type Size struct{ Bytes int64 }

func (f Size) ShouldFilter(r *httpresponse.Response) bool { return r.ContentLength == f.Bytes }
func (f Size) Equal(other Filter) bool                    { o, ok := other.(Size); return ok && o == f }
func (f Size) String() string                             { return "Size" }

// LineCount suppresses responses with an exact line-count match.
type LineCount struct{ Lines int }

func (f LineCount) ShouldFilter(r *httpresponse.Response) bool { return r.LineCount == f.Lines }
func (f LineCount) Equal(other Filter) bool                    { o, ok := other.(LineCount); return ok && o == f }
func (f LineCount) String() string                             { return "LineCount" }

// WordCount suppresses responses with an exact word-count match.
type WordCount struct{ Words int }

func (f WordCount) ShouldFilter(r *httpresponse.Response) bool { return r.WordCount == f.Words }
func (f WordCount) Equal(other Filter) bool                    { o, ok := other.(WordCount); return ok && o == f }
func (f WordCount) String() string                             { return "WordCount" }

// Regex suppresses responses whose body matches Compiled.
type Regex struct {
	Compiled *regexp.Regexp
	Raw      string
}

func (f Regex) ShouldFilter(r *httpresponse.Response) bool {
	if f.Compiled == nil {
		return false
	}
	return f.Compiled.MatchString(r.Text())
}

func (f Regex) Equal(other Filter) bool {
	o, ok := other.(Regex)
	return ok && o.Raw == f.Raw
}

func (f Regex) String() string { return "Regex(" + f.Raw + ")" }

// Similarity suppresses responses whose body ssdeep-hashes within
// Threshold of Hash.
type Similarity struct {
	Hash      string
	Threshold int
}

func (f Similarity) ShouldFilter(r *httpresponse.Response) bool {
	if f.Hash == "" {
		return false
	}
	candidate, err := ssdeep.FuzzyBytes([]byte(r.Text()))
	if err != nil {
		return false
	}
	score, err := ssdeep.Distance(f.Hash, candidate)
	if err != nil {
		return false
	}
	return score >= f.Threshold
}

func (f Similarity) Equal(other Filter) bool {
	o, ok := other.(Similarity)
	return ok && o.Hash == f.Hash && o.Threshold == f.Threshold
}

func (f Similarity) String() string { return "Similarity" }

// NewRegex compiles pattern into a Regex filter.
func NewRegex(pattern string) (Regex, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Regex{}, err
	}
	return Regex{Compiled: re, Raw: pattern}, nil
}
