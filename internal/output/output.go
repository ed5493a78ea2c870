// Package output is the report sink: it receives reported responses,
// formats them per the configured output level, and forwards the result
// to the terminal and an optional file writer. Callers use a Sink
// directly; it is not attached to the event bus.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"

	"github.com/0x6d61/burrow/internal/config"
	"github.com/0x6d61/burrow/internal/httpresponse"
)

// statusColor picks the SprintfFunc matching feroxbuster's own status
// coloring convention: 2xx green, 3xx cyan, 4xx yellow, 5xx red.
func statusColor(status int) func(format string, a ...any) string {
	switch {
	case status >= 200 && status < 300:
		return color.GreenString
	case status >= 300 && status < 400:
		return color.CyanString
	case status >= 400 && status < 500:
		return color.YellowString
	default:
		return color.RedString
	}
}

// Record is one reported entry; Type discriminates the JSON output format.
type Record struct {
	Type          string            `json:"type"`
	Status        int               `json:"status,omitempty"`
	LineCount     int               `json:"line_count,omitempty"`
	WordCount     int               `json:"word_count,omitempty"`
	ContentLength int64             `json:"content_length,omitempty"`
	URL           string            `json:"url,omitempty"`
	RedirectTo    string            `json:"redirect_to,omitempty"`
	Wildcard      bool              `json:"wildcard,omitempty"`
	Message       string            `json:"message,omitempty"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Sink formats reported responses for the terminal (or file, or both) per
// the configured config.OutputLevel. One Sink instance is shared by every
// requester worker goroutine; its mutex serialises the writes.
type Sink struct {
	mu      sync.Mutex
	level   config.OutputLevel
	term    io.Writer
	file    io.Writer
	useJSON bool
}

// New builds a Sink writing to term (normally os.Stdout) and, if file is
// non-nil, mirroring every record to it as well.
func New(level config.OutputLevel, term io.Writer, file io.Writer) *Sink {
	return &Sink{
		level:   level,
		term:    term,
		file:    file,
		useJSON: level == config.OutputSilentJSON,
	}
}

// Report formats and emits one reported response.
func (s *Sink) Report(r *httpresponse.Response, wildcard bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.level == config.OutputSilent || s.level == config.OutputSilentJSON {
		s.emitSilent(r, wildcard)
		return
	}
	s.emitDefault(r, wildcard)
}

func (s *Sink) emitSilent(r *httpresponse.Response, wildcard bool) {
	if s.useJSON {
		s.writeJSON(Record{
			Type:          "response",
			Status:        r.Status,
			LineCount:     r.LineCount,
			WordCount:     r.WordCount,
			ContentLength: r.ContentLength,
			URL:           r.URL,
			Wildcard:      wildcard,
		})
		return
	}
	s.writeLine(r.URL)
}

func (s *Sink) emitDefault(r *httpresponse.Response, wildcard bool) {
	paint := statusColor(r.Status)
	line := paint("%-3d", r.Status) + fmt.Sprintf("      %4dl %4dw %6db  %s", r.LineCount, r.WordCount, r.ContentLength, r.URL)
	if wildcard {
		line += color.YellowString("  => wildcard")
	}
	if r.URL != r.RequestedURL {
		line += fmt.Sprintf("  => %s", r.URL)
	}
	s.writeLine(line)
}

func (s *Sink) writeLine(line string) {
	if s.term != nil {
		fmt.Fprintln(s.term, line)
	}
	if s.file != nil {
		fmt.Fprintln(s.file, line)
	}
}

func (s *Sink) writeJSON(rec Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if s.term != nil {
		s.term.Write(append(data, '\n'))
	}
	if s.file != nil {
		s.file.Write(append(data, '\n'))
	}
}

// Warn prints an AutoBail/AutoTune advisory line in yellow, never
// filtered by output level — these are operational warnings, not scan
// results.
func (s *Sink) Warn(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.level == config.OutputSilentJSON {
		s.writeJSON(Record{Type: "log", Message: message})
		return
	}
	if s.term != nil {
		fmt.Fprintln(s.term, color.YellowString("[WARN] "+message))
	}
}

// WriteToDisk appends a raw line to the file writer only, used for
// debug-log style messages that should never reach the terminal.
func (s *Sink) WriteToDisk(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		fmt.Fprintln(s.file, message)
	}
}

// OpenFile opens path for the optional output mirror, truncating any
// existing contents. Callers treat a failure here as fatal per spec.md §7.
func OpenFile(path string) (*os.File, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("output: failed to open %s: %w", path, err)
	}
	return f, nil
}
