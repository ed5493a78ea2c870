// Package statefile persists and restores scan state as a single JSON
// document, enabling --resume-from per spec.md §6.
package statefile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/0x6d61/burrow/internal/config"
	"github.com/0x6d61/burrow/internal/httpresponse"
	"github.com/0x6d61/burrow/internal/stats"
)

// ScanRecord is the serializable shape of one FeroxScan.
type ScanRecord struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Kind   string `json:"kind"`
	Status string `json:"status"`
}

// ResponseRecord is the serializable shape of one reported response.
type ResponseRecord struct {
	RequestedURL  string            `json:"requested_url"`
	URL           string            `json:"url"`
	Method        string            `json:"method"`
	Status        int               `json:"status"`
	ContentLength int64             `json:"content_length"`
	LineCount     int               `json:"line_count"`
	WordCount     int               `json:"word_count"`
	Headers       map[string]string `json:"headers,omitempty"`
}

// Document is the full state-file shape:
// {"config": Configuration, "scans": [...], "responses": [...], "statistics": Stats}.
type Document struct {
	Config     *config.Config   `json:"config"`
	Scans      []ScanRecord     `json:"scans"`
	Responses  []ResponseRecord `json:"responses"`
	Statistics stats.Snapshot   `json:"statistics"`
}

// Save writes doc to path as a single newline-terminated JSON document.
func Save(path string, doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("statefile: marshal: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("statefile: write %s: %w", path, err)
	}
	return nil
}

// Load reads and parses the state document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("statefile: read %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("statefile: parse %s: %w", path, err)
	}
	return &doc, nil
}

// ResumableScans returns the scans that should be re-admitted on resume:
// those whose status is NotStarted or Running.
func (d *Document) ResumableScans() []ScanRecord {
	var out []ScanRecord
	for _, s := range d.Scans {
		if s.Status == "not_started" || s.Status == "running" {
			out = append(out, s)
		}
	}
	return out
}

// ResponseFromRecord rehydrates a ResponseRecord into an httpresponse.Response
// (with an empty body — bodies are never persisted to the state file).
func ResponseFromRecord(r ResponseRecord) *httpresponse.Response {
	return httpresponse.New(r.RequestedURL, r.URL, r.Method, r.Status, "", r.Headers, r.ContentLength)
}
