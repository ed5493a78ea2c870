// Package httpresponse holds the immutable snapshot of one HTTP reply.
package httpresponse

import (
	"strings"

	"github.com/0x6d61/burrow/internal/urlutil"
)

// Response is an immutable snapshot of a single HTTP reply, plus the
// derived attributes used by the filter pipeline and output sink.
type Response struct {
	URL           string // final URL after redirects
	Method        string
	Status        int
	text          string // body text; may be dropped after use (DropBody)
	Headers       map[string]string
	ContentLength int64
	LineCount     int
	WordCount     int
	Wildcard      bool
	Extension     string
	Location      string // Location header, when present
	RequestedURL  string // URL as requested, before redirects
}

// New builds a Response, computing line/word counts from body at
// construction time so they stay consistent even after DropBody.
func New(requestedURL, finalURL, method string, status int, body string, headers map[string]string, contentLength int64) *Response {
	return &Response{
		URL:           finalURL,
		RequestedURL:  requestedURL,
		Method:        method,
		Status:        status,
		text:          body,
		Headers:       headers,
		ContentLength: contentLength,
		LineCount:     countLines(body),
		WordCount:     countWords(body),
		Location:      headers["Location"],
	}
}

func countLines(body string) int {
	if body == "" {
		return 0
	}
	return strings.Count(body, "\n") + 1
}

func countWords(body string) int {
	return len(strings.Fields(body))
}

// Text returns the response body, or "" if it has been dropped.
func (r *Response) Text() string { return r.text }

// DropBody clears the stored body text while leaving length markers
// (ContentLength, LineCount, WordCount) unchanged, per the memory-bound
// retention policy in spec.md §9.
func (r *Response) DropBody() { r.text = "" }

// IsDirectory implements the spec's directory-ness classification:
// either a 3xx redirect to requested-url+"/", or a 2xx/403 whose URL
// already ends in "/".
func (r *Response) IsDirectory() bool {
	if r.Status >= 300 && r.Status < 400 {
		return urlutil.IsRedirectToDirectory(r.RequestedURL, r.Location)
	}
	if (r.Status >= 200 && r.Status < 300) || r.Status == 403 {
		return strings.HasSuffix(r.URL, "/")
	}
	return false
}

// ParseExtension extracts a dotted extension from the final path segment,
// if any, and stores it on the response.
func (r *Response) ParseExtension() string {
	path := r.URL
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		path = path[idx+1:]
	}
	if idx := strings.LastIndexByte(path, '.'); idx > 0 {
		r.Extension = path[idx+1:]
	}
	return r.Extension
}
