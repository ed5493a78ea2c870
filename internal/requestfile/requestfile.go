// Package requestfile parses a raw HTTP/1.1 request from disk into a
// method, URL, header map, and body, per spec.md §6's request-file
// format (--request-file).
package requestfile

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Request is the parsed shape of a raw request file.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

// Parse reads path and parses it as a raw HTTP/1.1 request: a
// request-line, CRLF-delimited headers, a blank line, then an optional
// body.
func Parse(path string, scheme string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("requestfile: read %s: %w", path, err)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return nil, fmt.Errorf("requestfile: %s is empty", path)
	}

	requestLine := strings.Fields(lines[0])
	if len(requestLine) < 2 {
		return nil, fmt.Errorf("requestfile: malformed request line %q", lines[0])
	}
	method := requestLine[0]
	uri := requestLine[1]

	headers := make(map[string]string)
	bodyStart := len(lines)
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			bodyStart = i + 1
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	body := ""
	if bodyStart < len(lines) {
		body = strings.Join(lines[bodyStart:], "\n")
		body = strings.TrimRight(body, "\n")
	}

	fullURL, err := resolveURI(uri, headers["Host"], scheme)
	if err != nil {
		return nil, err
	}

	return &Request{Method: method, URL: fullURL, Headers: headers, Body: body}, nil
}

// resolveURI builds an absolute URL from uri, which may already be
// absolute or may be a bare path requiring the Host header and scheme.
func resolveURI(uri, host, scheme string) (string, error) {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return uri, nil
	}
	if host == "" {
		return "", fmt.Errorf("requestfile: relative URI %q with no Host header", uri)
	}
	if scheme == "" {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: host, Path: uri}
	return u.String(), nil
}

// Merge layers CLI-supplied headers/body/cookies over the request-file's
// own values, with CLI entries winning on key conflict. Cookie headers
// from both sources are merged (CLI wins per-key within the merged jar).
func (r *Request) Merge(cliHeaders map[string]string, cliBody string, cliCookies map[string]string) {
	merged := make(map[string]string, len(r.Headers)+len(cliHeaders))
	for k, v := range r.Headers {
		merged[k] = v
	}

	if len(cliCookies) > 0 || r.Headers["Cookie"] != "" {
		merged["Cookie"] = mergeCookies(r.Headers["Cookie"], cliCookies)
	}

	for k, v := range cliHeaders {
		if k == "Cookie" && merged["Cookie"] != "" {
			merged[k] = mergeCookies(merged["Cookie"]+"; "+v, nil)
			continue
		}
		merged[k] = v
	}
	r.Headers = merged

	if cliBody != "" {
		r.Body = cliBody
	}
}

func mergeCookies(existing string, cliCookies map[string]string) string {
	jar := map[string]string{}
	for _, pair := range strings.Split(existing, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		jar[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	for k, v := range cliCookies {
		jar[k] = v
	}

	var parts []string
	for k, v := range jar {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, "; ")
}
