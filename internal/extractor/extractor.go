// Package extractor turns a response body (or robots.txt, or a directory
// listing) into candidate URLs for recursive discovery, the way the
// teacher's tools.ExtractEntities turns command output into entities:
// regex-first, deduped by a seen-set. The order of the returned URLs is
// not defined.
package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/0x6d61/burrow/internal/urlutil"
)

// Mode selects which extraction strategy to run.
type Mode int

const (
	ResponseBody Mode = iota
	RobotsTxt
	DirectoryListing
)

// linkfinderPattern is a greedy, linkfinder-style capture of quoted
// URL-like substrings: absolute URLs, root-relative paths, and
// extension-bearing or endpoint-like relative paths.
var linkfinderPattern = regexp.MustCompile(`["']((?:https?:)?//[^\s"'<>]+|/[^\s"'<>]*|[a-zA-Z0-9_\-./]+\.[a-zA-Z0-9]{1,6}(?:[?#][^\s"'<>]*)?)["']`)

var htmlAttrSources = []struct {
	selector string
	attr     string
}{
	{"a[href]", "href"},
	{"img[src]", "src"},
	{"form[action]", "action"},
	{"script[src]", "src"},
	{"iframe[src]", "src"},
	{"div[src]", "src"},
	{"frame[src]", "src"},
	{"embed[src]", "src"},
	{"link[href]", "href"},
}

var forbiddenChars = regexp.MustCompile("[\"<>\\^`{|} ]")

// SeenCache is the per-scan, write-through dedupe set described in
// spec.md §4.7, preventing stable sites from being re-extracted forever.
type SeenCache struct {
	seen map[string]struct{}
}

// NewSeenCache returns an empty cache.
func NewSeenCache() *SeenCache {
	return &SeenCache{seen: make(map[string]struct{})}
}

// Insert reports whether url was newly added to the cache.
func (c *SeenCache) Insert(u string) bool {
	if _, ok := c.seen[u]; ok {
		return false
	}
	c.seen[u] = struct{}{}
	return true
}

// Extract runs mode over body (rooted at baseURL) and returns the
// deduplicated, prefix-expanded set of candidate URLs. Off-host absolute
// URLs are discarded at this stage; the seen-cache dedupe happens at the
// call site, once candidates are about to be scheduled.
func Extract(mode Mode, baseURL, body string) ([]string, error) {
	switch mode {
	case DirectoryListing:
		return extractHTMLAttrs(baseURL, body, htmlAttrSources[:1])
	case RobotsTxt:
		return extractRobots(baseURL, body)
	default:
		return extractResponseBody(baseURL, body)
	}
}

func extractResponseBody(baseURL, body string) ([]string, error) {
	candidates := map[string]struct{}{}

	for _, m := range linkfinderPattern.FindAllStringSubmatch(body, -1) {
		addCandidate(candidates, baseURL, m[1])
	}

	attrs, err := extractHTMLAttrs(baseURL, body, htmlAttrSources)
	if err != nil {
		return nil, err
	}
	for _, a := range attrs {
		candidates[a] = struct{}{}
	}

	return expandAll(candidates), nil
}

func extractHTMLAttrs(baseURL, body string, sources []struct {
	selector string
	attr     string
}) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("extractor: failed to parse html: %w", err)
	}

	candidates := map[string]struct{}{}
	for _, src := range sources {
		doc.Find(src.selector).Each(func(_ int, sel *goquery.Selection) {
			val, ok := sel.Attr(src.attr)
			if !ok || val == "" {
				return
			}
			addCandidate(candidates, baseURL, val)
		})
	}
	return expandAll(candidates), nil
}

// robotsLinePattern matches a case-insensitive Allow/Disallow directive.
var robotsLinePattern = regexp.MustCompile(`(?i)^\s*(allow|disallow)\s*:\s*(\S+)`)

func extractRobots(baseURL, body string) ([]string, error) {
	candidates := map[string]struct{}{}
	for _, line := range strings.Split(body, "\n") {
		m := robotsLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		addCandidate(candidates, baseURL, m[2])
	}
	return expandAll(candidates), nil
}

// addCandidate normalises raw against baseURL, discarding it if absolute
// and off-host, and records every member of its prefix chain.
func addCandidate(into map[string]struct{}, baseURL, raw string) {
	raw = sanitize(raw)
	if raw == "" {
		return
	}

	resolved, err := resolve(baseURL, raw)
	if err != nil {
		return
	}
	if !urlutil.SameHost(baseURL, resolved) {
		return
	}

	for _, prefix := range prefixChain(resolved) {
		into[prefix] = struct{}{}
	}
}

func sanitize(raw string) string {
	raw = forbiddenChars.ReplaceAllString(raw, "")
	if idx := strings.IndexAny(raw, "?#"); idx >= 0 {
		raw = raw[:idx]
	}
	prefix := ""
	if idx := strings.Index(raw, "://"); idx >= 0 {
		prefix, raw = raw[:idx+3], raw[idx+3:]
	}
	for strings.Contains(raw, "//") && !strings.HasPrefix(raw, "//") {
		raw = strings.Replace(raw, "//", "/", 1)
	}
	return prefix + raw
}

func resolve(baseURL, raw string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// prefixChain expands a/b/c/f.js into {a/, a/b/, a/b/c/, a/b/c/f.js}.
func prefixChain(resolved string) []string {
	u, err := url.Parse(resolved)
	if err != nil {
		return nil
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) == 0 || (len(segments) == 1 && segments[0] == "") {
		return nil
	}

	var chain []string
	running := ""
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		running += seg
		isLast := i == len(segments)-1
		if isLast && strings.Contains(seg, ".") {
			chain = append(chain, fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, "/"+running))
		} else {
			running += "/"
			chain = append(chain, fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, "/"+running))
		}
	}
	return chain
}

func expandAll(candidates map[string]struct{}) []string {
	out := make([]string, 0, len(candidates))
	for c := range candidates {
		out = append(out, c)
	}
	return out
}

// FetchRobots issues a redirect-following GET of scheme://host/robots.txt
// using a fresh client that honours redirects regardless of the scan's
// own configured follow-redirects setting.
func FetchRobots(ctx context.Context, target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("extractor: bad target url: %w", err)
	}
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("extractor: robots.txt fetch failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil
	}

	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, rerr := resp.Body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if rerr != nil {
			break
		}
	}
	return string(buf), nil
}
