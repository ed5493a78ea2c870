// Package heuristics probes a newly admitted directory target for
// wildcard (catch-all) responses before the requester starts iterating
// its wordlist, adapted from the original project's UUID-probe design.
package heuristics

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/0x6d61/burrow/internal/config"
	"github.com/0x6d61/burrow/internal/filters"
	"github.com/0x6d61/burrow/internal/httpresponse"
	"github.com/0x6d61/burrow/internal/urlutil"
)

// uuidLength is the length of one hyphen-stripped UUID, used when sizing
// the dynamic-wildcard length probe.
const uuidLength = int64(32)

// Prober issues wildcard probe requests against a target directory.
type Prober struct {
	Client     *http.Client
	DontFilter bool
}

// NewProber returns a Prober using client for its probe requests.
func NewProber(client *http.Client) *Prober {
	return &Prober{Client: client}
}

// uniqueString concatenates length hyphen-stripped v4 UUIDs, producing a
// token that should not exist on the target server.
func uniqueString(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		b.WriteString(strings.ReplaceAll(uuid.New().String(), "-", ""))
	}
	return b.String()
}

// Probe tests targetURL for a wildcard response. When dontFilter is set,
// no probe is issued and Probe returns (nil, 0, nil) immediately. The
// returned Filter, if non-nil, should be installed on the scan's filter
// collection before the requester begins iterating its wordlist.
//
// Step 2 of the probe hinges on cfg's status-code allow-list: a first
// probe whose status would not even be reported isn't catch-all, and the
// probe short-circuits without a second request.
func (p *Prober) Probe(ctx context.Context, targetURL string, cfg *config.Config) (filters.Filter, int, error) {
	if p.DontFilter {
		return nil, 0, nil
	}

	first, err := p.probeOnce(ctx, targetURL, 1)
	if err != nil {
		return nil, 0, err
	}
	if first == nil {
		// no response at all (e.g. connection error) — nothing to filter
		return nil, 1, nil
	}

	if !cfg.StatusAllowed(first.Status) {
		return filters.Wildcard{}, 1, nil
	}
	wcLength := first.ContentLength

	second, err := p.probeOnce(ctx, targetURL, 3)
	if err != nil {
		return nil, 2, err
	}
	if second == nil {
		return filters.Wildcard{}, 2, nil
	}
	wc2Length := second.ContentLength

	switch {
	case wc2Length == wcLength+uuidLength*2:
		urlLen := int64(urlutil.PathLength(first.RequestedURL))
		return filters.Wildcard{Dynamic: wcLength - urlLen}, 2, nil
	case wc2Length == wcLength:
		return filters.Wildcard{Size: wcLength}, 2, nil
	default:
		return filters.Wildcard{}, 2, nil
	}
}

// probeOnce appends a unique_string(length) token to targetURL and issues
// a request, reporting the response or nil if the request failed outright
// (a network error here is not itself fatal — it just yields no filter).
func (p *Prober) probeOnce(ctx context.Context, targetURL string, tokenLength int) (*httpresponse.Response, error) {
	token := uniqueString(tokenLength)
	probeURL := strings.TrimRight(targetURL, "/") + "/" + token

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return nil, fmt.Errorf("heuristics: build probe request: %w", err)
	}

	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 7 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()

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

	return httpresponse.New(probeURL, resp.Request.URL.String(), http.MethodGet, resp.StatusCode, string(buf), nil, int64(len(buf))), nil
}

// ConnectivityCheck issues a plain GET against target to confirm it is
// reachable before a scan is admitted, per the "no reachable targets on
// startup" fatal-error guard.
func ConnectivityCheck(ctx context.Context, client *http.Client, target string) error {
	if client == nil {
		client = &http.Client{Timeout: 7 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("heuristics: build connectivity request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("heuristics: target unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}
