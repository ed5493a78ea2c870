// Package requester iterates a scan's wordlist against its target,
// expanding each word into the configured method/extension matrix,
// dispatching requests, evaluating filters, and feeding recursion and
// extraction back into the rest of the engine.
package requester

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/0x6d61/burrow/internal/config"
	"github.com/0x6d61/burrow/internal/events"
	"github.com/0x6d61/burrow/internal/extractor"
	"github.com/0x6d61/burrow/internal/filters"
	"github.com/0x6d61/burrow/internal/httpresponse"
	"github.com/0x6d61/burrow/internal/nlp"
	"github.com/0x6d61/burrow/internal/output"
	"github.com/0x6d61/burrow/internal/policy"
	"github.com/0x6d61/burrow/internal/scan"
	"github.com/0x6d61/burrow/internal/stats"
	"github.com/0x6d61/burrow/internal/urlutil"
	"github.com/0x6d61/burrow/internal/wordlist"
)

// Handles bundles the process-wide collaborators every requester needs,
// matching the "reference to ScanManager+Stats+Filters+Output" wiring in
// spec.md §4.4.
type Handles struct {
	ScanManager *scan.Manager
	StatsBus    events.Sender
	Filters     *filters.Collection
	Output      *output.Sink
	Extensions  *wordlist.ExtensionSet
	TFIDF       *nlp.TfIdf
}

// Requester drives one scan's wordlist against its target.
type Requester struct {
	Handles Handles
	Config  *config.Config
	Target  *scan.FeroxScan
	Client  *http.Client
	Limiter *Holder
	Policy  *policy.Controller

	// Spawn runs a freshly admitted recursion target's own requester loop;
	// wired by the caller to avoid an import cycle with package scan.
	Spawn func(ctx context.Context, s *scan.FeroxScan)

	seen *extractor.SeenCache
}

// New builds a Requester for target, wiring up a client from cfg and a
// rate limiter from cfg.RateLimit.
func New(handles Handles, cfg *config.Config, target *scan.FeroxScan, pol *policy.Controller) *Requester {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
	}
	if cfg.Proxy != "" {
		if proxyURL, err := url.Parse(cfg.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
	if !cfg.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &Requester{
		Handles: handles,
		Config:  cfg,
		Target:  target,
		Client:  client,
		Limiter: NewHolder(NewRateLimiter(cfg.RateLimit)),
		Policy:  pol,
		seen:    extractor.NewSeenCache(),
	}
}

// Run iterates words across config.threads concurrent workers.
func (r *Requester) Run(ctx context.Context, words []string) error {
	g, ctx := errgroup.WithContext(ctx)

	threads := r.Config.Threads
	if threads < 1 {
		threads = 1
	}

	work := make(chan string)
	g.Go(func() error {
		defer close(work)
		for _, w := range words {
			select {
			case work <- w:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < threads; i++ {
		g.Go(func() error {
			for {
				select {
				case w, ok := <-work:
					if !ok {
						return nil
					}
					r.processWord(ctx, w)
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		})
	}

	err := g.Wait()
	r.Target.Finish()
	return err
}

// processWord runs steps 1-7 of spec.md §4.4 for a single word, in order.
func (r *Requester) processWord(ctx context.Context, word string) {
	urls := r.expand(word) // step 1 + 2 (host-scope guard applied inline)

	for _, u := range urls {
		if ctx.Err() != nil {
			return
		}
		if !r.denylistAllows(u) { // step 3
			continue
		}
		r.dispatchAndHandle(ctx, u)
	}
}

// expand builds the extension variants of word (each method is applied
// later, in dispatchAndHandle), applying the host-scope guard (step 2) by
// construction — Join never crosses hosts.
func (r *Requester) expand(word string) []string {
	exts := append([]string{}, r.Config.Extensions...)
	if r.Handles.Extensions != nil {
		exts = append(exts, r.Handles.Extensions.List()...)
	}
	exts = append(exts, "")

	seen := map[string]struct{}{}
	var out []string
	for _, ext := range exts {
		u, err := urlutil.Join(r.Target.URL, word, ext)
		if err != nil {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func (r *Requester) denylistAllows(u string) bool {
	for _, exact := range r.Config.URLDenylist {
		if u == exact {
			return false
		}
	}
	for _, pattern := range r.Config.RegexDenylist {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(u) {
			return false
		}
	}
	return true
}

func (r *Requester) dispatchAndHandle(ctx context.Context, targetURL string) {
	methods := r.Config.Methods
	if len(methods) == 0 {
		methods = []string{http.MethodGet}
	}

	for _, method := range methods {
		r.Limiter.Current().AcquireOne() // step 4

		resp, body, err := r.dispatch(ctx, method, targetURL) // step 5
		r.Target.AddRequests(1)
		r.Handles.StatsBus.Send(events.Command{Kind: events.AddRequest})

		if err != nil {
			kind := classifyError(err)
			r.Target.AddError(kind)
			r.Handles.StatsBus.Send(events.Command{Kind: events.AddError, ErrorKind: string(kind)})
			r.evaluatePolicy(ctx)
			continue // step 6
		}

		fresp := httpresponse.New(targetURL, resp.Request.URL.String(), method, resp.StatusCode, body, headerMap(resp.Header), int64(len(body)))
		r.Handles.StatsBus.Send(events.Command{Kind: events.AddStatus, Status: fresp.Status})
		if fresp.Status == 403 {
			r.Target.Add403()
		}
		if fresp.Status == 429 {
			r.Target.Add429()
		}
		r.evaluatePolicy(ctx)

		r.handleResponse(ctx, fresp) // step 7
	}
}

func (r *Requester) dispatch(ctx context.Context, method, targetURL string) (*http.Response, string, error) {
	var bodyReader io.Reader
	if r.Config.PostBody != "" {
		bodyReader = strings.NewReader(r.Config.PostBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, targetURL, bodyReader)
	if err != nil {
		return nil, "", fmt.Errorf("requester: build request: %w", err)
	}
	for k, v := range r.Config.Headers {
		req.Header.Set(k, v)
	}
	if len(r.Config.Queries) > 0 {
		q := req.URL.Query()
		for k, v := range r.Config.Queries {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, "", err
	}
	return resp, string(data), nil
}

func headerMap(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

func classifyError(err error) stats.ErrorKind {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "context deadline exceeded"), strings.Contains(msg, "Timeout"):
		return stats.ErrorTimeout
	case strings.Contains(msg, "redirect"):
		return stats.ErrorRedirect
	case strings.Contains(msg, "no such host"), strings.Contains(msg, "connection refused"), strings.Contains(msg, "connection reset"):
		return stats.ErrorConnection
	default:
		return stats.ErrorOther
	}
}

func (r *Requester) evaluatePolicy(ctx context.Context) {
	e403, e429 := r.Target.Counts403429()
	snap := policy.Snapshot{
		Threads:   r.Config.Threads,
		Requests:  uint64(r.Target.Requests()),
		Errors:    uint64(r.Target.TotalErrors()),
		Status403: uint64(e403),
		Status429: uint64(e429),
	}

	switch r.Policy.Evaluate(snap) {
	case policy.ActionAbort:
		remaining := r.Target.RemainingTicks()
		r.Handles.StatsBus.Send(events.Command{Kind: events.SubtractFromUsizeField, Field: string(stats.FieldTotalExpected), Delta: remaining})
		r.Handles.Output.Warn(fmt.Sprintf("auto-bailing out of %s: error rate exceeded threshold", r.Target.URL))
		r.Target.Abort()
	case policy.ActionRetune:
		if r.Policy.TryLock() {
			next, _ := r.Policy.TuneStep(r.Limiter.Current().RPS())
			r.Limiter.Replace(NewRateLimiter(next))
			r.Policy.Unlock()
			r.Handles.Output.Warn(fmt.Sprintf("auto-tuning %s: rate limit lowered to %d rps", r.Target.URL, next))
		}
	case policy.ActionNone:
		r.healPolicy()
	}
}

// healPolicy advances the AutoTune heal-back cycle on a clean tick: once
// enough consecutive healthy ticks pass, the rate cap doubles back toward
// its pre-tune value, and is removed entirely once it catches up.
func (r *Requester) healPolicy() {
	if !r.Policy.TryLock() {
		return
	}
	next, removeCap, adjusted := r.Policy.Heal()
	r.Policy.Unlock()
	if !adjusted {
		return
	}
	if removeCap {
		r.Limiter.Replace(NewRateLimiter(0))
		r.Handles.Output.Warn(fmt.Sprintf("auto-tuning %s: rate limit restored to original", r.Target.URL))
		return
	}
	r.Limiter.Replace(NewRateLimiter(next))
	r.Handles.Output.Warn(fmt.Sprintf("auto-tuning %s: rate limit healed to %d rps", r.Target.URL, next))
}

// handleResponse runs step 7: optional recursion+sync barrier, filter
// evaluation, then extension/word collection, link extraction, and
// reporting.
func (r *Requester) handleResponse(ctx context.Context, resp *httpresponse.Response) {
	if !r.Config.NoRecursion {
		if r.Handles.ScanManager != nil && r.Spawn != nil {
			r.Handles.ScanManager.TryRecursion(ctx, resp, r.Spawn)
		}
		r.Handles.StatsBus.SyncWait() // TryRecursion-before-Report barrier
	}

	if r.Handles.Filters.ShouldFilter(resp) {
		return
	}

	if r.Config.CollectExtensions {
		if ext := resp.ParseExtension(); ext != "" && r.Handles.Extensions != nil {
			if r.Handles.Extensions.Add(ext) {
				r.Handles.StatsBus.Send(events.Command{Kind: events.AddDiscoveredExtension, Ext: ext})
			}
		}
	}

	if r.Config.CollectWords && r.Handles.TFIDF != nil {
		r.Handles.TFIDF.AddDocument(nlp.NewDocumentFromHTML(resp.Text()))
	}

	if r.Config.ExtractLinks && (resp.Status < 300 || resp.Status >= 400) {
		r.extractAndFollow(ctx, resp)
	}

	if r.Config.StatusAllowed(resp.Status) {
		r.Handles.Output.Report(resp, resp.Wildcard)
	}
	resp.DropBody()
}

func (r *Requester) extractAndFollow(ctx context.Context, resp *httpresponse.Response) {
	links, err := extractor.Extract(extractor.ResponseBody, resp.URL, resp.Text())
	if err != nil {
		return
	}

	var fresh []string
	for _, link := range links {
		if r.seen.Insert(link) {
			fresh = append(fresh, link)
		}
	}

	for _, link := range fresh {
		if ctx.Err() != nil {
			return
		}
		r.dispatchAndHandle(ctx, link)
	}
}

// TimeLimitDeadline parses config.TimeLimit (N[smhd]) into a duration, 0
// meaning unlimited.
func TimeLimitDeadline(spec string) time.Duration {
	if spec == "" {
		return 0
	}
	unit := spec[len(spec)-1:]
	var mul time.Duration
	switch unit {
	case "s":
		mul = time.Second
	case "m":
		mul = time.Minute
	case "h":
		mul = time.Hour
	case "d":
		mul = 24 * time.Hour
	default:
		return 0
	}
	var n int
	fmt.Sscanf(spec[:len(spec)-1], "%d", &n)
	return time.Duration(n) * mul
}
