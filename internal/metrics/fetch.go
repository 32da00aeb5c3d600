package metrics

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/skyrmion/antop/internal/discover"
	"github.com/skyrmion/antop/internal/errors"
	"github.com/skyrmion/antop/internal/logger"
)

// DefaultTimeout bounds a single metrics request. It must stay well under
// the fastest poll interval so a hung node cannot stall the next tick.
const DefaultTimeout = 2 * time.Second

// maxBodyBytes caps how much of a metrics response we are willing to read.
// A healthy antnode exposition is a few tens of kilobytes.
const maxBodyBytes = 4 << 20

// Result is the outcome of fetching one endpoint. Exactly one of Sample
// or Err is meaningful: Err == nil means Sample holds a parsed scrape.
type Result struct {
	Endpoint discover.Endpoint
	Sample   RawSample
	Err      error
}

// Fetcher scrapes node metrics endpoints over HTTP.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	log     logger.Logger
}

// NewFetcher creates a fetcher with the given per-request timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewFetcher(timeout time.Duration, log logger.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		log:     log,
	}
}

// Fetch scrapes a single endpoint and parses the response body.
// Connection failures and timeouts return FETCH_UNREACHABLE; an HTTP
// error status or unreadable body returns FETCH_BAD_RESPONSE. The node
// process may be healthy in either case, so callers decide how many
// consecutive failures they tolerate.
func (f *Fetcher) Fetch(ctx context.Context, ep discover.Endpoint) (RawSample, error) {
	url := ep.URL()
	if url == "" {
		return RawSample{}, errors.New(errors.ErrUnreachable,
			"node has no metrics address",
			"Check the node's log for a 'Metrics server on' line")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return RawSample{}, errors.WrapWithCode(err, errors.ErrUnreachable,
			"invalid metrics URL "+url, "")
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return RawSample{}, errors.WrapWithCode(err, errors.ErrUnreachable,
			"metrics endpoint "+ep.Addr+" unreachable", "")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return RawSample{}, errors.New(errors.ErrBadResponse,
			"metrics endpoint "+ep.Addr+" returned "+resp.Status, "")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return RawSample{}, errors.WrapWithCode(err, errors.ErrBadResponse,
			"reading metrics from "+ep.Addr+" failed", "")
	}

	sample := Parse(string(body), time.Now())
	f.log.Debug("fetched %d metrics from %s", len(sample.Values), ep.Addr)
	return *sample, nil
}

// FetchAll scrapes every endpoint concurrently, streaming a Result per
// endpoint as it completes. Completion order is arbitrary; a slow node
// never delays the others. The channel is closed once every endpoint has
// reported. Cancelling ctx abandons the in-flight requests.
func (f *Fetcher) FetchAll(ctx context.Context, endpoints []discover.Endpoint) <-chan Result {
	results := make(chan Result, len(endpoints))

	if len(endpoints) == 0 {
		close(results)
		return results
	}

	var wg sync.WaitGroup
	for _, ep := range endpoints {
		wg.Add(1)
		go func(ep discover.Endpoint) {
			defer wg.Done()

			// Per-endpoint timeout, respecting parent cancellation.
			epCtx, cancel := context.WithTimeout(ctx, f.timeout)
			defer cancel()

			sample, err := f.Fetch(epCtx, ep)
			results <- Result{Endpoint: ep, Sample: sample, Err: err}
		}(ep)
	}

	// Close the channel once every endpoint has reported.
	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
