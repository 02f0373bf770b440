package externalapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/medtrack/medication-api/metrics"
	"github.com/medtrack/medication-api/resilience"
)

// errNotFound is an internal sentinel: a 404 from either API means "no such
// record", which callers turn into an empty result rather than a failure.
var errNotFound = errors.New("not found")

var searchTermCleaner = regexp.MustCompile(`[^\w\s-]`)

// cleanSearchTerm drops characters that would break the upstream query
// syntax.
func cleanSearchTerm(term string) string {
	return strings.TrimSpace(searchTermCleaner.ReplaceAllString(term, ""))
}

// httpDoer is the transport seam; *http.Client satisfies it.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// restClient is the shared plumbing of both API clients: base URL, rate
// limiter, resilience policy and metrics instrumentation.
type restClient struct {
	api     string
	baseURL string
	http    httpDoer
	limiter Limiter
	policy  *resilience.Policy
}

func newRestClient(api, baseURL string, doer httpDoer, limiter Limiter, policy *resilience.Policy) restClient {
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}
	if limiter == nil {
		limiter = NopLimiter{}
	}
	return restClient{
		api:     api,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		limiter: limiter,
		policy:  policy,
	}
}

// getJSON performs a rate-limited GET through the resilience policy and
// decodes the body into out. A 404 returns errNotFound; any other
// non-success status or transport failure returns an APIError.
func (c *restClient) getJSON(ctx context.Context, operation, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return NewAPIError(c.api, "rate limiter wait interrupted", err)
	}

	call := func() error {
		start := time.Now()
		err := c.doOnce(ctx, path, out)
		metrics.ExternalAPIDuration.WithLabelValues(c.api, operation).Observe(time.Since(start).Seconds())

		switch {
		case err == nil:
			metrics.ExternalAPICalls.WithLabelValues(c.api, operation, "ok").Inc()
		case errors.Is(err, errNotFound):
			metrics.ExternalAPICalls.WithLabelValues(c.api, operation, "not_found").Inc()
		default:
			metrics.ExternalAPICalls.WithLabelValues(c.api, operation, "error").Inc()
		}
		return err
	}

	if c.policy == nil {
		return call()
	}

	// A 404 is a valid answer, not an upstream failure: it must not trip
	// the breaker or trigger retries, but the caller still needs to see it.
	var sawNotFound bool
	err := c.policy.Do(ctx, func() error {
		err := call()
		if errors.Is(err, errNotFound) {
			sawNotFound = true
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	if sawNotFound {
		return errNotFound
	}
	return nil
}

func (c *restClient) doOnce(ctx context.Context, path string, out any) error {
	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewAPIError(c.api, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return NewAPIError(c.api, fmt.Sprintf("failed to connect to %s API", c.api), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return NewAPIStatusError(c.api, "API returned non-success status", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewAPIError(c.api, "decode response", err)
	}
	return nil
}
