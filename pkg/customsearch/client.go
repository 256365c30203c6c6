// Package customsearch is a minimal client for the Google Custom Search
// JSON API. Credentials (API key + engine ID) are supplied per call so a
// rotation pool can swap them between requests.
package customsearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-cli/internal/resilience"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// defaultPageSize is the number of results requested per query.
const defaultPageSize = 10

// ErrRateLimited is returned on HTTP 429. Callers rotate to the next
// credential and retry rather than backing off.
var ErrRateLimited = eris.New("customsearch: rate limited")

// Credential is one API key / engine ID pair.
type Credential struct {
	APIKey   string
	EngineID string
}

// Result is one ranked search result item.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Response is the subset of the API response the pipeline consumes.
type Response struct {
	Items []Result `json:"items"`
}

// Client performs Custom Search queries.
type Client interface {
	Search(ctx context.Context, query string, cred Credential) (*Response, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets a client-side requests-per-second ceiling.
// Zero disables client-side limiting.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

// WithRetry overrides the transient-failure retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a Custom Search client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(1, 1),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// wait blocks until the rate limiter allows one event, or ctx is cancelled.
func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// Search issues one query. Transient transport failures and 5xx
// responses are retried in place; a 429 is surfaced as ErrRateLimited
// immediately so the caller can rotate credentials instead of waiting.
func (c *httpClient) Search(ctx context.Context, query string, cred Credential) (*Response, error) {
	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*Response, error) {
		return c.search(ctx, query, cred)
	})
}

func (c *httpClient) search(ctx context.Context, query string, cred Credential) (*Response, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "customsearch: rate limiter")
	}

	params := url.Values{}
	params.Set("key", cred.APIKey)
	params.Set("cx", cred.EngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(defaultPageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "customsearch: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "customsearch: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "customsearch: read response")
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("customsearch: unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "customsearch: unmarshal response")
	}

	return &result, nil
}
