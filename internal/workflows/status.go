package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"samplegraph/internal/logging"
)

// DefaultCacheTTL bounds how often one class is queried upstream.
const DefaultCacheTTL = 30 * time.Second

// RunState is the coordinator's view of one job class. Unknown is a typed
// outcome, not an error: status-API degradation fails open on purpose.
type RunState int

const (
	StateUnknown RunState = iota
	StateNotRunning
	StateRunning
)

func (s RunState) String() string {
	switch s {
	case StateNotRunning:
		return "not_running"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Run is one status-API entry for an in-progress workflow run.
type Run struct {
	ID         int64     `json:"id"`
	Status     string    `json:"status"`
	Conclusion string    `json:"conclusion"`
	CreatedAt  time.Time `json:"created_at"`
	HTMLURL    string    `json:"html_url"`
}

type runsResponse struct {
	Runs []Run `json:"runs"`
}

type cacheEntry struct {
	state     RunState
	run       *Run
	fetchedAt time.Time
}

// StatusClient queries the CI status API for in-progress runs, caching
// each class's answer for a TTL so poll loops cannot hammer the API.
type StatusClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	ttl        time.Duration
	dryRun     bool
	logger     *slog.Logger
	now        func() time.Time

	mu    sync.Mutex
	cache map[Class]cacheEntry
}

// StatusOption customizes a StatusClient.
type StatusOption func(*StatusClient)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(client *http.Client) StatusOption {
	return func(c *StatusClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCacheTTL overrides the per-class cache lifetime.
func WithCacheTTL(ttl time.Duration) StatusOption {
	return func(c *StatusClient) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithDryRun makes every check return Unknown without touching the API.
func WithDryRun(dryRun bool) StatusOption {
	return func(c *StatusClient) { c.dryRun = dryRun }
}

// WithClock replaces the time source, for cache-expiry tests.
func WithClock(now func() time.Time) StatusOption {
	return func(c *StatusClient) {
		if now != nil {
			c.now = now
		}
	}
}

// NewStatusClient constructs a status client for the given API base URL.
func NewStatusClient(baseURL, token string, logger *slog.Logger, opts ...StatusOption) *StatusClient {
	client := &StatusClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		ttl:        DefaultCacheTTL,
		logger:     logging.NewComponentLogger(logger, "status"),
		now:        time.Now,
		cache:      make(map[Class]cacheEntry),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Check reports whether the given class has an in-progress run. A cached
// answer within the TTL is served without an external call. Any API or
// network failure degrades to StateUnknown with a warning; the caller
// treats Unknown as not running.
func (c *StatusClient) Check(ctx context.Context, class Class) (RunState, *Run) {
	if c.dryRun {
		return StateUnknown, nil
	}

	c.mu.Lock()
	if entry, ok := c.cache[class]; ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		c.mu.Unlock()
		return entry.state, entry.run
	}
	c.mu.Unlock()

	state, run := c.fetch(ctx, class)
	if state != StateUnknown {
		c.mu.Lock()
		c.cache[class] = cacheEntry{state: state, run: run, fetchedAt: c.now()}
		c.mu.Unlock()
	}
	return state, run
}

func (c *StatusClient) fetch(ctx context.Context, class Class) (RunState, *Run) {
	endpoint := fmt.Sprintf("%s/runs?%s", c.baseURL, url.Values{
		"workflow": {string(class)},
		"status":   {"in_progress"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Warn("status request build failed",
			logging.String(logging.FieldWorkflow, string(class)),
			logging.Error(err))
		return StateUnknown, nil
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("status API unreachable, assuming no conflict",
			logging.String(logging.FieldWorkflow, string(class)),
			logging.Error(err))
		return StateUnknown, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("status API rate limited, assuming no conflict",
			logging.String(logging.FieldWorkflow, string(class)))
		return StateUnknown, nil
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("status API error, assuming no conflict",
			logging.String(logging.FieldWorkflow, string(class)),
			logging.Int("status_code", resp.StatusCode))
		return StateUnknown, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("status response read failed",
			logging.String(logging.FieldWorkflow, string(class)),
			logging.Error(err))
		return StateUnknown, nil
	}
	var parsed runsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Warn("status response malformed",
			logging.String(logging.FieldWorkflow, string(class)),
			logging.Error(err))
		return StateUnknown, nil
	}

	for i := range parsed.Runs {
		if parsed.Runs[i].Status == "in_progress" {
			run := parsed.Runs[i]
			return StateRunning, &run
		}
	}
	return StateNotRunning, nil
}
