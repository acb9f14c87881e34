package freesound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"samplegraph/internal/services"
)

// MaxPageSize is the id-list page cap the Freesound search endpoint enforces.
const MaxPageSize = 150

// DefaultFields is the full field set requested during repair fetches. It
// mirrors the expected-field schema the integrity scan checks.
var DefaultFields = []string{
	"id", "name", "username", "uploader_id", "tags", "description",
	"duration", "filesize", "type", "channels", "samplerate", "bitdepth",
	"bitrate", "license", "created", "downloads", "avg_rating",
	"num_ratings", "num_comments", "previews", "images", "pack", "geotag",
	"ac_analysis",
}

// Response models the paginated Freesound search payload.
type Response struct {
	Count   int              `json:"count"`
	Next    string           `json:"next"`
	Results []map[string]any `json:"results"`
}

// Fetcher defines the batched lookup operation the repair cycle needs.
type Fetcher interface {
	FetchByIDs(ctx context.Context, ids []int64, fields []string) (map[int64]map[string]any, error)
}

// Client provides access to the Freesound APIv2 for batched sample lookups.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a Freesound client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("freesound api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("freesound base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchByIDs performs one batched lookup using the id-list filter, returning
// the full requested field set keyed by sample id. Ids absent from the
// response were deleted upstream; that is not an error. The id slice must not
// exceed MaxPageSize.
func (c *Client) FetchByIDs(ctx context.Context, ids []int64, fields []string) (map[int64]map[string]any, error) {
	if len(ids) == 0 {
		return map[int64]map[string]any{}, nil
	}
	if len(ids) > MaxPageSize {
		return nil, fmt.Errorf("id batch of %d exceeds page cap %d", len(ids), MaxPageSize)
	}
	if len(fields) == 0 {
		fields = DefaultFields
	}

	params := url.Values{}
	params.Set("filter", idFilter(ids))
	params.Set("fields", strings.Join(fields, ","))
	params.Set("page_size", strconv.Itoa(len(ids)))

	endpoint := c.baseURL + "/search/text/?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalAPI, "freesound", "fetch", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, services.Wrap(services.ErrExternalAPI, "freesound", "fetch", "rate limit exceeded (429)", nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrExternalAPI, "freesound", "fetch", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	found := make(map[int64]map[string]any, len(decoded.Results))
	for _, result := range decoded.Results {
		id, ok := sampleID(result)
		if !ok {
			continue
		}
		found[id] = result
	}
	return found, nil
}

// idFilter renders the Freesound id-list filter expression, e.g.
// "id:(12 OR 34 OR 56)".
func idFilter(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "id:(" + strings.Join(parts, " OR ") + ")"
}

func sampleID(record map[string]any) (int64, bool) {
	switch v := record["id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	}
	return 0, false
}

// PauseBetweenBatches derives the inter-batch delay that keeps total request
// volume within the configured requests-per-minute budget.
func PauseBetweenBatches(requestsPerMinute int) time.Duration {
	if requestsPerMinute <= 0 {
		return time.Second
	}
	return time.Minute / time.Duration(requestsPerMinute)
}
