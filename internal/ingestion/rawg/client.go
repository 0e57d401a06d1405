package rawg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// Rate limiting: stay well under RAWG's request budget
	rateLimit = 5
	rateBurst = 10
)

// Client handles RAWG API requests with rate limiting. Requests carry the
// configured timeout and are never retried; callers treat any failure as
// "no data" and move on.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient creates a new RAWG API client
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// HTTPClient exposes the underlying client so artwork downloads share the
// same timeout policy.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Search returns the best match for a title search, or nil when RAWG has
// no results for the term.
func (c *Client) Search(ctx context.Context, term string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("search", term)
	params.Set("page_size", "1")

	var response SearchResponse
	if err := c.doRequest(ctx, "/games", params, &response); err != nil {
		return nil, fmt.Errorf("failed to search games: %w", err)
	}
	if len(response.Results) == 0 {
		return nil, nil
	}
	return &response.Results[0], nil
}

// SearchList returns up to limit hits for a title search, for interactive
// metadata pickers. The list may be empty.
func (c *Client) SearchList(ctx context.Context, term string, limit int) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("search", term)
	params.Set("page_size", fmt.Sprintf("%d", limit))

	var response SearchResponse
	if err := c.doRequest(ctx, "/games", params, &response); err != nil {
		return nil, fmt.Errorf("failed to search games: %w", err)
	}
	return response.Results, nil
}

// Details fetches the descriptive record for a game id.
func (c *Client) Details(ctx context.Context, id int64) (*GameDetails, error) {
	var details GameDetails
	if err := c.doRequest(ctx, fmt.Sprintf("/games/%d", id), url.Values{}, &details); err != nil {
		return nil, fmt.Errorf("failed to fetch game details: %w", err)
	}
	return &details, nil
}

// Screenshots fetches screenshot image URLs for a game id; the list may be
// empty.
func (c *Client) Screenshots(ctx context.Context, id int64) ([]string, error) {
	var response ScreenshotsResponse
	if err := c.doRequest(ctx, fmt.Sprintf("/games/%d/screenshots", id), url.Values{}, &response); err != nil {
		return nil, fmt.Errorf("failed to fetch screenshots: %w", err)
	}
	urls := make([]string, 0, len(response.Results))
	for _, s := range response.Results {
		if s.Image != "" {
			urls = append(urls, s.Image)
		}
	}
	return urls, nil
}

// Lookup composes Search, Details and Screenshots for a folder-derived term.
// Returns nil (no error) when the search finds nothing.
func (c *Client) Lookup(ctx context.Context, term string) (*GameDetails, error) {
	match, err := c.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, nil
	}

	details, err := c.Details(ctx, match.ID)
	if err != nil {
		return nil, err
	}

	shots, err := c.Screenshots(ctx, match.ID)
	if err != nil {
		return nil, err
	}
	details.Screenshots = shots
	return details, nil
}

// doRequest performs a single rate-limited HTTP request. No retry loop: a
// connectivity or status failure is surfaced to the caller immediately.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, result interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("RAWG API key is not configured")
	}
	params.Set("key", c.apiKey)
	fullURL := c.baseURL + endpoint + "?" + params.Encode()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "GamePlex/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
