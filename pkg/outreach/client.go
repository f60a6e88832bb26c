// Package outreach provides a client for the external email-campaign
// service's accounts, campaigns, and statistics endpoints.
package outreach

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the outreach service operations the dashboard consumes.
type Client interface {
	// ListAccounts returns the accounts configured under the API key.
	ListAccounts(ctx context.Context) ([]Account, error)
	// ListCampaigns returns the campaigns belonging to an account.
	ListCampaigns(ctx context.Context, accountID string) ([]Campaign, error)
	// CampaignStatistics fetches engagement statistics. Account and
	// campaign narrow the query; either may be empty, in which case the
	// service falls back to aggregated or basic figures.
	CampaignStatistics(ctx context.Context, accountID, campaignID string) (*StatisticsResponse, error)
}

// Account is the service's account shape.
type Account struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// Campaign is the service's campaign shape.
type Campaign struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaign_id"`
	Name       string `json:"name"`
	Default    bool   `json:"default"`
	AccountID  string `json:"account_id"`
}

// StatisticsResponse is the statistics envelope. Statistics stays raw:
// the service has shipped several field spellings over time and alias
// resolution belongs to the ingestion boundary, not this client.
type StatisticsResponse struct {
	Success          bool           `json:"success"`
	Statistics       map[string]any `json:"statistics,omitempty"`
	SelectedAccount  string         `json:"selected_account,omitempty"`
	SelectedCampaign string         `json:"selected_campaign,omitempty"`
}

// Option configures the outreach client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps outgoing requests per second. The service enforces
// aggressive per-key limits; staying under them beats retrying 429s.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an outreach service client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.outreach.example.com/v1",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryableStatusCode returns true if the HTTP status code should trigger a retry.
func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes a request with exponential backoff on transient
// failures (429, 500, 502, 503), honoring the rate limiter before each
// attempt. Returns the body and status on success, or the last error.
func (c *httpClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, eris.Wrap(err, "outreach: rate limit wait")
		}

		resp, err := c.http.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "outreach: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("outreach: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func (c *httpClient) get(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "outreach: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	body, statusCode, err := c.retryDo(ctx, req)
	if err != nil {
		return eris.Wrapf(err, "outreach: GET %s", path)
	}
	if statusCode != http.StatusOK {
		return eris.Errorf("outreach: GET %s: unexpected status %d: %s", path, statusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "outreach: unmarshal %s response", path)
	}
	return nil
}

func (c *httpClient) ListAccounts(ctx context.Context) ([]Account, error) {
	var resp struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.get(ctx, "/accounts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

func (c *httpClient) ListCampaigns(ctx context.Context, accountID string) ([]Campaign, error) {
	var resp struct {
		Campaigns []Campaign `json:"campaigns"`
	}
	path := fmt.Sprintf("/accounts/%s/campaigns", url.PathEscape(accountID))
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Campaigns, nil
}

func (c *httpClient) CampaignStatistics(ctx context.Context, accountID, campaignID string) (*StatisticsResponse, error) {
	query := url.Values{}
	if accountID != "" {
		query.Set("account_id", accountID)
	}
	if campaignID != "" {
		query.Set("campaign_id", campaignID)
	}

	var resp StatisticsResponse
	if err := c.get(ctx, "/statistics", query, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
