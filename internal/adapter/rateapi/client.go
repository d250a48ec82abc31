// Package rateapi implements the external RateSource boundary over an
// exchangerate-api style HTTP endpoint.
package rateapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/remitline/remitline-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Client fetches rates against USD from an HTTP provider
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new rate API client. baseURL is the provider root, e.g.
// "https://api.exchangerate.host".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// rateResponse is the provider's answer for one currency
type rateResponse struct {
	Code    string `json:"code"`
	Mid     string `json:"mid"`
	Buying  string `json:"buying"`
	Selling string `json:"selling"`
}

// Rate fetches the quote for one currency code. The context bounds the whole
// round trip; callers are expected to set a deadline.
func (c *Client) Rate(ctx context.Context, code string) (*domain.RateQuote, error) {
	endpoint := fmt.Sprintf("%s/v1/rates/%s?base=USD", c.baseURL, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate request for %s failed: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("rate for %s: %w", code, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate provider returned status %d for %s", resp.StatusCode, code)
	}

	var body rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode rate response: %w", err)
	}

	quote := &domain.RateQuote{Code: code}
	if quote.Mid, err = decimal.NewFromString(body.Mid); err != nil {
		return nil, fmt.Errorf("failed to parse mid rate %q: %w", body.Mid, err)
	}
	if body.Buying != "" {
		if quote.Buying, err = decimal.NewFromString(body.Buying); err != nil {
			return nil, fmt.Errorf("failed to parse buying rate %q: %w", body.Buying, err)
		}
	}
	if body.Selling != "" {
		if quote.Selling, err = decimal.NewFromString(body.Selling); err != nil {
			return nil, fmt.Errorf("failed to parse selling rate %q: %w", body.Selling, err)
		}
	}
	return quote, nil
}

var _ domain.RateSource = (*Client)(nil)
