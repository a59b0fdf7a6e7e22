// Package market fetches quotes from the Alpha Vantage API.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/config"
)

// Quote is a single symbol's latest price.
type Quote struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	ChangePct decimal.Decimal `json:"changePct"`
}

// Client calls the market data feed over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a market data client from config
func NewClient(cfg config.MarketConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

// Configured reports whether the feed can be called at all.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// GetQuote fetches the latest quote for a symbol. Callers are expected to
// fall back to canned data on error.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("market feed not configured")
	}

	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market feed returned status %d", resp.StatusCode)
	}

	var body globalQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode market response: %w", err)
	}
	if body.GlobalQuote.Price == "" {
		return nil, fmt.Errorf("market feed returned no data for %s", symbol)
	}

	price, err := decimal.NewFromString(body.GlobalQuote.Price)
	if err != nil {
		return nil, fmt.Errorf("malformed price %q: %w", body.GlobalQuote.Price, err)
	}

	quote := &Quote{Symbol: body.GlobalQuote.Symbol, Price: price}
	if pct := body.GlobalQuote.ChangePercent; pct != "" {
		// feed formats the percentage with a trailing % sign
		if f, err := strconv.ParseFloat(pct[:len(pct)-1], 64); err == nil {
			quote.ChangePct = decimal.NewFromFloat(f).Round(4)
		}
	}
	return quote, nil
}
