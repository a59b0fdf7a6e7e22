// Package weather fetches current conditions from the OpenWeatherMap API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kvharsha/fintrack/fintrack-backend/internal/config"
)

// Conditions is the subset of the feed the app uses.
type Conditions struct {
	City        string  `json:"city"`
	TempC       float64 `json:"tempC"`
	FeelsLikeC  float64 `json:"feelsLikeC"`
	Humidity    int     `json:"humidity"`
	Description string  `json:"description"`
}

// Client calls the weather feed over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a weather client from config
func NewClient(cfg config.WeatherConfig) *Client {
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

type apiResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Current fetches current conditions for a city. Callers are expected to
// fall back to canned data on error.
func (c *Client) Current(ctx context.Context, city string) (*Conditions, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("weather feed not configured")
	}

	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather feed returned status %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode weather response: %w", err)
	}

	cond := &Conditions{
		City:       body.Name,
		TempC:      body.Main.Temp,
		FeelsLikeC: body.Main.FeelsLike,
		Humidity:   body.Main.Humidity,
	}
	if len(body.Weather) > 0 {
		cond.Description = body.Weather[0].Description
	}
	return cond, nil
}
