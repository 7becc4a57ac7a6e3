package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// kelvinOffset converts the absolute temperatures the weather API reports
// into Celsius.
const kelvinOffset = 273.15

// Reading is the weather view a reply is composed from. The temperature is
// converted to Celsius once, right after decoding; a Reading is never
// persisted.
type Reading struct {
	Summary      string
	TemperatureC float64
}

// Client fetches current weather for a city from an OpenWeatherMap-shaped
// endpoint. It is deliberately bare: no retries, no caching, no timeout
// beyond the HTTP client's own; each lookup is a single request whose
// connection is released on return.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient builds a weather client. Key and base URL come from
// configuration at construction time.
func NewClient(client *http.Client, apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
	}
}

// Current returns the current weather for city. A non-success status from
// the service is a soft failure reported as (nil, nil): no reading, no
// error, and the caller composes a degraded reply. Transport failures are
// returned as errors.
func (c *Client) Current(ctx context.Context, city string) (*Reading, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", c.apiKey)

	u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil
	}

	var payload struct {
		Weather []struct {
			Main string `json:"main"`
		} `json:"weather"`
		Main struct {
			Temp float64 `json:"temp"` // Kelvin
		} `json:"main"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	reading := &Reading{TemperatureC: payload.Main.Temp - kelvinOffset}
	if len(payload.Weather) > 0 {
		reading.Summary = payload.Weather[0].Main
	}

	return reading, nil
}
