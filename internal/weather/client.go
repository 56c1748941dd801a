// Package weather looks up current temperatures for the cities flights
// serve.
package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Domenick1991/skybooking/config"
)

type Client struct {
	baseURL  string
	apiKey   string
	resolver *Resolver
	http     *http.Client
}

func NewClient(cfg config.WeatherConfig, resolver *Resolver) *Client {
	return &Client{
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		resolver: resolver,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

// City returns the current weather for name, or nil when the name is not
// a known city.
func (c *Client) City(ctx context.Context, name string) (*City, error) {
	id, ok := c.resolver.CityID(name)
	if !ok {
		return nil, nil
	}

	q := url.Values{}
	q.Set("id", strconv.FormatInt(id, 10))
	q.Set("appid", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: request %q: %w", name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("weather: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: %s for %q", resp.Status, name)
	}

	city, err := ParseCity(body)
	if err != nil {
		return nil, err
	}
	return &city, nil
}

// Cities looks up every name, skipping unknown ones, and returns the
// result ordered by temperature then name.
func (c *Client) Cities(ctx context.Context, names []string) ([]City, error) {
	out := make([]City, 0, len(names))
	for _, name := range names {
		city, err := c.City(ctx, name)
		if err != nil {
			return nil, err
		}
		if city != nil {
			out = append(out, *city)
		}
	}
	SortCities(out)
	return out, nil
}
