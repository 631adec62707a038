// Package geoloc resolves client addresses to a country and rough
// coordinates using the ip-api.com JSON endpoint.
package geoloc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Location is a resolved client position. Code is the client-side
// country enum value, Acronym the ISO 3166-1 alpha-2 form.
type Location struct {
	Code      uint8
	Acronym   string
	Longitude float32
	Latitude  float32
}

// Client queries the geolocation service.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a Client with a bounded request timeout.
func New() *Client {
	return &Client{
		http:    &http.Client{Timeout: 5 * time.Second},
		baseURL: "http://ip-api.com/json",
	}
}

type apiResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	CountryCode string  `json:"countryCode"`
	Lon         float32 `json:"lon"`
	Lat         float32 `json:"lat"`
}

// Locate resolves ip. Private and loopback addresses resolve to the
// unknown location without a network round trip.
func (c *Client) Locate(ctx context.Context, ip string) (Location, error) {
	if parsed := net.ParseIP(ip); parsed != nil && (parsed.IsLoopback() || parsed.IsPrivate()) {
		return Location{Acronym: "XX"}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", c.baseURL, ip), nil)
	if err != nil {
		return Location{}, fmt.Errorf("geoloc request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("geoloc fetch %s: %w", ip, err)
	}
	defer resp.Body.Close()

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, fmt.Errorf("geoloc decode: %w", err)
	}
	if body.Status != "success" {
		return Location{}, fmt.Errorf("geoloc lookup %s: %s", ip, body.Message)
	}

	return Location{
		Code:      CountryCode(body.CountryCode),
		Acronym:   body.CountryCode,
		Longitude: body.Lon,
		Latitude:  body.Lat,
	}, nil
}
