// Package geo resolves free-text addresses to coordinates through a
// Nominatim-compatible search endpoint.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/foodlog/internal/apperr"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "foodlog-geocoder/1.0"
)

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Result is the first match for an address.
type Result struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"displayName"`
}

type searchHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocoder calls the provider. The zero value is not usable; use NewGeocoder.
type Geocoder struct {
	http      httpDoer
	baseURL   string
	userAgent string
	email     string
}

// NewGeocoder builds a geocoder. Empty arguments fall back to the public
// Nominatim instance and a generic client identifier.
func NewGeocoder(baseURL, userAgent, email string) *Geocoder {
	g := &Geocoder{
		http:      &http.Client{Timeout: 10 * time.Second},
		userAgent: strings.TrimSpace(userAgent),
		email:     strings.TrimSpace(email),
	}
	g.SetBaseURL(baseURL)
	if g.userAgent == "" {
		g.userAgent = DefaultUserAgent
	}
	return g
}

func (g *Geocoder) SetHTTPClient(client httpDoer) {
	if client == nil {
		g.http = &http.Client{Timeout: 10 * time.Second}
		return
	}
	g.http = client
}

func (g *Geocoder) SetBaseURL(base string) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	g.baseURL = base
}

// Geocode returns the best match for address. Blank input is a validation
// error, no match is a not-found error, and any transport or provider
// failure is an upstream error.
func (g *Geocoder) Geocode(ctx context.Context, address string) (Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Result{}, apperr.Validation("address", "Enter an address to geocode")
	}

	query := url.Values{}
	query.Set("format", "json")
	query.Set("limit", "1")
	query.Set("q", address)
	if g.email != "" {
		query.Set("email", g.email)
	}
	endpoint := g.baseURL + "/search?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.http.Do(req)
	if err != nil {
		return Result{}, apperr.Upstream("Geocoding service is unreachable, try again later", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, apperr.Upstream("Geocoding service response could not be read", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, apperr.Upstream(
			fmt.Sprintf("Geocoding service returned status %d", resp.StatusCode),
			fmt.Errorf("geocode %q: %s", address, strings.TrimSpace(string(body))),
		)
	}

	var hits []searchHit
	if err := json.Unmarshal(body, &hits); err != nil {
		return Result{}, apperr.Upstream("Geocoding service returned an unexpected response", err)
	}
	if len(hits) == 0 {
		return Result{}, apperr.NotFound("No location found for that address; add more detail such as city, state, or zip")
	}

	hit := hits[0]
	lat, err := strconv.ParseFloat(strings.TrimSpace(hit.Lat), 64)
	if err != nil {
		return Result{}, apperr.Upstream("Geocoding service returned an invalid latitude", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(hit.Lon), 64)
	if err != nil {
		return Result{}, apperr.Upstream("Geocoding service returned an invalid longitude", err)
	}
	return Result{Lat: lat, Lng: lng, DisplayName: hit.DisplayName}, nil
}
