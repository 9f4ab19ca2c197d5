// Package maps builds static map image URLs for review and list pages.
package maps

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/foodlog/internal/db"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/staticmap"
	singleZoom     = 15
	defaultSize    = "640x320"
	markerColor    = "red"
)

// Point is one marker on a map.
type Point struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Name  string  `json:"name"`
	Label string  `json:"label,omitempty"`
}

// Geocoded reports whether the point carries real coordinates.
func (p Point) Geocoded() bool {
	return db.HasCoordinates(p.Lat, p.Lng)
}

// Image describes what a page should render for a map. When Placeholder is
// set there is no URL and a pin icon is shown instead. URL and RetryURL never
// carry the provider key; the browser appends it as the key query parameter
// after fetching it from the maps-config endpoint.
type Image struct {
	URL         string  `json:"url,omitempty"`
	RetryURL    string  `json:"retryUrl,omitempty"`
	Placeholder bool    `json:"placeholder"`
	Alt         string  `json:"alt"`
	Points      []Point `json:"points"`
}

// Renderer builds static map URLs for one provider key.
type Renderer struct {
	apiKey  string
	baseURL string
	size    string
}

// NewRenderer returns a renderer. An empty key makes every image a placeholder
// since the browser would have nothing to sign the URL with.
func NewRenderer(apiKey string) *Renderer {
	return &Renderer{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: DefaultBaseURL,
		size:    defaultSize,
	}
}

func (r *Renderer) SetBaseURL(base string) {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultBaseURL
	}
	r.baseURL = base
}

// APIKey is handed to the browser through the maps-config endpoint only.
func (r *Renderer) APIKey() string {
	if r == nil {
		return ""
	}
	return r.apiKey
}

// Enabled reports whether a provider key is configured.
func (r *Renderer) Enabled() bool {
	return r != nil && r.apiKey != ""
}

// Single renders one location centered at a fixed zoom.
func (r *Renderer) Single(p Point) Image {
	img := Image{Alt: altText(p.Name), Points: []Point{}}
	if !p.Geocoded() {
		img.Placeholder = true
		return img
	}
	img.Points = append(img.Points, p)
	if !r.Enabled() {
		img.Placeholder = true
		return img
	}

	query := r.baseQuery()
	coords := formatCoords(p)
	query.Set("center", coords)
	query.Set("zoom", strconv.Itoa(singleZoom))
	query.Add("markers", "color:"+markerColor+"|"+coords)
	img.URL = r.baseURL + "?" + query.Encode()
	img.RetryURL = CacheBust(img.URL, 1)
	return img
}

// Multi renders labeled markers (A, B, C, ...) without a center so the
// provider fits the bounds. Points without coordinates are skipped but still
// consume their label, keeping labels aligned with list positions.
func (r *Renderer) Multi(points []Point) Image {
	img := Image{Alt: "Map of listed restaurants", Points: []Point{}}

	query := r.baseQuery()
	for i, p := range points {
		label := markerLabel(i)
		if !p.Geocoded() {
			continue
		}
		p.Label = label
		img.Points = append(img.Points, p)
		marker := "color:" + markerColor + "|" + formatCoords(p)
		if label != "" {
			marker = "color:" + markerColor + "|label:" + label + "|" + formatCoords(p)
		}
		query.Add("markers", marker)
	}

	if len(img.Points) == 0 || !r.Enabled() {
		img.Placeholder = true
		return img
	}
	img.URL = r.baseURL + "?" + query.Encode()
	img.RetryURL = CacheBust(img.URL, 1)
	return img
}

// CacheBust returns rawURL with a retry marker so a failed image load can be
// retried once without hitting a cached error.
func CacheBust(rawURL string, attempt int) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		return rawURL + sep + "retry=" + strconv.Itoa(attempt)
	}
	query := parsed.Query()
	query.Set("retry", strconv.Itoa(attempt))
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func (r *Renderer) baseQuery() url.Values {
	query := url.Values{}
	query.Set("size", r.size)
	query.Set("scale", "2")
	return query
}

// markerLabel returns A..Z for the first 26 points and nothing after that.
func markerLabel(index int) string {
	if index < 0 || index >= 26 {
		return ""
	}
	return string(rune('A' + index))
}

func formatCoords(p Point) string {
	return strconv.FormatFloat(p.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 6, 64)
}

func altText(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Map"
	}
	return fmt.Sprintf("Map of %s", name)
}
