package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Nominatim resolves addresses against an OpenStreetMap Nominatim endpoint.
// Requests are rate limited; the public instance allows one per second.
type Nominatim struct {
	baseURL   string
	userAgent string
	country   string
	client    *http.Client
	limiter   *rate.Limiter
}

type NominatimConfig struct {
	URL        string
	UserAgent  string
	Country    string
	RatePerSec float64
	Timeout    time.Duration
}

func NewNominatim(cfg NominatimConfig) *Nominatim {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	return &Nominatim{
		baseURL:   cfg.URL,
		userAgent: cfg.UserAgent,
		country:   cfg.Country,
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1),
	}
}

type nominatimPlace struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

func (n *Nominatim) Resolve(ctx context.Context, address string) (Point, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return Point{}, ErrNotFound
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return Point{}, err
	}

	q := url.Values{}
	q.Set("q", n.qualify(address))
	q.Set("format", "jsonv2")
	q.Set("addressdetails", "1")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Point{}, err
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("geocoding %q: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("geocoding %q: unexpected status %d", address, resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return Point{}, fmt.Errorf("geocoding %q: decode: %w", address, err)
	}
	if len(places) == 0 {
		return Point{}, fmt.Errorf("%w: %q", ErrNotFound, address)
	}
	return places[0].point()
}

// qualify appends the country unless the address already names it.
func (n *Nominatim) qualify(address string) string {
	if n.country == "" || strings.Contains(strings.ToLower(address), strings.ToLower(n.country)) {
		return address
	}
	return address + ", " + n.country
}

func (p nominatimPlace) point() (Point, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("bad latitude %q: %w", p.Lat, err)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("bad longitude %q: %w", p.Lon, err)
	}
	return Point{Lat: lat, Lon: lon, City: p.city()}, nil
}

// city picks the most specific locality Nominatim returned.
func (p nominatimPlace) city() string {
	for _, key := range []string{"city", "town", "suburb", "village", "county"} {
		if v := strings.TrimSpace(p.Address[key]); v != "" {
			return Slug(v)
		}
	}
	first, _, _ := strings.Cut(p.DisplayName, ",")
	return Slug(first)
}
