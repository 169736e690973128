package geocode

import (
	"context"
	"errors"
	"math"
	"strings"
)

var ErrNotFound = errors.New("address not found")

// Point is a resolved address. City is a lowercase, dash-separated slug.
type Point struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	City string  `json:"city"`
}

type Geocoder interface {
	Resolve(ctx context.Context, address string) (Point, error)
}

const earthRadiusKm = 6371.0088

// Distance is the great-circle distance between two points in kilometres.
func Distance(a, b Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// Slug lowercases a place name and joins words with dashes: "Surry Hills" -> "surry-hills".
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
