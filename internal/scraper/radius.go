package scraper

import (
	"context"
	"fmt"

	"go-locator/internal/geocode"
	"go-locator/internal/logger"
	"go-locator/internal/models"

	"github.com/mmcloughlin/geohash"
)

const geohashPrecision = 5

// RadiusFilter keeps listings whose location lies within the query radius of
// the query point, annotating distance and geohash. Listings without a
// location, or whose location cannot be geocoded, are dropped. A query
// without a point passes everything through.
type RadiusFilter struct {
	Geocoder geocode.Geocoder
	Log      logger.Logger
}

type resolved struct {
	point geocode.Point
	err   error
}

func (f RadiusFilter) Apply(ctx context.Context, q Query, listings []models.Listing) []models.Listing {
	if !q.HasPoint || f.Geocoder == nil {
		return listings
	}
	log := f.Log
	if log == nil {
		log = logger.Nop()
	}

	origin := geocode.Point{Lat: q.Lat, Lon: q.Lon}
	lookups := make(map[string]resolved)
	kept := make([]models.Listing, 0, len(listings))

	for _, l := range listings {
		if l.Location == "" || l.Location == models.NotAvailable {
			continue
		}

		r, ok := lookups[l.Location]
		if !ok {
			if ctx.Err() != nil {
				break
			}
			p, err := f.Geocoder.Resolve(ctx, l.Location)
			r = resolved{point: p, err: err}
			lookups[l.Location] = r
			if err != nil {
				log.Debug("Dropping listing with unresolvable location", logger.Fields{"location": l.Location, "error": err.Error()})
			}
		}
		if r.err != nil {
			continue
		}

		d := geocode.Distance(origin, r.point)
		if d > float64(q.RadiusKm) {
			continue
		}
		l.Distance = fmt.Sprintf("%.1f km", d)
		l.Geohash = geohash.EncodeWithPrecision(r.point.Lat, r.point.Lon, geohashPrecision)
		kept = append(kept, l)
	}
	return kept
}
