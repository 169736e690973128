package rentals

import (
	"fmt"

	"go-locator/internal/scraper"
)

// listing returns a URL builder for "<prefix><location-dashed><suffix>".
func listing(prefix, suffix string) func(string, int) string {
	return func(location string, _ int) string {
		return prefix + scraper.Dashed(location) + suffix
	}
}

// priced is the h3 / span.price card most short-stay sites share.
func priced(name, card string, url func(string, int) string) Site {
	return Site{Name: name, URL: url, Card: card, Title: "h3", Link: "a", Price: "span.price"}
}

func titled(s Site, title string) Site {
	s.Title = title
	return s
}

func located(s Site, location string) Site {
	s.Location = location
	return s
}

var Sites = []Site{
	{
		Name: "Domain",
		URL: func(location string, radiusKm int) string {
			return fmt.Sprintf("https://www.domain.com.au/rent/%s-nsw-2000/?distance=%d", scraper.Dashed(location), radiusKm)
		},
		Card:     "li.search-results__listing",
		Title:    "h2",
		Link:     "a",
		Price:    "p.listing-result__price",
		Location: "span.listing-result__address",
		Posted:   "span.listing-result__listed-date",
	},
	{
		Name: "Realestate",
		URL: func(location string, radiusKm int) string {
			return fmt.Sprintf("https://www.realestate.com.au/rent/in-%s/list-1?distance=%d", scraper.Spaced(location), radiusKm)
		},
		Card:     "div.residential-card__content",
		Title:    "h2.residential-card__address-heading",
		Link:     "a",
		Host:     "https://www.realestate.com.au",
		Price:    "span.property-price",
		Location: "span.residential-card__address-street",
	},
	{
		Name: "Gumtree",
		URL: func(location string, radiusKm int) string {
			return fmt.Sprintf("https://www.gumtree.com.au/s-flats-houses/%s/c18294l3003435?distance=%d", scraper.Dashed(location), radiusKm)
		},
		Card:     "div.user-ad-collection-new-design__wrapper--row",
		Title:    "a.user-ad-row-new-design__title",
		Link:     "a",
		Host:     "https://www.gumtree.com.au",
		Price:    "span.user-ad-price-new-design__price",
		Location: "span.user-ad-row-new-design__location",
		Posted:   "span.user-ad-row-new-design__posted",
	},
	{
		Name: "Airbnb",
		URL: func(location string, radiusKm int) string {
			return fmt.Sprintf("https://www.airbnb.com.au/s/%s/homes?distance=%d", scraper.Dashed(location), radiusKm)
		},
		Card:  "div.c4mnd7m",
		Title: "div.t1jojoys",
		Link:  "a",
		Host:  "https://www.airbnb.com",
		Price: "span._tyxjp1",
	},
	{
		Name:     "Flatmates",
		URL:      listing("https://flatmates.com.au/rooms/", ""),
		Card:     "div.listing-card",
		Title:    "h3.listing-card-title",
		Link:     "a",
		Host:     "https://flatmates.com.au",
		Price:    "div.price",
		Location: "div.location",
		Posted:   "div.posted",
	},
	{
		Name: "Booking",
		URL: func(location string, _ int) string {
			return "https://www.booking.com/searchresults.html?ss=" + scraper.Plus(location)
		},
		Card:  "div.c1edfd8c4a",
		Title: "div.fcab3ed991",
		Link:  "a",
		Price: "span.fcab3ed991",
	},
	located(priced("Stayz", "div.listing", listing("https://www.stayz.com.au/holiday-rental/australia/", "")), "span.location"),
	located(priced("Rent.com.au", "div.property-card", listing("https://www.rent.com.au/properties/", "")), "span.location"),
	located(titled(priced("Allhomes", "div.property-listing", listing("https://www.allhomes.com.au/rent/", "")), "h2"), "span.address"),
	located(priced("Homely", "div.listing", listing("https://www.homely.com.au/rent/", "")), "span.location"),
	priced("Holidu", "div.listing-card", listing("https://www.holidu.com.au/s/", "")),
	titled(priced("Cozycozy", "div.accommodation-card", listing("https://www.cozycozy.com/au/", "")), "h2"),
	priced("Vrbo", "div.listing", listing("https://www.vrbo.com/en-au/search/", "")),
	priced("Expedia", "div.hotel-card", listing("https://www.expedia.com.au/Hotels/", "")),
	priced("Agoda", "div.hotel-listing", listing("https://www.agoda.com/hotels/", "")),
	priced("Wotif", "div.hotel-card", listing("https://www.wotif.com/Hotels/", "")),
	titled(priced("Hostelworld", "div.property-card", listing("https://www.hostelworld.com/search?city=", "")), "h2"),
	priced("LuxuryEscapes", "div.hotel-card", listing("https://www.luxuryescapes.com/au/hotels/", "")),
	priced("Trivago", "div.hotel-item", listing("https://www.trivago.com.au/search?search=", "")),
	priced("Tripadvisor", "div.listing", listing("https://www.tripadvisor.com.au/Hotels-", "")),
	priced("Airkeeper", "div.property-card", listing("https://www.airkeeper.com.au/properties/", "")),
	priced("MadeComfy", "div.listing", listing("https://www.madecomfy.com.au/properties/", "")),
	priced("Vaquay", "div.property-card", listing("https://www.vaquay.com/properties/", "")),
	priced("KozyGuru", "div.listing", listing("https://www.kozyguru.com.au/properties/", "")),
	priced("Uhomes", "div.apartment-card", listing("https://www.uhomes.com/au/", "/apartments")),
}
