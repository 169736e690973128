// Package registry assembles the ordered adapter list for a search.
package registry

import (
	"strings"

	"go-locator/internal/config"
	"go-locator/internal/models"
	"go-locator/internal/scraper"
	"go-locator/internal/scraper/boards"
	"go-locator/internal/scraper/custom"
	"go-locator/internal/scraper/rentals"
	"go-locator/internal/scraper/seek"
	"go-locator/internal/scraper/social"
)

type Registry struct {
	jobs           []scraper.Adapter
	accommodations []scraper.Adapter
	env            scraper.Env
}

// New registers every known site in a fixed order and keeps those named in
// the allow-lists. An empty allow-list keeps all of them.
func New(env scraper.Env, allow config.AdaptersConfig) *Registry {
	jobs := []scraper.Adapter{seek.New(env)}
	jobs = append(jobs, boards.All(env)...)
	jobs = append(jobs, social.All(env)...)

	accommodations := rentals.All(env)
	accommodations = append(accommodations, social.All(env)...)

	return &Registry{
		jobs:           keep(jobs, allow.Jobs),
		accommodations: keep(accommodations, allow.Accommodations),
		env:            env,
	}
}

// NewWith builds a registry from prepared adapter lists. Tests and dry runs
// use it to swap in mock adapters.
func NewWith(env scraper.Env, jobs, accommodations []scraper.Adapter) *Registry {
	return &Registry{jobs: jobs, accommodations: accommodations, env: env}
}

func keep(adapters []scraper.Adapter, names []string) []scraper.Adapter {
	if len(names) == 0 {
		return adapters
	}
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[strings.ToLower(strings.TrimSpace(n))] = true
	}
	var out []scraper.Adapter
	for _, a := range adapters {
		if allowed[strings.ToLower(a.Name())] {
			out = append(out, a)
		}
	}
	return out
}

// For returns the adapters to run for category, with the custom URL adapter
// appended last when customURL is set.
func (r *Registry) For(category models.Category, customURL string) []scraper.Adapter {
	var base []scraper.Adapter
	if category == models.CategoryAccommodation {
		base = r.accommodations
	} else {
		base = r.jobs
	}

	out := make([]scraper.Adapter, 0, len(base)+1)
	out = append(out, base...)
	if strings.TrimSpace(customURL) != "" {
		out = append(out, custom.New(customURL, r.env))
	}
	return out
}

// Names lists the adapter names For would return, in order.
func (r *Registry) Names(category models.Category, customURL string) []string {
	adapters := r.For(category, customURL)
	names := make([]string, len(adapters))
	for i, a := range adapters {
		names[i] = a.Name()
	}
	return names
}
