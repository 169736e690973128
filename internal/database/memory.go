package database

import (
	"context"
	"sync"
	"time"

	"go-locator/internal/models"
)

// Memory is an in-process Store for tests and dry runs. Find returns
// listings in first-insert order.
type Memory struct {
	mu    sync.RWMutex
	data  map[string]map[string]models.Listing
	order map[string][]string
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		data:  make(map[string]map[string]models.Listing),
		order: make(map[string][]string),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the timestamp source.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

func (m *Memory) Upsert(_ context.Context, collection, key string, l models.Listing) (models.Listing, error) {
	if err := checkCollection(collection); err != nil {
		return models.Listing{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	l.Link = key
	l.ScrapedAt = m.now()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]models.Listing)
	}
	if _, exists := m.data[collection][key]; !exists {
		m.order[collection] = append(m.order[collection], key)
	}
	m.data[collection][key] = l
	return l, nil
}

func (m *Memory) Get(_ context.Context, collection, key string) (models.Listing, error) {
	if err := checkCollection(collection); err != nil {
		return models.Listing{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.data[collection][key]
	if !ok {
		return models.Listing{}, ErrNotFound
	}
	return l, nil
}

func (m *Memory) Find(_ context.Context, collection string, filter Filter) ([]models.Listing, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	keys, err := filter.keys()
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Listing
	for _, link := range m.order[collection] {
		l := m.data[collection][link]
		match := true
		for _, k := range keys {
			if fieldValue(l, k) != filter[k] {
				match = false
				break
			}
		}
		if match {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, collection, key string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[collection][key]; !ok {
		return ErrNotFound
	}
	delete(m.data[collection], key)
	order := m.order[collection]
	for i, link := range order {
		if link == key {
			m.order[collection] = append(order[:i:i], order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

// Count returns how many listings a collection holds.
func (m *Memory) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[collection])
}
