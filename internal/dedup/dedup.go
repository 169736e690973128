package dedup

import (
	"strings"
	"sync"

	"go-locator/internal/models"
)

// Buffer remembers the links seen during one run. The first listing for a
// link is accepted, later ones are rejected.
type Buffer struct {
	mu         sync.Mutex
	seen       map[string]struct{}
	duplicates int
}

func NewBuffer() *Buffer {
	return &Buffer{seen: make(map[string]struct{})}
}

// Accept reports whether l is the first listing with its link in this run.
// Listings without a link are never accepted.
func (b *Buffer) Accept(l models.Listing) bool {
	key := strings.TrimSpace(l.Link)
	if key == "" {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.seen[key]; exists {
		b.duplicates++
		return false
	}
	b.seen[key] = struct{}{}
	return true
}

// Len is the number of distinct links accepted so far.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.seen)
}

// Duplicates counts rejected repeats, not linkless listings.
func (b *Buffer) Duplicates() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.duplicates
}
