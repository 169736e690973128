package merge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-locator/internal/database"
	"go-locator/internal/models"
)

type Action int

const (
	Skip Action = iota
	Insert
	Replace
)

func (a Action) String() string {
	switch a {
	case Insert:
		return "insert"
	case Replace:
		return "replace"
	default:
		return "skip"
	}
}

// Decide applies the link-keyed, last-write-wins policy. existing is nil
// when the store has no listing with the incoming link.
func Decide(existing *models.Listing, incoming models.Listing) Action {
	if strings.TrimSpace(incoming.Link) == "" {
		return Skip
	}
	if existing == nil {
		return Insert
	}
	return Replace
}

// Store is the part of database.Store the writer needs.
type Store interface {
	Get(ctx context.Context, collection, key string) (models.Listing, error)
	Upsert(ctx context.Context, collection, key string, l models.Listing) (models.Listing, error)
}

type Writer struct {
	store Store
}

func NewWriter(store Store) *Writer {
	return &Writer{store: store}
}

// Apply looks up the stored listing, decides, and writes. The returned
// listing carries the store's timestamp.
func (w *Writer) Apply(ctx context.Context, collection string, incoming models.Listing) (Action, models.Listing, error) {
	var existing *models.Listing
	if incoming.Link != "" {
		current, err := w.store.Get(ctx, collection, incoming.Link)
		switch {
		case err == nil:
			existing = &current
		case !errors.Is(err, database.ErrNotFound):
			return Skip, incoming, fmt.Errorf("failed to look up %s: %w", incoming.Link, err)
		}
	}

	action := Decide(existing, incoming)
	if action == Skip {
		return Skip, incoming, nil
	}

	saved, err := w.store.Upsert(ctx, collection, incoming.Link, incoming)
	if err != nil {
		return Skip, incoming, err
	}
	return action, saved, nil
}
