package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-locator/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the single-file store used for local runs.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements("TIMESTAMP") {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Upsert(ctx context.Context, collection, key string, l models.Listing) (models.Listing, error) {
	if err := checkCollection(collection); err != nil {
		return models.Listing{}, err
	}
	l.Link = key
	l.ScrapedAt = time.Now().UTC()

	if _, err := s.db.ExecContext(ctx, upsertQuery(collection, questionPlaceholder), listingArgs(l)...); err != nil {
		return models.Listing{}, fmt.Errorf("failed to upsert listing %s: %w", key, err)
	}
	return l, nil
}

func (s *SQLite) Get(ctx context.Context, collection, key string) (models.Listing, error) {
	if err := checkCollection(collection); err != nil {
		return models.Listing{}, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE link = ?", listingColumns, collection)
	l, err := scanListing(s.db.QueryRowContext(ctx, query, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Listing{}, ErrNotFound
		}
		return models.Listing{}, fmt.Errorf("failed to get listing %s: %w", key, err)
	}
	return l, nil
}

func (s *SQLite) Find(ctx context.Context, collection string, filter Filter) ([]models.Listing, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	query, args, err := selectQuery(collection, filter, questionPlaceholder)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find listings: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (s *SQLite) Delete(ctx context.Context, collection, key string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE link = ?", collection), key)
	if err != nil {
		return fmt.Errorf("failed to delete listing %s: %w", key, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
