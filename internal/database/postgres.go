package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-locator/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Postgres struct {
	db *pgxpool.Pool
}

func ConnectPostgres(ctx context.Context, connString string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// PgBouncer in transaction mode does not keep prepared statements.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Postgres{db: pool}, nil
}

func (r *Postgres) Close() error {
	if r.db != nil {
		r.db.Close()
	}
	return nil
}

func (r *Postgres) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Migrate creates the listing tables if they do not exist.
func (r *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements("TIMESTAMPTZ") {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Upsert inserts a listing or overwrites the one with the same link.
func (r *Postgres) Upsert(ctx context.Context, collection, key string, l models.Listing) (models.Listing, error) {
	if err := checkCollection(collection); err != nil {
		return models.Listing{}, err
	}
	l.Link = key
	l.ScrapedAt = time.Now().UTC()

	query := upsertQuery(collection, dollarPlaceholder) + " RETURNING scraped_at"
	err := r.db.QueryRow(ctx, query, listingArgs(l)...).Scan(&l.ScrapedAt)
	if err != nil {
		return models.Listing{}, fmt.Errorf("failed to upsert listing %s: %w", key, err)
	}
	return l, nil
}

func (r *Postgres) Get(ctx context.Context, collection, key string) (models.Listing, error) {
	if err := checkCollection(collection); err != nil {
		return models.Listing{}, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE link = $1", listingColumns, collection)
	l, err := scanListing(r.db.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Listing{}, ErrNotFound
		}
		return models.Listing{}, fmt.Errorf("failed to get listing %s: %w", key, err)
	}
	return l, nil
}

func (r *Postgres) Find(ctx context.Context, collection string, filter Filter) ([]models.Listing, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	query, args, err := selectQuery(collection, filter, dollarPlaceholder)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
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

func (r *Postgres) Delete(ctx context.Context, collection, key string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE link = $1", collection), key)
	if err != nil {
		return fmt.Errorf("failed to delete listing %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func listingArgs(l models.Listing) []any {
	return []any{
		l.Link, l.Title, l.Location, l.Source, l.Status,
		l.PostedDate, l.DeadlineDate, l.Keyword, string(l.Category),
		l.Company, l.Price, l.Distance, l.Geohash, l.ScrapedAt,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (models.Listing, error) {
	var l models.Listing
	var category string
	err := row.Scan(
		&l.Link, &l.Title, &l.Location, &l.Source, &l.Status,
		&l.PostedDate, &l.DeadlineDate, &l.Keyword, &category,
		&l.Company, &l.Price, &l.Distance, &l.Geohash, &l.ScrapedAt,
	)
	l.Category = models.Category(category)
	return l, err
}
