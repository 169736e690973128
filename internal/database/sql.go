package database

import (
	"fmt"
	"strings"
)

const listingColumns = "link, title, location, source, status, posted_date, deadline_date, keyword, category, company, price, distance, geohash, scraped_at"

// schemaStatements creates one table per collection. Both tables share a layout.
func schemaStatements(timestampType string) []string {
	var stmts []string
	for _, table := range []string{"jobs", "accommodations"} {
		stmts = append(stmts,
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	link          TEXT PRIMARY KEY,
	title         TEXT NOT NULL DEFAULT '',
	location      TEXT NOT NULL DEFAULT '',
	source        TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'new',
	posted_date   TEXT,
	deadline_date TEXT,
	keyword       TEXT,
	category      TEXT NOT NULL,
	company       TEXT NOT NULL DEFAULT '',
	price         TEXT NOT NULL DEFAULT '',
	distance      TEXT NOT NULL DEFAULT 'N/A',
	geohash       TEXT NOT NULL DEFAULT '',
	scraped_at    %s NOT NULL
)`, table, timestampType),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_category ON %s (category)`, table, table),
		)
	}
	return stmts
}

// upsertQuery overwrites every column on conflict: the latest scrape wins.
func upsertQuery(table string, placeholder func(int) string) string {
	cols := strings.Split(listingColumns, ", ")
	params := make([]string, len(cols))
	var updates []string
	for i, c := range cols {
		params[i] = placeholder(i + 1)
		if c != "link" {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (link) DO UPDATE SET %s",
		table, listingColumns, strings.Join(params, ", "), strings.Join(updates, ", "))
}

// selectQuery builds a filtered SELECT; filter must already be validated.
func selectQuery(table string, filter Filter, placeholder func(int) string) (string, []any, error) {
	keys, err := filter.keys()
	if err != nil {
		return "", nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", listingColumns, table)
	args := make([]any, 0, len(keys))
	conditions := make([]string, 0, len(keys))
	for i, k := range keys {
		conditions = append(conditions, fmt.Sprintf("%s = %s", filterColumns[k], placeholder(i+1)))
		args = append(args, filter[k])
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY scraped_at DESC"
	return query, args, nil
}

func dollarPlaceholder(i int) string { return fmt.Sprintf("$%d", i) }

func questionPlaceholder(int) string { return "?" }
