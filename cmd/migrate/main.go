package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go-locator/internal/config"
	"go-locator/internal/database"

	"github.com/jackc/pgx/v5"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	fmt.Printf("Applying schema to the %s store...\n", cfg.Store.Driver)

	// Open creates the listing tables, collections and indexes.
	store, err := database.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("❌ Failed to migrate: %v", err)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		log.Fatalf("❌ Store unreachable after migration: %v", err)
	}

	if cfg.Store.Driver == "postgres" {
		printPostgresInfo(ctx, cfg.Store.DatabaseURL)
	}
	fmt.Println("✅ Schema is up to date")
}

func printPostgresInfo(ctx context.Context, dbURL string) {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Printf("⚠️ Could not open a direct connection: %v", err)
		return
	}
	defer conn.Close(context.Background())

	var version string
	if err := conn.QueryRow(ctx, "SELECT version()").Scan(&version); err == nil {
		fmt.Println("🚀 Database Version:", version)
	}
	var dbSize string
	if err := conn.QueryRow(ctx, "SELECT pg_size_pretty(pg_database_size(current_database()))").Scan(&dbSize); err == nil {
		fmt.Printf("📦 Current Database Size: %s\n", dbSize)
	}
}
