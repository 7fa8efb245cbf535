//go:build ignore

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
)

// Clears all investment data from a development database. Tables are
// truncated child-first so foreign keys never block, and the
// schema_migrations bookkeeping table is left alone so the migration
// state survives.
func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tables := []string{"transactions", "plans", "users"}

	fmt.Printf("Clearing %d tables...\n", len(tables))

	for _, table := range tables {
		_, err := db.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			log.Printf("Warning: Failed to truncate %s: %v", table, err)
			continue
		}
		fmt.Printf("✓ Cleared %s\n", table)
	}

	fmt.Println("\n✅ All investment data cleared successfully")
}
