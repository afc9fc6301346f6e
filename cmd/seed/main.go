package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"catalog/internal/config"
	"catalog/internal/db"
	"catalog/internal/repository"
)

//go:embed products.json
var defaultProducts []byte

func main() {
	source := flag.String("source", "", "products JSON file path or http(s) URL (defaults to the bundled fixture)")
	flag.Parse()

	log.Println("Starting seed script...")

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB, false); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()

	raw := defaultProducts
	if *source != "" {
		log.Printf("Loading products from: %s", *source)
		raw, err = loadSource(ctx, *source)
		if err != nil {
			log.Fatalf("Failed to load products: %v", err)
		}
	}

	products, invalid, err := parseProducts(raw)
	if err != nil {
		log.Fatalf("Failed to parse products: %v", err)
	}
	if invalid > 0 {
		log.Printf("Skipped %d invalid products", invalid)
	}

	log.Println("Seeding products into database...")
	created, skipped, err := seedProducts(ctx, repository.NewProductRepository(gormDB), products)
	if err != nil {
		log.Fatalf("Failed to seed products: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New products created: %d", created)
	log.Printf("  - Existing products skipped: %d", skipped)
	log.Printf("  - Total products processed: %d", created+skipped)
}
