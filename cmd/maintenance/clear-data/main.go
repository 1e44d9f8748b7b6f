package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/staynest/booking-backend/internal/config"
	"github.com/staynest/booking-backend/internal/database"
)

// Dependents before their parents, for the row count report
var tables = []string{
	"notifications",
	"reviews",
	"payments",
	"wishlists",
	"hotel_famous_places",
	"bookings",
	"hotels",
	"famous_places",
	"users",
}

func main() {
	var dbURLFlag string
	var keepCatalog bool
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&keepCatalog, "keep-catalog", false, "keep the famous places catalog")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     5,
		MaxIdleConnections: 2,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	targets := make([]string, 0, len(tables))
	for _, t := range tables {
		if keepCatalog && t == "famous_places" {
			continue
		}
		targets = append(targets, t)
	}

	fmt.Println("Connected to database. Truncating tables...")
	if _, err := db.Exec("TRUNCATE TABLE " + strings.Join(targets, ", ") + " RESTART IDENTITY CASCADE"); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}
	fmt.Println("All data cleared successfully (tables truncated, identities reset).")

	fmt.Println("Post-clear row counts:")
	for _, t := range tables {
		var count int
		if err := db.Get(&count, fmt.Sprintf("SELECT COUNT(*) FROM %s", t)); err != nil {
			fmt.Printf("  %s: error: %v\n", t, err)
			continue
		}
		fmt.Printf("  %s: %d\n", t, count)
	}
}
