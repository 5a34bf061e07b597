package main

import (
	"context"
	"flag"
	"log"
	"os"

	"filmdash/internal/config"
	"filmdash/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	driver := flag.String("driver", "", "Database driver: postgres or sqlite3 (inferred from the URL when empty)")
	reset := flag.Bool("reset", false, "Drop every table before migrating")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Println("Usage: migrate [-driver postgres|sqlite3] [-reset] <database_url>")
		os.Exit(2)
	}
	databaseURL := flag.Arg(0)
	if *driver == "" {
		*driver = config.InferDriver(databaseURL)
	}

	ctx := context.Background()
	log.Printf("Migrating %s database", *driver)

	db, err := sqlx.Connect(*driver, databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if *reset {
		if err := migration.Reset(ctx, db); err != nil {
			log.Fatalf("Failed to reset database: %v", err)
		}
	}

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Schema version %s applied", runner.Version())
}
