// Command migrate applies the users/lessons/attempts schema migrations.
//
// Usage:
//
//	migrate -direction up
//	migrate -direction down -steps 1
//	migrate -direction force -steps 3   # repair a dirty version
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var (
		direction string
		steps     int
		dbURL     string
		path      string
	)

	flag.StringVar(&direction, "direction", "up", "up, down, or force")
	flag.IntVar(&steps, "steps", 0, "number of migrations to run (0 = all); version for force")
	flag.StringVar(&dbURL, "db", "", "database URL (falls back to DATABASE_URL)")
	flag.StringVar(&path, "path", "migrations", "path to migration files")
	flag.Parse()

	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("database URL is required: set -db or DATABASE_URL")
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", path), dbURL)
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}
	defer m.Close()

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "force":
		if steps == 0 {
			log.Fatal("force requires -steps with the target version")
		}
		err = m.Force(steps)
	default:
		log.Fatalf("unknown direction %q (use up, down, or force)", direction)
	}

	if err != nil && err != migrate.ErrNoChange {
		log.Fatalf("migration failed: %v", err)
	}

	version, dirty, _ := m.Version()
	if err == migrate.ErrNoChange {
		fmt.Printf("nothing to apply, schema at version %d\n", version)
	} else {
		fmt.Printf("schema now at version %d (dirty: %v)\n", version, dirty)
	}
}
