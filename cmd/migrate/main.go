package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hirelane/billing/internal/config"
	"github.com/hirelane/billing/internal/logger"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func init() {
	time.Local = time.UTC
}

// Applies every .sql file under migrations/ in lexical order. Files are
// written to be idempotent (CREATE TABLE IF NOT EXISTS) so reruns are safe.
func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg)
	if err != nil {
		panic(err)
	}

	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("failed to read migrations directory %s: %v", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	db, err := sqlx.Connect("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	for _, name := range files {
		contents, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Fatalf("failed to read migration %s: %v", name, err)
		}

		log.Infow("applying migration", "file", name)
		if _, err := db.Exec(string(contents)); err != nil {
			log.Fatalf("migration %s failed: %v", name, err)
		}
	}

	log.Infow("migrations applied", "count", len(files))
}
