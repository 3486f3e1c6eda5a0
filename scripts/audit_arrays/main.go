package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/lib/pq"

	"events-admin/internal/codec"
	"events-admin/internal/config"
)

// arrayColumns hold JSON-encoded string arrays
var arrayColumns = []string{"link", "category_optional", "theme_optional"}

type finding struct {
	id     int64
	name   string
	column string
	raw    string
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	connector, err := pq.NewConnector(cfg.GetDSN())
	if err != nil {
		logger.Error("Invalid connection string", "error", err)
		os.Exit(1)
	}
	db := sql.OpenDB(connector)
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		os.Exit(1)
	}

	findings, err := audit(db)
	if err != nil {
		logger.Error("Audit failed", "error", err)
		os.Exit(1)
	}

	for _, f := range findings {
		fmt.Printf("%d\t%s\t%s\t%q\n", f.id, f.name, f.column, f.raw)
	}
	logger.Info("Array audit finished", "malformed", len(findings))
}

// audit lists array cells that would decode to an empty list without being empty
func audit(db *sql.DB) ([]finding, error) {
	query := fmt.Sprintf("SELECT id, COALESCE(event, ''), %s, %s, %s FROM events ORDER BY id",
		pq.QuoteIdentifier(arrayColumns[0]),
		pq.QuoteIdentifier(arrayColumns[1]),
		pq.QuoteIdentifier(arrayColumns[2]),
	)

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var findings []finding
	for rows.Next() {
		var (
			id    int64
			name  string
			cells = make([]sql.NullString, len(arrayColumns))
		)
		if err := rows.Scan(&id, &name, &cells[0], &cells[1], &cells[2]); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		for i, cell := range cells {
			if cell.Valid && !codec.WellFormed(cell.String) {
				findings = append(findings, finding{id: id, name: name, column: arrayColumns[i], raw: cell.String})
			}
		}
	}
	return findings, rows.Err()
}
