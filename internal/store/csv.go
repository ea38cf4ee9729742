package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrReservedTable is returned when an import would replace a workspace
// table. SQLite reserves the sqlite_ prefix and check_runs holds the run log.
var ErrReservedTable = errors.New("reserved table name")

// TableName returns the workspace table name for a data source name.
// A trailing ".csv" is removed so that generated queries, which apply the
// same cleaning, resolve to the imported table.
func TableName(source string) string {
	return strings.TrimSuffix(source, ".csv")
}

// ImportCSV loads CSV data into a new table named after source.
// The first record is the header. Every column is declared NUMERIC so
// numeric text compares as numbers. An existing table with the same name
// is replaced. Returns the number of data rows loaded.
func (s *Store) ImportCSV(ctx context.Context, source string, r io.Reader) (int, error) {
	table := TableName(source)
	if table == "" {
		return 0, errors.New("import csv: empty table name")
	}
	if isReserved(table) {
		return 0, fmt.Errorf("import csv %s: %w", table, ErrReservedTable)
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return 0, fmt.Errorf("import csv %s: missing header row", table)
	}
	if err != nil {
		return 0, fmt.Errorf("import csv %s: read header: %w", table, err)
	}

	seen := make(map[string]bool, len(header))
	cols := make([]string, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return 0, fmt.Errorf("import csv %s: column %d has an empty name", table, i+1)
		}
		if seen[name] {
			return 0, fmt.Errorf("import csv %s: duplicate column %q", table, name)
		}
		seen[name] = true
		cols[i] = quote(name) + " NUMERIC"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quote(table)); err != nil {
		return 0, fmt.Errorf("import csv %s: drop table: %w", table, err)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quote(table), strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("import csv %s: create table: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(header)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quote(table), placeholders))
	if err != nil {
		return 0, fmt.Errorf("import csv %s: prepare insert: %w", table, err)
	}
	defer stmt.Close()

	n := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("import csv %s: row %d: %w", table, n+1, err)
		}
		args := make([]any, len(record))
		for i, field := range record {
			if field == "" {
				args[i] = nil
				continue
			}
			args[i] = field
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("import csv %s: insert row %d: %w", table, n+1, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return n, nil
}

// isReserved reports whether table names a workspace table. Identifiers are
// compared case-insensitively, as SQLite does.
func isReserved(table string) bool {
	lower := strings.ToLower(table)
	return lower == "check_runs" || strings.HasPrefix(lower, "sqlite_")
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
