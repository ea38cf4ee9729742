package store

import (
	"context"
	"fmt"
)

// CheckRun is one recorded violation check.
type CheckRun struct {
	Seq          int64  `json:"seq"`
	ID           string `json:"id"`
	ConstraintID string `json:"constraint_id"`
	Constraint   string `json:"constraint"`
	Table        string `json:"table"`
	Query        string `json:"query"`
	Violations   int    `json:"violations"`
	ToolVersion  string `json:"tool_version"`
}

// RecordRun appends a check run to the log and returns its sequence number.
// Recording the same run ID twice is a no-op that returns the original seq.
func (s *Store) RecordRun(ctx context.Context, run CheckRun) (int64, error) {
	if run.ID == "" {
		return 0, fmt.Errorf("record run: empty run id")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO check_runs (id, constraint_id, constraint_text, table_name, query, violations, tool_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.ConstraintID, run.Constraint, run.Table, run.Query, run.Violations, run.ToolVersion)
	if err != nil {
		return 0, fmt.Errorf("record run %s: %w", run.ID, err)
	}

	var seq int64
	if err := s.db.QueryRowContext(ctx, "SELECT seq FROM check_runs WHERE id = ?", run.ID).Scan(&seq); err != nil {
		return 0, fmt.Errorf("record run %s: read seq: %w", run.ID, err)
	}
	return seq, nil
}

// Runs returns recorded check runs in log order.
// If constraintID is non-empty only runs of that constraint are returned.
func (s *Store) Runs(ctx context.Context, constraintID string) ([]CheckRun, error) {
	query := `
		SELECT seq, id, constraint_id, constraint_text, table_name, query, violations, tool_version
		FROM check_runs`
	var args []any
	if constraintID != "" {
		query += " WHERE constraint_id = ?"
		args = append(args, constraintID)
	}
	query += " ORDER BY seq ASC, id COLLATE BINARY ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []CheckRun
	for rows.Next() {
		var r CheckRun
		if err := rows.Scan(&r.Seq, &r.ID, &r.ConstraintID, &r.Constraint, &r.Table, &r.Query, &r.Violations, &r.ToolVersion); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
