package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/dcsql/internal/dcparse"
	"github.com/roach88/dcsql/internal/dcsql"
	"github.com/roach88/dcsql/internal/ir"
	"github.com/roach88/dcsql/internal/store"
)

// ErrNoStore is returned when a Checker has no workspace to query.
var ErrNoStore = errors.New("checker has no store")

// Checker runs denial constraints against a workspace.
type Checker struct {
	Store *store.Store
	IDs   RunIDGenerator

	// Logger receives check events. Nil means slog.Default().
	Logger *slog.Logger
}

func (c *Checker) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// NewChecker creates a Checker that records runs with UUIDv7 IDs.
func NewChecker(s *store.Store) *Checker {
	return &Checker{Store: s, IDs: UUIDv7Generator{}}
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	RunID        string   `json:"run_id"`
	Seq          int64    `json:"seq"`
	ConstraintID string   `json:"constraint_id"`
	Table        string   `json:"table"`
	SQL          string   `json:"sql"`
	Columns      []string `json:"columns"`
	Rows         [][]any  `json:"rows"`
	Violations   int      `json:"violations"`
}

// Check parses, validates and compiles text, executes the query against the
// store and records the run. Parse and validation errors are returned
// unwrapped so callers can classify them with dcparse.IsSyntaxError and
// dcir.IsWellFormednessError.
func (c *Checker) Check(ctx context.Context, text string, opts dcsql.Options) (*CheckResult, error) {
	return c.CheckOn(ctx, text, "", opts)
}

// CheckOn is Check with the query pointed at table instead of the table the
// constraint names. An empty table keeps the constraint's own. The recorded
// constraint text and ID are those of text.
func (c *Checker) CheckOn(ctx context.Context, text, table string, opts dcsql.Options) (*CheckResult, error) {
	if c.Store == nil {
		return nil, ErrNoStore
	}

	dc, err := dcparse.ParseAndValidate(text)
	if err != nil {
		return nil, err
	}

	constraintID, err := ir.ConstraintID(dc)
	if err != nil {
		return nil, fmt.Errorf("compute constraint id: %w", err)
	}

	target := dc
	if table != "" {
		target = dc.WithTable(table)
	}
	query, err := dcsql.Generate(target, opts)
	if err != nil {
		return nil, err
	}

	table = store.TableName(target.Tables()[0])
	log := c.logger()
	log.Debug("executing check",
		"constraint_id", constraintID,
		"table", table,
		"predicates", len(dc.Predicates),
	)

	cols, rows, err := c.Store.QueryRows(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute check on table %s: %w", table, err)
	}

	ids := c.IDs
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	run := store.CheckRun{
		ID:           ids.Generate(),
		ConstraintID: constraintID,
		Constraint:   dc.String(),
		Table:        table,
		Query:        query,
		Violations:   len(rows),
		ToolVersion:  ir.ToolVersion,
	}
	seq, err := c.Store.RecordRun(ctx, run)
	if err != nil {
		return nil, err
	}

	log.Info("check recorded",
		"run_id", run.ID,
		"seq", seq,
		"constraint_id", constraintID,
		"violations", run.Violations,
	)

	return &CheckResult{
		RunID:        run.ID,
		Seq:          seq,
		ConstraintID: constraintID,
		Table:        table,
		SQL:          query,
		Columns:      cols,
		Rows:         rows,
		Violations:   run.Violations,
	}, nil
}
