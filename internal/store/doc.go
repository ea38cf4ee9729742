// Package store provides a SQLite workspace for checking denial constraints
// against data.
//
// A workspace holds:
//   - Data tables: imported from CSV, one table per file, named after the
//     file with any ".csv" suffix removed so generated queries find them
//   - Check runs: an append-only log of violation checks
//
// # Critical Patterns
//
// Logical ordering:
//   - check_runs are ordered by seq INTEGER (logical clock), never timestamps
//   - All log queries include ORDER BY seq ASC, id COLLATE BINARY ASC
//
// Numeric comparison:
//   - Imported columns use NUMERIC affinity, so "10" > "9" compares as numbers
//     while non-numeric text stays text
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
