// Package ir provides canonical encodings and catalog types for denial
// constraints.
//
// This package sits directly above the AST (dcir) and the SQL backend (dcsql)
// and below everything that stores, loads or reports constraints. It imports
// only those two internal packages.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - All JSON tags use snake_case
//   - Constraint identity is content-addressed: the same AST always yields the
//     same ConstraintID, independent of whitespace in the source text
package ir
