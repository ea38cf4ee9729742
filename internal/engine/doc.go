// Package engine checks denial constraints against data held in a workspace.
//
// A check runs the full pipeline for one constraint:
//
//  1. Parse the constraint text
//  2. Validate the single-table rule
//  3. Generate the self-join query
//  4. Execute it against the store
//  5. Record the run in the check log
//
// Each returned row is one pair of tuples that together violate the
// constraint. The self-join pairs every row with every row, itself
// included, so a predicate set satisfiable by one row reports that row
// paired with itself.
//
// Run IDs come from a RunIDGenerator. Production code uses
// UUIDv7Generator; tests use FixedGenerator for reproducible logs.
package engine
