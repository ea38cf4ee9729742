// Package dcir provides the abstract syntax tree for denial constraints.
//
// A denial constraint (DC) asserts that no pair of tuples in a relation may
// satisfy a conjunction of attribute comparisons at the same time:
//
//	¬(t0.hours.EmpID==t1.hours.EmpID^t0.hours.ProjID==t1.hours.ProjID)
//
// The IR sits between the textual parser and the SQL backend:
//
//	[DC text] → [dcparse] → [dcir] → [dcsql] → SQL self-join
//
// Every node is a plain value. Nothing is mutated after construction, so a
// DenialConstraint can be shared between goroutines without coordination.
//
// WELL-FORMEDNESS:
//
// The grammar accepts any table names, but a DC is only meaningful when every
// tuple reference names the same table. Validate checks this after parsing so
// callers can still inspect a syntactically valid but semantically invalid AST.
//
// Not supported: constants in predicates, constraints over more than two
// tuples in a single predicate, cross-table constraints.
package dcir
