package dcir

import (
	"errors"
	"fmt"
	"strings"
)

// Well-formedness rules checked by Validate.
const (
	RuleNonEmpty    = "non-empty"    // at least one predicate
	RuleSingleTable = "single-table" // exactly one distinct table name
	RuleOperator    = "operator"     // every operator is one of the six DC operators
)

// WellFormednessError reports a semantic violation in a syntactically valid
// denial constraint.
type WellFormednessError struct {
	Rule    string   // one of the Rule* constants
	Tables  []string // distinct tables seen, for RuleSingleTable
	Message string
}

// Error implements the error interface.
func (e *WellFormednessError) Error() string {
	return fmt.Sprintf("well-formedness error [%s]: %s", e.Rule, e.Message)
}

// IsWellFormednessError reports whether err wraps a WellFormednessError.
func IsWellFormednessError(err error) bool {
	var wfErr *WellFormednessError
	return errors.As(err, &wfErr)
}

// Validate checks that dc is a well-formed denial constraint.
//
// A well-formed DC has at least one predicate and every tuple reference in
// every predicate names the same table. The grammar guarantees the first rule
// for parsed input; it is still checked here for ASTs built by other means.
//
// Validate is a pure function with no side effects.
func Validate(dc *DenialConstraint) error {
	if dc == nil || len(dc.Predicates) == 0 {
		return &WellFormednessError{
			Rule:    RuleNonEmpty,
			Message: "denial constraint must contain at least one predicate",
		}
	}

	for i, p := range dc.Predicates {
		if !p.Op.Valid() {
			return &WellFormednessError{
				Rule:    RuleOperator,
				Message: fmt.Sprintf("predicate %d uses unknown operator %q", i+1, string(p.Op)),
			}
		}
	}

	tables := dc.Tables()
	if len(tables) != 1 {
		return &WellFormednessError{
			Rule:   RuleSingleTable,
			Tables: tables,
			Message: fmt.Sprintf("all predicates must reference exactly one table, found %d: %s",
				len(tables), strings.Join(tables, ", ")),
		}
	}

	return nil
}
