package compiler

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/dcsql/internal/dcir"
	"github.com/roach88/dcsql/internal/dcparse"
	"github.com/roach88/dcsql/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrUnsupportedIRType   = "E200" // unsupported IR type for validation
	ErrSyntax              = "E201" // dc text does not match the grammar
	ErrWellFormedness      = "E202" // dc spans zero or several tables
	ErrInvalidName         = "E203" // missing or malformed constraint name
	ErrDuplicateName       = "E204" // two entries share a name
	ErrDuplicateConstraint = "E205" // two entries parse to the same constraint
)

// ValidationError represents a catalog validation error.
type ValidationError struct {
	Constraint string `json:"constraint,omitempty"`
	Field      string `json:"field"`
	Message    string `json:"message"`
	Code       string `json:"code"`
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	field := e.Field
	if e.Constraint != "" {
		field = e.Constraint + "." + e.Field
	}
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, field, e.Message)
}

// namePattern matches catalog entry names usable as SQL file names.
var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// Validate checks a compiled catalog entry or a whole catalog.
// Returns all errors found (does not fail-fast).
// Supports ConstraintSpec and []ConstraintSpec.
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.ConstraintSpec:
		errs, _ := validateConstraint(spec)
		return errs
	case ir.ConstraintSpec:
		errs, _ := validateConstraint(&spec)
		return errs
	case []ir.ConstraintSpec:
		return validateCatalog(spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// validateConstraint checks one entry and returns its parsed constraint when
// the text is valid.
func validateConstraint(spec *ir.ConstraintSpec) ([]ValidationError, *dcir.DenialConstraint) {
	var errs []ValidationError

	// E203: name must be usable as an identifier and file name
	if !namePattern.MatchString(spec.Name) {
		errs = append(errs, ValidationError{
			Constraint: spec.Name,
			Field:      "name",
			Message:    fmt.Sprintf("invalid constraint name %q", spec.Name),
			Code:       ErrInvalidName,
		})
	}

	if strings.TrimSpace(spec.Source) == "" {
		errs = append(errs, ValidationError{
			Constraint: spec.Name,
			Field:      "dc",
			Message:    "dc is required and must be non-empty",
			Code:       ErrSyntax,
		})
		return errs, nil
	}

	dc, err := dcparse.Parse(spec.Source)
	if err != nil {
		// E201: syntax
		ve := ValidationError{
			Constraint: spec.Name,
			Field:      "dc",
			Message:    err.Error(),
			Code:       ErrSyntax,
		}
		var synErr *dcparse.SyntaxError
		if errors.As(err, &synErr) {
			ve.Message = synErr.Message
			ve.Line = synErr.Line
			ve.Column = synErr.Column
		}
		return append(errs, ve), nil
	}

	// E202: well-formedness
	if err := dcir.Validate(dc); err != nil {
		errs = append(errs, ValidationError{
			Constraint: spec.Name,
			Field:      "dc",
			Message:    err.Error(),
			Code:       ErrWellFormedness,
		})
		return errs, nil
	}

	return errs, dc
}

// validateCatalog checks every entry plus cross-entry uniqueness.
func validateCatalog(specs []ir.ConstraintSpec) []ValidationError {
	var errs []ValidationError

	names := make(map[string]bool)
	ids := make(map[string]string) // constraint ID → first entry name

	for i := range specs {
		spec := &specs[i]

		// E204: duplicate name
		if names[spec.Name] {
			errs = append(errs, ValidationError{
				Constraint: spec.Name,
				Field:      "name",
				Message:    fmt.Sprintf("duplicate constraint name %q", spec.Name),
				Code:       ErrDuplicateName,
			})
		}
		names[spec.Name] = true

		entryErrs, dc := validateConstraint(spec)
		errs = append(errs, entryErrs...)
		if dc == nil {
			continue
		}

		// E205: same constraint registered twice under different names
		id, err := ir.ConstraintID(dc)
		if err != nil {
			continue
		}
		if first, ok := ids[id]; ok {
			errs = append(errs, ValidationError{
				Constraint: spec.Name,
				Field:      "dc",
				Message:    fmt.Sprintf("constraint duplicates %q", first),
				Code:       ErrDuplicateConstraint,
			})
			continue
		}
		ids[id] = spec.Name
	}

	return errs
}
