// Package compiler turns CUE constraint catalogs into ir.ConstraintSpec values
// and checks them before SQL generation.
//
// Catalog shape:
//
//	constraint: fd_hours: {
//		dc:          "¬(t0.hours.EmpID==t1.hours.EmpID^t0.hours.ProjID==t1.hours.ProjID)"
//		description: "an employee works on a project at most once"
//		options: include_comments: true
//	}
package compiler

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/dcsql/internal/ir"
)

// Fields allowed in a constraint entry and in its options block.
var (
	constraintFields = map[string]bool{"dc": true, "description": true, "options": true}
	optionFields     = map[string]bool{"select_all_columns": true, "format_output": true, "include_comments": true}
)

// CompileConstraint parses a CUE value into a ConstraintSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the constraint struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`constraint: fd_hours: { dc: "..." }`)
//	spec, err := CompileConstraint(v.LookupPath(cue.ParsePath("constraint.fd_hours")))
//
// CompileConstraint checks catalog structure only; the DC text itself is
// checked by Validate.
func CompileConstraint(v cue.Value) (*ir.ConstraintSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.ConstraintSpec{}
	fail := func(field, msg string, pos token.Pos) error {
		return &CompileError{Constraint: spec.Name, Field: field, Message: msg, Pos: pos}
	}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = strings.Trim(labels[len(labels)-1].String(), `"`)
	}

	if err := checkFields(v, constraintFields, ""); err != nil {
		err.Constraint = spec.Name
		return nil, err
	}

	// Parse dc (required)
	dcVal := v.LookupPath(cue.ParsePath("dc"))
	if !dcVal.Exists() {
		return nil, fail("dc", "dc is required", v.Pos())
	}
	source, err := dcVal.String()
	if err != nil {
		return nil, fail("dc", "dc must be a string", dcVal.Pos())
	}
	spec.Source = source

	// Parse description (optional)
	descVal := v.LookupPath(cue.ParsePath("description"))
	if descVal.Exists() {
		desc, err := descVal.String()
		if err != nil {
			return nil, fail("description", "description must be a string", descVal.Pos())
		}
		spec.Description = desc
	}

	// Parse options (optional)
	optsVal := v.LookupPath(cue.ParsePath("options"))
	if optsVal.Exists() {
		opts, err := parseOptions(optsVal)
		if err != nil {
			err.Constraint = spec.Name
			return nil, err
		}
		spec.Options = opts
	}

	return spec, nil
}

// CompileCatalog compiles every entry under the top-level "constraint" field.
// Entries are returned in CUE field order. All entry errors are collected.
func CompileCatalog(v cue.Value) ([]ir.ConstraintSpec, []error) {
	if err := v.Err(); err != nil {
		return nil, []error{formatCUEError(err)}
	}

	constraintsVal := v.LookupPath(cue.ParsePath("constraint"))
	if !constraintsVal.Exists() {
		return nil, []error{&CompileError{
			Field:   "constraint",
			Message: "catalog has no constraint entries",
			Pos:     v.Pos(),
		}}
	}

	iter, err := constraintsVal.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var specs []ir.ConstraintSpec
	var errs []error
	for iter.Next() {
		spec, err := CompileConstraint(iter.Value())
		if err != nil {
			if cErr, ok := err.(*CompileError); ok && cErr.Constraint == "" {
				cErr.Constraint = iter.Label()
			}
			errs = append(errs, err)
			continue
		}
		specs = append(specs, *spec)
	}
	return specs, errs
}

// parseOptions extracts rendering overrides.
func parseOptions(v cue.Value) (ir.RenderOverrides, *CompileError) {
	var opts ir.RenderOverrides

	if err := checkFields(v, optionFields, "options."); err != nil {
		return opts, err
	}

	targets := []struct {
		name string
		dst  **bool
	}{
		{"select_all_columns", &opts.SelectAllColumns},
		{"format_output", &opts.FormatOutput},
		{"include_comments", &opts.IncludeComments},
	}
	for _, target := range targets {
		fv := v.LookupPath(cue.ParsePath(target.name))
		if !fv.Exists() {
			continue
		}
		b, err := fv.Bool()
		if err != nil {
			return opts, &CompileError{
				Field:   "options." + target.name,
				Message: target.name + " must be a bool",
				Pos:     fv.Pos(),
			}
		}
		*target.dst = &b
	}

	return opts, nil
}

// checkFields rejects struct fields outside the allowed set, catching typos
// like "include_comment".
func checkFields(v cue.Value, allowed map[string]bool, prefix string) *CompileError {
	iter, err := v.Fields()
	if err != nil {
		field := strings.TrimSuffix(prefix, ".")
		if field == "" {
			field = "constraint"
		}
		return &CompileError{
			Field:   field,
			Message: "must be a struct",
			Pos:     v.Pos(),
		}
	}
	for iter.Next() {
		if !allowed[iter.Label()] {
			return &CompileError{
				Field:   prefix + iter.Label(),
				Message: fmt.Sprintf("unknown field %q", iter.Label()),
				Pos:     iter.Value().Pos(),
			}
		}
	}
	return nil
}

// CompileError is a structural error in a catalog entry.
type CompileError struct {
	Constraint string // entry name, empty for catalog-level errors
	Field      string
	Message    string
	Pos        token.Pos
}

func (e *CompileError) Error() string {
	field := e.Field
	if e.Constraint != "" {
		field = e.Constraint + "." + e.Field
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			field, e.Message)
	}
	return fmt.Sprintf("%s: %s", field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
