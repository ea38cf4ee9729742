package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/dcsql/internal/dcir"
	"github.com/roach88/dcsql/internal/dcparse"
	"github.com/roach88/dcsql/internal/dcsql"
)

// ConstraintInput holds the flags that select where constraint text comes from.
type ConstraintInput struct {
	File string // read from file; "-" reads stdin
}

func (in *ConstraintInput) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&in.File, "file", "f", "", `read the constraint from a file ("-" for stdin)`)
}

// Read returns the constraint text from --file, a "-" argument (stdin) or
// the single positional argument.
func (in *ConstraintInput) Read(args []string, stdin io.Reader) (string, error) {
	switch {
	case in.File != "" && len(args) > 0:
		return "", &LoadError{Code: ErrCodeGeneric, Message: "pass the constraint as an argument or with --file, not both"}
	case in.File == "-":
		return readAll(stdin, "stdin")
	case in.File != "":
		f, err := os.Open(in.File)
		if os.IsNotExist(err) {
			return "", &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("constraint file not found: %s", in.File)}
		}
		if err != nil {
			return "", &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("opening constraint file: %v", err)}
		}
		defer f.Close()
		return readAll(f, in.File)
	case len(args) == 0:
		return "", &LoadError{Code: ErrCodeGeneric, Message: "no constraint given: pass it as an argument or with --file"}
	case args[0] == "-":
		return readAll(stdin, "stdin")
	default:
		return args[0], nil
	}
}

func readAll(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading %s: %v", name, err)}
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("%s is empty", name)}
	}
	return text, nil
}

// RenderFlags holds the SQL rendering flags shared by translate, compile
// and check.
type RenderFlags struct {
	SelectAll    bool
	FormatOutput bool
	Compact      bool
	Comments     bool
}

func (r *RenderFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&r.SelectAll, "select-all", false, "select every column of each tuple (t0.*, t1.*)")
	cmd.Flags().BoolVar(&r.FormatOutput, "format-output", true, "render the query over several lines")
	cmd.Flags().BoolVar(&r.Compact, "compact", false, "render the query on a single line (same as --format-output=false)")
	cmd.Flags().BoolVar(&r.Comments, "comments", false, "prefix the query with comment lines naming the constraint and table")
}

// Apply overlays explicitly set flags on base. Flags left at their default
// do not override base, so catalog options survive unless the user asks.
func (r *RenderFlags) Apply(cmd *cobra.Command, base dcsql.Options) dcsql.Options {
	flags := cmd.Flags()
	if flags.Changed("select-all") {
		base = base.WithSelectAllColumns(r.SelectAll)
	}
	if flags.Changed("format-output") {
		base = base.WithFormatOutput(r.FormatOutput)
	}
	if flags.Changed("compact") && r.Compact {
		base = base.WithFormatOutput(false)
	}
	if flags.Changed("comments") {
		base = base.WithIncludeComments(r.Comments)
	}
	return base
}

// constraintErrorCode classifies a parse or validation error.
func constraintErrorCode(err error) string {
	switch {
	case dcparse.IsSyntaxError(err):
		return ErrCodeSyntax
	case dcir.IsWellFormednessError(err):
		return ErrCodeWellFormed
	default:
		return ErrCodeGeneric
	}
}

// constraintErrorDetails returns position or table details for err, or nil.
func constraintErrorDetails(err error) any {
	var synErr *dcparse.SyntaxError
	if errors.As(err, &synErr) {
		return map[string]any{"line": synErr.Line, "column": synErr.Column, "found": synErr.Found}
	}
	var wfErr *dcir.WellFormednessError
	if errors.As(err, &wfErr) && len(wfErr.Tables) > 0 {
		return map[string]any{"rule": wfErr.Rule, "tables": wfErr.Tables}
	}
	return nil
}

// outputConstraintError reports an invalid constraint. Invalid input is a
// validation failure (exit code 1).
func outputConstraintError(formatter *OutputFormatter, err error) error {
	code := constraintErrorCode(err)
	_ = formatter.Error(code, err.Error(), constraintErrorDetails(err))
	return WrapExitError(ExitFailure, code, err)
}

// outputLoadError reports an input or IO problem (exit code 2).
func outputLoadError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	message := err.Error()
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code = loadErr.Code
		message = loadErr.Message
	}
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
