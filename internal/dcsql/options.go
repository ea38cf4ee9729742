package dcsql

// Options controls how a denial constraint is rendered as SQL.
// Options is a plain value; pass it by value and derive variants with the
// With* methods rather than mutating a shared instance.
type Options struct {
	// SelectAllColumns emits "alias.*" per tuple instead of enumerating the
	// columns referenced by the constraint.
	SelectAllColumns bool `json:"select_all_columns" yaml:"select_all_columns"`

	// FormatOutput emits a multi-line statement with indented continuation
	// lines. When false the same tokens are joined on a single line.
	FormatOutput bool `json:"format_output" yaml:"format_output"`

	// IncludeComments prepends "--" comment lines reproducing the constraint.
	IncludeComments bool `json:"include_comments" yaml:"include_comments"`
}

// DefaultOptions returns the default rendering: enumerated columns,
// formatted output, no comments.
func DefaultOptions() Options {
	return Options{
		SelectAllColumns: false,
		FormatOutput:     true,
		IncludeComments:  false,
	}
}

// WithSelectAllColumns returns a copy of o with SelectAllColumns set.
func (o Options) WithSelectAllColumns(v bool) Options {
	o.SelectAllColumns = v
	return o
}

// WithFormatOutput returns a copy of o with FormatOutput set.
func (o Options) WithFormatOutput(v bool) Options {
	o.FormatOutput = v
	return o
}

// WithIncludeComments returns a copy of o with IncludeComments set.
func (o Options) WithIncludeComments(v bool) Options {
	o.IncludeComments = v
	return o
}
