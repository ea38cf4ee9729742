package ir

import "github.com/roach88/dcsql/internal/dcsql"

// ConstraintSpec is one named denial constraint from a catalog.
type ConstraintSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Source      string          `json:"dc"`
	Options     RenderOverrides `json:"options,omitempty"`
}

// RenderOverrides holds per-constraint rendering options. A nil field leaves
// the caller's option unchanged.
type RenderOverrides struct {
	SelectAllColumns *bool `json:"select_all_columns,omitempty" yaml:"select_all_columns,omitempty"`
	FormatOutput     *bool `json:"format_output,omitempty" yaml:"format_output,omitempty"`
	IncludeComments  *bool `json:"include_comments,omitempty" yaml:"include_comments,omitempty"`
}

// Apply returns base with every non-nil override applied.
func (o RenderOverrides) Apply(base dcsql.Options) dcsql.Options {
	if o.SelectAllColumns != nil {
		base = base.WithSelectAllColumns(*o.SelectAllColumns)
	}
	if o.FormatOutput != nil {
		base = base.WithFormatOutput(*o.FormatOutput)
	}
	if o.IncludeComments != nil {
		base = base.WithIncludeComments(*o.IncludeComments)
	}
	return base
}

// IsZero reports whether no override is set.
func (o RenderOverrides) IsZero() bool {
	return o.SelectAllColumns == nil && o.FormatOutput == nil && o.IncludeComments == nil
}
