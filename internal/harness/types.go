package harness

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation matched.
	Pass bool `json:"pass"`

	// ConstraintID is the content-addressed ID of the parsed constraint.
	ConstraintID string `json:"constraint_id,omitempty"`

	// SQL is the generated query. Empty if translation failed.
	SQL string `json:"sql,omitempty"`

	// Error is the translation or check error message, if any.
	Error string `json:"error,omitempty"`

	// Checked reports whether the query ran against scenario data.
	Checked bool `json:"checked"`

	// Violations is the number of violating pairs when Checked is true.
	Violations int `json:"violations"`

	// Columns and Rows hold the violating pairs when Checked is true.
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows,omitempty"`

	// Errors contains expectation failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
