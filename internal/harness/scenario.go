package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dcsql/internal/ir"
)

// Scenario defines a conformance test scenario for one denial constraint.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Constraint is the denial constraint text under test.
	Constraint string `yaml:"constraint"`

	// Options overrides the default rendering options.
	Options ir.RenderOverrides `yaml:"options,omitempty"`

	// Data is loaded into the workspace before the check runs.
	// Required when Expect.Violations is set.
	Data *DataClause `yaml:"data,omitempty"`

	// Expect holds the outcomes to verify.
	Expect ExpectClause `yaml:"expect"`

	// RunID is the fixed run ID recorded for the check.
	// Defaults to DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`
}

// DataClause is an inline CSV table.
type DataClause struct {
	// Table is the data source name. A ".csv" suffix is dropped when the
	// table is created, matching the generated FROM clause.
	Table string `yaml:"table"`

	// CSV is the table content, header row first.
	CSV string `yaml:"csv"`
}

// ExpectClause specifies the expected outcome. At least one field must be set.
type ExpectClause struct {
	// SQL is the exact expected query.
	SQL string `yaml:"sql,omitempty"`

	// Error is a substring the translation error must contain.
	// When set, translation must fail.
	Error string `yaml:"error,omitempty"`

	// Violations is the expected number of violating tuple pairs.
	Violations *int `yaml:"violations,omitempty"`
}

// DefaultRunID is recorded when a scenario has no run_id.
const DefaultRunID = "test-run-default"

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML from data.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and consistent.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Constraint == "" {
		return fmt.Errorf("constraint is required")
	}

	if s.Data != nil {
		if s.Data.Table == "" {
			return fmt.Errorf("data.table is required")
		}
		if s.Data.CSV == "" {
			return fmt.Errorf("data.csv is required")
		}
	}

	e := s.Expect
	if e.SQL == "" && e.Error == "" && e.Violations == nil {
		return fmt.Errorf("expect must set at least one of sql, error, violations")
	}
	if e.Error != "" && (e.SQL != "" || e.Violations != nil) {
		return fmt.Errorf("expect.error cannot be combined with sql or violations")
	}
	if e.Violations != nil {
		if *e.Violations < 0 {
			return fmt.Errorf("expect.violations must be non-negative")
		}
		if s.Data == nil {
			return fmt.Errorf("expect.violations requires data")
		}
	}

	return nil
}
