package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dataslice/internal/assign"
)

// Scenario defines a homework check.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// HomeworkSet is the homework set id every student is assigned.
	HomeworkSet string `yaml:"homework_set"`

	// Students lists explicit student ids.
	Students []string `yaml:"students,omitempty"`

	// Sample adds generated ids after Students.
	Sample *Sample `yaml:"sample,omitempty"`

	// Dataset is a YAML master dataset. Empty means the built-in one.
	// Relative paths are resolved against the scenario file.
	Dataset string `yaml:"dataset,omitempty"`

	// Bounds overrides the default row ranges.
	Bounds *assign.Config `yaml:"bounds,omitempty"`

	// Queries run against every student's sandbox, in order.
	Queries []Query `yaml:"queries"`

	// Assertions are evaluated for every student.
	Assertions []Assertion `yaml:"assertions"`
}

// Sample generates Count ids of the form Prefix+index.
type Sample struct {
	Prefix string `yaml:"prefix"`
	Count  int    `yaml:"count"`
}

// Query is a named SQL statement.
type Query struct {
	Name string `yaml:"name"`
	SQL  string `yaml:"sql"`
}

// Assertion validates one student's outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "invariants": assignment passes assign.Verify
	// - "table_rows": sandbox table row count within bounds
	// - "query_rows": query row count within bounds
	// - "query_columns": query columns match exactly
	// - "query_error": query fails
	Type string `yaml:"type"`

	// Table is the sandbox table (used by table_rows).
	Table string `yaml:"table,omitempty"`

	// Query is a query name (used by query_rows, query_columns, query_error).
	Query string `yaml:"query,omitempty"`

	// Min and Max bound a row count. Nil means unbounded.
	Min *int `yaml:"min,omitempty"`
	Max *int `yaml:"max,omitempty"`

	// Columns are the expected column names (used by query_columns).
	Columns []string `yaml:"columns,omitempty"`
}

// Assertion type constants.
const (
	AssertInvariants   = "invariants"
	AssertTableRows    = "table_rows"
	AssertQueryRows    = "query_rows"
	AssertQueryColumns = "query_columns"
	AssertQueryError   = "query_error"
)

// Tables lists the sandbox tables table_rows can refer to.
var Tables = []string{"Students", "Courses", "Lecturers", "Enrollments"}

// StudentIDs returns the explicit ids followed by the sampled ones.
func (s *Scenario) StudentIDs() []string {
	ids := append([]string(nil), s.Students...)
	if s.Sample != nil {
		for i := range s.Sample.Count {
			ids = append(ids, fmt.Sprintf("%s%d", s.Sample.Prefix, i))
		}
	}
	return ids
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Dataset != "" && !filepath.IsAbs(scenario.Dataset) {
		scenario.Dataset = filepath.Join(filepath.Dir(path), scenario.Dataset)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Dataset paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarios returns the .yaml and .yml files under dir, in lexical
// order. A non-empty filter is a glob matched against the file name without
// its extension.
func FindScenarios(dir, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.HomeworkSet == "" {
		return fmt.Errorf("homework_set is required")
	}

	if s.Sample != nil && s.Sample.Count < 1 {
		return fmt.Errorf("sample.count must be at least 1, got %d", s.Sample.Count)
	}

	if len(s.StudentIDs()) == 0 {
		return fmt.Errorf("students or sample is required")
	}

	if s.Bounds != nil {
		if err := s.Bounds.Validate(); err != nil {
			return fmt.Errorf("bounds: %w", err)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	queries := make(map[string]bool, len(s.Queries))
	for i, q := range s.Queries {
		if q.Name == "" {
			return fmt.Errorf("queries[%d]: name is required", i)
		}
		if strings.TrimSpace(q.SQL) == "" {
			return fmt.Errorf("queries[%d]: sql is required", i)
		}
		if queries[q.Name] {
			return fmt.Errorf("queries[%d]: duplicate name %q", i, q.Name)
		}
		queries[q.Name] = true
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, queries); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion, queries map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Min != nil && a.Max != nil && *a.Max < *a.Min {
		return fmt.Errorf("assertions[%d]: max (%d) must be >= min (%d)", index, *a.Max, *a.Min)
	}

	switch a.Type {
	case AssertInvariants:
	case AssertTableRows:
		if !isTable(a.Table) {
			return fmt.Errorf("assertions[%d]: table must be one of %v for table_rows, got %q", index, Tables, a.Table)
		}
	case AssertQueryRows, AssertQueryColumns, AssertQueryError:
		if a.Query == "" {
			return fmt.Errorf("assertions[%d]: query is required for %s", index, a.Type)
		}
		if !queries[a.Query] {
			return fmt.Errorf("assertions[%d]: unknown query %q", index, a.Query)
		}
		if a.Type == AssertQueryColumns && len(a.Columns) == 0 {
			return fmt.Errorf("assertions[%d]: columns list is required for query_columns", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func isTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}
