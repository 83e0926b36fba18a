package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/viewdb/internal/queryir"
)

// Scenario defines a sequence of store operations and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Records are inline records. Exclusive with Source.
	Records []any `yaml:"records,omitempty"`

	// Source is a record file loaded with the source package. Relative
	// paths are resolved against the scenario file.
	Source string `yaml:"source,omitempty"`

	// Steps run in order against a single Store.
	Steps []Step `yaml:"steps"`

	// Assertions validate the views and the Store after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation on the Store or a named view.
type Step struct {
	Op       string         `yaml:"op"`
	As       string         `yaml:"as,omitempty"`
	AsSecond string         `yaml:"as_second,omitempty"`
	From     string         `yaml:"from,omitempty"`
	With     string         `yaml:"with,omitempty"`
	Where    []string       `yaml:"where,omitempty"`
	Set      map[string]any `yaml:"set,omitempty"`
	Expect   *Expect        `yaml:"expect,omitempty"`
}

// Expect describes the outcome of a step. A step without Expect must
// succeed.
type Expect struct {
	// Count is the expected length of the resulting view.
	Count *int `yaml:"count,omitempty"`

	// Error is the expected store.BorrowErrorCode.
	Error string `yaml:"error,omitempty"`
}

// Step operations.
const (
	OpSelect    = "select"
	OpSelectMut = "select_mut"
	OpNarrow    = "narrow"
	OpNarrowMut = "narrow_mut"
	OpFilterTwo = "filter_two"
	OpRelease   = "release"
	OpSet       = "set"
)

// Assertion validates the state after all steps ran.
type Assertion struct {
	// Type specifies the assertion type:
	// - "view_count": the view has Count records
	// - "view_values": Field over the view's records equals Values, in order
	// - "borrowed": live View and MutableView counts on the Store
	// - "final_state": the single record matching Where has the Expect fields
	Type string `yaml:"type"`

	View      string         `yaml:"view,omitempty"`
	Count     int            `yaml:"count,omitempty"`
	Field     string         `yaml:"field,omitempty"`
	Values    []any          `yaml:"values,omitempty"`
	Shared    int            `yaml:"shared,omitempty"`
	Exclusive int            `yaml:"exclusive,omitempty"`
	Where     map[string]any `yaml:"where,omitempty"`
	Expect    map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertViewCount  = "view_count"
	AssertViewValues = "view_values"
	AssertBorrowed   = "borrowed"
	AssertFinalState = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected to catch typos.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Source != "" && !filepath.IsAbs(scenario.Source) {
		scenario.Source = filepath.Join(filepath.Dir(path), scenario.Source)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Source != "" && len(s.Records) > 0 {
		return fmt.Errorf("records and source are mutually exclusive")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Op {
	case OpSelect, OpSelectMut:
		if st.From != "" {
			return fmt.Errorf("steps[%d]: %s selects from the store and takes no from", index, st.Op)
		}
	case OpNarrow, OpNarrowMut, OpRelease, OpSet:
		if st.From == "" {
			return fmt.Errorf("steps[%d]: from is required for %s", index, st.Op)
		}
	case OpFilterTwo:
		if st.From == "" || st.With == "" {
			return fmt.Errorf("steps[%d]: from and with are required for filter_two", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}

	if st.Op == OpSet && len(st.Set) == 0 {
		return fmt.Errorf("steps[%d]: set requires at least one field", index)
	}
	if st.Op != OpRelease && st.Op != OpSet && st.As == "" && (st.Expect == nil || st.Expect.Error == "") {
		return fmt.Errorf("steps[%d]: as is required for %s", index, st.Op)
	}
	if _, err := queryir.ParseConditions(st.Where); err != nil {
		return fmt.Errorf("steps[%d]: %w", index, err)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertViewCount:
		if a.View == "" {
			return fmt.Errorf("assertions[%d]: view is required for view_count", index)
		}
	case AssertViewValues:
		if a.View == "" || a.Field == "" {
			return fmt.Errorf("assertions[%d]: view and field are required for view_values", index)
		}
	case AssertBorrowed:
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
