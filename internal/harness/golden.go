package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/viewdb/internal/record"
)

// TraceSnapshot captures the trace of a scenario execution.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
}

// toCanonical converts the snapshot to a record value so it serializes
// with record.MarshalCanonical.
func (s *TraceSnapshot) toCanonical() record.Object {
	trace := make(record.Array, len(s.Trace))
	for i, ev := range s.Trace {
		obj := record.Object{
			"step":  record.Int(ev.Step),
			"op":    record.String(ev.Op),
			"count": record.Int(ev.Count),
		}
		if ev.From != "" {
			obj["from"] = record.String(ev.From)
		}
		if ev.As != "" {
			obj["as"] = record.String(ev.As)
		}
		if ev.Where != "" {
			obj["where"] = record.String(ev.Where)
		}
		if ev.Error != "" {
			obj["error"] = record.String(ev.Error)
		}
		trace[i] = obj
	}
	return record.Object{
		"scenario_name": record.String(s.ScenarioName),
		"trace":         trace,
	}
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{ScenarioName: scenarioName, Trace: result.Trace}
	traceJSON, err := record.MarshalCanonical(snapshot.toCanonical())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
