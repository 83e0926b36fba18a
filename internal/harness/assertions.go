package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/viewdb/internal/record"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("Assertion failed: %s\n  Expected: %s\n  Actual: %s", e.Type, e.Expected, e.Actual)
}

// evaluateAssertions runs every assertion and returns the failure messages.
func (h *Harness) evaluateAssertions(assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertViewCount:
			err = h.assertViewCount(a)
		case AssertViewValues:
			err = h.assertViewValues(a)
		case AssertBorrowed:
			err = h.assertBorrowed(a)
		case AssertFinalState:
			err = h.assertFinalState(a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func (h *Harness) assertViewCount(a Assertion) error {
	hd, err := h.lookup(a.View)
	if err != nil {
		return err
	}
	if got := hd.len(); got != a.Count {
		return &AssertionError{
			Type:     AssertViewCount,
			Expected: fmt.Sprintf("%s has %d record(s)", a.View, a.Count),
			Actual:   fmt.Sprintf("%d record(s)", got),
		}
	}
	return nil
}

// assertViewValues compares one field across the view's records, in order.
// A record without the field contributes null.
func (h *Harness) assertViewValues(a Assertion) error {
	hd, err := h.lookup(a.View)
	if err != nil {
		return err
	}

	want, err := record.FromAny(a.Values)
	if err != nil {
		return fmt.Errorf("values: %w", err)
	}
	if a.Values == nil {
		want = record.Array{}
	}

	got := record.Array{}
	for _, r := range hd.records() {
		v, ok := r.Field(a.Field)
		if !ok {
			v = record.Null{}
		}
		got = append(got, v)
	}

	if !record.Equal(want, got) {
		return &AssertionError{
			Type:     AssertViewValues,
			Expected: fmt.Sprintf("%s.%s = %s", a.View, a.Field, render(want)),
			Actual:   render(got),
		}
	}
	return nil
}

func (h *Harness) assertBorrowed(a Assertion) error {
	shared, exclusive := h.store.Borrowed()
	if shared != a.Shared || exclusive != a.Exclusive {
		return &AssertionError{
			Type:     AssertBorrowed,
			Expected: fmt.Sprintf("shared=%d exclusive=%d", a.Shared, a.Exclusive),
			Actual:   fmt.Sprintf("shared=%d exclusive=%d", shared, exclusive),
		}
	}
	return nil
}

// assertFinalState finds the single record matching every Where field and
// checks the Expect fields with subset semantics. It needs read access to
// the whole Store, so every MutableView must have been released.
func (h *Harness) assertFinalState(a Assertion) error {
	where, err := record.ObjectFromMap(a.Where)
	if err != nil {
		return fmt.Errorf("where: %w", err)
	}
	expect, err := record.ObjectFromMap(a.Expect)
	if err != nil {
		return fmt.Errorf("expect: %w", err)
	}

	view, err := h.store.SelectWhere(func(r record.Object) bool {
		for k, v := range where {
			if !record.Equal(r[k], v) {
				return false
			}
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("read final state: %w", err)
	}
	defer view.Release()

	switch view.Len() {
	case 0:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("record where %s", formatWhere(where)),
			Actual:   "record not found",
		}
	case 1:
	default:
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("exactly one record where %s", formatWhere(where)),
			Actual:   fmt.Sprintf("%d records matched (assertion is ambiguous)", view.Len()),
		}
	}

	actual, _ := view.At(0)
	for _, k := range expect.SortedKeys() {
		got, ok := actual.Field(k)
		if !ok {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q to exist", k),
				Actual:   fmt.Sprintf("fields present: %v", actual.SortedKeys()),
			}
		}
		if !record.Equal(expect[k], got) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("field %q = %s", k, render(expect[k])),
				Actual:   fmt.Sprintf("field %q = %s", k, render(got)),
			}
		}
	}
	return nil
}

// formatWhere creates a human-readable description of the match fields.
func formatWhere(where record.Object) string {
	if len(where) == 0 {
		return "(no conditions)"
	}
	keys := where.SortedKeys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, render(where[k])))
	}
	return strings.Join(parts, " AND ")
}

func render(v record.Value) string {
	out, err := record.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}
