package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/viewdb/internal/queryir"
	"github.com/roach88/viewdb/internal/record"
	"github.com/roach88/viewdb/internal/source"
	"github.com/roach88/viewdb/internal/store"
	"github.com/roach88/viewdb/internal/testutil"
)

// handle is a named view produced by a step. Exactly one field is set.
type handle struct {
	view *store.View[record.Object]
	mut  *store.MutableView[record.Object]
}

func (h handle) len() int {
	if h.mut != nil {
		return h.mut.Len()
	}
	return h.view.Len()
}

func (h handle) records() []record.Object {
	if h.mut != nil {
		return h.mut.Records()
	}
	return h.view.Records()
}

// Harness executes one scenario against a fresh Store.
type Harness struct {
	store   *store.Store[record.Object]
	handles map[string]handle
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario gets its own Store with a deterministic ID. An error is
// returned only when the scenario cannot be executed at all; step and
// assertion mismatches are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a context for loading the record source.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	records, err := loadRecords(ctx, scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	ids := testutil.NewIDSequence(scenario.Name)
	h := &Harness{
		store:   store.New(records, store.WithID(ids.Next()), store.WithLogger(slog.New(slog.DiscardHandler))),
		handles: make(map[string]handle),
		logger:  slog.New(slog.DiscardHandler),
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(i, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}

	for _, msg := range h.evaluateAssertions(scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func loadRecords(ctx context.Context, scenario *Scenario) ([]record.Object, error) {
	if scenario.Source != "" {
		return source.Load(ctx, scenario.Source, source.Options{})
	}
	records := make([]record.Object, 0, len(scenario.Records))
	for i, raw := range scenario.Records {
		v, err := record.FromAny(raw)
		if err != nil {
			return nil, fmt.Errorf("records[%d]: %w", i, err)
		}
		obj, ok := v.(record.Object)
		if !ok {
			return nil, fmt.Errorf("records[%d]: got %T, want a mapping", i, v)
		}
		records = append(records, obj)
	}
	return records, nil
}

// executeStep runs one step, traces it, and checks its Expect clause.
// A returned error means the scenario itself is malformed.
func (h *Harness) executeStep(i int, step Step, result *Result) error {
	pred, err := queryir.ParseConditions(step.Where)
	if err != nil {
		return err
	}
	match, err := queryir.Compile(pred)
	if err != nil {
		return err
	}
	p := store.Predicate[record.Object](match)

	event := TraceEvent{Step: i, Op: step.Op, From: step.From, As: step.As}
	if pred != nil {
		event.Where = queryir.String(pred)
	}

	var (
		produced handle
		second   *handle
		opErr    error
	)
	switch step.Op {
	case OpSelect:
		produced.view, opErr = h.store.SelectWhere(p)
	case OpSelectMut:
		produced.mut, opErr = h.store.SelectWhereMut(p)
	case OpNarrow:
		src, err := h.lookup(step.From)
		if err != nil {
			return err
		}
		if src.view == nil {
			return fmt.Errorf("%q is a mutable view; use narrow_mut", step.From)
		}
		produced.view, opErr = store.FilterOne(src.view, p)
	case OpNarrowMut:
		src, err := h.lookup(step.From)
		if err != nil {
			return err
		}
		if src.mut == nil {
			return fmt.Errorf("%q is a shared view; use narrow", step.From)
		}
		produced.mut, opErr = src.mut.SelectWhereMut(p)
	case OpFilterTwo:
		a, err := h.lookup(step.From)
		if err != nil {
			return err
		}
		b, err := h.lookup(step.With)
		if err != nil {
			return err
		}
		if a.view == nil || b.view == nil {
			return fmt.Errorf("filter_two needs two shared views")
		}
		var right *store.View[record.Object]
		produced.view, right, opErr = store.FilterTwo(a.view, b.view, p)
		if opErr == nil {
			second = &handle{view: right}
		}
	case OpRelease:
		src, err := h.lookup(step.From)
		if err != nil {
			return err
		}
		if src.mut != nil {
			src.mut.Release()
		} else {
			src.view.Release()
		}
	case OpSet:
		src, err := h.lookup(step.From)
		if err != nil {
			return err
		}
		if src.mut == nil {
			return fmt.Errorf("%q is a shared view and cannot be written", step.From)
		}
		assignments, err := record.ObjectFromMap(step.Set)
		if err != nil {
			return fmt.Errorf("set: %w", err)
		}
		opErr = src.mut.UpdateAll(func(obj *record.Object) {
			next := obj.Clone()
			for k, v := range assignments {
				next[k] = v
			}
			*obj = next
		})
		produced = src
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	if opErr != nil {
		var be *store.BorrowError
		if !errors.As(opErr, &be) {
			return opErr
		}
		event.Error = string(be.Code)
	} else {
		if produced.view != nil || produced.mut != nil {
			event.Count = produced.len()
			if step.As != "" {
				h.handles[step.As] = produced
			}
		}
		if second != nil && step.AsSecond != "" {
			h.handles[step.AsSecond] = *second
		}
	}
	result.Trace = append(result.Trace, event)

	h.checkExpect(i, step, event, result)
	h.logger.Debug("step completed", "step", i, "op", step.Op, "count", event.Count, "error", event.Error)
	return nil
}

func (h *Harness) checkExpect(i int, step Step, event TraceEvent, result *Result) {
	want := step.Expect
	if want == nil {
		want = &Expect{}
	}
	if want.Error != event.Error {
		got := event.Error
		if got == "" {
			got = "success"
		}
		expected := want.Error
		if expected == "" {
			expected = "success"
		}
		result.AddError(fmt.Sprintf("step %d (%s): expected %s, got %s", i, step.Op, expected, got))
		return
	}
	if want.Count != nil && *want.Count != event.Count {
		result.AddError(fmt.Sprintf("step %d (%s): expected count %d, got %d", i, step.Op, *want.Count, event.Count))
	}
}

func (h *Harness) lookup(name string) (handle, error) {
	hd, ok := h.handles[name]
	if !ok {
		known := make([]string, 0, len(h.handles))
		for k := range h.handles {
			known = append(known, k)
		}
		sort.Strings(known)
		return handle{}, fmt.Errorf("unknown view %q (known: %s)", name, strings.Join(known, ", "))
	}
	return hd, nil
}
