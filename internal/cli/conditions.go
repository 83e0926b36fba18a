package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/viewdb/internal/queryir"
	"github.com/roach88/viewdb/internal/record"
	"github.com/roach88/viewdb/internal/source"
	"github.com/roach88/viewdb/internal/store"
)

// compileConditions turns each --where flag into its own store predicate,
// so callers can narrow once per condition.
func compileConditions(conds []string) ([]store.Predicate[record.Object], error) {
	preds := make([]store.Predicate[record.Object], 0, len(conds))
	for _, c := range conds {
		p, err := queryir.ParseCondition(c)
		if err != nil {
			return nil, err
		}
		m, err := queryir.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile %q: %w", c, err)
		}
		preds = append(preds, store.Predicate[record.Object](m))
	}
	return preds, nil
}

// assignment is one --set field=value pair.
type assignment struct {
	Field string
	Value record.Value
}

func parseAssignments(sets []string) ([]assignment, error) {
	out := make([]assignment, 0, len(sets))
	for _, s := range sets {
		field, raw, ok := strings.Cut(s, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid --set %q: expected field=value", s)
		}
		out = append(out, assignment{Field: field, Value: record.ParseScalar(strings.TrimSpace(raw))})
	}
	return out, nil
}

// fail reports err through the formatter and returns the matching ExitError.
func fail(f *OutputFormatter, message string, err error) error {
	exitCode, errCode := classify(err)
	_ = f.Error(errCode, fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(exitCode, errCode, err)
}

func classify(err error) (exitCode int, errCode string) {
	var parseErr *queryir.ParseError
	var loadErr *source.LoadError
	var borrowErr *store.BorrowError
	switch {
	case errors.As(err, &borrowErr):
		return ExitFailure, ErrCodeBorrow
	case errors.As(err, &parseErr):
		return ExitCommandError, ErrCodeCondition
	case errors.As(err, &loadErr):
		return ExitCommandError, ErrCodeLoad
	default:
		return ExitCommandError, ErrCodeGeneric
	}
}
