package queryir

import (
	"fmt"
	"regexp"

	"github.com/roach88/viewdb/internal/record"
)

// ParseError reports a condition that could not be parsed.
type ParseError struct {
	Input   string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse condition %q: %s", e.Input, e.Message)
}

var conditionPattern = regexp.MustCompile(
	`^\s*(?:len\(\s*([A-Za-z_][A-Za-z0-9_.\-]*)\s*\)|([A-Za-z_][A-Za-z0-9_.\-]*))\s*(==|!=|<=|>=|=|<|>)\s*(.*?)\s*$`)

// ParseCondition parses a single condition of the form
//
//	field op value
//	len(field) op n
//
// where op is one of = == != < <= > >=. The value is read with
// record.ParseScalar: integers, true/false, null, quoted or bare strings.
// A plain equality parses to Equals, everything else to Compare.
func ParseCondition(s string) (Predicate, error) {
	m := conditionPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, &ParseError{Input: s, Message: "expected 'field op value' or 'len(field) op n'"}
	}
	lengthField, field, rawOp, rawValue := m[1], m[2], m[3], m[4]
	if rawValue == "" {
		return nil, &ParseError{Input: s, Message: "missing value"}
	}

	op := Op(rawOp)
	if op == "==" {
		op = OpEq
	}
	value := record.ParseScalar(rawValue)

	if lengthField != "" {
		if _, ok := value.(record.Int); !ok {
			return nil, &ParseError{Input: s, Message: "length must be compared with an integer"}
		}
		return Compare{Field: lengthField, Op: op, Value: value, OfLength: true}, nil
	}
	if op == OpEq {
		return Equals{Field: field, Value: value}, nil
	}
	return Compare{Field: field, Op: op, Value: value}, nil
}

// ParseConditions parses every condition and joins them with And.
// A single condition is returned as-is; none yields nil (match all).
func ParseConditions(conds []string) (Predicate, error) {
	preds := make([]Predicate, 0, len(conds))
	for _, c := range conds {
		p, err := ParseCondition(c)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	switch len(preds) {
	case 0:
		return nil, nil
	case 1:
		return preds[0], nil
	default:
		return And{Predicates: preds}, nil
	}
}
