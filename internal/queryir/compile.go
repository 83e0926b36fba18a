package queryir

import (
	"fmt"

	"github.com/roach88/viewdb/internal/record"
)

// Matcher is a compiled predicate.
type Matcher func(record.Object) bool

// Compile turns p into a Matcher. A nil predicate matches everything.
//
// Compile validates structure (known operators, integer length operands,
// non-nil operands) up front so that the returned Matcher is total.
func Compile(p Predicate) (Matcher, error) {
	if p == nil {
		return func(record.Object) bool { return true }, nil
	}

	switch pred := p.(type) {
	case Equals:
		return compileEquals(pred)
	case *Equals:
		return compileEquals(*pred)
	case Compare:
		return compileCompare(pred)
	case *Compare:
		return compileCompare(*pred)
	case And:
		return compileAnd(pred.Predicates)
	case *And:
		return compileAnd(pred.Predicates)
	case Or:
		return compileOr(pred.Predicates)
	case *Or:
		return compileOr(pred.Predicates)
	case Not:
		return compileNot(pred.Predicate)
	case *Not:
		return compileNot(pred.Predicate)
	default:
		return nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// MustCompile is Compile for predicates known to be valid. Panics on error.
func MustCompile(p Predicate) Matcher {
	m, err := Compile(p)
	if err != nil {
		panic(fmt.Sprintf("queryir: %v", err))
	}
	return m
}

func compileEquals(eq Equals) (Matcher, error) {
	if eq.Field == "" {
		return nil, fmt.Errorf("equals: empty field name")
	}
	if eq.Value == nil {
		return nil, fmt.Errorf("equals %s: nil value", eq.Field)
	}
	return func(obj record.Object) bool {
		v, ok := obj[eq.Field]
		if !ok {
			return false
		}
		return record.Equal(v, eq.Value)
	}, nil
}

func compileCompare(c Compare) (Matcher, error) {
	if c.Field == "" {
		return nil, fmt.Errorf("compare: empty field name")
	}
	if !c.Op.Valid() {
		return nil, fmt.Errorf("compare %s: unknown operator %q", c.Field, c.Op)
	}
	if c.Value == nil {
		return nil, fmt.Errorf("compare %s: nil value", c.Field)
	}
	if c.OfLength {
		if _, ok := c.Value.(record.Int); !ok {
			return nil, fmt.Errorf("compare len(%s): length must be compared with an integer, got %T", c.Field, c.Value)
		}
	}

	return func(obj record.Object) bool {
		v, ok := obj[c.Field]
		if !ok {
			return false
		}
		if _, isNull := v.(record.Null); isNull {
			return false
		}
		if c.OfLength {
			n, ok := record.Length(v)
			if !ok {
				return false
			}
			v = record.Int(n)
		}
		return apply(c.Op, v, c.Value)
	}, nil
}

// apply evaluates left <op> right. Incomparable operands are false for
// every operator, including !=.
func apply(op Op, left, right record.Value) bool {
	switch op {
	case OpEq:
		return record.Equal(left, right)
	case OpNe:
		if _, isNull := right.(record.Null); isNull {
			return false
		}
		if !record.SameKind(left, right) {
			return false
		}
		return !record.Equal(left, right)
	}

	c, ok := record.Compare(left, right)
	if !ok {
		return false
	}
	switch op {
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	case OpGt:
		return c > 0
	case OpGe:
		return c >= 0
	}
	return false
}

func compileAnd(preds []Predicate) (Matcher, error) {
	matchers, err := compileAll("and", preds)
	if err != nil {
		return nil, err
	}
	return func(obj record.Object) bool {
		for _, m := range matchers {
			if !m(obj) {
				return false
			}
		}
		return true
	}, nil
}

func compileOr(preds []Predicate) (Matcher, error) {
	matchers, err := compileAll("or", preds)
	if err != nil {
		return nil, err
	}
	return func(obj record.Object) bool {
		for _, m := range matchers {
			if m(obj) {
				return true
			}
		}
		return false
	}, nil
}

func compileNot(p Predicate) (Matcher, error) {
	if p == nil {
		return nil, fmt.Errorf("not: nil operand")
	}
	inner, err := Compile(p)
	if err != nil {
		return nil, fmt.Errorf("not: %w", err)
	}
	return func(obj record.Object) bool {
		return !inner(obj)
	}, nil
}

func compileAll(name string, preds []Predicate) ([]Matcher, error) {
	matchers := make([]Matcher, len(preds))
	for i, p := range preds {
		if p == nil {
			return nil, fmt.Errorf("%s[%d]: nil operand", name, i)
		}
		m, err := Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		matchers[i] = m
	}
	return matchers, nil
}
