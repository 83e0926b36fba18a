package queryir

import (
	"fmt"
	"slices"

	"github.com/roach88/viewdb/internal/record"
)

// Predicate is a condition over a record.Object.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode()
}

// Op is a comparison operator.
type Op string

const (
	OpEq Op = "="
	OpNe Op = "!="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

// Valid reports whether op is a known operator.
func (op Op) Valid() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// Ordering reports whether op needs ordered operands.
func (op Op) Ordering() bool {
	return op == OpLt || op == OpLe || op == OpGt || op == OpGe
}

// Equals is field = value, compared deeply.
//
// Example:
//
//	Equals{Field: "status", Value: record.String("active")}
type Equals struct {
	Field string
	Value record.Value
}

func (Equals) predicateNode() {}

// Compare is field <op> value. With OfLength set, the field's length
// (characters of a string, elements of an array) is compared against an
// integer Value instead of the field itself.
//
// Example:
//
//	Compare{Field: "name", Op: OpGt, Value: record.Int(2), OfLength: true}
//
// selects records whose name is longer than two characters.
type Compare struct {
	Field    string
	Op       Op
	Value    record.Value
	OfLength bool
}

func (Compare) predicateNode() {}

// And is true when every operand is true. Empty And is true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or is true when any operand is true. Empty Or is false.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not inverts its operand.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// String renders p in the condition syntax accepted by ParseCondition,
// with And/Or/Not spelled out.
func String(p Predicate) string {
	switch pred := p.(type) {
	case nil:
		return "true"
	case Equals:
		return fmt.Sprintf("%s = %s", pred.Field, renderValue(pred.Value))
	case Compare:
		field := pred.Field
		if pred.OfLength {
			field = "len(" + field + ")"
		}
		return fmt.Sprintf("%s %s %s", field, pred.Op, renderValue(pred.Value))
	case And:
		return joinPredicates("and", pred.Predicates)
	case Or:
		return joinPredicates("or", pred.Predicates)
	case Not:
		return "not(" + String(pred.Predicate) + ")"
	default:
		return fmt.Sprintf("<%T>", p)
	}
}

// Fields returns the distinct field names p refers to, sorted.
func Fields(p Predicate) []string {
	var fields []string
	collectFields(p, &fields)
	slices.Sort(fields)
	return slices.Compact(fields)
}

func collectFields(p Predicate, fields *[]string) {
	switch pred := p.(type) {
	case Equals:
		*fields = append(*fields, pred.Field)
	case *Equals:
		*fields = append(*fields, pred.Field)
	case Compare:
		*fields = append(*fields, pred.Field)
	case *Compare:
		*fields = append(*fields, pred.Field)
	case And:
		for _, sub := range pred.Predicates {
			collectFields(sub, fields)
		}
	case *And:
		for _, sub := range pred.Predicates {
			collectFields(sub, fields)
		}
	case Or:
		for _, sub := range pred.Predicates {
			collectFields(sub, fields)
		}
	case *Or:
		for _, sub := range pred.Predicates {
			collectFields(sub, fields)
		}
	case Not:
		collectFields(pred.Predicate, fields)
	case *Not:
		collectFields(pred.Predicate, fields)
	}
}

func joinPredicates(name string, preds []Predicate) string {
	s := name + "("
	for i, p := range preds {
		if i > 0 {
			s += ", "
		}
		s += String(p)
	}
	return s + ")"
}

func renderValue(v record.Value) string {
	out, err := record.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}
