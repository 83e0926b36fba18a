package queryir

import (
	"fmt"

	"github.com/roach88/viewdb/internal/record"
)

// ValidationResult contains the portability analysis of a predicate.
//
// A portable predicate evaluates identically in memory and in SQLite.
// Non-portable predicates still work in memory; the warnings say where the
// SQL backend may disagree.
type ValidationResult struct {
	// IsPortable is true when Warnings is empty.
	IsPortable bool

	// Warnings lists constructs whose SQL evaluation may differ.
	Warnings []string
}

// Validate checks p for constructs that do not translate faithfully to SQL.
//
// Validate is a pure function with no side effects.
func Validate(p Predicate) ValidationResult {
	v := &validator{warnings: []string{}}
	v.validate(p)
	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		return
	case Equals:
		v.validateValue(pred.Field, pred.Value)
	case *Equals:
		v.validateValue(pred.Field, pred.Value)
	case Compare:
		v.validateCompare(pred)
	case *Compare:
		v.validateCompare(*pred)
	case And:
		v.validateAll(pred.Predicates)
	case *And:
		v.validateAll(pred.Predicates)
	case Or:
		v.validateAll(pred.Predicates)
	case *Or:
		v.validateAll(pred.Predicates)
	case Not:
		v.validate(pred.Predicate)
	case *Not:
		v.validate(pred.Predicate)
	default:
		v.addWarning("Unknown predicate type: %T - portability cannot be verified", p)
	}
}

func (v *validator) validateCompare(c Compare) {
	if _, isNull := c.Value.(record.Null); isNull {
		v.addWarning("Field '%s' compared with %s NULL - never true in either backend", c.Field, c.Op)
		return
	}
	v.validateValue(c.Field, c.Value)
	if c.Op.Ordering() && !c.OfLength {
		if _, isBool := c.Value.(record.Bool); isBool {
			v.addWarning("Field '%s' ordered against a boolean - SQLite stores booleans as integers", c.Field)
		}
	}
}

func (v *validator) validateValue(field string, val record.Value) {
	switch val.(type) {
	case record.Array, record.Object:
		v.addWarning("Field '%s' compared with a %T - SQLite columns hold scalars only", field, val)
	}
}

func (v *validator) validateAll(preds []Predicate) {
	for _, p := range preds {
		v.validate(p)
	}
}
