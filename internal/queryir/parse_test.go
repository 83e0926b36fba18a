package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/viewdb/internal/record"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		in   string
		want Predicate
	}{
		{"n = 2", Equals{Field: "n", Value: record.Int(2)}},
		{"n==2", Equals{Field: "n", Value: record.Int(2)}},
		{"status = active", Equals{Field: "status", Value: record.String("active")}},
		{`status = "two words"`, Equals{Field: "status", Value: record.String("two words")}},
		{"done = true", Equals{Field: "done", Value: record.Bool(true)}},
		{"note = null", Equals{Field: "note", Value: record.Null{}}},
		{"n != 2", Compare{Field: "n", Op: OpNe, Value: record.Int(2)}},
		{"n<=-1", Compare{Field: "n", Op: OpLe, Value: record.Int(-1)}},
		{"  n >= 10  ", Compare{Field: "n", Op: OpGe, Value: record.Int(10)}},
		{"name > m", Compare{Field: "name", Op: OpGt, Value: record.String("m")}},
		{"len(name) > 1", Compare{Field: "name", Op: OpGt, Value: record.Int(1), OfLength: true}},
		{"len( tags ) = 0", Compare{Field: "tags", Op: OpEq, Value: record.Int(0), OfLength: true}},
		{"user.id < 5", Compare{Field: "user.id", Op: OpLt, Value: record.Int(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCondition(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseConditionErrors(t *testing.T) {
	for _, in := range []string{"", "n", "n =", "= 3", "len(name) > x", "1n = 3", "n ~ 3"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseCondition(in)
			require.Error(t, err)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, in, pe.Input)
		})
	}
}

func TestParseConditions(t *testing.T) {
	p, err := ParseConditions(nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = ParseConditions([]string{"n > 1"})
	require.NoError(t, err)
	assert.Equal(t, Compare{Field: "n", Op: OpGt, Value: record.Int(1)}, p)

	p, err = ParseConditions([]string{"n > 1", "n < 5"})
	require.NoError(t, err)
	assert.Equal(t, And{Predicates: []Predicate{
		Compare{Field: "n", Op: OpGt, Value: record.Int(1)},
		Compare{Field: "n", Op: OpLt, Value: record.Int(5)},
	}}, p)

	_, err = ParseConditions([]string{"n > 1", "bad"})
	assert.Error(t, err)
}

func TestStringRoundTrip(t *testing.T) {
	for _, in := range []string{"n = 2", "n != 2", `name = "bob"`, "len(name) > 1"} {
		p, err := ParseCondition(in)
		require.NoError(t, err)
		again, err := ParseCondition(String(p))
		require.NoError(t, err)
		assert.Equal(t, p, again, "rendered as %q", String(p))
	}

	assert.Equal(t, `and(n > 1, not(s = "x"))`, String(And{Predicates: []Predicate{
		Compare{Field: "n", Op: OpGt, Value: record.Int(1)},
		Not{Predicate: Equals{Field: "s", Value: record.String("x")}},
	}}))
}
