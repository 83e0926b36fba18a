package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewNarrowingStrings(t *testing.T) {
	s := New([]string{"a", "bb", "ccc"})

	v, err := s.SelectWhere(func(str string) bool { return len(str) > 1 })
	require.NoError(t, err)
	assert.Equal(t, []string{"bb", "ccc"}, v.Records())

	narrowed, err := v.SelectWhere(func(str string) bool { return len(str) > 2 })
	require.NoError(t, err)
	assert.Equal(t, []string{"ccc"}, narrowed.Records())
	assert.Equal(t, 1, narrowed.Len())
}

func TestViewNarrowingIsNonDestructive(t *testing.T) {
	s := New([]int{1, 2, 3, 4, 5, 6})
	v, err := s.AsView()
	require.NoError(t, err)

	before := v.Len()
	evens, err := v.SelectWhere(isEven)
	require.NoError(t, err)

	assert.Equal(t, before, v.Len())
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, v.Records())
	assert.Equal(t, []int{2, 4, 6}, evens.Records())

	odds, err := v.SelectWhere(func(n int) bool { return !isEven(n) })
	require.NoError(t, err, "the source view stays usable after narrowing")
	assert.Equal(t, []int{1, 3, 5}, odds.Records())

	evens.Release()
	assert.Equal(t, 6, v.Len(), "releasing a sibling leaves the source intact")
}

func TestViewNarrowingComposition(t *testing.T) {
	records := []int{12, 7, 3, 18, 21, 4, 9, 30, 15, 6, 2}
	tests := []struct {
		name string
		p, q Predicate[int]
	}{
		{"even then big", isEven, func(n int) bool { return n > 10 }},
		{"big then even", func(n int) bool { return n > 10 }, isEven},
		{"div3 then odd", func(n int) bool { return n%3 == 0 }, func(n int) bool { return n%2 == 1 }},
		{"false then true", func(int) bool { return false }, func(int) bool { return true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(records)
			v, err := s.AsView()
			require.NoError(t, err)

			chained, err := v.SelectWhere(tt.p)
			require.NoError(t, err)
			chained, err = chained.SelectWhere(tt.q)
			require.NoError(t, err)

			combined, err := v.SelectWhere(func(n int) bool { return tt.p(n) && tt.q(n) })
			require.NoError(t, err)

			if diff := cmp.Diff(combined.Records(), chained.Records()); diff != "" {
				t.Errorf("narrowing composition mismatch (-combined +chained):\n%s", diff)
			}
		})
	}
}

func TestViewPredicateSeesOnlySelected(t *testing.T) {
	s := New([]int{1, 2, 3, 4})
	v, err := s.SelectWhere(isEven)
	require.NoError(t, err)

	var seen []int
	_, err = v.SelectWhere(func(n int) bool {
		seen = append(seen, n)
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, seen)
}

func TestViewAt(t *testing.T) {
	s := New([]string{"a", "b", "c"})
	v, err := s.SelectWhere(func(str string) bool { return str != "b" })
	require.NoError(t, err)

	got, err := v.At(1)
	require.NoError(t, err)
	assert.Equal(t, "c", got)

	for _, i := range []int{-1, 2, 10} {
		_, err := v.At(i)
		assert.True(t, IsOutOfRangeError(err), "index %d", i)
	}
}

func TestViewRelease(t *testing.T) {
	s := New([]int{1, 2, 3})
	v, err := s.AsView()
	require.NoError(t, err)

	v.Release()
	assert.Equal(t, 0, v.Len())
	assert.Nil(t, v.Records())

	_, err = v.SelectWhere(isEven)
	assert.True(t, IsReleasedError(err))

	_, err = v.At(0)
	assert.True(t, IsReleasedError(err))

	var be *BorrowError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, ErrCodeReleased, be.Code)
	assert.Equal(t, -1, be.Index)
}

func TestViewSeesMutationsAfterMutableRelease(t *testing.T) {
	s := New([]int{1, 2, 3, 4})

	m, err := s.SelectWhereMut(isEven)
	require.NoError(t, err)
	require.NoError(t, m.UpdateAll(func(n *int) { *n *= 10 }))
	m.Release()

	v, err := s.AsView()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 20, 3, 40}, v.Records())
}
