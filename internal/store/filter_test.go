package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterOne(t *testing.T) {
	s := New([]int{5, 6, 7, 8})
	v, err := s.AsView()
	require.NoError(t, err)

	got, err := FilterOne(v, isEven)
	require.NoError(t, err)

	want, err := v.SelectWhere(isEven)
	require.NoError(t, err)
	assert.Equal(t, want.Records(), got.Records())
	assert.Equal(t, 4, v.Len())
}

func TestFilterTwoUnrelatedStores(t *testing.T) {
	long := func(s string) bool { return len(s) > 3 }

	first := New([]string{"tea", "coffee", "water", "gin"})
	a, err := first.AsView()
	require.NoError(t, err)

	var b *View[string]
	var right *View[string]
	func() {
		second := New([]string{"milk", "ale", "lemonade"})
		b, err = second.SelectWhere(func(s string) bool { return !strings.HasPrefix(s, "a") })
		require.NoError(t, err)

		var left *View[string]
		left, right, err = FilterTwo(a, b, long)
		require.NoError(t, err)

		wantLeft, err := a.SelectWhere(long)
		require.NoError(t, err)
		wantRight, err := b.SelectWhere(long)
		require.NoError(t, err)

		assert.Equal(t, wantLeft.Records(), left.Records())
		assert.Equal(t, wantRight.Records(), right.Records())
		assert.Equal(t, first.ID(), left.StoreID())
		assert.Equal(t, second.ID(), right.StoreID())
	}()

	assert.Equal(t, []string{"milk", "lemonade"}, right.Records(),
		"a result stays valid independently of the other input's scope")
}

func TestFilterTwoSameStore(t *testing.T) {
	s := New([]int{1, 2, 3, 4, 5, 6})
	low, err := s.SelectWhere(func(n int) bool { return n <= 3 })
	require.NoError(t, err)
	high, err := s.SelectWhere(func(n int) bool { return n > 3 })
	require.NoError(t, err)

	l, h, err := FilterTwo(low, high, isEven)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, l.Records())
	assert.Equal(t, []int{4, 6}, h.Records())
}

func TestFilterTwoReleasesFirstResultOnError(t *testing.T) {
	left := New([]int{1, 2})
	a, err := left.AsView()
	require.NoError(t, err)

	b, err := New([]int{3}).AsView()
	require.NoError(t, err)
	b.Release()

	_, _, err = FilterTwo(a, b, isEven)
	assert.True(t, IsReleasedError(err))

	shared, _ := left.Borrowed()
	assert.Equal(t, 1, shared, "only the input view remains")
}
