package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/viewdb/internal/record"
	"github.com/roach88/viewdb/internal/store"
	"github.com/roach88/viewdb/internal/testutil"
)

func TestCollectorCountsSelections(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	s := store.New([]int{1, 2, 3, 4, 5, 6}, store.WithObserver(c))
	v, err := s.AsView()
	require.NoError(t, err)
	_, err = v.SelectWhere(func(n int) bool { return n%2 == 0 })
	require.NoError(t, err)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(c.selections.WithLabelValues("select")))
	assert.Equal(t, 6.0, promtestutil.ToFloat64(c.scanned.WithLabelValues("select")))
	assert.Equal(t, 6.0, promtestutil.ToFloat64(c.scanned.WithLabelValues("narrow")))
	assert.Equal(t, 3.0, promtestutil.ToFloat64(c.selected.WithLabelValues("narrow")))

	_, err = s.SelectWhereMut(func(int) bool { return true })
	require.Error(t, err)
	assert.Equal(t, 1.0, promtestutil.ToFloat64(c.conflicts.WithLabelValues("SHARED_HELD")))
	assert.Equal(t, 0.0, promtestutil.ToFloat64(c.selections.WithLabelValues("select_mut")))
}

func TestCollectorMutableNarrowing(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	s := store.New([]int{1, 2, 3, 4}, store.WithObserver(c))
	m, err := s.SelectWhereMut(func(n int) bool { return n%2 == 0 })
	require.NoError(t, err)
	m, err = m.SelectWhereMut(func(n int) bool { return n > 2 })
	require.NoError(t, err)
	m.Release()

	assert.Equal(t, 4.0, promtestutil.ToFloat64(c.scanned.WithLabelValues("select_mut")))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(c.scanned.WithLabelValues("narrow_mut")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(c.selected.WithLabelValues("narrow_mut")))
}

func TestNewCollectorDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestSnapshot(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	c.ObserveSelect(store.OpSelect, 10, 4)
	c.ObserveSelect(store.OpSelect, 5, 1)
	c.ObserveConflict(&store.BorrowError{Code: store.ErrCodeExclusiveHeld})

	snap, err := Snapshot(reg)
	require.NoError(t, err)
	assert.Equal(t, 2.0, snap[`viewdb_selections_total{op="select"}`])
	assert.Equal(t, 15.0, snap[`viewdb_records_scanned_total{op="select"}`])
	assert.Equal(t, 5.0, snap[`viewdb_records_selected_total{op="select"}`])
	assert.Equal(t, 1.0, snap[`viewdb_borrow_conflicts_total{code="EXCLUSIVE_HELD"}`])
	assert.Len(t, snap, 4)
}

func TestCollectorWithRecordStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	require.NoError(t, err)

	s := store.New(testutil.People(), store.WithObserver(c), store.WithID(testutil.NewIDSequence("m").Next()))
	v, err := s.SelectWhere(func(o record.Object) bool { return o["admin"] == record.Bool(true) })
	require.NoError(t, err)
	defer v.Release()

	_, err = s.AsViewMut()
	require.Error(t, err)

	snap, err := Snapshot(reg)
	require.NoError(t, err)
	assert.Equal(t, 4.0, snap[`viewdb_records_scanned_total{op="select"}`])
	assert.Equal(t, 2.0, snap[`viewdb_records_selected_total{op="select"}`])
	assert.Equal(t, 1.0, snap[`viewdb_borrow_conflicts_total{code="SHARED_HELD"}`])
}
