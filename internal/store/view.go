package store

// View is a read-only selection of a Store's records.
//
// A View holds a shared borrow on each record it selects. Views may overlap
// freely with other Views; no MutableView can be taken on the Store while
// any View is live.
type View[T any] struct {
	store    *Store[T]
	indices  []int
	released bool
}

// StoreID returns the ID of the Store the view points into.
func (v *View[T]) StoreID() string {
	return v.store.id
}

// Len returns the number of selected records (0 once released).
func (v *View[T]) Len() int {
	return len(v.indices)
}

// SelectWhere returns a new View over the selected records satisfying p,
// in their existing order. The receiver is left unchanged and stays usable.
func (v *View[T]) SelectWhere(p Predicate[T]) (*View[T], error) {
	if v.released {
		return nil, v.store.reject(OpNarrow, newReleasedError(v.store.id))
	}

	kept, _ := v.store.filter(v.indices, p)
	if err := v.store.borrows.acquireShared(v.store.id, kept, false); err != nil {
		return nil, v.store.reject(OpNarrow, err)
	}
	v.store.observe(OpNarrow, len(v.indices), len(kept))
	return &View[T]{store: v.store, indices: kept}, nil
}

// At returns the i-th selected record.
func (v *View[T]) At(i int) (T, error) {
	var zero T
	if v.released {
		return zero, newReleasedError(v.store.id)
	}
	if i < 0 || i >= len(v.indices) {
		return zero, newOutOfRangeError(v.store.id, i, len(v.indices))
	}
	return v.store.records[v.indices[i]], nil
}

// Records returns a copy of the selected records in order.
// Returns nil once the view is released.
func (v *View[T]) Records() []T {
	if v.released {
		return nil
	}
	out := make([]T, len(v.indices))
	for i, idx := range v.indices {
		out[i] = v.store.records[idx]
	}
	return out
}

// Release returns the view's borrows to the Store. Safe to call repeatedly.
func (v *View[T]) Release() {
	if v.released {
		return
	}
	v.released = true
	v.store.borrows.releaseShared(v.indices)
	v.indices = nil
}
