package store

type mutableState int

const (
	mutableLive mutableState = iota
	mutableConsumed
	mutableReleased
)

// MutableView is an exclusive selection of a Store's records.
//
// While a MutableView is live no other View or MutableView of the Store can
// be taken, so records may be changed in place through it.
type MutableView[T any] struct {
	store   *Store[T]
	indices []int
	state   mutableState
}

// StoreID returns the ID of the Store the view points into.
func (m *MutableView[T]) StoreID() string {
	return m.store.id
}

// Len returns the number of held records (0 once consumed or released).
func (m *MutableView[T]) Len() int {
	return len(m.indices)
}

// SelectWhereMut consumes m and returns a MutableView over the held records
// satisfying p, in their existing order. Records that do not survive are
// returned to the Store. m rejects every operation afterwards.
//
// If p panics, m is consumed and all of its borrows are returned before the
// panic continues.
func (m *MutableView[T]) SelectWhereMut(p Predicate[T]) (*MutableView[T], error) {
	if err := m.usable(); err != nil {
		return nil, m.store.reject(OpNarrowMut, err)
	}

	held := m.indices
	m.indices = nil
	m.state = mutableConsumed

	done := false
	defer func() {
		if !done {
			m.store.borrows.releaseExclusive(held)
		}
	}()

	kept, dropped := m.store.filter(held, p)
	m.store.borrows.shrinkExclusive(dropped)
	done = true

	m.store.observe(OpNarrowMut, len(held), len(kept))
	return &MutableView[T]{store: m.store, indices: kept}, nil
}

// At returns the i-th held record.
func (m *MutableView[T]) At(i int) (T, error) {
	var zero T
	idx, err := m.position(i)
	if err != nil {
		return zero, err
	}
	return m.store.records[idx], nil
}

// Set replaces the i-th held record in the Store.
func (m *MutableView[T]) Set(i int, value T) error {
	idx, err := m.position(i)
	if err != nil {
		return err
	}
	m.store.records[idx] = value
	return nil
}

// Update calls fn with a pointer to the i-th held record in the Store.
// The pointer must not be retained after fn returns.
func (m *MutableView[T]) Update(i int, fn func(*T)) error {
	idx, err := m.position(i)
	if err != nil {
		return err
	}
	fn(&m.store.records[idx])
	return nil
}

// UpdateAll calls fn for every held record, in order.
func (m *MutableView[T]) UpdateAll(fn func(*T)) error {
	if err := m.usable(); err != nil {
		return err
	}
	for _, idx := range m.indices {
		fn(&m.store.records[idx])
	}
	return nil
}

// Records returns a copy of the held records in order.
// Returns nil once the view is consumed or released.
func (m *MutableView[T]) Records() []T {
	if m.state != mutableLive {
		return nil
	}
	out := make([]T, len(m.indices))
	for i, idx := range m.indices {
		out[i] = m.store.records[idx]
	}
	return out
}

// Release returns the exclusive borrows to the Store. Safe to call
// repeatedly and on a consumed view.
func (m *MutableView[T]) Release() {
	if m.state != mutableLive {
		return
	}
	m.state = mutableReleased
	m.store.borrows.releaseExclusive(m.indices)
	m.indices = nil
}

func (m *MutableView[T]) usable() error {
	switch m.state {
	case mutableConsumed:
		return newConsumedError(m.store.id)
	case mutableReleased:
		return newReleasedError(m.store.id)
	}
	return nil
}

func (m *MutableView[T]) position(i int) (int, error) {
	if err := m.usable(); err != nil {
		return 0, err
	}
	if i < 0 || i >= len(m.indices) {
		return 0, newOutOfRangeError(m.store.id, i, len(m.indices))
	}
	return m.indices[i], nil
}
