package store

import (
	"errors"
	"log/slog"
)

// Predicate selects records. It must be total; a panic propagates to the
// caller of the selection and no borrows are taken.
type Predicate[T any] func(T) bool

// Store owns a flat sequence of records of a single type.
//
// Records are only reachable through views. The Store itself is never
// mutated after New except in place through a live MutableView.
type Store[T any] struct {
	id       string
	records  []T
	borrows  *borrowTable
	logger   *slog.Logger
	observer Observer
}

// New creates a Store that takes ownership of records as-is.
// The slice is not copied; callers must not keep using it.
// An empty or nil slice is valid.
func New[T any](records []T, opts ...Option) *Store[T] {
	o := buildOptions(opts)
	return &Store[T]{
		id:       o.id,
		records:  records,
		borrows:  newBorrowTable(len(records)),
		logger:   o.logger,
		observer: o.observer,
	}
}

// ID returns the store identifier used in logs and errors.
func (s *Store[T]) ID() string {
	return s.id
}

// Len returns the number of owned records. It reads no record, so it is
// never rejected by the borrow table.
func (s *Store[T]) Len() int {
	return len(s.records)
}

// Borrowed returns the number of live Views and MutableViews.
func (s *Store[T]) Borrowed() (shared, exclusive int) {
	return s.borrows.holders()
}

// SelectWhere returns a View over every record satisfying p, in store order.
//
// Rejected with ErrCodeExclusiveHeld while a MutableView of this Store is
// live. Any number of Views may be taken at once.
func (s *Store[T]) SelectWhere(p Predicate[T]) (*View[T], error) {
	// Checked before scanning so p never sees exclusively held records.
	// acquireShared checks again under the lock.
	if _, exclusive := s.borrows.holders(); exclusive > 0 {
		return nil, s.reject(OpSelect, newExclusiveHeldError(s.id, -1))
	}

	indices := s.scan(p)
	if err := s.borrows.acquireShared(s.id, indices, true); err != nil {
		return nil, s.reject(OpSelect, err)
	}
	s.observe(OpSelect, len(s.records), len(indices))
	return &View[T]{store: s, indices: indices}, nil
}

// SelectWhereMut returns a MutableView with exclusive access to every
// record satisfying p, in store order.
//
// Rejected with ErrCodeSharedHeld while any View is live and with
// ErrCodeExclusiveHeld while another MutableView is live. While the
// returned view is live, every other selection on this Store is rejected.
func (s *Store[T]) SelectWhereMut(p Predicate[T]) (*MutableView[T], error) {
	// Fails fast before scanning; acquireExclusive checks again under the lock.
	shared, exclusive := s.borrows.holders()
	if exclusive > 0 {
		return nil, s.reject(OpSelectMut, newExclusiveHeldError(s.id, -1))
	}
	if shared > 0 {
		return nil, s.reject(OpSelectMut, newSharedHeldError(s.id, -1))
	}

	indices := s.scan(p)
	if err := s.borrows.acquireExclusive(s.id, indices); err != nil {
		return nil, s.reject(OpSelectMut, err)
	}
	s.observe(OpSelectMut, len(s.records), len(indices))
	return &MutableView[T]{store: s, indices: indices}, nil
}

// AsView returns a View over every record.
func (s *Store[T]) AsView() (*View[T], error) {
	return s.SelectWhere(all[T])
}

// AsViewMut returns a MutableView over every record.
func (s *Store[T]) AsViewMut() (*MutableView[T], error) {
	return s.SelectWhereMut(all[T])
}

func all[T any](T) bool { return true }

// scan evaluates p against every record, keeping store order.
func (s *Store[T]) scan(p Predicate[T]) []int {
	indices := make([]int, 0, len(s.records))
	for i := range s.records {
		if p(s.records[i]) {
			indices = append(indices, i)
		}
	}
	return indices
}

// filter evaluates p against the given indices, keeping their order.
func (s *Store[T]) filter(indices []int, p Predicate[T]) (kept, dropped []int) {
	kept = make([]int, 0, len(indices))
	for _, idx := range indices {
		if p(s.records[idx]) {
			kept = append(kept, idx)
		} else {
			dropped = append(dropped, idx)
		}
	}
	return kept, dropped
}

func (s *Store[T]) observe(op Op, scanned, selected int) {
	s.logger.Debug("selection",
		"op", op,
		"store", s.id,
		"scanned", scanned,
		"selected", selected)
	s.observer.ObserveSelect(op, scanned, selected)
}

// reject logs and reports a rejected operation, returning err unchanged.
func (s *Store[T]) reject(op Op, err error) error {
	var be *BorrowError
	if errors.As(err, &be) {
		s.logger.Warn("selection rejected",
			"op", op,
			"store", s.id,
			"code", be.Code)
		s.observer.ObserveConflict(be)
	}
	return err
}
