package store

import "sync"

// exclusiveBorrow marks an index held by a MutableView.
const exclusiveBorrow = -1

// borrowTable tracks who holds each record of a Store.
//
// state[i] is 0 when record i is free, n > 0 when n Views share it and
// exclusiveBorrow when a MutableView holds it. shared and exclusive count
// the live holders store-wide so that the store-level checks are O(1).
//
// The mutex only keeps the bookkeeping consistent; it does not make the
// aliasing rules any weaker.
type borrowTable struct {
	mu        sync.Mutex
	state     []int32
	shared    int
	exclusive int
}

func newBorrowTable(n int) *borrowTable {
	return &borrowTable{state: make([]int32, n)}
}

// holders returns the number of live shared and exclusive holders.
func (b *borrowTable) holders() (shared, exclusive int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shared, b.exclusive
}

// acquireShared adds a shared borrow on every index.
// Fails without changing anything if any index is exclusively held, or, when
// scannedAll is set, if any exclusive holder is live at all.
func (b *borrowTable) acquireShared(storeID string, indices []int, scannedAll bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if scannedAll && b.exclusive > 0 {
		return newExclusiveHeldError(storeID, -1)
	}
	for _, idx := range indices {
		if b.state[idx] == exclusiveBorrow {
			return newExclusiveHeldError(storeID, idx)
		}
	}
	for _, idx := range indices {
		b.state[idx]++
	}
	b.shared++
	return nil
}

// acquireExclusive takes an exclusive borrow on every index.
// The whole store must be idle: selecting reads every record, so any live
// holder conflicts even if its indices are disjoint from the selection.
func (b *borrowTable) acquireExclusive(storeID string, indices []int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.exclusive > 0 {
		return newExclusiveHeldError(storeID, -1)
	}
	if b.shared > 0 {
		return newSharedHeldError(storeID, -1)
	}
	for _, idx := range indices {
		b.state[idx] = exclusiveBorrow
	}
	b.exclusive++
	return nil
}

// releaseShared drops one shared borrow from every index.
func (b *borrowTable) releaseShared(indices []int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, idx := range indices {
		if b.state[idx] > 0 {
			b.state[idx]--
		}
	}
	b.shared--
}

// releaseExclusive frees every index and drops the holder.
func (b *borrowTable) releaseExclusive(indices []int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.freeExclusiveLocked(indices)
	b.exclusive--
}

// shrinkExclusive frees the dropped indices of a holder that stays live
// under a new handle.
func (b *borrowTable) shrinkExclusive(dropped []int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.freeExclusiveLocked(dropped)
}

func (b *borrowTable) freeExclusiveLocked(indices []int) {
	for _, idx := range indices {
		if b.state[idx] == exclusiveBorrow {
			b.state[idx] = 0
		}
	}
}
