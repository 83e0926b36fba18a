package store

// FilterOne filters a View with p. Equivalent to view.SelectWhere(p).
func FilterOne[T any](view *View[T], p Predicate[T]) (*View[T], error) {
	return view.SelectWhere(p)
}

// FilterTwo applies the same predicate to two Views that may come from
// unrelated Stores, returning two independent results. Equivalent to calling
// SelectWhere on each view separately.
//
// If the second filter is rejected, the first result is released before the
// error is returned.
func FilterTwo[T any](a, b *View[T], p Predicate[T]) (*View[T], *View[T], error) {
	left, err := a.SelectWhere(p)
	if err != nil {
		return nil, nil, err
	}
	right, err := b.SelectWhere(p)
	if err != nil {
		left.Release()
		return nil, nil, err
	}
	return left, right, nil
}
