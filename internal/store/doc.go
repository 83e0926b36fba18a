// Package store provides an in-memory record store that hands out views:
// read-only or mutable subsets of its records selected by a predicate.
//
// Views never copy records. A View or MutableView holds indices into the
// Store that owns the records, plus a borrow on each of those indices.
//
// # Aliasing Rules
//
// At any instant a record is held by either:
//   - any number of Views (shared borrows), or
//   - exactly one MutableView (exclusive borrow)
//
// never both. The rules are enforced at runtime by a per-index borrow table
// and violations are reported as *BorrowError values:
//   - Store.SelectWhere is rejected while any MutableView of the Store is live
//   - Store.SelectWhereMut is rejected while any View or MutableView is live
//   - a released or consumed view rejects every further selection or access
//
// # Narrowing
//
// View.SelectWhere leaves the receiver intact and returns an independent
// sibling. MutableView.SelectWhereMut consumes the receiver: the surviving
// exclusive borrows move to the result and the rest go back to the Store.
//
// # Lifetimes
//
// Go has no drop. A view stays live until Release is called (or, for a
// MutableView, until it is consumed by a narrow). Releasing is idempotent.
//
// Every selection is a single stable pass: survivors keep the relative order
// they had in the input.
package store
