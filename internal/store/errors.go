package store

import (
	"errors"
	"fmt"
)

// BorrowError reports an operation rejected by the aliasing rules.
//
// Borrow errors are programming errors, not recoverable runtime conditions:
// they mean a caller tried to read records that are exclusively held, or to
// take exclusive access to records that are still shared.
type BorrowError struct {
	// Code identifies the error category.
	Code BorrowErrorCode

	// Message is a human-readable description.
	Message string

	// StoreID identifies the Store whose borrow table rejected the operation.
	StoreID string

	// Index is the offending position, or -1 when the error is not tied to one.
	Index int
}

// BorrowErrorCode categorizes borrow errors.
type BorrowErrorCode string

const (
	// ErrCodeExclusiveHeld indicates a MutableView holds records the operation needs.
	ErrCodeExclusiveHeld BorrowErrorCode = "EXCLUSIVE_HELD"

	// ErrCodeSharedHeld indicates live Views prevent exclusive access.
	ErrCodeSharedHeld BorrowErrorCode = "SHARED_HELD"

	// ErrCodeReleased indicates the view was released.
	ErrCodeReleased BorrowErrorCode = "VIEW_RELEASED"

	// ErrCodeConsumed indicates the MutableView was consumed by a narrow.
	ErrCodeConsumed BorrowErrorCode = "VIEW_CONSUMED"

	// ErrCodeOutOfRange indicates a position outside the view.
	ErrCodeOutOfRange BorrowErrorCode = "INDEX_OUT_OF_RANGE"
)

// Error implements the error interface.
func (e *BorrowError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (store=%s, index=%d)", e.Code, e.Message, e.StoreID, e.Index)
	}
	if e.StoreID != "" {
		return fmt.Sprintf("%s: %s (store=%s)", e.Code, e.Message, e.StoreID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConflictError returns true if err was caused by a live conflicting borrow.
// Uses errors.As to handle wrapped errors.
func IsConflictError(err error) bool {
	var be *BorrowError
	if errors.As(err, &be) {
		return be.Code == ErrCodeExclusiveHeld || be.Code == ErrCodeSharedHeld
	}
	return false
}

// IsReleasedError returns true if err was caused by using a released or
// consumed view.
func IsReleasedError(err error) bool {
	var be *BorrowError
	if errors.As(err, &be) {
		return be.Code == ErrCodeReleased || be.Code == ErrCodeConsumed
	}
	return false
}

// IsOutOfRangeError returns true if err was caused by a bad view position.
func IsOutOfRangeError(err error) bool {
	var be *BorrowError
	if errors.As(err, &be) {
		return be.Code == ErrCodeOutOfRange
	}
	return false
}

func newExclusiveHeldError(storeID string, index int) *BorrowError {
	return &BorrowError{
		Code:    ErrCodeExclusiveHeld,
		Message: "records are exclusively held by a live mutable view",
		StoreID: storeID,
		Index:   index,
	}
}

func newSharedHeldError(storeID string, index int) *BorrowError {
	return &BorrowError{
		Code:    ErrCodeSharedHeld,
		Message: "records are shared with live views",
		StoreID: storeID,
		Index:   index,
	}
}

func newReleasedError(storeID string) *BorrowError {
	return &BorrowError{
		Code:    ErrCodeReleased,
		Message: "view has been released",
		StoreID: storeID,
		Index:   -1,
	}
}

func newConsumedError(storeID string) *BorrowError {
	return &BorrowError{
		Code:    ErrCodeConsumed,
		Message: "mutable view was consumed by a narrowing selection",
		StoreID: storeID,
		Index:   -1,
	}
}

func newOutOfRangeError(storeID string, index, length int) *BorrowError {
	return &BorrowError{
		Code:    ErrCodeOutOfRange,
		Message: fmt.Sprintf("position outside view of length %d", length),
		StoreID: storeID,
		Index:   index,
	}
}
