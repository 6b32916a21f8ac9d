package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeCapacityExceeded indicates a deposit would breach a bounded
	// capacity. Caller's bug: surfaced, never clamped or retried.
	ErrCodeCapacityExceeded ErrorCode = "CAPACITY_EXCEEDED"

	// ErrCodeInsufficientQuantity indicates a withdrawal larger than the
	// current level. The fulfillment pass checks availability first, so
	// seeing this means the store's bookkeeping is broken.
	ErrCodeInsufficientQuantity ErrorCode = "INSUFFICIENT_QUANTITY"

	// ErrCodeNotFound indicates RemoveMatching found no matching item.
	// Like InsufficientQuantity, engine-internal and fatal if it surfaces.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeDuplicateItem indicates an insert whose identity already
	// exists in the collection. A collaborator bug.
	ErrCodeDuplicateItem ErrorCode = "DUPLICATE_ITEM"
)

// StoreError is an error raised by a store operation, carrying the store
// name for diagnostics.
type StoreError struct {
	Code    ErrorCode
	Store   string
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Store, e.Message)
}

// IsCapacityExceeded reports whether err is a capacity violation.
// Uses errors.As to handle wrapped errors.
func IsCapacityExceeded(err error) bool {
	return hasCode(err, ErrCodeCapacityExceeded)
}

// IsInsufficientQuantity reports whether err is a level underflow.
func IsInsufficientQuantity(err error) bool {
	return hasCode(err, ErrCodeInsufficientQuantity)
}

// IsNotFound reports whether err is a failed item match.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsDuplicateItem reports whether err is a duplicate identity insert.
func IsDuplicateItem(err error) bool {
	return hasCode(err, ErrCodeDuplicateItem)
}

func hasCode(err error, code ErrorCode) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

func newCapacityError(store string, level, amount, capacity float64) *StoreError {
	return &StoreError{
		Code:    ErrCodeCapacityExceeded,
		Store:   store,
		Message: fmt.Sprintf("deposit of %v onto level %v exceeds capacity %v", amount, level, capacity),
	}
}

func newInsufficientError(store string, level, amount float64) *StoreError {
	return &StoreError{
		Code:    ErrCodeInsufficientQuantity,
		Store:   store,
		Message: fmt.Sprintf("withdrawal of %v exceeds level %v", amount, level),
	}
}

func newNotFoundError(store string) *StoreError {
	return &StoreError{
		Code:    ErrCodeNotFound,
		Store:   store,
		Message: "no item matches the predicate",
	}
}

func newDuplicateError(store, key string) *StoreError {
	return &StoreError{
		Code:    ErrCodeDuplicateItem,
		Store:   store,
		Message: fmt.Sprintf("item %s already present", key),
	}
}
