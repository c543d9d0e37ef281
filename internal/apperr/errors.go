// Package apperr holds the error taxonomy shared by the workflows.
// Callers wrap a sentinel with context and classify with errors.Is.
package apperr

import "errors"

var (
	// ErrValidation reports malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound reports a referenced deposit, order or service that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden reports an actor acting on something it does not own.
	ErrForbidden = errors.New("forbidden")
	// ErrStateConflict reports an action attempted from a status that does not permit it.
	ErrStateConflict = errors.New("state conflict")
	// ErrInsufficientFunds reports a debit that exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Kind returns the taxonomy sentinel err belongs to, or nil.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrStateConflict, ErrInsufficientFunds} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
