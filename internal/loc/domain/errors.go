package loc

import "errors"

var (
	// ErrNotFound is returned when no record exists for an id.
	ErrNotFound = errors.New("loc: not found")
	// ErrInvalidState is returned when a transition is attempted from
	// a state that is not the required predecessor.
	ErrInvalidState = errors.New("loc: invalid state for transition")
	// ErrUnavailable is returned when durable storage is unreachable.
	ErrUnavailable = errors.New("loc: storage unavailable")
	// ErrNilRecord is returned when persisting a nil record.
	ErrNilRecord = errors.New("loc: nil record")
	// ErrEmptyBuyer is returned when buyer id is missing.
	ErrEmptyBuyer = errors.New("loc: empty buyer id")
	// ErrEmptySeller is returned when seller id is missing.
	ErrEmptySeller = errors.New("loc: empty seller id")
	// ErrEmptyCommodity is returned when commodity is missing.
	ErrEmptyCommodity = errors.New("loc: empty commodity")
	// ErrNonPositiveAmount is returned when amount is not positive.
	ErrNonPositiveAmount = errors.New("loc: amount must be positive")
)

// IsValidation reports whether err is a creation validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNilRecord) ||
		errors.Is(err, ErrEmptyBuyer) ||
		errors.Is(err, ErrEmptySeller) ||
		errors.Is(err, ErrEmptyCommodity) ||
		errors.Is(err, ErrNonPositiveAmount)
}
