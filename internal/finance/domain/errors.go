package finance

import "errors"

var (
	// ErrNotFound is returned when no credit line exists for an id.
	ErrNotFound = errors.New("finance: credit line not found")
	// ErrUnavailable is returned when durable storage is unreachable.
	ErrUnavailable = errors.New("finance: storage unavailable")
	// ErrNilRecord is returned when persisting a nil record.
	ErrNilRecord = errors.New("finance: nil record")
	// ErrEmptyApplicant is returned when applicant is missing.
	ErrEmptyApplicant = errors.New("finance: empty applicant")
	// ErrNonPositiveAmount is returned when amount is not positive.
	ErrNonPositiveAmount = errors.New("finance: amount must be positive")
	// ErrNonPositiveRate is returned when interest rate is not positive.
	ErrNonPositiveRate = errors.New("finance: interest rate must be positive")
	// ErrNonPositiveRepayment is returned when a repayment is not positive.
	ErrNonPositiveRepayment = errors.New("finance: repayment must be positive")
	// ErrNonPositiveDays is returned when an interest window is not positive.
	ErrNonPositiveDays = errors.New("finance: days must be positive")
)

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNilRecord) ||
		errors.Is(err, ErrEmptyApplicant) ||
		errors.Is(err, ErrNonPositiveAmount) ||
		errors.Is(err, ErrNonPositiveRate) ||
		errors.Is(err, ErrNonPositiveRepayment) ||
		errors.Is(err, ErrNonPositiveDays)
}
