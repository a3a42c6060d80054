package loc

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a letter of credit. States form a
// strict linear order; transitions never skip or reverse.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusIssued    Status = "ISSUED"
	StatusVerified  Status = "VERIFIED"
	StatusCompleted Status = "COMPLETED"
)

// ParseStatus validates a stored status value.
func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusPending, StatusIssued, StatusVerified, StatusCompleted:
		return Status(value), true
	default:
		return "", false
	}
}

// Next returns the sole legal successor state, if any.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusPending:
		return StatusIssued, true
	case StatusIssued:
		return StatusVerified, true
	case StatusVerified:
		return StatusCompleted, true
	default:
		return "", false
	}
}

// LetterOfCredit is the financial instrument moving through the
// approval lifecycle. LatestPrice is stamped once at creation and
// never refreshed on later transitions.
type LetterOfCredit struct {
	ID          string    `json:"id"`
	BuyerID     string    `json:"buyer_id"`
	SellerID    string    `json:"seller_id"`
	Amount      float64   `json:"amount"`
	Commodity   string    `json:"commodity"`
	LatestPrice *float64  `json:"latest_price"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks creation inputs.
func (l *LetterOfCredit) Validate() error {
	if l == nil {
		return ErrNilRecord
	}
	if strings.TrimSpace(l.BuyerID) == "" {
		return ErrEmptyBuyer
	}
	if strings.TrimSpace(l.SellerID) == "" {
		return ErrEmptySeller
	}
	if strings.TrimSpace(l.Commodity) == "" {
		return ErrEmptyCommodity
	}
	if l.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	return nil
}

// Clone returns a deep copy.
func (l *LetterOfCredit) Clone() *LetterOfCredit {
	if l == nil {
		return nil
	}
	out := *l
	if l.LatestPrice != nil {
		price := *l.LatestPrice
		out.LatestPrice = &price
	}
	return &out
}
