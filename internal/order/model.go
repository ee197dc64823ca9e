package order

import "time"

const (
	// StatusUnpaid and StatusPaid track settlement state. An order moves
	// unpaid -> paid exactly once and never reverts.
	StatusUnpaid = "unpaid"
	StatusPaid   = "paid"
)

// Order is a top-up purchase awaiting settlement by an external payment
// callback. Code is the correlation key handed to the payment gateway.
type Order struct {
	ID        int64
	Code      string
	UserID    int64
	Status    string
	Amount    int64
	Points    int64
	PayMethod string
	PaidAt    time.Time
	CreatedAt time.Time
}
