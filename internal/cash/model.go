package cash

import "time"

const (
	// StatusPending and StatusAudited track the request lifecycle. A request
	// moves pending -> audited exactly once and never back.
	StatusPending = "pending"
	StatusAudited = "audited"
)

// Request is a user's withdrawal of points back into currency. Points is
// fixed at request time from the configured exchange ratio and never
// recomputed.
type Request struct {
	ID          int64
	UserID      int64
	Status      string
	Amount      int64
	Points      int64
	BankName    string
	BankAccount string
	Payee       string
	CreatedAt   time.Time
	AuditedAt   time.Time
}
