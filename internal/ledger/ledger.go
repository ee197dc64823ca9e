package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEntryNotFound indicates the referenced ledger entry does not exist.
	ErrEntryNotFound = errors.New("ledger entry not found")

	// ErrInvalidEntry indicates the entry is missing a user, type or positive
	// point amount and must not be appended.
	ErrInvalidEntry = errors.New("invalid ledger entry")
)

// EntryType classifies a balance-changing event. The sign of the balance
// change is implied by the type; Points always stores the magnitude.
type EntryType string

const (
	// TypeTopUpCard records a credit from a prepaid card redemption.
	TypeTopUpCard EntryType = "top_up_card"
	// TypeTopUpPayment records a credit from a settled payment order.
	TypeTopUpPayment EntryType = "top_up_payment"
	// TypeReferralRegister records a bonus for referring a registration.
	TypeReferralRegister EntryType = "referral_register"
	// TypeReferralVisit records a bonus for referred visits.
	TypeReferralVisit EntryType = "referral_visit"
	// TypeCommissionTier1 through TypeCommissionTier3 record referral commissions.
	TypeCommissionTier1 EntryType = "commission_tier1"
	TypeCommissionTier2 EntryType = "commission_tier2"
	TypeCommissionTier3 EntryType = "commission_tier3"
	// TypeVIPUpgrade records points spent on a membership upgrade.
	TypeVIPUpgrade EntryType = "vip_upgrade"
	// TypeContentSpend records points spent on content consumption.
	TypeContentSpend EntryType = "content_spend"
	// TypeWithdrawalSettled records an audited withdrawal leaving the frozen pool.
	TypeWithdrawalSettled EntryType = "withdrawal_settled"
)

// Entry is one immutable record of a balance-changing event. Deleting an
// entry is permitted for audit cleanup and never rolls back the wallet.
type Entry struct {
	ID            int64
	UserID        int64
	RelatedUserID int64
	Type          EntryType
	Points        int64
	Remark        string
	CreatedAt     time.Time
}

// Log defines the contract implemented by point log backends.
type Log interface {
	Append(ctx context.Context, entry Entry) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]Entry, error)
	Delete(ctx context.Context, id int64) error
}
