package card

import "time"

const (
	// SaleStatusUnsold and SaleStatusSold track distribution state.
	SaleStatusUnsold = "unsold"
	SaleStatusSold   = "sold"

	// UseStatusUnused and UseStatusUsed track redemption state. A card moves
	// unused -> used exactly once.
	UseStatusUnused = "unused"
	UseStatusUsed   = "used"
)

// Card is a prepaid redemption code. The password is stored as a bcrypt hash;
// the plaintext exists only in the generation response handed to the
// administrator.
type Card struct {
	ID           int64
	Number       string
	PasswordHash []byte
	FaceValue    int64
	Points       int64
	SaleStatus   string
	UseStatus    string
	UsedBy       int64
	UsedAt       time.Time
	CreatedAt    time.Time
}

// IssuedCard carries the plaintext credentials of a freshly generated card.
type IssuedCard struct {
	Number    string
	Password  string
	FaceValue int64
	Points    int64
}
