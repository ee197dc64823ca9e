package user

import "time"

// User carries the account identity plus the two balance columns. The wallet
// is embedded here rather than kept in a separate table; both balances are
// non-negative at all times and only the wallet settlement operations write
// to them.
type User struct {
	ID              int64
	Username        string
	AvailablePoints int64
	FrozenPoints    int64
	CreatedAt       time.Time
}
