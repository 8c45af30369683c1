package entities

import "time"

// User represents a platform user as seen by the ledger
type User struct {
	ID                  string    `db:"id"`
	Cash                int64     `db:"cash"`
	Coin                int64     `db:"coin"`
	ReferralCode        *string   `db:"referral_code"`
	ReferredBy          *string   `db:"referred_by"`
	HasMadeFirstDeposit bool      `db:"has_made_first_deposit"`
	CreatedAt           time.Time `db:"created_at"`
	UpdatedAt           time.Time `db:"updated_at"`
}

// Balance returns both balances of the user
func (u *User) Balance() Balance {
	return Balance{Cash: u.Cash, Coin: u.Coin}
}

// WasReferred returns true if someone referred this user
func (u *User) WasReferred() bool {
	return u.ReferredBy != nil && *u.ReferredBy != ""
}
