package entities

// Currency identifies which balance a ledger entry moves
type Currency string

const (
	CurrencyCash Currency = "cash"
	CurrencyCoin Currency = "coin"
)

// IsValid returns true for the currencies the ledger knows about
func (c Currency) IsValid() bool {
	return c == CurrencyCash || c == CurrencyCoin
}

// Balance is the pair of authoritative balances held by an account
type Balance struct {
	Cash int64 `json:"cash"`
	Coin int64 `json:"coin"`
}

// Of returns the balance held in the given currency
func (b Balance) Of(c Currency) int64 {
	if c == CurrencyCash {
		return b.Cash
	}
	return b.Coin
}
