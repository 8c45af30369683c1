package services

import (
	"github.com/shopspring/decimal"
)

// DefaultPrizeShares pays 50%, 20% and 10% of the pool to ranks one to three
var DefaultPrizeShares = []decimal.Decimal{
	decimal.RequireFromString("0.50"),
	decimal.RequireFromString("0.20"),
	decimal.RequireFromString("0.10"),
}

// CalculatePrizeShares returns the floored amount owed to each rank
func CalculatePrizeShares(prizePool int64, shares []decimal.Decimal) []int64 {
	pool := decimal.NewFromInt(prizePool)
	amounts := make([]int64, len(shares))
	for i, share := range shares {
		amounts[i] = pool.Mul(share).Floor().IntPart()
	}
	return amounts
}
