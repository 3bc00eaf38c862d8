package money

import (
	"sort"

	"github.com/shopspring/decimal"
)

const CentPlaces = 2

// Cents rounds amount to whole cents, half away from zero.
func Cents(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CentPlaces)
}

// Split divides amount, rounded to the cent, into n parts rounded down to the
// cent. The leftover cents go one each to the leading parts, so the parts
// always sum to Cents(amount).
func Split(amount decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}

	amount = Cents(amount)

	count := decimal.NewFromInt(int64(n))
	cent := decimal.New(1, -CentPlaces)

	if amount.IsNegative() {
		cent = cent.Neg()
	}

	share := amount.Div(count).Truncate(CentPlaces)
	remainder := amount.Sub(share.Mul(count))

	result := make([]decimal.Decimal, n)
	for i := range result {
		result[i] = share

		if !remainder.IsZero() {
			result[i] = result[i].Add(cent)
			remainder = remainder.Sub(cent)
		}
	}

	return result
}

// Distribute splits amount across players in lexical order and adds each share
// to ledger. Negative amounts debit.
func Distribute(ledger map[string]decimal.Decimal, players []string, amount decimal.Decimal) {
	sorted := append([]string(nil), players...)
	sort.Strings(sorted)

	for i, share := range Split(amount, len(sorted)) {
		ledger[sorted[i]] = ledger[sorted[i]].Add(share)
	}
}

// Sum adds every value of ledger.
func Sum(ledger map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range ledger {
		total = total.Add(v)
	}

	return total
}
