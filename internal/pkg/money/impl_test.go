package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vreid/fairway/internal/pkg/money"
)

func TestSplit(t *testing.T) {
	t.Parallel()

	parts := money.Split(decimal.NewFromInt(1), 3)

	assert.Len(t, parts, 3)
	assert.Equal(t, "0.34", parts[0].String())
	assert.Equal(t, "0.33", parts[1].String())
	assert.Equal(t, "0.33", parts[2].String())
}

func TestSplitNegative(t *testing.T) {
	t.Parallel()

	parts := money.Split(decimal.NewFromInt(-4), 3)

	total := decimal.Zero
	for _, p := range parts {
		total = total.Add(p)
	}

	assert.True(t, total.Equal(decimal.NewFromInt(-4)))
	assert.Equal(t, "-1.34", parts[0].String())
}

func TestSplitEmpty(t *testing.T) {
	t.Parallel()

	assert.Nil(t, money.Split(decimal.NewFromInt(5), 0))
}

func TestDistribute(t *testing.T) {
	t.Parallel()

	ledger := map[string]decimal.Decimal{}
	money.Distribute(ledger, []string{"c", "a", "b"}, decimal.NewFromInt(-2))
	money.Distribute(ledger, []string{"d"}, decimal.NewFromInt(2))

	assert.Equal(t, "-0.67", ledger["a"].String())
	assert.Equal(t, "-0.67", ledger["b"].String())
	assert.Equal(t, "-0.66", ledger["c"].String())
	assert.True(t, money.Sum(ledger).IsZero())
}

func TestSplitRoundsSubCentAmount(t *testing.T) {
	t.Parallel()

	parts := money.Split(decimal.RequireFromString("0.375"), 3)

	total := decimal.Zero
	for _, p := range parts {
		total = total.Add(p)
	}

	assert.Equal(t, "0.38", total.String())
	assert.Equal(t, "0.13", parts[0].String())
	assert.Equal(t, "0.12", parts[2].String())
}
