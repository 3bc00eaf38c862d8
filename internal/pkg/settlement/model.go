package settlement

import "github.com/shopspring/decimal"

type Format string

const (
	// FormatStroke ranks lower totals first.
	FormatStroke Format = "stroke"
	// FormatPoints ranks higher totals first, as in stableford.
	FormatPoints Format = "points"
)

type Input struct {
	StrokeTotals map[string]int
	Format       Format

	Skins map[string]decimal.Decimal
	Wolf  map[string]decimal.Decimal
	Snake map[string]decimal.Decimal
	Press map[string]decimal.Decimal
}

// Settlement is one player's money picture. Rank is 0 when the player has no
// total in the primary game.
type Settlement struct {
	PlayerID    string          `json:"player_id"`
	StrokeTotal int             `json:"stroke_total"`
	Rank        int             `json:"rank"`
	Skins       decimal.Decimal `json:"skins"`
	Wolf        decimal.Decimal `json:"wolf"`
	Snake       decimal.Decimal `json:"snake"`
	Press       decimal.Decimal `json:"press"`
	Net         decimal.Decimal `json:"net"`
}
