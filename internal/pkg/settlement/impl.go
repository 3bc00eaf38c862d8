package settlement

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vreid/fairway/internal/pkg/wager"
)

// Rank orders players on their primary game totals and assigns standard
// competition ranks: equal totals share a rank and the next rank skips
// (1, 2, 2, 4). Players with equal totals keep lexical order.
func Rank(totals map[string]int, format Format) map[string]int {
	players := make([]string, 0, len(totals))
	for id := range totals {
		players = append(players, id)
	}

	sort.Strings(players)

	sort.SliceStable(players, func(i, j int) bool {
		a, b := totals[players[i]], totals[players[j]]
		if format == FormatPoints {
			return a > b
		}

		return a < b
	})

	ranks := make(map[string]int, len(players))

	for i, id := range players {
		if i > 0 && totals[id] == totals[players[i-1]] {
			ranks[id] = ranks[players[i-1]]

			continue
		}

		ranks[id] = i + 1
	}

	return ranks
}

// Aggregate sums every game's signed payouts per player. The result is
// sorted by rank, with unranked players last, then by player id.
func Aggregate(in Input) []Settlement {
	players := map[string]struct{}{}

	for id := range in.StrokeTotals {
		players[id] = struct{}{}
	}

	for _, ledger := range []map[string]decimal.Decimal{in.Skins, in.Wolf, in.Snake, in.Press} {
		for id := range ledger {
			players[id] = struct{}{}
		}
	}

	ranks := Rank(in.StrokeTotals, in.Format)
	result := make([]Settlement, 0, len(players))

	for id := range players {
		s := Settlement{
			PlayerID:    id,
			StrokeTotal: in.StrokeTotals[id],
			Rank:        ranks[id],
			Skins:       in.Skins[id],
			Wolf:        in.Wolf[id],
			Snake:       in.Snake[id],
			Press:       in.Press[id],
		}

		s.Net = s.Skins.Add(s.Wolf).Add(s.Snake).Add(s.Press)
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Rank != b.Rank {
			if a.Rank == 0 || b.Rank == 0 {
				return b.Rank == 0
			}

			return a.Rank < b.Rank
		}

		return a.PlayerID < b.PlayerID
	})

	return result
}

// PressPayouts credits the winner and debits the loser of every completed
// wager. Pushed and unfinished wagers move no money.
func PressPayouts(wagers []wager.Wager) map[string]decimal.Decimal {
	payouts := map[string]decimal.Decimal{}

	for _, w := range wagers {
		if w.Status != wager.StatusCompleted || w.WinnerID == "" {
			continue
		}

		loser := w.Opponent(w.WinnerID)
		if loser == "" {
			continue
		}

		payouts[w.WinnerID] = payouts[w.WinnerID].Add(w.Amount)
		payouts[loser] = payouts[loser].Sub(w.Amount)
	}

	return payouts
}
