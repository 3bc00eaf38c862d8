package sidegame

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vreid/fairway/internal/pkg/money"
)

// ResolveSkin awards basePot plus carryoverPot to the strictly lowest score.
// A tie for lowest, or no scores at all, carries the whole pot to the next
// hole; tied players are listed but win nothing.
func ResolveSkin(scores []HoleScore, basePot, carryoverPot decimal.Decimal) SkinResult {
	pot := basePot.Add(carryoverPot)

	if len(scores) == 0 {
		return SkinResult{PotAmount: pot, IsCarryover: true}
	}

	lowest := scores[0].Strokes
	for _, s := range scores[1:] {
		lowest = min(lowest, s.Strokes)
	}

	leaders := []string{}

	for _, s := range scores {
		if s.Strokes == lowest {
			leaders = append(leaders, s.PlayerID)
		}
	}

	if len(leaders) == 1 {
		return SkinResult{WinnerID: leaders[0], PotAmount: pot}
	}

	sort.Strings(leaders)

	return SkinResult{PotAmount: pot, IsCarryover: true, TiedPlayers: leaders}
}

// PlaySkins runs skins over holes in order. Every participant stakes an even
// share of basePot on each hole; the winner of a hole collects every stake
// since the last won hole. Stakes still riding when the holes run out are
// returned and reported as unclaimed.
func PlaySkins(holes []SkinsHole, participants []string, basePot decimal.Decimal) SkinsSummary {
	ordered := append([]SkinsHole(nil), holes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Hole < ordered[j].Hole
	})

	summary := SkinsSummary{
		Results:   make([]SkinResult, 0, len(ordered)),
		Payouts:   map[string]decimal.Decimal{},
		Unclaimed: decimal.Zero,
	}

	riding := map[string]decimal.Decimal{}
	carry := decimal.Zero

	for _, h := range ordered {
		players := participants
		if len(players) == 0 {
			for _, s := range h.Scores {
				players = append(players, s.PlayerID)
			}
		}

		money.Distribute(riding, players, basePot.Neg())

		result := ResolveSkin(h.Scores, basePot, carry)
		result.Hole = h.Hole
		summary.Results = append(summary.Results, result)

		if result.IsCarryover {
			carry = result.PotAmount

			continue
		}

		stakes := money.Sum(riding)
		for id, v := range riding {
			summary.Payouts[id] = summary.Payouts[id].Add(v)
		}

		summary.Payouts[result.WinnerID] = summary.Payouts[result.WinnerID].Sub(stakes)

		riding = map[string]decimal.Decimal{}
		carry = decimal.Zero
	}

	summary.Unclaimed = carry

	return summary
}
