package sidegame

import (
	"github.com/shopspring/decimal"
	"github.com/vreid/fairway/internal/pkg/money"
)

func NewSnake(scope SnakeScope) SnakeState {
	return SnakeState{Scope: scope, LastHole: scope.FirstHole - 1}
}

// AdvanceSnake hands the snake to the player with the strictly highest gross
// score on hole. A tie for highest leaves the holder in place. The snake is
// final once its terminal hole has been played.
func AdvanceSnake(state SnakeState, hole int, scores []HoleScore) SnakeState {
	if state.Final || !state.Scope.Includes(hole) {
		return state
	}

	state.LastHole = hole
	state.Final = hole == state.Scope.LastHole

	if len(scores) == 0 {
		return state
	}

	highest := scores[0].Strokes
	for _, s := range scores[1:] {
		highest = max(highest, s.Strokes)
	}

	holder, count := "", 0

	for _, s := range scores {
		if s.Strokes == highest {
			holder = s.PlayerID
			count++
		}
	}

	if count == 1 {
		state.HolderID = holder
	}

	return state
}

// PlaySnake advances a fresh snake through the scope's holes in order and
// stops at the first hole without scores.
func PlaySnake(scope SnakeScope, holes map[int][]HoleScore) SnakeState {
	state := NewSnake(scope)

	for hole := scope.FirstHole; hole <= scope.LastHole; hole++ {
		scores, ok := holes[hole]
		if !ok || len(scores) == 0 {
			break
		}

		state = AdvanceSnake(state, hole, scores)
	}

	return state
}

// SettleSnake makes the holder of a final snake pay amount, shared evenly by
// every other participant. Unfinished or unheld snakes settle to nothing.
func SettleSnake(state SnakeState, participants []string, amount decimal.Decimal) map[string]decimal.Decimal {
	payouts := map[string]decimal.Decimal{}

	if !state.Final || state.HolderID == "" {
		return payouts
	}

	others := []string{}

	for _, p := range participants {
		if p != state.HolderID {
			others = append(others, p)
		}
	}

	if len(others) == 0 {
		return payouts
	}

	amount = money.Cents(amount)
	payouts[state.HolderID] = amount.Neg()
	money.Distribute(payouts, others, amount)

	return payouts
}
