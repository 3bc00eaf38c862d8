package wager

import (
	"errors"
	"fmt"

	"github.com/vreid/fairway/internal/pkg/handicap"
	"github.com/vreid/fairway/internal/pkg/scorecard"
)

var ErrUnknownWagerType = errors.New("unknown wager type")

// ErrLocationBased is returned when a location wager reaches the stroke
// resolver. Those settle through ResolveLocation.
var ErrLocationBased = errors.New("wager type resolves on shot positions")

// HeadToHeadStartHole is the later of the two players' current holes.
func HeadToHeadStartHole(p1, p2 scorecard.Scorecard) int {
	return max(p1.CurrentHole(), p2.CurrentHole())
}

func holeRange(t Type, startHole int) (int, int, error) {
	switch t {
	case TypeThisHole:
		return startHole, startHole, nil
	case TypeHeadToHead, TypeRemainingHoles:
		return startHole, scorecard.LastHole, nil
	case TypeTotalStrokes:
		return scorecard.FirstHole, scorecard.LastHole, nil
	case TypeClosestToPin, TypeLongestDrive, TypeFirstToGreen:
		return 0, 0, fmt.Errorf("%w: %s", ErrLocationBased, t)
	}

	return 0, 0, fmt.Errorf("%w: %q", ErrUnknownWagerType, t)
}

// Resolve compares the handicap-adjusted strokes of two players over the
// holes the wager type covers. Lower wins. Missing holes yield
// NotYetResolvable.
func Resolve(t Type, startHole int, p1, p2 scorecard.Scorecard) (Outcome, error) {
	from, to, err := holeRange(t, startHole)
	if err != nil {
		return Outcome{}, err
	}

	if from < scorecard.FirstHole || to > scorecard.LastHole {
		return Outcome{}, fmt.Errorf("%w: start hole %d out of range", ErrInvalidWager, startHole)
	}

	if !p1.Covers(from, to) || !p2.Covers(from, to) {
		return NotYetResolvable(), nil
	}

	holes := to - from + 1

	s1 := handicap.AdjustedScore(p1.Gross(from, to), p1.HandicapIndex, holes, scorecard.LastHole)
	s2 := handicap.AdjustedScore(p2.Gross(from, to), p2.HandicapIndex, holes, scorecard.LastHole)

	switch {
	case s1 < s2:
		return Winner(p1.PlayerID), nil
	case s2 < s1:
		return Winner(p2.PlayerID), nil
	default:
		return Tie(), nil
	}
}

// ResolveWager resolves w against the scorecards of its two players. The
// scorecards may be passed in either order.
func ResolveWager(w Wager, a, b scorecard.Scorecard) (Outcome, error) {
	initiator, target := a, b
	if a.PlayerID == w.TargetID {
		initiator, target = b, a
	}

	if initiator.PlayerID != w.InitiatorID || target.PlayerID != w.TargetID {
		return Outcome{}, fmt.Errorf("%w: scorecards do not belong to the wager players", ErrInvalidWager)
	}

	return Resolve(w.Type, w.StartHole, initiator, target)
}
