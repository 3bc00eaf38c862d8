package scorecard

import "time"

const (
	FirstHole = 1
	LastHole  = 18
)

// Scorecard is a player's gross strokes per hole for one round.
type Scorecard struct {
	RoundID       string      `json:"round_id"`
	PlayerID      string      `json:"player_id"`
	HandicapIndex float64     `json:"handicap_index"`
	Holes         map[int]int `json:"holes"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// ScoreEvent announces that a scorecard changed.
type ScoreEvent struct {
	RoundID  string `json:"round_id"`
	PlayerID string `json:"player_id"`
	Hole     int    `json:"hole"`
}

type HoleRequest struct {
	Strokes int `json:"strokes" validate:"min=1,max=20"`
}

type HandicapRequest struct {
	HandicapIndex float64 `json:"handicap_index" validate:"min=-10,max=54"`
}

func (c Scorecard) Strokes(hole int) (int, bool) {
	strokes, ok := c.Holes[hole]

	return strokes, ok
}

// Covers reports whether every hole in [from, to] has been recorded.
func (c Scorecard) Covers(from, to int) bool {
	if from > to {
		return false
	}

	for hole := from; hole <= to; hole++ {
		if _, ok := c.Holes[hole]; !ok {
			return false
		}
	}

	return true
}

// Gross sums the recorded strokes in [from, to].
func (c Scorecard) Gross(from, to int) int {
	total := 0

	for hole := from; hole <= to; hole++ {
		total += c.Holes[hole]
	}

	return total
}

// CurrentHole is the hole after the highest one recorded.
func (c Scorecard) CurrentHole() int {
	highest := 0

	for hole := range c.Holes {
		if hole > highest {
			highest = hole
		}
	}

	return min(highest+1, LastHole)
}
