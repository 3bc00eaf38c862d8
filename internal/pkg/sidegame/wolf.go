package sidegame

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vreid/fairway/internal/pkg/money"
)

var (
	ErrEmptyRotation  = errors.New("wolf rotation is empty")
	ErrMissingScore   = errors.New("wolf team score missing")
	ErrInvalidPartner = errors.New("invalid wolf partner")
	ErrNoOpponents    = errors.New("wolf hole has no opponents")
)

func DefaultWolfConfig() WolfConfig {
	return WolfConfig{
		BaseAmount:         decimal.NewFromInt(1),
		LoneWolfMultiplier: decimal.NewFromInt(2), //nolint:mnd
	}
}

// WolfForHole returns the wolf of a hole: rotation[(hole-1) mod len].
func WolfForHole(rotation []string, hole int) (string, error) {
	if len(rotation) == 0 {
		return "", ErrEmptyRotation
	}

	idx := (hole - 1) % len(rotation)
	if idx < 0 {
		idx += len(rotation)
	}

	return rotation[idx], nil
}

// ResolveWolfHole plays one hole of wolf. An empty partnerID means the wolf
// went lone and plays for the multiplied stake. The winning side collects the
// stake from the losing side, each side splitting it evenly.
//
//nolint:cyclop,funlen
func ResolveWolfHole(wolfID, partnerID string, scores []HoleScore, cfg WolfConfig) (WolfResult, error) {
	if partnerID == wolfID {
		return WolfResult{}, fmt.Errorf("%w: wolf %s cannot partner with themselves", ErrInvalidPartner, wolfID)
	}

	byPlayer := make(map[string]int, len(scores))
	for _, s := range scores {
		byPlayer[s.PlayerID] = s.Strokes
	}

	wolfScore, ok := byPlayer[wolfID]
	if !ok {
		return WolfResult{}, fmt.Errorf("%w: wolf %s", ErrMissingScore, wolfID)
	}

	team := []string{wolfID}
	teamScore := wolfScore
	amount := cfg.BaseAmount

	if partnerID == "" {
		amount = cfg.BaseAmount.Mul(cfg.LoneWolfMultiplier)
	} else {
		partnerScore, ok := byPlayer[partnerID]
		if !ok {
			return WolfResult{}, fmt.Errorf("%w: partner %s", ErrMissingScore, partnerID)
		}

		team = append(team, partnerID)
		teamScore = min(teamScore, partnerScore)
	}

	opponents := []string{}
	opponentsScore := 0

	for _, s := range scores {
		if s.PlayerID == wolfID || s.PlayerID == partnerID {
			continue
		}

		if len(opponents) == 0 || s.Strokes < opponentsScore {
			opponentsScore = s.Strokes
		}

		opponents = append(opponents, s.PlayerID)
	}

	if len(opponents) == 0 {
		return WolfResult{}, ErrNoOpponents
	}

	amount = money.Cents(amount)

	sort.Strings(opponents)

	result := WolfResult{
		WolfID:         wolfID,
		PartnerID:      partnerID,
		WolfTeamScore:  teamScore,
		OpponentsScore: opponentsScore,
		Amount:         amount,
		Payouts:        map[string]decimal.Decimal{},
	}

	switch {
	case teamScore < opponentsScore:
		result.Result = WolfWins

		money.Distribute(result.Payouts, team, amount)
		money.Distribute(result.Payouts, opponents, amount.Neg())
	case opponentsScore < teamScore:
		result.Result = OpponentsWin

		money.Distribute(result.Payouts, opponents, amount)
		money.Distribute(result.Payouts, team, amount.Neg())
	default:
		result.Result = WolfHoleTied
	}

	return result, nil
}

// PlayWolf resolves every hole with the wolf taken from rotation and sums the
// payouts.
func PlayWolf(rotation []string, holes []WolfHole, cfg WolfConfig) (WolfSummary, error) {
	summary := WolfSummary{
		Results: make([]WolfResult, 0, len(holes)),
		Payouts: map[string]decimal.Decimal{},
	}

	for _, h := range holes {
		wolfID, err := WolfForHole(rotation, h.Hole)
		if err != nil {
			return WolfSummary{}, err
		}

		result, err := ResolveWolfHole(wolfID, h.PartnerID, h.Scores, cfg)
		if err != nil {
			return WolfSummary{}, fmt.Errorf("hole %d: %w", h.Hole, err)
		}

		result.Hole = h.Hole
		summary.Results = append(summary.Results, result)

		for id, v := range result.Payouts {
			summary.Payouts[id] = summary.Payouts[id].Add(v)
		}
	}

	return summary, nil
}
