package wager

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/vreid/fairway/internal/pkg/geo"
)

var (
	ErrReferencePointMissing = errors.New("reference point missing")
	ErrNotLocationBased      = errors.New("wager type does not resolve on shot positions")
)

const tieToleranceMeters = 0.01

// Thresholds are the worst accuracies, in meters, a shot may have and still
// settle a location wager automatically.
type Thresholds struct {
	ClosestToPin float64 `json:"closest_to_pin" yaml:"closest_to_pin"`
	LongestDrive float64 `json:"longest_drive" yaml:"longest_drive"`
	FirstToGreen float64 `json:"first_to_green" yaml:"first_to_green"`
	GreenRadius  float64 `json:"green_radius" yaml:"green_radius"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ClosestToPin: 5,  //nolint:mnd
		LongestDrive: 10, //nolint:mnd
		FirstToGreen: 8,  //nolint:mnd
		GreenRadius:  15, //nolint:mnd
	}
}

func (th Thresholds) forType(t Type) float64 {
	switch t {
	case TypeClosestToPin:
		return th.ClosestToPin
	case TypeLongestDrive:
		return th.LongestDrive
	case TypeFirstToGreen:
		return th.FirstToGreen
	case TypeThisHole, TypeHeadToHead, TypeRemainingHoles, TypeTotalStrokes:
	}

	return 0
}

type RankedShot struct {
	PlayerID       string  `json:"player_id"`
	DistanceMeters float64 `json:"distance_meters"`
	DistanceYards  float64 `json:"distance_yards"`
	Verified       bool    `json:"verified"`
	Eligible       bool    `json:"eligible"`

	shot geo.ShotMeasurement
}

type LocationResult struct {
	Outcome    Outcome      `json:"outcome"`
	Ranking    []RankedShot `json:"ranking"`
	Disputed   bool         `json:"disputed"`
	Unverified []string     `json:"unverified,omitempty"`
}

func latestShots(participants []string, shots []geo.ShotMeasurement) map[string]geo.ShotMeasurement {
	result := map[string]geo.ShotMeasurement{}

	for _, shot := range shots {
		if !slices.Contains(participants, shot.PlayerID) {
			continue
		}

		if current, ok := result[shot.PlayerID]; !ok || shot.CapturedAt.After(current.CapturedAt) {
			result[shot.PlayerID] = shot
		}
	}

	return result
}

// ResolveLocation ranks the latest shot of every participant. Closest-to-pin
// ranks by ascending distance to the pin, longest-drive by descending
// distance from the tee and first-to-green by capture time among shots on
// the green. Rank 0 wins. If any participant's shot fails verification the
// result is disputed and the outcome stays NotYetResolvable.
//
//nolint:cyclop,funlen
func ResolveLocation(
	t Type,
	participants []string,
	shots []geo.ShotMeasurement,
	ref geo.HoleReference,
	th Thresholds,
) (LocationResult, error) {
	if !t.IsLocationBased() {
		if t.Valid() {
			return LocationResult{}, fmt.Errorf("%w: %s", ErrNotLocationBased, t)
		}

		return LocationResult{}, fmt.Errorf("%w: %q", ErrUnknownWagerType, t)
	}

	anchor := ref.Pin
	if t == TypeLongestDrive {
		anchor = ref.Tee
	}

	if anchor == nil {
		return LocationResult{}, fmt.Errorf("%w: hole %d has no reference for %s", ErrReferencePointMissing, ref.Hole, t)
	}

	latest := latestShots(participants, shots)
	if len(latest) < len(participants) || len(participants) < 2 { //nolint:mnd
		return LocationResult{Outcome: NotYetResolvable()}, nil
	}

	threshold := th.forType(t)
	result := LocationResult{Outcome: NotYetResolvable()}

	for _, playerID := range participants {
		shot := latest[playerID]
		distance := geo.Haversine(anchor.Position, shot.Position)
		verified := geo.Verify(shot, threshold, ref.Boundary)

		eligible := true
		if t == TypeFirstToGreen {
			radius := ref.GreenRadius
			if radius <= 0 {
				radius = th.GreenRadius
			}

			eligible = distance <= radius
		}

		result.Ranking = append(result.Ranking, RankedShot{
			PlayerID:       playerID,
			DistanceMeters: distance,
			DistanceYards:  geo.MetersToYards(distance),
			Verified:       verified,
			Eligible:       eligible,
			shot:           shot,
		})

		if !verified {
			result.Unverified = append(result.Unverified, playerID)
		}
	}

	sort.SliceStable(result.Ranking, rankOrder(t, result.Ranking))

	if len(result.Unverified) > 0 {
		result.Disputed = true

		return result, nil
	}

	first, second := result.Ranking[0], result.Ranking[1]
	if !first.Eligible {
		return result, nil
	}

	if second.Eligible && tied(t, first, second) {
		result.Outcome = Tie()

		return result, nil
	}

	result.Outcome = Winner(first.PlayerID)

	return result, nil
}

func rankOrder(t Type, ranking []RankedShot) func(i, j int) bool {
	return func(i, j int) bool {
		a, b := ranking[i], ranking[j]

		switch t {
		case TypeLongestDrive:
			return a.DistanceMeters > b.DistanceMeters
		case TypeFirstToGreen:
			if a.Eligible != b.Eligible {
				return a.Eligible
			}

			return a.shot.CapturedAt.Before(b.shot.CapturedAt)
		case TypeClosestToPin, TypeThisHole, TypeHeadToHead, TypeRemainingHoles, TypeTotalStrokes:
		}

		return a.DistanceMeters < b.DistanceMeters
	}
}

// tied reports whether two ranked shots are too close to separate. Distances
// within tieToleranceMeters tie.
func tied(t Type, a, b RankedShot) bool {
	if t == TypeFirstToGreen {
		return a.Eligible == b.Eligible && a.shot.CapturedAt.Equal(b.shot.CapturedAt)
	}

	return math.Abs(a.DistanceMeters-b.DistanceMeters) <= tieToleranceMeters
}

// ResolveWagerLocation resolves a location wager between its two players.
func ResolveWagerLocation(w Wager, shots []geo.ShotMeasurement, ref geo.HoleReference, th Thresholds) (LocationResult, error) {
	return ResolveLocation(w.Type, []string{w.InitiatorID, w.TargetID}, shots, ref, th)
}
