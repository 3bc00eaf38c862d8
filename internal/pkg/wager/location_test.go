package wager_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vreid/fairway/internal/pkg/geo"
	"github.com/vreid/fairway/internal/pkg/wager"
)

var pin = geo.Coordinate{Lat: 33.5, Lon: -82.0}

const metersPerDegree = geo.EarthRadiusMeters * math.Pi / 180.0

func north(c geo.Coordinate, meters float64) geo.Coordinate {
	return geo.Coordinate{Lat: c.Lat + meters/metersPerDegree, Lon: c.Lon}
}

func hole() geo.HoleReference {
	return geo.HoleReference{
		TournamentID: "t-1",
		Hole:         12,
		Pin:          &geo.ReferencePoint{Kind: geo.ReferencePin, Position: pin, Accuracy: 0.5, Confidence: 1},
		Tee:          &geo.ReferencePoint{Kind: geo.ReferenceTee, Position: north(pin, -250), Accuracy: 0.5, Confidence: 1},
	}
}

func shot(playerID string, position geo.Coordinate, accuracy float64, second int) geo.ShotMeasurement {
	return geo.ShotMeasurement{
		PlayerID:   playerID,
		Position:   position,
		Accuracy:   accuracy,
		CapturedAt: time.Date(2026, 6, 14, 11, 0, second, 0, time.UTC),
		Grade:      geo.GradeHigh,
	}
}

var players = []string{"alice", "bob"}

func TestResolveClosestToPin(t *testing.T) {
	t.Parallel()

	shots := []geo.ShotMeasurement{
		shot("alice", north(pin, 6), 2, 0),
		shot("bob", north(pin, 3), 2, 1),
	}

	result, err := wager.ResolveLocation(wager.TypeClosestToPin, players, shots, hole(), wager.DefaultThresholds())
	require.NoError(t, err)

	assert.Equal(t, wager.Winner("bob"), result.Outcome)
	assert.False(t, result.Disputed)
	require.Len(t, result.Ranking, 2)
	assert.Equal(t, "bob", result.Ranking[0].PlayerID)
	assert.InDelta(t, 3.0, result.Ranking[0].DistanceMeters, 0.01)
	assert.InDelta(t, 3.0*geo.YardsPerMeter, result.Ranking[0].DistanceYards, 0.01)
}

func TestResolveClosestToPinUsesLatestShot(t *testing.T) {
	t.Parallel()

	shots := []geo.ShotMeasurement{
		shot("alice", north(pin, 1), 2, 0),
		shot("alice", north(pin, 9), 2, 5),
		shot("bob", north(pin, 4), 2, 1),
	}

	result, err := wager.ResolveLocation(wager.TypeClosestToPin, players, shots, hole(), wager.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, wager.Winner("bob"), result.Outcome)
}

func TestResolveLongestDrive(t *testing.T) {
	t.Parallel()

	tee := hole().Tee.Position
	shots := []geo.ShotMeasurement{
		shot("alice", north(tee, 240), 6, 0),
		shot("bob", north(tee, 215), 6, 1),
	}

	result, err := wager.ResolveLocation(wager.TypeLongestDrive, players, shots, hole(), wager.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, wager.Winner("alice"), result.Outcome)
	assert.Equal(t, "alice", result.Ranking[0].PlayerID)
}

func TestResolveFirstToGreen(t *testing.T) {
	t.Parallel()

	shots := []geo.ShotMeasurement{
		shot("alice", north(pin, 40), 3, 0),
		shot("bob", north(pin, 10), 3, 20),
	}

	result, err := wager.ResolveLocation(wager.TypeFirstToGreen, players, shots, hole(), wager.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, wager.Winner("bob"), result.Outcome)

	shots[0] = shot("alice", north(pin, 5), 3, 30)

	result, err = wager.ResolveLocation(wager.TypeFirstToGreen, players, shots, hole(), wager.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, wager.Winner("bob"), result.Outcome)

	shots[1] = shot("bob", north(pin, 30), 3, 20)

	result, err = wager.ResolveLocation(wager.TypeFirstToGreen, players, shots, hole(), wager.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, wager.Winner("alice"), result.Outcome)
}

func TestResolveFirstToGreenNobodyOn(t *testing.T) {
	t.Parallel()

	shots := []geo.ShotMeasurement{
		shot("alice", north(pin, 40), 3, 0),
		shot("bob", north(pin, 50), 3, 1),
	}

	result, err := wager.ResolveLocation(wager.TypeFirstToGreen, players, shots, hole(), wager.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, wager.NotYetResolvable(), result.Outcome)
	assert.False(t, result.Disputed)
}

func TestResolveLocationTie(t *testing.T) {
	t.Parallel()

	shots := []geo.ShotMeasurement{
		shot("alice", north(pin, 4), 2, 0),
		shot("bob", north(pin, -4), 2, 1),
	}

	result, err := wager.ResolveLocation(wager.TypeClosestToPin, players, shots, hole(), wager.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, wager.Tie(), result.Outcome)
}

func TestResolveLocationRanksManyPlayersByDistance(t *testing.T) {
	t.Parallel()

	shots := []geo.ShotMeasurement{
		shot("alice", north(pin, 3.008), 2, 0),
		shot("bob", north(pin, 3.004), 2, 1),
		shot("carol", north(pin, 3.0), 2, 2),
		shot("dave", north(pin, 7), 2, 3),
	}

	result, err := wager.ResolveLocation(wager.TypeClosestToPin, []string{"alice", "bob", "carol", "dave"},
		shots, hole(), wager.DefaultThresholds())
	require.NoError(t, err)

	order := []string{}
	for _, r := range result.Ranking {
		order = append(order, r.PlayerID)
	}

	assert.Equal(t, []string{"carol", "bob", "alice", "dave"}, order)
	assert.Equal(t, wager.Tie(), result.Outcome)

	shots[1] = shot("bob", north(pin, 4), 2, 1)
	shots[0] = shot("alice", north(pin, 3.02), 2, 0)

	result, err = wager.ResolveLocation(wager.TypeClosestToPin, []string{"alice", "bob", "carol", "dave"},
		shots, hole(), wager.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, wager.Winner("carol"), result.Outcome)
	assert.Equal(t, "alice", result.Ranking[1].PlayerID)
}

func TestResolveLocationUnverifiedIsDisputed(t *testing.T) {
	t.Parallel()

	shots := []geo.ShotMeasurement{
		shot("alice", north(pin, 2), 12, 0),
		shot("bob", north(pin, 3), 2, 1),
	}

	result, err := wager.ResolveLocation(wager.TypeClosestToPin, players, shots, hole(), wager.DefaultThresholds())
	require.NoError(t, err)

	assert.True(t, result.Disputed)
	assert.Equal(t, []string{"alice"}, result.Unverified)
	assert.Equal(t, wager.NotYetResolvable(), result.Outcome)
	assert.Equal(t, "alice", result.Ranking[0].PlayerID)
}

func TestResolveLocationOutsideBoundaryIsDisputed(t *testing.T) {
	t.Parallel()

	ref := hole()
	ref.Boundary = geo.Polygon{north(pin, 20), {Lat: pin.Lat, Lon: pin.Lon + 0.001}, north(pin, -300), {Lat: pin.Lat, Lon: pin.Lon - 0.001}}

	shots := []geo.ShotMeasurement{
		shot("alice", north(pin, 2), 2, 0),
		shot("bob", north(pin, 60), 2, 1),
	}

	result, err := wager.ResolveLocation(wager.TypeClosestToPin, players, shots, ref, wager.DefaultThresholds())
	require.NoError(t, err)
	assert.True(t, result.Disputed)
	assert.Equal(t, []string{"bob"}, result.Unverified)
}

func TestResolveLocationMissingShot(t *testing.T) {
	t.Parallel()

	shots := []geo.ShotMeasurement{shot("alice", north(pin, 2), 2, 0), shot("carol", pin, 1, 0)}

	result, err := wager.ResolveLocation(wager.TypeClosestToPin, players, shots, hole(), wager.DefaultThresholds())
	require.NoError(t, err)
	assert.Equal(t, wager.NotYetResolvable(), result.Outcome)
	assert.Empty(t, result.Ranking)
}

func TestResolveLocationReferenceMissing(t *testing.T) {
	t.Parallel()

	ref := hole()
	ref.Tee = nil

	shots := []geo.ShotMeasurement{shot("alice", pin, 2, 0), shot("bob", pin, 2, 1)}

	_, err := wager.ResolveLocation(wager.TypeLongestDrive, players, shots, ref, wager.DefaultThresholds())
	require.ErrorIs(t, err, wager.ErrReferencePointMissing)

	_, err = wager.ResolveLocation(wager.TypeClosestToPin, players, shots, geo.HoleReference{}, wager.DefaultThresholds())
	require.ErrorIs(t, err, wager.ErrReferencePointMissing)
}

func TestResolveLocationRejectsStrokeTypes(t *testing.T) {
	t.Parallel()

	_, err := wager.ResolveLocation(wager.TypeThisHole, players, nil, hole(), wager.DefaultThresholds())
	require.ErrorIs(t, err, wager.ErrNotLocationBased)

	_, err = wager.ResolveLocation("skins", players, nil, hole(), wager.DefaultThresholds())
	require.ErrorIs(t, err, wager.ErrUnknownWagerType)
}
