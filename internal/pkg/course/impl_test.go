package course_test

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vreid/fairway/internal/pkg/common"
	"github.com/vreid/fairway/internal/pkg/config"
	"github.com/vreid/fairway/internal/pkg/course"
	"github.com/vreid/fairway/internal/pkg/geo"
	"github.com/vreid/fairway/internal/pkg/wager"
	bolt "go.etcd.io/bbolt"
)

var green = geo.Coordinate{Lat: 36.5681, Lon: -121.9500}

func offset(c geo.Coordinate, north, east float64) geo.Coordinate {
	return geo.Coordinate{
		Lat: c.Lat + north/111320.0,
		Lon: c.Lon + east/(111320.0*math.Cos(c.Lat*math.Pi/180)),
	}
}

func newService(t *testing.T) *course.CourseService {
	t.Helper()

	databaseService, err := common.OpenDatabase(t.TempDir())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = databaseService.Shutdown()
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &course.CourseService{
		DatabaseService: databaseService,
		Games:           config.Defaults(),
		Logger:          logger,
	}
}

func storeWager(t *testing.T, s *course.CourseService, id, tournamentID string, status wager.Status) {
	t.Helper()

	err := s.DatabaseService.DB.Update(func(tx *bolt.Tx) error {
		return wager.Save(tx, wager.Wager{
			ID:           id,
			TournamentID: tournamentID,
			InitiatorID:  "alice",
			TargetID:     "bob",
			Amount:       decimal.NewFromInt(5),
			Type:         wager.TypeClosestToPin,
			StartHole:    7,
			Status:       status,
		})
	})
	require.NoError(t, err)
}

func holeReference(tournamentID string) geo.HoleReference {
	return geo.HoleReference{
		TournamentID: tournamentID,
		Hole:         7,
		Pin:          &geo.ReferencePoint{Kind: geo.ReferencePin, Position: offset(green, 20, 0), Accuracy: 1, Confidence: 0.95},
		Tee:          &geo.ReferencePoint{Kind: geo.ReferenceTee, Position: offset(green, -150, 0), Accuracy: 1, Confidence: 0.9},
		Landmarks: []geo.ReferencePoint{
			{Kind: geo.ReferenceLandmark, Position: offset(green, 0, 100), Accuracy: 2, Confidence: 0.8},
		},
	}
}

func TestSetReference(t *testing.T) {
	t.Parallel()

	service := newService(t)

	_, err := service.Reference("t-1", 7)
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, service.SetReference(holeReference("t-1")))

	ref, err := service.Reference("t-1", 7)
	require.NoError(t, err)
	assert.Len(t, ref.Points(), 3)
	assert.Equal(t, geo.ReferencePin, ref.Pin.Kind)

	ref.Hole = 19
	require.ErrorIs(t, service.SetReference(ref), course.ErrInvalidHole)
}

func TestReferenceLockedWhileWagerActive(t *testing.T) {
	t.Parallel()

	service := newService(t)

	storeWager(t, service, "w-pending", "t-1", wager.StatusPending)
	require.NoError(t, service.SetReference(holeReference("t-1")))

	storeWager(t, service, "w-active", "t-1", wager.StatusActive)
	require.ErrorIs(t, service.SetReference(holeReference("t-1")), course.ErrReferenceLocked)

	require.NoError(t, service.SetReference(holeReference("t-2")))

	storeWager(t, service, "w-active", "t-1", wager.StatusCompleted)
	require.NoError(t, service.SetReference(holeReference("t-1")))
}

func burst(center geo.Coordinate, accuracy float64) []course.SampleRequest {
	start := time.Date(2026, 6, 14, 9, 30, 0, 0, time.UTC)
	result := []course.SampleRequest{}

	for i, d := range [][2]float64{{0, 1}, {0, -1}, {1, 0}, {-1, 0}} {
		c := offset(center, d[0], d[1])
		result = append(result, course.SampleRequest{
			Lat:        c.Lat,
			Lon:        c.Lon,
			Accuracy:   accuracy,
			CapturedAt: start.Add(time.Duration(i) * time.Second),
		})
	}

	return result
}

func TestRefineTriangulates(t *testing.T) {
	t.Parallel()

	service := newService(t)
	require.NoError(t, service.SetReference(holeReference("t-1")))

	result, err := service.Refine(context.Background(), "t-1", 7, course.RefineRequest{
		PlayerID:       "alice",
		HasOrientation: true,
		Samples:        burst(green, 4),
	})
	require.NoError(t, err)

	assert.Equal(t, geo.MethodTriangulate, result.Refined.Method)
	assert.Equal(t, 3, result.Refined.NearbyPoints)
	assert.Equal(t, geo.MethodTriangulate, result.Measurement.Method)
	assert.Equal(t, "alice", result.Measurement.PlayerID)
	assert.NotEqual(t, geo.GradeLow, result.Measurement.Grade)
}

func TestRefineWithoutReferencesIsLowGrade(t *testing.T) {
	t.Parallel()

	service := newService(t)

	result, err := service.Refine(context.Background(), "t-1", 7, course.RefineRequest{
		PlayerID:       "alice",
		HasOrientation: true,
		Samples:        burst(green, 1),
	})
	require.NoError(t, err)

	assert.Equal(t, geo.MethodBoundary, result.Measurement.Method)
	assert.True(t, result.Refined.ForceLowGrade)
	assert.Equal(t, geo.GradeLow, result.Measurement.Grade)
}

func TestRefineCancelled(t *testing.T) {
	t.Parallel()

	service := newService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Refine(ctx, "t-1", 7, course.RefineRequest{
		PlayerID: "alice",
		Samples:  burst(green, 3),
	})
	require.ErrorIs(t, err, geo.ErrInsufficientGPSData)
}

func TestRefineTooFewSamples(t *testing.T) {
	t.Parallel()

	service := newService(t)
	require.NoError(t, service.SetReference(holeReference("t-1")))

	_, err := service.Refine(context.Background(), "t-1", 7, course.RefineRequest{
		PlayerID: "alice",
		Samples:  burst(green, 2)[:1],
	})
	require.ErrorIs(t, err, geo.ErrInsufficientGPSData)

	e := common.NewEcho()
	service.Routes(e)

	body := `{"player_id":"alice","samples":[{"lat":36.5681,"lon":-121.95,"accuracy":2}]}`

	req := httptest.NewRequest(http.MethodPost, "/api/tournaments/t-1/holes/7/refine", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPutReferenceConflict(t *testing.T) {
	t.Parallel()

	service := newService(t)
	storeWager(t, service, "w-active", "t-1", wager.StatusActive)

	e := common.NewEcho()
	service.Routes(e)

	body := `{"pin":{"kind":"pin","position":{"lat":36.5683,"lon":-121.95},"accuracy":1,"confidence":0.9}}`

	req := httptest.NewRequest(http.MethodPut, "/api/tournaments/t-1/holes/7/reference", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)

	req = httptest.NewRequest(http.MethodPut, "/api/tournaments/t-2/holes/7/reference", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/tournaments/t-2/holes/7/reference", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind": "pin"`)
}
