package scorecard_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vreid/fairway/internal/pkg/common"
	"github.com/vreid/fairway/internal/pkg/scorecard"
)

func newService(t *testing.T) (*scorecard.ScorecardService, chan scorecard.ScoreEvent) {
	t.Helper()

	databaseService, err := common.OpenDatabase(t.TempDir())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = databaseService.Shutdown()
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	events := make(chan scorecard.ScoreEvent, 100)

	return &scorecard.ScorecardService{
		DatabaseService: databaseService,
		ScoreSink:       events,
		Clock:           common.NewFixedClock(time.Date(2026, 6, 14, 8, 0, 0, 0, time.UTC)),
		Logger:          logger,
	}, events
}

func TestRecordHole(t *testing.T) {
	t.Parallel()

	service, events := newService(t)

	_, err := service.RecordHole("r-1", "alice", 1, 4)
	require.NoError(t, err)

	card, err := service.RecordHole("r-1", "alice", 2, 5)
	require.NoError(t, err)

	assert.Equal(t, map[int]int{1: 4, 2: 5}, card.Holes)
	assert.Equal(t, scorecard.ScoreEvent{RoundID: "r-1", PlayerID: "alice", Hole: 1}, <-events)
	assert.Equal(t, scorecard.ScoreEvent{RoundID: "r-1", PlayerID: "alice", Hole: 2}, <-events)

	stored, err := service.Get("r-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, card.Holes, stored.Holes)
	assert.Equal(t, 3, stored.CurrentHole())

	_, err = service.RecordHole("r-1", "alice", 19, 4)
	require.ErrorIs(t, err, scorecard.ErrInvalidHole)
}

func TestRoundIsolation(t *testing.T) {
	t.Parallel()

	service, _ := newService(t)

	_, err := service.RecordHole("r-1", "alice", 1, 4)
	require.NoError(t, err)
	_, err = service.RecordHole("r-10", "bob", 1, 5)
	require.NoError(t, err)
	_, err = service.SetHandicap("r-1", "bob", 12.4)
	require.NoError(t, err)

	cards, err := service.Round("r-1")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "alice", cards[0].PlayerID)
	assert.Equal(t, "bob", cards[1].PlayerID)
	assert.InDelta(t, 12.4, cards[1].HandicapIndex, 1e-9)
	assert.Empty(t, cards[1].Holes)

	empty, err := service.Get("r-2", "carol")
	require.NoError(t, err)
	assert.Empty(t, empty.Holes)
	assert.Equal(t, 1, empty.CurrentHole())
}

func TestScorecardHelpers(t *testing.T) {
	t.Parallel()

	card := scorecard.Scorecard{Holes: map[int]int{1: 4, 2: 3, 3: 5, 5: 4}}

	assert.True(t, card.Covers(1, 3))
	assert.False(t, card.Covers(1, 5))
	assert.False(t, card.Covers(4, 3))
	assert.Equal(t, 12, card.Gross(1, 3))
	assert.Equal(t, 6, card.CurrentHole())

	strokes, ok := card.Strokes(2)
	assert.True(t, ok)
	assert.Equal(t, 3, strokes)
}

func TestPutHole(t *testing.T) {
	t.Parallel()

	service, events := newService(t)

	e := common.NewEcho()
	service.Routes(e)

	req := httptest.NewRequest(http.MethodPut, "/api/rounds/r-1/players/alice/holes/7", strings.NewReader(`{"strokes": 6}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var card scorecard.Scorecard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &card))
	assert.Equal(t, 6, card.Holes[7])
	assert.Equal(t, 7, (<-events).Hole)

	req = httptest.NewRequest(http.MethodPut, "/api/rounds/r-1/players/alice/holes/7", strings.NewReader(`{"strokes": 0}`))
	req.Header.Set("Content-Type", "application/json")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPut, "/api/rounds/r-1/players/alice/holes/20", strings.NewReader(`{"strokes": 4}`))
	req.Header.Set("Content-Type", "application/json")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
