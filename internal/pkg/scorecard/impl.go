package scorecard

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
	"github.com/vreid/fairway/internal/pkg/common"
	bolt "go.etcd.io/bbolt"
)

var ErrInvalidHole = errors.New("hole out of range")

type ScorecardService struct {
	DatabaseService *common.DatabaseService

	ScoreSink chan<- ScoreEvent

	Clock  common.Clock
	Logger *logrus.Logger
}

func NewScorecardService(i do.Injector) (*ScorecardService, error) {
	databaseService := do.MustInvoke[*common.DatabaseService](i)
	scoreSink := do.MustInvokeNamed[chan<- ScoreEvent](i, "score-sink")
	clock := do.MustInvoke[common.Clock](i)
	logger := do.MustInvoke[*logrus.Logger](i)

	result := &ScorecardService{
		DatabaseService: databaseService,

		ScoreSink: scoreSink,

		Clock:  clock,
		Logger: logger,
	}

	echoService, err := do.Invoke[*common.EchoService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to create echo service: %w", err)
	}

	echoService.Register(result.Routes)

	return result, nil
}

func (s *ScorecardService) Routes(e *echo.Echo) {
	roundGroup := e.Group("/api/rounds")

	roundGroup.GET("/:round", s.GetRound)
	roundGroup.GET("/:round/players/:player", s.GetScorecard)
	roundGroup.PUT("/:round/players/:player/holes/:hole", s.PutHole)
	roundGroup.PUT("/:round/players/:player/handicap", s.PutHandicap)
}

// Load reads a scorecard inside tx. A player without a scorecard gets an
// empty one.
func Load(tx *bolt.Tx, roundID, playerID string) (Scorecard, error) {
	var card Scorecard

	err := common.GetJSON(tx, common.ScorecardsBucket, common.Key(roundID, playerID), &card)
	if errors.Is(err, common.ErrNotFound) {
		return Scorecard{RoundID: roundID, PlayerID: playerID, Holes: map[int]int{}}, nil
	}

	if err != nil {
		return Scorecard{}, err
	}

	if card.Holes == nil {
		card.Holes = map[int]int{}
	}

	return card, nil
}

// LoadRound reads every scorecard of a round.
func LoadRound(tx *bolt.Tx, roundID string) ([]Scorecard, error) {
	cards := []Scorecard{}

	err := common.ScanJSON(tx, common.ScorecardsBucket, common.Key(roundID, ""), func(card Scorecard) error {
		if card.Holes == nil {
			card.Holes = map[int]int{}
		}

		cards = append(cards, card)

		return nil
	})

	return cards, err
}

func (s *ScorecardService) update(roundID, playerID string, fn func(*Scorecard)) (Scorecard, error) {
	var card Scorecard

	err := s.DatabaseService.DB.Update(func(tx *bolt.Tx) error {
		var err error

		card, err = Load(tx, roundID, playerID)
		if err != nil {
			return err
		}

		fn(&card)
		card.UpdatedAt = s.Clock.Now()

		return common.PutJSON(tx, common.ScorecardsBucket, common.Key(roundID, playerID), card)
	})
	if err != nil {
		return Scorecard{}, fmt.Errorf("failed to update scorecard: %w", err)
	}

	return card, nil
}

// RecordHole stores the gross strokes of a hole and announces the change.
// Writing the same value twice is harmless.
func (s *ScorecardService) RecordHole(roundID, playerID string, hole, strokes int) (Scorecard, error) {
	if hole < FirstHole || hole > LastHole {
		return Scorecard{}, fmt.Errorf("%w: %d", ErrInvalidHole, hole)
	}

	card, err := s.update(roundID, playerID, func(c *Scorecard) {
		c.Holes[hole] = strokes
	})
	if err != nil {
		return Scorecard{}, err
	}

	s.Logger.WithFields(logrus.Fields{
		"round":   roundID,
		"player":  playerID,
		"hole":    hole,
		"strokes": strokes,
	}).Debug("recorded hole score")

	if s.ScoreSink != nil {
		s.ScoreSink <- ScoreEvent{RoundID: roundID, PlayerID: playerID, Hole: hole}
	}

	return card, nil
}

func (s *ScorecardService) SetHandicap(roundID, playerID string, handicapIndex float64) (Scorecard, error) {
	card, err := s.update(roundID, playerID, func(c *Scorecard) {
		c.HandicapIndex = handicapIndex
	})
	if err != nil {
		return Scorecard{}, err
	}

	if s.ScoreSink != nil {
		s.ScoreSink <- ScoreEvent{RoundID: roundID, PlayerID: playerID}
	}

	return card, nil
}

func (s *ScorecardService) Get(roundID, playerID string) (Scorecard, error) {
	var card Scorecard

	err := s.DatabaseService.DB.View(func(tx *bolt.Tx) error {
		var err error

		card, err = Load(tx, roundID, playerID)

		return err
	})
	if err != nil {
		return Scorecard{}, fmt.Errorf("failed to read scorecard: %w", err)
	}

	return card, nil
}

func (s *ScorecardService) Round(roundID string) ([]Scorecard, error) {
	var cards []Scorecard

	err := s.DatabaseService.DB.View(func(tx *bolt.Tx) error {
		var err error

		cards, err = LoadRound(tx, roundID)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read round: %w", err)
	}

	return cards, nil
}

func (s *ScorecardService) PutHole(c echo.Context) error {
	hole, err := strconv.Atoi(c.Param("hole"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hole")
	}

	var req HoleRequest

	err = common.BindAndValidate(c, &req)
	if err != nil {
		return err
	}

	card, err := s.RecordHole(c.Param("round"), c.Param("player"), hole, req.Strokes)
	if errors.Is(err, ErrInvalidHole) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record hole")
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, card, "  ")
}

func (s *ScorecardService) PutHandicap(c echo.Context) error {
	var req HandicapRequest

	err := common.BindAndValidate(c, &req)
	if err != nil {
		return err
	}

	card, err := s.SetHandicap(c.Param("round"), c.Param("player"), req.HandicapIndex)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to set handicap")
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, card, "  ")
}

func (s *ScorecardService) GetScorecard(c echo.Context) error {
	card, err := s.Get(c.Param("round"), c.Param("player"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read scorecard")
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, card, "  ")
}

func (s *ScorecardService) GetRound(c echo.Context) error {
	cards, err := s.Round(c.Param("round"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read round")
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, cards, "  ")
}
