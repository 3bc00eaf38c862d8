package course

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
	"github.com/vreid/fairway/internal/pkg/common"
	"github.com/vreid/fairway/internal/pkg/config"
	"github.com/vreid/fairway/internal/pkg/geo"
	"github.com/vreid/fairway/internal/pkg/scorecard"
	"github.com/vreid/fairway/internal/pkg/wager"
	bolt "go.etcd.io/bbolt"
)

var (
	ErrReferenceLocked = errors.New("reference points are locked while a wager of the tournament is active")
	ErrInvalidHole     = errors.New("hole out of range")
)

type CourseService struct {
	DatabaseService *common.DatabaseService

	Games  config.Games
	Logger *logrus.Logger
}

func NewCourseService(i do.Injector) (*CourseService, error) {
	databaseService := do.MustInvoke[*common.DatabaseService](i)
	games := do.MustInvoke[config.Games](i)
	logger := do.MustInvoke[*logrus.Logger](i)

	result := &CourseService{
		DatabaseService: databaseService,

		Games:  games,
		Logger: logger,
	}

	echoService, err := do.Invoke[*common.EchoService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to create echo service: %w", err)
	}

	echoService.Register(result.Routes)

	return result, nil
}

func (s *CourseService) Routes(e *echo.Echo) {
	holeGroup := e.Group("/api/tournaments/:tournament/holes")

	holeGroup.GET("/:hole/reference", s.GetReference)
	holeGroup.PUT("/:hole/reference", s.PutReference)
	holeGroup.POST("/:hole/refine", s.PostRefine)
}

func referenceKey(tournamentID string, hole int) []byte {
	return common.Key(tournamentID, fmt.Sprintf("%02d", hole))
}

// LoadReference reads the reference points of a hole, returning
// common.ErrNotFound if none were stored.
func LoadReference(tx *bolt.Tx, tournamentID string, hole int) (geo.HoleReference, error) {
	var ref geo.HoleReference

	err := common.GetJSON(tx, common.ReferencePointsBucket, referenceKey(tournamentID, hole), &ref)

	return ref, err
}

func checkHole(hole int) error {
	if hole < scorecard.FirstHole || hole > scorecard.LastHole {
		return fmt.Errorf("%w: %d", ErrInvalidHole, hole)
	}

	return nil
}

// SetReference replaces the reference points of a hole. Changes are refused
// once any wager of the tournament is active.
func (s *CourseService) SetReference(ref geo.HoleReference) error {
	err := checkHole(ref.Hole)
	if err != nil {
		return err
	}

	err = s.DatabaseService.DB.Update(func(tx *bolt.Tx) error {
		active, err := wager.Select(tx, func(w wager.Wager) bool {
			return w.TournamentID == ref.TournamentID && w.Status == wager.StatusActive
		})
		if err != nil {
			return err
		}

		if len(active) > 0 {
			return fmt.Errorf("%w: %d active", ErrReferenceLocked, len(active))
		}

		return common.PutJSON(tx, common.ReferencePointsBucket, referenceKey(ref.TournamentID, ref.Hole), ref)
	})
	if err != nil {
		return fmt.Errorf("failed to store reference points: %w", err)
	}

	s.Logger.WithFields(logrus.Fields{
		"tournament": ref.TournamentID,
		"hole":       ref.Hole,
		"landmarks":  len(ref.Landmarks),
	}).Info("stored reference points")

	return nil
}

func (s *CourseService) Reference(tournamentID string, hole int) (geo.HoleReference, error) {
	var ref geo.HoleReference

	err := s.DatabaseService.DB.View(func(tx *bolt.Tx) error {
		var err error

		ref, err = LoadReference(tx, tournamentID, hole)

		return err
	})
	if err != nil {
		return geo.HoleReference{}, fmt.Errorf("failed to read reference points: %w", err)
	}

	return ref, nil
}

// Refine runs an uploaded burst through the capture pipeline and corrects
// the estimate against the hole's reference points. A hole without stored
// references falls back to the boundary-only path.
func (s *CourseService) Refine(ctx context.Context, tournamentID string, hole int, req RefineRequest) (RefineResponse, error) {
	err := checkHole(hole)
	if err != nil {
		return RefineResponse{}, err
	}

	ref, err := s.Reference(tournamentID, hole)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return RefineResponse{}, err
	}

	samples := make([]geo.Sample, 0, len(req.Samples))
	for _, sample := range req.Samples {
		samples = append(samples, geo.Sample{
			Position:   geo.Coordinate{Lat: sample.Lat, Lon: sample.Lon},
			Accuracy:   sample.Accuracy,
			CapturedAt: sample.CapturedAt,
		})
	}

	captureConfig := s.Games.CaptureConfig()
	captureConfig.Samples = len(samples)
	captureConfig.Interval = 0

	capture := geo.NewCaptureService(&geo.ReplayProvider{
		Samples:     samples,
		Orientation: req.HasOrientation,
	}, captureConfig)

	measurement, err := capture.Capture(ctx, req.PlayerID)
	if err != nil {
		return RefineResponse{}, fmt.Errorf("failed to capture shot: %w", err)
	}

	refined := geo.Refine(geo.Sample{
		Position:   measurement.Position,
		Accuracy:   measurement.Accuracy,
		CapturedAt: measurement.CapturedAt,
	}, ref.Points(), ref.Boundary, s.Games.Capture.NearbyRadius)

	measurement.Position = refined.Position
	measurement.Accuracy = refined.Accuracy
	measurement.Method = refined.Method

	if refined.ForceLowGrade {
		measurement.Grade = geo.GradeLow
	}

	s.Logger.WithFields(logrus.Fields{
		"tournament": tournamentID,
		"hole":       hole,
		"player":     req.PlayerID,
		"method":     refined.Method,
		"grade":      measurement.Grade,
	}).Debug("refined shot")

	return RefineResponse{Measurement: measurement, Refined: refined}, nil
}

func parseHole(c echo.Context) (int, error) {
	hole, err := strconv.Atoi(c.Param("hole"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid hole")
	}

	return hole, nil
}

func (s *CourseService) PutReference(c echo.Context) error {
	hole, err := parseHole(c)
	if err != nil {
		return err
	}

	var req ReferenceRequest

	err = common.BindAndValidate(c, &req)
	if err != nil {
		return err
	}

	ref := geo.HoleReference{
		TournamentID: c.Param("tournament"),
		Hole:         hole,
		Pin:          req.Pin,
		Tee:          req.Tee,
		Landmarks:    req.Landmarks,
		Boundary:     req.Boundary,
		GreenRadius:  req.GreenRadius,
	}

	err = s.SetReference(ref)

	switch {
	case errors.Is(err, ErrInvalidHole):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrReferenceLocked):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store reference points")
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, ref, "  ")
}

func (s *CourseService) GetReference(c echo.Context) error {
	hole, err := parseHole(c)
	if err != nil {
		return err
	}

	ref, err := s.Reference(c.Param("tournament"), hole)
	if errors.Is(err, common.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "no reference points for hole")
	}

	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read reference points")
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, ref, "  ")
}

func (s *CourseService) PostRefine(c echo.Context) error {
	hole, err := parseHole(c)
	if err != nil {
		return err
	}

	var req RefineRequest

	err = common.BindAndValidate(c, &req)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second) //nolint:mnd
	defer cancel()

	result, err := s.Refine(ctx, c.Param("tournament"), hole, req)

	switch {
	case errors.Is(err, ErrInvalidHole):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, geo.ErrInsufficientGPSData):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to refine shot")
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, result, "  ")
}
