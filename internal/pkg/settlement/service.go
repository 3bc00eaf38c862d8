package settlement

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
	"github.com/vreid/fairway/internal/pkg/common"
	"github.com/vreid/fairway/internal/pkg/config"
	"github.com/vreid/fairway/internal/pkg/scorecard"
	"github.com/vreid/fairway/internal/pkg/sidegame"
	"github.com/vreid/fairway/internal/pkg/wager"
	bolt "go.etcd.io/bbolt"
)

type TournamentService struct {
	DatabaseService *common.DatabaseService

	SignatureSecret string

	Games  config.Games
	Clock  common.Clock
	Logger *logrus.Logger
}

func NewTournamentService(i do.Injector) (*TournamentService, error) {
	databaseService := do.MustInvoke[*common.DatabaseService](i)
	signatureSecret := do.MustInvokeNamed[string](i, "signature-secret")
	games := do.MustInvoke[config.Games](i)
	clock := do.MustInvoke[common.Clock](i)
	logger := do.MustInvoke[*logrus.Logger](i)

	result := &TournamentService{
		DatabaseService: databaseService,

		SignatureSecret: signatureSecret,

		Games:  games,
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

func (s *TournamentService) Routes(e *echo.Echo) {
	tournamentGroup := e.Group("/api/tournaments")

	tournamentGroup.GET("/:tournament", s.GetTournament)
	tournamentGroup.PUT("/:tournament", s.PutTournament)
	tournamentGroup.PUT("/:tournament/wolf/:hole", s.PutWolfPartner)
	tournamentGroup.GET("/:tournament/settlement", s.GetSettlement)
	tournamentGroup.POST("/:tournament/settlement/verify", s.PostVerify)
}

func loadTournament(tx *bolt.Tx, id string) (Tournament, error) {
	var t Tournament

	err := common.GetJSON(tx, common.TournamentsBucket, []byte(id), &t)

	return t, err //nolint:wrapcheck
}

func (s *TournamentService) Save(id string, req TournamentRequest) (Tournament, error) {
	t, err := NewTournament(id, req, s.Games, s.Clock.Now())
	if err != nil {
		return Tournament{}, err
	}

	err = s.DatabaseService.DB.Update(func(tx *bolt.Tx) error {
		previous, err := loadTournament(tx, id)
		if err == nil && previous.Wolf != nil && t.Wolf != nil && len(req.Wolf.Partners) == 0 {
			t.Wolf.Partners = previous.Wolf.Partners
		}

		return common.PutJSON(tx, common.TournamentsBucket, []byte(id), t)
	})
	if err != nil {
		return Tournament{}, fmt.Errorf("failed to store tournament: %w", err)
	}

	s.Logger.WithFields(logrus.Fields{
		"tournament": id,
		"round":      t.RoundID,
		"players":    len(t.Players),
		"format":     t.Format,
	}).Info("stored tournament")

	return t, nil
}

func (s *TournamentService) Get(id string) (Tournament, error) {
	var t Tournament

	err := s.DatabaseService.DB.View(func(tx *bolt.Tx) error {
		var err error

		t, err = loadTournament(tx, id)

		return err
	})
	if err != nil {
		return Tournament{}, fmt.Errorf("failed to read tournament: %w", err)
	}

	return t, nil
}

func (s *TournamentService) SetWolfPartner(id string, hole int, partnerID string) (Tournament, error) {
	var t Tournament

	err := s.DatabaseService.DB.Update(func(tx *bolt.Tx) error {
		current, err := loadTournament(tx, id)
		if err != nil {
			return err
		}

		t, err = current.SetPartner(hole, partnerID)
		if err != nil {
			return err
		}

		t.UpdatedAt = s.Clock.Now()

		return common.PutJSON(tx, common.TournamentsBucket, []byte(id), t)
	})
	if err != nil {
		return Tournament{}, fmt.Errorf("failed to set wolf partner: %w", err)
	}

	return t, nil
}

// Settle computes the settlement of a tournament from everything recorded so
// far. It only reads, so it can be run as often as needed.
func (s *TournamentService) Settle(id string) (Report, error) {
	var (
		t      Tournament
		cards  []scorecard.Scorecard
		wagers []wager.Wager
	)

	err := s.DatabaseService.DB.View(func(tx *bolt.Tx) error {
		var err error

		t, err = loadTournament(tx, id)
		if err != nil {
			return err
		}

		cards, err = scorecard.LoadRound(tx, t.RoundID)
		if err != nil {
			return err //nolint:wrapcheck
		}

		wagers, err = wager.Select(tx, func(w wager.Wager) bool {
			return w.TournamentID == id && w.RoundID == t.RoundID
		})

		return err //nolint:wrapcheck
	})
	if err != nil {
		return Report{}, fmt.Errorf("failed to read tournament: %w", err)
	}

	report, err := Compute(t, cards, wagers)
	if err != nil {
		return Report{}, err
	}

	s.Logger.WithFields(logrus.Fields{
		"tournament": id,
		"players":    len(report.Settlements),
		"wagers":     report.Wagers,
	}).Debug("computed settlement")

	return report, nil
}

func (s *TournamentService) PutTournament(c echo.Context) error {
	var req TournamentRequest

	err := common.BindAndValidate(c, &req)
	if err != nil {
		return err
	}

	t, err := s.Save(c.Param("tournament"), req)
	if errors.Is(err, ErrUnknownPlayer) || errors.Is(err, ErrUnknownSnakeScope) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store tournament")
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, t, "  ")
}

func (s *TournamentService) GetTournament(c echo.Context) error {
	t, err := s.Get(c.Param("tournament"))
	if errors.Is(err, common.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "tournament not found")
	}

	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read tournament")
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, t, "  ")
}

func (s *TournamentService) PutWolfPartner(c echo.Context) error {
	hole, err := strconv.Atoi(c.Param("hole"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hole")
	}

	var req PartnerRequest

	err = common.BindAndValidate(c, &req)
	if err != nil {
		return err
	}

	t, err := s.SetWolfPartner(c.Param("tournament"), hole, req.PartnerID)

	switch {
	case errors.Is(err, common.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "tournament not found")
	case errors.Is(err, ErrWolfNotPlayed),
		errors.Is(err, sidegame.ErrInvalidPartner),
		errors.Is(err, scorecard.ErrInvalidHole):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to set wolf partner")
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, t, "  ")
}

func (s *TournamentService) GetSettlement(c echo.Context) error {
	report, err := s.Settle(c.Param("tournament"))
	if errors.Is(err, common.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "tournament not found")
	}

	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to compute settlement")
	}

	signed, err := Sign(report, []byte(s.SignatureSecret))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to sign settlement")
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, signed, "  ")
}

func (s *TournamentService) PostVerify(c echo.Context) error {
	var signed SignedReport

	err := c.Bind(&signed)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if signed.Report.TournamentID != c.Param("tournament") {
		return echo.NewHTTPError(http.StatusBadRequest, "settlement belongs to another tournament")
	}

	err = Verify(signed, []byte(s.SignatureSecret))
	if errors.Is(err, ErrInvalidSignature) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to verify settlement")
	}

	return c.NoContent(http.StatusNoContent)
}
