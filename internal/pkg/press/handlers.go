package press

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vreid/fairway/internal/pkg/common"
	"github.com/vreid/fairway/internal/pkg/wager"
)

func (s *PressService) Routes(e *echo.Echo) {
	wagerGroup := e.Group("/api/wagers")

	wagerGroup.POST("", s.PostWager)
	wagerGroup.GET("", s.GetWagers)
	wagerGroup.GET("/:id", s.GetWager)
	wagerGroup.POST("/:id/accept", s.PostAccept)
	wagerGroup.POST("/:id/decline", s.PostDecline)
	wagerGroup.POST("/:id/counter", s.PostCounter)
	wagerGroup.POST("/:id/activate", s.PostActivate)
	wagerGroup.POST("/:id/evaluate", s.PostEvaluate)
	wagerGroup.POST("/:id/resolve", s.PostResolve)
	wagerGroup.POST("/:id/shots", s.PostShot)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "wager not found")
	case errors.Is(err, wager.ErrNotTarget), errors.Is(err, ErrNotParticipant):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, wager.ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, wager.ErrInvalidWager),
		errors.Is(err, wager.ErrUnknownWagerType),
		errors.Is(err, wager.ErrInvalidWinner),
		errors.Is(err, wager.ErrNotLocationBased),
		errors.Is(err, ErrInvalidOutcome):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return echo.NewHTTPError(http.StatusInternalServerError, "wager operation failed")
}

func (s *PressService) PostWager(c echo.Context) error {
	var req wager.CreateRequest

	err := common.BindAndValidate(c, &req)
	if err != nil {
		return err
	}

	w, err := s.Create(req)
	if err != nil {
		return httpError(err)
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusCreated, w, "  ")
}

func (s *PressService) GetWagers(c echo.Context) error {
	wagers, err := s.List(c.QueryParam("tournament"), c.QueryParam("round"))
	if err != nil {
		return httpError(err)
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, wagers, "  ")
}

func (s *PressService) GetWager(c echo.Context) error {
	w, err := s.Get(c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, w, "  ")
}

func (s *PressService) respond(c echo.Context, fn func(id, playerID string) (wager.Wager, error)) error {
	var req wager.RespondRequest

	err := common.BindAndValidate(c, &req)
	if err != nil {
		return err
	}

	w, err := fn(c.Param("id"), req.PlayerID)
	if err != nil {
		return httpError(err)
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, w, "  ")
}

func (s *PressService) PostAccept(c echo.Context) error {
	return s.respond(c, s.Accept)
}

func (s *PressService) PostDecline(c echo.Context) error {
	return s.respond(c, s.Decline)
}

func (s *PressService) PostCounter(c echo.Context) error {
	var req wager.CounterRequest

	err := common.BindAndValidate(c, &req)
	if err != nil {
		return err
	}

	result, err := s.Counter(c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusCreated, result, "  ")
}

func (s *PressService) PostActivate(c echo.Context) error {
	w, err := s.Activate(c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, w, "  ")
}

func (s *PressService) PostEvaluate(c echo.Context) error {
	w, err := s.Evaluate(c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, w, "  ")
}

func (s *PressService) PostResolve(c echo.Context) error {
	var req wager.ResolveRequest

	err := common.BindAndValidate(c, &req)
	if err != nil {
		return err
	}

	w, err := s.ResolveManually(c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, w, "  ")
}

func (s *PressService) PostShot(c echo.Context) error {
	var req wager.ShotRequest

	err := common.BindAndValidate(c, &req)
	if err != nil {
		return err
	}

	result, err := s.RecordShot(c.Param("id"), req)
	if err != nil {
		return httpError(err)
	}

	//nolint:wrapcheck
	return c.JSONPretty(http.StatusOK, result, "  ")
}
