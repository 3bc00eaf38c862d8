package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
	"github.com/vreid/fairway/internal/pkg/common"
	"github.com/vreid/fairway/internal/pkg/config"
	"github.com/vreid/fairway/internal/pkg/course"
	"github.com/vreid/fairway/internal/pkg/notifier"
	"github.com/vreid/fairway/internal/pkg/press"
	"github.com/vreid/fairway/internal/pkg/scorecard"
	"github.com/vreid/fairway/internal/pkg/settlement"
	"github.com/vreid/fairway/internal/pkg/wager"

	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

type FairwayService struct {
	EchoService     *common.EchoService     `do:""`
	DatabaseService *common.DatabaseService `do:""`
	Logger          *logrus.Logger          `do:""`

	ScorecardService  *scorecard.ScorecardService   `do:""`
	PressService      *press.PressService           `do:""`
	CourseService     *course.CourseService         `do:""`
	TournamentService *settlement.TournamentService `do:""`
	NotifierService   *notifier.NotifierService     `do:""`
}

func runServer(ctx context.Context, cmd *cli.Command) error {
	i := do.New()

	do.ProvideNamedValue(i, "port", cmd.Int("port"))
	do.ProvideNamedValue(i, "data-dir", cmd.String("data-dir"))
	do.ProvideNamedValue(i, "log-level", cmd.String("log-level"))
	do.ProvideNamedValue(i, "games-config", cmd.String("games-config"))
	do.ProvideNamedValue(i, "redis-url", cmd.String("redis-url"))
	do.ProvideNamedValue(i, "signature-secret", cmd.String("signature-secret"))

	scoreChan := make(chan scorecard.ScoreEvent, 1000)
	var scoreSource <-chan scorecard.ScoreEvent = scoreChan
	var scoreSink chan<- scorecard.ScoreEvent = scoreChan

	do.ProvideNamedValue(i, "score-source", scoreSource)
	do.ProvideNamedValue(i, "score-sink", scoreSink)

	transitionChan := make(chan wager.Transition, 1000)
	var transitionSource <-chan wager.Transition = transitionChan
	var transitionSink chan<- wager.Transition = transitionChan

	do.ProvideNamedValue(i, "transition-source", transitionSource)
	do.ProvideNamedValue(i, "transition-sink", transitionSink)

	do.ProvideValue[common.Clock](i, common.SystemClock{})

	do.Provide(i, common.NewLogger)
	do.Provide(i, config.NewGames)
	do.Provide(i, common.NewDatabaseService)
	do.Provide(i, common.NewEchoService)

	do.Provide(i, scorecard.NewScorecardService)
	do.Provide(i, press.NewPressService)
	do.Provide(i, course.NewCourseService)
	do.Provide(i, settlement.NewTournamentService)
	do.Provide(i, notifier.NewNotifierService)

	do.Provide(i, do.InvokeStruct[FairwayService])

	fairwayService, err := do.Invoke[FairwayService](i)
	if err != nil {
		return fmt.Errorf("failed to create fairway service: %w", err)
	}

	logger := fairwayService.Logger

	fairwayService.NotifierService.Start()
	fairwayService.PressService.Start()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)

	go func() {
		serverErr <- fairwayService.EchoService.Start()
	}()

	select {
	case err = <-serverErr:
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := errors.Join(
		fairwayService.EchoService.Shutdown(shutdownCtx),
		fairwayService.PressService.Shutdown(),
		fairwayService.NotifierService.Shutdown(),
		fairwayService.DatabaseService.Shutdown(),
	)

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(err, shutdownErr)
	}

	return shutdownErr
}

func main() {
	//nolint:exhaustruct
	cmd := &cli.Command{
		Name:  "fairway",
		Usage: "golf wager resolution and settlement server",
		Commands: []*cli.Command{
			{
				Name: "server",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Value:   3000, //nolint:mnd
						Sources: cli.EnvVars("FAIRWAY_PORT"),
					},
					&cli.StringFlag{
						Name:    "data-dir",
						Value:   "./fairway/data",
						Sources: cli.EnvVars("FAIRWAY_DATA_DIR"),
					},
					&cli.StringFlag{
						Name:    "log-level",
						Value:   "info",
						Sources: cli.EnvVars("FAIRWAY_LOG_LEVEL"),
					},
					&cli.StringFlag{
						Name:    "games-config",
						Value:   "",
						Usage:   "YAML file with side-game stakes and shot verification settings",
						Sources: cli.EnvVars("FAIRWAY_GAMES_CONFIG"),
					},
					&cli.StringFlag{
						Name:    "signature-secret",
						Value:   "secret",
						Sources: cli.EnvVars("FAIRWAY_SIGNATURE_SECRET"),
					},
					&cli.StringFlag{
						Name:    "redis-url",
						Value:   "",
						Usage:   "publish wager transitions to this Redis server",
						Sources: cli.EnvVars("FAIRWAY_REDIS_URL"),
					},
				},
				Action: runServer,
			},
		},
		DefaultCommand: "server",
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
