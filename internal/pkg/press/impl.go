package press

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
	"github.com/vreid/fairway/internal/pkg/common"
	"github.com/vreid/fairway/internal/pkg/config"
	"github.com/vreid/fairway/internal/pkg/course"
	"github.com/vreid/fairway/internal/pkg/geo"
	"github.com/vreid/fairway/internal/pkg/scorecard"
	"github.com/vreid/fairway/internal/pkg/wager"
	bolt "go.etcd.io/bbolt"
)

const DefaultExpiryInterval = time.Second

var (
	ErrNotParticipant = errors.New("player is not a participant of the wager")
	ErrInvalidOutcome = errors.New("resolution needs a winner or a push")
)

type PressService struct {
	DatabaseService *common.DatabaseService

	TransitionSink chan<- wager.Transition
	ScoreSource    <-chan scorecard.ScoreEvent

	Games  config.Games
	Clock  common.Clock
	Logger *logrus.Logger

	ExpiryInterval time.Duration

	done chan struct{}
	wg   sync.WaitGroup
}

func NewPressService(i do.Injector) (*PressService, error) {
	databaseService := do.MustInvoke[*common.DatabaseService](i)
	transitionSink := do.MustInvokeNamed[chan<- wager.Transition](i, "transition-sink")
	scoreSource := do.MustInvokeNamed[<-chan scorecard.ScoreEvent](i, "score-source")
	games := do.MustInvoke[config.Games](i)
	clock := do.MustInvoke[common.Clock](i)
	logger := do.MustInvoke[*logrus.Logger](i)

	result := &PressService{
		DatabaseService: databaseService,

		TransitionSink: transitionSink,
		ScoreSource:    scoreSource,

		Games:  games,
		Clock:  clock,
		Logger: logger,

		ExpiryInterval: DefaultExpiryInterval,
	}

	echoService, err := do.Invoke[*common.EchoService](i)
	if err != nil {
		return nil, fmt.Errorf("failed to create echo service: %w", err)
	}

	echoService.Register(result.Routes)

	return result, nil
}

// Start launches the expiry ticker and the score event consumer.
func (s *PressService) Start() {
	s.done = make(chan struct{})

	s.wg.Add(2) //nolint:mnd

	go s.processScores()
	go s.expireLoop()
}

func (s *PressService) Shutdown() error {
	if s.done != nil {
		close(s.done)
		s.wg.Wait()
	}

	return nil
}

func (s *PressService) processScores() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.ScoreSource:
			if !ok {
				return
			}

			err := s.HandleScoreEvent(event)
			if err != nil {
				s.Logger.WithError(err).WithFields(logrus.Fields{
					"round":  event.RoundID,
					"player": event.PlayerID,
				}).Error("failed to handle score event")
			}
		}
	}
}

func (s *PressService) expireLoop() {
	defer s.wg.Done()

	interval := s.ExpiryInterval
	if interval <= 0 {
		interval = DefaultExpiryInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			_, err := s.ExpireDue()
			if err != nil {
				s.Logger.WithError(err).Error("failed to expire wagers")
			}
		}
	}
}

func (s *PressService) emit(transitions []*wager.Transition) {
	for _, t := range transitions {
		if t == nil {
			continue
		}

		s.Logger.WithFields(logrus.Fields{
			"wager":  t.WagerID,
			"from":   t.From,
			"to":     t.To,
			"winner": t.WinnerID,
		}).Debug("wager transition")

		if s.TransitionSink != nil {
			s.TransitionSink <- *t
		}
	}
}

// update runs fn in a write transaction and emits its transitions once the
// transaction committed.
func (s *PressService) update(fn func(tx *bolt.Tx) ([]*wager.Transition, error)) error {
	var transitions []*wager.Transition

	err := s.DatabaseService.DB.Update(func(tx *bolt.Tx) error {
		var err error

		transitions, err = fn(tx)

		return err
	})
	if err != nil {
		return err //nolint:wrapcheck
	}

	s.emit(transitions)

	return nil
}

// current loads a wager and applies a due expiry before anything else looks
// at it.
func current(tx *bolt.Tx, id string, now time.Time) (wager.Wager, *wager.Transition, error) {
	w, err := wager.Load(tx, id)
	if err != nil {
		return wager.Wager{}, nil, err //nolint:wrapcheck
	}

	w, t := wager.Expire(w, now)
	if t != nil {
		err = wager.Save(tx, w)
	}

	return w, t, err //nolint:wrapcheck
}

type mutation func(tx *bolt.Tx, w wager.Wager, now time.Time) (wager.Wager, []*wager.Transition, error)

func (s *PressService) mutate(id string, fn mutation) (wager.Wager, error) {
	now := s.Clock.Now()

	var result wager.Wager

	err := s.update(func(tx *bolt.Tx) ([]*wager.Transition, error) {
		w, expired, err := current(tx, id, now)
		if err != nil {
			return nil, err
		}

		w, transitions, err := fn(tx, w, now)
		if err != nil {
			return nil, err
		}

		err = wager.Save(tx, w)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		result = w

		return append([]*wager.Transition{expired}, transitions...), nil
	})

	return result, err
}

func created(w wager.Wager) *wager.Transition {
	return &wager.Transition{
		WagerID:      w.ID,
		TournamentID: w.TournamentID,
		To:           wager.StatusPending,
		At:           w.CreatedAt,
	}
}

// Create opens a pending wager. Head-to-head wagers start at the later of
// the two players' current holes, and any other wager without a start hole
// starts there as well.
func (s *PressService) Create(req wager.CreateRequest) (wager.Wager, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return wager.Wager{}, fmt.Errorf("failed to generate wager id: %w", err)
	}

	terms := wager.Terms{
		Amount:       req.Amount,
		Currency:     req.Currency,
		StartHole:    req.StartHole,
		Type:         req.Type,
		WinCondition: req.WinCondition,
	}

	if terms.Currency == "" {
		terms.Currency = s.Games.Currency
	}

	now := s.Clock.Now()

	var result wager.Wager

	err = s.update(func(tx *bolt.Tx) ([]*wager.Transition, error) {
		if terms.Type == wager.TypeHeadToHead || terms.StartHole == 0 {
			hole, err := laterHole(tx, req.RoundID, req.InitiatorID, req.TargetID)
			if err != nil {
				return nil, err
			}

			terms.StartHole = hole
		}

		w, err := wager.New(wager.NewParams{
			ID:           id.String(),
			TournamentID: req.TournamentID,
			RoundID:      req.RoundID,
			InitiatorID:  req.InitiatorID,
			TargetID:     req.TargetID,
			Terms:        terms,
			TTL:          s.Games.WagerTTL,
		}, now)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		err = wager.Save(tx, w)
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		result = w

		return []*wager.Transition{created(w)}, nil
	})
	if err != nil {
		return wager.Wager{}, fmt.Errorf("failed to create wager: %w", err)
	}

	s.Logger.WithFields(logrus.Fields{
		"wager":     result.ID,
		"type":      result.Type,
		"initiator": result.InitiatorID,
		"target":    result.TargetID,
		"amount":    result.Amount.String(),
	}).Info("created wager")

	return result, nil
}

func laterHole(tx *bolt.Tx, roundID, a, b string) (int, error) {
	cardA, err := scorecard.Load(tx, roundID, a)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}

	cardB, err := scorecard.Load(tx, roundID, b)
	if err != nil {
		return 0, err //nolint:wrapcheck
	}

	return wager.HeadToHeadStartHole(cardA, cardB), nil
}

// Get returns a wager, expiring it first if its deadline passed.
func (s *PressService) Get(id string) (wager.Wager, error) {
	return s.mutate(id, func(_ *bolt.Tx, w wager.Wager, _ time.Time) (wager.Wager, []*wager.Transition, error) {
		return w, nil, nil
	})
}

// List returns the wagers of a tournament, optionally narrowed to a round,
// oldest first.
func (s *PressService) List(tournamentID, roundID string) ([]wager.Wager, error) {
	now := s.Clock.Now()

	var result []wager.Wager

	err := s.update(func(tx *bolt.Tx) ([]*wager.Transition, error) {
		wagers, err := wager.Select(tx, func(w wager.Wager) bool {
			return (tournamentID == "" || w.TournamentID == tournamentID) &&
				(roundID == "" || w.RoundID == roundID)
		})
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		transitions := []*wager.Transition{}

		for i, w := range wagers {
			w, t := wager.Expire(w, now)
			if t == nil {
				continue
			}

			err = wager.Save(tx, w)
			if err != nil {
				return nil, err //nolint:wrapcheck
			}

			wagers[i] = w
			transitions = append(transitions, t)
		}

		result = wagers

		return transitions, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list wagers: %w", err)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// ExpireDue expires every pending wager whose deadline passed.
func (s *PressService) ExpireDue() (int, error) {
	now := s.Clock.Now()
	count := 0

	err := s.update(func(tx *bolt.Tx) ([]*wager.Transition, error) {
		due, err := wager.Select(tx, func(w wager.Wager) bool {
			return w.Status == wager.StatusPending && !now.Before(w.ExpiresAt)
		})
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		transitions := make([]*wager.Transition, 0, len(due))

		for _, w := range due {
			w, t := wager.Expire(w, now)

			err = wager.Save(tx, w)
			if err != nil {
				return nil, err //nolint:wrapcheck
			}

			transitions = append(transitions, t)
		}

		count = len(transitions)

		return transitions, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to expire wagers: %w", err)
	}

	return count, nil
}

func (s *PressService) Accept(id, playerID string) (wager.Wager, error) {
	return s.mutate(id, func(_ *bolt.Tx, w wager.Wager, now time.Time) (wager.Wager, []*wager.Transition, error) {
		w, t, err := wager.Accept(w, playerID, now)

		return w, []*wager.Transition{t}, err
	})
}

func (s *PressService) Decline(id, playerID string) (wager.Wager, error) {
	return s.mutate(id, func(_ *bolt.Tx, w wager.Wager, now time.Time) (wager.Wager, []*wager.Transition, error) {
		w, t, err := wager.Decline(w, playerID, now)

		return w, []*wager.Transition{t}, err
	})
}

// Counter declines the wager on behalf of its target and opens a follow-up
// wager with the changed terms. A head-to-head counter starts at the later of
// the two players' current holes.
func (s *PressService) Counter(id string, req wager.CounterRequest) (CounterResult, error) {
	counterID, err := uuid.NewV7()
	if err != nil {
		return CounterResult{}, fmt.Errorf("failed to generate wager id: %w", err)
	}

	var counter wager.Wager

	original, err := s.mutate(id, func(tx *bolt.Tx, w wager.Wager, now time.Time) (wager.Wager, []*wager.Transition, error) {
		terms := wager.Terms{
			Type:         req.Type,
			WinCondition: w.WinCondition,
		}

		if req.Amount != nil {
			terms.Amount = *req.Amount
		}

		if req.WinCondition != nil {
			terms.WinCondition = *req.WinCondition
		}

		if req.Type == wager.TypeHeadToHead || (req.Type == "" && w.Type == wager.TypeHeadToHead) {
			hole, err := laterHole(tx, w.RoundID, w.InitiatorID, w.TargetID)
			if err != nil {
				return w, nil, err
			}

			terms.StartHole = hole
		}

		original, c, t, err := wager.Counter(w, req.PlayerID, counterID.String(), terms, s.Games.WagerTTL, now)
		if err != nil {
			return w, nil, err //nolint:wrapcheck
		}

		err = wager.Save(tx, c)
		if err != nil {
			return w, nil, err //nolint:wrapcheck
		}

		counter = c

		return original, []*wager.Transition{t, created(c)}, nil
	})
	if err != nil {
		return CounterResult{}, err
	}

	return CounterResult{Original: original, Counter: counter}, nil
}

func (s *PressService) Activate(id string) (wager.Wager, error) {
	return s.mutate(id, func(_ *bolt.Tx, w wager.Wager, now time.Time) (wager.Wager, []*wager.Transition, error) {
		w, t, err := wager.Activate(w, now)

		return w, []*wager.Transition{t}, err
	})
}

// ResolveManually settles an active wager with an outcome agreed outside
// the engine, typically a disputed location wager.
func (s *PressService) ResolveManually(id string, req wager.ResolveRequest) (wager.Wager, error) {
	var outcome wager.Outcome

	switch {
	case req.Push && req.WinnerID == "":
		outcome = wager.Tie()
	case !req.Push && req.WinnerID != "":
		outcome = wager.Winner(req.WinnerID)
	default:
		return wager.Wager{}, ErrInvalidOutcome
	}

	return s.mutate(id, func(_ *bolt.Tx, w wager.Wager, now time.Time) (wager.Wager, []*wager.Transition, error) {
		if w.Status != wager.StatusActive && !w.Status.Terminal() {
			return w, nil, fmt.Errorf("%w: %s wager cannot be resolved", wager.ErrInvalidTransition, w.Status)
		}

		w, t, err := wager.ApplyOutcome(w, outcome, now)

		return w, []*wager.Transition{t}, err
	})
}

// Evaluate runs the resolver for an active wager against the stored scores
// or shots. Undecided wagers are returned unchanged.
func (s *PressService) Evaluate(id string) (wager.Wager, error) {
	return s.mutate(id, func(tx *bolt.Tx, w wager.Wager, now time.Time) (wager.Wager, []*wager.Transition, error) {
		if w.Status != wager.StatusActive {
			return w, nil, nil
		}

		if w.Type.IsLocationBased() {
			w, t, _, err := s.settleLocation(tx, w, now)

			return w, []*wager.Transition{t}, err
		}

		w, t, err := settleStrokes(tx, w, now)

		return w, []*wager.Transition{t}, err
	})
}

func settleStrokes(tx *bolt.Tx, w wager.Wager, now time.Time) (wager.Wager, *wager.Transition, error) {
	a, err := scorecard.Load(tx, w.RoundID, w.InitiatorID)
	if err != nil {
		return w, nil, err //nolint:wrapcheck
	}

	b, err := scorecard.Load(tx, w.RoundID, w.TargetID)
	if err != nil {
		return w, nil, err //nolint:wrapcheck
	}

	outcome, err := wager.ResolveWager(w, a, b)
	if err != nil {
		return w, nil, err //nolint:wrapcheck
	}

	return wager.ApplyOutcome(w, outcome, now)
}

func shotPrefix(wagerID string) []byte {
	return common.Key(wagerID, "")
}

func loadShots(tx *bolt.Tx, wagerID string) ([]geo.ShotMeasurement, error) {
	shots := []geo.ShotMeasurement{}

	err := common.ScanJSON(tx, common.ShotsBucket, shotPrefix(wagerID), func(shot geo.ShotMeasurement) error {
		shots = append(shots, shot)

		return nil
	})

	return shots, err //nolint:wrapcheck
}

// settleLocation resolves a location wager from its stored shots. Missing
// reference points and unverified shots flag the wager for manual
// resolution instead of guessing.
func (s *PressService) settleLocation(
	tx *bolt.Tx,
	w wager.Wager,
	now time.Time,
) (wager.Wager, *wager.Transition, ShotResult, error) {
	ref, err := course.LoadReference(tx, w.TournamentID, w.StartHole)
	if errors.Is(err, common.ErrNotFound) {
		ref = geo.HoleReference{TournamentID: w.TournamentID, Hole: w.StartHole}
	} else if err != nil {
		return w, nil, ShotResult{}, err //nolint:wrapcheck
	}

	shots, err := loadShots(tx, w.ID)
	if err != nil {
		return w, nil, ShotResult{}, err
	}

	resolution, err := wager.ResolveWagerLocation(w, shots, ref, s.Games.Thresholds)
	if errors.Is(err, wager.ErrReferencePointMissing) {
		w, _ = wager.MarkDisputed(w)

		return w, nil, ShotResult{Wager: w, Reason: err.Error()}, nil
	}

	if err != nil {
		return w, nil, ShotResult{}, err //nolint:wrapcheck
	}

	if resolution.Disputed {
		w, _ = wager.MarkDisputed(w)

		return w, nil, ShotResult{Wager: w, Resolution: &resolution, Reason: "unverified shot"}, nil
	}

	w, t, err := wager.ApplyOutcome(w, resolution.Outcome, now)
	if err != nil {
		return w, nil, ShotResult{}, err //nolint:wrapcheck
	}

	return w, t, ShotResult{Wager: w, Resolution: &resolution}, nil
}

// RecordShot stores a shot of an active location wager and tries to settle
// the wager with it.
func (s *PressService) RecordShot(id string, req wager.ShotRequest) (ShotResult, error) {
	var result ShotResult

	w, err := s.mutate(id, func(tx *bolt.Tx, w wager.Wager, now time.Time) (wager.Wager, []*wager.Transition, error) {
		if !w.Type.IsLocationBased() {
			return w, nil, fmt.Errorf("%w: %s", wager.ErrNotLocationBased, w.Type)
		}

		if !w.IsParticipant(req.PlayerID) {
			return w, nil, fmt.Errorf("%w: %q", ErrNotParticipant, req.PlayerID)
		}

		if w.Status != wager.StatusActive {
			return w, nil, fmt.Errorf("%w: shots need an active wager, got %s", wager.ErrInvalidTransition, w.Status)
		}

		shot := geo.ShotMeasurement{
			PlayerID:   req.PlayerID,
			Position:   geo.Coordinate{Lat: req.Lat, Lon: req.Lon},
			Accuracy:   req.Accuracy,
			CapturedAt: req.CapturedAt,
			Method:     geo.CaptureMethod(req.Method),
			Grade: geo.Assess(geo.ConfidenceInput{
				Accuracy:       req.Accuracy,
				HasOrientation: req.HasOrientation,
				Stability:      req.Stability,
				SampleCount:    req.SampleCount,
				TargetSamples:  s.Games.Capture.Samples,
			}),
		}

		if shot.CapturedAt.IsZero() {
			shot.CapturedAt = now
		}

		if shot.Method == "" {
			shot.Method = geo.MethodManual
		}

		key := common.Key(w.ID, req.PlayerID, shot.CapturedAt.UTC().Format(time.RFC3339Nano))

		err := common.PutJSON(tx, common.ShotsBucket, key, shot)
		if err != nil {
			return w, nil, err //nolint:wrapcheck
		}

		w, t, shotResult, err := s.settleLocation(tx, w, now)
		result = shotResult

		return w, []*wager.Transition{t}, err
	})
	if err != nil {
		return ShotResult{}, err
	}

	result.Wager = w

	if w.Disputed {
		s.Logger.WithFields(logrus.Fields{
			"wager":  w.ID,
			"player": req.PlayerID,
			"reason": result.Reason,
		}).Warn("location wager needs manual resolution")
	}

	return result, nil
}

// HandleScoreEvent activates the accepted wagers of the scoring player's
// round and settles every active stroke wager the new score decides.
func (s *PressService) HandleScoreEvent(event scorecard.ScoreEvent) error {
	now := s.Clock.Now()

	err := s.update(func(tx *bolt.Tx) ([]*wager.Transition, error) {
		wagers, err := wager.Select(tx, func(w wager.Wager) bool {
			return w.RoundID == event.RoundID && w.IsParticipant(event.PlayerID) &&
				(w.Status == wager.StatusAccepted || w.Status == wager.StatusActive)
		})
		if err != nil {
			return nil, err //nolint:wrapcheck
		}

		transitions := []*wager.Transition{}

		for _, w := range wagers {
			if w.Status == wager.StatusAccepted {
				var t *wager.Transition

				w, t, err = wager.Activate(w, now)
				if err != nil {
					return nil, err //nolint:wrapcheck
				}

				transitions = append(transitions, t)
			}

			if !w.Type.IsLocationBased() {
				var t *wager.Transition

				w, t, err = settleStrokes(tx, w, now)
				if err != nil {
					return nil, err
				}

				transitions = append(transitions, t)
			}

			err = wager.Save(tx, w)
			if err != nil {
				return nil, err //nolint:wrapcheck
			}
		}

		return transitions, nil
	})
	if err != nil {
		return fmt.Errorf("failed to handle score event: %w", err)
	}

	return nil
}
