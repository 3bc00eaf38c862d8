package wager

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/vreid/fairway/internal/pkg/scorecard"
)

var (
	ErrInvalidTransition = errors.New("invalid wager transition")
	ErrInvalidWager      = errors.New("invalid wager")
	ErrNotTarget         = errors.New("only the target may respond to a wager")
	ErrInvalidWinner     = errors.New("winner is not a participant of the wager")
)

type NewParams struct {
	ID           string
	TournamentID string
	RoundID      string
	InitiatorID  string
	TargetID     string
	Terms        Terms
	TTL          time.Duration
}

// New creates a pending wager expiring TTL after now.
func New(p NewParams, now time.Time) (Wager, error) {
	if p.InitiatorID == "" || p.TargetID == "" || p.InitiatorID == p.TargetID {
		return Wager{}, fmt.Errorf("%w: needs two distinct players", ErrInvalidWager)
	}

	if !p.Terms.Type.Valid() {
		return Wager{}, fmt.Errorf("%w: %q", ErrUnknownWagerType, p.Terms.Type)
	}

	if !p.Terms.Amount.IsPositive() {
		return Wager{}, fmt.Errorf("%w: amount must be positive", ErrInvalidWager)
	}

	if p.TTL <= 0 {
		return Wager{}, fmt.Errorf("%w: expiry must be after creation", ErrInvalidWager)
	}

	startHole := p.Terms.StartHole
	if p.Terms.Type == TypeTotalStrokes {
		startHole = scorecard.FirstHole
	}

	if startHole < scorecard.FirstHole || startHole > scorecard.LastHole {
		return Wager{}, fmt.Errorf("%w: start hole %d out of range", ErrInvalidWager, startHole)
	}

	return Wager{
		ID:           p.ID,
		TournamentID: p.TournamentID,
		RoundID:      p.RoundID,
		InitiatorID:  p.InitiatorID,
		TargetID:     p.TargetID,
		Amount:       p.Terms.Amount,
		Currency:     p.Terms.Currency,
		StartHole:    startHole,
		Type:         p.Terms.Type,
		WinCondition: p.Terms.WinCondition,
		Status:       StatusPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(p.TTL),
	}, nil
}

// move sets the status to "to" if the current status is one of "from".
func move(w Wager, to Status, now time.Time, from ...Status) (Wager, *Transition, error) {
	if !slices.Contains(from, w.Status) {
		return w, nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, w.Status, to)
	}

	t := &Transition{
		WagerID:      w.ID,
		TournamentID: w.TournamentID,
		From:         w.Status,
		To:           to,
		At:           now,
	}

	w.Status = to

	return w, t, nil
}

func isDue(w Wager, now time.Time) bool {
	return w.Status == StatusPending && !now.Before(w.ExpiresAt)
}

// Expire moves a pending wager past its deadline to expired. Anything else is
// returned unchanged, so observers may call it as often as they like.
func Expire(w Wager, now time.Time) (Wager, *Transition) {
	if !isDue(w, now) {
		return w, nil
	}

	w, t, _ := move(w, StatusExpired, now, StatusPending)

	return w, t
}

func respond(w Wager, playerID string, to Status, now time.Time) (Wager, *Transition, error) {
	if playerID != w.TargetID {
		return w, nil, ErrNotTarget
	}

	if isDue(w, now) {
		return w, nil, fmt.Errorf("%w: wager expired at %s", ErrInvalidTransition, w.ExpiresAt.Format(time.RFC3339))
	}

	w, t, err := move(w, to, now, StatusPending)
	if err != nil {
		return w, nil, err
	}

	w.RespondedAt = &now

	return w, t, nil
}

func Accept(w Wager, playerID string, now time.Time) (Wager, *Transition, error) {
	return respond(w, playerID, StatusAccepted, now)
}

func Decline(w Wager, playerID string, now time.Time) (Wager, *Transition, error) {
	return respond(w, playerID, StatusDeclined, now)
}

// Counter declines the original and returns a new pending wager with the
// roles swapped and the changed terms applied. The original terms are left
// as they were.
func Counter(w Wager, playerID, counterID string, terms Terms, ttl time.Duration, now time.Time) (Wager, Wager, *Transition, error) {
	if terms.Amount.IsZero() {
		terms.Amount = w.Amount
	}

	if terms.Type == "" {
		terms.Type = w.Type
	}

	if terms.StartHole == 0 {
		terms.StartHole = w.StartHole
	}

	if terms.Currency == "" {
		terms.Currency = w.Currency
	}

	counter, err := New(NewParams{
		ID:           counterID,
		TournamentID: w.TournamentID,
		RoundID:      w.RoundID,
		InitiatorID:  w.TargetID,
		TargetID:     w.InitiatorID,
		Terms:        terms,
		TTL:          ttl,
	}, now)
	if err != nil {
		return w, Wager{}, nil, err
	}

	original, t, err := respond(w, playerID, StatusDeclined, now)
	if err != nil {
		return w, Wager{}, nil, err
	}

	counter.CounterOf = original.ID
	counter.IsCounter = true
	t.CounterID = counter.ID

	return original, counter, t, nil
}

func Activate(w Wager, now time.Time) (Wager, *Transition, error) {
	return move(w, StatusActive, now, StatusAccepted)
}

// ApplyOutcome settles an active wager. Terminal wagers and undecided
// outcomes are a no-op, which makes repeated resolution of the same wager
// harmless.
func ApplyOutcome(w Wager, outcome Outcome, now time.Time) (Wager, *Transition, error) {
	if w.Status.Terminal() || !outcome.Definitive() {
		return w, nil, nil
	}

	switch outcome.Kind {
	case OutcomeWinner:
		if !w.IsParticipant(outcome.WinnerID) {
			return w, nil, fmt.Errorf("%w: %q", ErrInvalidWinner, outcome.WinnerID)
		}

		w, t, err := move(w, StatusCompleted, now, StatusActive)
		if err != nil {
			return w, nil, err
		}

		w.WinnerID = outcome.WinnerID
		w.Disputed = false
		w.CompletedAt = &now
		t.WinnerID = outcome.WinnerID

		return w, t, nil
	case OutcomeTie:
		w, t, err := move(w, StatusPushed, now, StatusActive)
		if err != nil {
			return w, nil, err
		}

		w.Disputed = false
		w.CompletedAt = &now

		return w, t, nil
	case OutcomeNotYetResolvable:
	}

	return w, nil, nil
}

// MarkDisputed flags an active wager for manual resolution.
func MarkDisputed(w Wager) (Wager, bool) {
	if w.Status != StatusActive || w.Disputed {
		return w, false
	}

	w.Disputed = true

	return w, true
}
