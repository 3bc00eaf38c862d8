package wager

import (
	"time"

	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeThisHole       Type = "this-hole"
	TypeHeadToHead     Type = "head-to-head"
	TypeRemainingHoles Type = "remaining-holes"
	TypeTotalStrokes   Type = "total-strokes"
	TypeClosestToPin   Type = "closest-to-pin"
	TypeLongestDrive   Type = "longest-drive"
	TypeFirstToGreen   Type = "first-to-green"
)

// IsLocationBased reports whether the type settles on recorded shot
// positions instead of strokes.
func (t Type) IsLocationBased() bool {
	switch t {
	case TypeClosestToPin, TypeLongestDrive, TypeFirstToGreen:
		return true
	case TypeThisHole, TypeHeadToHead, TypeRemainingHoles, TypeTotalStrokes:
		return false
	}

	return false
}

func (t Type) Valid() bool {
	switch t {
	case TypeThisHole, TypeHeadToHead, TypeRemainingHoles, TypeTotalStrokes,
		TypeClosestToPin, TypeLongestDrive, TypeFirstToGreen:
		return true
	}

	return false
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusExpired   Status = "expired"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusPushed    Status = "pushed"
)

func (s Status) Terminal() bool {
	switch s {
	case StatusDeclined, StatusExpired, StatusCompleted, StatusPushed:
		return true
	case StatusPending, StatusAccepted, StatusActive:
		return false
	}

	return false
}

// Wager is a press between two players of a tournament round.
type Wager struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournament_id"`
	RoundID      string `json:"round_id"`

	InitiatorID string `json:"initiator_id"`
	TargetID    string `json:"target_id"`

	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	StartHole    int             `json:"start_hole"`
	Type         Type            `json:"type"`
	WinCondition string          `json:"win_condition,omitempty"`

	Status   Status `json:"status"`
	WinnerID string `json:"winner_id,omitempty"`
	Disputed bool   `json:"disputed,omitempty"`

	CounterOf string `json:"counter_of,omitempty"`
	IsCounter bool   `json:"is_counter,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

func (w Wager) IsParticipant(playerID string) bool {
	return w.InitiatorID == playerID || w.TargetID == playerID
}

func (w Wager) Opponent(playerID string) string {
	switch playerID {
	case w.InitiatorID:
		return w.TargetID
	case w.TargetID:
		return w.InitiatorID
	}

	return ""
}

// Transition is the fact that a wager moved from one status to another.
type Transition struct {
	WagerID      string    `json:"wager_id"`
	TournamentID string    `json:"tournament_id"`
	From         Status    `json:"from"`
	To           Status    `json:"to"`
	WinnerID     string    `json:"winner_id,omitempty"`
	CounterID    string    `json:"counter_id,omitempty"`
	At           time.Time `json:"at"`
}

type OutcomeKind string

const (
	OutcomeWinner           OutcomeKind = "winner"
	OutcomeTie              OutcomeKind = "tie"
	OutcomeNotYetResolvable OutcomeKind = "not-yet-resolvable"
)

// Outcome is the resolver's verdict. WinnerID is set only for OutcomeWinner.
type Outcome struct {
	Kind     OutcomeKind `json:"kind"`
	WinnerID string      `json:"winner_id,omitempty"`
}

func Winner(playerID string) Outcome {
	return Outcome{Kind: OutcomeWinner, WinnerID: playerID}
}

func Tie() Outcome {
	return Outcome{Kind: OutcomeTie}
}

func NotYetResolvable() Outcome {
	return Outcome{Kind: OutcomeNotYetResolvable}
}

func (o Outcome) Definitive() bool {
	return o.Kind == OutcomeWinner || o.Kind == OutcomeTie
}

// Terms are the negotiable parts of a wager, used to create one or to counter.
type Terms struct {
	Amount       decimal.Decimal
	Currency     string
	StartHole    int
	Type         Type
	WinCondition string
}

type CreateRequest struct {
	TournamentID string `json:"tournament_id" validate:"required"`
	RoundID      string `json:"round_id" validate:"required"`
	InitiatorID  string `json:"initiator_id" validate:"required"`
	TargetID     string `json:"target_id" validate:"required,nefield=InitiatorID"`

	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency" validate:"omitempty,len=3"`
	StartHole    int             `json:"start_hole" validate:"omitempty,min=1,max=18"`
	Type         Type            `json:"type" validate:"required"`
	WinCondition string          `json:"win_condition" validate:"max=280"`
}

type RespondRequest struct {
	PlayerID string `json:"player_id" validate:"required"`
}

type CounterRequest struct {
	PlayerID string `json:"player_id" validate:"required"`

	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Type         Type             `json:"type,omitempty"`
	WinCondition *string          `json:"win_condition,omitempty"`
}

type ResolveRequest struct {
	WinnerID string `json:"winner_id"`
	Push     bool   `json:"push"`
}

type ShotRequest struct {
	PlayerID   string    `json:"player_id" validate:"required"`
	Lat        float64   `json:"lat" validate:"min=-90,max=90"`
	Lon        float64   `json:"lon" validate:"min=-180,max=180"`
	Accuracy   float64   `json:"accuracy" validate:"min=0"`
	CapturedAt time.Time `json:"captured_at"`
	Method     string    `json:"method"`

	SampleCount    int     `json:"sample_count" validate:"min=0"`
	Stability      float64 `json:"stability" validate:"min=0,max=100"`
	HasOrientation bool    `json:"has_orientation"`
}
