package settlement

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vreid/fairway/internal/pkg/config"
	"github.com/vreid/fairway/internal/pkg/handicap"
	"github.com/vreid/fairway/internal/pkg/scorecard"
	"github.com/vreid/fairway/internal/pkg/sidegame"
	"github.com/vreid/fairway/internal/pkg/wager"
)

var (
	ErrUnknownSnakeScope = errors.New("unknown snake scope")
	ErrWolfNotPlayed     = errors.New("tournament does not play wolf")
	ErrUnknownPlayer     = errors.New("player is not in the tournament")
)

type SkinsGame struct {
	BasePot decimal.Decimal `json:"base_pot"`
}

// WolfGame holds the wolf rotation and the partner picked on every hole
// played so far. An empty partner means the wolf went lone.
type WolfGame struct {
	Rotation           []string        `json:"rotation"`
	BaseAmount         decimal.Decimal `json:"base_amount"`
	LoneWolfMultiplier decimal.Decimal `json:"lone_wolf_multiplier"`
	Partners           map[int]string  `json:"partners"`
}

type SnakeGame struct {
	Scopes []string        `json:"scopes"`
	Amount decimal.Decimal `json:"amount"`
}

// Tournament is one round's primary game and the side games played with it.
// Skins and wolf use net hole scores when Net is set.
type Tournament struct {
	ID      string   `json:"id"`
	RoundID string   `json:"round_id"`
	Players []string `json:"players"`
	Format  Format   `json:"format"`
	Net     bool     `json:"net"`

	Skins *SkinsGame `json:"skins,omitempty"`
	Wolf  *WolfGame  `json:"wolf,omitempty"`
	Snake *SnakeGame `json:"snake,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

type TournamentRequest struct {
	RoundID string   `json:"round_id" validate:"required"`
	Players []string `json:"players" validate:"min=2,unique,dive,required"`
	Format  Format   `json:"format" validate:"omitempty,oneof=stroke points"`
	Net     bool     `json:"net"`

	Skins *SkinsGame `json:"skins,omitempty"`
	Wolf  *WolfGame  `json:"wolf,omitempty"`
	Snake *SnakeGame `json:"snake,omitempty"`
}

type PartnerRequest struct {
	PartnerID string `json:"partner_id"`
}

// Report is the settlement of a tournament with the detail of every game.
type Report struct {
	TournamentID string                 `json:"tournament_id"`
	RoundID      string                 `json:"round_id"`
	Settlements  []Settlement           `json:"settlements"`
	Skins        *sidegame.SkinsSummary `json:"skins,omitempty"`
	Wolf         *sidegame.WolfSummary  `json:"wolf,omitempty"`
	Snakes       []sidegame.SnakeState  `json:"snakes,omitempty"`
	Wagers       int                    `json:"wagers"`
}

func snakeScope(name string) (sidegame.SnakeScope, error) {
	for _, scope := range []sidegame.SnakeScope{sidegame.FrontNine, sidegame.BackNine, sidegame.Overall} {
		if scope.Name == name {
			return scope, nil
		}
	}

	return sidegame.SnakeScope{}, fmt.Errorf("%w: %q", ErrUnknownSnakeScope, name)
}

// NewTournament builds a tournament from req, filling unset stakes from
// games.
func NewTournament(id string, req TournamentRequest, games config.Games, now time.Time) (Tournament, error) {
	t := Tournament{
		ID:        id,
		RoundID:   req.RoundID,
		Players:   req.Players,
		Format:    req.Format,
		Net:       req.Net,
		UpdatedAt: now,
	}

	if t.Format == "" {
		t.Format = FormatStroke
	}

	if req.Skins != nil {
		skins := *req.Skins
		if skins.BasePot.IsZero() {
			skins.BasePot = games.Skins.BasePot
		}

		t.Skins = &skins
	}

	if req.Wolf != nil {
		wolf := *req.Wolf
		if len(wolf.Rotation) == 0 {
			wolf.Rotation = req.Players
		}

		for _, id := range wolf.Rotation {
			if !t.HasPlayer(id) {
				return Tournament{}, fmt.Errorf("%w: %q in wolf rotation", ErrUnknownPlayer, id)
			}
		}

		if wolf.BaseAmount.IsZero() {
			wolf.BaseAmount = games.Wolf.BaseAmount
		}

		if wolf.LoneWolfMultiplier.IsZero() {
			wolf.LoneWolfMultiplier = games.Wolf.LoneWolfMultiplier
		}

		if wolf.Partners == nil {
			wolf.Partners = map[int]string{}
		}

		t.Wolf = &wolf
	}

	if req.Snake != nil {
		snake := *req.Snake
		if len(snake.Scopes) == 0 {
			snake.Scopes = []string{sidegame.Overall.Name}
		}

		for _, name := range snake.Scopes {
			if _, err := snakeScope(name); err != nil {
				return Tournament{}, err
			}
		}

		if snake.Amount.IsZero() {
			snake.Amount = games.Snake.Amount
		}

		t.Snake = &snake
	}

	return t, nil
}

func (t Tournament) HasPlayer(id string) bool {
	return slices.Contains(t.Players, id)
}

// SetPartner records the wolf's choice on hole. The partner must be another
// player of the rotation; an empty partner means lone wolf.
func (t Tournament) SetPartner(hole int, partnerID string) (Tournament, error) {
	if t.Wolf == nil {
		return t, ErrWolfNotPlayed
	}

	if hole < scorecard.FirstHole || hole > scorecard.LastHole {
		return t, fmt.Errorf("%w: hole %d", scorecard.ErrInvalidHole, hole)
	}

	wolfID, err := sidegame.WolfForHole(t.Wolf.Rotation, hole)
	if err != nil {
		return t, err //nolint:wrapcheck
	}

	if partnerID == wolfID {
		return t, fmt.Errorf("%w: the wolf cannot pick themselves", sidegame.ErrInvalidPartner)
	}

	if partnerID != "" && !slices.Contains(t.Wolf.Rotation, partnerID) {
		return t, fmt.Errorf("%w: %q", sidegame.ErrInvalidPartner, partnerID)
	}

	partners := make(map[int]string, len(t.Wolf.Partners)+1)
	for h, p := range t.Wolf.Partners {
		partners[h] = p
	}

	partners[hole] = partnerID

	wolf := *t.Wolf
	wolf.Partners = partners
	t.Wolf = &wolf

	return t, nil
}

type field struct {
	cards map[string]scorecard.Scorecard
}

func newField(players []string, cards []scorecard.Scorecard) field {
	f := field{cards: map[string]scorecard.Scorecard{}}

	for _, card := range cards {
		if slices.Contains(players, card.PlayerID) {
			f.cards[card.PlayerID] = card
		}
	}

	return f
}

// hole returns the scores of players on hole, or false if any of them has
// not recorded it yet.
func (f field) hole(players []string, hole int, net bool) ([]sidegame.HoleScore, bool) {
	scores := make([]sidegame.HoleScore, 0, len(players))

	for _, id := range players {
		card := f.cards[id]

		strokes, ok := card.Strokes(hole)
		if !ok {
			return nil, false
		}

		if net {
			strokes = handicap.NetHoleScore(strokes, card.HandicapIndex)
		}

		scores = append(scores, sidegame.HoleScore{PlayerID: id, Strokes: strokes})
	}

	return scores, true
}

func (f field) totals(players []string, net bool) map[string]int {
	totals := map[string]int{}

	for _, id := range players {
		card, ok := f.cards[id]
		if !ok || len(card.Holes) == 0 {
			continue
		}

		total := card.Gross(scorecard.FirstHole, scorecard.LastHole)
		if net {
			total = handicap.AdjustedScore(total, card.HandicapIndex, len(card.Holes), handicap.RegulationHoles)
		}

		totals[id] = total
	}

	return totals
}

// Compute settles a tournament from its round's scorecards and wagers. Side
// games only consider holes every one of their players has completed, in
// order, up to the first gap.
func Compute(t Tournament, cards []scorecard.Scorecard, wagers []wager.Wager) (Report, error) {
	f := newField(t.Players, cards)

	report := Report{TournamentID: t.ID, RoundID: t.RoundID}
	in := Input{
		StrokeTotals: f.totals(t.Players, t.Net),
		Format:       t.Format,
		Snake:        map[string]decimal.Decimal{},
	}

	if t.Skins != nil {
		holes := []sidegame.SkinsHole{}

		for hole := scorecard.FirstHole; hole <= scorecard.LastHole; hole++ {
			scores, ok := f.hole(t.Players, hole, t.Net)
			if !ok {
				break
			}

			holes = append(holes, sidegame.SkinsHole{Hole: hole, Scores: scores})
		}

		summary := sidegame.PlaySkins(holes, t.Players, t.Skins.BasePot)
		report.Skins = &summary
		in.Skins = summary.Payouts
	}

	if t.Wolf != nil {
		holes := []sidegame.WolfHole{}

		for hole := scorecard.FirstHole; hole <= scorecard.LastHole; hole++ {
			partnerID, picked := t.Wolf.Partners[hole]

			scores, ok := f.hole(t.Wolf.Rotation, hole, t.Net)
			if !ok || !picked {
				break
			}

			holes = append(holes, sidegame.WolfHole{Hole: hole, PartnerID: partnerID, Scores: scores})
		}

		summary, err := sidegame.PlayWolf(t.Wolf.Rotation, holes, sidegame.WolfConfig{
			BaseAmount:         t.Wolf.BaseAmount,
			LoneWolfMultiplier: t.Wolf.LoneWolfMultiplier,
		})
		if err != nil {
			return Report{}, fmt.Errorf("failed to play wolf: %w", err)
		}

		report.Wolf = &summary
		in.Wolf = summary.Payouts
	}

	if t.Snake != nil {
		for _, name := range t.Snake.Scopes {
			scope, err := snakeScope(name)
			if err != nil {
				return Report{}, err
			}

			holes := map[int][]sidegame.HoleScore{}

			for hole := scope.FirstHole; hole <= scope.LastHole; hole++ {
				scores, ok := f.hole(t.Players, hole, false)
				if !ok {
					break
				}

				holes[hole] = scores
			}

			state := sidegame.PlaySnake(scope, holes)
			report.Snakes = append(report.Snakes, state)

			for id, v := range sidegame.SettleSnake(state, t.Players, t.Snake.Amount) {
				in.Snake[id] = in.Snake[id].Add(v)
			}
		}
	}

	in.Press = PressPayouts(wagers)
	report.Settlements = Aggregate(in)

	for _, w := range wagers {
		if w.Status == wager.StatusCompleted || w.Status == wager.StatusPushed {
			report.Wagers++
		}
	}

	return report, nil
}
