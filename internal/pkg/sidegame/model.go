package sidegame

import "github.com/shopspring/decimal"

// HoleScore is one player's score on one hole. Skins and wolf expect net
// strokes, snake expects gross strokes.
type HoleScore struct {
	PlayerID string `json:"player_id"`
	Strokes  int    `json:"strokes"`
}

type SkinResult struct {
	Hole        int             `json:"hole"`
	WinnerID    string          `json:"winner_id,omitempty"`
	PotAmount   decimal.Decimal `json:"pot_amount"`
	IsCarryover bool            `json:"is_carryover"`
	TiedPlayers []string        `json:"tied_players,omitempty"`
}

type SkinsHole struct {
	Hole   int
	Scores []HoleScore
}

type SkinsSummary struct {
	Results   []SkinResult               `json:"results"`
	Payouts   map[string]decimal.Decimal `json:"payouts"`
	Unclaimed decimal.Decimal            `json:"unclaimed"`
}

type WolfConfig struct {
	BaseAmount         decimal.Decimal `json:"base_amount" yaml:"base_amount"`
	LoneWolfMultiplier decimal.Decimal `json:"lone_wolf_multiplier" yaml:"lone_wolf_multiplier"`
}

type WolfOutcome string

const (
	WolfWins     WolfOutcome = "wolf"
	OpponentsWin WolfOutcome = "opponents"
	WolfHoleTied WolfOutcome = "tie"
)

type WolfResult struct {
	Hole           int                        `json:"hole"`
	WolfID         string                     `json:"wolf_id"`
	PartnerID      string                     `json:"partner_id,omitempty"`
	WolfTeamScore  int                        `json:"wolf_team_score"`
	OpponentsScore int                        `json:"opponents_score"`
	Result         WolfOutcome                `json:"result"`
	Amount         decimal.Decimal            `json:"amount"`
	Payouts        map[string]decimal.Decimal `json:"payouts"`
}

func (r WolfResult) Lone() bool {
	return r.PartnerID == ""
}

type WolfHole struct {
	Hole      int
	PartnerID string
	Scores    []HoleScore
}

type WolfSummary struct {
	Results []WolfResult               `json:"results"`
	Payouts map[string]decimal.Decimal `json:"payouts"`
}

type SnakeScope struct {
	Name      string `json:"name" yaml:"name"`
	FirstHole int    `json:"first_hole" yaml:"first_hole"`
	LastHole  int    `json:"last_hole" yaml:"last_hole"`
}

var (
	FrontNine = SnakeScope{Name: "front-nine", FirstHole: 1, LastHole: 9}
	BackNine  = SnakeScope{Name: "back-nine", FirstHole: 10, LastHole: 18}
	Overall   = SnakeScope{Name: "overall", FirstHole: 1, LastHole: 18}
)

func (s SnakeScope) Includes(hole int) bool {
	return hole >= s.FirstHole && hole <= s.LastHole
}

// SnakeState is the running state of one snake instance.
type SnakeState struct {
	Scope    SnakeScope `json:"scope"`
	HolderID string     `json:"holder_id,omitempty"`
	LastHole int        `json:"last_hole"`
	Final    bool       `json:"final"`
}
