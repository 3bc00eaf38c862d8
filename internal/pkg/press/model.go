package press

import (
	"github.com/vreid/fairway/internal/pkg/wager"
)

// ShotResult is the state of a location wager after a shot was recorded.
type ShotResult struct {
	Wager      wager.Wager           `json:"wager"`
	Resolution *wager.LocationResult `json:"resolution,omitempty"`
	Reason     string                `json:"reason,omitempty"`
}

// CounterResult holds the declined original and the follow-up wager.
type CounterResult struct {
	Original wager.Wager `json:"original"`
	Counter  wager.Wager `json:"counter"`
}
