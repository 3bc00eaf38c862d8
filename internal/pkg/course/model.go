package course

import (
	"time"

	"github.com/vreid/fairway/internal/pkg/geo"
)

type ReferenceRequest struct {
	Pin         *geo.ReferencePoint  `json:"pin,omitempty"`
	Tee         *geo.ReferencePoint  `json:"tee,omitempty"`
	Landmarks   []geo.ReferencePoint `json:"landmarks,omitempty" validate:"dive"`
	Boundary    geo.Polygon          `json:"boundary,omitempty"`
	GreenRadius float64              `json:"green_radius" validate:"min=0"`
}

type SampleRequest struct {
	Lat        float64   `json:"lat" validate:"min=-90,max=90"`
	Lon        float64   `json:"lon" validate:"min=-180,max=180"`
	Accuracy   float64   `json:"accuracy" validate:"min=0"`
	CapturedAt time.Time `json:"captured_at"`
}

// RefineRequest carries a burst of raw readings taken by a player's device.
type RefineRequest struct {
	PlayerID       string          `json:"player_id" validate:"required"`
	HasOrientation bool            `json:"has_orientation"`
	Samples        []SampleRequest `json:"samples" validate:"required,min=1,dive"`
}

type RefineResponse struct {
	Measurement geo.ShotMeasurement `json:"measurement"`
	Refined     geo.Refined         `json:"refined"`
}
