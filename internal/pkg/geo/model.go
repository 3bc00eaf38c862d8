package geo

import "time"

type Grade string

const (
	GradeHigh   Grade = "high"
	GradeMedium Grade = "medium"
	GradeLow    Grade = "low"
)

type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Sample is a single raw reading from a location provider.
type Sample struct {
	Position   Coordinate `json:"position"`
	Accuracy   float64    `json:"accuracy"`
	CapturedAt time.Time  `json:"captured_at"`
}

type CaptureMethod string

const (
	MethodSingle      CaptureMethod = "single"
	MethodMultiSample CaptureMethod = "multi-sample"
	MethodTriangulate CaptureMethod = "triangulated"
	MethodReference   CaptureMethod = "single-reference"
	MethodBoundary    CaptureMethod = "boundary"
	MethodManual      CaptureMethod = "manual"
)

// ShotMeasurement is the recorded position of a player's shot.
type ShotMeasurement struct {
	PlayerID   string        `json:"player_id"`
	Position   Coordinate    `json:"position"`
	Accuracy   float64       `json:"accuracy"`
	CapturedAt time.Time     `json:"captured_at"`
	Grade      Grade         `json:"grade"`
	Method     CaptureMethod `json:"method"`
}

type ReferenceKind string

const (
	ReferencePin      ReferenceKind = "pin"
	ReferenceTee      ReferenceKind = "tee"
	ReferenceLandmark ReferenceKind = "landmark"
)

// ReferencePoint is a trusted course-fixed coordinate.
type ReferencePoint struct {
	Kind       ReferenceKind `json:"kind"`
	Position   Coordinate    `json:"position"`
	Accuracy   float64       `json:"accuracy"`
	Confidence float64       `json:"confidence"`
}

// Polygon is a closed course boundary. The last vertex connects to the first.
type Polygon []Coordinate

// Estimate is the result of collapsing several samples into one position.
type Estimate struct {
	Position Coordinate `json:"position"`
	Accuracy float64    `json:"accuracy"`
	Kept     []Sample   `json:"-"`
	Rejected int        `json:"rejected"`
}

// Refined is a raw reading corrected against course reference points.
type Refined struct {
	Position       Coordinate    `json:"position"`
	Accuracy       float64       `json:"accuracy"`
	Method         CaptureMethod `json:"method"`
	NearbyPoints   int           `json:"nearby_points"`
	ForceLowGrade  bool          `json:"force_low_grade"`
	ClampedToBound bool          `json:"clamped_to_boundary"`
}

// HoleReference holds the reference points and boundary of one hole.
type HoleReference struct {
	TournamentID string           `json:"tournament_id"`
	Hole         int              `json:"hole"`
	Pin          *ReferencePoint  `json:"pin,omitempty"`
	Tee          *ReferencePoint  `json:"tee,omitempty"`
	Landmarks    []ReferencePoint `json:"landmarks,omitempty"`
	Boundary     Polygon          `json:"boundary,omitempty"`
	GreenRadius  float64          `json:"green_radius,omitempty"`
}

// Points returns every reference point of the hole.
func (r HoleReference) Points() []ReferencePoint {
	points := make([]ReferencePoint, 0, len(r.Landmarks)+2) //nolint:mnd
	if r.Pin != nil {
		points = append(points, *r.Pin)
	}

	if r.Tee != nil {
		points = append(points, *r.Tee)
	}

	return append(points, r.Landmarks...)
}
