package geo

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

const (
	EarthRadiusMeters = 6371000.0
	YardsPerMeter     = 1.09361

	DefaultOutlierRadius = 10.0
	DefaultTargetSamples = 10
	DefaultMinSamples    = 3
	DefaultNearbyRadius  = 500.0

	StabilityWindow = 5
)

var ErrInsufficientGPSData = errors.New("insufficient gps data")

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b Coordinate) float64 {
	if a == b {
		return 0
	}

	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

func MetersToYards(meters float64) float64 {
	return meters * YardsPerMeter
}

func mean(samples []Sample) Coordinate {
	var lat, lon float64
	for _, s := range samples {
		lat += s.Position.Lat
		lon += s.Position.Lon
	}

	n := float64(len(samples))

	return Coordinate{Lat: lat / n, Lon: lon / n}
}

// RejectOutliers drops samples farther than radius from the mean of the
// remaining samples. The farthest sample goes first and the mean is
// recomputed after every drop, so one wild reading cannot drag the mean far
// enough to evict good ones.
func RejectOutliers(samples []Sample, radius float64) ([]Sample, int) {
	kept := append([]Sample(nil), samples...)

	for len(kept) > 0 {
		center := mean(kept)

		farthest, farthestDist := -1, radius
		for i, s := range kept {
			d := Haversine(center, s.Position)
			if d > farthestDist {
				farthest, farthestDist = i, d
			}
		}

		if farthest < 0 {
			break
		}

		kept = append(kept[:farthest], kept[farthest+1:]...)
	}

	return kept, len(samples) - len(kept)
}

// EstimatePosition averages the samples that survive outlier rejection.
func EstimatePosition(samples []Sample, radius float64, minSamples int) (Estimate, error) {
	if minSamples < 1 {
		minSamples = 1
	}

	kept, rejected := RejectOutliers(samples, radius)
	if len(kept) < minSamples {
		return Estimate{}, fmt.Errorf("%w: %d of %d samples usable, need %d",
			ErrInsufficientGPSData, len(kept), len(samples), minSamples)
	}

	var accuracy float64
	for _, s := range kept {
		accuracy += s.Accuracy
	}

	return Estimate{
		Position: mean(kept),
		Accuracy: accuracy / float64(len(kept)),
		Kept:     kept,
		Rejected: rejected,
	}, nil
}

// Variance is the mean squared distance in square meters of the samples from
// their mean.
func Variance(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}

	center := mean(samples)

	var sum float64
	for _, s := range samples {
		d := Haversine(center, s.Position)
		sum += d * d
	}

	return sum / float64(len(samples))
}

// Stability scores the spread of the most recent samples in [0,100].
func Stability(samples []Sample) float64 {
	if len(samples) < 2 {
		return 0
	}

	if len(samples) > StabilityWindow {
		samples = samples[len(samples)-StabilityWindow:]
	}

	return 100.0 / (1.0 + Variance(samples)/4.0)
}

type ConfidenceInput struct {
	Accuracy       float64
	HasOrientation bool
	Stability      float64
	SampleCount    int
	TargetSamples  int
}

func accuracyPoints(accuracy float64) float64 {
	switch {
	case accuracy <= 2:
		return 35
	case accuracy <= 5:
		return 28
	case accuracy <= 10:
		return 18
	case accuracy <= 20:
		return 8
	default:
		return 0
	}
}

// ConfidenceScore weighs accuracy (35), orientation (15), stability (25) and
// sample count (25) into a score in [0,100].
func ConfidenceScore(in ConfidenceInput) float64 {
	score := accuracyPoints(in.Accuracy)

	if in.HasOrientation {
		score += 15
	}

	stability := math.Max(0, math.Min(100, in.Stability))
	score += stability * 0.25

	target := in.TargetSamples
	if target <= 0 {
		target = DefaultTargetSamples
	}

	score += math.Min(1, float64(in.SampleCount)/float64(target)) * 25

	return score
}

func GradeFor(score float64) Grade {
	switch {
	case score >= 80:
		return GradeHigh
	case score >= 60:
		return GradeMedium
	default:
		return GradeLow
	}
}

func Assess(in ConfidenceInput) Grade {
	return GradeFor(ConfidenceScore(in))
}

func interpolate(from, to Coordinate, t float64) Coordinate {
	return Coordinate{
		Lat: from.Lat + (to.Lat-from.Lat)*t,
		Lon: from.Lon + (to.Lon-from.Lon)*t,
	}
}

type nearbyPoint struct {
	point    ReferencePoint
	distance float64
}

func nearbyPoints(c Coordinate, refs []ReferencePoint, radius float64) []nearbyPoint {
	result := []nearbyPoint{}

	for _, ref := range refs {
		d := Haversine(c, ref.Position)
		if d <= radius {
			result = append(result, nearbyPoint{point: ref, distance: d})
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].distance < result[j].distance
	})

	return result
}

// Refine corrects a raw reading against nearby reference points. With three
// or more points in range the reading is blended with their weighted centre,
// with one or two it is nudged toward the nearest one, and with none it is
// only clamped to the boundary and graded low.
func Refine(raw Sample, refs []ReferencePoint, boundary Polygon, radius float64) Refined {
	if radius <= 0 {
		radius = DefaultNearbyRadius
	}

	nearby := nearbyPoints(raw.Position, refs, radius)

	switch {
	case len(nearby) >= 3:
		return triangulate(raw, nearby)
	case len(nearby) > 0:
		ref := nearby[0].point
		factor := 0.1 * math.Max(0, math.Min(1, ref.Confidence))

		return Refined{
			Position:     interpolate(raw.Position, ref.Position, factor),
			Accuracy:     raw.Accuracy,
			Method:       MethodReference,
			NearbyPoints: len(nearby),
		}
	}

	result := Refined{
		Position:      raw.Position,
		Accuracy:      raw.Accuracy,
		Method:        MethodBoundary,
		ForceLowGrade: true,
	}

	if len(boundary) >= 3 && !boundary.Contains(raw.Position) {
		result.Position = boundary.Nearest(raw.Position)
		result.ClampedToBound = true
	}

	return result
}

func triangulate(raw Sample, nearby []nearbyPoint) Refined {
	var weightSum, lat, lon, refAccuracy float64

	for _, n := range nearby {
		w := math.Max(0, n.point.Confidence) / math.Max(n.distance, 1)
		weightSum += w
		lat += n.point.Position.Lat * w
		lon += n.point.Position.Lon * w
		refAccuracy += n.point.Accuracy
	}

	refAccuracy /= float64(len(nearby))

	var center Coordinate
	if weightSum > 0 {
		center = Coordinate{Lat: lat / weightSum, Lon: lon / weightSum}
	} else {
		for _, n := range nearby {
			center.Lat += n.point.Position.Lat
			center.Lon += n.point.Position.Lon
		}

		center.Lat /= float64(len(nearby))
		center.Lon /= float64(len(nearby))
	}

	gpsWeight := math.Max(0.5, math.Min(0.9, 0.5+raw.Accuracy/100))

	return Refined{
		Position:     interpolate(center, raw.Position, gpsWeight),
		Accuracy:     gpsWeight*raw.Accuracy + (1-gpsWeight)*refAccuracy,
		Method:       MethodTriangulate,
		NearbyPoints: len(nearby),
	}
}

// Contains reports whether c lies inside the polygon (ray casting).
func (p Polygon) Contains(c Coordinate) bool {
	if len(p) < 3 {
		return false
	}

	inside := false

	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		a, b := p[i], p[j]
		if (a.Lat > c.Lat) != (b.Lat > c.Lat) &&
			c.Lon < (b.Lon-a.Lon)*(c.Lat-a.Lat)/(b.Lat-a.Lat)+a.Lon {
			inside = !inside
		}
	}

	return inside
}

// Nearest returns the polygon vertex closest to c.
func (p Polygon) Nearest(c Coordinate) Coordinate {
	best, bestDist := c, math.Inf(1)

	for _, v := range p {
		if d := Haversine(c, v); d < bestDist {
			best, bestDist = v, d
		}
	}

	return best
}

// Verify reports whether a measurement is trustworthy enough to settle a wager
// automatically.
func Verify(m ShotMeasurement, maxAccuracy float64, boundary Polygon) bool {
	if m.Accuracy < 0 || m.Accuracy > maxAccuracy {
		return false
	}

	if len(boundary) >= 3 && !boundary.Contains(m.Position) {
		return false
	}

	return true
}
