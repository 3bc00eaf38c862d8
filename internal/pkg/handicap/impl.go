package handicap

import "math"

const RegulationHoles = 18

// AdjustedScore reduces grossTotal by the share of handicapIndex earned over
// holesPlayed of totalHoles. The share is rounded half away from zero.
func AdjustedScore(grossTotal int, handicapIndex float64, holesPlayed, totalHoles int) int {
	if holesPlayed == 0 || totalHoles <= 0 {
		return grossTotal
	}

	strokes := math.Round(handicapIndex * float64(holesPlayed) / float64(totalHoles))

	return grossTotal - int(strokes)
}

// NetHoleScore is the adjusted score of a single hole of a regulation round.
func NetHoleScore(gross int, handicapIndex float64) int {
	return AdjustedScore(gross, handicapIndex, 1, RegulationHoles)
}
