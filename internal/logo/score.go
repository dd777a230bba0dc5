package logo

import "brandscan/internal/page"

// Scoring weights for vector and raster candidates. Vector scores reward
// wordmark-like shapes: long path data, wide aspect ratio, left-of-page
// placement. Raster scores lean on filename/alt keywords and plausible
// logo dimensions.
const (
	vectorPathLengthDivisor = 50.0
	vectorPathLengthCap     = 30.0
	vectorPathCountWeight   = 3.0
	vectorPathCountCap      = 15.0
	vectorCommandsDivisor   = 5.0
	vectorCommandsCap       = 15.0

	wideAspectBonusLarge = 20.0 // aspect ratio > 2
	wideAspectBonusSmall = 10.0 // aspect ratio > 1.5
	squareAspectPenalty  = 10.0 // 0.8 < aspect ratio < 1.2

	largeAreaBonus  = 10.0 // area > 2000
	mediumAreaBonus = 5.0  // area > 500
	leftEdgeBonus   = 5.0  // x < 300
	complexityBonus = 5.0

	rasterBaseScore       = 20.0
	rasterKeywordBonus    = 30.0
	rasterWideAspectBonus = 15.0 // aspect ratio > 1.5
	rasterMildAspectBonus = 5.0  // aspect ratio > 1.2
	rasterWidthBonus      = 10.0 // 50 < width < 400
	rasterHeaderBonus     = 10.0

	rasterMinWidth  = 30.0
	rasterMinHeight = 15.0

	homeLinkBonus = 25.0

	// An anchor vector above this score is decisive enough that the
	// anchor's raster images are not consulted at all.
	anchorVectorDecisive = 40.0

	unlinkedVectorDamping = 0.7
)

// Tier confidence gates. A tier's best candidate short-circuits the
// waterfall only when its confidence clears the tier gate.
const (
	anchorGate = 0.5
	headerGate = 0.4
	visionGate = 0.3 // applied to the composite visual score, pre-damping
)

func vectorScore(g page.Geometry) float64 {
	score := 0.0
	score += capAt(float64(g.PathLength)/vectorPathLengthDivisor, vectorPathLengthCap)
	score += capAt(float64(g.PathCount)*vectorPathCountWeight, vectorPathCountCap)
	score += capAt(float64(g.PathCommands)/vectorCommandsDivisor, vectorCommandsCap)

	switch {
	case g.AspectRatio > 2:
		score += wideAspectBonusLarge
	case g.AspectRatio > 1.5:
		score += wideAspectBonusSmall
	}
	if g.AspectRatio > 0.8 && g.AspectRatio < 1.2 {
		score -= squareAspectPenalty
	}

	switch {
	case g.Area > 2000:
		score += largeAreaBonus
	case g.Area > 500:
		score += mediumAreaBonus
	}
	if g.X < 300 {
		score += leftEdgeBonus
	}
	if g.IsComplex {
		score += complexityBonus
	}

	if score < 0 {
		return 0
	}
	return score
}

// rasterScore returns 0 for images below the minimum logo dimensions;
// a zero score rejects the candidate outright, bonuses included.
func rasterScore(r page.RasterRecord) float64 {
	if r.Width < rasterMinWidth || r.Height < rasterMinHeight {
		return 0
	}

	score := rasterBaseScore
	if r.LogoKeyword {
		score += rasterKeywordBonus
	}
	switch {
	case r.AspectRatio > 1.5:
		score += rasterWideAspectBonus
	case r.AspectRatio > 1.2:
		score += rasterMildAspectBonus
	}
	if r.Width > 50 && r.Width < 400 {
		score += rasterWidthBonus
	}
	if r.InHeader {
		score += rasterHeaderBonus
	}
	return score
}

func capAt(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
