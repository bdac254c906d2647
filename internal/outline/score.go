package outline

// Scoring weights. Size dominates because it is the most reliable single
// signal; numbering, position and centering corroborate. The ceiling bounds
// the raw score so confidence stays in [0,1].
const (
	TopOfPageFrac = 0.25 // relY below this counts as top-of-page

	weightSize     = 5.0
	weightBold     = 2.0
	weightNumbered = 1.0
	weightTop      = 1.0
	weightCentered = 1.0
	scoreCeiling   = 10.0
)

// scoreHeading computes the bounded confidence for one candidate line.
func scoreHeading(ln TextLine) float64 {
	raw := ln.SizeNorm * weightSize
	if ln.Bold {
		raw += weightBold
	}
	if IsNumberedHeading(ln.Text) {
		raw += weightNumbered
	}
	if ln.RelY < TopOfPageFrac {
		raw += weightTop
	}
	if ln.Centered {
		raw += weightCentered
	}
	return clamp01(raw / scoreCeiling)
}

// assignLevel decides H1/H2/H3 for a line. Explicit decimal numbering is a
// stronger signal than visual size and always wins: "2.1 Methods" is H2 even
// when its font lands in the H1 cluster.
func assignLevel(ln TextLine, levels fontLevelMap, useFontLevels bool) Level {
	switch depth := NumberingDepth(ln.Text); {
	case depth == 1:
		return LevelH1
	case depth == 2:
		return LevelH2
	case depth >= 3:
		return LevelH3
	}
	if useFontLevels {
		if lvl, ok := levels.nearest(ln.FontSize); ok {
			return lvl
		}
	}
	return LevelH1
}
