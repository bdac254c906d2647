package outline

import (
	"math"
	"sort"
)

// FontCollapsePt is the span within which two rounded font sizes are treated
// as the same visual level.
const FontCollapsePt = 0.6

// numFontLevels caps the calibration at H1..H3.
const numFontLevels = 3

// fontLevelMap maps a rounded font size to its calibrated heading level.
type fontLevelMap map[float64]Level

// buildFontLevels clusters the font sizes of candidate-eligible lines into up
// to three levels. The calibration is per-document: absolute thresholds do
// not transfer between PDFs, but relative size rank does.
func buildFontLevels(lines []TextLine) fontLevelMap {
	counts := make(map[float64]int)
	for _, ln := range lines {
		if IsHeadingCandidate(ln.Text) {
			counts[round1(ln.FontSize)]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	// Sizes seen at least twice; if nothing repeats, keep them all.
	var sizes []float64
	for s, c := range counts {
		if c >= 2 {
			sizes = append(sizes, s)
		}
	}
	if len(sizes) == 0 {
		for s := range counts {
			sizes = append(sizes, s)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))

	// Collapse near-equal sizes, keeping the larger of each cluster.
	var collapsed []float64
	for _, s := range sizes {
		if len(collapsed) == 0 || math.Abs(s-collapsed[len(collapsed)-1]) >= FontCollapsePt {
			collapsed = append(collapsed, s)
		}
	}

	names := []Level{LevelH1, LevelH2, LevelH3}
	m := make(fontLevelMap)
	for i, s := range collapsed {
		if i >= numFontLevels {
			break
		}
		m[s] = names[i]
	}
	return m
}

// nearest returns the level whose cluster size is closest to the given font
// size, and false when the map is empty.
func (m fontLevelMap) nearest(fontSize float64) (Level, bool) {
	if len(m) == 0 {
		return "", false
	}
	best := Level("")
	bestDist := math.MaxFloat64
	// Iterate in descending size order so equal distances resolve to the
	// larger cluster deterministically.
	var sizes []float64
	for s := range m {
		sizes = append(sizes, s)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))
	for _, s := range sizes {
		if d := math.Abs(fontSize - s); d < bestDist {
			bestDist = d
			best = m[s]
		}
	}
	return best, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
