package outline

import (
	"strings"
	"unicode/utf8"
)

// Title scoring weights. Centering matters more for titles than for headings;
// very short and very long lines are penalized.
const (
	titleMinLen = 3
	titleMaxLen = 150

	titleWeightSize     = 5.0
	titleWeightBold     = 2.0
	titleWeightCentered = 3.0
	titleWeightTop      = 1.0
	titleShortPenalty   = 1.0 // length < 10
	titleLongPenalty    = 2.0 // length > 80
)

// ExtractTitle picks the document title from the first retained page's lines.
// It is independent of the heading pipeline: candidates are style-scored, and
// when nothing qualifies the metadata title, then the first line, are the
// fallbacks. Returns "" only for documents with no usable line at all.
func ExtractTitle(pageLines []TextLine, metaTitle string) string {
	bestScore := 0.0
	bestText := ""
	found := false

	for _, ln := range pageLines {
		text := ln.Text
		if looksLikeURL(text) || mostlyNonLetters(text) {
			continue
		}
		n := utf8.RuneCountInString(text)
		if n < titleMinLen || n > titleMaxLen {
			continue
		}
		if countPunct(text) > 2 {
			continue
		}

		score := ln.SizeNorm * titleWeightSize
		if ln.Bold {
			score += titleWeightBold
		}
		if ln.Centered {
			score += titleWeightCentered
		}
		if ln.RelY < TopOfPageFrac {
			score += titleWeightTop
		}
		if n < 10 {
			score -= titleShortPenalty
		}
		if n > 80 {
			score -= titleLongPenalty
		}

		if !found || score > bestScore {
			found = true
			bestScore = score
			bestText = text
		}
	}
	if found {
		return bestText
	}

	if mt := strings.TrimSpace(metaTitle); utf8.RuneCountInString(mt) >= titleMinLen {
		return mt
	}
	if len(pageLines) > 0 {
		return pageLines[0].Text
	}
	return ""
}
