package outline

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	// FuzzyDedupeThreshold is the normalized edit-similarity above which two
	// same-page headings are considered the same heading.
	FuzzyDedupeThreshold = 0.85

	// TokenOverlapThreshold is the shared-token fraction (relative to the
	// shorter text) above which two headings are too similar to both keep.
	TokenOverlapThreshold = 0.7

	// MaxOutlineEntries caps the outline for pathological documents with
	// thousands of near-duplicate lines.
	MaxOutlineEntries = 100

	// mergeFontTolerancePt bounds the font-size difference for merging
	// adjacent same-page entries.
	mergeFontTolerancePt = 0.5

	minHeadingRunes = 4
)

var (
	noisePageRe  = regexp.MustCompile(`(?i)^page\s*(no\.?|number)?\s*[:\-]?\s*\d+$`)
	noiseLabelRe = regexp.MustCompile(`(?i)^(name|date|roll\s*no|submitted\s*by|signature|table\s*\d+)\b`)
	noiseDigitRe = regexp.MustCompile(`^[\d\s:.,\-]+$`)
)

// mergeAdjacent collapses consecutive entries on the same page whose font
// sizes are nearly equal and whose normalized text matches exactly, keeping
// the higher-confidence one. Glyph-run splitting often emits the same visual
// heading twice.
func mergeAdjacent(entries []Entry) []Entry {
	if len(entries) < 2 {
		return entries
	}
	var cleaned []Entry
	last := entries[0]
	for _, cur := range entries[1:] {
		samePage := last.Page == cur.Page
		similar := math.Abs(last.FontSize-cur.FontSize) < mergeFontTolerancePt &&
			normalizedEqual(last.Text, cur.Text)
		if samePage && similar {
			if cur.Confidence > last.Confidence {
				last = cur
			}
			continue
		}
		cleaned = append(cleaned, last)
		last = cur
	}
	cleaned = append(cleaned, last)
	return cleaned
}

func normalizedEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// collapseRepeatedWords removes immediately-repeated identical words, a
// stutter artifact of duplicated glyph runs ("Results Results" -> "Results").
func collapseRepeatedWords(text string) string {
	words := strings.Fields(text)
	var out []string
	for i, w := range words {
		if i == 0 || w != words[i-1] {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

// reduceNoise drops short, numeric, page-number-shaped and form-field
// headings, then removes any heading whose edit similarity to an
// already-kept heading on the same page meets the fuzzy threshold.
func reduceNoise(entries []Entry, fuzzyThreshold float64) []Entry {
	var kept []Entry
	for _, e := range entries {
		e.Text = collapseRepeatedWords(e.Text)
		if isNoiseHeading(e.Text) {
			continue
		}
		dup := false
		for _, prev := range kept {
			if prev.Page == e.Page && editSimilarity(e.Text, prev.Text) >= fuzzyThreshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func isNoiseHeading(text string) bool {
	t := strings.TrimSpace(text)
	if utf8.RuneCountInString(t) < minHeadingRunes {
		return true
	}
	if noisePageRe.MatchString(t) {
		return true
	}
	if noiseLabelRe.MatchString(t) {
		return true
	}
	if noiseDigitRe.MatchString(t) {
		return true
	}
	return false
}

// editSimilarity is 1 - levenshtein(a,b)/max(len), case-insensitive, in [0,1].
func editSimilarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// diversityCap keeps a candidate only if it is not similar to any
// already-kept candidate, stopping at the cap. Entries arrive in (page,
// descending size) order so higher-ranked headings win.
func diversityCap(entries []Entry, maxEntries int) []Entry {
	diverse := []Entry{}
	for _, e := range entries {
		similar := false
		for _, sel := range diverse {
			if areSimilarHeadings(e.Text, sel.Text) {
				similar = true
				break
			}
		}
		if !similar {
			diverse = append(diverse, e)
		}
		if len(diverse) >= maxEntries {
			break
		}
	}
	return diverse
}

// areSimilarHeadings: substring containment either direction, or token
// overlap above the threshold relative to the shorter text.
func areSimilarHeadings(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	aw := strings.Fields(a)
	bw := strings.Fields(b)
	set := make(map[string]bool, len(aw))
	for _, w := range aw {
		set[w] = true
	}
	common := 0
	seen := make(map[string]bool, len(bw))
	for _, w := range bw {
		if set[w] && !seen[w] {
			common++
			seen[w] = true
		}
	}
	shorter := len(aw)
	if len(bw) < shorter {
		shorter = len(bw)
	}
	if shorter < 1 {
		shorter = 1
	}
	return float64(common)/float64(shorter) > TokenOverlapThreshold
}
