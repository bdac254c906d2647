package outline

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Structural thresholds for the candidate gate and the body filters. All of
// these are calibration constants carried over unchanged from production use.
const (
	MaxHeadingChars    = 100 // hard upper bound on heading length
	MaxHeadingWords    = 12  // allow short multi-word headings
	ParaWordMax        = 10  // >10 words means likely paragraph unless numbered
	ParaCJKMax         = 25  // long contiguous CJK run means paragraph
	MaxPunct           = 3
	LowercaseBodyWords = 5   // mostly lowercase and >5 words means body text
	HeaderRepeatRatio  = 0.2 // fraction of retained pages a header may repeat on
)

const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var (
	wsRe       = regexp.MustCompile(`\s+`)
	urlRe      = regexp.MustCompile(`(?i)(https?://|www\.)`)
	numberedRe = regexp.MustCompile(`(?i)^(\d+(\.\d+){0,3}[.)\s-]*|[IVXLCDM]+\.?\s+|(Chapter|Section)\s+\d+(\.\d+)*)`)
	depthRe    = regexp.MustCompile(`^\s*(\d+(?:\.\d+){0,5})\b`)
	pageNumRe  = regexp.MustCompile(`(?i)^(page\s*no\.?|page\s*:?|p\.?)\s*[\divxlcdm]+`)
	codeRe     = regexp.MustCompile(`^(import|from|def|class)\b`)
	bulletRe   = regexp.MustCompile(`^[\-\*\x{2022}\x{25CF}\x{25E6}]\s+`)
	cjkRe      = regexp.MustCompile(`[\x{4E00}-\x{9FFF}\x{3040}-\x{30FF}\x{31F0}-\x{31FF}]`)
)

// boilerplateHeadings are generic headings that carry no document structure.
// Matched case-insensitively after trimming surrounding punctuation.
var boilerplateHeadings = map[string]bool{
	"about us":            true,
	"disclaimer":          true,
	"legal disclaimer":    true,
	"terms of service":    true,
	"copyright":           true,
	"privacy policy":      true,
	"references":          true,
	"appendix":            true,
	"index":               true,
	"acknowledgments":     true,
	"acknowledgements":    true,
	"glossary":            true,
	"contact information": true,
	"license":             true,
	"site map":            true,
}

// CleanText collapses runs of whitespace into single spaces and applies NFC
// normalization so composed and decomposed glyph sequences compare equal
// downstream.
func CleanText(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(norm.NFC.String(s), " "))
}

// IsHeadingCandidate is the structural admissibility gate. It is style-blind
// on purpose: it looks only at the text, so it can run (and be tested) before
// any font metadata is available.
func IsHeadingCandidate(text string) bool {
	t := strings.TrimSpace(text)
	if len(t) > MaxHeadingChars {
		return false
	}
	words := strings.Fields(t)
	if len(words) > MaxHeadingWords {
		return false
	}
	if countPunct(t) > MaxPunct || strings.Count(t, ".") > 1 || strings.HasSuffix(t, ".") {
		return false
	}
	if len(words) < 2 && !IsNumberedHeading(t) {
		return false
	}
	if isAllDigits(t) {
		return false
	}
	return true
}

// passesNoiseFilters applies the body/noise exclusions that run alongside the
// structural gate: URLs, page numbers, code, bullets, non-alphabetic noise,
// paragraphs, lowercase body text and boilerplate headings.
func passesNoiseFilters(text string) bool {
	switch {
	case looksLikeURL(text),
		looksLikePageNumber(text),
		looksLikeCode(text),
		looksLikeBullet(text),
		mostlyNonLetters(text),
		looksLikeParagraph(text):
		return false
	}
	if isMostlyLower(text) && len(strings.Fields(text)) > LowercaseBodyWords {
		return false
	}
	if isBoilerplateHeading(text) {
		return false
	}
	return true
}

// IsNumberedHeading reports whether the text starts with an explicit section
// number: decimal (1, 1.2, 1.2.3), roman numeral, or "Chapter N"/"Section N".
func IsNumberedHeading(text string) bool {
	return numberedRe.MatchString(strings.TrimSpace(text))
}

// NumberingDepth counts the dot-separated segments of a leading decimal
// section number. "2.1 Methods" has depth 2; unnumbered text has depth 0.
func NumberingDepth(text string) int {
	m := depthRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	return strings.Count(m[1], ".") + 1
}

func looksLikeURL(text string) bool {
	return urlRe.MatchString(strings.ToLower(text))
}

func looksLikePageNumber(text string) bool {
	return pageNumRe.MatchString(strings.TrimSpace(text))
}

// looksLikeCode catches source fragments that survive into the text layer of
// technical PDFs: hash comments, import/def lines, and short colon-terminated
// tokens.
func looksLikeCode(text string) bool {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "#") {
		return true
	}
	if codeRe.MatchString(t) {
		return true
	}
	if strings.HasSuffix(t, ":") && !strings.ContainsAny(t, " ()") && len(t) < 40 {
		return true
	}
	return false
}

func looksLikeBullet(text string) bool {
	return bulletRe.MatchString(strings.TrimSpace(text))
}

// looksLikeParagraph flags body text: too many words, or one long unbroken
// CJK run. Explicitly numbered lines are never paragraphs.
func looksLikeParagraph(text string) bool {
	t := strings.TrimSpace(text)
	if IsNumberedHeading(t) {
		return false
	}
	if len(strings.Fields(t)) > ParaWordMax {
		return true
	}
	if !strings.Contains(t, " ") && len([]rune(t)) > ParaCJKMax && cjkRe.MatchString(t) {
		return true
	}
	return false
}

// mostlyNonLetters reports whether fewer than 40% of the characters are
// alphabetic.
func mostlyNonLetters(text string) bool {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return true
	}
	letters := 0
	for _, r := range runes {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return float64(letters)/float64(len(runes)) < 0.4
}

// isMostlyLower reports whether at least 75% of the letters are lowercase.
func isMostlyLower(text string) bool {
	letters, lower := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsLower(r) {
				lower++
			}
		}
	}
	if letters == 0 {
		return false
	}
	return float64(lower)/float64(letters) >= 0.75
}

func isBoilerplateHeading(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.Trim(t, ":.-— ")
	return boilerplateHeadings[t]
}

func countPunct(text string) int {
	n := 0
	for _, r := range text {
		if r < 128 && strings.ContainsRune(asciiPunct, r) {
			n++
		}
	}
	return n
}

func isAllDigits(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
