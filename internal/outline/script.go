package outline

// scriptRange is an inclusive Unicode codepoint range owned by a script tag.
type scriptRange struct {
	lo, hi rune
}

// scriptPriority resolves mixed-script text: the first tag seen in this order
// wins. Indic scripts and Arabic sort before CJK and Latin so a single
// Devanagari word in otherwise-Latin text tags the line "hi".
var scriptPriority = []string{
	"hi", "bn", "ta", "te", "kn", "ml", "gu", "pa", "mr", "ur",
	"ar", "zh", "ja", "ko", "ru", "th", "vi", "fr", "de", "es", "en",
}

var scriptRanges = map[string][]scriptRange{
	"hi": {{0x0900, 0x097F}}, // Devanagari
	"bn": {{0x0980, 0x09FF}},
	"ta": {{0x0B80, 0x0BFF}},
	"te": {{0x0C00, 0x0C7F}},
	"kn": {{0x0C80, 0x0CFF}},
	"ml": {{0x0D00, 0x0D7F}},
	"gu": {{0x0A80, 0x0AFF}},
	"pa": {{0x0A00, 0x0A7F}}, // Gurmukhi
	"mr": {{0x0900, 0x097F}}, // shares Devanagari with hi
	"ur": {{0x0600, 0x06FF}}, // shares Arabic
	"ar": {{0x0600, 0x06FF}},
	"zh": {{0x4E00, 0x9FFF}},
	"ja": {{0x3040, 0x30FF}, {0x31F0, 0x31FF}},
	"ko": {{0xAC00, 0xD7AF}},
	"ru": {{0x0400, 0x04FF}},
	"th": {{0x0E00, 0x0E7F}},
	"vi": {{0x0100, 0x017F}}, // Latin Extended
	"fr": {{0x00C0, 0x00FF}},
	"de": {{0x00C0, 0x00FF}},
	"es": {{0x00C0, 0x00FF}},
	"en": {{0x0000, 0x007F}},
}

// DetectScript returns a 2-letter script tag for the text, defaulting to "en".
func DetectScript(text string) string {
	seen := make(map[string]bool)
	for _, r := range text {
		for tag, ranges := range scriptRanges {
			if seen[tag] {
				continue
			}
			for _, rg := range ranges {
				if r >= rg.lo && r <= rg.hi {
					seen[tag] = true
					break
				}
			}
		}
	}
	for _, tag := range scriptPriority {
		if seen[tag] {
			return tag
		}
	}
	return "en"
}
