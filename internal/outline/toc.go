package outline

import (
	"regexp"
	"strings"
)

// tocFracThreshold: a page where at least this fraction of non-blank lines
// start with numbering or an ellipsis run is a contents listing.
const tocFracThreshold = 0.6

var (
	tocMarkerRe  = regexp.MustCompile(`(?i)(table\s+of\s+contents|^contents$|^toc$|目录|目次|الفهرس)`)
	tocNumericRe = regexp.MustCompile(`^(\d+|[0-9.]+|[ivxlcdm]+)\b|^\.{2,}`)
)

// IsTOCPage classifies a whole page, given its plain text, as a table of
// contents or index page. TOC lines look like headings typographically but
// are layout-list noise, so whole pages are excluded up front.
func IsTOCPage(pageText string) bool {
	if tocMarkerRe.MatchString(pageText) {
		return true
	}
	var lines []string
	for _, l := range strings.Split(pageText, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return false
	}
	numericLike := 0
	for _, l := range lines {
		if tocNumericRe.MatchString(strings.ToLower(l)) {
			numericLike++
		}
	}
	return float64(numericLike)/float64(len(lines)) >= tocFracThreshold
}
