// Package outline turns raw page geometry into a ranked, leveled heading
// outline. The pipeline is purely heuristic: font-size clustering, explicit
// numbering, position and boldness are combined into a bounded confidence
// score, then redundancy passes prune running headers, stutter artifacts and
// near-duplicates. No stage consults document semantics.
package outline

import (
	"math"
	"sort"
	"strings"
)

// Level is a heading depth in the output contract.
type Level string

const (
	LevelH1 Level = "H1"
	LevelH2 Level = "H2"
	LevelH3 Level = "H3"
)

// unknownRank sorts any non-H1/H2/H3 level below H3 in the tree builder.
const unknownRank = 999

func levelRank(l Level) int {
	switch l {
	case LevelH1:
		return 1
	case LevelH2:
		return 2
	case LevelH3:
		return 3
	}
	return unknownRank
}

// TextLine is one visually contiguous run of glyphs on one page. Lines are
// immutable once extracted except SizeNorm, which needs the document-wide
// maximum font size and is filled in by NormalizeSizes.
type TextLine struct {
	Text     string  // whitespace-normalized text
	Page     int     // 0-based page index
	FontSize float64 // maximum font size among the line's runs, in points
	Bold     bool
	Centered bool
	RelY     float64 // top-of-text y / page height, 0 = top of page
	SizeNorm float64 // FontSize / document max, in [0,1]
}

// Document is the extracted line content of one PDF, ready for the pipeline.
type Document struct {
	Lines          []TextLine
	FirstPageLines []TextLine // lines of the first retained page, seeds title detection
	PageCount      int        // total pages in the source document
	RetainedPages  int        // pages kept after TOC filtering
	MetaTitle      string     // document metadata title, may be empty
	ImageOnly      bool       // no extractable text but image content present
}

// Entry is one heading in the extended flat outline.
type Entry struct {
	Level      Level   `json:"level"`
	Text       string  `json:"text"`
	Page       int     `json:"page"`
	Confidence float64 `json:"confidence"`
	Lang       string  `json:"lang"`
	FontSize   float64 `json:"font_size"`
	Bold       bool    `json:"bold"`
	Centered   bool    `json:"centered"`
}

// Node is a heading with its nested subsections, in document order.
type Node struct {
	Level      Level   `json:"level"`
	Text       string  `json:"text"`
	Page       int     `json:"page"`
	Confidence float64 `json:"confidence"`
	Children   []*Node `json:"children"`
}

// Result is the terminal artifact of one pipeline run.
type Result struct {
	Title   string  `json:"title"`
	Outline []Entry `json:"outline"`
	Tree    []*Node `json:"outline_tree,omitempty"`
}

// Options carries the pipeline toggles and the overridable cutoffs. The
// weights and thresholds are empirically chosen; there is no derivation
// behind them beyond observed behavior on real documents.
type Options struct {
	UseFontLevels  bool // enable font-cluster leveling fallback
	BuildHierarchy bool // emit the nested outline tree

	MaxHeadings    int     // global diversity cap
	FuzzyThreshold float64 // same-page fuzzy dedup cutoff
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		UseFontLevels:  true,
		BuildHierarchy: false,
		MaxHeadings:    MaxOutlineEntries,
		FuzzyThreshold: FuzzyDedupeThreshold,
	}
}

func (o *Options) normalize() {
	if o.MaxHeadings <= 0 {
		o.MaxHeadings = MaxOutlineEntries
	}
	if o.FuzzyThreshold <= 0 || o.FuzzyThreshold > 1 {
		o.FuzzyThreshold = FuzzyDedupeThreshold
	}
}

// NormalizeSizes fills SizeNorm on every line using the document-wide maximum
// font size. The largest line always normalizes to 1.0; only a document of
// zero-size spans substitutes 1.0 to avoid dividing by zero.
func NormalizeSizes(lines []TextLine) float64 {
	maxSize := 0.0
	for i := range lines {
		if lines[i].FontSize > maxSize {
			maxSize = lines[i].FontSize
		}
	}
	if maxSize <= 0 {
		maxSize = 1.0
	}
	for i := range lines {
		lines[i].SizeNorm = lines[i].FontSize / maxSize
	}
	return maxSize
}

// Extract runs the full heading pipeline over an extracted document.
// It never fails: degraded input produces a degraded-but-valid result.
func Extract(doc *Document, opts Options) *Result {
	opts.normalize()

	res := &Result{Outline: []Entry{}}
	if doc == nil || len(doc.Lines) == 0 {
		// Image-only scans and empty documents short-circuit here;
		// the heuristics have nothing to work with.
		return res
	}

	NormalizeSizes(doc.Lines)

	titleSeed := doc.FirstPageLines
	if len(titleSeed) == 0 {
		titleSeed = doc.Lines
	}
	res.Title = ExtractTitle(titleSeed, doc.MetaTitle)

	var levels fontLevelMap
	if opts.UseFontLevels {
		levels = buildFontLevels(doc.Lines)
	}

	repeats := repeatPageCounts(doc.Lines)
	repeatThreshold := headerRepeatThreshold(doc.RetainedPages)

	// The title is reserved: it never competes as a heading candidate.
	candidates := make([]TextLine, 0, len(doc.Lines))
	for _, ln := range doc.Lines {
		if ln.Text != res.Title {
			candidates = append(candidates, ln)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Page != candidates[j].Page {
			return candidates[i].Page < candidates[j].Page
		}
		return candidates[i].FontSize > candidates[j].FontSize
	})

	seen := make(map[string]bool)
	var flat []Entry
	for _, ln := range candidates {
		txt := strings.TrimSpace(ln.Text)
		if len(repeats[txt]) >= repeatThreshold {
			continue // running header/footer
		}
		if !passesNoiseFilters(txt) {
			continue
		}
		if !IsHeadingCandidate(txt) {
			continue
		}
		if seen[txt] {
			continue
		}
		seen[txt] = true

		flat = append(flat, Entry{
			Level:      assignLevel(ln, levels, opts.UseFontLevels),
			Text:       txt,
			Page:       ln.Page,
			Confidence: round2(scoreHeading(ln)),
			Lang:       DetectScript(txt),
			FontSize:   round2(ln.FontSize),
			Bold:       ln.Bold,
			Centered:   ln.Centered,
		})
	}

	flat = mergeAdjacent(flat)
	flat = reduceNoise(flat, opts.FuzzyThreshold)
	flat = diversityCap(flat, opts.MaxHeadings)

	res.Outline = flat
	if opts.BuildHierarchy {
		res.Tree = BuildTree(flat)
	}
	return res
}

// repeatPageCounts maps each line text to the set of pages it occurs on.
func repeatPageCounts(lines []TextLine) map[string]map[int]bool {
	pages := make(map[string]map[int]bool)
	for _, ln := range lines {
		txt := strings.TrimSpace(ln.Text)
		if pages[txt] == nil {
			pages[txt] = make(map[int]bool)
		}
		pages[txt][ln.Page] = true
	}
	return pages
}

func headerRepeatThreshold(retainedPages int) int {
	if retainedPages < 1 {
		retainedPages = 1
	}
	t := int(HeaderRepeatRatio * float64(retainedPages))
	if t < 2 {
		t = 2
	}
	return t
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
