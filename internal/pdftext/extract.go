// Package pdftext extracts per-line layout data from PDF files: text, font
// size, boldness, horizontal centering and vertical position, grouped into
// visual lines. It feeds the outline pipeline and knows nothing about
// heading semantics beyond TOC-page classification.
package pdftext

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dbarrow/outliner/internal/outline"
)

const (
	// centerTolerancePt is the distance from the page horizontal midpoint
	// within which a line counts as centered.
	centerTolerancePt = 72.0

	// rowTolerancePt groups runs whose baselines are within this many points
	// into one visual line.
	rowTolerancePt = 3.0

	// wordGapFrac of the font size is the horizontal gap that separates words
	// when reassembling run text.
	wordGapFrac = 0.3

	minLineRunes = 2
)

// Default page dimensions (US Letter) when the MediaBox is missing or broken.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// Extract opens the PDF at path and produces the document's line content.
// TOC pages are classified from their plain text and excluded entirely; page
// indices stay 0-based and non-contiguous so output page numbers remain
// correct. The file handle is closed on every path out of this function.
func Extract(path string) (*outline.Document, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	doc := &outline.Document{
		PageCount: reader.NumPage(),
		MetaTitle: metaTitle(reader),
	}

	fonts := make(map[string]*pdflib.Font)
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageIndex := i - 1

		if outline.IsTOCPage(pagePlainText(page, fonts)) {
			continue
		}
		doc.RetainedPages++

		w, h := pageDims(page)
		lines := pageLines(page, pageIndex, w, h)
		doc.Lines = append(doc.Lines, lines...)
		if len(doc.FirstPageLines) == 0 {
			doc.FirstPageLines = lines
		}
	}

	if len(doc.Lines) == 0 && hasImageContent(path) {
		doc.ImageOnly = true
	}
	return doc, nil
}

// pagePlainText returns the page's plain text for TOC classification. A page
// that cannot be read contributes no text and is simply retained.
func pagePlainText(page pdflib.Page, fonts map[string]*pdflib.Font) string {
	defer func() { recover() }() // malformed content streams panic inside the parser

	for _, name := range page.Fonts() {
		if _, ok := fonts[name]; !ok {
			f := page.Font(name)
			fonts[name] = &f
		}
	}
	text, err := page.GetPlainText(fonts)
	if err != nil {
		return ""
	}
	return text
}

// pageLines extracts the grouped visual lines of one page. Any panic from a
// malformed content stream yields zero lines for the page, not a failed
// document.
func pageLines(page pdflib.Page, pageIndex int, pageW, pageH float64) (lines []outline.TextLine) {
	defer func() { recover() }()

	content := page.Content()
	return GroupLines(content.Text, pageIndex, pageW, pageH)
}

// GroupLines assembles raw glyph runs into visual lines: same-baseline runs
// are concatenated left to right with single-space joins, keeping the
// maximum font size and the boolean OR of boldness. Exported for tests.
func GroupLines(texts []pdflib.Text, pageIndex int, pageW, pageH float64) []outline.TextLine {
	var runs []pdflib.Text
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		runs = append(runs, t)
	}
	if len(runs) == 0 {
		return nil
	}
	if pageW <= 0 {
		pageW = defaultPageWidth
	}
	if pageH <= 0 {
		pageH = defaultPageHeight
	}

	// Top of page first, then reading order within a row.
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Y != runs[j].Y {
			return runs[i].Y > runs[j].Y
		}
		return runs[i].X < runs[j].X
	})

	var lines []outline.TextLine
	var row []pdflib.Text
	rowY := runs[0].Y

	flush := func() {
		if ln, ok := buildLine(row, pageIndex, pageW, pageH); ok {
			lines = append(lines, ln)
		}
		row = row[:0]
	}

	for _, r := range runs {
		if len(row) > 0 && rowY-r.Y > rowTolerancePt {
			flush()
			rowY = r.Y
		}
		row = append(row, r)
	}
	flush()
	return lines
}

// buildLine concatenates one row of runs into a TextLine.
func buildLine(row []pdflib.Text, pageIndex int, pageW, pageH float64) (outline.TextLine, bool) {
	if len(row) == 0 {
		return outline.TextLine{}, false
	}
	sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

	var sb strings.Builder
	maxSize := 0.0
	anyBold := false
	var startSum, endSum, y float64
	prevEnd := row[0].X

	for i, r := range row {
		if i > 0 {
			gap := r.X - prevEnd
			if gap > wordGapFrac*maxFloat(r.FontSize, 1.0) {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(r.S)
		prevEnd = r.X + r.W

		if r.FontSize > maxSize {
			maxSize = r.FontSize
		}
		anyBold = anyBold || boldFont(r.Font)
		startSum += r.X
		endSum += r.X + r.W
		y = r.Y
	}

	text := outline.CleanText(sb.String())
	if utf8.RuneCountInString(text) < minLineRunes {
		return outline.TextLine{}, false
	}

	n := float64(len(row))
	centerX := (startSum/n + endSum/n) / 2
	centered := abs(centerX-pageW/2) < centerTolerancePt

	// PDF y grows bottom-up; RelY is 0 at the top of the page.
	relY := 1 - y/pageH
	if relY < 0 {
		relY = 0
	} else if relY > 1 {
		relY = 1
	}

	return outline.TextLine{
		Text:     text,
		Page:     pageIndex,
		FontSize: maxSize,
		Bold:     anyBold,
		Centered: centered,
		RelY:     relY,
	}, true
}

// boldFont derives boldness from the font name, the only style signal the
// text layer exposes ("Helvetica-Bold", "Arial-BoldMT", "F2+TimesBold").
func boldFont(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "bold") || strings.Contains(n, "black") || strings.Contains(n, "heavy")
}

// pageDims reads the page MediaBox, following Parent inheritance, with Letter
// as the fallback for missing or malformed boxes.
func pageDims(page pdflib.Page) (w, h float64) {
	defer func() {
		if recover() != nil {
			w, h = defaultPageWidth, defaultPageHeight
		}
	}()

	box := page.V.Key("MediaBox")
	for parent := page.V.Key("Parent"); box.IsNull() && !parent.IsNull(); parent = parent.Key("Parent") {
		box = parent.Key("MediaBox")
	}
	if box.IsNull() || box.Kind() != pdflib.Array || box.Len() != 4 {
		return defaultPageWidth, defaultPageHeight
	}

	coords := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v := box.Index(i)
		switch v.Kind() {
		case pdflib.Integer:
			coords[i] = float64(v.Int64())
		case pdflib.Real:
			coords[i] = v.Float64()
		default:
			return defaultPageWidth, defaultPageHeight
		}
	}
	w = coords[2] - coords[0]
	h = coords[3] - coords[1]
	if w <= 0 || h <= 0 {
		return defaultPageWidth, defaultPageHeight
	}
	return w, h
}

// metaTitle reads the document information dictionary's Title, if any.
func metaTitle(reader *pdflib.Reader) (title string) {
	defer func() { recover() }()

	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	return strings.TrimSpace(info.Key("Title").Text())
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
