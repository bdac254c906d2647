package parser

import (
	"bytes"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dbarrow/outliner/internal/outline"
)

// MarkdownParser reads the outline directly from Markdown heading markup
// using goldmark. Heading levels past 3 clamp to H3; there is no page
// geometry, so every entry lands on page 0.
type MarkdownParser struct {
	Options outline.Options
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*outline.Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	res := &outline.Result{Title: trimExt(filename)}
	titled := false

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		title := string(headingText(heading, src))
		if title == "" {
			continue
		}
		// The first top-level heading doubles as the document title and is
		// excluded from the outline, mirroring the PDF pipeline's title
		// reservation.
		if !titled && heading.Level == 1 {
			res.Title = outline.CleanText(title)
			titled = true
			continue
		}
		res.Outline = append(res.Outline, markupEntry(heading.Level, title, 0))
	}

	return finishResult(res, p.Options), nil
}

// headingText collects the literal text of a heading's inline children.
func headingText(heading *ast.Heading, src []byte) []byte {
	var buf bytes.Buffer
	for c := heading.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
		}
	}
	return buf.Bytes()
}
