package parser

import (
	"fmt"
	"io"
	"os"

	"github.com/dbarrow/outliner/internal/outline"
	"github.com/dbarrow/outliner/internal/pdftext"
)

// PDFParser runs the heuristic outline pipeline over a PDF's text layer.
type PDFParser struct {
	Options outline.Options
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*outline.Result, error) {
	// The PDF libraries require a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "outliner-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	doc, err := pdftext.Extract(tmpPath)
	if err != nil {
		// Unreadable or corrupt input is a degraded result, not a failure:
		// the caller still gets a valid empty outline.
		return outline.Extract(nil, p.Options), nil
	}
	return outline.Extract(doc, p.Options), nil
}
