package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dbarrow/outliner/internal/outline"
)

// Parser converts raw document bytes into an outline result.
type Parser interface {
	Parse(r io.Reader, filename string) (*outline.Result, error)
}

// SupportedExtensions lists file extensions this service can handle. PDF runs
// the heuristic layout pipeline; the structured formats read their explicit
// heading markup directly.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts outline.Options) (Parser, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return &PDFParser{Options: opts}, nil
	case ".md", ".markdown":
		return &MarkdownParser{Options: opts}, nil
	case ".html", ".htm":
		return &HTMLParser{Options: opts}, nil
	case ".docx":
		return &DOCXParser{Options: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", filepath.Ext(filename))
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// markupLevel clamps explicit markup heading depths (1..6) to the H1..H3
// contract shared with the PDF pipeline.
func markupLevel(level int) outline.Level {
	switch {
	case level <= 1:
		return outline.LevelH1
	case level == 2:
		return outline.LevelH2
	default:
		return outline.LevelH3
	}
}

// markupEntry builds an extended entry for a heading read from explicit
// markup. Confidence is 1: the structure is declared, not inferred.
func markupEntry(level int, text string, page int) outline.Entry {
	clean := outline.CleanText(text)
	return outline.Entry{
		Level:      markupLevel(level),
		Text:       clean,
		Page:       page,
		Confidence: 1.0,
		Lang:       outline.DetectScript(clean),
	}
}

// finishResult applies the shared post-processing to a markup-derived
// outline: optional hierarchy, never-nil outline slice.
func finishResult(res *outline.Result, opts outline.Options) *outline.Result {
	if res.Outline == nil {
		res.Outline = []outline.Entry{}
	}
	if opts.BuildHierarchy {
		res.Tree = outline.BuildTree(res.Outline)
	}
	return res
}

func trimExt(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
