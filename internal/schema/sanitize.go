// Package schema coerces pipeline results into the exact external output
// contract and optionally validates them against a draft-04 JSON Schema.
// Validation is observational: a non-conforming result is reported, never
// withheld.
package schema

import (
	"strings"

	"github.com/dbarrow/outliner/internal/outline"
)

// Item is one outline entry in the schema-compliant form.
type Item struct {
	Level string `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Document is the schema-compliant terminal output for one source document.
type Document struct {
	Title   string `json:"title"`
	Outline []Item `json:"outline"`
}

// Sanitize coerces a pipeline result into the external contract: levels
// outside H1/H2/H3 fall back to H1, negative pages floor at 0, and the
// outline is never nil. The coercion is total — any Result maps to a valid
// Document.
func Sanitize(res *outline.Result) Document {
	doc := Document{Outline: []Item{}}
	if res == nil {
		return doc
	}
	doc.Title = res.Title
	for _, e := range res.Outline {
		doc.Outline = append(doc.Outline, sanitizeItem(e))
	}
	return doc
}

func sanitizeItem(e outline.Entry) Item {
	level := string(e.Level)
	switch level {
	case "H1", "H2", "H3":
	default:
		level = "H1"
	}
	page := e.Page
	if page < 0 {
		page = 0
	}
	return Item{
		Level: level,
		Text:  strings.TrimSpace(e.Text),
		Page:  page,
	}
}
