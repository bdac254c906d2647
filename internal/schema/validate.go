package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// inlineSchema is the fallback output contract, used when no schema file is
// configured or the configured file cannot be loaded.
const inlineSchema = `{
  "$schema": "http://json-schema.org/draft-04/schema#",
  "title": "PDF Outline Output Schema (Inline Fallback)",
  "type": "object",
  "required": ["title", "outline"],
  "additionalProperties": false,
  "properties": {
    "title": {"type": "string"},
    "outline": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["level", "text", "page"],
        "additionalProperties": false,
        "properties": {
          "level": {"type": "string", "enum": ["H1", "H2", "H3"]},
          "text": {"type": "string"},
          "page": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

// Validator checks sanitized documents against the output schema.
type Validator struct {
	sch *jsonschema.Schema
	log *slog.Logger
}

// NewValidator compiles the schema at path, falling back to the inline
// schema when path is empty or unloadable. Compilation of the inline schema
// cannot fail with a well-formed build, so an error here means a broken
// schema file and a fallback, never a dead validator.
func NewValidator(path string, log *slog.Logger) (*Validator, error) {
	raw := []byte(inlineSchema)
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			raw = data
		} else {
			log.Warn("schema file unavailable, using inline fallback", "path", path, "error", err)
		}
	}

	sch, err := compile(raw)
	if err != nil {
		if sch, err = compile([]byte(inlineSchema)); err != nil {
			return nil, fmt.Errorf("compile inline schema: %w", err)
		}
		log.Warn("configured schema failed to compile, using inline fallback", "path", path)
	}
	return &Validator{sch: sch, log: log}, nil
}

func compile(raw []byte) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("outline-schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return c.Compile("outline-schema.json")
}

// Validate checks a sanitized document against the schema. The error is
// informational: callers log it and return the document regardless.
func (v *Validator) Validate(doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return v.sch.Validate(inst)
}
