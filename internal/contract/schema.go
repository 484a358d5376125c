package contract

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a named, compiled JSON schema.
type Schema struct {
	name     string
	compiled *jsonschema.Schema
}

// MustCompile compiles a schema document and panics when it is invalid.
func MustCompile(name, source string) *Schema {
	return &Schema{
		name:     name,
		compiled: jsonschema.MustCompileString(name+".schema.json", source),
	}
}

// Name returns the schema name used in violation messages.
func (s *Schema) Name() string {
	return s.name
}

// Validate checks a decoded JSON document against the schema.
func (s *Schema) Validate(document any) error {
	return s.compiled.Validate(document)
}

// Type checks only. Emptiness is reported by each type's Validate so that
// it surfaces as ErrIncompleteArtifact.
var (
	ArtifactSchema = MustCompile("mistake-artifact", `{
  "type": "object",
  "required": ["artifact_type", "content"],
  "properties": {
    "artifact_type": {"type": "string"},
    "content": {"type": "string"},
    "metadata": {"type": ["object", "null"]}
  }
}`)

	VerdictSchema = MustCompile("verdict", `{
  "type": "object",
  "properties": {
    "correct": {"type": "boolean"},
    "feedback": {"type": ["array", "null"], "items": {"type": "string"}},
    "follow_up_question": {"type": ["string", "null"]}
  }
}`)

	PuzzleSchema = MustCompile("missing-link-puzzle", `{
  "type": "object",
  "properties": {
    "structure": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["slot_id", "text"],
        "properties": {
          "slot_id": {"type": "string"},
          "text": {"type": "string"}
        }
      }
    },
    "options": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["option_id", "text"],
        "properties": {
          "option_id": {"type": "string"},
          "text": {"type": "string"}
        }
      }
    },
    "solution": {
      "type": ["object", "null"],
      "additionalProperties": {"type": "string"}
    }
  }
}`)

	DialogueScoreSchema = MustCompile("dialogue-score", `{
  "type": "object",
  "properties": {
    "scores": {
      "type": ["object", "null"],
      "additionalProperties": {"type": "number"}
    },
    "feedback": {"type": ["array", "null"], "items": {"type": "string"}},
    "follow_up_question": {"type": ["string", "null"]}
  }
}`)
)
