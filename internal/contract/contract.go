// Package contract turns untrusted collaborator text into typed values.
//
// Output is accepted only when it contains a single JSON object that
// satisfies the schema of the expected shape. Anything else is reported as a
// *ViolationError, which matches ErrContractViolation with errors.Is.
package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrContractViolation reports output that could not be parsed or failed its schema.
	ErrContractViolation = errors.New("collaborator output violates contract")
	// ErrIncompleteArtifact reports a well-formed object missing semantically required content.
	ErrIncompleteArtifact = errors.New("collaborator output is incomplete")
)

// Stage names where in the pipeline a violation happened.
type Stage string

const (
	StageExtract Stage = "extract"
	StageSchema  Stage = "schema"
	StageDecode  Stage = "decode"
)

// ViolationError describes a contract failure.
type ViolationError struct {
	Schema string
	Stage  Stage
	Err    error
}

func (e *ViolationError) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf("contract violation (%s): %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("contract violation in %s (%s): %v", e.Schema, e.Stage, e.Err)
}

func (e *ViolationError) Unwrap() []error {
	return []error{ErrContractViolation, e.Err}
}

var errNoObject = errors.New("no JSON object found")

// ExtractObject returns the JSON object carried by text. The whole text is
// tried first; otherwise the first balanced-brace span that parses as an
// object is returned, so surrounding prose and code fences are tolerated.
func ExtractObject(text string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed), nil
	}

	for start := strings.IndexByte(trimmed, '{'); start >= 0; {
		// An unbalanced or invalid span does not end the scan; a later
		// brace may still open the object.
		if end := matchingBrace(trimmed, start); end >= 0 {
			candidate := trimmed[start : end+1]
			if json.Valid([]byte(candidate)) {
				return json.RawMessage(candidate), nil
			}
		}

		next := strings.IndexByte(trimmed[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	return nil, &ViolationError{Stage: StageExtract, Err: errNoObject}
}

// matchingBrace returns the index of the brace closing the one at start,
// ignoring braces inside string literals, or -1 when unbalanced.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Validator is implemented by decoded values that carry semantic checks
// beyond what their schema expresses.
type Validator interface {
	Validate() error
}

// Decode extracts the object from text, validates it against schema and
// unmarshals it into out. When out implements Validator its check runs last
// and a failure is wrapped with ErrIncompleteArtifact.
func Decode(text string, schema *Schema, out any) error {
	raw, err := ExtractObject(text)
	if err != nil {
		var violation *ViolationError
		if errors.As(err, &violation) {
			violation.Schema = schema.Name()
		}
		return err
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var document any
	if err := decoder.Decode(&document); err != nil {
		return &ViolationError{Schema: schema.Name(), Stage: StageExtract, Err: err}
	}

	if err := schema.Validate(document); err != nil {
		return &ViolationError{Schema: schema.Name(), Stage: StageSchema, Err: err}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &ViolationError{Schema: schema.Name(), Stage: StageDecode, Err: err}
	}

	if v, ok := out.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrIncompleteArtifact, schema.Name(), err)
		}
	}
	return nil
}
