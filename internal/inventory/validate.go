package inventory

import (
	"encoding/json"
	"errors"
	"strings"
)

// candidateJSON mirrors ItemCandidate with pointer fields so that absent and
// null values can be told apart from present-but-empty ones.
type candidateJSON struct {
	Item        *string `json:"item"`
	Brand       *string `json:"brand"`
	Model       *string `json:"model"`
	Quantity    *int    `json:"quantity"`
	Description *string `json:"description"`
	Timestamp   *string `json:"timestamp"`
}

// ValidateCandidates parses raw extractor output and validates it against the
// item schema. On success it returns the full candidate sequence in source
// order. Any malformed input or a single non-conforming element rejects the
// whole batch with a ValidationError.
func ValidateCandidates(raw string) ([]ItemCandidate, error) {
	raw = stripCodeFences(raw)
	if raw == "" || raw == "null" {
		return nil, &ValidationError{Kind: WrongShape, Message: "expected a JSON array of objects, got nothing"}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, &ValidationError{Kind: MalformedJSON, Offset: syntaxErr.Offset, Message: syntaxErr.Error()}
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ValidationError{Kind: WrongShape, Message: "expected a JSON array of objects, got " + typeErr.Value}
		}
		return nil, &ValidationError{Kind: MalformedJSON, Message: err.Error()}
	}

	candidates := make([]ItemCandidate, 0, len(elems))
	for i, elem := range elems {
		var c candidateJSON
		if err := json.Unmarshal(elem, &c); err != nil {
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &typeErr) && typeErr.Field != "" {
				return nil, &ValidationError{Kind: BadItem, Index: i, Field: typeErr.Field, Message: "has invalid type " + typeErr.Value}
			}
			return nil, &ValidationError{Kind: WrongShape, Message: "array element is not an object"}
		}

		if c.Item == nil || *c.Item == "" {
			return nil, &ValidationError{Kind: BadItem, Index: i, Field: "item", Message: "is required"}
		}
		if c.Description == nil || *c.Description == "" {
			return nil, &ValidationError{Kind: BadItem, Index: i, Field: "description", Message: "is required"}
		}
		if c.Timestamp == nil || *c.Timestamp == "" {
			return nil, &ValidationError{Kind: BadItem, Index: i, Field: "timestamp", Message: "is required"}
		}
		if c.Quantity == nil {
			return nil, &ValidationError{Kind: BadItem, Index: i, Field: "quantity", Message: "is required"}
		}
		if *c.Quantity < 1 {
			return nil, &ValidationError{Kind: BadItem, Index: i, Field: "quantity", Message: "must be >= 1"}
		}

		candidate := ItemCandidate{
			Item:        *c.Item,
			Quantity:    *c.Quantity,
			Description: *c.Description,
			Timestamp:   *c.Timestamp,
		}
		// Brand defaults to blank instead of null to keep tabular writes
		// schema-stable.
		if c.Brand != nil {
			candidate.Brand = *c.Brand
		}
		if c.Model != nil {
			candidate.Model = *c.Model
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// stripCodeFences removes markdown code blocks the model may wrap its JSON
// output in despite schema-constrained generation.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
