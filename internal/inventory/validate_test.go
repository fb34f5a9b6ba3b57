package inventory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validationErr(t *testing.T, err error) *ValidationError {
	t.Helper()
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
	return vErr
}

func TestValidateCandidates_WellFormed(t *testing.T) {
	raw := `[
		{"item":"lamp","brand":"Acme","quantity":1,"description":"desk lamp","timestamp":"0:00"},
		{"item":"chair","brand":"Ikea","model":"Markus","quantity":2,"description":"office chair","timestamp":"0:12"}
	]`

	candidates, err := ValidateCandidates(raw)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "lamp", candidates[0].Item)
	assert.Equal(t, "Acme", candidates[0].Brand)
	assert.Equal(t, 1, candidates[0].Quantity)
	assert.Equal(t, "desk lamp", candidates[0].Description)
	assert.Equal(t, "0:00", candidates[0].Timestamp)

	assert.Equal(t, "chair", candidates[1].Item)
	assert.Equal(t, "Markus", candidates[1].Model)
	assert.Equal(t, 2, candidates[1].Quantity)
}

func TestValidateCandidates_BrandDefaultsToBlank(t *testing.T) {
	// Absent brand
	candidates, err := ValidateCandidates(`[{"item":"lamp","quantity":1,"description":"d","timestamp":"0:00"}]`)
	require.NoError(t, err)
	assert.Equal(t, "", candidates[0].Brand)

	// Null brand
	candidates, err = ValidateCandidates(`[{"item":"lamp","brand":null,"quantity":1,"description":"d","timestamp":"0:00"}]`)
	require.NoError(t, err)
	assert.Equal(t, "", candidates[0].Brand)

	// Present brand is preserved exactly
	candidates, err = ValidateCandidates(`[{"item":"lamp","brand":"Acme","quantity":1,"description":"d","timestamp":"0:00"}]`)
	require.NoError(t, err)
	assert.Equal(t, "Acme", candidates[0].Brand)
}

func TestValidateCandidates_StripsMarkdownFences(t *testing.T) {
	raw := "```json\n[{\"item\":\"lamp\",\"quantity\":1,\"description\":\"d\",\"timestamp\":\"0:00\"}]\n```"

	candidates, err := ValidateCandidates(raw)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestValidateCandidates_MalformedJSON(t *testing.T) {
	_, err := ValidateCandidates("not json at all")
	vErr := validationErr(t, err)
	assert.Equal(t, MalformedJSON, vErr.Kind)

	_, err = ValidateCandidates(`[{"item":"lamp",]`)
	vErr = validationErr(t, err)
	assert.Equal(t, MalformedJSON, vErr.Kind)
	assert.Greater(t, vErr.Offset, int64(0))
}

func TestValidateCandidates_WrongShape(t *testing.T) {
	// Object instead of array
	_, err := ValidateCandidates(`{"item":"lamp"}`)
	vErr := validationErr(t, err)
	assert.Equal(t, WrongShape, vErr.Kind)

	// Array of non-objects
	_, err = ValidateCandidates(`[1, 2, 3]`)
	vErr = validationErr(t, err)
	assert.Equal(t, WrongShape, vErr.Kind)

	// Null or empty output
	_, err = ValidateCandidates(`null`)
	vErr = validationErr(t, err)
	assert.Equal(t, WrongShape, vErr.Kind)

	_, err = ValidateCandidates("")
	vErr = validationErr(t, err)
	assert.Equal(t, WrongShape, vErr.Kind)
}

func TestValidateCandidates_BadItemRejectsWholeBatch(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{
			name:  "missing item",
			raw:   `[{"quantity":1,"description":"d","timestamp":"0:00"}]`,
			field: "item",
		},
		{
			name:  "empty description",
			raw:   `[{"item":"lamp","quantity":1,"description":"","timestamp":"0:00"}]`,
			field: "description",
		},
		{
			name:  "missing timestamp",
			raw:   `[{"item":"lamp","quantity":1,"description":"d"}]`,
			field: "timestamp",
		},
		{
			name:  "missing quantity",
			raw:   `[{"item":"lamp","description":"d","timestamp":"0:00"}]`,
			field: "quantity",
		},
		{
			name:  "quantity below one",
			raw:   `[{"item":"lamp","quantity":0,"description":"d","timestamp":"0:00"}]`,
			field: "quantity",
		},
		{
			name:  "quantity wrong type",
			raw:   `[{"item":"lamp","quantity":"two","description":"d","timestamp":"0:00"}]`,
			field: "quantity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidates, err := ValidateCandidates(tt.raw)
			vErr := validationErr(t, err)
			assert.Equal(t, BadItem, vErr.Kind)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Nil(t, candidates, "a bad element must never yield a partial sequence")
		})
	}
}

func TestValidateCandidates_BadItemReportsIndex(t *testing.T) {
	raw := `[
		{"item":"lamp","quantity":1,"description":"d","timestamp":"0:00"},
		{"item":"","quantity":1,"description":"d","timestamp":"0:05"}
	]`

	candidates, err := ValidateCandidates(raw)
	vErr := validationErr(t, err)
	assert.Equal(t, BadItem, vErr.Kind)
	assert.Equal(t, 1, vErr.Index)
	assert.Nil(t, candidates)
}

func TestValidateCandidates_EmptyArray(t *testing.T) {
	candidates, err := ValidateCandidates(`[]`)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestValidateCandidates_OrderPreserved(t *testing.T) {
	raw := `[
		{"item":"a","quantity":1,"description":"d","timestamp":"0:00"},
		{"item":"b","quantity":1,"description":"d","timestamp":"0:05"},
		{"item":"c","quantity":1,"description":"d","timestamp":"0:10"}
	]`

	candidates, err := ValidateCandidates(raw)
	require.NoError(t, err)
	require.Len(t, candidates, 3)
	assert.Equal(t, "a", candidates[0].Item)
	assert.Equal(t, "b", candidates[1].Item)
	assert.Equal(t, "c", candidates[2].Item)
}
