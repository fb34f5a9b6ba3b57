package llm

import (
	"context"
	"testing"

	"github.com/raine/home-inventory/internal/inventory"
	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"45.00", 45.00, true},
		{"25.99", 25.99, true},
		{"  45.00\n", 45.00, true},
		{"$45.00", 45.00, true},
		{"€120", 120, true},
		{"1,299.99", 1299.99, true},
		{"0", 0, true},
		{"```\n45.00\n```", 45.00, true},
		{"", 0, false},
		{"unknown", 0, false},
		{"around 45 dollars", 0, false},
		{"-5", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			value, ok := parsePrice(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, value)
			}
		})
	}
}

type stubOracle struct {
	calls    int
	estimate inventory.PriceEstimate
}

func (s *stubOracle) Estimate(ctx context.Context, item, brand, description string) inventory.PriceEstimate {
	s.calls++
	return s.estimate
}

func TestFallbackOracle_ReturnsFirstKnown(t *testing.T) {
	first := &stubOracle{estimate: inventory.KnownPrice(45)}
	second := &stubOracle{estimate: inventory.KnownPrice(99)}

	estimate := FallbackOracle{first, second}.Estimate(context.Background(), "lamp", "", "")
	assert.Equal(t, inventory.KnownPrice(45), estimate)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestFallbackOracle_FallsThroughUnknown(t *testing.T) {
	first := &stubOracle{estimate: inventory.UnknownPrice()}
	second := &stubOracle{estimate: inventory.KnownPrice(99)}

	estimate := FallbackOracle{first, second}.Estimate(context.Background(), "lamp", "", "")
	assert.Equal(t, inventory.KnownPrice(99), estimate)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestFallbackOracle_AllUnknown(t *testing.T) {
	first := &stubOracle{estimate: inventory.UnknownPrice()}

	estimate := FallbackOracle{first}.Estimate(context.Background(), "lamp", "", "")
	assert.False(t, estimate.Known)
}
