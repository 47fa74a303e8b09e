package fees

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name     string
		amount   uint64
		feeBp    uint64
		flatFee  uint64
		expected uint64
	}{
		{"zero amount", 0, 1, 0, 0},
		{"zero fee bp", 1_000_000, 0, 0, 0},
		{"one bp on a million", 1_000_000, 1, 0, 100},
		{"one bp plus flat fee", 1_000_000, 1, 50, 150},
		{"flat fee only", 1_000_000, 0, 42, 42},
		{"floors the percentage", 9_999, 1, 0, 0},
		{"full ten thousand bp", 12_345, 10_000, 0, 12_345},
		{"half of amount", 1_000, 5_000, 0, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Calculate(tt.amount, tt.feeBp, tt.flatFee))
		})
	}
}

func TestCalculateSaturates(t *testing.T) {
	// The intermediate product exceeds 64 bits; the result must clamp, not
	// wrap.
	assert.Equal(t, uint64(math.MaxUint64), Calculate(math.MaxUint64, 10_001, 0))

	// The flat-fee addition would wrap.
	assert.Equal(t, uint64(math.MaxUint64), Calculate(math.MaxUint64, 10_000, 1))
	assert.Equal(t, uint64(math.MaxUint64), Calculate(1, 10_000, math.MaxUint64))
}

func TestCalculateMonotonic(t *testing.T) {
	// More principal never means a smaller fee under the same rate.
	prev := uint64(0)
	for amount := uint64(0); amount <= 100_000; amount += 7_919 {
		fee := Calculate(amount, 25, 10)
		assert.GreaterOrEqual(t, fee, prev)
		prev = fee
	}
}
