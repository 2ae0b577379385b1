package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundOneDecimal(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{name: "zero", input: 0, expected: 0},
		{name: "already rounded", input: 7.5, expected: 7.5},
		{name: "exact tie rounds up", input: 0.25, expected: 0.3},
		{name: "exact tie above one", input: 7.25, expected: 7.3},
		{name: "binary value below tie", input: 0.35, expected: 0.3},
		{name: "binary value above tie", input: 1.05, expected: 1.1},
		{name: "rounds up to ten", input: 9.99, expected: 10.0},
		{name: "accumulated product", input: 22 * 0.222, expected: 4.9},
		{name: "repeating fraction", input: 3.0 / 7.0 * 10, expected: 4.3},
		{name: "negative tie rounds away from zero", input: -0.25, expected: -0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RoundOneDecimal(tt.input))
		})
	}
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 66.7, roundHalfUp(200.0/3.0))
	assert.Equal(t, 50.0, roundHalfUp(50))
	assert.Equal(t, 0.0, roundHalfUp(0))
}
