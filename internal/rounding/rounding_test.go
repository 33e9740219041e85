package rounding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"already rounded", 132000, 132000},
		{"half up", 2.675, 2.68},
		{"half up small", 0.125, 0.13},
		{"below half", 1.234, 1.23},
		{"negative half away from zero", -2.675, -2.68},
		{"zero", 0, 0},
		{"thirds", 1.0 / 3.0, 0.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Round2(tt.in))
		})
	}
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.3333, RoundTo(1.0/3.0, 4))
	assert.Equal(t, 1.00005, RoundTo(1.000049999, 5))
	assert.True(t, math.IsNaN(RoundTo(math.NaN(), 2)))
	assert.True(t, math.IsInf(RoundTo(math.Inf(1), 2), 1))
}

// Rounding each split and summing differs from rounding once; callers rely
// on this, so it is pinned here.
func TestRound2Compounding(t *testing.T) {
	days := 10.0 / 3.0
	once := Round2(days)
	split := Round2(days*0.5) + Round2(days*0.5)
	assert.Equal(t, 3.33, once)
	assert.Equal(t, 3.34, Round2(split))
	assert.NotEqual(t, once, Round2(split))
}
