package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/eventoo/internal/model"
)

func TestComputeResultHardChallenge(t *testing.T) {
	res := ComputeResult(DefaultTuning(), model.DifficultyHard, 500, 25, 80)

	assert.Equal(t, 455.0, res.Revenue)
	assert.True(t, res.Success)
	assert.Equal(t, 25, res.Participants)
	assert.Equal(t, 91, res.Efficiency)
}

func TestComputeResultFailure(t *testing.T) {
	// expert 0.45 - 0.1 at low progress, 3 people -> 0.8
	res := ComputeResult(DefaultTuning(), model.DifficultyExpert, 1000, 3, 10)

	assert.Equal(t, 280.0, res.Revenue)
	assert.False(t, res.Success)
	assert.Equal(t, 28, res.Efficiency)
}

func TestSuccessRate(t *testing.T) {
	tun := DefaultTuning()
	tests := []struct {
		d        model.Difficulty
		progress int
		want     float64
	}{
		{model.DifficultyEasy, 50, 0.9},
		{model.DifficultyEasy, 90, 0.95},
		{model.DifficultyMedium, 10, 0.65},
		{model.DifficultyHard, 75, 0.6},
		{model.DifficultyHard, 76, 0.7},
		{model.DifficultyExpert, 25, 0.45},
		{model.DifficultyExpert, 24, 0.35},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, tun.SuccessRate(tt.d, tt.progress), 1e-9, "%s at %d%%", tt.d, tt.progress)
	}

	tun.MinSuccessRate = 0.4
	assert.InDelta(t, 0.4, tun.SuccessRate(model.DifficultyExpert, 0), 1e-9)
}

func TestEffortMultiplier(t *testing.T) {
	tun := DefaultTuning()
	tests := []struct {
		participants int
		want         float64
	}{
		{0, 0.8}, {5, 0.8}, {6, 1.0}, {10, 1.0}, {11, 1.2}, {20, 1.2}, {21, 1.3}, {30, 1.3}, {31, 1.35}, {500, 1.35},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tun.EffortMultiplier(tt.participants), "participants=%d", tt.participants)
	}
}

type constRand int

func (c constRand) Intn(n int) int { return min(int(c), n-1) }

func TestTurnout(t *testing.T) {
	tun := DefaultTuning()

	// 5 + 15 = 20 signups, 70% engagement
	assert.Equal(t, 14, tun.Turnout(constRand(15), 100))
	// capped by headcount
	assert.Equal(t, 2, tun.Turnout(constRand(15), 3))
	assert.Equal(t, 3, tun.Turnout(constRand(0), 40))
}
