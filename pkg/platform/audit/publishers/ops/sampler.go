package ops

import (
	"math/rand/v2"
)

// Sampler keeps a configurable fraction of ops events per action.
// Rates are fixed at construction.
type Sampler struct {
	defaultRate  float64
	rateByAction map[string]float64
	random       func() float64
}

// NewSampler creates a sampler. Rates are clamped to [0, 1].
func NewSampler(defaultRate float64, rateByAction map[string]float64) *Sampler {
	rates := make(map[string]float64, len(rateByAction))
	for action, rate := range rateByAction {
		rates[action] = clamp(rate)
	}
	return &Sampler{
		defaultRate:  clamp(defaultRate),
		rateByAction: rates,
		random:       rand.Float64, //nolint:gosec // sampling doesn't need crypto rand
	}
}

// ShouldSample returns true if the event should be kept.
func (s *Sampler) ShouldSample(action string) bool {
	rate, ok := s.rateByAction[action]
	if !ok {
		rate = s.defaultRate
	}
	if rate >= 1 {
		return true
	}
	return s.random() < rate
}

func clamp(rate float64) float64 {
	return min(max(rate, 0), 1)
}
