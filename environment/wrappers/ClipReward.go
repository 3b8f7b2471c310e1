package wrappers

import (
	env "github.com/NishantPrabhu/RL-Experiments/environment"
	"github.com/NishantPrabhu/RL-Experiments/utils/floatutils"
)

// ClipReward wraps an environment and clips every reward into
// [Min, Max]. Reward clipping keeps the learning-update scale
// comparable across games with very different score magnitudes.
type ClipReward struct {
	env.Environment
	min float64
	max float64
}

// NewClipReward wraps e so that rewards are clipped into [min, max]
func NewClipReward(e env.Environment, min, max float64) *ClipReward {
	return &ClipReward{Environment: e, min: min, max: max}
}

// Step steps the wrapped environment, clipping the returned reward
func (c *ClipReward) Step(action int) ([]float64, float64, bool, error) {
	obs, reward, done, err := c.Environment.Step(action)
	if err != nil {
		return nil, 0, false, err
	}
	return obs, floatutils.Clip(reward, c.min, c.max), done, nil
}
