// Package envconfig implements environment configurations which can
// create the environments they describe
package envconfig

import (
	"fmt"

	env "github.com/NishantPrabhu/RL-Experiments/environment"
	"github.com/NishantPrabhu/RL-Experiments/environment/catch"
	"github.com/NishantPrabhu/RL-Experiments/environment/wrappers"
)

// EnvName identifies a registered environment
type EnvName string

// Available environments
const (
	Catch EnvName = "catch"
)

// Config describes a wrapped environment: a named base environment, a
// frame stacking window, and optional reward clipping. The zero value
// of ClipRewards disables clipping.
type Config struct {
	EnvName     EnvName `mapstructure:"env_name"`
	ClipRewards bool    `mapstructure:"clip_rewards"`
}

// CreateEnv creates the environment the Config describes, wrapped so
// that observations are stacks of stackSize frames.
func (c Config) CreateEnv(stackSize int, seed uint64) (env.Environment,
	error) {
	var e env.Environment
	var err error

	switch c.EnvName {
	case Catch:
		e, err = catch.New(seed)
	default:
		return nil, fmt.Errorf("createenv: no such environment %q", c.EnvName)
	}
	if err != nil {
		return nil, fmt.Errorf("createenv: could not create environment: %v",
			err)
	}

	if c.ClipRewards {
		e = wrappers.NewClipReward(e, -1.0, 1.0)
	}

	stacked, err := wrappers.NewFrameStack(e, stackSize)
	if err != nil {
		return nil, fmt.Errorf("createenv: could not stack frames: %v", err)
	}
	return stacked, nil
}
