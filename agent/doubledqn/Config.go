package doubledqn

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/NishantPrabhu/RL-Experiments/agent"
)

// Name is the registry name under which the Double DQN variant is
// created from configuration.
const Name agent.Type = "double_dqn"

func init() {
	agent.Register(Name, func(spec agent.Spec,
		opts map[string]interface{}) (agent.Agent, error) {
		config := DefaultConfig()
		if err := mapstructure.Decode(opts, &config); err != nil {
			return nil, fmt.Errorf("doubledqn: invalid agent options: %v",
				err)
		}
		d, err := New(spec, config)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}

// Config implements a configuration for a Double DQN agent
type Config struct {
	// Q-network structure. Every hidden layer uses the same activation
	// and a bias unit.
	HiddenSizes []int  `mapstructure:"hidden_sizes"`
	Activation  string `mapstructure:"activation"`

	// Weight initialization
	InitWFn string  `mapstructure:"init"`
	Gain    float64 `mapstructure:"gain"`

	// Solver adapting the Q-network weights
	Solver   string  `mapstructure:"solver"`
	StepSize float64 `mapstructure:"step_size"`

	// Discount factor
	Gamma float64 `mapstructure:"gamma"`

	// Exploration schedule: epsilon anneals linearly from Epsilon to
	// EpsilonMin over EpsilonDecaySteps training actions. With
	// EpsilonDecaySteps <= 0 the value of Epsilon is used throughout.
	Epsilon           float64 `mapstructure:"epsilon"`
	EpsilonMin        float64 `mapstructure:"epsilon_min"`
	EpsilonDecaySteps int     `mapstructure:"epsilon_decay_steps"`

	// Target network updates every TargetUpdateInterval learning
	// steps. Tau is the Polyak averaging constant; Tau == 1 replaces
	// the target weights outright.
	Tau                  float64 `mapstructure:"tau"`
	TargetUpdateInterval int     `mapstructure:"target_update_interval"`
}

// DefaultConfig returns a Config with reasonable defaults for pixel
// environments
func DefaultConfig() Config {
	return Config{
		HiddenSizes:          []int{64, 64},
		Activation:           "relu",
		InitWFn:              "glorotu",
		Gain:                 1.0,
		Solver:               "adam",
		StepSize:             1e-4,
		Gamma:                0.99,
		Epsilon:              1.0,
		EpsilonMin:           0.05,
		EpsilonDecaySteps:    100_000,
		Tau:                  1.0,
		TargetUpdateInterval: 1000,
	}
}

// Validate checks the Config for hyperparameter values that can never
// describe a valid agent.
func (c Config) Validate() error {
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1] "+
			"\n\thave(%v)", c.Gamma)
	}
	if c.Epsilon < 0 || c.Epsilon > 1 || c.EpsilonMin < 0 ||
		c.EpsilonMin > c.Epsilon {
		return fmt.Errorf("validate: invalid exploration schedule "+
			"\n\thave(ε=%v, min=%v)", c.Epsilon, c.EpsilonMin)
	}
	if c.StepSize <= 0 {
		return fmt.Errorf("validate: step size must be positive "+
			"\n\thave(%v)", c.StepSize)
	}
	if c.TargetUpdateInterval < 1 {
		return fmt.Errorf("validate: target networks must be updated at "+
			"positive intervals \n\twant(>0) \n\thave(%v)",
			c.TargetUpdateInterval)
	}
	if c.Tau <= 0 || c.Tau > 1 {
		return fmt.Errorf("validate: Polyak constant must be in (0, 1] "+
			"\n\thave(%v)", c.Tau)
	}
	return nil
}
