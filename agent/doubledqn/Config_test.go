package doubledqn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NishantPrabhu/RL-Experiments/agent"
)

func TestVariantIsRegistered(t *testing.T) {
	require.Contains(t, agent.RegisteredTypes(), string(Name))
}

func TestValidateAcceptsDefaults(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsInvalidHyperparameters(t *testing.T) {
	tests := map[string]func(*Config){
		"negative discount":       func(c *Config) { c.Gamma = -0.1 },
		"discount above one":      func(c *Config) { c.Gamma = 1.1 },
		"negative epsilon":        func(c *Config) { c.Epsilon = -0.5 },
		"epsilon min above start": func(c *Config) { c.EpsilonMin = 2 },
		"zero step size":          func(c *Config) { c.StepSize = 0 },
		"zero target interval":    func(c *Config) { c.TargetUpdateInterval = 0 },
		"zero tau":                func(c *Config) { c.Tau = 0 },
		"tau above one":           func(c *Config) { c.Tau = 1.5 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			config := DefaultConfig()
			mutate(&config)
			require.Error(t, config.Validate())
		})
	}
}

func TestEpsilonAnnealsLinearly(t *testing.T) {
	config := DefaultConfig()
	config.Epsilon = 1.0
	config.EpsilonMin = 0.1
	config.EpsilonDecaySteps = 100

	d := &DoubleDQN{config: config}
	require.Equal(t, 1.0, d.epsilon())

	d.actionSteps = 50
	require.InDelta(t, 0.55, d.epsilon(), 1e-12)

	d.actionSteps = 100
	require.InDelta(t, 0.1, d.epsilon(), 1e-12)

	// Past the schedule the rate stays at its minimum
	d.actionSteps = 100_000
	require.InDelta(t, 0.1, d.epsilon(), 1e-12)
}

func TestNewRejectsInvalidSpec(t *testing.T) {
	config := DefaultConfig()
	for _, spec := range []agent.Spec{
		{Features: 0, NumActions: 3, BatchSize: 8},
		{Features: 16, NumActions: 1, BatchSize: 8},
		{Features: 16, NumActions: 3, BatchSize: 0},
	} {
		_, err := New(spec, config)
		require.Error(t, err)
	}
}
