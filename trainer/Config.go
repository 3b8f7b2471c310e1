package trainer

import (
	"fmt"

	"github.com/NishantPrabhu/RL-Experiments/agent"
	"github.com/NishantPrabhu/RL-Experiments/environment/envconfig"
)

// AgentConfig names a registered agent variant and carries the
// remaining keys of the agent sub-mapping opaquely to its factory.
type AgentConfig struct {
	Type    agent.Type             `mapstructure:"type"`
	Options map[string]interface{} `mapstructure:",remain"`
}

// Config describes a complete training run
type Config struct {
	// Observation geometry and learning batch
	FramesPerSample int `mapstructure:"frames_per_sample"`
	BatchSize       int `mapstructure:"batch_size"`

	// Replay memory
	MemorySize      int `mapstructure:"memory_size"`
	MemoryInitSteps int `mapstructure:"memory_init_steps"`

	// A learning update fires every LearningInterval agent actions
	LearningInterval int `mapstructure:"learning_interval"`

	// Epoch structure
	TrainEpochs          int `mapstructure:"train_epochs"`
	EpisodesPerEpoch     int `mapstructure:"episodes_per_epoch"`
	EvalEvery            int `mapstructure:"eval_every"`
	EvalEpisodesPerEpoch int `mapstructure:"eval_episodes_per_epoch"`

	// Seed for the replay memory and environment RNGs
	Seed uint64 `mapstructure:"seed"`

	// Collaborator sub-mappings
	Environment envconfig.Config `mapstructure:"environment"`
	Agent       AgentConfig      `mapstructure:"agent"`
}

// Validate checks the Config for values that can never describe a
// valid training run.
func (c Config) Validate() error {
	positive := map[string]int{
		"frames_per_sample":       c.FramesPerSample,
		"batch_size":              c.BatchSize,
		"memory_size":             c.MemorySize,
		"memory_init_steps":       c.MemoryInitSteps,
		"learning_interval":       c.LearningInterval,
		"train_epochs":            c.TrainEpochs,
		"episodes_per_epoch":      c.EpisodesPerEpoch,
		"eval_every":              c.EvalEvery,
		"eval_episodes_per_epoch": c.EvalEpisodesPerEpoch,
	}
	for key, value := range positive {
		if value < 1 {
			return fmt.Errorf("validate: %v must be positive \n\thave(%v)",
				key, value)
		}
	}

	if c.BatchSize >= c.MemorySize {
		return fmt.Errorf("validate: batch size must be smaller than the "+
			"replay memory \n\twant(< %v) \n\thave(%v)", c.MemorySize,
			c.BatchSize)
	}
	if c.MemoryInitSteps <= c.BatchSize {
		return fmt.Errorf("validate: memory initialization must store more "+
			"transitions than one batch \n\twant(> %v) \n\thave(%v)",
			c.BatchSize, c.MemoryInitSteps)
	}
	return nil
}
