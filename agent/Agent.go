// Package agent defines the agent capability consumed by the training
// harness
package agent

import (
	"encoding/gob"

	"github.com/NishantPrabhu/RL-Experiments/expreplay"
)

// Agent determines the implementation details of a value-based
// learning algorithm. The training harness treats the value-function
// approximator and the action-selection policy as a single opaque
// capability behind this interface; concrete variants are selected by
// configuration, not known to the harness.
//
// Agents are serializable so that they can be persisted both inside a
// full training-state snapshot and as a standalone deployable
// checkpoint.
type Agent interface {
	gob.GobEncoder
	gob.GobDecoder

	// SelectAction chooses an action for the given flattened
	// observation. With train set, the agent may explore; without it,
	// action selection is greedy and the agent's internal counters are
	// left untouched.
	SelectAction(state []float64, train bool) (int, error)

	// LearnFromBatch performs a single learning update on a batch of
	// transitions and returns the update's loss
	LearnFromBatch(batch *expreplay.Batch) (float64, error)

	// Train sets the agent into training mode
	Train()

	// Eval sets the agent into evaluation mode
	Eval()

	// ActionSteps returns the number of training-mode actions the
	// agent has selected over its lifetime
	ActionSteps() int

	// LearningSteps returns the number of learning updates the agent
	// has performed over its lifetime
	LearningSteps() int
}
