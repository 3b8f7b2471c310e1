// Package environment outlines the interfaces needed to implement
// concrete pixel environments
package environment

import (
	"golang.org/x/exp/rand"

	"github.com/NishantPrabhu/RL-Experiments/timestep"
)

// ActionSpace describes a discrete set of environment actions,
// enumerated from 0.
type ActionSpace interface {
	// N returns the number of available actions
	N() int

	// Sample returns a uniformly random action
	Sample() int
}

// Environment implements a simulated environment producing stacked
// grayscale frame observations. Observations returned by Reset and
// Step are flattened frame stacks with pixel intensities in [0, 1],
// laid out according to ObservationStack.
//
// Environments run episodes to their natural terminal state: once Step
// returns done, Reset must be called before stepping again.
type Environment interface {
	// Reset starts a new episode and returns its first observation
	Reset() ([]float64, error)

	// Step executes an action and returns the next observation, the
	// reward received, and whether the episode terminated
	Step(action int) ([]float64, float64, bool, error)

	ActionSpace() ActionSpace

	// ObservationStack returns the frame geometry of observations
	ObservationStack() timestep.Stack
}

// discreteActionSpace implements ActionSpace for n actions with an
// internal RNG for uniform sampling.
type discreteActionSpace struct {
	n   int
	rng *rand.Rand
}

// NewDiscreteActionSpace returns an ActionSpace of n actions whose
// Sample method draws from an RNG seeded with seed.
func NewDiscreteActionSpace(n int, seed uint64) ActionSpace {
	return &discreteActionSpace{
		n:   n,
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (d *discreteActionSpace) N() int {
	return d.n
}

func (d *discreteActionSpace) Sample() int {
	return d.rng.Intn(d.n)
}
