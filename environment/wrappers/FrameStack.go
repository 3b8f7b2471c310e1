// Package wrappers implements environment wrappers that transform the
// observations or rewards of an underlying environment
package wrappers

import (
	"fmt"

	env "github.com/NishantPrabhu/RL-Experiments/environment"
	"github.com/NishantPrabhu/RL-Experiments/timestep"
)

// FrameStack wraps an environment that produces single frames and
// exposes observations holding the most recent stackSize frames,
// newest last. On Reset the window is filled with copies of the first
// frame so that observations always have the full stacked shape.
type FrameStack struct {
	env.Environment
	stackSize int
	frameLen  int
	window    []float64
}

// NewFrameStack wraps e with a rolling window of stackSize frames
func NewFrameStack(e env.Environment, stackSize int) (*FrameStack, error) {
	if stackSize < 1 {
		return nil, fmt.Errorf("framestack: stack size must be >= 1 "+
			"\n\thave(%v)", stackSize)
	}
	inner := e.ObservationStack()
	if inner.StackSize != 1 {
		return nil, fmt.Errorf("framestack: wrapped environment must "+
			"produce single frames \n\thave(%v)", inner.StackSize)
	}

	return &FrameStack{
		Environment: e,
		stackSize:   stackSize,
		frameLen:    inner.FrameLen(),
		window:      make([]float64, stackSize*inner.FrameLen()),
	}, nil
}

// Reset resets the wrapped environment and fills the frame window with
// the first observation.
func (f *FrameStack) Reset() ([]float64, error) {
	frame, err := f.Environment.Reset()
	if err != nil {
		return nil, err
	}
	for i := 0; i < f.stackSize; i++ {
		copy(f.window[i*f.frameLen:(i+1)*f.frameLen], frame)
	}
	return f.observation(), nil
}

// Step steps the wrapped environment and shifts the new frame into the
// window.
func (f *FrameStack) Step(action int) ([]float64, float64, bool, error) {
	frame, reward, done, err := f.Environment.Step(action)
	if err != nil {
		return nil, 0, false, err
	}
	copy(f.window, f.window[f.frameLen:])
	copy(f.window[(f.stackSize-1)*f.frameLen:], frame)
	return f.observation(), reward, done, nil
}

// ObservationStack returns the stacked frame geometry
func (f *FrameStack) ObservationStack() timestep.Stack {
	inner := f.Environment.ObservationStack()
	return timestep.NewStack(f.stackSize, inner.Height, inner.Width)
}

// observation returns a copy of the current window so that callers can
// retain observations across steps.
func (f *FrameStack) observation() []float64 {
	obs := make([]float64, len(f.window))
	copy(obs, f.window)
	return obs
}
