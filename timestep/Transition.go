// Package timestep implements single steps of the agent-environment
// interaction
package timestep

import "fmt"

// Transition packages together a single step of environment
// interaction: the state the agent observed, the action it took, the
// state that resulted, the reward received, and whether the episode
// terminated on this step.
//
// State and NextState are flattened stacks of grayscale frames with
// pixel intensities in [0, 1]. Their layout is described by a Stack.
type Transition struct {
	State     []float64
	Action    int
	NextState []float64
	Reward    float64
	Done      bool
}

// New creates and returns a new Transition
func New(state []float64, action int, nextState []float64, reward float64,
	done bool) Transition {
	return Transition{
		State:     state,
		Action:    action,
		NextState: nextState,
		Reward:    reward,
		Done:      done,
	}
}

func (t Transition) String() string {
	str := "Transition | Action: %v  |  Reward: %.2f  |  Done: %v  |  " +
		"Features: %v"
	return fmt.Sprintf(str, t.Action, t.Reward, t.Done, len(t.State))
}

// Stack describes the geometry of a stacked-frame observation: a
// sequence of StackSize single-channel Height x Width images.
type Stack struct {
	StackSize int
	Height    int
	Width     int
}

// NewStack returns the geometry of a stack of size single-channel
// height x width frames
func NewStack(size, height, width int) Stack {
	return Stack{StackSize: size, Height: height, Width: width}
}

// FrameLen returns the number of pixels in a single frame
func (s Stack) FrameLen() int {
	return s.Height * s.Width
}

// Len returns the number of pixels in a full stacked observation
func (s Stack) Len() int {
	return s.StackSize * s.Height * s.Width
}
