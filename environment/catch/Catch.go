// Package catch implements a minimal Atari-style pixel environment.
//
// A ball drops from a random column at the top of the screen and the
// agent slides a paddle along the bottom row to catch it. The episode
// ends when the ball reaches the bottom: the reward is +1 if the
// paddle is under the ball and -1 otherwise, with 0 reward on all
// earlier steps. Observations are single 84x84 grayscale frames
// rendered off-screen; wrap the environment with wrappers.FrameStack
// to obtain stacked observations.
package catch

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
	"golang.org/x/exp/rand"

	env "github.com/NishantPrabhu/RL-Experiments/environment"
	"github.com/NishantPrabhu/RL-Experiments/timestep"
)

const (
	// ScreenSize is the width and height of rendered frames in pixels
	ScreenSize = 84

	// Rows and Cols define the logical grid the ball and paddle move on
	Rows = 21
	Cols = 21

	// Actions
	MoveLeft  = 0
	Stay      = 1
	MoveRight = 2

	numActions = 3
)

// Catch implements the environment. It renders the logical grid into
// an off-screen gg context and extracts the grayscale pixel values of
// each frame.
type Catch struct {
	ballRow   int
	ballCol   int
	paddleCol int
	done      bool
	started   bool

	rng         *rand.Rand
	actionSpace env.ActionSpace
	ctx         *gg.Context
}

// New creates and returns a new Catch environment
func New(seed uint64) (*Catch, error) {
	return &Catch{
		rng:         rand.New(rand.NewSource(seed)),
		actionSpace: env.NewDiscreteActionSpace(numActions, seed),
		ctx:         gg.NewContext(ScreenSize, ScreenSize),
	}, nil
}

// Reset starts a new episode with the ball in a random column and the
// paddle centered.
func (c *Catch) Reset() ([]float64, error) {
	c.ballRow = 0
	c.ballCol = c.rng.Intn(Cols)
	c.paddleCol = Cols / 2
	c.done = false
	c.started = true
	return c.render(), nil
}

// Step advances the environment a single tick: the paddle moves
// according to the action and the ball falls one row.
func (c *Catch) Step(action int) ([]float64, float64, bool, error) {
	if !c.started {
		return nil, 0, false, fmt.Errorf("step: environment not reset")
	}
	if c.done {
		return nil, 0, false, fmt.Errorf("step: episode finished, reset " +
			"the environment before stepping")
	}
	if action < 0 || action >= numActions {
		return nil, 0, false, fmt.Errorf("step: invalid action \n\twant"+
			"[0, %v) \n\thave(%v)", numActions, action)
	}

	switch action {
	case MoveLeft:
		if c.paddleCol > 0 {
			c.paddleCol--
		}
	case MoveRight:
		if c.paddleCol < Cols-1 {
			c.paddleCol++
		}
	}

	c.ballRow++

	var reward float64
	if c.ballRow >= Rows-1 {
		c.done = true
		if c.ballCol == c.paddleCol {
			reward = 1.0
		} else {
			reward = -1.0
		}
	}

	return c.render(), reward, c.done, nil
}

// ActionSpace returns the environment's three-action discrete space
func (c *Catch) ActionSpace() env.ActionSpace {
	return c.actionSpace
}

// ObservationStack returns the geometry of single rendered frames
func (c *Catch) ObservationStack() timestep.Stack {
	return timestep.NewStack(1, ScreenSize, ScreenSize)
}

// render draws the current grid into the off-screen context and
// returns the frame's grayscale intensities flattened row-major.
func (c *Catch) render() []float64 {
	cell := float64(ScreenSize) / float64(Cols)

	c.ctx.SetRGB(0, 0, 0)
	c.ctx.Clear()
	c.ctx.SetRGB(1, 1, 1)

	// Ball
	c.ctx.DrawRectangle(float64(c.ballCol)*cell, float64(c.ballRow)*cell,
		cell, cell)
	// Paddle, one cell high on the bottom row
	c.ctx.DrawRectangle(float64(c.paddleCol)*cell,
		float64(Rows-1)*cell, cell, cell)
	c.ctx.Fill()

	return grayscale(c.ctx.Image())
}

// grayscale flattens an image into row-major pixel intensities in
// [0, 1]
func grayscale(img image.Image) []float64 {
	bounds := img.Bounds()
	frame := make([]float64, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			frame = append(frame, float64(r)/65535.0)
		}
	}
	return frame
}
