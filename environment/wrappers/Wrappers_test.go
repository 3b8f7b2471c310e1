package wrappers

import (
	"testing"

	"github.com/stretchr/testify/require"

	env "github.com/NishantPrabhu/RL-Experiments/environment"
	"github.com/NishantPrabhu/RL-Experiments/timestep"
)

// frameEnv is a single-frame environment whose frames are filled with
// an increasing counter, making window contents easy to assert on.
type frameEnv struct {
	stack  timestep.Stack
	count  float64
	reward float64
}

func newFrameEnv(reward float64) *frameEnv {
	return &frameEnv{stack: timestep.NewStack(1, 2, 2), reward: reward}
}

func (e *frameEnv) frame() []float64 {
	frame := make([]float64, e.stack.FrameLen())
	for i := range frame {
		frame[i] = e.count
	}
	return frame
}

func (e *frameEnv) Reset() ([]float64, error) {
	e.count = 0
	return e.frame(), nil
}

func (e *frameEnv) Step(action int) ([]float64, float64, bool, error) {
	e.count++
	return e.frame(), e.reward, false, nil
}

func (e *frameEnv) ActionSpace() env.ActionSpace {
	return env.NewDiscreteActionSpace(2, 1)
}

func (e *frameEnv) ObservationStack() timestep.Stack {
	return e.stack
}

func TestNewFrameStackValidatesArguments(t *testing.T) {
	_, err := NewFrameStack(newFrameEnv(0), 0)
	require.Error(t, err)

	// Wrapping an already-stacked environment is rejected
	stacked, err := NewFrameStack(newFrameEnv(0), 2)
	require.NoError(t, err)
	_, err = NewFrameStack(stacked, 2)
	require.Error(t, err)
}

func TestFrameStackFillsWindowOnReset(t *testing.T) {
	stacked, err := NewFrameStack(newFrameEnv(0), 3)
	require.NoError(t, err)

	obs, err := stacked.Reset()
	require.NoError(t, err)
	require.Len(t, obs, 3*4)

	// Every slot of the window holds the first frame
	for _, v := range obs {
		require.Zero(t, v)
	}

	stack := stacked.ObservationStack()
	require.Equal(t, timestep.NewStack(3, 2, 2), stack)
}

func TestFrameStackShiftsNewestFrameLast(t *testing.T) {
	stacked, err := NewFrameStack(newFrameEnv(0), 3)
	require.NoError(t, err)
	_, err = stacked.Reset()
	require.NoError(t, err)

	var obs []float64
	for i := 0; i < 2; i++ {
		obs, _, _, err = stacked.Step(0)
		require.NoError(t, err)
	}

	// After two steps the window holds frames 0, 1, 2 oldest first
	want := []float64{0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2}
	require.Equal(t, want, obs)
}

func TestFrameStackObservationsDoNotAlias(t *testing.T) {
	stacked, err := NewFrameStack(newFrameEnv(0), 2)
	require.NoError(t, err)

	first, err := stacked.Reset()
	require.NoError(t, err)
	snapshot := append([]float64{}, first...)

	_, _, _, err = stacked.Step(0)
	require.NoError(t, err)
	require.Equal(t, snapshot, first)
}

func TestClipRewardClipsIntoRange(t *testing.T) {
	for _, tc := range []struct {
		reward float64
		want   float64
	}{
		{reward: 3.7, want: 1},
		{reward: -2.2, want: -1},
		{reward: 0.5, want: 0.5},
	} {
		clipped := NewClipReward(newFrameEnv(tc.reward), -1, 1)
		_, err := clipped.Reset()
		require.NoError(t, err)

		_, reward, _, err := clipped.Step(0)
		require.NoError(t, err)
		require.Equal(t, tc.want, reward)
	}
}
