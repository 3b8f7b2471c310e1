package catch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStepRequiresReset(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)

	_, _, _, err = c.Step(Stay)
	require.Error(t, err)
}

func TestResetReturnsFullFrame(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)

	obs, err := c.Reset()
	require.NoError(t, err)
	require.Len(t, obs, ScreenSize*ScreenSize)
	require.Equal(t, c.ObservationStack().Len(), len(obs))

	for _, v := range obs {
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 1.0)
	}
}

func TestStepRejectsInvalidActions(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	_, err = c.Reset()
	require.NoError(t, err)

	for _, action := range []int{-1, 3} {
		_, _, _, err := c.Step(action)
		require.Error(t, err)
	}
}

func TestEpisodeEndsWhenBallReachesBottom(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	_, err = c.Reset()
	require.NoError(t, err)

	var done bool
	var reward float64
	steps := 0
	for !done {
		_, reward, done, err = c.Step(Stay)
		require.NoError(t, err)
		require.Less(t, steps, Rows, "episode did not terminate")

		steps++
		if !done {
			require.Zero(t, reward)
		}
	}

	require.Equal(t, Rows-1, steps)
	require.Contains(t, []float64{1, -1}, reward)

	// Stepping a finished episode fails until the next Reset
	_, _, _, err = c.Step(Stay)
	require.Error(t, err)
	_, err = c.Reset()
	require.NoError(t, err)
	_, _, _, err = c.Step(Stay)
	require.NoError(t, err)
}

func TestPaddleTrackingBallIsRewarded(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)
	_, err = c.Reset()
	require.NoError(t, err)

	// Chase the ball's column every step
	var done bool
	var reward float64
	for !done {
		action := Stay
		if c.paddleCol < c.ballCol {
			action = MoveRight
		} else if c.paddleCol > c.ballCol {
			action = MoveLeft
		}
		_, reward, done, err = c.Step(action)
		require.NoError(t, err)
	}

	// The paddle starts centered and moves one column per row the
	// ball falls, so it always arrives in time on a 21x21 grid.
	require.Equal(t, 1.0, reward)
}

func TestActionSpace(t *testing.T) {
	c, err := New(10)
	require.NoError(t, err)

	space := c.ActionSpace()
	require.Equal(t, 3, space.N())
	for i := 0; i < 100; i++ {
		action := space.Sample()
		require.GreaterOrEqual(t, action, 0)
		require.Less(t, action, space.N())
	}
}
