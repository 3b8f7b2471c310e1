package expreplay

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NishantPrabhu/RL-Experiments/timestep"
)

// testStack is a small frame geometry so that tests stay fast. The
// buffer semantics do not depend on the frame size.
var testStack = timestep.NewStack(2, 4, 4)

// markerTransition returns a transition whose reward field carries a
// distinct marker so that tests can identify which insert ended up at
// which ring position.
func markerTransition(marker int) timestep.Transition {
	state := make([]float64, testStack.Len())
	nextState := make([]float64, testStack.Len())
	value := float64(marker%256) / 255.0
	for i := range state {
		state[i] = value
		nextState[i] = value
	}
	return timestep.New(state, marker%4, nextState, float64(marker),
		marker%5 == 0)
}

func newTestMemory(t *testing.T, capacity int) *Memory {
	t.Helper()
	mem, err := New(capacity, testStack, 42)
	require.NoError(t, err)
	return mem
}

func TestNewRejectsInvalidArguments(t *testing.T) {
	_, err := New(0, testStack, 1)
	require.Error(t, err)

	_, err = New(10, timestep.Stack{}, 1)
	require.Error(t, err)
}

func TestRingInvariant(t *testing.T) {
	capacity := 8
	for _, inserts := range []int{0, 1, 7, 8, 9, 20, 35} {
		mem := newTestMemory(t, capacity)
		for i := 0; i < inserts; i++ {
			require.NoError(t, mem.Add(markerTransition(i)))
		}

		wantFilled := inserts
		if wantFilled > capacity {
			wantFilled = capacity
		}
		require.Equal(t, wantFilled, mem.Filled(), "inserts=%v", inserts)
		require.Equal(t, inserts%capacity, mem.Position(), "inserts=%v",
			inserts)
	}
}

func TestOverwriteCorrectness(t *testing.T) {
	// Insert 15 distinctly marked transitions into a 10-slot ring. The
	// oldest 5 entries must have been overwritten in place.
	mem := newTestMemory(t, 10)
	for i := 0; i < 15; i++ {
		require.NoError(t, mem.Add(markerTransition(i)))
	}

	require.Equal(t, 10, mem.Filled())
	require.Equal(t, 5, mem.Position())

	wantMarkers := []float32{10, 11, 12, 13, 14, 5, 6, 7, 8, 9}
	require.Equal(t, wantMarkers, mem.rewards)
}

func TestBatchReturnsDistinctSamples(t *testing.T) {
	mem := newTestMemory(t, 64)
	for i := 0; i < 40; i++ {
		require.NoError(t, mem.Add(markerTransition(i)))
	}

	for trial := 0; trial < 25; trial++ {
		batch, err := mem.Batch(16)
		require.NoError(t, err)
		require.Equal(t, 16, batch.Size())

		// Markers are unique per insert, so repeated markers in a
		// single batch would mean an index was drawn twice.
		seen := make(map[float64]bool, 16)
		for _, marker := range batch.Rewards {
			require.False(t, seen[marker], "marker %v sampled twice", marker)
			require.GreaterOrEqual(t, marker, 0.0)
			require.Less(t, marker, 40.0)
			seen[marker] = true
		}
	}
}

func TestBatchDoesNotMutateBuffer(t *testing.T) {
	mem := newTestMemory(t, 16)
	for i := 0; i < 10; i++ {
		require.NoError(t, mem.Add(markerTransition(i)))
	}

	_, err := mem.Batch(4)
	require.NoError(t, err)
	require.Equal(t, 10, mem.Filled())
	require.Equal(t, 10, mem.Position())
}

func TestBatchRequiresStrictlyFewerSamplesThanFilled(t *testing.T) {
	mem := newTestMemory(t, 16)

	_, err := mem.Batch(1)
	require.True(t, IsEmptyMemory(err))

	for i := 0; i < 8; i++ {
		require.NoError(t, mem.Add(markerTransition(i)))
	}

	_, err = mem.Batch(8)
	require.True(t, IsInsufficientSamples(err))

	_, err = mem.Batch(9)
	require.True(t, IsInsufficientSamples(err))

	_, err = mem.Batch(7)
	require.NoError(t, err)
}

func TestRoundTripScaling(t *testing.T) {
	mem := newTestMemory(t, 8)

	// A state with pixel intensities sweeping [0, 1]
	state := make([]float64, testStack.Len())
	for i := range state {
		state[i] = float64(i) / float64(len(state)-1)
	}
	next := make([]float64, testStack.Len())
	copy(next, state)

	require.NoError(t, mem.Add(timestep.New(state, 1, next, 0.5, false)))
	require.NoError(t, mem.Add(markerTransition(1)))

	// Sample until the swept state shows up
	for trial := 0; trial < 100; trial++ {
		batch, err := mem.Batch(1)
		require.NoError(t, err)
		if batch.Rewards[0] != 0.5 {
			continue
		}
		got := batch.State(0)
		for i, want := range state {
			require.LessOrEqual(t, math.Abs(got[i]-want), 1.0/255.0,
				"pixel %v quantization error too large", i)
		}
		return
	}
	t.Fatal("swept state never sampled")
}

func TestAddValidatesShapes(t *testing.T) {
	mem := newTestMemory(t, 8)

	bad := markerTransition(0)
	bad.State = bad.State[:3]
	require.Error(t, mem.Add(bad))

	bad = markerTransition(0)
	bad.Action = 300
	require.Error(t, mem.Add(bad))
}

func TestGobRoundTrip(t *testing.T) {
	mem := newTestMemory(t, 10)
	for i := 0; i < 13; i++ {
		require.NoError(t, mem.Add(markerTransition(i)))
	}

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(mem))

	restored := &Memory{}
	require.NoError(t, gob.NewDecoder(&buf).Decode(restored))

	require.Equal(t, mem.Filled(), restored.Filled())
	require.Equal(t, mem.Position(), restored.Position())
	require.Equal(t, mem.Capacity(), restored.Capacity())
	require.Equal(t, mem.Stack(), restored.Stack())
	require.Equal(t, mem.states, restored.states)
	require.Equal(t, mem.nextStates, restored.nextStates)
	require.Equal(t, mem.actions, restored.actions)
	require.Equal(t, mem.rewards, restored.rewards)
	require.Equal(t, mem.terminal, restored.terminal)

	// The restored memory must keep functioning as a ring
	require.NoError(t, restored.Add(markerTransition(13)))
	require.Equal(t, 4, restored.Position())
}
