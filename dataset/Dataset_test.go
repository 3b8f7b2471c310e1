package dataset

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NishantPrabhu/RL-Experiments/timestep"
)

func testDataset(t *testing.T, size int) *Dataset {
	t.Helper()
	d, err := New(timestep.NewStack(2, 2, 2))
	require.NoError(t, err)

	for i := 0; i < size; i++ {
		state := make([]float64, d.Stack().Len())
		for j := range state {
			state[j] = float64(i) / float64(size)
		}
		require.NoError(t, d.Add(state, i%3))
	}
	return d
}

func TestAddValidatesStateLength(t *testing.T) {
	d, err := New(timestep.NewStack(2, 2, 2))
	require.NoError(t, err)

	require.Error(t, d.Add([]float64{0.5}, 0))
	require.Error(t, d.Add(make([]float64, d.Stack().Len()), -1))
	require.Zero(t, d.Len())
}

func TestSampleRoundTripWithinQuantizationError(t *testing.T) {
	d, err := New(timestep.NewStack(1, 2, 2))
	require.NoError(t, err)

	original := []float64{0.0, 0.25, 0.5, 1.0}
	require.NoError(t, d.Add(original, 2))

	state, action, err := d.Sample(0)
	require.NoError(t, err)
	require.Equal(t, 2, action)
	for i := range original {
		require.LessOrEqual(t, math.Abs(state[i]-original[i]), 1.0/255.0)
	}
}

func TestSplitPartitionsByRatio(t *testing.T) {
	d := testDataset(t, 10)

	train, test, err := d.Split(0.8)
	require.NoError(t, err)
	require.Equal(t, 8, train.Len())
	require.Equal(t, 2, test.Len())

	// The test set is the suffix of the recorded pairs
	_, wantAction, err := d.Sample(8)
	require.NoError(t, err)
	_, gotAction, err := test.Sample(0)
	require.NoError(t, err)
	require.Equal(t, wantAction, gotAction)

	_, _, err = d.Split(1.5)
	require.Error(t, err)
}

func TestShuffleIsDeterministicPerSeed(t *testing.T) {
	first, second := testDataset(t, 30), testDataset(t, 30)
	first.Shuffle(14)
	second.Shuffle(14)

	for i := 0; i < first.Len(); i++ {
		_, firstAction, err := first.Sample(i)
		require.NoError(t, err)
		_, secondAction, err := second.Sample(i)
		require.NoError(t, err)
		require.Equal(t, firstAction, secondAction)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	d := testDataset(t, 5)
	path := filepath.Join(t.TempDir(), "experience.bin")
	require.NoError(t, d.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, d.Len(), loaded.Len())
	require.Equal(t, d.Stack(), loaded.Stack())

	for i := 0; i < d.Len(); i++ {
		wantState, wantAction, err := d.Sample(i)
		require.NoError(t, err)
		gotState, gotAction, err := loaded.Sample(i)
		require.NoError(t, err)
		require.Equal(t, wantState, gotState)
		require.Equal(t, wantAction, gotAction)
	}
}
