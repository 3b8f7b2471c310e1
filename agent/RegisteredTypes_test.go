package agent

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NishantPrabhu/RL-Experiments/expreplay"
)

type fakeAgent struct{ spec Spec }

func (f *fakeAgent) SelectAction(state []float64, train bool) (int, error) {
	return 0, nil
}

func (f *fakeAgent) LearnFromBatch(batch *expreplay.Batch) (float64,
	error) {
	return 0, nil
}

func (f *fakeAgent) Train() {}

func (f *fakeAgent) Eval() {}

func (f *fakeAgent) ActionSteps() int { return 0 }

func (f *fakeAgent) LearningSteps() int { return 0 }

func (f *fakeAgent) GobEncode() ([]byte, error) { return nil, nil }

func (f *fakeAgent) GobDecode(in []byte) error { return nil }

func TestRegisterAndCreate(t *testing.T) {
	Register("fake", func(spec Spec,
		opts map[string]interface{}) (Agent, error) {
		return &fakeAgent{spec: spec}, nil
	})

	spec := Spec{Features: 4, NumActions: 2, BatchSize: 8, Seed: 1}
	created, err := Create("fake", spec, nil)
	require.NoError(t, err)
	require.Equal(t, spec, created.(*fakeAgent).spec)
	require.Contains(t, RegisteredTypes(), "fake")

	require.Panics(t, func() { Register("fake", nil) })
}

func TestCreateFailsForUnknownType(t *testing.T) {
	_, err := Create("no-such-agent", Spec{}, nil)
	require.Error(t, err)
}
