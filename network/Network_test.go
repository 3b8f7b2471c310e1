package network

import (
	"testing"

	"github.com/stretchr/testify/require"
	G "gorgonia.org/gorgonia"
)

func TestNewMultiHeadMLPValidatesLayerDescriptions(t *testing.T) {
	hidden := []int{8, 8}
	biases := []bool{true, true}
	activations := []*Activation{ReLU(), ReLU()}

	// Mismatched activations
	_, err := NewMultiHeadMLP(4, 1, 3, G.NewGraph(), hidden, biases,
		G.GlorotU(1.0), activations[:1])
	require.Error(t, err)

	// Mismatched biases
	_, err = NewMultiHeadMLP(4, 1, 3, G.NewGraph(), hidden, biases[:1],
		G.GlorotU(1.0), activations)
	require.Error(t, err)

	// Non-positive dimensions
	for _, dims := range [][3]int{{0, 1, 3}, {4, 0, 3}, {4, 1, 0}} {
		_, err = NewMultiHeadMLP(dims[0], dims[1], dims[2], G.NewGraph(),
			hidden, biases, G.GlorotU(1.0), activations)
		require.Error(t, err)
	}
}

func TestNewMultiHeadMLPShape(t *testing.T) {
	net, err := NewMultiHeadMLP(16, 4, 3, G.NewGraph(), []int{8},
		[]bool{true}, G.GlorotU(1.0), []*Activation{ReLU()})
	require.NoError(t, err)

	require.Equal(t, 16, net.Features())
	require.Equal(t, 4, net.BatchSize())
	require.Equal(t, 3, net.Outputs())

	// One weight and one bias per layer, hidden plus output
	require.Len(t, net.Learnables(), 4)

	require.Error(t, net.SetInput(make([]float64, 3)))
	require.NoError(t, net.SetInput(make([]float64, 16*4)))
}

func TestActivationOf(t *testing.T) {
	for _, name := range []string{"relu", "tanh", "identity"} {
		act, err := ActivationOf(name)
		require.NoError(t, err)
		require.Equal(t, name, act.String())
	}

	_, err := ActivationOf("swish")
	require.Error(t, err)
}

func TestActivationGobRoundTrip(t *testing.T) {
	encoded, err := TanH().GobEncode()
	require.NoError(t, err)

	var decoded Activation
	require.NoError(t, decoded.GobDecode(encoded))
	require.Equal(t, TanH().String(), decoded.String())
}
