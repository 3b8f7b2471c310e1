// Package network implements neural network function approximators
// using Gorgonia
package network

import (
	"encoding/gob"

	G "gorgonia.org/gorgonia"
)

// NeuralNet implements a value-function approximator. A NeuralNet
// populates a gorgonia.ExprGraph; it does not own a VM. An external VM
// built on Graph() must be run after SetInput() to produce a
// prediction, which can then be read with Output().
type NeuralNet interface {
	gob.GobEncoder
	gob.GobDecoder

	Graph() *G.ExprGraph

	// CloneWithBatch returns a structurally identical network with a
	// new input batch size on a fresh graph, with copied weights
	CloneWithBatch(int) (NeuralNet, error)

	BatchSize() int
	Features() int
	Outputs() int

	// SetInput sets the value of the input node before running the
	// forward pass
	SetInput([]float64) error

	// Set sets the weights of the network to equal those of another
	// network of the same structure
	Set(NeuralNet) error

	// Polyak sets the weights of the network to a Polyak average
	// between its own weights and those of another network
	Polyak(NeuralNet, float64) error

	Learnables() G.Nodes
	Model() []G.ValueGrad

	// Prediction returns the node holding the network output
	Prediction() *G.Node

	// Output returns the value of the prediction node from the last
	// run of a VM on the network's graph
	Output() G.Value
}
