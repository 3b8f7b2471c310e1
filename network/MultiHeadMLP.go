package network

import (
	"bytes"
	"encoding/gob"
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// multiHeadMLP implements a multi-layered perceptron with one output
// head per predicted value. For a Q-network over N discrete actions,
// the network has N heads, each predicting the value of one action.
type multiHeadMLP struct {
	g      *G.ExprGraph
	layers []*fcLayer
	input  *G.Node

	numOutputs int
	numInputs  int
	batchSize  int

	// Layer structure, needed to rebuild the network when decoding
	hiddenSizes []int
	biases      []bool
	activations []*Activation

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    G.Value
}

// NewMultiHeadMLP creates and returns a new multi-layered perceptron
// with outputs output heads, populating the graph g. A final linear
// layer with a bias unit and no activation is always added so that the
// network output size equals outputs; hiddenSizes, biases and
// activations describe the hidden layers only. The init parameter
// determines the weight initialization scheme.
//
// Pixel observations should be flattened before being input to the
// network.
func NewMultiHeadMLP(features, batch, outputs int, g *G.ExprGraph,
	hiddenSizes []int, biases []bool, init G.InitWFn,
	activations []*Activation) (NeuralNet, error) {
	if len(hiddenSizes) != len(activations) {
		msg := "newmultiheadmlp: invalid number of activations" +
			"\n\twant(%d)\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(activations))
	}
	if len(hiddenSizes) != len(biases) {
		msg := "newmultiheadmlp: invalid number of biases\n\twant(%d)" +
			"\n\thave(%d)"
		return nil, fmt.Errorf(msg, len(hiddenSizes), len(biases))
	}

	// Output layer predicting one value per head
	sizes := append(append([]int{}, hiddenSizes...), outputs)
	withBias := append(append([]bool{}, biases...), true)
	acts := append(append([]*Activation{}, activations...), Identity())

	return newMultiHeadMLP(features, batch, outputs, g, sizes, withBias,
		init, acts)
}

// newMultiHeadMLP builds the network from a full layer description,
// including the output layer.
func newMultiHeadMLP(features, batch, outputs int, g *G.ExprGraph,
	sizes []int, biases []bool, init G.InitWFn,
	activations []*Activation) (NeuralNet, error) {
	if features < 1 || batch < 1 || outputs < 1 {
		msg := "newmultiheadmlp: features, batch, and outputs must be " +
			"positive \n\thave(%v, %v, %v)"
		return nil, fmt.Errorf(msg, features, batch, outputs)
	}

	input := G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(batch, features),
		G.WithName("input"),
		G.WithInit(G.Zeroes()),
	)

	layers := make([]*fcLayer, len(sizes))
	in := features
	for i, out := range sizes {
		layers[i] = newFCLayer(g, in, out, i, biases[i], init, activations[i])
		in = out
	}

	net := &multiHeadMLP{
		g:           g,
		layers:      layers,
		input:       input,
		numOutputs:  outputs,
		numInputs:   features,
		batchSize:   batch,
		hiddenSizes: sizes,
		biases:      biases,
		activations: activations,
	}
	if _, err := net.fwd(input); err != nil {
		return nil, fmt.Errorf("newmultiheadmlp: could not compute forward "+
			"pass: %v", err)
	}
	return net, nil
}

// fwd performs the forward pass of the multiHeadMLP on the input node
func (e *multiHeadMLP) fwd(input *G.Node) (*G.Node, error) {
	pred := input
	var err error
	for i, l := range e.layers {
		if pred, err = l.fwd(pred); err != nil {
			msg := "fwd: could not compute forward pass of layer %v: %v"
			return nil, fmt.Errorf(msg, i, err)
		}
	}

	e.prediction = pred
	G.Read(e.prediction, &e.predVal)
	return pred, nil
}

// Graph returns the computational graph of the multiHeadMLP
func (e *multiHeadMLP) Graph() *G.ExprGraph {
	return e.g
}

// CloneWithBatch clones a multiHeadMLP onto a fresh graph with a new
// input batch size, copying the weights.
func (e *multiHeadMLP) CloneWithBatch(batchSize int) (NeuralNet, error) {
	net, err := newMultiHeadMLP(e.numInputs, batchSize, e.numOutputs,
		G.NewGraph(), e.hiddenSizes, e.biases, G.Zeroes(), e.activations)
	if err != nil {
		return nil, fmt.Errorf("clonewithbatch: could not clone: %v", err)
	}
	if err := net.Set(e); err != nil {
		return nil, fmt.Errorf("clonewithbatch: could not copy weights: %v",
			err)
	}
	return net, nil
}

// BatchSize returns the batch size of inputs to the network
func (e *multiHeadMLP) BatchSize() int {
	return e.batchSize
}

// Features returns the number of features in a single input
// observation vector
func (e *multiHeadMLP) Features() int {
	return e.numInputs
}

// Outputs returns the number of output heads of the network
func (e *multiHeadMLP) Outputs() int {
	return e.numOutputs
}

// SetInput sets the value of the input node before running the forward
// pass.
func (e *multiHeadMLP) SetInput(input []float64) error {
	if len(input) != e.numInputs*e.batchSize {
		return fmt.Errorf("setinput: invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v)", e.numInputs*e.batchSize, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(e.input.Shape()...),
	)
	return G.Let(e.input, inputTensor)
}

// Set sets the weights of the multiHeadMLP to be equal to the weights
// of another NeuralNet of identical structure
func (e *multiHeadMLP) Set(source NeuralNet) error {
	sourceNodes := source.Learnables()
	nodes := e.Learnables()
	if len(nodes) != len(sourceNodes) {
		return fmt.Errorf("set: incompatible network structure \n\twant(%v "+
			"learnables) \n\thave(%v)", len(nodes), len(sourceNodes))
	}
	for i, destLearnable := range nodes {
		sourceLearnable := sourceNodes[i].Clone()
		err := G.Let(destLearnable, sourceLearnable.(*G.Node).Value())
		if err != nil {
			return err
		}
	}
	return nil
}

// Polyak sets the weights of the multiHeadMLP to a Polyak average
// between its existing weights and the weights of another NeuralNet
func (e *multiHeadMLP) Polyak(source NeuralNet, tau float64) error {
	sourceNodes := source.Learnables()
	nodes := e.Learnables()
	for i := range nodes {
		weights := nodes[i].Value().(*tensor.Dense)
		sourceWeights := sourceNodes[i].Value().(*tensor.Dense)

		weights, err := weights.MulScalar(1-tau, true)
		if err != nil {
			return err
		}
		sourceWeights, err = sourceWeights.MulScalar(tau, true)
		if err != nil {
			return err
		}

		newWeights, err := weights.Add(sourceWeights)
		if err != nil {
			return err
		}
		if err := G.Let(nodes[i], newWeights); err != nil {
			return err
		}
	}
	return nil
}

// Learnables returns the learnable nodes in a multiHeadMLP
func (e *multiHeadMLP) Learnables() G.Nodes {
	if e.learnables == nil {
		e.learnables = make(G.Nodes, 0, 2*len(e.layers))
		for i := range e.layers {
			e.learnables = append(e.learnables, e.layers[i].weights)
			if bias := e.layers[i].bias; bias != nil {
				e.learnables = append(e.learnables, bias)
			}
		}
	}
	return e.learnables
}

// Model returns the learnable nodes with their gradients
func (e *multiHeadMLP) Model() []G.ValueGrad {
	if e.model == nil {
		e.model = make([]G.ValueGrad, 0, len(e.Learnables()))
		for _, node := range e.Learnables() {
			e.model = append(e.model, node)
		}
	}
	return e.model
}

// Prediction returns the node of the computational graph that stores
// the output of the multiHeadMLP
func (e *multiHeadMLP) Prediction() *G.Node {
	return e.prediction
}

// Output returns the output of the multiHeadMLP from the last VM run
func (e *multiHeadMLP) Output() G.Value {
	return e.predVal
}

// GobEncode implements the gob.GobEncoder interface
func (e *multiHeadMLP) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	structure := []interface{}{
		e.numInputs, e.batchSize, e.numOutputs,
		e.hiddenSizes, e.biases, e.activations,
	}
	for _, field := range structure {
		if err := enc.Encode(field); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode network "+
				"structure: %v", err)
		}
	}

	for i, learnable := range e.Learnables() {
		weights := learnable.Value().(*tensor.Dense)
		if err := enc.Encode(weights); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode learnable "+
				"%v: %v", i, err)
		}
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The network is
// rebuilt on a fresh graph and its weights restored in place.
func (e *multiHeadMLP) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	var numInputs, batchSize, numOutputs int
	var hiddenSizes []int
	var biases []bool
	var activations []*Activation
	structure := []interface{}{
		&numInputs, &batchSize, &numOutputs,
		&hiddenSizes, &biases, &activations,
	}
	for _, field := range structure {
		if err := dec.Decode(field); err != nil {
			return fmt.Errorf("gobdecode: could not decode network "+
				"structure: %v", err)
		}
	}

	net, err := newMultiHeadMLP(numInputs, batchSize, numOutputs,
		G.NewGraph(), hiddenSizes, biases, G.Zeroes(), activations)
	if err != nil {
		return fmt.Errorf("gobdecode: could not rebuild network: %v", err)
	}
	newMLP := net.(*multiHeadMLP)

	for i, learnable := range newMLP.Learnables() {
		var weights *tensor.Dense
		if err := dec.Decode(&weights); err != nil {
			return fmt.Errorf("gobdecode: could not decode learnable %v: %v",
				i, err)
		}
		if err := G.Let(learnable, weights); err != nil {
			return fmt.Errorf("gobdecode: could not restore learnable %v: %v",
				i, err)
		}
	}

	*e = *newMLP
	return nil
}
