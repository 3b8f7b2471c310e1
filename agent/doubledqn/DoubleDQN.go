// Package doubledqn implements the Double DQN algorithm with
// target networks and epsilon greedy exploration:
//
// https://arxiv.org/abs/1509.06461
package doubledqn

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"golang.org/x/exp/rand"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/NishantPrabhu/RL-Experiments/agent"
	"github.com/NishantPrabhu/RL-Experiments/expreplay"
	"github.com/NishantPrabhu/RL-Experiments/initwfn"
	"github.com/NishantPrabhu/RL-Experiments/network"
	"github.com/NishantPrabhu/RL-Experiments/solver"
	"github.com/NishantPrabhu/RL-Experiments/utils/floatutils"
)

// DoubleDQN implements the Double DQN algorithm. It maintains four
// views of the Q-function:
//
//	trainNet     learning network, updated by the solver
//	behaviourNet batch-1 copy of trainNet, selects actions
//	onlineNet    batch-B copy of trainNet, evaluates next states to
//	             choose the maximizing action of the learning target
//	targetNet    batch-B target network, evaluates the action chosen
//	             by onlineNet
//
// behaviourNet and onlineNet are kept in sync with trainNet after
// every learning step. targetNet lags behind, synchronized every
// TargetUpdateInterval learning steps.
type DoubleDQN struct {
	config Config
	spec   agent.Spec

	trainNet network.NeuralNet
	trainVM  G.VM
	solver   *solver.Solver

	// Placeholders of the learning graph
	selectedActions *G.Node
	targets         *G.Node
	lossVal         G.Value

	behaviourNet network.NeuralNet
	behaviourVM  G.VM

	onlineNet network.NeuralNet
	onlineVM  G.VM

	targetNet network.NeuralNet
	targetVM  G.VM

	actionSteps   int
	learningSteps int
	eval          bool
	rng           *rand.Rand
}

// New creates a Double DQN agent for an environment with
// spec.Features flattened observation components and spec.NumActions
// discrete actions.
func New(spec agent.Spec, config Config) (*DoubleDQN, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: invalid configuration: %v", err)
	}
	if spec.Features < 1 || spec.NumActions < 2 || spec.BatchSize < 1 {
		return nil, fmt.Errorf("new: invalid spec \n\thave(features=%v, "+
			"actions=%v, batch=%v)", spec.Features, spec.NumActions,
			spec.BatchSize)
	}

	act, err := network.ActivationOf(config.Activation)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	activations := make([]*network.Activation, len(config.HiddenSizes))
	biases := make([]bool, len(config.HiddenSizes))
	for i := range config.HiddenSizes {
		activations[i] = act
		biases[i] = true
	}

	init, err := initwfn.New(initwfn.Type(config.InitWFn), config.Gain)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	d := &DoubleDQN{
		config: config,
		spec:   spec,
		rng:    rand.New(rand.NewSource(spec.Seed)),
	}

	// Learning network and its loss
	g := G.NewGraph()
	d.trainNet, err = network.NewMultiHeadMLP(spec.Features, spec.BatchSize,
		spec.NumActions, g, config.HiddenSizes, biases, init.InitWFn(),
		activations)
	if err != nil {
		return nil, fmt.Errorf("new: could not create learning network: %v",
			err)
	}
	if err := d.buildLoss(g); err != nil {
		return nil, err
	}
	d.trainVM = G.NewTapeMachine(g,
		G.BindDualValues(d.trainNet.Learnables()...))

	d.solver, err = solver.New(solver.Type(config.Solver), config.StepSize,
		spec.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	// Forward-only copies
	d.behaviourNet, err = d.trainNet.CloneWithBatch(1)
	if err != nil {
		return nil, fmt.Errorf("new: could not create behaviour network: %v",
			err)
	}
	d.behaviourVM = G.NewTapeMachine(d.behaviourNet.Graph())

	d.onlineNet, err = d.trainNet.CloneWithBatch(spec.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("new: could not create online evaluation "+
			"network: %v", err)
	}
	d.onlineVM = G.NewTapeMachine(d.onlineNet.Graph())

	d.targetNet, err = d.trainNet.CloneWithBatch(spec.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("new: could not create target network: %v",
			err)
	}
	d.targetVM = G.NewTapeMachine(d.targetNet.Graph())

	return d, nil
}

// buildLoss adds the MSE loss between the learning targets and the
// predicted values of the selected actions to the learning graph.
func (d *DoubleDQN) buildLoss(g *G.ExprGraph) error {
	batch, actions := d.spec.BatchSize, d.spec.NumActions

	d.selectedActions = G.NewMatrix(
		g,
		tensor.Float64,
		G.WithShape(batch, actions),
		G.WithName("selectedActions"),
		G.WithInit(G.Zeroes()),
	)
	d.targets = G.NewVector(
		g,
		tensor.Float64,
		G.WithShape(batch),
		G.WithName("targets"),
		G.WithInit(G.Zeroes()),
	)

	// Predicted value of each selected action
	selected, err := G.HadamardProd(d.trainNet.Prediction(),
		d.selectedActions)
	if err != nil {
		return fmt.Errorf("buildloss: could not select predictions: %v", err)
	}
	predicted, err := G.Sum(selected, 1)
	if err != nil {
		return fmt.Errorf("buildloss: could not reduce predictions: %v", err)
	}

	errs, err := G.Sub(d.targets, predicted)
	if err != nil {
		return fmt.Errorf("buildloss: could not compute TD errors: %v", err)
	}
	squared, err := G.Square(errs)
	if err != nil {
		return fmt.Errorf("buildloss: could not square TD errors: %v", err)
	}
	cost, err := G.Mean(squared)
	if err != nil {
		return fmt.Errorf("buildloss: could not compute mean loss: %v", err)
	}
	G.Read(cost, &d.lossVal)

	if _, err := G.Grad(cost, d.trainNet.Learnables()...); err != nil {
		return fmt.Errorf("buildloss: could not compute gradient: %v", err)
	}
	return nil
}

// SelectAction returns an action for the argument observation vector.
// In training mode the action is epsilon greedy with respect to the
// behaviour network and the agent's lifetime action counter advances;
// otherwise the action is greedy and no state is mutated.
func (d *DoubleDQN) SelectAction(state []float64, train bool) (int, error) {
	if len(state) != d.spec.Features {
		return 0, fmt.Errorf("selectaction: invalid observation length "+
			"\n\twant(%v) \n\thave(%v)", d.spec.Features, len(state))
	}

	if train && !d.eval {
		d.actionSteps++
		if d.rng.Float64() < d.epsilon() {
			return d.rng.Intn(d.spec.NumActions), nil
		}
	}

	if err := d.behaviourNet.SetInput(state); err != nil {
		return 0, fmt.Errorf("selectaction: %v", err)
	}
	if err := d.behaviourVM.RunAll(); err != nil {
		return 0, fmt.Errorf("selectaction: could not run behaviour "+
			"network: %v", err)
	}
	values := d.behaviourNet.Output().Data().([]float64)
	_, maxIndices := floatutils.MaxSlice(values)
	d.behaviourVM.Reset()

	return maxIndices[d.rng.Intn(len(maxIndices))], nil
}

// epsilon returns the current exploration rate, annealed linearly over
// the agent's lifetime training actions.
func (d *DoubleDQN) epsilon() float64 {
	c := d.config
	if c.EpsilonDecaySteps <= 0 {
		return c.Epsilon
	}
	progress := float64(d.actionSteps) / float64(c.EpsilonDecaySteps)
	if progress > 1 {
		progress = 1
	}
	return c.Epsilon - (c.Epsilon-c.EpsilonMin)*progress
}

// LearnFromBatch performs one Double DQN update on a batch of
// transitions and returns the update's loss. The learning target of a
// transition (s, a, r, s', done) is
//
//	r + γ (1 - done) Q_target(s', argmax_a' Q_online(s', a'))
//
// so that action selection and action evaluation use different
// networks.
func (d *DoubleDQN) LearnFromBatch(batch *expreplay.Batch) (float64, error) {
	if batch.Size() != d.spec.BatchSize {
		return 0, fmt.Errorf("learnfrombatch: invalid batch size "+
			"\n\twant(%v) \n\thave(%v)", d.spec.BatchSize, batch.Size())
	}
	if batch.FeatureSize() != d.spec.Features {
		return 0, fmt.Errorf("learnfrombatch: invalid feature size "+
			"\n\twant(%v) \n\thave(%v)", d.spec.Features, batch.FeatureSize())
	}

	targets, err := d.computeTargets(batch)
	if err != nil {
		return 0, err
	}

	batchSize, numActions := d.spec.BatchSize, d.spec.NumActions
	oneHot := make([]float64, batchSize*numActions)
	for i, a := range batch.Actions {
		oneHot[i*numActions+a] = 1.0
	}

	err = G.Let(d.selectedActions, tensor.New(
		tensor.WithShape(batchSize, numActions),
		tensor.WithBacking(oneHot),
	))
	if err != nil {
		return 0, fmt.Errorf("learnfrombatch: could not set selected "+
			"actions: %v", err)
	}
	err = G.Let(d.targets, tensor.New(
		tensor.WithShape(batchSize),
		tensor.WithBacking(targets),
	))
	if err != nil {
		return 0, fmt.Errorf("learnfrombatch: could not set targets: %v", err)
	}
	if err := d.trainNet.SetInput(batch.States); err != nil {
		return 0, fmt.Errorf("learnfrombatch: %v", err)
	}

	if err := d.trainVM.RunAll(); err != nil {
		return 0, fmt.Errorf("learnfrombatch: could not run learning "+
			"network: %v", err)
	}
	loss := d.lossVal.Data().(float64)
	if err := d.solver.Step(d.trainNet.Model()); err != nil {
		return 0, fmt.Errorf("learnfrombatch: could not step solver: %v", err)
	}
	d.trainVM.Reset()
	d.learningSteps++

	if err := d.sync(); err != nil {
		return 0, fmt.Errorf("learnfrombatch: %v", err)
	}
	return loss, nil
}

// computeTargets evaluates the online and target networks on the
// batch's next states and returns the learning target of each
// transition.
func (d *DoubleDQN) computeTargets(batch *expreplay.Batch) ([]float64,
	error) {
	if err := d.onlineNet.SetInput(batch.NextStates); err != nil {
		return nil, fmt.Errorf("computetargets: %v", err)
	}
	if err := d.onlineVM.RunAll(); err != nil {
		return nil, fmt.Errorf("computetargets: could not run online "+
			"network: %v", err)
	}
	onlineQ := make([]float64, len(d.onlineNet.Output().Data().([]float64)))
	copy(onlineQ, d.onlineNet.Output().Data().([]float64))
	d.onlineVM.Reset()

	if err := d.targetNet.SetInput(batch.NextStates); err != nil {
		return nil, fmt.Errorf("computetargets: %v", err)
	}
	if err := d.targetVM.RunAll(); err != nil {
		return nil, fmt.Errorf("computetargets: could not run target "+
			"network: %v", err)
	}
	targetQ := make([]float64, len(d.targetNet.Output().Data().([]float64)))
	copy(targetQ, d.targetNet.Output().Data().([]float64))
	d.targetVM.Reset()

	numActions := d.spec.NumActions
	targets := make([]float64, batch.Size())
	for i := range targets {
		row := onlineQ[i*numActions : (i+1)*numActions]
		nextAction := floatutils.ArgMax(row)
		nextValue := targetQ[i*numActions+nextAction]
		targets[i] = batch.Rewards[i] +
			d.config.Gamma*(1-batch.Dones[i])*nextValue
	}
	return targets, nil
}

// sync copies the learning network's weights into the forward-only
// networks. The target network is only updated every
// TargetUpdateInterval learning steps.
func (d *DoubleDQN) sync() error {
	if err := d.behaviourNet.Set(d.trainNet); err != nil {
		return fmt.Errorf("sync: could not update behaviour network: %v", err)
	}
	if err := d.onlineNet.Set(d.trainNet); err != nil {
		return fmt.Errorf("sync: could not update online network: %v", err)
	}

	if d.learningSteps%d.config.TargetUpdateInterval != 0 {
		return nil
	}
	if d.config.Tau >= 1.0 {
		if err := d.targetNet.Set(d.trainNet); err != nil {
			return fmt.Errorf("sync: could not update target network: %v",
				err)
		}
		return nil
	}
	if err := d.targetNet.Polyak(d.trainNet, d.config.Tau); err != nil {
		return fmt.Errorf("sync: could not update target network: %v", err)
	}
	return nil
}

// Train sets the agent into training mode
func (d *DoubleDQN) Train() {
	d.eval = false
}

// Eval sets the agent into evaluation mode. In evaluation mode the
// agent acts greedily and its lifetime counters do not advance.
func (d *DoubleDQN) Eval() {
	d.eval = true
}

// ActionSteps returns the number of training-mode actions the agent
// has selected over its lifetime
func (d *DoubleDQN) ActionSteps() int {
	return d.actionSteps
}

// LearningSteps returns the number of learning updates the agent has
// performed over its lifetime
func (d *DoubleDQN) LearningSteps() int {
	return d.learningSteps
}

// GobEncode implements the gob.GobEncoder interface
func (d *DoubleDQN) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	if err := enc.Encode(d.actionSteps); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode action steps: "+
			"%v", err)
	}
	if err := enc.Encode(d.learningSteps); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode learning "+
			"steps: %v", err)
	}

	trainBytes, err := d.trainNet.GobEncode()
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode learning "+
			"network: %v", err)
	}
	if err := enc.Encode(trainBytes); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode learning "+
			"network: %v", err)
	}

	targetBytes, err := d.targetNet.GobEncode()
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode target "+
			"network: %v", err)
	}
	if err := enc.Encode(targetBytes); err != nil {
		return nil, fmt.Errorf("gobencode: could not encode target "+
			"network: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The agent must
// already be constructed with the configuration it was encoded with;
// decoding restores its counters and network weights in place, leaving
// the learning graph intact.
func (d *DoubleDQN) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	if err := dec.Decode(&d.actionSteps); err != nil {
		return fmt.Errorf("gobdecode: could not decode action steps: %v", err)
	}
	if err := dec.Decode(&d.learningSteps); err != nil {
		return fmt.Errorf("gobdecode: could not decode learning steps: %v",
			err)
	}

	if err := d.decodeInto(dec, d.trainNet); err != nil {
		return fmt.Errorf("gobdecode: could not decode learning network: %v",
			err)
	}
	if err := d.decodeInto(dec, d.targetNet); err != nil {
		return fmt.Errorf("gobdecode: could not decode target network: %v",
			err)
	}

	if err := d.behaviourNet.Set(d.trainNet); err != nil {
		return fmt.Errorf("gobdecode: could not update behaviour network: "+
			"%v", err)
	}
	if err := d.onlineNet.Set(d.trainNet); err != nil {
		return fmt.Errorf("gobdecode: could not update online network: %v",
			err)
	}
	return nil
}

// decodeInto decodes a network from dec and copies its weights into
// dst without replacing dst's graph.
func (d *DoubleDQN) decodeInto(dec *gob.Decoder,
	dst network.NeuralNet) error {
	var encoded []byte
	if err := dec.Decode(&encoded); err != nil {
		return err
	}

	decoded, err := dst.CloneWithBatch(dst.BatchSize())
	if err != nil {
		return err
	}
	if err := decoded.GobDecode(encoded); err != nil {
		return err
	}
	if decoded.Features() != d.spec.Features ||
		decoded.Outputs() != d.spec.NumActions {
		return fmt.Errorf("decoded network does not match the agent's "+
			"environment \n\twant(%v features, %v outputs) \n\thave(%v, %v)",
			d.spec.Features, d.spec.NumActions, decoded.Features(),
			decoded.Outputs())
	}
	return dst.Set(decoded)
}
