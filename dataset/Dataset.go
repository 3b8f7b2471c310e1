// Package dataset implements loading and splitting of recorded
// experience for offline utilities. A Dataset holds (state, action)
// pairs gathered from a trained agent's episodes, stored with the same
// 8-bit pixel quantization as the replay memory so that recorded
// experience is cheap to keep on disk.
package dataset

import (
	"encoding/gob"
	"fmt"
	"os"

	"golang.org/x/exp/rand"

	"github.com/NishantPrabhu/RL-Experiments/timestep"
)

// Dataset is an in-memory collection of recorded (state, action)
// pairs. States are flattened frame stacks quantized to 8-bit
// intensities.
type Dataset struct {
	stack   timestep.Stack
	states  [][]uint8
	actions []int
}

// New returns an empty Dataset for observations with the argument
// stack geometry
func New(stack timestep.Stack) (*Dataset, error) {
	if stack.Len() < 1 {
		return nil, fmt.Errorf("new: observation stack must be non-empty "+
			"\n\thave(%v)", stack)
	}
	return &Dataset{stack: stack}, nil
}

// Add records a single (state, action) pair. The state is a flattened
// frame stack with intensities in [0, 1].
func (d *Dataset) Add(state []float64, action int) error {
	if len(state) != d.stack.Len() {
		return fmt.Errorf("add: invalid state length \n\twant(%v) "+
			"\n\thave(%v)", d.stack.Len(), len(state))
	}
	if action < 0 {
		return fmt.Errorf("add: invalid action \n\thave(%v)", action)
	}

	quantized := make([]uint8, len(state))
	for i, v := range state {
		switch {
		case v <= 0:
			quantized[i] = 0
		case v >= 1:
			quantized[i] = 255
		default:
			quantized[i] = uint8(v * 255)
		}
	}
	d.states = append(d.states, quantized)
	d.actions = append(d.actions, action)
	return nil
}

// Len returns the number of recorded pairs
func (d *Dataset) Len() int {
	return len(d.states)
}

// Stack returns the geometry of the Dataset's observations
func (d *Dataset) Stack() timestep.Stack {
	return d.stack
}

// Sample returns the i'th recorded pair with the state scaled back to
// intensities in [0, 1].
func (d *Dataset) Sample(i int) ([]float64, int, error) {
	if i < 0 || i >= d.Len() {
		return nil, 0, fmt.Errorf("sample: index out of range \n\twant[0, "+
			"%v) \n\thave(%v)", d.Len(), i)
	}

	state := make([]float64, len(d.states[i]))
	for j, v := range d.states[i] {
		state[j] = float64(v) / 255.0
	}
	return state, d.actions[i], nil
}

// Shuffle permutes the recorded pairs in place
func (d *Dataset) Shuffle(seed uint64) {
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(d.Len(), func(i, j int) {
		d.states[i], d.states[j] = d.states[j], d.states[i]
		d.actions[i], d.actions[j] = d.actions[j], d.actions[i]
	})
}

// Split partitions the Dataset into a training prefix holding ratio of
// the recorded pairs and a test suffix holding the remainder. The
// returned Datasets share backing storage with the receiver.
func (d *Dataset) Split(ratio float64) (train, test *Dataset, err error) {
	if ratio < 0 || ratio > 1 {
		return nil, nil, fmt.Errorf("split: ratio must be in [0, 1] "+
			"\n\thave(%v)", ratio)
	}

	size := int(float64(d.Len()) * ratio)
	train = &Dataset{
		stack:   d.stack,
		states:  d.states[:size],
		actions: d.actions[:size],
	}
	test = &Dataset{
		stack:   d.stack,
		states:  d.states[size:],
		actions: d.actions[size:],
	}
	return train, test, nil
}

// Save persists the Dataset to a gob-encoded file
func (d *Dataset) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save: could not create dataset file: %v", err)
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	fields := []interface{}{d.stack, d.states, d.actions}
	for _, field := range fields {
		if err := enc.Encode(field); err != nil {
			return fmt.Errorf("save: could not encode dataset: %v", err)
		}
	}
	return nil
}

// Load reads a Dataset saved with Save
func Load(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load: could not open dataset file: %v", err)
	}
	defer file.Close()

	d := &Dataset{}
	dec := gob.NewDecoder(file)
	fields := []interface{}{&d.stack, &d.states, &d.actions}
	for _, field := range fields {
		if err := dec.Decode(field); err != nil {
			return nil, fmt.Errorf("load: could not decode dataset: %v", err)
		}
	}
	if len(d.states) != len(d.actions) {
		return nil, fmt.Errorf("load: corrupt dataset \n\twant(%v actions)"+
			" \n\thave(%v)", len(d.states), len(d.actions))
	}
	return d, nil
}
