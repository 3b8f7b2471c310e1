// Package expreplay implements an experience replay memory for
// off-policy learning from pixel observations
package expreplay

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/NishantPrabhu/RL-Experiments/timestep"
)

// Memory implements a fixed-capacity experience replay buffer as a
// ring of parallel arrays, one per transition field. The next write
// index ptr advances circularly, and filled counts valid entries,
// saturating at the capacity once the ring is full. After saturation
// each insert overwrites the oldest stored transition.
//
// Frame stacks are stored as unsigned 8-bit intensities. Incoming
// states must have pixel values in [0, 1]; they are scaled by 255 on
// insert and scaled back on sampling. Storing pixels as uint8 quarters
// the memory footprint compared to storing them in floating point,
// which matters for the multi-hundred-thousand capacities used when
// training on Atari frames.
//
// A Memory is not safe for concurrent use. The training loop that owns
// it interacts with it strictly sequentially.
type Memory struct {
	stack       timestep.Stack
	capacity    int
	featureSize int

	ptr    int // next write index, in [0, capacity)
	filled int // number of valid entries, saturates at capacity

	states     []uint8
	nextStates []uint8
	actions    []uint8
	rewards    []float32
	terminal   []uint8

	seed uint64
	rng  *rand.Rand
}

// New creates and returns a new Memory holding at most capacity
// transitions of stacked frames with the given geometry. The seed
// parameter seeds the sampling RNG.
func New(capacity int, stack timestep.Stack, seed uint64) (*Memory, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("new: capacity must be >= 1 \n\thave(%v)",
			capacity)
	}
	if stack.Len() < 1 {
		return nil, fmt.Errorf("new: invalid frame stack geometry %+v", stack)
	}

	featureSize := stack.Len()
	return &Memory{
		stack:       stack,
		capacity:    capacity,
		featureSize: featureSize,
		states:      make([]uint8, capacity*featureSize),
		nextStates:  make([]uint8, capacity*featureSize),
		actions:     make([]uint8, capacity),
		rewards:     make([]float32, capacity),
		terminal:    make([]uint8, capacity),
		seed:        seed,
		rng:         rand.New(rand.NewSource(seed)),
	}, nil
}

// Add inserts a transition at the current write position, overwriting
// the oldest stored transition once the ring is full. The operation is
// O(1) and mutates nothing but the buffer.
func (m *Memory) Add(t timestep.Transition) error {
	if len(t.State) != m.featureSize || len(t.NextState) != m.featureSize {
		return fmt.Errorf("add: invalid feature size \n\twant(%v) "+
			"\n\thave(%v, %v)", m.featureSize, len(t.State), len(t.NextState))
	}
	if t.Action < 0 || t.Action > 255 {
		return fmt.Errorf("add: action index out of range \n\thave(%v)",
			t.Action)
	}

	offset := m.ptr * m.featureSize
	for i := 0; i < m.featureSize; i++ {
		m.states[offset+i] = quantize(t.State[i])
		m.nextStates[offset+i] = quantize(t.NextState[i])
	}
	m.actions[m.ptr] = uint8(t.Action)
	m.rewards[m.ptr] = float32(t.Reward)
	if t.Done {
		m.terminal[m.ptr] = 1
	} else {
		m.terminal[m.ptr] = 0
	}

	m.ptr = (m.ptr + 1) % m.capacity
	if m.filled < m.capacity {
		m.filled++
	}
	return nil
}

// Batch samples batchSize distinct transitions uniformly at random
// from the filled portion of the buffer. Stored 8-bit frame data is
// scaled back to floating point in [0, 1]. Sampling never mutates the
// buffer.
//
// The number of filled entries must strictly exceed batchSize,
// otherwise an error satisfying IsInsufficientSamples is returned. A
// batch is never silently truncated to the available sample count.
func (m *Memory) Batch(batchSize int) (*Batch, error) {
	if m.filled == 0 {
		return nil, &MemoryError{Op: "batch", Err: errEmptyMemory}
	}
	if batchSize < 1 {
		return nil, fmt.Errorf("batch: batch size must be >= 1 \n\thave(%v)",
			batchSize)
	}
	if batchSize >= m.filled {
		return nil, &MemoryError{Op: "batch", Err: errInsufficientSamples}
	}

	indices := m.sampleIndices(batchSize)

	batch := newBatch(batchSize, m.featureSize)
	for i, index := range indices {
		batchOffset := i * m.featureSize
		expOffset := index * m.featureSize
		for j := 0; j < m.featureSize; j++ {
			batch.States[batchOffset+j] = float64(m.states[expOffset+j]) / 255.0
			batch.NextStates[batchOffset+j] =
				float64(m.nextStates[expOffset+j]) / 255.0
		}
		batch.Actions[i] = int(m.actions[index])
		batch.Rewards[i] = float64(m.rewards[index])
		batch.Dones[i] = float64(m.terminal[index])
	}
	return batch, nil
}

// sampleIndices draws n distinct indices uniformly at random from
// [0, filled) using a partial Fisher-Yates shuffle over a sparse view
// of the index range, avoiding an O(filled) allocation per sample.
func (m *Memory) sampleIndices(n int) []int {
	swapped := make(map[int]int, 2*n)
	at := func(i int) int {
		if v, ok := swapped[i]; ok {
			return v
		}
		return i
	}

	indices := make([]int, n)
	for i := 0; i < n; i++ {
		j := i + m.rng.Intn(m.filled-i)
		indices[i] = at(j)
		swapped[j] = at(i)
	}
	return indices
}

// Filled returns the number of valid transitions in the buffer
func (m *Memory) Filled() int {
	return m.filled
}

// Position returns the index at which the next transition will be
// written
func (m *Memory) Position() int {
	return m.ptr
}

// Capacity returns the maximum number of transitions the buffer holds
func (m *Memory) Capacity() int {
	return m.capacity
}

// FeatureSize returns the length of a single flattened observation
func (m *Memory) FeatureSize() int {
	return m.featureSize
}

// Stack returns the frame stack geometry of stored observations
func (m *Memory) Stack() timestep.Stack {
	return m.stack
}

// quantize converts a pixel intensity in [0, 1] to its 8-bit storage
// representation
func quantize(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255.0)
}

// GobEncode implements the gob.GobEncoder interface so that a Memory
// can be persisted wholesale as part of a training state snapshot.
func (m *Memory) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	fields := []interface{}{
		m.stack, m.capacity, m.ptr, m.filled, m.seed,
		m.states, m.nextStates, m.actions, m.rewards, m.terminal,
	}
	for _, field := range fields {
		if err := enc.Encode(field); err != nil {
			return nil, fmt.Errorf("gobencode: could not encode memory: %v",
				err)
		}
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The sampling RNG
// is re-seeded from the persisted seed; the contents, write position
// and fill count are restored exactly.
func (m *Memory) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	var stack timestep.Stack
	var capacity, ptr, filled int
	var seed uint64
	for _, field := range []interface{}{&stack, &capacity, &ptr, &filled,
		&seed} {
		if err := dec.Decode(field); err != nil {
			return fmt.Errorf("gobdecode: could not decode memory: %v", err)
		}
	}

	restored, err := New(capacity, stack, seed)
	if err != nil {
		return fmt.Errorf("gobdecode: %v", err)
	}
	restored.ptr = ptr
	restored.filled = filled

	for _, field := range []interface{}{&restored.states,
		&restored.nextStates, &restored.actions, &restored.rewards,
		&restored.terminal} {
		if err := dec.Decode(field); err != nil {
			return fmt.Errorf("gobdecode: could not decode memory "+
				"contents: %v", err)
		}
	}

	*m = *restored
	return nil
}
