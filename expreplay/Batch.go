package expreplay

// Batch holds a batch of transitions sampled from a Memory as parallel
// arrays. States and NextStates are row-major with one flattened
// observation per row. Dones holds terminal flags as 0/1 floats so
// that they can be used directly as a bootstrap mask in a learning
// update.
type Batch struct {
	States     []float64
	Actions    []int
	NextStates []float64
	Rewards    []float64
	Dones      []float64

	batchSize   int
	featureSize int
}

func newBatch(batchSize, featureSize int) *Batch {
	return &Batch{
		States:      make([]float64, batchSize*featureSize),
		Actions:     make([]int, batchSize),
		NextStates:  make([]float64, batchSize*featureSize),
		Rewards:     make([]float64, batchSize),
		Dones:       make([]float64, batchSize),
		batchSize:   batchSize,
		featureSize: featureSize,
	}
}

// Size returns the number of transitions in the batch
func (b *Batch) Size() int {
	return b.batchSize
}

// FeatureSize returns the length of a single flattened observation in
// the batch
func (b *Batch) FeatureSize() int {
	return b.featureSize
}

// State returns the i-th state row of the batch
func (b *Batch) State(i int) []float64 {
	return b.States[i*b.featureSize : (i+1)*b.featureSize]
}

// NextState returns the i-th next-state row of the batch
func (b *Batch) NextState(i int) []float64 {
	return b.NextStates[i*b.featureSize : (i+1)*b.featureSize]
}
