package expreplay

import "errors"

// MemoryError implements errors unique to an experience replay
// memory.
type MemoryError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *MemoryError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *MemoryError) Unwrap() error {
	return e.Err
}

var errEmptyMemory error = errors.New("memory empty")

var errInsufficientSamples = errors.New("batch size must be strictly less " +
	"than the number of filled samples")

// IsInsufficientSamples returns whether or not an error reports that
// a batch was requested larger than (or equal to) the number of valid
// entries in the memory.
func IsInsufficientSamples(err error) bool {
	if memErr, ok := err.(*MemoryError); ok {
		err = memErr.Err
	}
	return err == errInsufficientSamples
}

// IsEmptyMemory returns whether or not an error reports that a replay
// memory holds no samples at all.
func IsEmptyMemory(err error) bool {
	if memErr, ok := err.(*MemoryError); ok {
		err = memErr.Err
	}
	return err == errEmptyMemory
}
