package trainer

import (
	"errors"
	"fmt"
)

// TrainerError is an error that describes which trainer operation
// failed and why
type TrainerError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *TrainerError) Error() string {
	return fmt.Sprintf("%v: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause of the TrainerError
func (e *TrainerError) Unwrap() error {
	return e.Err
}

var (
	errMissingState      = errors.New("no saved training state")
	errMissingCheckpoint = errors.New("no saved checkpoint")
)

// IsMissingState returns whether err indicates that a directory given
// for resumption holds no saved training state.
func IsMissingState(err error) bool {
	return errors.Is(err, errMissingState)
}

// IsMissingCheckpoint returns whether err indicates that a directory
// given for checkpoint loading holds no saved checkpoint.
func IsMissingCheckpoint(err error) bool {
	return errors.Is(err, errMissingCheckpoint)
}
