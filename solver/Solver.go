// Package solver implements functionality to wrap Gorgonia Solvers so
// that they can be described by configuration files.
package solver

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Type describes different types of solvers that are available
type Type string

// Available solver types
const (
	Adam    Type = "adam"
	RMSProp Type = "rmsprop"
	Vanilla Type = "vanilla"
)

// Solver wraps a Gorgonia Solver together with the configuration that
// created it.
type Solver struct {
	G.Solver
	Type
	Config
}

// newSolver returns a new solver with the given type and configuration
func newSolver(t Type, c Config) (*Solver, error) {
	if !c.ValidType(t) {
		return nil, fmt.Errorf("newsolver: invalid solver type %v for "+
			"configuration %T", t, c)
	}
	solver := Solver{Type: t, Config: c}
	solver.Solver = solver.Config.Create()

	return &solver, nil
}

// New returns a solver of the named type with the given step size and
// batch size and default hyperparameters for everything else.
func New(t Type, stepSize float64, batchSize int) (*Solver, error) {
	switch t {
	case Adam:
		return NewDefaultAdam(stepSize, batchSize)
	case RMSProp:
		return NewDefaultRMSProp(stepSize, batchSize)
	case Vanilla:
		return NewVanilla(stepSize, batchSize)
	}
	return nil, fmt.Errorf("new: no such solver type %q", t)
}

// Config implements a Gorgonia Solver configuration and can be used to
// create the Gorgonia Solver it describes.
type Config interface {
	Create() G.Solver

	// ValidType returns whether a specific Solver type can be created
	// with the Config
	ValidType(Type) bool
}
