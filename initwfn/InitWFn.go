// Package initwfn implements functionality to wrap Gorgonia InitWFn
// so that they can be selected from configuration files.
package initwfn

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Type describes different types of InitWFn that are available
type Type string

// Available InitWFn types
const (
	GlorotU Type = "glorotu"
	GlorotN Type = "glorotn"
	Zeroes  Type = "zeroes"
)

// InitWFn wraps a Gorgonia InitWFn together with the configuration
// that created it.
type InitWFn struct {
	initWFn G.InitWFn
	Type
	Config
}

// newInitWFn returns a new InitWFn
func newInitWFn(c Config) *InitWFn {
	init := InitWFn{Type: c.Type(), Config: c}
	init.initWFn = init.Config.Create()

	return &init
}

// New returns an InitWFn of the named type. Gain applies to the Glorot
// initializers and is ignored otherwise.
func New(t Type, gain float64) (*InitWFn, error) {
	switch t {
	case GlorotU:
		return NewGlorotU(gain), nil
	case GlorotN:
		return NewGlorotN(gain), nil
	case Zeroes:
		return NewZeroes(), nil
	}
	return nil, fmt.Errorf("new: no such weight initializer %q", t)
}

// InitWFn returns the wrapped Gorgonia InitWFn
func (w *InitWFn) InitWFn() G.InitWFn {
	return w.initWFn
}

// String implements the fmt.Stringer interface
func (w *InitWFn) String() string {
	return fmt.Sprintf("{%v InitWFn: %v}", w.Type, w.Config)
}

// Config implements a Gorgonia InitWFn configuration and can be used
// to create the Gorgonia InitWFn it describes.
type Config interface {
	// Create returns the Gorgonia InitWFn that the Config describes
	Create() G.InitWFn

	// Type returns the type of Gorgonia InitWFn that is returned
	Type() Type
}
