package agent

import (
	"fmt"
	"sort"
)

// Type identifies a registered agent variant
type Type string

// Spec carries the environment-derived quantities every agent variant
// needs: the flattened observation length, the number of discrete
// actions, and the learning batch size.
type Spec struct {
	Features   int
	NumActions int
	BatchSize  int
	Seed       uint64
}

// Factory constructs an agent variant from its Spec and the opaque
// options sub-mapping of the training configuration.
type Factory func(spec Spec, opts map[string]interface{}) (Agent, error)

var registry = map[Type]Factory{}

// Register makes an agent variant available for creation by
// configuration. It is intended to be called from the init function of
// packages implementing a variant.
func Register(t Type, f Factory) {
	if _, ok := registry[t]; ok {
		panic(fmt.Sprintf("register: agent type %q registered twice", t))
	}
	registry[t] = f
}

// Create constructs the agent variant registered under t
func Create(t Type, spec Spec, opts map[string]interface{}) (Agent, error) {
	factory, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("create: no such agent type %q "+
			"(registered: %v)", t, RegisteredTypes())
	}
	return factory(spec, opts)
}

// RegisteredTypes returns the names of all registered agent variants
func RegisteredTypes() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return types
}
