package solver

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownSolver is returned when no oracle is registered under the
// requested name.
var ErrUnknownSolver = errors.New("unknown solver")

// Factory constructs an oracle implementation.
type Factory func() (Oracle, error)

var registry = map[string]Factory{}

// Register makes an oracle implementation available under a name.
// Registering the same name twice panics; backends are wired at init time.
func Register(name string, factory Factory) {
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("solver %q registered twice", name))
	}
	registry[name] = factory
}

// New constructs the oracle registered under name, or fails with
// ErrUnknownSolver.
func New(name string) (Oracle, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownSolver, name, Known())
	}
	return factory()
}

// Known returns the registered solver names, sorted.
func Known() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
