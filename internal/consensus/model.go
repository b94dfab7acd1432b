package consensus

import (
	"fmt"
	"slices"
)

// Model fits a consensus over a dataset and returns one row per task key and
// one column per category: a probability distribution across the question's
// possible answers.
type Model interface {
	FitAndComputeConsensus(d *Dataset, question string) ([][]float64, error)
}

var registry = map[string]func() Model{
	"MajorityVoting": func() Model { return MajorityVoting{} },
	"DawidSkene":     func() Model { return NewDawidSkene() },
}

// Algorithms returns the sorted names of all registered models.
func Algorithms() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Registered reports whether name is a registered model.
func Registered(name string) bool {
	_, ok := registry[name]
	return ok
}

// NewModel constructs the registered model with the given name.
func NewModel(name string) (Model, error) {
	make, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownModel, name, Algorithms())
	}
	return make(), nil
}
