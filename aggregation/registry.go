// Package aggregation implements the case-insensitive aggregate function
// registry of spec §4.2.2: each built-in provides a type-inference rule and
// a factory for a per-group accumulator.
package aggregation

import (
	"strings"

	"github.com/jsonql-db/jsonql/value"
)

// Accumulator is the per-group, per-aggregate-call running state. Update is
// called once per contributing row with that row's evaluated arguments;
// Finalize produces the group's result. Implementations ignore Null
// arguments themselves (spec §4.2.2: "Aggregates ignore Null inputs").
type Accumulator interface {
	Update(args []value.JSON) error
	Finalize() value.JSON
}

// Func is a registered aggregate function implementation.
type Func interface {
	// Name returns the lowercase registered name.
	Name() string
	// InferType computes the result type given the argument's inferred
	// type and nullability (spec: "(function, ctx) -> (JsonPrimitive,
	// nullable)"). argType/argNullable describe the sole argument's
	// inferred type; isStar is true for COUNT(*).
	InferType(argType value.Primitive, argNullable bool, isStar bool) (value.Primitive, bool, error)
	// NewAccumulator creates a fresh per-group accumulator.
	NewAccumulator() Accumulator
}

// Registry is a case-insensitive, effectively-immutable-after-construction
// lookup table, safe to share read-only across any number of callers
// (spec §5).
type Registry struct {
	funcs map[string]Func
}

// NewRegistry returns a registry pre-populated with the built-in aggregates
// (spec §4.2.2's table: COUNT, SUM, AVG, MIN, MAX).
func NewRegistry() *Registry {
	r := &Registry{funcs: map[string]Func{}}
	r.Register(countFunc{})
	r.Register(sumFunc{})
	r.Register(avgFunc{})
	r.Register(minFunc{})
	r.Register(maxFunc{})
	return r
}

// Register adds or replaces a function under its lowercase name.
func (r *Registry) Register(f Func) {
	r.funcs[strings.ToLower(f.Name())] = f
}

// Lookup resolves a function name case-insensitively.
func (r *Registry) Lookup(name string) (Func, bool) {
	f, ok := r.funcs[strings.ToLower(name)]
	return f, ok
}
