package aggregation

import (
	"fmt"

	"github.com/jsonql-db/jsonql/value"
)

// --- COUNT ------------------------------------------------------------

type countFunc struct{}

func (countFunc) Name() string { return "count" }

func (countFunc) InferType(_ value.Primitive, _ bool, _ bool) (value.Primitive, bool, error) {
	return value.PInt, false, nil
}

func (countFunc) NewAccumulator() Accumulator { return &countAcc{} }

type countAcc struct{ n int64 }

func (a *countAcc) Update(args []value.JSON) error {
	if len(args) != 1 {
		return fmt.Errorf("COUNT: expected 1 argument, got %d", len(args))
	}
	if !args[0].IsNull() {
		a.n++
	}
	return nil
}

func (a *countAcc) Finalize() value.JSON { return value.Int(a.n) }

// --- SUM ----------------------------------------------------------------

type sumFunc struct{}

func (sumFunc) Name() string { return "sum" }

func (sumFunc) InferType(argType value.Primitive, _ bool, isStar bool) (value.Primitive, bool, error) {
	if isStar {
		return 0, false, fmt.Errorf("SUM: wildcard argument is not allowed")
	}
	switch argType {
	case value.PInt:
		return value.PInt, true, nil
	case value.PFloat:
		return value.PFloat, true, nil
	default:
		return 0, false, fmt.Errorf("SUM: expected a numeric argument, got %s", argType)
	}
}

func (sumFunc) NewAccumulator() Accumulator { return &sumAcc{} }

type sumAcc struct {
	seeded  bool
	isFloat bool
	i       int64
	f       float64
}

func (a *sumAcc) Update(args []value.JSON) error {
	if len(args) != 1 {
		return fmt.Errorf("SUM: expected 1 argument, got %d", len(args))
	}
	v := args[0]
	if v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case value.KindInt:
		if !a.seeded {
			a.seeded = true
			a.isFloat = false
			a.i = v.AsInt()
			return nil
		}
		if a.isFloat {
			a.f += float64(v.AsInt())
			return nil
		}
		a.i += v.AsInt()
		return nil
	case value.KindFloat:
		if !a.seeded {
			a.seeded = true
			a.isFloat = true
			a.f = v.AsFloat()
			return nil
		}
		if !a.isFloat {
			return fmt.Errorf("SUM: received a float value in an integer-seeded sum")
		}
		a.f += v.AsFloat()
		return nil
	default:
		return fmt.Errorf("SUM: non-numeric value %s", v.Kind())
	}
}

func (a *sumAcc) Finalize() value.JSON {
	if !a.seeded {
		return value.Null()
	}
	if a.isFloat {
		return value.MustFloat(a.f)
	}
	return value.Int(a.i)
}

// --- AVG ------------------------------------------------------------------

type avgFunc struct{}

func (avgFunc) Name() string { return "avg" }

func (avgFunc) InferType(argType value.Primitive, _ bool, isStar bool) (value.Primitive, bool, error) {
	if isStar {
		return 0, false, fmt.Errorf("AVG: wildcard argument is not allowed")
	}
	if argType != value.PInt && argType != value.PFloat {
		return 0, false, fmt.Errorf("AVG: expected a numeric argument, got %s", argType)
	}
	return value.PFloat, true, nil
}

func (avgFunc) NewAccumulator() Accumulator { return &avgAcc{} }

type avgAcc struct {
	sum   float64
	count int64
}

func (a *avgAcc) Update(args []value.JSON) error {
	if len(args) != 1 {
		return fmt.Errorf("AVG: expected 1 argument, got %d", len(args))
	}
	v := args[0]
	if v.IsNull() {
		return nil
	}
	f, ok := value.ToFloat64(v)
	if !ok {
		return fmt.Errorf("AVG: non-numeric value %s", v.Kind())
	}
	a.sum += f
	a.count++
	return nil
}

func (a *avgAcc) Finalize() value.JSON {
	if a.count == 0 {
		return value.Null()
	}
	return value.MustFloat(a.sum / float64(a.count))
}

// --- MIN / MAX --------------------------------------------------------

type minFunc struct{}

func (minFunc) Name() string { return "min" }

func (minFunc) InferType(argType value.Primitive, _ bool, isStar bool) (value.Primitive, bool, error) {
	if isStar {
		return 0, false, fmt.Errorf("MIN: wildcard argument is not allowed")
	}
	return argType, true, nil
}

func (minFunc) NewAccumulator() Accumulator { return &extremaAcc{mode: modeMin} }

type maxFunc struct{}

func (maxFunc) Name() string { return "max" }

func (maxFunc) InferType(argType value.Primitive, _ bool, isStar bool) (value.Primitive, bool, error) {
	if isStar {
		return 0, false, fmt.Errorf("MAX: wildcard argument is not allowed")
	}
	return argType, true, nil
}

func (maxFunc) NewAccumulator() Accumulator { return &extremaAcc{mode: modeMax} }

type extremaMode int

const (
	modeMin extremaMode = iota
	modeMax
)

type extremaAcc struct {
	mode    extremaMode
	current value.JSON
	hasCur  bool
}

func (a *extremaAcc) Update(args []value.JSON) error {
	if len(args) != 1 {
		return fmt.Errorf("MIN/MAX: expected 1 argument, got %d", len(args))
	}
	v := args[0]
	if v.IsNull() {
		return nil
	}
	if !a.hasCur {
		a.current = v
		a.hasCur = true
		return nil
	}
	better, err := extremaBetter(a.mode, a.current, v)
	if err != nil {
		return err
	}
	if better {
		a.current = v
	}
	return nil
}

func (a *extremaAcc) Finalize() value.JSON {
	if !a.hasCur {
		return value.Null()
	}
	return a.current
}

// extremaBetter reports whether candidate should replace current under
// mode, applying the §4.2.2 strict-typing rule: mixing Int and Float is an
// error, as is comparing arrays/objects.
func extremaBetter(mode extremaMode, current, candidate value.JSON) (bool, error) {
	if current.Kind() != candidate.Kind() {
		return false, fmt.Errorf("MIN/MAX: mixed types %s and %s", current.Kind(), candidate.Kind())
	}
	switch current.Kind() {
	case value.KindArray, value.KindObject:
		return false, fmt.Errorf("MIN/MAX: unsupported type %s", current.Kind())
	case value.KindBool:
		cmp := boolCmp(current.AsBool(), candidate.AsBool())
		return isBetter(mode, cmp), nil
	case value.KindInt:
		cmp := intCmp(current.AsInt(), candidate.AsInt())
		return isBetter(mode, cmp), nil
	case value.KindFloat:
		cmp := value.Compare(current, candidate)
		return isBetter(mode, cmp), nil
	case value.KindString:
		cmp := value.Compare(current, candidate)
		return isBetter(mode, cmp), nil
	default:
		return false, fmt.Errorf("MIN/MAX: unsupported type %s", current.Kind())
	}
}

func isBetter(mode extremaMode, cmpCurrentToCandidate int) bool {
	if mode == modeMin {
		return cmpCurrentToCandidate > 0
	}
	return cmpCurrentToCandidate < 0
}

func boolCmp(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}

func intCmp(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
