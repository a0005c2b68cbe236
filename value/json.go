// Package value implements the JSON value model shared by every stage of
// the query pipeline: the tagged JSON sum type, its coarse primitive-type
// tag, schema inference records, and the three-valued truth algebra used to
// model SQL NULL semantics.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind tags a JSON value's shape.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// JSON is a tagged JSON value: Null | Bool | Int | Float | String | Array |
// Object. Object preserves insertion order, which is load-bearing for
// deterministic wildcard expansion and stable output row layout.
type JSON struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	arr  []JSON
	obj  *Object
}

// Object is an insertion-ordered string -> JSON mapping.
type Object struct {
	keys   []string
	values map[string]JSON
}

// NewObject returns an empty, insertion-ordered object.
func NewObject() *Object {
	return &Object{values: map[string]JSON{}}
}

// Set inserts or overwrites a field, preserving first-insertion order.
func (o *Object) Set(key string, v JSON) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the field and whether it was present.
func (o *Object) Get(key string) (JSON, bool) {
	v, ok := o.values[key]
	return v, ok
}

// GetOr returns the field, or Null when absent.
func (o *Object) GetOr(key string) JSON {
	if v, ok := o.values[key]; ok {
		return v
	}
	return Null()
}

// Keys returns the fields in insertion order.
func (o *Object) Keys() []string {
	return o.keys
}

// Len returns the number of fields.
func (o *Object) Len() int {
	return len(o.keys)
}

// Clone returns a shallow copy with an independent key/value backing store.
func (o *Object) Clone() *Object {
	n := NewObject()
	for _, k := range o.keys {
		n.Set(k, o.values[k])
	}
	return n
}

// Merge overlays other's fields onto a clone of o, overwriting collisions.
// Matches the executor's join-row merge: "L's keys overwritten by R's where
// they collide".
func Merge(l, r *Object) *Object {
	out := l.Clone()
	for _, k := range r.keys {
		out.Set(k, r.values[k])
	}
	return out
}

func Null() JSON              { return JSON{kind: KindNull} }
func Bool(b bool) JSON        { return JSON{kind: KindBool, b: b} }
func Int(i int64) JSON        { return JSON{kind: KindInt, i: i} }
func String(s string) JSON    { return JSON{kind: KindString, s: s} }
func Obj(o *Object) JSON      { return JSON{kind: KindObject, obj: o} }
func Arr(items []JSON) JSON   { return JSON{kind: KindArray, arr: items} }

// Float constructs a Float value. NaN is rejected: the grammar (§3, §9)
// guarantees non-NaN floats reach here, but guard anyway since this is the
// one constructor that can receive a computed value.
func Float(f float64) (JSON, error) {
	if math.IsNaN(f) {
		return JSON{}, fmt.Errorf("NaN is not a representable JSON float")
	}
	return JSON{kind: KindFloat, f: f}, nil
}

// MustFloat panics on NaN; used where the caller has already validated.
func MustFloat(f float64) JSON {
	v, err := Float(f)
	if err != nil {
		panic(err)
	}
	return v
}

func (v JSON) Kind() Kind  { return v.kind }
func (v JSON) IsNull() bool { return v.kind == KindNull }
func (v JSON) AsBool() bool { return v.b }
func (v JSON) AsInt() int64 { return v.i }
func (v JSON) AsFloat() float64 { return v.f }
func (v JSON) AsString() string { return v.s }
func (v JSON) AsArray() []JSON { return v.arr }
func (v JSON) AsObject() *Object { return v.obj }

// Primitive is the coarse type tag used for schema inference and type
// checking; it collapses Array/Object's element shape away.
type Primitive int

const (
	PNull Primitive = iota
	PBool
	PInt
	PFloat
	PString
	PObject
	PArray
)

func (p Primitive) String() string {
	switch p {
	case PNull:
		return "null"
	case PBool:
		return "bool"
	case PInt:
		return "int"
	case PFloat:
		return "float"
	case PString:
		return "string"
	case PObject:
		return "object"
	case PArray:
		return "array"
	default:
		return "unknown"
	}
}

// PrimitiveOf returns v's coarse type tag.
func PrimitiveOf(v JSON) Primitive {
	switch v.kind {
	case KindNull:
		return PNull
	case KindBool:
		return PBool
	case KindInt:
		return PInt
	case KindFloat:
		return PFloat
	case KindString:
		return PString
	case KindArray:
		return PArray
	case KindObject:
		return PObject
	default:
		return PNull
	}
}

// Promote implements §3's promotion rule: equal kinds stay; (Int, Float)
// promotes to Float; (Null, X) yields X; otherwise the left-hand kind wins.
func Promote(a, b Primitive) Primitive {
	if a == b {
		return a
	}
	if a == PNull {
		return b
	}
	if b == PNull {
		return a
	}
	if (a == PInt && b == PFloat) || (a == PFloat && b == PInt) {
		return PFloat
	}
	return a
}

// ToFloat64 coerces a numeric JSON value to float64 for comparison.
func ToFloat64(v JSON) (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Equal performs structural equality, used by aggregate-call dedup,
// canonicalization and DISTINCT set membership.
func Equal(a, b JSON) bool {
	if a.kind != b.kind {
		// Int/Float cross-kind equality is handled explicitly by predicate
		// evaluation (epsilon compare); structural Equal is kind-exact.
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		return a.f == b.f
	case KindString:
		return a.s == b.s
	case KindArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for _, k := range a.obj.Keys() {
			bv, ok := b.obj.Get(k)
			if !ok {
				return false
			}
			av, _ := a.obj.Get(k)
			if !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

// Canonical renders v as a deterministic string, used as a hash-map key for
// group-by tuples and DISTINCT argument tuples (GLOSSARY: "Canonicalized
// tuple"). Object keys are emitted in insertion order; floats use a stable
// round-trippable encoding so two equal floats always canonicalize alike.
func Canonical(v JSON) string {
	var sb strings.Builder
	writeCanonical(&sb, v)
	return sb.String()
}

func writeCanonical(sb *strings.Builder, v JSON) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindInt:
		sb.WriteString("i:")
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		sb.WriteString("f:")
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		sb.WriteString("s:")
		sb.WriteString(strconv.Quote(v.s))
	case KindArray:
		sb.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeCanonical(sb, e)
		}
		sb.WriteByte(']')
	case KindObject:
		sb.WriteByte('{')
		for i, k := range v.obj.Keys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteByte(':')
			ev, _ := v.obj.Get(k)
			writeCanonical(sb, ev)
		}
		sb.WriteByte('}')
	}
}

// CanonicalTuple canonicalizes a sequence of values as a single hash key.
func CanonicalTuple(vs []JSON) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range vs {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeCanonical(&sb, v)
	}
	sb.WriteByte(')')
	return sb.String()
}

// kindRank implements §4.4.1's cross-kind tie-break rank:
// Null=0 < Bool=1 < Number=2 < String=3 < Array=4 < Object=5.
func kindRank(v JSON) int {
	switch v.kind {
	case KindNull:
		return 0
	case KindBool:
		return 1
	case KindInt, KindFloat:
		return 2
	case KindString:
		return 3
	case KindArray:
		return 4
	case KindObject:
		return 5
	default:
		return 0
	}
}

// Compare implements the §4.4.1 sort comparator for non-null-aware ordering
// between two values of possibly different kinds. Null is NOT special-cased
// here (NULLS LAST placement is the caller's job, e.g. rowexec's
// compareNullsLast); this just
// orders two arbitrary JSON values.
func Compare(a, b JSON) int {
	if a.kind != b.kind {
		ra, rb := kindRank(a), kindRank(b)
		if ra != rb {
			if ra < rb {
				return -1
			}
			return 1
		}
		// same rank, different kind: only Int vs Float share rank 2.
	}
	switch {
	case a.kind == KindBool || b.kind == KindBool:
		if a.b == b.b {
			return 0
		}
		if !a.b {
			return -1
		}
		return 1
	case (a.kind == KindInt || a.kind == KindFloat) && (b.kind == KindInt || b.kind == KindFloat):
		af, _ := ToFloat64(a)
		bf, _ := ToFloat64(b)
		if math.IsNaN(af) || math.IsNaN(bf) {
			return 0
		}
		if af < bf {
			return -1
		}
		if af > bf {
			return 1
		}
		return 0
	case a.kind == KindString:
		return strings.Compare(a.s, b.s)
	default:
		// Arrays/Objects: compared by canonical JSON string (§4.4.1).
		ca, cb := Canonical(a), Canonical(b)
		return strings.Compare(ca, cb)
	}
}

// SortKeys returns an object's keys sorted, useful for deterministic tests
// of otherwise map-ordered structures.
func SortKeys(keys []string) []string {
	out := append([]string(nil), keys...)
	sort.Strings(out)
	return out
}
