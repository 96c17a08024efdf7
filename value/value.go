package value

import (
	"fmt"
	"hash/fnv"
	"reflect"
)

// Value is a type-erased holder over every Kind this engine understands.
// It is an immutable value type: all constructors return a new Value
// rather than mutating one in place.
type Value struct {
	kind Kind
	typ  Type
	data any
}

// Empty is the zero Value, reported by IsEmpty.
var Empty = Value{}

// Kind reports v's discriminant.
func (v Value) Kind() Kind { return v.kind }

// Type reports the registered Type v was constructed with, if any.
func (v Value) Type() Type { return v.typ }

// IsEmpty reports whether v holds nothing.
func (v Value) IsEmpty() bool { return v.kind == Invalid }

// Raw returns the underlying Go value, type-erased. Prefer Get for typed
// access.
func (v Value) Raw() any { return v.data }

func makeScalar(k Kind, data any) Value { return Value{kind: k, data: data} }

func NewBool(b bool) Value                 { return makeScalar(Bool, b) }
func NewInt(i int32) Value                 { return makeScalar(Int, i) }
func NewUInt(u uint32) Value                { return makeScalar(UInt, u) }
func NewInt64(i int64) Value               { return makeScalar(Int64, i) }
func NewUInt64(u uint64) Value              { return makeScalar(UInt64, u) }
func NewHalf(f float32) Value              { return makeScalar(Half, f) }
func NewFloat(f float32) Value             { return makeScalar(Float, f) }
func NewDouble(f float64) Value            { return makeScalar(Double, f) }
func NewTimeCode(t float64) Value          { return makeScalar(TimeCode, t) }
func NewToken(s string) Value              { return makeScalar(Token, s) }
func NewString(s string) Value             { return makeScalar(String, s) }
func NewAssetPath(s string) Value          { return makeScalar(AssetPath, s) }
func NewPathExpression(s string) Value     { return makeScalar(PathExpression, s) }

// opaquePlaceholder is the sentinel payload for the Opaque kind: a marker
// that a field holds an opaque, schema-defined value this engine never
// needs to interpret.
type opaquePlaceholder struct{}

// NewOpaque returns the opaque-placeholder sentinel value.
func NewOpaque() Value { return makeScalar(Opaque, opaquePlaceholder{}) }

// Vector is the payload for aggregate types (point/normal/color/vector/
// texcoord/quaternion), stored as a flat slice of float64 regardless of
// declared precision; the declared precision lives in the Value's Type.
type Vector struct {
	Elems []float64
}

// NewVector constructs an aggregate Value of kind Vector (or Quaternion
// when t.Kind == Quaternion) using the registered type t for role/dim/
// precision. NewVector panics on a dimension mismatch rather than
// returning an error: t and elems are both supplied by the calling Go
// code, never by external data flowing through a mutator, so this is a
// programmer-misuse check, not a diagnostic-worthy runtime condition.
func NewVector(t Type, elems []float64) Value {
	if len(elems) != t.Dim {
		panic(fmt.Sprintf("value: %s expects %d components, got %d", t.Name, t.Dim, len(elems)))
	}
	cp := append([]float64(nil), elems...)
	return Value{kind: t.Kind, typ: t, data: Vector{Elems: cp}}
}

// IntVector is the payload for int2/int3/int4.
type IntVector struct {
	Elems []int32
}

func NewIntVector(t Type, elems []int32) Value {
	cp := append([]int32(nil), elems...)
	return Value{kind: IntVector, typ: t, data: IntVector{Elems: cp}}
}

// Matrix is the payload for matrixNN types: a flat, row-major dim*dim
// slice.
type Matrix struct {
	Elems []float64
}

// NewMatrix panics on a dimension mismatch for the same reason NewVector
// does: t and elems are both internal Go call-site arguments, not values
// arriving through a mutator's public, diagnostic-guarded surface.
func NewMatrix(t Type, elems []float64) Value {
	if len(elems) != t.Dim*t.Dim {
		panic(fmt.Sprintf("value: %s expects %d components, got %d", t.Name, t.Dim*t.Dim, len(elems)))
	}
	cp := append([]float64(nil), elems...)
	return Value{kind: Matrix, typ: t, data: Matrix{Elems: cp}}
}

// NewArray wraps a homogeneous slice of Values.
func NewArray(elems []Value) Value {
	cp := append([]Value(nil), elems...)
	return Value{kind: Array, data: cp}
}

// NewDictionary wraps a string-keyed, Value-valued map.
func NewDictionary(m map[string]Value) Value {
	cp := make(map[string]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: Dictionary, data: cp}
}

// NewTimeSamples wraps a time->Value map.
func NewTimeSamples(m map[float64]Value) Value {
	cp := make(map[float64]Value, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Value{kind: TimeSamples, data: cp}
}

// NewListOp wraps an arbitrary list-op value (a listop.ListOp[T] for one of
// this engine's value-bearing element types). The value package stores it
// type-erased; callers type-assert it back with Get.
func NewListOp(v any) Value { return Value{kind: ListOp, data: v} }

// ScenePathValue is the payload for a Value holding a scene path. It is
// declared as an interface to avoid value depending on the path package;
// the layer/spec packages pass a path.Path, which satisfies this trivially
// via its String method for stringification and equality via ==.
type ScenePathValue interface {
	String() string
}

func NewScenePath(p ScenePathValue) Value { return Value{kind: ScenePath, data: p} }

// LayerOffsetValue is an (offset, scale) pair for retiming a referenced
// or payloaded layer's time samples.
type LayerOffsetValue struct {
	Offset float64
	Scale  float64
}

func NewLayerOffset(offset, scale float64) Value {
	return Value{kind: LayerOffset, data: LayerOffsetValue{Offset: offset, Scale: scale}}
}

// ReferenceValue models an SdfReference: an asset path, a prim path
// (stringified, to avoid an import cycle with path), a layer offset, and
// custom data.
type ReferenceValue struct {
	AssetPath   string
	PrimPath    string
	LayerOffset LayerOffsetValue
	CustomData  map[string]Value
}

func NewReference(r ReferenceValue) Value { return Value{kind: Reference, data: r} }

// PayloadValue models an SdfPayload: an asset path, a prim path, and a
// layer offset.
type PayloadValue struct {
	AssetPath   string
	PrimPath    string
	LayerOffset LayerOffsetValue
}

func NewPayload(p PayloadValue) Value { return Value{kind: Payload, data: p} }

// Get returns v's payload cast to T, and whether the cast succeeded.
func Get[T any](v Value) (T, bool) {
	t, ok := v.data.(T)
	return t, ok
}

// As attempts to cast v to the given target kind, following the usual
// numeric widening/narrowing rules for a cast between scalar kinds.
// Non-numeric casts (e.g. Token<->String) are also supported; any other
// combination fails.
func (v Value) As(target Kind) (Value, bool) {
	if v.kind == target {
		return v, true
	}
	switch v.kind {
	case Bool, Int, UInt, Int64, UInt64, Half, Float, Double, TimeCode:
		f, ok := numeric(v)
		if !ok {
			return Empty, false
		}
		switch target {
		case Int:
			return NewInt(int32(f)), true
		case UInt:
			return NewUInt(uint32(f)), true
		case Int64:
			return NewInt64(int64(f)), true
		case UInt64:
			return NewUInt64(uint64(f)), true
		case Half:
			return NewHalf(float32(f)), true
		case Float:
			return NewFloat(float32(f)), true
		case Double:
			return NewDouble(f), true
		case TimeCode:
			return NewTimeCode(f), true
		case Bool:
			return NewBool(f != 0), true
		}
	case Token:
		if target == String {
			s, _ := Get[string](v)
			return NewString(s), true
		}
	case String:
		if target == Token {
			s, _ := Get[string](v)
			return NewToken(s), true
		}
	}
	return Empty, false
}

func numeric(v Value) (float64, bool) {
	switch v.kind {
	case Bool:
		b, _ := Get[bool](v)
		if b {
			return 1, true
		}
		return 0, true
	case Int:
		n, _ := Get[int32](v)
		return float64(n), true
	case UInt:
		n, _ := Get[uint32](v)
		return float64(n), true
	case Int64:
		n, _ := Get[int64](v)
		return float64(n), true
	case UInt64:
		n, _ := Get[uint64](v)
		return float64(n), true
	case Half:
		n, _ := Get[float32](v)
		return float64(n), true
	case Float:
		n, _ := Get[float32](v)
		return float64(n), true
	case Double:
		n, _ := Get[float64](v)
		return n, true
	case TimeCode:
		n, _ := Get[float64](v)
		return n, true
	}
	return 0, false
}

// Equals reports deep equality of kind, type, and payload.
func (v Value) Equals(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.typ != other.typ {
		return false
	}
	return reflect.DeepEqual(v.data, other.data)
}

// Hash returns a hash consistent with Equals: equal values hash equal.
func (v Value) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d|%v|%#v", v.kind, v.typ, v.data)
	return h.Sum64()
}

// String renders a debug/textual form of v.
func (v Value) String() string {
	switch v.kind {
	case Invalid:
		return "<empty>"
	case Token, String, AssetPath, PathExpression:
		s, _ := Get[string](v)
		return s
	case Opaque:
		return "<opaque>"
	default:
		return fmt.Sprint(v.data)
	}
}
