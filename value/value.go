// Package value implements the dynamically typed value used to carry data
// between type handlers, accessors, and the parser/property trees.
//
// Every scalar that crosses a type handler boundary is a Value: a tagged
// union rather than interface{}, so callers can switch on Kind without a
// type assertion and so Null is representable independently of the zero
// value of whatever Go type eventually holds the data.
package value

import "time"

// Kind discriminates the payload held by a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Long
	Float
	Double
	String
	Bytes
	Time
	Sequence
	Map
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	case Time:
		return "time"
	case Sequence:
		return "sequence"
	case Map:
		return "map"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an immutable tagged value. The zero Value is Null.
type Value struct {
	kind   Kind
	b      bool
	i      int32
	l      int64
	f      float32
	d      float64
	s      string
	by     []byte
	t      time.Time
	seq    []Value
	m      map[string]Value
	obj    any
	typeID string
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

func NewNull() Value { return Value{kind: Null} }

func NewBool(b bool) Value { return Value{kind: Bool, b: b} }
func (v Value) Bool() bool { return v.b }

func NewInt(i int32) Value  { return Value{kind: Int, i: i} }
func (v Value) Int() int32  { return v.i }

func NewLong(l int64) Value { return Value{kind: Long, l: l} }
func (v Value) Long() int64 { return v.l }

func NewFloat(f float32) Value { return Value{kind: Float, f: f} }
func (v Value) Float() float32 { return v.f }

func NewDouble(d float64) Value { return Value{kind: Double, d: d} }
func (v Value) Double() float64 { return v.d }

func NewString(s string) Value { return Value{kind: String, s: s} }
func (v Value) String() string {
	if v.kind == Null {
		return ""
	}
	return v.s
}

func NewBytes(b []byte) Value { return Value{kind: Bytes, by: b} }
func (v Value) Bytes() []byte { return v.by }

func NewTime(t time.Time) Value { return Value{kind: Time, t: t} }
func (v Value) Time() time.Time { return v.t }

func NewSequence(items ...Value) Value { return Value{kind: Sequence, seq: items} }
func (v Value) Sequence() []Value      { return v.seq }

func NewMap(m map[string]Value) Value { return Value{kind: Map, m: m} }
func (v Value) Map() map[string]Value { return v.m }

// NewObject wraps an arbitrary Go value, tagged with a caller-chosen type
// identifier used for diagnostics (e.g. the bean's configured class name).
func NewObject(typeID string, obj any) Value { return Value{kind: Object, obj: obj, typeID: typeID} }
func (v Value) Object() any                  { return v.obj }
func (v Value) TypeID() string               { return v.typeID }

// Raw returns the underlying Go value appropriate to Kind, for callers that
// need an interface{} (e.g. to feed github.com/spf13/cast coercion).
func (v Value) Raw() any {
	switch v.kind {
	case Null:
		return nil
	case Bool:
		return v.b
	case Int:
		return v.i
	case Long:
		return v.l
	case Float:
		return v.f
	case Double:
		return v.d
	case String:
		return v.s
	case Bytes:
		return v.by
	case Time:
		return v.t
	case Sequence:
		return v.seq
	case Map:
		return v.m
	case Object:
		return v.obj
	default:
		return nil
	}
}
