// Package beanfactory selects, among a bean type's registered
// constructors, the one whose parameters best match a set of available
// child property types, per the source scoring rule (spec §4.3): +1 per
// matched parameter, -1/-2/-100 per unmatched parameter depending on how
// "optional" the parameter's type makes it, and a fallback to the default
// (zero-value) constructor when no candidate scores above zero.
//
// Go has no constructor overloading, so "declared constructors" are
// whatever the caller registers via Register; a bean with none registered
// always uses the zero value plus setter-bound children.
package beanfactory

import (
	"reflect"
)

// Constructor describes one way to build a value of a bean type from a
// positional list of constructor-argument values.
type Constructor struct {
	// ParamTypes are the declared parameter types, in order.
	ParamTypes []reflect.Type
	// New builds the value given exactly len(ParamTypes) arguments (unmatched
	// trailing parameters receive their zero value before New is called).
	New func(args []reflect.Value) (reflect.Value, error)
}

// Factory holds the registered constructors for bean types in a plain map.
// Register is not synchronized and must finish before the Factory is shared;
// after that, concurrent Select calls only read it.
type Factory struct {
	constructors map[reflect.Type][]Constructor
}

func New() *Factory {
	return &Factory{constructors: make(map[reflect.Type][]Constructor)}
}

// Register adds a candidate constructor for t. Constructors are scored in
// declaration order on ties, so registration order matters.
func (f *Factory) Register(t reflect.Type, c Constructor) {
	f.constructors[t] = append(f.constructors[t], c)
}

// Selection is the outcome of constructor selection for a given set of
// available argument types.
type Selection struct {
	Constructor *Constructor // nil means: use the default zero-value constructor
	Matched     []bool       // per argIndex, whether it will be passed positionally
}

// Select picks the best constructor for t given the types of N available
// constructor-argument values (childTypes[i] is nil if unknown/unavailable).
// It never returns an error: when no registered constructor scores above
// zero, the default constructor is selected.
func Select(f *Factory, t reflect.Type, childTypes []reflect.Type) Selection {
	candidates := f.constructors[t]
	bestScore := 0
	var best *Constructor
	var bestMatched []bool

	for i := range candidates {
		c := &candidates[i]
		if len(c.ParamTypes) < len(childTypes) {
			continue // can't accept all provided args
		}
		score, matched := scoreConstructor(c.ParamTypes, childTypes)
		if score > bestScore {
			bestScore = score
			best = c
			bestMatched = matched
		}
	}

	if best == nil {
		return Selection{Constructor: nil, Matched: make([]bool, len(childTypes))}
	}
	return Selection{Constructor: best, Matched: bestMatched}
}

func scoreConstructor(params []reflect.Type, childTypes []reflect.Type) (int, []bool) {
	score := 0
	matched := make([]bool, len(childTypes))
	for i, p := range params {
		if i < len(childTypes) && childTypes[i] != nil {
			ct := childTypes[i]
			if ct.AssignableTo(p) || ct.ConvertibleTo(p) {
				score++
				matched[i] = true
				continue
			}
			// Present but incompatible: heavily penalize rather than
			// silently accept a lossy/unsafe conversion.
			score -= 1000
			continue
		}
		score += unmatchedPenalty(p)
	}
	return score, matched
}

// unmatchedPenalty scores a parameter with no available argument: -1 for a
// nilable (reference-like) type, -2 for a pointer-to-value-type (the
// nearest Go analogue of Nullable<T>), -100 for anything else (a plain
// value type, effectively disqualifying the constructor alone).
func unmatchedPenalty(t reflect.Type) int {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		if t.Kind() == reflect.Ptr && isValueKind(t.Elem()) {
			return -2
		}
		return -1
	default:
		return -100
	}
}

func isValueKind(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Struct, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Bool, reflect.Array:
		return true
	default:
		return false
	}
}

// Build invokes the selected constructor (or the type's zero value when
// sel.Constructor is nil) with the given argument values, zero-filling any
// constructor parameters beyond len(args).
func Build(t reflect.Type, sel Selection, args []reflect.Value) (reflect.Value, error) {
	if sel.Constructor == nil {
		ptr := t.Kind() == reflect.Ptr
		target := t
		if ptr {
			target = t.Elem()
		}
		v := reflect.New(target)
		if ptr {
			return v, nil
		}
		return v.Elem(), nil
	}
	full := make([]reflect.Value, len(sel.Constructor.ParamTypes))
	for i, p := range sel.Constructor.ParamTypes {
		if i < len(args) && args[i].IsValid() {
			full[i] = args[i]
		} else {
			full[i] = reflect.Zero(p)
		}
	}
	return sel.Constructor.New(full)
}
