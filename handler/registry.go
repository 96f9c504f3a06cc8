// Package handler implements the TypeHandlerRegistry (spec §4.1): a
// resolver from (target type, stream format, handler name) to a type
// handler capable of parsing and formatting one scalar field.
package handler

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/go-beanio/beanio/value"
)

// Handler parses textual input into a Value and formats a Value back into
// text. Parse returns a Null value for empty input (not an error). Format
// returns ok=false to mean "this field is absent" (the caller emits
// nothing, subject to the format's back-fill rules).
type Handler interface {
	Parse(text string) (value.Value, error)
	Format(v value.Value) (text string, ok bool, err error)
	TargetType() reflect.Type
}

// Configurable is implemented by handlers that accept configuration
// properties (pattern, lenient, culture, time zone), per the external
// Type handler interface in spec §6.
type Configurable interface {
	Configure(props map[string]string) error
}

type key struct {
	typ    reflect.Type
	format string
	name   string
}

// Registry resolves handlers by (type, format, name), most specific first.
// It is safe for concurrent lookup and registration; registration is
// idempotent under races (last unconditional Register wins deterministically
// only when called from single-threaded compile, as documented in spec §5 —
// the concurrency guarantee is about not corrupting the map, not about
// which of two concurrent registrations "wins").
type Registry struct {
	handlers sync.Map // key -> Handler
	seqCache sync.Map // key -> Handler (synthesized sequence handlers)
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register associates a handler with (type, format, name). format and name
// may be empty to register a less specific fallback.
func (r *Registry) Register(typ reflect.Type, format, name string, h Handler) {
	r.handlers.Store(key{typ, format, name}, h)
}

// Resolve implements the most-specific-first lookup of spec §4.1:
// (type,format,name) -> (type,format) -> (type,name) -> (type). When typ is
// a slice/array of an element type with its own handler, a sequence
// handler is synthesized on demand by delegating to the element handler.
func (r *Registry) Resolve(typ reflect.Type, format, name string) (Handler, bool) {
	if h, ok := r.lookup(typ, format, name); ok {
		return h, true
	}
	if typ.Kind() == reflect.Slice && typ.Elem() != reflect.TypeOf(byte(0)) || typ.Kind() == reflect.Array {
		return r.resolveSequence(typ, format, name)
	}
	return nil, false
}

func (r *Registry) lookup(typ reflect.Type, format, name string) (Handler, bool) {
	order := []key{
		{typ, format, name},
		{typ, format, ""},
		{typ, "", name},
		{typ, "", ""},
	}
	for _, k := range order {
		if v, ok := r.handlers.Load(k); ok {
			return v.(Handler), true
		}
	}
	return nil, false
}

func (r *Registry) resolveSequence(typ reflect.Type, format, name string) (Handler, bool) {
	sk := key{typ, format, name}
	if v, ok := r.seqCache.Load(sk); ok {
		return v.(Handler), true
	}
	elem, ok := r.lookup(typ.Elem(), format, name)
	if !ok {
		return nil, false
	}
	h := &SequenceHandler{
		Elem:      elem,
		SliceType: typ,
		Delimiter: defaultDelimiter(format),
		Escape:    '\\',
	}
	actual, _ := r.seqCache.LoadOrStore(sk, h)
	return actual.(Handler), true
}

func defaultDelimiter(format string) rune {
	switch format {
	case "csv":
		return ','
	default:
		return ','
	}
}

// MustResolve is a convenience used by the compiler: it wraps Resolve with
// a ConfigurationError-shaped message rather than a bool.
func (r *Registry) MustResolve(typ reflect.Type, format, name string) (Handler, error) {
	h, ok := r.Resolve(typ, format, name)
	if !ok {
		return nil, fmt.Errorf("handler: no type handler resolvable for %s (format=%q, name=%q)", typ, format, name)
	}
	return h, nil
}
