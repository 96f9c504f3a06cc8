package handler

import (
	_ "embed"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/magiconair/properties"
)

//go:embed defaults.properties
var defaultsSource []byte

// typesByName resolves the small set of type names used in
// defaults.properties to their reflect.Type, since Go (unlike the source's
// host runtime) has no Type.GetType(string) to do this generically.
var typesByName = map[string]reflect.Type{
	"string": reflect.TypeOf(""),
	"int":    reflect.TypeOf(int32(0)),
	"int64":  reflect.TypeOf(int64(0)),
	"float32": reflect.TypeOf(float32(0)),
	"float64": reflect.TypeOf(float64(0)),
	"bool":   reflect.TypeOf(false),
	"bytes":  reflect.TypeOf([]byte(nil)),
	"time":   reflect.TypeOf(time.Time{}),
	"date":   reflect.TypeOf(time.Time{}),
	"datetime": reflect.TypeOf(time.Time{}),
}

// handlerFactories maps a defaults.properties value to a constructor for
// the handler it names.
var handlerFactories = map[string]func() Handler{
	"string": func() Handler { return StringHandler{} },
	"int":    func() Handler { return IntHandler{} },
	"long":   func() Handler { return LongHandler{} },
	"float":  func() Handler { return FloatHandler{} },
	"double": func() Handler { return DoubleHandler{} },
	"boolean": func() Handler { return BoolHandler{} },
	"bytes":  func() Handler { return BytesHandler{} },
	"datetime": func() Handler { return &XMLTemporalHandler{Kind: XMLDateTime} },
	"xmldate":     func() Handler { return &XMLTemporalHandler{Kind: XMLDate} },
	"xmltime":     func() Handler { return &XMLTemporalHandler{Kind: XMLTime} },
	"xmldatetime": func() Handler { return &XMLTemporalHandler{Kind: XMLDateTime} },
}

// NewDefaultRegistry builds a Registry pre-populated with the built-in
// handlers described by the embedded defaults.properties resource, parsed
// with github.com/magiconair/properties (spec §4.1, SPEC_FULL.md §2.2).
func NewDefaultRegistry() (*Registry, error) {
	props, err := properties.Load(defaultsSource, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("handler: loading defaults.properties: %w", err)
	}

	r := NewRegistry()
	for _, key := range props.Keys() {
		val, _ := props.Get(key)
		format, typeName, ok := splitKey(key)
		if !ok {
			continue
		}
		typ, ok := typesByName[typeName]
		if !ok {
			return nil, fmt.Errorf("handler: defaults.properties: unknown type name %q", typeName)
		}
		factory, ok := handlerFactories[val]
		if !ok {
			return nil, fmt.Errorf("handler: defaults.properties: unknown handler key %q", val)
		}
		r.Register(typ, format, "", factory())
	}
	return r, nil
}

// TypeByName resolves one of the type names used by StreamConfig/FieldConfig
// (e.g. "int", "time") to its reflect.Type, for fields not bound to a Go
// struct member (no accessor, so no type to infer from reflection).
func TypeByName(name string) (reflect.Type, bool) {
	t, ok := typesByName[name]
	return t, ok
}

func splitKey(key string) (format, typeName string, ok bool) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	format = parts[0]
	if format == "_" {
		format = ""
	}
	return format, parts[1], true
}
