// Package accessor resolves a logical member name on a Go struct type into
// a capability to read and/or write it, following the source engine's
// name-variant probing rules (§4.2 of the spec): an explicit name from
// configuration first, then a handful of conventional name variants walked
// up the embedding chain, then (if only one direction was found) the
// inverse name is derived and searched for too.
//
// Go has no language-level "property" (getter+setter pair) the way C#/Java
// do, so step 2 of the source algorithm ("declared property") is folded
// into method-based accessors (Name()/SetName(v)) and step 3 ("declared
// field") into plain struct fields; both are probed with the same name
// variants, in the same order, against the same embedding chain.
package accessor

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
	"unsafe"

	"github.com/spf13/cast"

	"github.com/go-beanio/beanio/value"
)

// Options configures name resolution for a single member.
type Options struct {
	// GetterName/SetterName are explicit accessor names from configuration,
	// accepted literally or after stripping a conventional prefix.
	GetterName string
	SetterName string
	// AllowProtected mirrors the compile-wide allow-protected-property-access
	// flag. Go reflection cannot invoke unexported methods, so this flag
	// only extends field lookup to unexported struct fields (via unsafe),
	// not to unexported methods.
	AllowProtected bool
}

// Accessor reads and/or writes one member of an aggregate.
type Accessor interface {
	CanGet() bool
	CanSet() bool
	Get(target reflect.Value) (value.Value, error)
	Set(target reflect.Value, v value.Value) error
	// Type reports the underlying Go type the accessor reads/writes, used
	// by the compiler to resolve a type handler for the bound member.
	Type() reflect.Type
}

// ErrNotFound is returned (wrapped) when neither a property nor a field
// could be resolved for a name, matching the source's literal message.
type ErrNotFound struct {
	Type string
	Name string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("accessor: neither property nor field found for %q on %s", e.Name, e.Type)
}

// Resolve finds an Accessor for name on t (t must be a struct or pointer to
// struct). It is the entry point used by the compiler when wiring a
// PropertyComponent's binding.
func Resolve(t reflect.Type, name string, opts Options) (Accessor, error) {
	st := structType(t)

	var get, set *pathedMember

	if opts.GetterName != "" {
		get = findMember(st, literalAndStripped(opts.GetterName, getterPrefixes), opts.AllowProtected, wantGetter)
	}
	if opts.SetterName != "" {
		set = findMember(st, literalAndStripped(opts.SetterName, setterPrefixes), opts.AllowProtected, wantSetter)
	}

	if get == nil && set == nil {
		get = findMember(st, getterVariants(name), opts.AllowProtected, wantGetter)
		set = findMember(st, setterVariants(name), opts.AllowProtected, wantSetter)
	}

	// If only one of getter/setter was found, derive the counterpart name
	// by inverting the naming convention and search for it too.
	if get != nil && set == nil {
		set = findMember(st, inverseVariants(get.name, wantSetter), opts.AllowProtected, wantSetter)
	}
	if set != nil && get == nil {
		get = findMember(st, inverseVariants(set.name, wantGetter), opts.AllowProtected, wantGetter)
	}

	if get == nil && set == nil {
		return nil, &ErrNotFound{Type: t.String(), Name: name}
	}

	return &memberAccessor{get: get, set: set}, nil
}

func structType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// pathedMember is either a struct field (by index path, for embedding) or a
// method, found while walking the embedding chain.
type pathedMember struct {
	name       string
	field      reflect.StructField
	fieldPath  []int
	method     reflect.Method
	isMethod   bool
	unexported bool
}

type want int

const (
	wantGetter want = iota
	wantSetter
)

var getterPrefixes = []string{"get", "Get", "is", "Is"}
var setterPrefixes = []string{"set", "Set"}

// literalAndStripped returns the literal name plus the name with any of the
// given conventional prefixes stripped, per step 1 of the resolution order.
func literalAndStripped(name string, prefixes []string) []string {
	out := []string{name}
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) && len(name) > len(p) {
			rest := name[len(p):]
			out = append(out, decapitalize(rest))
			out = append(out, rest)
		}
	}
	return out
}

// nameVariants returns the bare-name probe order shared by getters and
// setters: name, Capitalize(name), Decapitalize(name), _name, m_name.
func nameVariants(name string) []string {
	return []string{
		name,
		capitalize(name),
		decapitalize(name),
		"_" + name,
		"m_" + name,
	}
}

// getterVariants extends nameVariants with the conventional Get/Is-prefixed
// method names, so a bean exposing only GetName()/IsActive() (no bare
// Name()/Active()) still resolves by implicit name, per step 2 of the
// source's resolution order.
func getterVariants(name string) []string {
	base := capitalize(name)
	return append(nameVariants(name), "Get"+base, "Is"+base)
}

// setterVariants extends nameVariants with the conventional Set-prefixed
// method name.
func setterVariants(name string) []string {
	base := capitalize(name)
	return append(nameVariants(name), "Set"+base)
}

// inverseVariants derives the counterpart accessor's candidate names from a
// resolved member's own name, e.g. "Name" or "GetName" -> setter variant
// "SetName", and "SetName" -> getter variants "Name","GetName","IsName".
func inverseVariants(resolvedName string, w want) []string {
	base := strings.TrimPrefix(resolvedName, "_")
	base = strings.TrimPrefix(base, "m_")
	for _, p := range []string{"Get", "Set", "Is"} {
		if rest := strings.TrimPrefix(base, p); rest != base && rest != "" && unicode.IsUpper([]rune(rest)[0]) {
			base = rest
			break
		}
	}
	base = capitalize(base)
	switch w {
	case wantGetter:
		return []string{base, "Get" + base, "Is" + base, decapitalize(base)}
	default:
		return []string{"Set" + base, base, decapitalize(base)}
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func decapitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// findMember walks the embedding chain of st looking for a method (for
// getters: zero-arg, one return value; for setters: one-arg, no/error
// return) or a field matching one of names. Static members have no Go
// analogue (methods are always bound to a value) so none are skipped
// beyond what reflect already excludes.
//
// The walk terminates at the end of the embedding chain (no more anonymous
// fields) rather than mirroring the source's unrelated
// `typeInfo.GetType() != typeof(object)` loop condition, which the spec's
// design notes call out as a likely bug; see SPEC_FULL.md §5.2.
func findMember(st reflect.Type, names []string, allowProtected bool, w want) *pathedMember {
	if st.Kind() != reflect.Struct {
		return nil
	}
	ptr := reflect.PtrTo(st)
	for _, n := range names {
		if n == "" {
			continue
		}
		if m, ok := ptr.MethodByName(n); ok && methodShapeOK(m, w) {
			return &pathedMember{name: n, method: m, isMethod: true}
		}
		if m, ok := st.MethodByName(n); ok && methodShapeOK(m, w) {
			return &pathedMember{name: n, method: m, isMethod: true}
		}
	}
	for _, n := range names {
		if n == "" {
			continue
		}
		if f, path, ok := findField(st, n, allowProtected, nil); ok {
			return &pathedMember{name: n, field: f, fieldPath: path, unexported: !isExported(n)}
		}
	}
	return nil
}

// methodShapeOK reports whether m looks like a zero-arg getter (returns one
// value) or a one-arg setter (returns nothing or an error), counting the
// receiver as argument 0.
func methodShapeOK(m reflect.Method, w want) bool {
	t := m.Type
	switch w {
	case wantGetter:
		return t.NumIn() == 1 && t.NumOut() >= 1
	default:
		if t.NumIn() != 2 {
			return false
		}
		switch t.NumOut() {
		case 0:
			return true
		case 1:
			return t.Out(0).Implements(errorType)
		default:
			return false
		}
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// findField recurses into embedded (anonymous) fields, mirroring the
// inheritance-chain walk used for "declared property"/"declared field"
// resolution. Static members do not exist for Go struct fields.
func findField(st reflect.Type, name string, allowProtected bool, path []int) (reflect.StructField, []int, bool) {
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.Name == name {
			if !isExported(f.Name) && !allowProtected {
				continue
			}
			p := append(append([]int{}, path...), i)
			return f, p, true
		}
	}
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		for ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		if ft.Kind() != reflect.Struct {
			continue
		}
		p := append(append([]int{}, path...), i)
		if found, fp, ok := findField(ft, name, allowProtected, p); ok {
			return found, fp, true
		}
	}
	return reflect.StructField{}, nil, false
}

func isExported(name string) bool {
	if name == "" {
		return false
	}
	return unicode.IsUpper([]rune(name)[0])
}

type memberAccessor struct {
	get *pathedMember
	set *pathedMember
}

func (a *memberAccessor) CanGet() bool { return a.get != nil }
func (a *memberAccessor) CanSet() bool { return a.set != nil }

func (a *memberAccessor) Type() reflect.Type {
	m := a.set
	if m == nil {
		m = a.get
	}
	if m == nil {
		return nil
	}
	if m.isMethod {
		if m == a.set {
			return m.method.Type.In(m.method.Type.NumIn() - 1)
		}
		return m.method.Type.Out(0)
	}
	return m.field.Type
}

func (a *memberAccessor) Get(target reflect.Value) (value.Value, error) {
	if a.get == nil {
		return value.NewNull(), fmt.Errorf("accessor: no getter available")
	}
	if a.get.isMethod {
		results := derefForMethod(target, a.get.method).MethodByName(a.get.name).Call(nil)
		return value.NewObject("", results[0].Interface()), nil
	}
	fv, err := fieldValue(target, a.get.fieldPath, a.get.unexported)
	if err != nil {
		return value.NewNull(), err
	}
	return value.NewObject("", fv.Interface()), nil
}

func (a *memberAccessor) Set(target reflect.Value, v value.Value) error {
	if a.set == nil {
		return fmt.Errorf("accessor: no setter available")
	}
	raw := reflect.ValueOf(v.Raw())
	if a.set.isMethod {
		recv := derefForMethod(target, a.set.method)
		m := recv.MethodByName(a.set.name)
		argT := m.Type().In(0)
		raw, err := coerce(raw, argT)
		if err != nil {
			return err
		}
		out := m.Call([]reflect.Value{raw})
		if len(out) == 1 && !out[0].IsNil() {
			return out[0].Interface().(error)
		}
		return nil
	}
	fv, err := fieldValue(target, a.set.fieldPath, a.set.unexported)
	if err != nil {
		return err
	}
	if !v.IsNull() {
		coerced, err := coerce(raw, fv.Type())
		if err != nil {
			return fmt.Errorf("accessor: set %q: %w", a.set.name, err)
		}
		raw = coerced
	} else {
		coerced := reflect.Zero(fv.Type())
		raw = coerced
	}
	fv.Set(raw)
	return nil
}

func derefForMethod(target reflect.Value, m reflect.Method) reflect.Value {
	if target.Kind() == reflect.Ptr {
		return target
	}
	if m.Type.In(0).Kind() == reflect.Ptr {
		addr := reflect.New(target.Type())
		addr.Elem().Set(target)
		return addr
	}
	return target
}

// fieldValue walks fieldPath from target (which may be a struct or pointer
// to struct), allocating intermediate embedded pointers as needed, and
// returns a settable reflect.Value even for unexported fields when
// unexported is true (AllowProtected); Go's reflect package otherwise
// refuses to Set an unexported field.
func fieldValue(target reflect.Value, path []int, unexported bool) (reflect.Value, error) {
	v := target
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		v = v.Elem()
	}
	for i, idx := range path {
		v = v.Field(idx)
		if i < len(path)-1 {
			for v.Kind() == reflect.Ptr {
				if v.IsNil() {
					v.Set(reflect.New(v.Type().Elem()))
				}
				v = v.Elem()
			}
		}
	}
	if unexported && !v.CanSet() {
		v = reflect.NewAt(v.Type(), unsafe.Pointer(v.UnsafeAddr())).Elem()
	}
	return v, nil
}

// coerce adapts src to the target type. Scalar mismatches (e.g. a handler
// producing int32 for a Go `int` field, or a string value bound to a numeric
// member) go through github.com/spf13/cast, which already knows the full
// matrix of numeric/string/bool/time conversions; reflect.Value.Convert is
// used only as a fallback for same-kind or named-type conversions cast has
// no opinion on (e.g. MyInt32 <- int32).
func coerce(src reflect.Value, target reflect.Type) (reflect.Value, error) {
	if !src.IsValid() {
		return reflect.Zero(target), nil
	}
	if src.Type() == target {
		return src, nil
	}
	if target.Kind() == reflect.Ptr {
		elem, err := coerce(src, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(target.Elem())
		p.Elem().Set(elem)
		return p, nil
	}
	if v, ok, err := castTo(src.Interface(), target); ok {
		if err != nil {
			return reflect.Value{}, fmt.Errorf("cannot assign %s to %s: %w", src.Type(), target, err)
		}
		return v, nil
	}
	if src.Type().ConvertibleTo(target) {
		return src.Convert(target), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot assign %s to %s", src.Type(), target)
}

// castTo handles the scalar target kinds cast.ToXxxE covers. ok reports
// whether target's kind is one castTo recognizes at all; when ok is false
// the caller falls back to reflect.Value.Convert.
func castTo(raw any, target reflect.Type) (reflect.Value, bool, error) {
	if target == reflect.TypeOf(time.Time{}) {
		t, err := cast.ToTimeE(raw)
		return reflect.ValueOf(t), true, err
	}
	switch target.Kind() {
	case reflect.String:
		s, err := cast.ToStringE(raw)
		return reflect.ValueOf(s).Convert(target), true, err
	case reflect.Bool:
		b, err := cast.ToBoolE(raw)
		return reflect.ValueOf(b).Convert(target), true, err
	case reflect.Int:
		n, err := cast.ToIntE(raw)
		return reflect.ValueOf(n).Convert(target), true, err
	case reflect.Int8:
		n, err := cast.ToInt8E(raw)
		return reflect.ValueOf(n).Convert(target), true, err
	case reflect.Int16:
		n, err := cast.ToInt16E(raw)
		return reflect.ValueOf(n).Convert(target), true, err
	case reflect.Int32:
		n, err := cast.ToInt32E(raw)
		return reflect.ValueOf(n).Convert(target), true, err
	case reflect.Int64:
		n, err := cast.ToInt64E(raw)
		return reflect.ValueOf(n).Convert(target), true, err
	case reflect.Uint:
		n, err := cast.ToUintE(raw)
		return reflect.ValueOf(n).Convert(target), true, err
	case reflect.Uint8:
		n, err := cast.ToUint8E(raw)
		return reflect.ValueOf(n).Convert(target), true, err
	case reflect.Uint16:
		n, err := cast.ToUint16E(raw)
		return reflect.ValueOf(n).Convert(target), true, err
	case reflect.Uint32:
		n, err := cast.ToUint32E(raw)
		return reflect.ValueOf(n).Convert(target), true, err
	case reflect.Uint64:
		n, err := cast.ToUint64E(raw)
		return reflect.ValueOf(n).Convert(target), true, err
	case reflect.Float32:
		n, err := cast.ToFloat32E(raw)
		return reflect.ValueOf(n).Convert(target), true, err
	case reflect.Float64:
		n, err := cast.ToFloat64E(raw)
		return reflect.ValueOf(n).Convert(target), true, err
	default:
		return reflect.Value{}, false, nil
	}
}
