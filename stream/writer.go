package stream

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-beanio/beanio/config"
	"github.com/go-beanio/beanio/errs"
	"github.com/go-beanio/beanio/parser"
	"github.com/go-beanio/beanio/property"
	"github.com/go-beanio/beanio/value"
)

// Writer marshals beans into successive raw records on an underlying
// RecordWriter, selecting the Record definition by the record name passed
// to Write (spec §6). Unset trailing fields are omitted for delimited
// formats; fixed-length formats always emit full-width, pad-character
// filled records (spec §6 back-fill rules).
type Writer struct {
	stream *Stream
	rw     RecordWriter
	byName map[string]*parser.Component
}

func newWriter(s *Stream, rw RecordWriter) *Writer {
	byName := make(map[string]*parser.Component)
	for _, rc := range s.root.Records() {
		byName[rc.Name] = rc
	}
	return &Writer{stream: s, rw: rw, byName: byName}
}

// writeState accumulates one record's cell values as writeTree walks the
// parser/property tree, keyed by absolute delimited position.
type writeState struct {
	fields []string
	set    []bool
	descs  []*parser.FieldDescriptor
}

func newWriteState(width int) *writeState {
	return &writeState{
		fields: make([]string, width),
		set:    make([]bool, width),
		descs:  make([]*parser.FieldDescriptor, width),
	}
}

func (ws *writeState) put(pos int, desc *parser.FieldDescriptor, text string) {
	if pos < 0 || pos >= len(ws.fields) {
		return
	}
	ws.fields[pos] = text
	ws.set[pos] = true
	ws.descs[pos] = desc
}

// Write marshals bean as an occurrence of the named record definition and
// emits it to the underlying RecordWriter.
func (wr *Writer) Write(recordName string, bean any) error {
	rc, ok := wr.byName[recordName]
	if !ok {
		return &errs.WriterError{RecordName: recordName, Msg: "no such record definition"}
	}

	var beanVal reflect.Value
	if bean != nil {
		beanVal = reflect.ValueOf(bean)
	}

	ws := newWriteState(fieldCount(rc))
	if err := writeChildren(recordName, rc, beanVal, ws, wr.stream.cfg.Format, 0); err != nil {
		return err
	}

	raw := buildRaw(ws, wr.stream.cfg.Format)
	wr.stream.log.Debug("wrote record", "record", recordName)
	return wr.rw.Write(raw)
}

// WriteBean marshals bean using the Record definition whose bound property
// type matches bean's type (spec §6, "write(aggregate)" — the unqualified
// form that selects a record definition by the bean's type rather than by
// an explicit name). It returns a WriterError if no record definition is
// bound to bean's exact type (or to an interface type bean implements), or
// if more than one is (the record name is ambiguous without the qualified
// Write(recordName, bean) form).
func (wr *Writer) WriteBean(bean any) error {
	if bean == nil {
		return &errs.WriterError{Msg: "WriteBean: nil bean cannot be matched to a record definition"}
	}
	t := reflect.TypeOf(bean)

	var match string
	for name, rc := range wr.byName {
		if rc.Property == nil || rc.Property.Type == nil {
			continue
		}
		if t != rc.Property.Type && !(rc.Property.Type.Kind() == reflect.Interface && t.Implements(rc.Property.Type)) {
			continue
		}
		if match != "" {
			return &errs.WriterError{Msg: fmt.Sprintf("WriteBean: type %s matches multiple record definitions (%q and %q); use Write(recordName, bean)", t, match, name)}
		}
		match = name
	}
	if match == "" {
		return &errs.WriterError{Msg: fmt.Sprintf("WriteBean: no record definition bound to type %s", t)}
	}
	return wr.Write(match, bean)
}

// Flush flushes any buffered output.
func (wr *Writer) Flush() error { return wr.rw.Flush() }

// Close flushes and releases the underlying RecordWriter's resources.
func (wr *Writer) Close() error { return wr.rw.Close() }

// fieldCount is the number of delimited positions rc's widest path spans,
// accounting for repeating segments (MaxOccurs * segmentWidth).
func fieldCount(rc *parser.Component) int {
	max := 0
	var walk func(*parser.Component, int)
	walk = func(pc *parser.Component, shift int) {
		for _, ch := range pc.Children {
			switch ch.Kind {
			case parser.Field:
				occurs := 1
				if ch.Property != nil && ch.Property.Kind == property.Collection {
					occurs = ch.MaxOccurs
					if occurs == 0 {
						occurs = 1
					}
				}
				if p := shift + ch.Field.Position + occurs; p > max {
					max = p
				}
			case parser.Segment:
				occurs := ch.MaxOccurs
				if occurs == 0 {
					occurs = 1
				}
				w := segmentWidth(ch)
				walk(ch, shift)
				if end := shift + w*occurs; end > max {
					max = end
				}
			}
		}
	}
	walk(rc, 0)
	return max
}

// childValue fetches child's bound value off container via its accessor,
// returning an invalid value.Value-equivalent (IsNull) when container is
// invalid or child has no usable getter.
func childValue(child *parser.Component, container reflect.Value) (value.Value, error) {
	if child.Property == nil || child.Property.Accessor == nil || !container.IsValid() {
		return value.NewNull(), nil
	}
	if !child.Property.Accessor.CanGet() {
		return value.NewNull(), nil
	}
	return child.Property.Accessor.Get(container)
}

func reflectOf(v value.Value) reflect.Value {
	if v.IsNull() {
		return reflect.Value{}
	}
	raw := v.Raw()
	if raw == nil {
		return reflect.Value{}
	}
	return reflect.ValueOf(raw)
}

// writeChildren visits pc's direct Field/Segment children, fetching each
// child's value from container and writing cells into ws.
func writeChildren(recordName string, pc *parser.Component, container reflect.Value, ws *writeState, format config.Format, shift int) error {
	for _, child := range pc.Children {
		if child.Kind == parser.Field {
			if child.Property != nil && child.Property.Kind == property.Collection {
				if err := writeFieldCollection(recordName, child, container, ws, shift); err != nil {
					return err
				}
				continue
			}
			v, err := childValue(child, container)
			if err != nil {
				return &errs.WriterError{RecordName: recordName, Msg: err.Error()}
			}
			text, had, err := child.Handler.Format(v)
			if err != nil {
				return &errs.WriterError{RecordName: recordName, Msg: fmt.Sprintf("field %q: %v", child.Name, err)}
			}
			if !had || (v.IsNull() && text == "") {
				if child.Field.Default != "" {
					text, had = child.Field.Default, true
				}
			}
			if !had && child.Field.Required {
				return &errs.WriterError{RecordName: recordName, Msg: fmt.Sprintf("required field %q has no value", child.Name)}
			}
			if had || format == config.FixedLength {
				ws.put(shift+child.Field.Position, child.Field, text)
			}
			continue
		}

		// child.Kind == parser.Segment
		if child.Property == nil {
			if err := writeChildren(recordName, child, container, ws, format, shift); err != nil {
				return err
			}
			continue
		}

		v, err := childValue(child, container)
		if err != nil {
			return &errs.WriterError{RecordName: recordName, Msg: err.Error()}
		}
		rv := reflectOf(v)

		switch child.Property.Kind {
		case property.Collection:
			if !rv.IsValid() {
				continue
			}
			w := segmentWidth(child)
			for i := 0; i < rv.Len(); i++ {
				if err := writeChildren(recordName, child, rv.Index(i), ws, format, shift+i*w); err != nil {
					return err
				}
			}
		case property.Map:
			if !rv.IsValid() {
				continue
			}
			w := segmentWidth(child)
			i := 0
			for _, key := range rv.MapKeys() {
				elem := rv.MapIndex(key)
				if err := writeChildren(recordName, child, elem, ws, format, shift+i*w); err != nil {
					return err
				}
				for _, fp := range child.Fields() {
					if fp.Name == child.MapKeyField {
						ws.put(shift+i*w+fp.Field.Position, fp.Field, fmt.Sprint(key.Interface()))
					}
				}
				i++
			}
		default: // property.Complex
			if err := writeChildren(recordName, child, rv, ws, format, shift); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeFieldCollection writes a repeating scalar field (the Write-side
// counterpart of readFieldCollection) by fetching child's bound slice off
// container and formatting each element into its own shifted delimited
// position, starting at child.Field.Position and advancing by one per
// element.
func writeFieldCollection(recordName string, child *parser.Component, container reflect.Value, ws *writeState, shift int) error {
	v, err := childValue(child, container)
	if err != nil {
		return &errs.WriterError{RecordName: recordName, Msg: err.Error()}
	}
	rv := reflectOf(v)
	if !rv.IsValid() {
		return nil
	}
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i)
		text, had, err := child.Handler.Format(value.NewObject(child.Name, elem.Interface()))
		if err != nil {
			return &errs.WriterError{RecordName: recordName, Msg: fmt.Sprintf("field %q: %v", child.Name, err)}
		}
		if !had {
			continue
		}
		ws.put(shift+child.Field.Position+i, child.Field, text)
	}
	return nil
}

// buildRaw applies the format's back-fill rule to ws's accumulated cells
// (spec §6): delimited formats omit unset trailing fields while filling
// interior gaps with empty text; fixed-length formats always produce a
// full-width line, padding every field (set or not) to its configured
// width with its PadChar.
func buildRaw(ws *writeState, format config.Format) *RawRecord {
	if format == config.FixedLength {
		lineLen := 0
		for i, d := range ws.descs {
			if d == nil {
				continue
			}
			if end := d.Offset + d.Length; end > lineLen {
				lineLen = end
			}
			_ = i
		}
		buf := make([]byte, lineLen)
		for i := range buf {
			buf[i] = ' '
		}
		for pos, d := range ws.descs {
			if d == nil {
				continue
			}
			pad := d.PadChar
			if pad == 0 {
				pad = ' '
			}
			cell := padOrTruncate(ws.fields[pos], d.Length, pad)
			copy(buf[d.Offset:d.Offset+d.Length], cell)
		}
		return &RawRecord{Line: string(buf)}
	}

	last := -1
	for i, ok := range ws.set {
		if ok {
			last = i
		}
	}
	return &RawRecord{Fields: append([]string(nil), ws.fields[:last+1]...)}
}

func padOrTruncate(s string, width int, pad byte) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(string(pad), width-len(s))
}
