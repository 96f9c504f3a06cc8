package stream

import (
	"fmt"
	"reflect"

	"github.com/go-beanio/beanio/beanfactory"
	"github.com/go-beanio/beanio/config"
	"github.com/go-beanio/beanio/errs"
	"github.com/go-beanio/beanio/parser"
	"github.com/go-beanio/beanio/property"
	"github.com/go-beanio/beanio/value"
)

// bindingError is the shared read-side error raised when a field's text
// cannot be turned into its bound type (spec §5).
func bindingError(recordName, fieldName string, lineNumber int, text string, cause error) error {
	return &errs.TypeConversionError{RecordName: recordName, FieldName: fieldName, LineNumber: lineNumber, Text: text, Cause: cause}
}

// readField parses one Field parser node's text into a value.Value,
// enforcing length/regex/required/validate-expr constraints before handing
// the text to the field's resolved type handler.
func readField(recordName string, fp *parser.Component, rec *RawRecord, format config.Format) (value.Value, error) {
	return parseFieldText(recordName, fp, fp.Field, fieldText(fp.Field, rec, format), rec.LineNumber)
}

// parseFieldText is the shared scalar-parsing core used both by a plain
// Field (desc == fp.Field) and by readFieldCollection's repeating
// occurrences (desc is a per-occurrence copy of fp.Field with a shifted
// Position/Offset). fp still supplies the resolved Handler and, for
// required/default/length/regex, the occurrence-invariant field
// descriptor text comes from desc rather than fp.Field so each repeat can
// be evaluated against its own text independently.
func parseFieldText(recordName string, fp *parser.Component, desc *parser.FieldDescriptor, text string, lineNumber int) (value.Value, error) {
	if text == "" && desc.Default != "" {
		text = desc.Default
	}
	if text == "" {
		if desc.Required {
			return value.NewNull(), bindingError(recordName, fp.Name, lineNumber, text,
				fmt.Errorf("required field is empty"))
		}
		return value.NewNull(), nil
	}

	if desc.MinLength > 0 && len(text) < desc.MinLength {
		return value.NewNull(), bindingError(recordName, fp.Name, lineNumber, text,
			fmt.Errorf("length %d is less than minimum %d", len(text), desc.MinLength))
	}
	if desc.MaxLength > 0 && len(text) > desc.MaxLength {
		return value.NewNull(), bindingError(recordName, fp.Name, lineNumber, text,
			fmt.Errorf("length %d exceeds maximum %d", len(text), desc.MaxLength))
	}
	if desc.Regex != nil && !desc.Regex.MatchString(text) {
		return value.NewNull(), bindingError(recordName, fp.Name, lineNumber, text,
			fmt.Errorf("does not match pattern %q", desc.Regex.String()))
	}

	v, err := fp.Handler.Parse(text)
	if err != nil {
		return value.NewNull(), bindingError(recordName, fp.Name, lineNumber, text, err)
	}

	if desc.ValidateExpr != nil {
		env := map[string]any{"value": v.Raw(), "text": text}
		result, err := desc.ValidateExpr.Eval(env)
		if err != nil {
			return value.NewNull(), bindingError(recordName, fp.Name, lineNumber, text, err)
		}
		if ok, _ := result.(bool); !ok {
			return value.NewNull(), bindingError(recordName, fp.Name, lineNumber, text,
				fmt.Errorf("failed validation expression"))
		}
	}

	return v, nil
}

// readFieldCollection reads a repeating scalar field (FieldConfig.MaxOccurs
// > 1, compiled to a Collection-kind property directly on a Field parser
// node rather than wrapped in a Segment — spec §3 "MinOccurs/MaxOccurs > 1
// bind this field as a repeating scalar") into a slice, one element per
// delimited position starting at fp.Field.Position and advancing by one
// position per occurrence, stopping early once MinOccurs occurrences have
// been read and the next position is blank (spec §8 back-to-back scalar
// collections). Only delimited/CSV formats support this, matching
// readCollection's own Segment-based repeating behavior.
func readFieldCollection(recordName string, fp *parser.Component, rec *RawRecord, format config.Format) (reflect.Value, error) {
	elemType := fp.Property.Type
	if elemType.Kind() == reflect.Slice {
		elemType = elemType.Elem()
	}
	out := reflect.MakeSlice(reflect.SliceOf(elemType), 0, fp.MaxOccurs)

	max := fp.MaxOccurs
	for i := 0; max == 0 || i < max; i++ {
		desc := *fp.Field
		desc.Position = fp.Field.Position + i
		if format != config.FixedLength && desc.Position >= len(rec.Fields) {
			break
		}
		text := fieldText(&desc, rec, format)
		if text == "" && i >= fp.MinOccurs {
			break
		}
		v, err := parseFieldText(recordName, fp, &desc, text, rec.LineNumber)
		if err != nil {
			return reflect.Value{}, err
		}
		if v.IsNull() {
			break
		}
		out = reflect.Append(out, adaptElem(reflect.ValueOf(v.Raw()), elemType))
	}
	return out, nil
}

// readNode builds the value produced by pc (a Field, Segment, or Record
// parser node) from rec, recursing into pc's children. The result is a
// value.Value (a scalar Field), a reflect.Value (a collection Field, or a
// constructed bean for a Complex/Collection/Map property), or nil (a
// Segment/Record with no bound property).
func readNode(recordName string, pc *parser.Component, rec *RawRecord, format config.Format, beans *beanfactory.Factory) (any, error) {
	if pc.Kind == parser.Field {
		if pc.Property != nil && pc.Property.Kind == property.Collection {
			return readFieldCollection(recordName, pc, rec, format)
		}
		return readField(recordName, pc, rec, format)
	}

	if pc.Property == nil {
		// Unbound structural node: just validate children, nothing to return.
		for _, ch := range pc.Children {
			if _, err := readNode(recordName, ch, rec, format, beans); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	switch pc.Property.Kind {
	case property.Collection:
		return readCollection(recordName, pc, rec, format, beans)
	case property.Map:
		return readMap(recordName, pc, rec, format, beans)
	default:
		return readComplex(recordName, pc, rec, format, beans, 0)
	}
}

// readComplex builds one occurrence of a Complex-bound node, shifting every
// descendant Field's effective position by shift (readCollection/readMap
// pass i*segmentWidth(pc) for the i-th repeating element).
func readComplex(recordName string, pc *parser.Component, rec *RawRecord, format config.Format, beans *beanfactory.Factory, shift int) (reflect.Value, error) {
	prop := pc.Property

	shiftedRec := rec
	if shift != 0 {
		shiftedRec = shiftRecord(rec, shift)
	}

	childVals := make(map[*property.Component]any)
	for _, ch := range pc.Children {
		v, err := readNodeAt(recordName, ch, shiftedRec, format, beans)
		if err != nil {
			return reflect.Value{}, err
		}
		if ch.Property != nil {
			childVals[ch.Property] = v
		}
	}

	if prop == nil || prop.Type == nil {
		return reflect.Value{}, nil
	}

	args := make([]reflect.Value, 0, len(prop.ConstructorArgs()))
	for _, argProp := range prop.ConstructorArgs() {
		rv, err := toReflectValue(childVals[argProp], argProp.Type)
		if err != nil {
			return reflect.Value{}, bindingError(recordName, argProp.Name, rec.LineNumber, "", err)
		}
		args = append(args, rv)
	}

	// A Collection/Map property's fields and segments describe one element,
	// so each occurrence builds the element type, not the container.
	beanType := prop.Type
	if prop.Kind == property.Collection || prop.Kind == property.Map {
		beanType = beanType.Elem()
	}
	sel := beanfactory.Selection{Constructor: prop.Constructor, Matched: make([]bool, len(args))}
	beanVal, err := beanfactory.Build(beanType, sel, args)
	if err != nil {
		return reflect.Value{}, err
	}

	for _, setProp := range prop.SetterArgs() {
		if setProp.Accessor == nil || !setProp.Accessor.CanSet() {
			continue
		}
		vv := toValue(childVals[setProp])
		if err := setProp.Accessor.Set(beanVal, vv); err != nil {
			return reflect.Value{}, bindingError(recordName, setProp.Name, rec.LineNumber, "", err)
		}
	}

	return beanVal, nil
}

// readNodeAt dispatches to readField/readComplex/readCollection/readMap for
// a node already scoped to one occurrence's shifted record view.
func readNodeAt(recordName string, pc *parser.Component, rec *RawRecord, format config.Format, beans *beanfactory.Factory) (any, error) {
	if pc.Kind == parser.Field {
		if pc.Property != nil && pc.Property.Kind == property.Collection {
			return readFieldCollection(recordName, pc, rec, format)
		}
		return readField(recordName, pc, rec, format)
	}
	if pc.Property == nil {
		return nil, nil
	}
	switch pc.Property.Kind {
	case property.Collection:
		return readCollection(recordName, pc, rec, format, beans)
	case property.Map:
		return readMap(recordName, pc, rec, format, beans)
	default:
		return readComplex(recordName, pc, rec, format, beans, 0)
	}
}

// readCollection repeats pc's child pattern MinOccurs..MaxOccurs times,
// each occurrence's fields shifted by one segmentWidth(pc) block, stopping
// early once an occurrence's fields are entirely blank (spec §8 scenario 1).
// Repeating segments are only meaningful for delimited/CSV formats, where
// Position indices can be shifted; fixed-length repeating segments are not
// supported by this driver.
func readCollection(recordName string, pc *parser.Component, rec *RawRecord, format config.Format, beans *beanfactory.Factory) (reflect.Value, error) {
	elemType := pc.Property.Type
	if elemType.Kind() == reflect.Slice {
		elemType = elemType.Elem()
	}
	width := segmentWidth(pc)
	out := reflect.MakeSlice(reflect.SliceOf(elemType), 0, pc.MaxOccurs)

	max := pc.MaxOccurs
	for i := 0; max == 0 || i < max; i++ {
		if width > 0 && format != config.FixedLength && i*width >= len(rec.Fields) {
			break
		}
		if allBlank(pc, rec, format, i*width) && i >= pc.MinOccurs {
			break
		}
		elem, err := readComplex(recordName, pc, rec, format, beans, i*width)
		if err != nil {
			return reflect.Value{}, err
		}
		if !elem.IsValid() {
			break
		}
		out = reflect.Append(out, adaptElem(elem, elemType))
	}
	return out, nil
}

// readMap behaves like readCollection but additionally extracts each
// occurrence's key from the field named by pc.MapKeyField.
func readMap(recordName string, pc *parser.Component, rec *RawRecord, format config.Format, beans *beanfactory.Factory) (reflect.Value, error) {
	mapType := pc.Property.Type
	out := reflect.MakeMap(mapType)
	width := segmentWidth(pc)

	max := pc.MaxOccurs
	for i := 0; max == 0 || i < max; i++ {
		if width > 0 && format != config.FixedLength && i*width >= len(rec.Fields) {
			break
		}
		if allBlank(pc, rec, format, i*width) && i >= pc.MinOccurs {
			break
		}
		shifted := rec
		if i != 0 {
			shifted = shiftRecord(rec, i*width)
		}
		var keyText string
		for _, fp := range pc.Fields() {
			if fp.Name == pc.MapKeyField {
				keyText = fieldText(fp.Field, shifted, format)
			}
		}
		elem, err := readComplex(recordName, pc, rec, format, beans, i*width)
		if err != nil {
			return reflect.Value{}, err
		}
		if !elem.IsValid() {
			break
		}
		out.SetMapIndex(reflect.ValueOf(keyText).Convert(mapType.Key()), adaptElem(elem, mapType.Elem()))
	}
	return out, nil
}

func adaptElem(v reflect.Value, target reflect.Type) reflect.Value {
	if v.Type() == target {
		return v
	}
	if v.Type().ConvertibleTo(target) {
		return v.Convert(target)
	}
	return v
}

// allBlank reports whether every direct Field descendant of pc reads as
// empty text at the given position shift, used to detect a trailing,
// absent occurrence of a repeating segment.
func allBlank(pc *parser.Component, rec *RawRecord, format config.Format, shift int) bool {
	shifted := rec
	if shift != 0 {
		shifted = shiftRecord(rec, shift)
	}
	for _, fp := range pc.Fields() {
		if fieldText(fp.Field, shifted, format) != "" {
			return false
		}
	}
	return true
}

// segmentWidth is the number of consecutive delimited positions one
// occurrence of pc's field template spans: one more than the highest
// Position among pc's direct Field children.
func segmentWidth(pc *parser.Component) int {
	width := 0
	for _, fp := range pc.Fields() {
		if fp.Field.Position+1 > width {
			width = fp.Field.Position + 1
		}
	}
	if width == 0 {
		width = 1
	}
	return width
}

// shiftRecord returns a view of rec with every delimited field position
// rebased by -shift, i.e. Fields[shift+i] appears at index i. Used to let
// a repeating segment's fixed Position values address successive blocks of
// the underlying record.
func shiftRecord(rec *RawRecord, shift int) *RawRecord {
	if shift >= len(rec.Fields) {
		return &RawRecord{LineNumber: rec.LineNumber}
	}
	return &RawRecord{Fields: rec.Fields[shift:], LineNumber: rec.LineNumber}
}

func toValue(v any) value.Value {
	switch x := v.(type) {
	case nil:
		return value.NewNull()
	case value.Value:
		return x
	case reflect.Value:
		if !x.IsValid() {
			return value.NewNull()
		}
		return value.NewObject("", x.Interface())
	default:
		return value.NewObject("", x)
	}
}

func toReflectValue(v any, target reflect.Type) (reflect.Value, error) {
	if target == nil {
		target = reflect.TypeOf("")
	}
	switch x := v.(type) {
	case nil:
		return reflect.Zero(target), nil
	case reflect.Value:
		if !x.IsValid() {
			return reflect.Zero(target), nil
		}
		if x.Type() == target {
			return x, nil
		}
		if x.Type().ConvertibleTo(target) {
			return x.Convert(target), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot assign %s to %s", x.Type(), target)
	case value.Value:
		if x.IsNull() {
			return reflect.Zero(target), nil
		}
		raw := reflect.ValueOf(x.Raw())
		if raw.Type() == target {
			return raw, nil
		}
		if raw.Type().ConvertibleTo(target) {
			return raw.Convert(target), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot assign %s to %s", raw.Type(), target)
	default:
		return reflect.Zero(target), nil
	}
}
