package handler

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-beanio/beanio/value"
)

// StringHandler is the identity handler for string fields.
type StringHandler struct{}

func (StringHandler) Parse(text string) (value.Value, error) {
	if text == "" {
		return value.NewNull(), nil
	}
	return value.NewString(text), nil
}

func (StringHandler) Format(v value.Value) (string, bool, error) {
	if v.IsNull() {
		return "", false, nil
	}
	return v.String(), true, nil
}

func (StringHandler) TargetType() reflect.Type { return reflect.TypeOf("") }

// IntHandler parses/formats a 32-bit signed integer.
type IntHandler struct{}

func (IntHandler) Parse(text string) (value.Value, error) {
	if text == "" {
		return value.NewNull(), nil
	}
	n, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return value.Value{}, &parseErr{text, err}
	}
	return value.NewInt(int32(n)), nil
}

func (IntHandler) Format(v value.Value) (string, bool, error) {
	if v.IsNull() {
		return "", false, nil
	}
	return strconv.FormatInt(int64(v.Int()), 10), true, nil
}

func (IntHandler) TargetType() reflect.Type { return reflect.TypeOf(int32(0)) }

// LongHandler parses/formats a 64-bit signed integer.
type LongHandler struct{}

func (LongHandler) Parse(text string) (value.Value, error) {
	if text == "" {
		return value.NewNull(), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return value.Value{}, &parseErr{text, err}
	}
	return value.NewLong(n), nil
}

func (LongHandler) Format(v value.Value) (string, bool, error) {
	if v.IsNull() {
		return "", false, nil
	}
	return strconv.FormatInt(v.Long(), 10), true, nil
}

func (LongHandler) TargetType() reflect.Type { return reflect.TypeOf(int64(0)) }

// FloatHandler parses/formats a 32-bit float.
type FloatHandler struct{}

func (FloatHandler) Parse(text string) (value.Value, error) {
	if text == "" {
		return value.NewNull(), nil
	}
	n, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return value.Value{}, &parseErr{text, err}
	}
	return value.NewFloat(float32(n)), nil
}

func (FloatHandler) Format(v value.Value) (string, bool, error) {
	if v.IsNull() {
		return "", false, nil
	}
	return strconv.FormatFloat(float64(v.Float()), 'f', -1, 32), true, nil
}

func (FloatHandler) TargetType() reflect.Type { return reflect.TypeOf(float32(0)) }

// DoubleHandler parses/formats a 64-bit float.
type DoubleHandler struct{}

func (DoubleHandler) Parse(text string) (value.Value, error) {
	if text == "" {
		return value.NewNull(), nil
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return value.Value{}, &parseErr{text, err}
	}
	return value.NewDouble(n), nil
}

func (DoubleHandler) Format(v value.Value) (string, bool, error) {
	if v.IsNull() {
		return "", false, nil
	}
	return strconv.FormatFloat(v.Double(), 'f', -1, 64), true, nil
}

func (DoubleHandler) TargetType() reflect.Type { return reflect.TypeOf(float64(0)) }

// BoolHandler parses/formats a plain boolean ("true"/"false").
type BoolHandler struct{}

func (BoolHandler) Parse(text string) (value.Value, error) {
	if text == "" {
		return value.NewNull(), nil
	}
	b, err := strconv.ParseBool(text)
	if err != nil {
		return value.Value{}, &parseErr{text, err}
	}
	return value.NewBool(b), nil
}

func (BoolHandler) Format(v value.Value) (string, bool, error) {
	if v.IsNull() {
		return "", false, nil
	}
	return strconv.FormatBool(v.Bool()), true, nil
}

func (BoolHandler) TargetType() reflect.Type { return reflect.TypeOf(false) }

// BytesHandler is the identity handler for raw byte fields (no encoding is
// assumed; field text is the raw bytes already decoded by the record
// tokenizer).
type BytesHandler struct{}

func (BytesHandler) Parse(text string) (value.Value, error) {
	if text == "" {
		return value.NewNull(), nil
	}
	return value.NewBytes([]byte(text)), nil
}

func (BytesHandler) Format(v value.Value) (string, bool, error) {
	if v.IsNull() {
		return "", false, nil
	}
	return string(v.Bytes()), true, nil
}

func (BytesHandler) TargetType() reflect.Type { return reflect.TypeOf([]byte(nil)) }

type parseErr struct {
	text  string
	cause error
}

func (e *parseErr) Error() string { return fmt.Sprintf("cannot parse %q: %v", e.text, e.cause) }
func (e *parseErr) Unwrap() error { return e.cause }
