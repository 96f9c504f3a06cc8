package handler

import (
	"reflect"
	"strconv"

	"github.com/go-beanio/beanio/value"
)

// BoolAsIntHandler parses an integer equal to TrueValue as true and one
// equal to FalseValue as false; any other integer fails (spec §4.1).
// Culture-specific rendering of the literal is out of scope (§1: culture
// plumbing is an external collaborator); Format emits plain decimal text.
type BoolAsIntHandler struct {
	TrueValue  int64
	FalseValue int64
}

func (BoolAsIntHandler) TargetType() reflect.Type { return reflect.TypeOf(false) }

func (h BoolAsIntHandler) Parse(text string) (value.Value, error) {
	if text == "" {
		return value.NewNull(), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return value.Value{}, &parseErr{text, err}
	}
	switch n {
	case h.TrueValue:
		return value.NewBool(true), nil
	case h.FalseValue:
		return value.NewBool(false), nil
	default:
		return value.Value{}, &parseErr{text, errUnrecognizedBoolInt(n)}
	}
}

func (h BoolAsIntHandler) Format(v value.Value) (string, bool, error) {
	if v.IsNull() {
		return "", false, nil
	}
	if v.Bool() {
		return strconv.FormatInt(h.TrueValue, 10), true, nil
	}
	return strconv.FormatInt(h.FalseValue, 10), true, nil
}

type errUnrecognizedBoolInt int64

func (e errUnrecognizedBoolInt) Error() string {
	return "integer value " + strconv.FormatInt(int64(e), 10) + " matches neither trueValue nor falseValue"
}
