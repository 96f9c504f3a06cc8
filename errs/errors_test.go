package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigurationErrorMessage(t *testing.T) {
	e := &ConfigurationError{Path: "record.field", BeanType: "Order", Msg: "bad"}
	assert.Contains(t, e.Error(), "record.field")
	assert.Contains(t, e.Error(), "Order")

	e2 := &ConfigurationError{Path: "record.field", Msg: "bad"}
	assert.NotContains(t, e2.Error(), "()")
}

func TestFormatErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := &FormatError{Text: "x", Cause: cause}
	assert.ErrorIs(t, e, cause)
}

func TestTypeConversionErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := &TypeConversionError{RecordName: "r", FieldName: "f", LineNumber: 3, Text: "x", Cause: cause}
	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "r.f")
}

func TestOccurrenceError(t *testing.T) {
	e := &OccurrenceError{RecordName: "r", Min: 1, Max: 2, Count: 0}
	assert.Contains(t, e.Error(), "r")
}

func TestWrappedErrFormatNotSupported(t *testing.T) {
	wrapped := fmt.Errorf("handler: escaping string handler: %w", ErrFormatNotSupported)
	assert.ErrorIs(t, wrapped, ErrFormatNotSupported)
}
