package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-beanio/beanio/errs"
	"github.com/go-beanio/beanio/value"
)

func TestEscapingStringHandlerParse(t *testing.T) {
	h := EscapingStringHandler{}
	v, err := h.Parse(`a\nb\tc\\d\qe`)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\tc\\d" + "qe", v.String())
}

func TestEscapingStringHandlerNullEscapingOptIn(t *testing.T) {
	h := EscapingStringHandler{NullEscaping: true}
	v, err := h.Parse(`a\0b`)
	require.NoError(t, err)
	assert.Equal(t, "a\x00b", v.String())

	h2 := EscapingStringHandler{}
	v2, err := h2.Parse(`a\0b`)
	require.NoError(t, err)
	assert.Equal(t, "a0b", v2.String())
}

func TestEscapingStringHandlerFormatNotSupported(t *testing.T) {
	h := EscapingStringHandler{}
	_, _, err := h.Format(value.NewString("x"))
	assert.ErrorIs(t, err, errs.ErrFormatNotSupported)
}
