package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-beanio/beanio/value"
)

func TestBoolAsIntHandlerParse(t *testing.T) {
	h := BoolAsIntHandler{TrueValue: 1, FalseValue: 0}

	v, err := h.Parse("1")
	require.NoError(t, err)
	assert.True(t, v.Bool())

	v, err = h.Parse("0")
	require.NoError(t, err)
	assert.False(t, v.Bool())

	_, err = h.Parse("2")
	assert.Error(t, err)
}

func TestBoolAsIntHandlerFormat(t *testing.T) {
	h := BoolAsIntHandler{TrueValue: 9, FalseValue: 8}
	text, ok, err := h.Format(value.NewBool(true))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "9", text)

	text, ok, err = h.Format(value.NewBool(false))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "8", text)
}

func TestBoolAsIntHandlerEmptyTextIsNull(t *testing.T) {
	h := BoolAsIntHandler{TrueValue: 1, FalseValue: 0}
	v, err := h.Parse("")
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}
