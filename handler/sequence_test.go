package handler

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequenceHandlerParseAndFormat(t *testing.T) {
	h := &SequenceHandler{
		Elem:      StringHandler{},
		SliceType: reflect.TypeOf([]string(nil)),
		Delimiter: ',',
		Escape:    '\\',
	}

	v, err := h.Parse(`a,b\,c,d`)
	require.NoError(t, err)
	items := v.Sequence()
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].String())
	assert.Equal(t, "b,c", items[1].String())
	assert.Equal(t, "d", items[2].String())

	text, ok, err := h.Format(v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `a,b\,c,d`, text)
}

func TestSequenceHandlerEmptyTextIsNull(t *testing.T) {
	h := &SequenceHandler{Elem: StringHandler{}, SliceType: reflect.TypeOf([]string(nil)), Delimiter: ','}
	v, err := h.Parse("")
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}
