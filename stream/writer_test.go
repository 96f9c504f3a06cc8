package stream

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-beanio/beanio/config"
)

func TestWriterEmitsDelimitedFields(t *testing.T) {
	rw := &fakeRecordWriter{}
	rpf := &fakeParserFactory{writer: rw}
	s := newTestStream(t, widgetStreamConfig(), rpf)
	wr, err := s.NewWriter(nil)
	require.NoError(t, err)

	require.NoError(t, wr.Write("widget", widget{Code: "W9", Qty: 4}))
	require.Len(t, rw.written, 1)
	assert.Equal(t, []string{"W9", "4"}, rw.written[0].Fields)
}

func TestWriterWriteBeanSelectsRecordByType(t *testing.T) {
	rw := &fakeRecordWriter{}
	rpf := &fakeParserFactory{writer: rw}
	s := newTestStream(t, widgetStreamConfig(), rpf)
	wr, err := s.NewWriter(nil)
	require.NoError(t, err)

	require.NoError(t, wr.WriteBean(widget{Code: "W9", Qty: 4}))
	require.Len(t, rw.written, 1)
	assert.Equal(t, []string{"W9", "4"}, rw.written[0].Fields)
}

func TestWriterWriteBeanUnmatchedTypeErrors(t *testing.T) {
	rw := &fakeRecordWriter{}
	rpf := &fakeParserFactory{writer: rw}
	s := newTestStream(t, widgetStreamConfig(), rpf)
	wr, err := s.NewWriter(nil)
	require.NoError(t, err)

	err = wr.WriteBean(struct{ X int }{X: 1})
	assert.Error(t, err)
}

func TestWriterUnknownRecordNameErrors(t *testing.T) {
	rw := &fakeRecordWriter{}
	rpf := &fakeParserFactory{writer: rw}
	s := newTestStream(t, widgetStreamConfig(), rpf)
	wr, err := s.NewWriter(nil)
	require.NoError(t, err)

	err = wr.Write("nope", widget{})
	assert.Error(t, err)
}

func fixedWidthStreamConfig() *config.StreamConfig {
	return &config.StreamConfig{
		Name:   "widgets-fixed",
		Format: config.FixedLength,
		Records: []*config.RecordConfig{{
			Name: "widget",
			Bean: &config.BeanSpec{Type: reflect.TypeOf(widget{})},
			Fields: []*config.FieldConfig{
				{Name: "Code", Offset: 0, Length: 4, CtorArgIndex: -1},
				{Name: "Qty", Offset: 4, Length: 3, CtorArgIndex: -1},
			},
		}},
	}
}

func TestWriterFixedLengthPadsFullWidth(t *testing.T) {
	rw := &fakeRecordWriter{}
	rpf := &fakeParserFactory{writer: rw}
	s := newTestStream(t, fixedWidthStreamConfig(), rpf)
	wr, err := s.NewWriter(nil)
	require.NoError(t, err)

	require.NoError(t, wr.Write("widget", widget{Code: "W9", Qty: 4}))
	require.Len(t, rw.written, 1)
	assert.Equal(t, "W9  4  ", rw.written[0].Line)
}
