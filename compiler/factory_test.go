package compiler

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-beanio/beanio/beanfactory"
	"github.com/go-beanio/beanio/config"
	"github.com/go-beanio/beanio/handler"
	"github.com/go-beanio/beanio/parser"
	"github.com/go-beanio/beanio/property"
)

type orderRecord struct {
	ID  string
	Qty int32
}

func newTestFactory(t *testing.T, cfg *config.StreamConfig) *Factory {
	t.Helper()
	reg, err := handler.NewDefaultRegistry()
	require.NoError(t, err)
	return NewFactory(reg, beanfactory.New(), cfg)
}

func TestCompileSimpleRecordWithoutBean(t *testing.T) {
	cfg := &config.StreamConfig{
		Name:   "orders",
		Format: config.CSV,
		Records: []*config.RecordConfig{{
			Name: "order",
			Fields: []*config.FieldConfig{
				{Name: "id", Position: 0, CtorArgIndex: -1},
				{Name: "qty", Position: 1, CtorArgIndex: -1, TypeName: "int32"},
			},
		}},
	}
	require.NoError(t, config.Preprocess(cfg))

	f := newTestFactory(t, cfg)
	root, err := f.Compile(cfg)
	require.NoError(t, err)

	assert.Equal(t, parser.Stream, root.Kind)
	records := root.Records()
	require.Len(t, records, 1)

	fields := records[0].Fields()
	require.Len(t, fields, 2)
	assert.Equal(t, 0, fields[0].Field.Position)
	assert.Equal(t, 1, fields[1].Field.Position)
	assert.NotNil(t, fields[1].Handler)
}

func TestCompileRecordWithBeanBindsAccessors(t *testing.T) {
	cfg := &config.StreamConfig{
		Name:   "orders",
		Format: config.CSV,
		Records: []*config.RecordConfig{{
			Name: "order",
			Bean: &config.BeanSpec{Type: reflect.TypeOf(orderRecord{})},
			Fields: []*config.FieldConfig{
				{Name: "ID", Position: 0, CtorArgIndex: -1},
				{Name: "Qty", Position: 1, CtorArgIndex: -1},
			},
		}},
	}
	require.NoError(t, config.Preprocess(cfg))

	f := newTestFactory(t, cfg)
	root, err := f.Compile(cfg)
	require.NoError(t, err)

	records := root.Records()
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Property)
	assert.Equal(t, property.Complex, records[0].Property.Kind)

	fields := records[0].Fields()
	require.Len(t, fields, 2)
	for _, fp := range fields {
		require.NotNil(t, fp.Property.Accessor)
	}
}

func TestCompileRecordWithIdentifierLiteral(t *testing.T) {
	cfg := &config.StreamConfig{
		Name:   "orders",
		Format: config.CSV,
		Records: []*config.RecordConfig{{
			Name: "header",
			Fields: []*config.FieldConfig{
				{Name: "type", Position: 0, CtorArgIndex: -1, Identifier: true, Default: "H"},
			},
		}},
	}
	require.NoError(t, config.Preprocess(cfg))

	f := newTestFactory(t, cfg)
	root, err := f.Compile(cfg)
	require.NoError(t, err)

	records := root.Records()
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Identifier)
	require.NotNil(t, records[0].Identifier.Literal)
	assert.Equal(t, "H", *records[0].Identifier.Literal)
}

func TestCompileRecordWithIdentifierExpr(t *testing.T) {
	cfg := &config.StreamConfig{
		Name:   "orders",
		Format: config.CSV,
		Records: []*config.RecordConfig{{
			Name:           "header",
			IdentifierExpr: "recordType == 'H'",
			Fields: []*config.FieldConfig{
				{Name: "type", Position: 0, CtorArgIndex: -1},
			},
		}},
	}
	require.NoError(t, config.Preprocess(cfg))

	f := newTestFactory(t, cfg)
	root, err := f.Compile(cfg)
	require.NoError(t, err)

	records := root.Records()
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Identifier)
	require.NotNil(t, records[0].Identifier.Expr)
}

func TestCompileRejectsInvalidIdentifierRegex(t *testing.T) {
	cfg := &config.StreamConfig{
		Name:   "orders",
		Format: config.CSV,
		Records: []*config.RecordConfig{{
			Name: "header",
			Fields: []*config.FieldConfig{
				{Name: "type", Position: 0, CtorArgIndex: -1, Identifier: true, IdentifierRegex: "("},
			},
		}},
	}
	require.NoError(t, config.Preprocess(cfg))

	f := newTestFactory(t, cfg)
	_, err := f.Compile(cfg)
	assert.Error(t, err)
}

func TestCompileStackBalancedAfterGroups(t *testing.T) {
	cfg := &config.StreamConfig{
		Name:   "orders",
		Format: config.CSV,
		Groups: []*config.GroupConfig{{
			Name: "g",
			Records: []*config.RecordConfig{{
				Name:   "order",
				Fields: []*config.FieldConfig{{Name: "id", Position: 0, CtorArgIndex: -1}},
			}},
		}},
	}
	require.NoError(t, config.Preprocess(cfg))

	f := newTestFactory(t, cfg)
	root, err := f.Compile(cfg)
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	assert.Equal(t, parser.RecordGroup, root.Children[0].Kind)
}
