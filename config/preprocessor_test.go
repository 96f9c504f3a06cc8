package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-beanio/beanio/errs"
)

func newField(name string, pos int) *FieldConfig {
	return &FieldConfig{Name: name, Position: pos, CtorArgIndex: -1}
}

func TestPreprocessDefaultsModeAndOrder(t *testing.T) {
	cfg := &StreamConfig{
		Name:    "s",
		Records: []*RecordConfig{{Name: "r", Fields: []*FieldConfig{newField("a", 0)}}},
	}
	require.NoError(t, Preprocess(cfg))
	assert.Equal(t, ReadWrite, cfg.Mode)
	assert.Equal(t, Unordered, cfg.Order)
	assert.Equal(t, ReadWrite, cfg.Records[0].Mode)
	assert.Equal(t, 1, cfg.Records[0].MaxOccurs)
}

func TestPreprocessAutoAssignsSequentialPositions(t *testing.T) {
	cfg := &StreamConfig{
		Name: "s",
		Records: []*RecordConfig{{
			Name: "r",
			Fields: []*FieldConfig{
				newField("a", 0),
				{Name: "b", CtorArgIndex: -1},
				{Name: "c", CtorArgIndex: -1},
			},
		}},
	}
	require.NoError(t, Preprocess(cfg))
	assert.Equal(t, 0, cfg.Records[0].Fields[0].Position)
	assert.Equal(t, 1, cfg.Records[0].Fields[1].Position)
	assert.Equal(t, 2, cfg.Records[0].Fields[2].Position)
}

func TestPreprocessDetectsDuplicatePosition(t *testing.T) {
	cfg := &StreamConfig{
		Name: "s",
		Records: []*RecordConfig{{
			Name: "r",
			// A zero position after the first field means "next position",
			// so the duplicate is a non-zero one.
			Fields: []*FieldConfig{
				newField("a", 1),
				newField("b", 1),
			},
		}},
	}
	err := Preprocess(cfg)
	require.Error(t, err)
	var cerr *errs.ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestPreprocessDefaultsFieldOccursAndPadChar(t *testing.T) {
	cfg := &StreamConfig{
		Name:    "s",
		Records: []*RecordConfig{{Name: "r", Fields: []*FieldConfig{newField("a", 0)}}},
	}
	require.NoError(t, Preprocess(cfg))
	f := cfg.Records[0].Fields[0]
	assert.Equal(t, 1, f.MinOccurs)
	assert.Equal(t, 1, f.MaxOccurs)
	assert.Equal(t, byte(' '), f.PadChar)
}

func TestPreprocessDetectsGroupCycle(t *testing.T) {
	g := &GroupConfig{Name: "g"}
	g.Groups = []*GroupConfig{g} // self-reference
	cfg := &StreamConfig{Name: "s", Groups: []*GroupConfig{g}}

	err := Preprocess(cfg)
	require.Error(t, err)
	var cerr *errs.ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestPreprocessRejectsNonContiguousConstructorArgs(t *testing.T) {
	cfg := &StreamConfig{
		Name: "s",
		Records: []*RecordConfig{{
			Name: "r",
			Fields: []*FieldConfig{
				{Name: "a", CtorArgIndex: 0},
				{Name: "b", CtorArgIndex: 2},
			},
		}},
	}
	err := Preprocess(cfg)
	require.Error(t, err)
	var cerr *errs.ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestPreprocessAcceptsContiguousConstructorArgsAcrossFieldsAndSegments(t *testing.T) {
	cfg := &StreamConfig{
		Name: "s",
		Records: []*RecordConfig{{
			Name: "r",
			Fields: []*FieldConfig{
				{Name: "a", CtorArgIndex: 1},
			},
			Segments: []*SegmentConfig{
				{Name: "seg", CtorArgIndex: 0},
			},
		}},
	}
	require.NoError(t, Preprocess(cfg))
}

func TestPreprocessRejectsIncompatibleMemberMode(t *testing.T) {
	cfg := &StreamConfig{
		Name: "s",
		Mode: Read,
		Records: []*RecordConfig{{
			Name: "r",
			Fields: []*FieldConfig{
				{Name: "a", CtorArgIndex: -1, Mode: Write},
			},
		}},
	}
	err := Preprocess(cfg)
	require.Error(t, err)
	var cerr *errs.ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestPreprocessDetectsDuplicateIdentifierAcrossRecords(t *testing.T) {
	cfg := &StreamConfig{
		Name: "s",
		Records: []*RecordConfig{
			{Name: "r1", Fields: []*FieldConfig{{Name: "type", CtorArgIndex: -1, Identifier: true, Default: "A"}}},
			{Name: "r2", Fields: []*FieldConfig{{Name: "type", CtorArgIndex: -1, Identifier: true, Default: "A"}}},
		},
	}
	err := Preprocess(cfg)
	require.Error(t, err)
	var cerr *errs.ConfigurationError
	require.ErrorAs(t, err, &cerr)
}

func TestPreprocessAllowsDistinctIdentifierValues(t *testing.T) {
	cfg := &StreamConfig{
		Name: "s",
		Records: []*RecordConfig{
			{Name: "r1", Fields: []*FieldConfig{{Name: "type", CtorArgIndex: -1, Identifier: true, Default: "A"}}},
			{Name: "r2", Fields: []*FieldConfig{{Name: "type", CtorArgIndex: -1, Identifier: true, Default: "B"}}},
		},
	}
	assert.NoError(t, Preprocess(cfg))
}
