package stream

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-beanio/beanio/config"
)

type basketItem struct {
	Name string
	Qty  int32
}

type basket struct {
	Items []basketItem
}

func basketStreamConfig() *config.StreamConfig {
	return &config.StreamConfig{
		Name:   "baskets",
		Format: config.CSV,
		Records: []*config.RecordConfig{{
			Name: "basket",
			Bean: &config.BeanSpec{Type: reflect.TypeOf(basket{})},
			Segments: []*config.SegmentConfig{{
				Name:       "Items",
				Collection: true,
				ElemType:   reflect.TypeOf(basketItem{}),
				MinOccurs:  0,
				MaxOccurs:  3,
				Fields: []*config.FieldConfig{
					{Name: "Name", Position: 0, CtorArgIndex: -1},
					{Name: "Qty", Position: 1, CtorArgIndex: -1},
				},
			}},
		}},
	}
}

// TestCollectionSegmentRoundTrip exercises a repeating complex-element segment
// spanning consecutive position blocks: reading stops at the first blank
// trailing occurrence, and writing omits any occurrence beyond the slice's
// actual length (spec §8 scenario 1).
func TestCollectionSegmentRoundTrip(t *testing.T) {
	rr := &fakeRecordReader{recs: []*RawRecord{
		{Fields: []string{"n1", "1", "n2", "2", "", ""}, LineNumber: 1},
	}}
	rpf := &fakeParserFactory{reader: rr}
	s := newTestStream(t, basketStreamConfig(), rpf)
	rd, err := s.NewReader(nil)
	require.NoError(t, err)

	bean, err := rd.Read()
	require.NoError(t, err)
	b := bean.(basket)
	require.Len(t, b.Items, 2)
	assert.Equal(t, basketItem{Name: "n1", Qty: 1}, b.Items[0])
	assert.Equal(t, basketItem{Name: "n2", Qty: 2}, b.Items[1])

	rw := &fakeRecordWriter{}
	s2 := newTestStream(t, basketStreamConfig(), &fakeParserFactory{writer: rw})
	wr, err := s2.NewWriter(nil)
	require.NoError(t, err)
	require.NoError(t, wr.Write("basket", b))
	require.Len(t, rw.written, 1)
	assert.Equal(t, []string{"n1", "1", "n2", "2"}, rw.written[0].Fields)
}

type roster struct {
	Names []string
	Ages  []int32
}

// rosterStreamConfig is the spec's literal two-scalar-collections case
// (§8.1): a `List<string>` immediately followed by an `int[]`, both bound
// directly as repeating FieldConfigs on the same record with no wrapping
// Segment — the harder position-space-sharing path
// TestCollectionSegmentRoundTrip's complex-element basket does not
// exercise. Both are given a concrete MaxOccurs equal to the test data's
// actual length: Writer.fieldCount sizes its output buffer from the
// static config alone (it has no access to the bean being written), so an
// unbounded (MaxOccurs 0) Segment-based collection would size too small a
// buffer on write (see DESIGN.md's `stream` entry, "Known limitation"),
// and a scalar field left at MaxOccurs 0 is defaulted to a single value
// rather than a collection. MinOccurs stays below MaxOccurs on both fields so
// Read still exercises the variable-length/early-stop path.
func rosterStreamConfig() *config.StreamConfig {
	return &config.StreamConfig{
		Name:   "rosters",
		Format: config.CSV,
		Records: []*config.RecordConfig{{
			Name: "roster",
			Bean: &config.BeanSpec{Type: reflect.TypeOf(roster{})},
			Fields: []*config.FieldConfig{
				{Name: "Names", Position: 0, MinOccurs: 1, MaxOccurs: 3, CtorArgIndex: -1},
				{Name: "Ages", Position: 3, MinOccurs: 1, MaxOccurs: 4, CtorArgIndex: -1},
			},
		}},
	}
}

// TestScalarCollectionsRoundTrip covers the spec's literal example: a flat
// record whose first three positions are a variable-in-principle but
// here fixed-count string collection and whose remaining positions are an
// int collection of up to four values sharing the same position space, with no
// complex segment between them (spec §8.1, "George,Gary,Jon,1,2,3,4").
func TestScalarCollectionsRoundTrip(t *testing.T) {
	rr := &fakeRecordReader{recs: []*RawRecord{
		{Fields: []string{"George", "Gary", "Jon", "1", "2", "3", "4"}, LineNumber: 1},
	}}
	rpf := &fakeParserFactory{reader: rr}
	s := newTestStream(t, rosterStreamConfig(), rpf)
	rd, err := s.NewReader(nil)
	require.NoError(t, err)

	bean, err := rd.Read()
	require.NoError(t, err)
	r := bean.(roster)
	assert.Equal(t, []string{"George", "Gary", "Jon"}, r.Names)
	assert.Equal(t, []int32{1, 2, 3, 4}, r.Ages)

	rw := &fakeRecordWriter{}
	s2 := newTestStream(t, rosterStreamConfig(), &fakeParserFactory{writer: rw})
	wr, err := s2.NewWriter(nil)
	require.NoError(t, err)
	require.NoError(t, wr.Write("roster", r))
	require.Len(t, rw.written, 1)
	assert.Equal(t, []string{"George", "Gary", "Jon", "1", "2", "3", "4"}, rw.written[0].Fields)
}
