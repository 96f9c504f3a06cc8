// Package stream implements the runtime unmarshal/marshal drivers (spec §5,
// §6): Stream compiles a configuration into a ready-to-use Reader/Writer
// pair, walking the parser tree built by compiler.Factory against whatever
// RecordParserFactory the caller supplies.
package stream

import "io"

// RawRecord is one undecoded record handed up by a RecordReader, or handed
// down to a RecordWriter. Delimited/CSV formats populate Fields, indexed by
// FieldDescriptor.Position; fixed-length formats populate Line and leave
// Fields nil, since field boundaries come from Offset/Length instead of a
// token index.
type RawRecord struct {
	Fields     []string
	Line       string
	LineNumber int
}

// RecordReader yields successive RawRecords from an underlying stream. Read
// returns io.EOF (unwrapped) once the stream is exhausted.
type RecordReader interface {
	Read() (*RawRecord, error)
	Close() error
}

// RecordWriter accepts successive RawRecords and serializes them to an
// underlying stream.
type RecordWriter interface {
	Write(rec *RawRecord) error
	Flush() error
	Close() error
}

// RecordParserFactory is the pluggable seam between the format-agnostic
// driver in this package and a concrete on-wire format. The caller provides
// the implementation; this module ships none.
type RecordParserFactory interface {
	NewReader(r io.Reader) (RecordReader, error)
	NewWriter(w io.Writer) (RecordWriter, error)
}
