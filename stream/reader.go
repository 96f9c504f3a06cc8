package stream

import (
	"errors"
	"io"
	"reflect"

	"github.com/go-beanio/beanio/errs"
)

// RecordContext identifies the record a recovered error occurred on, passed
// to ErrorHandler so it can log/aggregate with that context rather than
// just the bare error (SPEC_FULL.md §4, "Exceptions for control flow").
type RecordContext struct {
	RecordName string
	LineNumber int
}

// ErrorHandler is invoked for a record-level error (TypeConversionError,
// UnidentifiableRecordError) encountered while reading. An OccurrenceError
// found at end of stream is returned from Read without calling it.
// Returning nil tells the Reader to skip the offending record and
// continue; returning a non-nil error (typically the one it was given)
// makes the Reader stop and surface that error from Read. A nil
// ErrorHandler is equivalent to one that always returns its argument
// unchanged (stop on the first error).
type ErrorHandler func(RecordContext, error) error

// Reader unmarshals successive beans from an underlying RecordReader,
// dispatching each raw record to the configured Record definition whose
// Identifier matches it, honoring each enclosing RecordGroup's declared
// Order and occurrence bounds via a groupCursor pushdown recognizer (spec
// §5, §4.6).
type Reader struct {
	stream *Stream
	rr     RecordReader

	cursor *groupCursor
	last   RecordContext

	ErrorHandler ErrorHandler
}

func newReader(s *Stream, rr RecordReader) *Reader {
	return &Reader{
		stream: s,
		rr:     rr,
		cursor: newGroupCursor(s.root),
	}
}

// Read returns the next successfully identified and parsed bean, or io.EOF
// once the underlying stream is exhausted. If a record cannot be
// identified or fails to parse, the Reader's ErrorHandler (if set) decides
// whether to skip it and continue (return nil) or to stop (return an
// error); with no ErrorHandler set, any such error is returned immediately.
func (rd *Reader) Read() (any, error) {
	for {
		raw, err := rd.rr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if occErr := rd.checkOccurrences(); occErr != nil {
					return nil, occErr
				}
				return nil, io.EOF
			}
			return nil, err
		}
		rctx := RecordContext{LineNumber: raw.LineNumber}

		rc, identErr := rd.cursor.dispatch(raw, rd.stream.cfg.Format)
		if identErr != nil {
			if err := rd.handle(rctx, identErr); err != nil {
				return nil, err
			}
			rd.stream.log.Warn("skipped record after identifier evaluation error", "line", raw.LineNumber, "err", identErr)
			continue
		}
		if rc == nil {
			if rd.stream.root.AllowUnexpectedRecords {
				rd.stream.log.Debug("skipped unidentifiable record", "line", raw.LineNumber)
				continue
			}
			uerr := &errs.UnidentifiableRecordError{LineNumber: raw.LineNumber, GroupName: rd.stream.cfg.Name, RecordToken: raw.Fields}
			if err := rd.handle(rctx, uerr); err != nil {
				return nil, err
			}
			rd.stream.log.Warn("skipped unidentifiable record", "line", raw.LineNumber)
			continue
		}
		rctx.RecordName = rc.Name
		rd.stream.log.Debug("dispatched record", "record", rc.Name, "line", raw.LineNumber)

		bean, perr := readNode(rc.Name, rc, raw, rd.stream.cfg.Format, rd.stream.beans)
		if perr != nil {
			if err := rd.handle(rctx, perr); err != nil {
				return nil, err
			}
			rd.stream.log.Warn("skipped record after binding error", "record", rc.Name, "line", raw.LineNumber, "err", perr)
			continue
		}

		rd.last = rctx
		return unwrap(bean), nil
	}
}

// RecordName returns the name of the Record definition matched by the most
// recent successful Read call (spec §6, "recordName"). It is empty before
// the first successful Read.
func (rd *Reader) RecordName() string {
	return rd.last.RecordName
}

// LineNumber returns the line number of the most recent successful Read
// call (spec §6, "lineNumber"). It is 0 before the first successful Read.
func (rd *Reader) LineNumber() int {
	return rd.last.LineNumber
}

func (rd *Reader) handle(rctx RecordContext, err error) error {
	if rd.ErrorHandler == nil {
		return err
	}
	return rd.ErrorHandler(rctx, err)
}

// checkOccurrences validates, once the stream is exhausted, that every
// known Record definition occurred within its configured [MinOccurs,
// MaxOccurs] bounds, recursing through every RecordGroup via the cursor.
func (rd *Reader) checkOccurrences() error {
	return rd.cursor.checkOccurrences()
}

// Close releases the underlying RecordReader's resources.
func (rd *Reader) Close() error {
	return rd.rr.Close()
}

// unwrap turns readNode's result (a reflect.Value for a bound bean, or nil
// for an unbound record) into a plain Go value for the caller.
func unwrap(v any) any {
	if rv, ok := v.(reflect.Value); ok {
		if !rv.IsValid() {
			return nil
		}
		return rv.Interface()
	}
	return v
}
