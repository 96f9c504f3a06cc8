// Package errs defines the error kinds raised by the compiler and the
// unmarshal/marshal drivers, per the engine's error handling design: every
// kind is a concrete type so callers can errors.As/errors.Is instead of
// branching on exceptions.
package errs

import (
	"errors"
	"fmt"
)

// ErrFormatNotSupported is returned by a type handler's Format when the
// handler only supports the parse direction (the escaping string handler,
// for instance: the source never implemented its inverse).
var ErrFormatNotSupported = errors.New("beanio: format not supported by this handler")

// ConfigurationError is raised during compile (Preprocessor or
// ParserFactory). It is fatal: a Stream is never produced when one occurs.
type ConfigurationError struct {
	BeanType string
	Path     string
	Msg      string
}

func (e *ConfigurationError) Error() string {
	if e.BeanType != "" {
		return fmt.Sprintf("beanio: configuration error at %s (%s): %s", e.Path, e.BeanType, e.Msg)
	}
	return fmt.Sprintf("beanio: configuration error at %s: %s", e.Path, e.Msg)
}

// FormatError wraps a single type handler parse failure.
type FormatError struct {
	Text  string
	Cause error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("beanio: cannot parse %q: %v", e.Text, e.Cause)
}

func (e *FormatError) Unwrap() error { return e.Cause }

// TypeConversionError is surfaced to the reader's ErrorHandler when a single
// field fails to parse.
type TypeConversionError struct {
	RecordName string
	FieldName  string
	LineNumber int
	Text       string
	Cause      error
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("beanio: %s.%s at line %d: cannot parse %q: %v",
		e.RecordName, e.FieldName, e.LineNumber, e.Text, e.Cause)
}

func (e *TypeConversionError) Unwrap() error { return e.Cause }

// UnidentifiableRecordError means no configured record definition matched
// an incoming record.
type UnidentifiableRecordError struct {
	LineNumber  int
	GroupName   string
	RecordToken []string
}

func (e *UnidentifiableRecordError) Error() string {
	return fmt.Sprintf("beanio: unidentifiable record in group %q at line %d", e.GroupName, e.LineNumber)
}

// OccurrenceError means a record or group violated its configured min/max
// occurrences at a group boundary.
type OccurrenceError struct {
	RecordName string
	Min, Max   int
	Count      int
}

func (e *OccurrenceError) Error() string {
	return fmt.Sprintf("beanio: record %q occurred %d times, expected between %d and %d",
		e.RecordName, e.Count, e.Min, e.Max)
}

// WriterError means the aggregate could not be marshalled, e.g. a required
// identifier field could not be produced.
type WriterError struct {
	RecordName string
	Msg        string
}

func (e *WriterError) Error() string {
	return fmt.Sprintf("beanio: cannot write record %q: %s", e.RecordName, e.Msg)
}
