// Package beanio is the engine's entry point: it wires a config.StreamConfig
// and a caller-supplied Options into a ready-to-use stream.Stream. When
// Options leaves the type-handler registry or bean constructor factory
// unset, each NewStream call creates a fresh default one (spec §4,
// SPEC_FULL.md §1.3).
package beanio

import (
	"log/slog"

	"github.com/go-beanio/beanio/beanfactory"
	"github.com/go-beanio/beanio/config"
	"github.com/go-beanio/beanio/handler"
	"github.com/go-beanio/beanio/internal/blog"
	"github.com/go-beanio/beanio/stream"
)

// Options configures the engine itself, as distinct from the declarative
// stream-configuration tree built via the config package (SPEC_FULL.md
// §1.3). The zero value is a usable default, mirroring the teacher's own
// CSVDecoderOptions shape: no functional-options ceremony, just a plain
// struct whose fields default sensibly when left unset.
type Options struct {
	// Registry overrides the default type-handler registry. When nil,
	// handler.NewDefaultRegistry() is used.
	Registry *handler.Registry
	// Beans overrides the shared bean constructor factory. When nil, a
	// fresh beanfactory.New() with no registered constructors is used
	// (every Complex property falls back to its zero-value constructor
	// plus setter-bound members).
	Beans *beanfactory.Factory
	// RecordFormat supplies the RecordReader/RecordWriter implementation
	// for the stream's on-wire format; concrete tokenizers are an explicit
	// Non-goal of this module (see SPEC_FULL.md §0), so callers must
	// always provide one.
	RecordFormat stream.RecordParserFactory
	// Logger receives Debug-level dispatch/write detail and Warn-level
	// per-record recoveries. When nil, a discard logger is used, so
	// logging is never load-bearing for correctness.
	Logger *slog.Logger
}

// NewStream preprocesses and compiles cfg, then pairs the resulting Stream
// with opts.RecordFormat. A nil cfg is a programmer error and panics,
// mirroring the teacher's own NewDecodeMapTransform("decoder in nil")
// convention; a malformed configuration is reported via a normal error
// return instead, since that failure mode is expected to occur at runtime
// with data the caller does not fully control (SPEC_FULL.md §1.2).
func NewStream(cfg *config.StreamConfig, opts Options) (*stream.Stream, error) {
	if cfg == nil {
		panic("beanio.NewStream: cfg is nil")
	}

	registry := opts.Registry
	if registry == nil {
		var err error
		registry, err = handler.NewDefaultRegistry()
		if err != nil {
			return nil, err
		}
	}
	beans := opts.Beans
	if beans == nil {
		beans = beanfactory.New()
	}
	if opts.RecordFormat == nil {
		panic("beanio.NewStream: opts.RecordFormat is nil")
	}

	s, err := stream.NewStream(cfg, registry, beans, opts.RecordFormat)
	if err != nil {
		return nil, err
	}
	if opts.Logger != nil {
		s.SetLogger(opts.Logger)
	} else {
		s.SetLogger(blog.Discard())
	}
	return s, nil
}
