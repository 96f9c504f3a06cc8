// Package blog provides the engine's ambient logging, a thin slog wrapper
// in the shape of go.jacobcolvin.com/x/log: a Format string, a level
// string, and a constructor that turns both into a ready-to-use handler.
// No third-party logging library is wired in because the pack's own answer
// to this concern, even in a repo that depends on a full charm.land log
// stack elsewhere, is a plain slog wrapper — this module follows the same
// choice rather than inventing something heavier.
package blog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format is the log output format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
)

var (
	ErrUnknownLevel  = errors.New("blog: unknown log level")
	ErrUnknownFormat = errors.New("blog: unknown log format")
)

// New builds a *slog.Logger from string-typed level/format configuration,
// for callers who don't want to import log/slog directly; the result can be
// passed as beanio.Options.Logger.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("blog: %w", err)
	}
	fmtv, err := ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("blog: %w", err)
	}
	return slog.New(handlerFor(w, lvl, fmtv)), nil
}

func handlerFor(w io.Writer, lvl slog.Level, f Format) slog.Handler {
	switch f {
	case FormatJSON:
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	default:
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	}
}

func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "debug":
		return slog.LevelDebug, nil
	}
	return 0, ErrUnknownLevel
}

func ParseFormat(format string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(format))) {
	case "", FormatLogfmt:
		return FormatLogfmt, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", ErrUnknownFormat
}

// Discard is the no-op logger used when a Reader/Writer is not given one.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
