package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// phaseAttrKey is the slog.Attr key WithPhase tags a derived logger's
// attrs with. mirrorHandler pulls it into its own column rather than
// leaving it to fall out in the generic key=value tail, since which
// pipeline phase (fetch/diff/write) a line came from is the first thing
// worth scanning for when a run's log interleaves asset retries with
// album writes (spec §4.3).
const phaseAttrKey = "phase"

// mirrorHandler is a custom slog.Handler that formats records as:
//
//	<timestamp>\t<level>\t<runID>\t<phase>\t<message>\t<key=value ...>
//
// asset and album UUIDs (the identifiers every component of spec §4
// passes around) travel through the trailing key=value tail like any
// other attr, so a line reads e.g. "...write\tdownload failed\tuuid=a1".
type mirrorHandler struct {
	w     io.Writer
	runID string
	attrs []slog.Attr
}

func (h *mirrorHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *mirrorHandler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time.UTC().Format("2006-01-02T15:04:05Z")
	level := r.Level.String()

	phase, rest := splitPhase(h.attrs)

	if _, err := fmt.Fprintf(h.w, "%s\t%s\t%s\t%s\t%s", ts, level, h.runID, phase, r.Message); err != nil {
		return err
	}

	for _, a := range rest {
		fmt.Fprintf(h.w, "\t%s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == phaseAttrKey {
			return true // already surfaced in its own column
		}
		fmt.Fprintf(h.w, "\t%s=%v", a.Key, a.Value)
		return true
	})

	_, err := fmt.Fprintln(h.w)
	return err
}

// splitPhase pulls the most recently set phase attr (if any) out of
// attrs, returning it alongside the remaining attrs in original order.
func splitPhase(attrs []slog.Attr) (phase string, rest []slog.Attr) {
	rest = make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		if a.Key == phaseAttrKey {
			phase = a.Value.String()
			continue
		}
		rest = append(rest, a)
	}
	return phase, rest
}

func (h *mirrorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &mirrorHandler{
		w:     h.w,
		runID: h.runID,
		attrs: append(append([]slog.Attr{}, h.attrs...), attrs...),
	}
}

func (h *mirrorHandler) WithGroup(string) slog.Handler { return h }

// NewFileLogger creates a structured logger that writes to both
// logDir/photomirror.log and stderr. It returns the slog.Logger, the open
// log file (for the caller to close), and any error.
func NewFileLogger(logDir string, runID string) (*slog.Logger, *os.File, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}

	logPath := filepath.Join(logDir, "photomirror.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	w := io.MultiWriter(f, os.Stderr)
	handler := &mirrorHandler{w: w, runID: runID}
	return slog.New(handler), f, nil
}

// SlogAdapter wraps *slog.Logger to satisfy the Logger interface.
type SlogAdapter struct {
	L *slog.Logger
}

func (a *SlogAdapter) Debug(msg string, args ...any) { a.L.Debug(msg, args...) }
func (a *SlogAdapter) Info(msg string, args ...any)  { a.L.Info(msg, args...) }
func (a *SlogAdapter) Warn(msg string, args ...any)  { a.L.Warn(msg, args...) }
func (a *SlogAdapter) Error(msg string, args ...any) { a.L.Error(msg, args...) }

// WithPhase returns a logger tagging every subsequent line with phase;
// see mirrorHandler's dedicated phase column.
func (a *SlogAdapter) WithPhase(phase string) Logger {
	return &SlogAdapter{L: a.L.With(phaseAttrKey, phase)}
}
