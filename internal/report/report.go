// Package report renders decode outcomes and derives the process exit code.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MeKo-Tech/qrlocal/internal/clipboard"
	"github.com/MeKo-Tech/qrlocal/internal/decode"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Exit codes shared by the CLI.
const (
	ExitOK          = 0
	ExitUsage       = 1
	ExitNoOpenCV    = 2
	ExitCameraError = 3
	ExitNoCode      = 4
)

// CopyWarning is written to the error stream when copying fails.
const CopyWarning = "[WARN] Failed to copy to clipboard"

// FileResult is the JSON shape of one outcome.
type FileResult struct {
	File    string   `json:"file"`
	Backend string   `json:"backend,omitempty"`
	Texts   []string `json:"texts"`
	Found   bool     `json:"found"`
}

// Writer prints outcomes to Out and diagnostics to Err.
type Writer struct {
	Out    io.Writer
	Err    io.Writer
	Format string
	// Copier is optional; when set the first text of every successful file
	// is copied, so the last one ends up on the clipboard.
	Copier clipboard.Copier
}

// Missing reports inputs that do not exist. They never affect the exit code.
func (w *Writer) Missing(paths []string) error {
	for _, p := range paths {
		if _, err := fmt.Fprintf(w.Err, "%s: not found\n", p); err != nil {
			return fmt.Errorf("failed to write to stderr: %w", err)
		}
	}
	return nil
}

// Write renders outcomes and returns the exit code for them.
func (w *Writer) Write(outcomes []decode.Outcome) (int, error) {
	var err error
	switch w.Format {
	case FormatJSON:
		err = w.writeJSON(outcomes)
	case FormatText, "":
		err = w.writeText(outcomes)
	default:
		return ExitUsage, fmt.Errorf("unsupported output format: %s", w.Format)
	}
	if err != nil {
		return ExitUsage, err
	}

	w.copyFirst(outcomes)
	return ExitCode(outcomes), nil
}

func (w *Writer) writeText(outcomes []decode.Outcome) error {
	multi := len(outcomes) > 1
	for _, o := range outcomes {
		if !o.Found() {
			if _, err := fmt.Fprintf(w.Out, "%s: no QR found\n", o.Path); err != nil {
				return fmt.Errorf("failed to write to stdout: %w", err)
			}
			continue
		}
		if multi {
			if _, err := fmt.Fprintf(w.Out, "--- %s ---\n", o.Path); err != nil {
				return fmt.Errorf("failed to write to stdout: %w", err)
			}
		}
		for _, t := range o.Ordered() {
			if _, err := fmt.Fprintln(w.Out, t); err != nil {
				return fmt.Errorf("failed to write to stdout: %w", err)
			}
		}
	}
	return nil
}

func (w *Writer) writeJSON(outcomes []decode.Outcome) error {
	b, err := json.MarshalIndent(ToFileResults(outcomes), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if _, err := fmt.Fprintln(w.Out, string(b)); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

func (w *Writer) copyFirst(outcomes []decode.Outcome) {
	if w.Copier == nil {
		return
	}
	for _, o := range outcomes {
		if !o.Found() {
			continue
		}
		if err := w.Copier.Copy(o.Ordered()[0]); err != nil {
			slog.Debug("Clipboard copy failed", "path", o.Path, "error", err,
				"unsupported", errors.Is(err, clipboard.ErrUnsupported))
			_, _ = fmt.Fprintln(w.Err, CopyWarning)
		}
	}
}

// ToFileResults converts outcomes to their JSON shape with URL-first texts.
func ToFileResults(outcomes []decode.Outcome) []FileResult {
	out := make([]FileResult, 0, len(outcomes))
	for _, o := range outcomes {
		texts := o.Ordered()
		if texts == nil {
			texts = []string{}
		}
		out = append(out, FileResult{File: o.Path, Backend: o.Backend, Texts: texts, Found: o.Found()})
	}
	return out
}

// ExitCode is ExitNoCode when any outcome found nothing, else ExitOK.
func ExitCode(outcomes []decode.Outcome) int {
	code := ExitOK
	for _, o := range outcomes {
		if !o.Found() {
			code = max(code, ExitNoCode)
		}
	}
	return code
}
