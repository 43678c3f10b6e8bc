// Package clipboard copies decoded text to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available
// (e.g. a Linux box without xclip, xsel or wl-copy).
var ErrUnsupported = errors.New("clipboard: not supported on this system")

// Copier places text on a clipboard.
type Copier interface {
	Copy(text string) error
}

// CopierFunc adapts a function to Copier.
type CopierFunc func(string) error

// Copy calls f(text).
func (f CopierFunc) Copy(text string) error { return f(text) }

type system struct{}

// System returns a Copier backed by the OS clipboard.
func System() Copier { return system{} }

func (system) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

// Recorder keeps every copied value; the last one is what a real clipboard
// would hold.
type Recorder struct {
	Values []string
}

// Copy appends text.
func (r *Recorder) Copy(text string) error {
	r.Values = append(r.Values, text)
	return nil
}

// Last returns the most recently copied value.
func (r *Recorder) Last() string {
	if len(r.Values) == 0 {
		return ""
	}
	return r.Values[len(r.Values)-1]
}
