// Package webcam scans a live camera feed and prints every new code once.
package webcam

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MeKo-Tech/qrlocal/internal/clipboard"
	"github.com/MeKo-Tech/qrlocal/internal/decode"
	"github.com/MeKo-Tech/qrlocal/internal/metrics"
)

var (
	// ErrUnavailable means the binary was built without OpenCV support.
	ErrUnavailable = errors.New("webcam: OpenCV required for webcam mode (build with -tags=gocv)")
	// ErrOpen means the capture device could not be opened.
	ErrOpen = errors.New("webcam: cannot access webcam")
)

// DetectedLabel is drawn on frames in which a new code was found.
const DetectedLabel = "QR detected!"

const keyEsc = 27

// Frame is one captured image. The scanner closes every frame it reads.
type Frame interface {
	Close() error
}

// Device yields frames. Read returns io.EOF once no more frames can be read.
type Device interface {
	Read() (Frame, error)
	Close() error
}

// Detector decodes the codes visible in a frame. Returned texts may contain
// empty strings for codes that were located but not decoded.
type Detector interface {
	Detect(f Frame) ([]string, error)
	Close() error
}

// Display shows a frame and returns the key pressed meanwhile, or -1.
type Display interface {
	Show(f Frame, detected bool) int
	Close() error
}

// Scanner runs the capture loop.
type Scanner struct {
	Device   Device
	Detector Detector
	// Display is optional; without it the loop runs until the context ends
	// or the device stops delivering frames.
	Display Display
	Out     io.Writer
	// Copier is optional; when set every new text is copied.
	Copier  clipboard.Copier
	Metrics *metrics.Recorder

	seen map[string]struct{}
}

// Run reads frames until the user quits, the device stops or ctx is done.
// Each distinct text is written to Out once per Scanner.
func (s *Scanner) Run(ctx context.Context) error {
	if s.Device == nil || s.Detector == nil {
		return errors.New("webcam: scanner needs a device and a detector")
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}

	hint := "Webcam mode: press Q or ESC to quit."
	if s.Display == nil {
		hint = "Webcam mode: press Ctrl+C to quit."
	}
	if _, err := fmt.Fprintln(s.Out, hint); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		frame, err := s.Device.Read()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Debug("Webcam read failed", "error", err)
			}
			return nil
		}

		quit, err := s.handleFrame(frame)
		_ = frame.Close()
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

func (s *Scanner) handleFrame(frame Frame) (bool, error) {
	texts, err := s.Detector.Detect(frame)
	if err != nil {
		slog.Debug("Webcam frame decode error", "error", err)
	}

	gotAny := false
	for _, t := range decode.Unique(texts) {
		if _, ok := s.seen[t]; ok {
			continue
		}
		s.seen[t] = struct{}{}
		gotAny = true
		s.Metrics.WebcamCode()
		if _, err := fmt.Fprintln(s.Out, t); err != nil {
			return false, fmt.Errorf("failed to write to stdout: %w", err)
		}
		if s.Copier != nil {
			if err := s.Copier.Copy(t); err != nil {
				slog.Warn("Failed to copy to clipboard", "error", err)
			}
		}
	}

	if s.Display == nil {
		return false, nil
	}
	return isQuitKey(s.Display.Show(frame, gotAny)), nil
}

// Seen returns how many distinct texts the scanner has printed.
func (s *Scanner) Seen() int { return len(s.seen) }

func isQuitKey(key int) bool {
	if key < 0 {
		return false
	}
	switch key & 0xFF {
	case keyEsc, 'q', 'Q':
		return true
	default:
		return false
	}
}

// Config selects the capture device and display.
type Config struct {
	DeviceID int
	Window   bool
	Title    string
}

// DefaultConfig opens camera 0 with a preview window.
func DefaultConfig() Config {
	return Config{DeviceID: 0, Window: true, Title: "QR Decoder"}
}

// Session bundles the components opened for a camera.
type Session struct {
	Device   Device
	Detector Detector
	Display  Display
}

// Close releases every component, returning the first error.
func (s *Session) Close() error {
	var errs []error
	if s.Display != nil {
		errs = append(errs, s.Display.Close())
	}
	if s.Detector != nil {
		errs = append(errs, s.Detector.Close())
	}
	if s.Device != nil {
		errs = append(errs, s.Device.Close())
	}
	return errors.Join(errs...)
}
