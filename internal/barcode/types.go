package barcode

import (
	"context"
	"errors"
	"fmt"
	"image"
)

// Format represents a barcode symbology.
type Format int

const (
	FormatUnknown Format = iota
	FormatQR
	FormatDataMatrix
	FormatAztec
	FormatCode128
	FormatCode39
	FormatEAN8
	FormatEAN13
	FormatUPCA
	FormatUPCE
	FormatITF
	FormatCodabar
)

// Backend names in default priority order.
const (
	NameOpenCV = "opencv"
	NameZXing  = "zxing"
)

// ErrUnavailable is returned by a backend that is not linked into this build.
var ErrUnavailable = errors.New("barcode: backend not available in this build")

// Options controls backend decoding behavior.
type Options struct {
	// Formats constrains the set of symbologies to search. Empty means all.
	Formats []Format

	// TryHarder enables more exhaustive search (slower but more robust).
	TryHarder bool

	// Multi enables multi-symbol detection in a single image.
	Multi bool
}

// Wants reports whether f is requested by the options.
func (o Options) Wants(f Format) bool {
	if len(o.Formats) == 0 {
		return true
	}
	for _, x := range o.Formats {
		if x == f {
			return true
		}
	}
	return false
}

// Point is an integer point in image coordinates.
type Point struct {
	X int
	Y int
}

// Result represents a decoded barcode. Value may be empty when a backend
// located a symbol but could not decode it.
type Result struct {
	Type   Format
	Value  string
	Points []Point
	BBox   image.Rectangle
}

// Backend is a pluggable barcode decoder implementation.
type Backend interface {
	Name() string
	Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error)
}

// Names lists the known backends in default priority order.
func Names() []string { return []string{NameOpenCV, NameZXing} }

// New returns the backend registered under name.
func New(name string) (Backend, error) {
	switch name {
	case NameOpenCV:
		return newOpenCVBackend(), nil
	case NameZXing:
		return &zxingBackend{}, nil
	default:
		return nil, fmt.Errorf("barcode: unknown backend %q", name)
	}
}

func rectFromPoints(pts []Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// Available reports whether the named backend is linked into this build.
func Available(name string) bool {
	switch name {
	case NameOpenCV:
		return openCVLinked
	case NameZXing:
		return true
	default:
		return false
	}
}
