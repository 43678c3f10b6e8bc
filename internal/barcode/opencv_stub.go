//go:build !gocv

package barcode

import (
	"context"
	"image"
)

const openCVLinked = false

func newOpenCVBackend() Backend { return opencvStub{} }

// opencvStub stands in for the OpenCV backend in builds without the gocv tag.
type opencvStub struct{}

func (opencvStub) Name() string { return NameOpenCV }

func (opencvStub) Decode(_ context.Context, _ image.Image, _ Options) ([]Result, error) {
	return nil, ErrUnavailable
}
