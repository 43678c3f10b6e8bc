//go:build gocv

package barcode

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"gocv.io/x/gocv"
)

const openCVLinked = true

func newOpenCVBackend() Backend { return &opencvBackend{} }

// opencvBackend decodes QR codes with OpenCV's QRCodeDetector. It only knows
// the QR symbology; requests for other formats yield nothing.
type opencvBackend struct{}

func (b *opencvBackend) Name() string { return NameOpenCV }

func (b *opencvBackend) Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error) {
	if img == nil || !opts.Wants(FormatQR) {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("opencv: convert image: %w", err)
	}
	defer func() { _ = mat.Close() }()
	slog.Debug("OpenCV image", "rows", mat.Rows(), "cols", mat.Cols(), "channels", mat.Channels())

	det := gocv.NewQRCodeDetector()
	defer func() { _ = det.Close() }()

	return DecodeMat(&det, mat, opts.Multi), nil
}

// DecodeMat runs multi-code detection on mat and decodes every quadrangle
// found. Single detect-and-decode is only attempted when the multi pass
// produced no raw entries at all. Values may be empty for codes that were
// located but could not be decoded.
func DecodeMat(det *gocv.QRCodeDetector, mat gocv.Mat, multi bool) []Result {
	var out []Result
	if multi {
		out = decodeMulti(det, mat)
		slog.Debug("OpenCV multi detection", "raw", len(out))
	}
	if len(out) > 0 {
		return out
	}

	points := gocv.NewMat()
	defer func() { _ = points.Close() }()
	straight := gocv.NewMat()
	defer func() { _ = straight.Close() }()

	text := det.DetectAndDecode(mat, &points, &straight)
	slog.Debug("OpenCV single detect-and-decode", "text", text)
	if points.Empty() && text == "" {
		return nil
	}
	pts := matPoints(points, 0)
	return []Result{{Type: FormatQR, Value: text, Points: pts, BBox: rectFromPoints(pts)}}
}

func decodeMulti(det *gocv.QRCodeDetector, mat gocv.Mat) []Result {
	quads := gocv.NewMat()
	defer func() { _ = quads.Close() }()
	if !det.DetectMulti(mat, &quads) || quads.Empty() {
		return nil
	}

	out := make([]Result, 0, quads.Rows())
	for i := 0; i < quads.Rows(); i++ {
		row := quads.RowRange(i, i+1)
		straight := gocv.NewMat()
		text := det.Decode(mat, row, &straight)
		_ = straight.Close()
		pts := matPoints(quads, i)
		_ = row.Close()
		out = append(out, Result{Type: FormatQR, Value: text, Points: pts, BBox: rectFromPoints(pts)})
	}
	return out
}

// matPoints reads the corner points stored in row r of a CV_32FC2 points Mat.
func matPoints(m gocv.Mat, r int) []Point {
	if m.Empty() || r >= m.Rows() {
		return nil
	}
	pts := make([]Point, 0, m.Cols())
	for c := 0; c < m.Cols(); c++ {
		v := m.GetVecfAt(r, c)
		if len(v) < 2 {
			continue
		}
		pts = append(pts, Point{X: int(v[0]), Y: int(v[1])})
	}
	return pts
}
