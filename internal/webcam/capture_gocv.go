//go:build gocv

package webcam

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/MeKo-Tech/qrlocal/internal/barcode"
	"gocv.io/x/gocv"
)

// Open starts capturing from the configured camera.
func Open(cfg Config) (*Session, error) {
	vc, err := gocv.OpenVideoCapture(cfg.DeviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	if !vc.IsOpened() {
		_ = vc.Close()
		return nil, ErrOpen
	}

	s := &Session{
		Device:   &captureDevice{vc: vc},
		Detector: &qrDetector{det: gocv.NewQRCodeDetector()},
	}
	if cfg.Window {
		s.Display = &window{w: gocv.NewWindow(cfg.Title)}
	}
	return s, nil
}

type matFrame struct {
	mat gocv.Mat
}

func (f *matFrame) Close() error { return f.mat.Close() }

type captureDevice struct {
	vc *gocv.VideoCapture
}

func (d *captureDevice) Read() (Frame, error) {
	m := gocv.NewMat()
	if ok := d.vc.Read(&m); !ok || m.Empty() {
		_ = m.Close()
		return nil, io.EOF
	}
	return &matFrame{mat: m}, nil
}

func (d *captureDevice) Close() error { return d.vc.Close() }

type qrDetector struct {
	det gocv.QRCodeDetector
}

func (q *qrDetector) Detect(f Frame) ([]string, error) {
	mf, ok := f.(*matFrame)
	if !ok {
		return nil, errors.New("webcam: foreign frame type")
	}
	rs := barcode.DecodeMat(&q.det, mf.mat, true)
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Value)
	}
	return out, nil
}

func (q *qrDetector) Close() error { return q.det.Close() }

type window struct {
	w *gocv.Window
}

func (w *window) Show(f Frame, detected bool) int {
	mf, ok := f.(*matFrame)
	if !ok {
		return -1
	}
	if detected {
		_ = gocv.PutText(&mf.mat, DetectedLabel, image.Pt(20, 40), gocv.FontHersheySimplex, 1,
			color.RGBA{R: 255, G: 255, B: 255, A: 0}, 2)
	}
	_ = w.w.IMShow(mf.mat)
	return w.w.WaitKey(1)
}

func (w *window) Close() error { return w.w.Close() }
