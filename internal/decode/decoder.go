// Package decode runs the backend fallback chain over input images and
// normalizes what comes back.
package decode

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/qrlocal/internal/barcode"
	"github.com/MeKo-Tech/qrlocal/internal/imageio"
	"github.com/MeKo-Tech/qrlocal/internal/metrics"
)

// Outcome is the decode result for one input file.
type Outcome struct {
	Path string
	// Texts are unique, NFC-normalized values in backend order.
	Texts []string
	// Backend names the backend that produced Texts; empty when nothing was found.
	Backend string
	// LoadErr is set when the input could not be turned into images.
	LoadErr error
}

// Found reports whether any text was decoded.
func (o Outcome) Found() bool { return len(o.Texts) > 0 }

// Ordered returns Texts with URLs first.
func (o Outcome) Ordered() []string { return OrderURLFirst(o.Texts) }

// Decoder tries each backend in order until one yields text.
type Decoder struct {
	backends []barcode.Backend
	opts     barcode.Options
	load     imageio.Options
	metrics  *metrics.Recorder
}

// Backends returns the chain in priority order.
func (d *Decoder) Backends() []barcode.Backend { return d.backends }

// DecodeFile loads path and runs the chain over its images. A load failure
// is not an error: the outcome simply carries no texts.
func (d *Decoder) DecodeFile(ctx context.Context, path string) (Outcome, error) {
	slog.Debug("Decoding file", "path", path)
	out := Outcome{Path: path}

	imgs, meta, err := imageio.Load(path, d.load)
	if err != nil {
		slog.Debug("Failed to load input", "path", path, "error", err)
		out.LoadErr = err
		return out, nil
	}
	slog.Debug("Loaded input", "path", path, "format", meta.Format,
		"width", meta.Width, "height", meta.Height, "images", meta.Images)

	texts, backend, err := d.DecodeImages(ctx, imgs)
	if err != nil {
		return out, err
	}
	out.Texts = texts
	out.Backend = backend
	return out, nil
}

// DecodeImages returns the normalized texts of the first backend that finds
// anything across imgs, and that backend's name. Only context cancellation
// is reported as an error; backend failures fall through to the next one.
func (d *Decoder) DecodeImages(ctx context.Context, imgs []image.Image) ([]string, string, error) {
	for _, be := range d.backends {
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		texts, err := d.runBackend(ctx, be, imgs)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, "", ctxErr
			}
			continue
		}
		if len(texts) > 0 {
			slog.Debug("Backend succeeded with non-empty results", "backend", be.Name(), "texts", texts)
			return texts, be.Name(), nil
		}
		slog.Debug("Backend found nothing", "backend", be.Name())
	}
	return nil, "", nil
}

func (d *Decoder) runBackend(ctx context.Context, be barcode.Backend, imgs []image.Image) ([]string, error) {
	start := time.Now()
	var raw []string
	var failures int
	for i, img := range imgs {
		rs, err := be.Decode(ctx, img, d.opts)
		if errors.Is(err, barcode.ErrUnavailable) {
			slog.Debug("Backend not available", "backend", be.Name())
			d.metrics.BackendAttempt(be.Name(), metrics.StatusUnavailable, 0)
			return nil, err
		}
		if err != nil {
			slog.Debug("Backend decode error", "backend", be.Name(), "image", i, "error", err)
			failures++
			continue
		}
		for _, r := range rs {
			raw = append(raw, r.Value)
		}
	}
	elapsed := time.Since(start)

	for i, t := range raw {
		slog.Debug("Backend raw result", "backend", be.Name(), "index", i, "text", fmt.Sprintf("%q", t))
	}
	texts := Unique(raw)

	switch {
	case len(texts) > 0:
		d.metrics.BackendAttempt(be.Name(), metrics.StatusFound, elapsed)
	case failures > 0 && failures == len(imgs):
		d.metrics.BackendAttempt(be.Name(), metrics.StatusError, elapsed)
		return nil, fmt.Errorf("%s: all %d image(s) failed to decode", be.Name(), failures)
	default:
		d.metrics.BackendAttempt(be.Name(), metrics.StatusEmpty, elapsed)
	}
	return texts, nil
}
