package decode

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/qrlocal/internal/barcode"
	"github.com/MeKo-Tech/qrlocal/internal/imageio"
	"github.com/MeKo-Tech/qrlocal/internal/metrics"
)

// Builder assembles a Decoder.
type Builder struct {
	names    []string
	backends []barcode.Backend
	// implsSet means backends replaces the named chain, even when empty.
	implsSet bool
	opts     barcode.Options
	load     imageio.Options
	metrics  *metrics.Recorder
}

// NewBuilder starts from the default chain (opencv, then zxing), all
// formats, multi-symbol search with try-harder enabled.
func NewBuilder() *Builder {
	return &Builder{
		names: barcode.Names(),
		opts:  barcode.Options{TryHarder: true, Multi: true},
		load:  imageio.DefaultOptions(),
	}
}

// WithBackends sets the chain by backend name, in priority order.
func (b *Builder) WithBackends(names ...string) *Builder {
	if len(names) > 0 {
		b.names = names
	}
	return b
}

// WithBackendImpls replaces the chain with concrete backends.
func (b *Builder) WithBackendImpls(backends ...barcode.Backend) *Builder {
	b.backends = backends
	b.implsSet = true
	return b
}

// WithFormats restricts the symbologies searched.
func (b *Builder) WithFormats(formats ...barcode.Format) *Builder {
	b.opts.Formats = formats
	return b
}

// WithTryHarder toggles exhaustive search.
func (b *Builder) WithTryHarder(enabled bool) *Builder {
	b.opts.TryHarder = enabled
	return b
}

// WithMulti toggles multi-symbol detection.
func (b *Builder) WithMulti(enabled bool) *Builder {
	b.opts.Multi = enabled
	return b
}

// WithLoadOptions sets how input files are loaded.
func (b *Builder) WithLoadOptions(o imageio.Options) *Builder {
	b.load = o
	return b
}

// WithMetrics attaches a metrics recorder; nil disables recording.
func (b *Builder) WithMetrics(r *metrics.Recorder) *Builder {
	b.metrics = r
	return b
}

// Build validates the chain and returns the Decoder.
func (b *Builder) Build() (*Decoder, error) {
	backends := b.backends
	if !b.implsSet {
		seen := make(map[string]bool, len(b.names))
		for _, n := range b.names {
			if seen[n] {
				return nil, fmt.Errorf("backend %q listed twice", n)
			}
			seen[n] = true
			be, err := barcode.New(n)
			if err != nil {
				return nil, err
			}
			backends = append(backends, be)
		}
	}
	if len(backends) == 0 {
		return nil, errors.New("no decode backends configured")
	}
	return &Decoder{
		backends: backends,
		opts:     b.opts,
		load:     b.load,
		metrics:  b.metrics,
	}, nil
}
