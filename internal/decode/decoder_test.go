package decode

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/qrlocal/internal/barcode"
	"github.com/MeKo-Tech/qrlocal/internal/metrics"
	"github.com/MeKo-Tech/qrlocal/internal/testutil"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend returns canned values or an error and counts calls.
type fakeBackend struct {
	name   string
	values []string
	err    error
	calls  int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Decode(_ context.Context, _ image.Image, _ barcode.Options) ([]barcode.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	rs := make([]barcode.Result, 0, len(f.values))
	for _, v := range f.values {
		rs = append(rs, barcode.Result{Type: barcode.FormatQR, Value: v})
	}
	return rs, nil
}

func oneImage() []image.Image { return []image.Image{testutil.BlankImage(4, 4)} }

func build(t *testing.T, backends ...barcode.Backend) *Decoder {
	t.Helper()
	d, err := NewBuilder().WithBackendImpls(backends...).Build()
	require.NoError(t, err)
	return d
}

func TestFirstBackendWins(t *testing.T) {
	a := &fakeBackend{name: "a", values: []string{"x", "", "x", "y"}}
	b := &fakeBackend{name: "b", values: []string{"z"}}
	d := build(t, a, b)

	texts, backend, err := d.DecodeImages(context.Background(), oneImage())
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, texts)
	assert.Equal(t, "a", backend)
	assert.Equal(t, 0, b.calls)
}

func TestFallbackOnEmptyResult(t *testing.T) {
	// Only empty raw strings: detected but not decodable.
	a := &fakeBackend{name: "a", values: []string{"", ""}}
	b := &fakeBackend{name: "b", values: []string{"z"}}
	d := build(t, a, b)

	texts, backend, err := d.DecodeImages(context.Background(), oneImage())
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, texts)
	assert.Equal(t, "b", backend)
}

func TestFallbackOnUnavailableAndError(t *testing.T) {
	a := &fakeBackend{name: "a", err: barcode.ErrUnavailable}
	b := &fakeBackend{name: "b", err: errors.New("boom")}
	c := &fakeBackend{name: "c", values: []string{"ok"}}
	rec := metrics.New()
	d, err := NewBuilder().WithBackendImpls(a, b, c).WithMetrics(rec).Build()
	require.NoError(t, err)

	texts, backend, err := d.DecodeImages(context.Background(), oneImage())
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, texts)
	assert.Equal(t, "c", backend)

	series, err := promtest.GatherAndCount(rec.Gatherer(), "qrlocal_backend_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 3, series)
}

func TestNothingFound(t *testing.T) {
	d := build(t, &fakeBackend{name: "a"}, &fakeBackend{name: "b"})
	texts, backend, err := d.DecodeImages(context.Background(), oneImage())
	require.NoError(t, err)
	assert.Empty(t, texts)
	assert.Empty(t, backend)
}

func TestUnavailableSkipsRemainingImages(t *testing.T) {
	a := &fakeBackend{name: "a", err: barcode.ErrUnavailable}
	d := build(t, a)
	imgs := append(oneImage(), oneImage()...)
	_, _, err := d.DecodeImages(context.Background(), imgs)
	require.NoError(t, err)
	assert.Equal(t, 1, a.calls)
}

func TestMergesAcrossImages(t *testing.T) {
	a := &fakeBackend{name: "a", values: []string{"same"}}
	d := build(t, a)
	imgs := append(oneImage(), oneImage()...)
	texts, _, err := d.DecodeImages(context.Background(), imgs)
	require.NoError(t, err)
	assert.Equal(t, []string{"same"}, texts)
	assert.Equal(t, 2, a.calls)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := &fakeBackend{name: "a", values: []string{"x"}}
	d := build(t, a)
	_, _, err := d.DecodeImages(ctx, oneImage())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, a.calls)
}

func TestBuilderValidation(t *testing.T) {
	_, err := NewBuilder().WithBackends("zxing", "zxing").Build()
	require.Error(t, err)

	_, err = NewBuilder().WithBackends("nope").Build()
	require.Error(t, err)

	_, err = NewBuilder().WithBackendImpls().Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no decode backends configured")

	_, err = NewBuilder().WithBackends("zxing").WithBackendImpls().Build()
	require.Error(t, err, "an explicit empty chain wins over names")

	d, err := NewBuilder().Build()
	require.NoError(t, err)
	require.Len(t, d.Backends(), 2)
	assert.Equal(t, barcode.NameOpenCV, d.Backends()[0].Name())
	assert.Equal(t, barcode.NameZXing, d.Backends()[1].Name())
}

func TestDecodeFileWithDefaultChain(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteQRFile(t, dir, "mixed.png", "plain", "https://example.com/x")

	d, err := NewBuilder().Build()
	require.NoError(t, err)

	out, err := d.DecodeFile(context.Background(), path)
	require.NoError(t, err)
	require.True(t, out.Found())
	assert.ElementsMatch(t, []string{"plain", "https://example.com/x"}, out.Texts)
	assert.Equal(t, []string{"https://example.com/x", "plain"}, out.Ordered())
	assert.NoError(t, out.LoadErr)
	assert.NotEmpty(t, out.Backend)
}

func TestDecodeFileLoadFailure(t *testing.T) {
	d, err := NewBuilder().Build()
	require.NoError(t, err)

	out, err := d.DecodeFile(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	require.NoError(t, err)
	assert.False(t, out.Found())
	assert.Error(t, out.LoadErr)
}

func TestDecodeFileBlank(t *testing.T) {
	path := testutil.WriteBlankFile(t, t.TempDir(), "blank.png")
	d, err := NewBuilder().Build()
	require.NoError(t, err)

	out, err := d.DecodeFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, out.Found())
	assert.Empty(t, out.Backend)
}
