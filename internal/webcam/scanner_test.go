package webcam

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/MeKo-Tech/qrlocal/internal/clipboard"
	"github.com/MeKo-Tech/qrlocal/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeFrame struct {
	texts  []string
	closed bool
}

func (f *fakeFrame) Close() error {
	f.closed = true
	return nil
}

type fakeDevice struct {
	frames []*fakeFrame
	next   int
	err    error
	closed bool
}

func (d *fakeDevice) Read() (Frame, error) {
	if d.next >= len(d.frames) {
		if d.err != nil {
			return nil, d.err
		}
		return nil, io.EOF
	}
	f := d.frames[d.next]
	d.next++
	return f, nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

type fakeDetector struct {
	failOn int
	calls  int
	closed bool
}

func (d *fakeDetector) Detect(f Frame) ([]string, error) {
	d.calls++
	if d.failOn == d.calls {
		return nil, errors.New("detector failure")
	}
	return f.(*fakeFrame).texts, nil
}

func (d *fakeDetector) Close() error {
	d.closed = true
	return nil
}

type fakeDisplay struct {
	keys     []int
	shown    int
	detected []bool
	closed   bool
}

func (d *fakeDisplay) Show(_ Frame, detected bool) int {
	d.detected = append(d.detected, detected)
	key := -1
	if d.shown < len(d.keys) {
		key = d.keys[d.shown]
	}
	d.shown++
	return key
}

func (d *fakeDisplay) Close() error {
	d.closed = true
	return nil
}

func frames(texts ...[]string) []*fakeFrame {
	out := make([]*fakeFrame, 0, len(texts))
	for _, t := range texts {
		out = append(out, &fakeFrame{texts: t})
	}
	return out
}

func outputLines(buf *bytes.Buffer) []string {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	return lines[1:]
}

func TestScannerPrintsEachTextOnce(t *testing.T) {
	dev := &fakeDevice{frames: frames(
		[]string{"https://a.example"},
		[]string{"https://a.example", "hello"},
		[]string{"", "hello"},
		nil,
	)}
	var out bytes.Buffer
	rec := &clipboard.Recorder{}
	m := metrics.New()

	s := &Scanner{Device: dev, Detector: &fakeDetector{}, Out: &out, Copier: rec, Metrics: m}
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []string{"https://a.example", "hello"}, outputLines(&out))
	assert.Equal(t, []string{"https://a.example", "hello"}, rec.Values)
	assert.Equal(t, 2, s.Seen())
	for _, f := range dev.frames {
		assert.True(t, f.closed, "every frame is closed")
	}
}

func TestScannerHeadlessHint(t *testing.T) {
	var out bytes.Buffer
	s := &Scanner{Device: &fakeDevice{}, Detector: &fakeDetector{}, Out: &out}
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, "Webcam mode: press Ctrl+C to quit.\n", out.String())
}

func TestScannerQuitKeys(t *testing.T) {
	for _, key := range []int{'q', 'Q', 27, 0x100 | 'q'} {
		dev := &fakeDevice{frames: frames([]string{"a"}, []string{"b"}, []string{"c"})}
		disp := &fakeDisplay{keys: []int{-1, key}}
		var out bytes.Buffer

		s := &Scanner{Device: dev, Detector: &fakeDetector{}, Display: disp, Out: &out}
		require.NoError(t, s.Run(context.Background()))

		assert.Equal(t, 2, disp.shown, "key %d", key)
		assert.Equal(t, []string{"a", "b"}, outputLines(&out))
		assert.True(t, strings.HasPrefix(out.String(), "Webcam mode: press Q or ESC to quit."))
	}
}

func TestScannerAnnotatesOnlyNewDetections(t *testing.T) {
	dev := &fakeDevice{frames: frames([]string{"x"}, []string{"x"}, nil, []string{"y"})}
	disp := &fakeDisplay{}
	var out bytes.Buffer

	s := &Scanner{Device: dev, Detector: &fakeDetector{}, Display: disp, Out: &out}
	require.NoError(t, s.Run(context.Background()))

	assert.Equal(t, []bool{true, false, false, true}, disp.detected)
}

func TestScannerDetectorErrorContinues(t *testing.T) {
	dev := &fakeDevice{frames: frames([]string{"a"}, []string{"b"})}
	var out bytes.Buffer

	s := &Scanner{Device: dev, Detector: &fakeDetector{failOn: 1}, Out: &out}
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"b"}, outputLines(&out))
}

func TestScannerStopsOnReadFailure(t *testing.T) {
	dev := &fakeDevice{frames: frames([]string{"a"}), err: errors.New("device unplugged")}
	var out bytes.Buffer

	s := &Scanner{Device: dev, Detector: &fakeDetector{}, Out: &out}
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"a"}, outputLines(&out))
}

func TestScannerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dev := &fakeDevice{frames: frames([]string{"a"})}
	s := &Scanner{Device: dev, Detector: &fakeDetector{}, Out: io.Discard}
	require.NoError(t, s.Run(ctx))
	assert.Equal(t, 0, dev.next)
}

func TestScannerCopyFailureIsNotFatal(t *testing.T) {
	dev := &fakeDevice{frames: frames([]string{"a"}, []string{"b"})}
	copier := clipboard.CopierFunc(func(string) error { return clipboard.ErrUnsupported })
	var out bytes.Buffer

	s := &Scanner{Device: dev, Detector: &fakeDetector{}, Out: &out, Copier: copier}
	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"a", "b"}, outputLines(&out))
}

func TestScannerRequiresComponents(t *testing.T) {
	s := &Scanner{Out: io.Discard}
	assert.Error(t, s.Run(context.Background()))
}

func TestSessionClose(t *testing.T) {
	dev, det, disp := &fakeDevice{}, &fakeDetector{}, &fakeDisplay{}
	s := &Session{Device: dev, Detector: det, Display: disp}
	require.NoError(t, s.Close())
	assert.True(t, dev.closed)
	assert.True(t, det.closed)
	assert.True(t, disp.closed)

	headless := &Session{Device: &fakeDevice{}, Detector: &fakeDetector{}}
	assert.NoError(t, headless.Close())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 0, cfg.DeviceID)
	assert.True(t, cfg.Window)
	assert.Equal(t, "QR Decoder", cfg.Title)
}
