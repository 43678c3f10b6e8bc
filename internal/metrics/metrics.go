// Package metrics records per-run decode statistics and can dump them in
// the Prometheus text exposition format for a node-exporter textfile
// collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Backend attempt statuses.
const (
	StatusFound       = "found"
	StatusEmpty       = "empty"
	StatusError       = "error"
	StatusUnavailable = "unavailable"
)

// File outcomes.
const (
	OutcomeDecoded = "decoded"
	OutcomeNoCode  = "no_code"
	OutcomeMissing = "missing"
)

// Recorder owns a private registry so repeated runs in one process (tests)
// never collide on registration.
type Recorder struct {
	reg *prometheus.Registry

	backendAttempts *prometheus.CounterVec
	decodeDuration  *prometheus.HistogramVec
	files           *prometheus.CounterVec
	codes           prometheus.Counter
	webcamCodes     prometheus.Counter
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		backendAttempts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qrlocal_backend_attempts_total",
				Help: "Decode attempts per backend and result status",
			},
			[]string{"backend", "status"},
		),
		decodeDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qrlocal_decode_duration_seconds",
				Help:    "Time spent in one backend decode call",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"backend"},
		),
		files: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qrlocal_files_total",
				Help: "Input files by outcome",
			},
			[]string{"outcome"},
		),
		codes: f.NewCounter(prometheus.CounterOpts{
			Name: "qrlocal_codes_decoded_total",
			Help: "Unique texts decoded from files",
		}),
		webcamCodes: f.NewCounter(prometheus.CounterOpts{
			Name: "qrlocal_webcam_codes_total",
			Help: "Unique texts decoded from the webcam session",
		}),
	}
}

// BackendAttempt records one backend call.
func (r *Recorder) BackendAttempt(backend, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.backendAttempts.WithLabelValues(backend, status).Inc()
	if status != StatusUnavailable {
		r.decodeDuration.WithLabelValues(backend).Observe(d.Seconds())
	}
}

// File records the outcome of one input file and how many texts it yielded.
func (r *Recorder) File(outcome string, texts int) {
	if r == nil {
		return
	}
	r.files.WithLabelValues(outcome).Inc()
	r.codes.Add(float64(texts))
}

// WebcamCode records a newly seen webcam text.
func (r *Recorder) WebcamCode() {
	if r == nil {
		return
	}
	r.webcamCodes.Inc()
}

// Gatherer exposes the registry for tests and custom exporters.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.reg }

// WriteTextfile writes the current values to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
