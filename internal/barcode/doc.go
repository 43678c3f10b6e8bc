// Package barcode provides a pluggable interface for barcode decoding
// backends and the two implementations the decoder chains together.
//
// The zxing backend is pure Go and always linked. The opencv backend needs
// CGO and a local OpenCV installation, so it is only compiled with the
// build tag `gocv`; without it the backend is still registered but every
// call returns ErrUnavailable, which the decode chain treats as "skip".
//
// Example:
//
//	go build -tags=gocv ./...
package barcode
