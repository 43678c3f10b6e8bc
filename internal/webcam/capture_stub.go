//go:build !gocv

package webcam

// Open always fails without OpenCV support.
func Open(_ Config) (*Session, error) {
	return nil, ErrUnavailable
}
