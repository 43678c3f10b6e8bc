//go:build !gocv

package webcam

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenWithoutOpenCV(t *testing.T) {
	s, err := Open(DefaultConfig())
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, ErrUnavailable))
}
