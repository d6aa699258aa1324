//go:build !opencv

package inpaint

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_NotEnabled(t *testing.T) {
	inpainter, err := New()
	assert.ErrorIs(t, err, ErrNotEnabled)

	_, err = inpainter.Inpaint(image.NewRGBA(image.Rect(0, 0, 2, 2)), image.NewGray(image.Rect(0, 0, 2, 2)), 3)
	assert.ErrorIs(t, err, ErrNotEnabled)
}
