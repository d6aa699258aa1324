//go:build !ocr

package tesseract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_NotEnabled(t *testing.T) {
	recognizer, err := New("eng")
	assert.ErrorIs(t, err, ErrNotEnabled)
	assert.Nil(t, recognizer)

	assert.NoError(t, recognizer.Close())
	_, err = recognizer.Recognize(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNotEnabled)
}
