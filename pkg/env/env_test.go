package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariables(t *testing.T) {
	t.Setenv("PDFTRANS_TEST_STRING", "value")
	t.Setenv("PDFTRANS_TEST_INT", "42")
	t.Setenv("PDFTRANS_TEST_FLOAT", "1.5")
	t.Setenv("PDFTRANS_TEST_BOOL", "true")
	t.Setenv("PDFTRANS_TEST_LIST", "openai, gemini,,vertex")

	assert.Equal(t, "value", StringVariable("PDFTRANS_TEST_STRING", "default"))
	assert.Equal(t, "default", StringVariable("PDFTRANS_TEST_UNSET", "default"))
	assert.Equal(t, 42, IntVariable("PDFTRANS_TEST_INT", 7))
	assert.Equal(t, 7, IntVariable("PDFTRANS_TEST_UNSET", 7))
	assert.Equal(t, 42, RequiredIntVariable("PDFTRANS_TEST_INT"))
	assert.Equal(t, 1.5, FloatVariable("PDFTRANS_TEST_FLOAT", 2))
	assert.True(t, BoolVariable("PDFTRANS_TEST_BOOL", false))
	assert.False(t, BoolVariable("PDFTRANS_TEST_UNSET", false))
	assert.Equal(t, []string{"openai", "gemini", "vertex"}, ListVariable("PDFTRANS_TEST_LIST", nil))
	assert.Equal(t, []string{"openai"}, ListVariable("PDFTRANS_TEST_UNSET", []string{"openai"}))
}

func TestVariables_Panics(t *testing.T) {
	t.Setenv("PDFTRANS_TEST_INT", "many")
	t.Setenv("PDFTRANS_TEST_BOOL", "sometimes")

	assert.Panics(t, func() { RequiredStringVariable("PDFTRANS_TEST_UNSET") })
	assert.Panics(t, func() { IntVariable("PDFTRANS_TEST_INT", 1) })
	assert.Panics(t, func() { BoolVariable("PDFTRANS_TEST_BOOL", false) })
}
