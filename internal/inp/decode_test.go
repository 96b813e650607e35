package inp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayloadString(t *testing.T) {
	got, err := DecodePayload("a\r\nb\rc")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\nc", got)
}

func TestDecodePayloadBytesStripsBOM(t *testing.T) {
	got, err := DecodePayload([]byte("\xef\xbb\xbf[TITLE]\r\nExample"))
	require.NoError(t, err)
	assert.Equal(t, "[TITLE]\nExample", got)
}

func TestDecodePayloadBytesLossy(t *testing.T) {
	// Ill-formed UTF-8 decodes with replacement, never an error.
	got, err := DecodePayload([]byte("J1\xff 100"))
	require.NoError(t, err)
	assert.Contains(t, got, "J1")
	assert.Contains(t, got, "100")
}

func TestDecodePayloadRejectsOtherTypes(t *testing.T) {
	_, err := DecodePayload(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "int")

	_, err = DecodePayload(nil)
	require.Error(t, err)
}
