package services

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomReference_Format(t *testing.T) {
	gen := NewRandomReference("BF-2025-")
	pattern := regexp.MustCompile(`^BF-2025-\d{6}$`)

	for i := 0; i < 50; i++ {
		assert.Regexp(t, pattern, gen.Next())
	}
}

func TestReceiptQRCode(t *testing.T) {
	encoded, err := ReceiptQRCode("BF-2025-000042", 128)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
}
