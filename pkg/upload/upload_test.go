package upload_test

import (
	"bytes"
	"strings"
	"testing"

	"anoa.com/eduainexus/pkg/apperror"
	"anoa.com/eduainexus/pkg/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestReadFrom(t *testing.T) {
	t.Run("sniffs png", func(t *testing.T) {
		f, err := upload.ReadFrom(bytes.NewReader(pngHeader), "dir/bai-tap.png", 1024)
		require.NoError(t, err)

		assert.Equal(t, "image/png", f.MIMEType())
		assert.Equal(t, "bai-tap", f.Title())
		assert.True(t, f.Is("image/*"))
		assert.False(t, f.Is("video/*", "application/pdf"))
		assert.NoError(t, f.Require("image/*"))
	})

	t.Run("text drops charset", func(t *testing.T) {
		f, err := upload.ReadFrom(strings.NewReader("Ghi chú bài học"), "notes.txt", 1024)
		require.NoError(t, err)

		assert.Equal(t, "text/plain", f.MIMEType())
		assert.True(t, f.Is("text/plain"))
	})

	t.Run("pdf", func(t *testing.T) {
		f, err := upload.ReadFrom(strings.NewReader("%PDF-1.7\n1 0 obj\n"), "doc.pdf", 1024)
		require.NoError(t, err)

		assert.True(t, f.Is("application/pdf"))
	})

	t.Run("too large", func(t *testing.T) {
		_, err := upload.ReadFrom(bytes.NewReader(make([]byte, 11)), "big.bin", 10)
		assert.ErrorIs(t, err, apperror.ErrPayloadTooLarge)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := upload.ReadFrom(strings.NewReader(""), "empty.txt", 10)
		assert.ErrorIs(t, err, apperror.ErrBadRequest)
	})

	t.Run("unsupported", func(t *testing.T) {
		f, err := upload.ReadFrom(strings.NewReader("plain words"), "a.txt", 1024)
		require.NoError(t, err)

		assert.ErrorIs(t, f.Require("image/*"), apperror.ErrUnsupportedMedia)
	})
}
