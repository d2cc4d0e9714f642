package service

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTestImage(t *testing.T, w, h int, format string) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		require.NoError(t, png.Encode(&buf, img))
	case "jpeg":
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	}
	return buf.Bytes()
}

func TestNormalizeAvatar(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{"png", "me.png", encodeTestImage(t, 40, 20, "png")},
		{"jpg", "me.jpg", encodeTestImage(t, 300, 400, "jpeg")},
		{"upper case jpeg", "ME.JPEG", encodeTestImage(t, 10, 10, "jpeg")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := normalizeAvatar(tt.filename, bytes.NewReader(tt.data))
			require.NoError(t, err)

			img, format, err := image.Decode(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, image.Rect(0, 0, 250, 250), img.Bounds())
		})
	}
}

func TestNormalizeAvatar_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     error
	}{
		{"pdf extension", "resume.pdf", encodeTestImage(t, 10, 10, "png"), ErrAvatarFormat},
		{"no extension", "avatar", encodeTestImage(t, 10, 10, "png"), ErrAvatarFormat},
		{"not an image", "fake.png", []byte("definitely not a png"), ErrAvatarFormat},
		{"too large", "big.png", []byte(strings.Repeat("x", MaxAvatarSize+1)), ErrAvatarTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := normalizeAvatar(tt.filename, bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
