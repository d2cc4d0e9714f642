package service

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	// MaxAvatarSize is the largest accepted avatar upload in bytes.
	MaxAvatarSize = 1 << 20
	avatarDim     = 250
)

var avatarExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// normalizeAvatar checks the upload's name and size, then re-encodes the image
// as a square PNG of avatarDim pixels.
func normalizeAvatar(filename string, r io.Reader) ([]byte, error) {
	if !avatarExtensions[strings.ToLower(filepath.Ext(filename))] {
		return nil, ErrAvatarFormat
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxAvatarSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading avatar: %w", err)
	}
	if len(data) > MaxAvatarSize {
		return nil, ErrAvatarTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrAvatarFormat
	}

	dst := image.NewRGBA(image.Rect(0, 0, avatarDim, avatarDim))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding avatar: %w", err)
	}
	return buf.Bytes(), nil
}
