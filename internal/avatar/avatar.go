// Package avatar normalizes uploaded profile pictures into fixed-size PNGs.
package avatar

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

const (
	// MaxSize is the largest accepted upload in bytes.
	MaxSize = 1_000_000

	Width  = 250
	Height = 250

	// MaxPixels caps the decoded size of an upload. Compressed formats can
	// declare far more pixels than their byte size suggests.
	MaxPixels = 4096 * 4096
)

var allowedExtensions = map[string]bool{
	"gif":  true,
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

var (
	ErrUnsupportedType = errors.New("please upload an image")
	ErrTooLarge        = fmt.Errorf("file must be at most %d bytes", MaxSize)
	ErrEmpty           = errors.New("file is empty")
	ErrUndecodable     = errors.New("file is not a readable image")
	ErrTooManyPixels   = fmt.Errorf("image must be at most %d pixels", MaxPixels)
)

// Allowed reports whether filename carries an accepted image extension.
func Allowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return allowedExtensions[ext]
}

// Process checks an upload and returns it scaled to cover Width x Height,
// centre-cropped and encoded as PNG.
func Process(filename string, data []byte) ([]byte, error) {
	if !Allowed(filename) {
		return nil, ErrUnsupportedType
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, coverRect(src.Bounds(), Width, Height), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding avatar: %w", err)
	}
	return buf.Bytes(), nil
}

// coverRect returns the centred region of b with the aspect ratio w:h that
// fills a w x h target without letterboxing.
func coverRect(b image.Rectangle, w, h int) image.Rectangle {
	srcW, srcH := b.Dx(), b.Dy()
	cropW, cropH := srcW, srcH
	if srcW*h > srcH*w {
		cropW = srcH * w / h
	} else {
		cropH = srcW * h / w
	}
	if cropW < 1 {
		cropW = 1
	}
	if cropH < 1 {
		cropH = 1
	}

	x0 := b.Min.X + (srcW-cropW)/2
	y0 := b.Min.Y + (srcH-cropH)/2
	return image.Rect(x0, y0, x0+cropW, y0+cropH)
}
