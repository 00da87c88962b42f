// Package export writes a flattened coloring page to PNG or PDF.
package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for output paths without a .png or .pdf
// extension.
var ErrUnknownFormat = errors.New("unknown export format")

// PNG encodes img.
func PNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// DataURL wraps data in a base64 data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// PNGDataURL encodes img as a "data:image/png;base64," URL.
func PNGDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := PNG(&buf, img); err != nil {
		return "", err
	}
	return DataURL("image/png", buf.Bytes()), nil
}

// WriteFile writes img to path, choosing PNG or PDF by extension.
func WriteFile(path string, img image.Image) error {
	var write func(io.Writer, image.Image) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		write = PNG
	case ".pdf":
		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		write = func(w io.Writer, img image.Image) error { return PDF(w, img, title) }
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
