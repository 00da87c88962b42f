package state

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/anthonynsimon/bild/transform"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"colorbook/internal/segment"
)

// Decode reads an image in any registered format. When maxPixels is
// positive, the header is checked first and images with more pixels are
// rejected with ErrImageTooLarge before any pixel memory is allocated.
func Decode(r io.Reader, maxPixels int64) (image.Image, error) {
	if maxPixels > 0 {
		var head bytes.Buffer
		cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
		if err != nil {
			return nil, fmt.Errorf("decode image header: %w", err)
		}
		if cfg.Width <= 0 || cfg.Height <= 0 {
			return nil, ErrEmptyImage
		}
		if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
			return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels",
				ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
		}
		r = io.MultiReader(&head, r)
	}
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// normalize returns img as an NRGBA at origin (0, 0) whose longer side is
// at most maxSide. The result never aliases img.
func normalize(img image.Image, maxSide int) (*image.NRGBA, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	w, h := b.Dx(), b.Dy()
	if maxSide > 0 && (w > maxSide || h > maxSide) {
		nw, nh := fitSide(w, h, maxSide)
		return segment.ToNRGBA(transform.Resize(img, nw, nh, transform.Linear)), nil
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out, nil
}

// fitSide scales w×h so that the longer side equals side, keeping at
// least one pixel on each axis.
func fitSide(w, h, side int) (int, int) {
	if w >= h {
		return side, max(1, h*side/w)
	}
	return max(1, w*side/h), side
}
