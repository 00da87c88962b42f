//go:build gocv

package segment

import (
	"image"
	"log/slog"

	"gocv.io/x/gocv"
)

// dilate grows m by one pixel with OpenCV's morphological dilation and a
// 3×3 rectangular kernel. Pixels beyond the border do not contribute, which
// matches grow. Failures fall back to grow and are reported to log.
func dilate(m *Mask, log *slog.Logger) *Mask {
	w, h := m.Width, m.Height
	buf := make([]byte, w*h)
	for i, b := range m.Bits {
		if b {
			buf[i] = 255
		}
	}

	src, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC1, buf)
	if err != nil {
		if log != nil {
			log.Warn("gocv dilation unavailable, using pure Go", "err", err)
		}
		return grow(m)
	}
	defer src.Close()

	dst := gocv.NewMat()
	defer dst.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: 3, Y: 3})
	defer kernel.Close()

	gocv.Dilate(src, &dst, kernel)

	out := NewMask(w, h)
	for i, v := range dst.ToBytes() {
		if i >= len(out.Bits) {
			break
		}
		out.Bits[i] = v != 0
	}
	return out
}
