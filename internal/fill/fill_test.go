package fill

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colorbook/internal/segment"
)

var (
	white = color.NRGBA{255, 255, 255, 255}
	red   = color.NRGBA{255, 0, 0, 255}
	black = color.NRGBA{0, 0, 0, 255}
)

func canvas(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// framed draws a 1px square outline whose inner area is inner×inner,
// centred in a size×size white canvas.
func framed(size, inner int) *image.NRGBA {
	img := canvas(size, size, white)
	lo := (size-inner)/2 - 1
	hi := lo + inner + 1
	for i := lo; i <= hi; i++ {
		img.SetNRGBA(i, lo, black)
		img.SetNRGBA(i, hi, black)
		img.SetNRGBA(lo, i, black)
		img.SetNRGBA(hi, i, black)
	}
	return img
}

// reference is a plain 4-connected BFS over the same eligibility rule.
func reference(img *image.NRGBA, mask *segment.Mask, x, y, tol int) map[image.Point]bool {
	start := img.NRGBAAt(x, y)
	seen := map[image.Point]bool{}
	queue := []image.Point{{x, y}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if seen[p] || mask.At(p.X, p.Y) || !within(img.NRGBAAt(p.X, p.Y), start, tol) {
			continue
		}
		seen[p] = true
		queue = append(queue, image.Pt(p.X+1, p.Y), image.Pt(p.X-1, p.Y), image.Pt(p.X, p.Y+1), image.Pt(p.X, p.Y-1))
	}
	return seen
}

func TestFillFramedSquare(t *testing.T) {
	src := framed(100, 50)
	res := segment.Classify(src, segment.Options{})
	layer := canvas(100, 100, white)

	n := Fill(layer, res.Mask, 50, 50, red, DefaultTolerance)
	assert.Equal(t, 2304, n)

	count := 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			if layer.NRGBAAt(x, y) == red {
				count++
				require.True(t, x >= 26 && x <= 73 && y >= 26 && y <= 73, "red outside interior at %d,%d", x, y)
			}
		}
	}
	assert.Equal(t, 2304, count)
	assert.Equal(t, white, layer.NRGBAAt(10, 10))
	assert.Equal(t, white, layer.NRGBAAt(25, 50))
}

func TestFillNoOps(t *testing.T) {
	src := framed(20, 10)
	res := segment.Classify(src, segment.Options{})
	layer := canvas(20, 20, white)
	before := append([]byte(nil), layer.Pix...)

	assert.Zero(t, Fill(layer, res.Mask, -1, 5, red, 16))
	assert.Zero(t, Fill(layer, res.Mask, 5, 20, red, 16))
	assert.Zero(t, Fill(layer, res.Mask, 4, 4, red, 16), "seed on barrier")
	assert.Zero(t, Fill(layer, res.Mask, 10, 10, color.NRGBA{250, 250, 250, 255}, 16), "target within tolerance")
	assert.Equal(t, before, layer.Pix)
}

func TestFillToleranceWindow(t *testing.T) {
	layer := canvas(5, 1, white)
	layer.SetNRGBA(2, 0, color.NRGBA{240, 240, 240, 255})
	layer.SetNRGBA(4, 0, color.NRGBA{239, 255, 255, 255})
	mask := segment.NewMask(5, 1)

	n := Fill(layer, mask, 0, 0, red, 16)
	assert.Equal(t, 4, n)
	assert.Equal(t, red, layer.NRGBAAt(2, 0))
	assert.Equal(t, red, layer.NRGBAAt(3, 0))
	assert.Equal(t, color.NRGBA{239, 255, 255, 255}, layer.NRGBAAt(4, 0))
}

func TestFillIsFourConnected(t *testing.T) {
	layer := canvas(3, 3, white)
	mask := segment.NewMask(3, 3)
	// a diagonal wall: (1,0) (0,1) block the corner from the rest
	mask.Set(1, 0, true)
	mask.Set(0, 1, true)

	n := Fill(layer, mask, 0, 0, red, 16)
	assert.Equal(t, 1, n)
	assert.Equal(t, white, layer.NRGBAAt(1, 1))
}

func TestFillMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 25; iter++ {
		w, h := 10+rng.Intn(30), 10+rng.Intn(30)
		layer := canvas(w, h, white)
		mask := segment.NewMask(w, h)
		for i := range mask.Bits {
			mask.Bits[i] = rng.Intn(4) == 0
		}
		for i := 0; i < w*h/6; i++ {
			layer.SetNRGBA(rng.Intn(w), rng.Intn(h), color.NRGBA{uint8(rng.Intn(256)), 200, 200, 255})
		}
		x, y := rng.Intn(w), rng.Intn(h)
		if mask.At(x, y) || within(layer.NRGBAAt(x, y), red, 16) {
			continue
		}

		orig := canvas(w, h, white)
		copy(orig.Pix, layer.Pix)
		want := reference(orig, mask, x, y, 16)

		n := Fill(layer, mask, x, y, red, 16)
		require.Equal(t, len(want), n)
		for py := 0; py < h; py++ {
			for px := 0; px < w; px++ {
				if want[image.Pt(px, py)] {
					require.Equal(t, red, layer.NRGBAAt(px, py))
				} else {
					require.Equal(t, orig.NRGBAAt(px, py), layer.NRGBAAt(px, py))
				}
			}
		}
	}
}

func TestWithin(t *testing.T) {
	assert.True(t, Within(white, color.NRGBA{241, 241, 241, 255}, 16))
	assert.False(t, Within(white, color.NRGBA{239, 255, 255, 255}, 16))
	assert.True(t, Within(white, color.NRGBA{240, 255, 255, 255}, 0))
}
