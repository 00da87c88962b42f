package segment

// grow returns m dilated by one pixel over the 3×3 neighbourhood. Pixels
// beyond the border do not contribute.
func grow(m *Mask) *Mask {
	w, h := m.Width, m.Height
	out := NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !m.Bits[y*w+x] {
				continue
			}
			for ny := max(y-1, 0); ny <= min(y+1, h-1); ny++ {
				for nx := max(x-1, 0); nx <= min(x+1, w-1); nx++ {
					out.Bits[ny*w+nx] = true
				}
			}
		}
	}
	return out
}
