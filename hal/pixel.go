package hal

func rgb565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

// rgb888From565 expands a 565 pixel, replicating high bits into the low
// bits so full-scale channels map to 255.
func rgb888From565(p uint16) (r, g, b uint8) {
	r5 := uint8(p>>11) & 0x1F
	g6 := uint8(p>>5) & 0x3F
	b5 := uint8(p) & 0x1F
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// swapRGB565 writes src with each 16-bit pixel byte-swapped into dst, for
// panels that expect big-endian pixels.
func swapRGB565(dst, src []byte) int {
	n := min(len(dst), len(src)) &^ 1
	for i := 0; i < n; i += 2 {
		dst[i] = src[i+1]
		dst[i+1] = src[i]
	}
	return n
}
