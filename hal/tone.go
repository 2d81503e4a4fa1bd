package hal

import "time"

// toneLevel is the square-wave amplitude before volume scaling.
const toneLevel = 8000

// squareWave renders a tone as 16-bit little-endian stereo PCM, the layout
// Ebiten players read.
func squareWave(rate int, hz uint32, d time.Duration) []byte {
	if rate <= 0 || hz == 0 || d <= 0 {
		return nil
	}
	n := int(int64(rate) * int64(d) / int64(time.Second))
	half := max(rate/(2*int(hz)), 1)
	out := make([]byte, n*4)
	for i := range n {
		s := int16(toneLevel)
		if (i/half)%2 == 1 {
			s = -toneLevel
		}
		j := i * 4
		out[j+0] = byte(s)
		out[j+1] = byte(s >> 8)
		out[j+2] = byte(s)
		out[j+3] = byte(s >> 8)
	}
	return out
}
