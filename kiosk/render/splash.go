package render

import (
	"fmt"
	"strings"
)

// Boot paints the startup screen with a one-line status message.
func (r *Renderer) Boot(msg string) error {
	if r.fb == nil {
		return nil
	}
	r.fb.ClearRGB(colorBG.R, colorBG.G, colorBG.B)
	mid := r.h / 2
	r.centered(large, mid-4, colorAccent, "Days Tracker")
	r.centered(small, mid+small.line, colorMuted, msg)
	return r.d.Display()
}

// Fault paints a recovered panic and its stack, black on white, and
// presents the frame. Lines that do not fit are dropped.
func (r *Renderer) Fault(value any, stack []byte) error {
	if r.fb == nil {
		return nil
	}
	r.fb.ClearRGB(colorFaultBG.R, colorFaultBG.G, colorFaultBG.B)

	lines := []string{"Kiosk fault:", fmt.Sprintf("panic: %v", value)}
	if len(stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(stack), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
	} else {
		lines = append(lines, "stack: unavailable")
	}

	maxW := int(r.w) - 2
	y := int16(0)
	for _, line := range lines {
		for _, chunk := range wrap(line, maxW, int(r.h), small.width) {
			if y+small.line > r.h {
				return r.d.Display()
			}
			r.text(small, 1, y+small.ascent, colorFaultFG, chunk)
			y += small.line
		}
	}
	return r.d.Display()
}
