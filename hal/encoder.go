package hal

import "sync"

// quadFrame is one sampled state of the CLK/DT lines.
type quadFrame struct {
	clk, dt bool
}

// maxQueuedFrames bounds how far rotation can run ahead of the poller.
const maxQueuedFrames = 256

// VirtualEncoder emulates a KY-040 on virtual pins. Rotation is queued as
// quadrature frames that are released one per Advance, so a poller that
// samples once per Advance sees every edge.
type VirtualEncoder struct {
	mu     sync.Mutex
	frames []quadFrame

	clk, dt, sw *virtualPin
	backlight   *virtualPin
}

func NewVirtualEncoder() *VirtualEncoder {
	in := GPIOCapInput | GPIOCapPullUp
	e := &VirtualEncoder{
		clk:       newVirtualPin("CLK", in),
		dt:        newVirtualPin("DT", in),
		sw:        newVirtualPin("SW", in),
		backlight: newVirtualPin("BL", GPIOCapOutput),
	}
	// Lines idle high until the pins are configured.
	e.clk.level, e.dt.level, e.sw.level = true, true, true
	return e
}

// Pins returns the encoder lines for a HAL.
func (e *VirtualEncoder) Pins() EncoderPins {
	return EncoderPins{CLK: e.clk, DT: e.dt, SW: e.sw, Backlight: e.backlight}
}

// Rotate queues |detents| detents, clockwise for positive values.
func (e *VirtualEncoder) Rotate(detents int) {
	// CLK falls first; DT high at that edge reads as clockwise.
	dt := detents > 0
	if detents < 0 {
		detents = -detents
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := 0; i < detents && len(e.frames)+2 <= maxQueuedFrames; i++ {
		e.frames = append(e.frames, quadFrame{clk: false, dt: dt}, quadFrame{clk: true, dt: true})
	}
}

// SetButton presses or releases the push button.
func (e *VirtualEncoder) SetButton(pressed bool) {
	e.sw.drive(!pressed)
}

// Advance releases the next queued frame onto CLK/DT. It reports whether a
// frame was applied.
func (e *VirtualEncoder) Advance() bool {
	e.mu.Lock()
	if len(e.frames) == 0 {
		e.mu.Unlock()
		return false
	}
	f := e.frames[0]
	e.frames = e.frames[1:]
	e.mu.Unlock()

	e.clk.drive(f.clk)
	e.dt.drive(f.dt)
	return true
}

// Pending is the number of frames not yet released.
func (e *VirtualEncoder) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.frames)
}

// BacklightOn reports the last level written to the backlight pin.
func (e *VirtualEncoder) BacklightOn() bool {
	return e.backlight.peek()
}
