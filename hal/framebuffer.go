package hal

import "sync"

// MemFramebuffer is an RGB565 framebuffer in RAM. Present is a no-op unless
// a hook is installed.
type MemFramebuffer struct {
	mu      sync.Mutex
	width   int
	height  int
	stride  int
	buf     []byte
	present func([]byte) error
	frames  uint64
}

func NewMemFramebuffer(width, height int) *MemFramebuffer {
	stride := width * 2
	return &MemFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func newPresentingFramebuffer(width, height int, present func([]byte) error) *MemFramebuffer {
	f := NewMemFramebuffer(width, height)
	f.present = present
	return f
}

func (f *MemFramebuffer) Width() int          { return f.width }
func (f *MemFramebuffer) Height() int         { return f.height }
func (f *MemFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *MemFramebuffer) StrideBytes() int    { return f.stride }
func (f *MemFramebuffer) Buffer() []byte      { return f.buf }

func (f *MemFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pixel := rgb565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}

func (f *MemFramebuffer) Present() error {
	f.mu.Lock()
	f.frames++
	hook := f.present
	f.mu.Unlock()
	if hook == nil {
		return nil
	}
	return hook(f.buf)
}

// Frames counts calls to Present.
func (f *MemFramebuffer) Frames() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

// PixelRGB returns the color at (x, y) expanded to 8 bits per channel.
func (f *MemFramebuffer) PixelRGB(x, y int) (r, g, b uint8) {
	off := y*f.stride + x*2
	if x < 0 || y < 0 || x >= f.width || y >= f.height || off+1 >= len(f.buf) {
		return 0, 0, 0
	}
	f.mu.Lock()
	p := uint16(f.buf[off]) | uint16(f.buf[off+1])<<8
	f.mu.Unlock()
	return rgb888From565(p)
}

func (f *MemFramebuffer) snapshotRGB565(dst []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.buf)
}
