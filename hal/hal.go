package hal

import (
	"errors"
	"time"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// DebugLogger is implemented by loggers that can filter verbose lines.
type DebugLogger interface {
	WriteDebugString(s string)
}

var ErrNotImplemented = errors.New("not implemented")

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp little-endian: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Time is the kiosk clock: a 1ms tick stream and the current time.
type Time interface {
	Ticks() <-chan uint64
	Now() time.Time
}

// EncoderPins are the rotary encoder lines and the display backlight.
//
// CLK, DT and SW are inputs with pull-ups; SW reads low while pressed.
// Backlight is an output, high for on.
type EncoderPins struct {
	CLK       GPIOPin
	DT        GPIOPin
	SW        GPIOPin
	Backlight GPIOPin
}

// Buzzer sounds square-wave tones. Tone blocks until the tone has played.
type Buzzer interface {
	Tone(hz uint32, d time.Duration) error
	SetVolume(vol uint8)
}

// Audio provides audio outputs (if available).
type Audio interface {
	Buzzer() Buzzer
}

// Microphone records 16-bit mono PCM between Start and Stop.
type Microphone interface {
	Start(sampleRate uint32) error
	Stop() ([]int16, error)
}

// HAL provides the only contact point between the kiosk and the outside
// world. Optional devices return nil.
type HAL interface {
	Logger() Logger
	Display() Display
	Encoder() EncoderPins
	Time() Time
	Audio() Audio
	Microphone() Microphone
}
