//go:build !tinygo

package hal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

type hostHAL struct {
	logger *hostLogger
	fb     *MemFramebuffer
	enc    *VirtualEncoder
	t      *hostTime
	aud    Audio
	mic    *silentMic
}

// HostOptions tunes the host HAL.
type HostOptions struct {
	// LogLevel is a charmbracelet/log level name; empty means info.
	LogLevel string
	LogOut   io.Writer
	// Audio enables the ebiten audio sink. Headless runs leave it off.
	Audio bool
}

// New returns a host HAL with default options.
func New() HAL {
	return newHostHAL(HostOptions{Audio: true})
}

func newHostHAL(opts HostOptions) *hostHAL {
	logger := newHostLogger(opts.LogOut, opts.LogLevel)
	h := &hostHAL{
		logger: logger,
		fb:     NewMemFramebuffer(DisplayWidth, DisplayHeight),
		enc:    NewVirtualEncoder(),
		t:      newHostTime(time.Now()),
	}
	h.mic = &silentMic{clock: h.t}
	h.enc.backlight.onWrite = func(on bool) {
		logger.WriteDebugString(fmt.Sprintf("backlight: %v", on))
	}
	if opts.Audio {
		h.aud = newHostAudio()
	}
	return h
}

func (h *hostHAL) Logger() Logger         { return h.logger }
func (h *hostHAL) Display() Display       { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Encoder() EncoderPins   { return h.enc.Pins() }
func (h *hostHAL) Time() Time             { return h.t }
func (h *hostHAL) Audio() Audio           { return h.aud }
func (h *hostHAL) Microphone() Microphone { return h.mic }

// VirtualEncoderOf returns the emulated encoder behind a host HAL, for
// drivers outside the window such as scripted runs.
func VirtualEncoderOf(h HAL) (*VirtualEncoder, bool) {
	hh, ok := h.(*hostHAL)
	if !ok {
		return nil, false
	}
	return hh.enc, true
}

type hostDisplay struct {
	fb *MemFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

// NewHostLogger returns the logger a host HAL built with opts would use,
// for code that runs beside the HAL.
func NewHostLogger(opts HostOptions) Logger {
	return newHostLogger(opts.LogOut, opts.LogLevel)
}

type hostLogger struct {
	mu sync.Mutex
	l  *log.Logger
}

func newHostLogger(w io.Writer, level string) *hostLogger {
	if w == nil {
		w = os.Stderr
	}
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "kiosk",
	})
	if lvl, err := log.ParseLevel(level); err == nil && level != "" {
		l.SetLevel(lvl)
	}
	return &hostLogger{l: l}
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.l.Info(s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.WriteLineString(string(b))
}

func (l *hostLogger) WriteDebugString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.l.Debug(s)
}

// maxRecording caps a silent recording.
const maxRecording = 30 * time.Second

// silentMic records silence for as long as it is held open, so the voice
// path can be exercised on a desktop without capture hardware.
type silentMic struct {
	clock   *hostTime
	mu      sync.Mutex
	started time.Time
	rate    uint32
}

func (m *silentMic) Start(sampleRate uint32) error {
	if sampleRate == 0 {
		return errors.New("host mic: invalid sample rate")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started.IsZero() {
		return errors.New("host mic: already recording")
	}
	m.started = m.clock.Now()
	m.rate = sampleRate
	return nil
}

func (m *silentMic) Stop() ([]int16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started.IsZero() {
		return nil, errors.New("host mic: not recording")
	}
	d := min(m.clock.Now().Sub(m.started), maxRecording)
	m.started = time.Time{}
	return make([]int16, int(d.Seconds()*float64(m.rate))), nil
}
