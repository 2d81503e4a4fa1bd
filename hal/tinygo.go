//go:build tinygo && baremetal

package hal

import (
	"errors"
	"machine"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/st7735"
)

type tinyGoHAL struct {
	logger *serialLogger
	fb     Framebuffer
	enc    EncoderPins
	t      *tinyGoTime
	audio  Audio
}

// New returns a Pico HAL with the default wiring.
func New() HAL {
	return NewWithPins(DefaultPins())
}

// NewWithPins returns a Pico HAL for the given wiring.
//
// Logging goes to the USB CDC console.
func NewWithPins(p PinMap) HAL {
	logger := &serialLogger{out: machine.Serial}

	in := GPIOCapInput | GPIOCapPullUp
	h := &tinyGoHAL{
		logger: logger,
		enc: EncoderPins{
			CLK: newMachinePin("CLK", p.CLK, in),
			DT:  newMachinePin("DT", p.DT, in),
			SW:  newMachinePin("SW", p.SW, in),
			// The LCD driver does not own the backlight; the classifier does.
			Backlight: newMachinePin("BL", p.Backlight, GPIOCapOutput),
		},
		t:     newTinyGoTime(),
		audio: newTinyGoAudio(machine.Pin(p.Buzzer)),
	}

	lcd, err := initST7735(p)
	if err != nil {
		logger.WriteLineString("display: " + err.Error())
		h.fb = NewMemFramebuffer(DisplayWidth, DisplayHeight)
	} else {
		h.fb = newPresentingFramebuffer(DisplayWidth, DisplayHeight, lcd.blit)
	}
	return h
}

func (h *tinyGoHAL) Logger() Logger         { return h.logger }
func (h *tinyGoHAL) Display() Display       { return tinyGoDisplay{fb: h.fb} }
func (h *tinyGoHAL) Encoder() EncoderPins   { return h.enc }
func (h *tinyGoHAL) Time() Time             { return h.t }
func (h *tinyGoHAL) Audio() Audio           { return h.audio }
func (h *tinyGoHAL) Microphone() Microphone { return nil }

type st7735Panel struct {
	dev   st7735.Device
	txBuf []byte
}

func initST7735(p PinMap) (*st7735Panel, error) {
	if machine.SPI0 == nil {
		return nil, errors.New("SPI0 unavailable")
	}
	if err := machine.SPI0.Configure(machine.SPIConfig{
		SCK:       machine.Pin(p.SCK),
		SDO:       machine.Pin(p.MOSI),
		Frequency: 32_000_000,
	}); err != nil {
		return nil, err
	}

	// NoPin: the backlight is driven through EncoderPins.
	dev := st7735.New(machine.SPI0, machine.Pin(p.RST), machine.Pin(p.DC), machine.Pin(p.CS), machine.NoPin)
	dev.Configure(st7735.Config{
		Width:    DisplayHeight,
		Height:   DisplayWidth,
		Rotation: drivers.Rotation90,
		Model:    st7735.GREENTAB,
	})
	return &st7735Panel{dev: dev, txBuf: make([]byte, DisplayWidth*DisplayHeight*2)}, nil
}

// blit sends a little-endian RGB565 frame to the big-endian panel.
func (l *st7735Panel) blit(buf []byte) error {
	n := swapRGB565(l.txBuf, buf)
	if n < DisplayWidth*DisplayHeight*2 {
		return errors.New("display: short framebuffer")
	}
	return l.dev.DrawRGBBitmap8(0, 0, l.txBuf[:n], DisplayWidth, DisplayHeight)
}
