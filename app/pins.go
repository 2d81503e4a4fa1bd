package app

import (
	"errors"
	"fmt"

	"kiosk/hal"
)

// encoderPins reads hal pins for the input classifier. A failed read
// reports the resting level, high under the pull-ups.
type encoderPins struct {
	clk, dt, sw hal.GPIOPin
}

func (p encoderPins) CLK() bool    { return readPin(p.clk) }
func (p encoderPins) DT() bool     { return readPin(p.dt) }
func (p encoderPins) Button() bool { return readPin(p.sw) }

func readPin(p hal.GPIOPin) bool {
	v, err := p.Read()
	if err != nil {
		return true
	}
	return v
}

type backlightPin struct {
	pin hal.GPIOPin
	log logger
}

func (b backlightPin) Set(on bool) {
	if err := b.pin.Write(on); err != nil {
		b.log.logf("display: backlight: %v", err)
	}
}

func configureEncoder(p hal.EncoderPins) error {
	if p.CLK == nil || p.DT == nil || p.SW == nil || p.Backlight == nil {
		return errors.New("encoder: pins unavailable")
	}
	for _, in := range []hal.GPIOPin{p.CLK, p.DT, p.SW} {
		if err := in.Configure(hal.GPIOModeInput, hal.GPIOPullUp); err != nil {
			return fmt.Errorf("encoder: %w", err)
		}
	}
	if err := p.Backlight.Configure(hal.GPIOModeOutput, hal.GPIOPullNone); err != nil {
		return fmt.Errorf("encoder: %w", err)
	}
	return nil
}
