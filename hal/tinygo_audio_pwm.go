//go:build tinygo && baremetal

package hal

import (
	"errors"
	"machine"
	"time"
)

type tinyGoAudio struct {
	bz *pwmBuzzer
}

func newTinyGoAudio(pin machine.Pin) Audio {
	pwm := pwmForPin(pin)
	if pwm == nil {
		return nil
	}
	return &tinyGoAudio{bz: &pwmBuzzer{pin: pin, pwm: pwm, vol: 255}}
}

func (a *tinyGoAudio) Buzzer() Buzzer { return a.bz }

type pwmDevice interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
	Enable(enable bool)
}

// pwmBuzzer drives a passive piezo. Each tone retunes the slice period to
// the tone frequency; volume scales the duty cycle up to 50%.
type pwmBuzzer struct {
	pin machine.Pin
	pwm pwmDevice
	vol uint8
}

func pwmForPin(pin machine.Pin) pwmDevice {
	slice, err := machine.PWMPeripheral(pin)
	if err != nil {
		return nil
	}
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		return nil
	}
}

func (b *pwmBuzzer) SetVolume(vol uint8) { b.vol = vol }

func (b *pwmBuzzer) Tone(hz uint32, d time.Duration) error {
	if hz == 0 {
		return errors.New("buzzer: zero frequency")
	}
	if err := b.pwm.Configure(machine.PWMConfig{Period: uint64(time.Second) / uint64(hz)}); err != nil {
		return err
	}
	ch, err := b.pwm.Channel(b.pin)
	if err != nil {
		return err
	}
	b.pwm.Set(ch, b.pwm.Top()/2*uint32(b.vol)/255)
	b.pwm.Enable(true)
	time.Sleep(d)
	b.pwm.Set(ch, 0)
	b.pwm.Enable(false)
	return nil
}
