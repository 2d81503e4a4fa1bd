package app

import (
	"time"

	"kiosk/hal"
	"kiosk/internal/config"
)

// Run starts the kiosk on h and steps it from the HAL tick stream once per
// poll interval. It blocks forever (TinyGo/native entrypoint).
func Run(h hal.HAL, cfg config.Config, deps Deps) {
	k, err := New(h, cfg, deps)
	if err != nil {
		logger{out: h.Logger()}.logf("app: %v", err)
		select {}
	}

	var ticks <-chan uint64
	if t := h.Time(); t != nil {
		ticks = t.Ticks()
	}
	if ticks == nil {
		k.log.logf("app: no tick source")
		select {}
	}

	every := max(uint64(cfg.Timing.Poll.Std()/time.Millisecond), 1)
	var last uint64
	for seq := range ticks {
		if seq-last < every {
			continue
		}
		last = seq
		if err := k.Step(); err != nil {
			k.log.logf("app: %v", err)
		}
	}
	select {}
}

// Stepper adapts New to the host runners, which build the HAL themselves
// and call the returned step function once per frame.
func Stepper(cfg config.Config, deps Deps, onReady func(*Kiosk)) func(hal.HAL) func() error {
	return func(h hal.HAL) func() error {
		k, err := New(h, cfg, deps)
		if err != nil {
			return func() error { return err }
		}
		if onReady != nil {
			onReady(k)
		}
		return k.Step
	}
}
