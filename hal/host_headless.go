//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	// Ticks stops the run after that many steps; zero runs until ctx ends.
	Ticks uint64
}

// RunHeadless steps the kiosk without a window or audio. The kiosk clock
// moves exactly 1/Hz per step, so runs bounded by Ticks see the same
// timeouts regardless of host load. The encoder is only reachable through
// VirtualEncoderOf.
func RunHeadless(ctx context.Context, opts HostOptions, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 1000
	}
	period := time.Second / time.Duration(cfg.Hz)
	if period <= 0 {
		return fmt.Errorf("headless: hz %d too high", cfg.Hz)
	}

	opts.Audio = false
	h := newHostHAL(opts)
	step := newApp(h)

	t := time.NewTicker(period)
	defer t.Stop()
	for n := uint64(0); cfg.Ticks == 0 || n < cfg.Ticks; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
		h.enc.Advance()
		h.t.advance(period)
		if step == nil {
			continue
		}
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
