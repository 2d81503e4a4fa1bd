//go:build !tinygo

package hal

import (
	"context"
	"io"
	"testing"
	"time"
)

func drainTicks(t *hostTime) []uint64 {
	var out []uint64
	for {
		select {
		case s := <-t.Ticks():
			out = append(out, s)
		default:
			return out
		}
	}
}

func TestHostTimeAdvance(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	clk := newHostTime(t0)

	clk.advance(1500 * time.Microsecond)
	clk.advance(600 * time.Microsecond)
	if got := clk.Now(); !got.Equal(t0.Add(2100 * time.Microsecond)) {
		t.Fatalf("Now = %v", got)
	}
	if got := drainTicks(clk); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("ticks = %v, want [1 2]", got)
	}

	clk.advance(-time.Second)
	if got := clk.Now(); !got.Equal(t0.Add(2100 * time.Microsecond)) {
		t.Fatalf("negative advance moved clock to %v", got)
	}
}

func TestHostTimeLongGap(t *testing.T) {
	clk := newHostTime(time.Unix(0, 0))
	clk.advance(time.Hour)

	got := drainTicks(clk)
	if len(got) != cap(clk.ticks) {
		t.Fatalf("published %d ticks, want %d", len(got), cap(clk.ticks))
	}
	last := uint64(time.Hour / time.Millisecond)
	if got[len(got)-1] != last {
		t.Fatalf("last tick = %d, want %d", got[len(got)-1], last)
	}
}

func TestHostTimeFollow(t *testing.T) {
	t0 := time.Unix(100, 0)
	clk := newHostTime(t0)
	clk.follow(t0.Add(5 * time.Millisecond))
	if got := len(drainTicks(clk)); got != 5 {
		t.Fatalf("ticks = %d, want 5", got)
	}
}

func TestRunHeadlessUsesSimulatedClock(t *testing.T) {
	var (
		h     HAL
		steps int
	)
	newApp := func(hh HAL) func() error {
		h = hh
		return func() error { steps++; return nil }
	}
	cfg := HeadlessConfig{Enabled: true, Hz: 1000, Ticks: 20}
	if err := RunHeadless(context.Background(), HostOptions{LogOut: io.Discard}, newApp, cfg); err != nil {
		t.Fatalf("RunHeadless: %v", err)
	}
	if steps != 20 {
		t.Fatalf("steps = %d, want 20", steps)
	}
	if h.Audio() != nil {
		t.Fatal("headless run should not open audio")
	}

	clk := h.Time().(*hostTime)
	if got := len(drainTicks(clk)); got != 20 {
		t.Fatalf("ticks = %d, want 20", got)
	}
}

func TestRunHeadlessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunHeadless(ctx, HostOptions{LogOut: io.Discard}, func(HAL) func() error { return nil }, HeadlessConfig{})
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSilentMicFollowsClock(t *testing.T) {
	h := newHostHAL(HostOptions{LogOut: io.Discard})
	mic := h.Microphone()
	if err := mic.Start(16000); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := mic.Start(16000); err == nil {
		t.Fatal("second Start should fail")
	}
	h.t.advance(250 * time.Millisecond)
	samples, err := mic.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if len(samples) != 4000 {
		t.Fatalf("samples = %d, want 4000", len(samples))
	}
}
