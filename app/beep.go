package app

import (
	"sync"
	"time"

	"kiosk/hal"
)

type tone struct {
	hz  uint32
	dur time.Duration
}

var (
	toneDone   = tone{hz: 1320, dur: 120 * time.Millisecond}
	toneListen = tone{hz: 880, dur: 60 * time.Millisecond}
)

const beepVolume = 96

// beeper plays short tones on a buzzer from its own goroutine. A nil
// beeper is silent.
type beeper struct {
	bz    hal.Buzzer
	log   logger
	tones chan tone
	done  chan struct{}
	once  sync.Once
}

func newBeeper(bz hal.Buzzer, log logger) *beeper {
	if bz == nil {
		return nil
	}
	bz.SetVolume(beepVolume)
	b := &beeper{
		bz:    bz,
		log:   log,
		tones: make(chan tone, 4),
		done:  make(chan struct{}),
	}
	go b.run()
	return b
}

// play queues t, dropping it when the queue is full.
func (b *beeper) play(t tone) {
	if b == nil {
		return
	}
	select {
	case b.tones <- t:
	default:
	}
}

func (b *beeper) close() {
	if b == nil {
		return
	}
	b.once.Do(func() {
		close(b.tones)
		<-b.done
	})
}

func (b *beeper) run() {
	defer close(b.done)
	for t := range b.tones {
		if err := b.bz.Tone(t.hz, t.dur); err != nil {
			b.log.logf("audio: %v", err)
		}
	}
}
