//go:build !tinygo && cgo

package hal

import (
	"errors"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const hostAudioRate = 44100

// hostAudio plays buzzer tones through Ebiten's audio package.
type hostAudio struct {
	bz *hostBuzzer
}

func newHostAudio() hostAudio {
	return hostAudio{bz: &hostBuzzer{vol: 255}}
}

func (a hostAudio) Buzzer() Buzzer { return a.bz }

// hostBuzzer renders each tone to PCM up front and plays it from memory.
type hostBuzzer struct {
	mu  sync.Mutex
	ctx *audio.Context
	vol uint8
}

func (b *hostBuzzer) SetVolume(vol uint8) {
	b.mu.Lock()
	b.vol = vol
	b.mu.Unlock()
}

func (b *hostBuzzer) Tone(hz uint32, d time.Duration) error {
	if hz == 0 || d <= 0 {
		return errors.New("host buzzer: invalid tone")
	}

	b.mu.Lock()
	if b.ctx == nil {
		// Ebiten allows one audio context per process.
		if b.ctx = audio.CurrentContext(); b.ctx == nil {
			b.ctx = audio.NewContext(hostAudioRate)
		}
	}
	ctx, vol := b.ctx, b.vol
	b.mu.Unlock()

	p := ctx.NewPlayerFromBytes(squareWave(ctx.SampleRate(), hz, d))
	p.SetVolume(float64(vol) / 255)
	p.Play()
	time.Sleep(d)
	return p.Close()
}
