//go:build !tinygo && !cgo

package hal

// hostAudio is mute without cgo.
type hostAudio struct{}

func newHostAudio() hostAudio { return hostAudio{} }

func (hostAudio) Buzzer() Buzzer { return nil }
