//go:build !tinygo

package hal

import "time"

// hostTime is the kiosk clock on the host. Runners move it forward once per
// frame from the goroutine that steps the kiosk; each whole millisecond is
// also published as a tick.
type hostTime struct {
	now   time.Time
	frac  time.Duration
	seq   uint64
	ticks chan uint64
}

func newHostTime(start time.Time) *hostTime {
	return &hostTime{now: start, ticks: make(chan uint64, 1024)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ticks }
func (t *hostTime) Now() time.Time       { return t.now }

// advance moves the clock by d. After a long gap only the newest ticks that
// fit the channel are published; the rest are dropped like unread ones.
func (t *hostTime) advance(d time.Duration) {
	if d <= 0 {
		return
	}
	t.now = t.now.Add(d)
	t.frac += d
	n := uint64(t.frac / time.Millisecond)
	t.frac -= time.Duration(n) * time.Millisecond

	first := t.seq + 1
	t.seq += n
	if room := uint64(cap(t.ticks)); n > room {
		first = t.seq - room + 1
	}
	for s := first; s <= t.seq; s++ {
		select {
		case t.ticks <- s:
		default:
		}
	}
}

// follow catches the clock up with wall time.
func (t *hostTime) follow(wall time.Time) { t.advance(wall.Sub(t.now)) }
