// Package input turns raw rotary encoder levels into discrete UI events.
//
// A Classifier is sampled once per scheduler tick and never blocks. Each
// call to Poll yields at most one Event. Within a tick rotation wins over
// the button, and a voice hold wins over click classification.
package input

import "time"

// Event is a classified user input.
type Event uint8

const (
	EventNone Event = iota
	RotateCW
	RotateCCW
	ShortPress
	LongPress
	VoiceHoldStart
	VoiceHoldStop
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case RotateCW:
		return "rotate_cw"
	case RotateCCW:
		return "rotate_ccw"
	case ShortPress:
		return "short_press"
	case LongPress:
		return "long_press"
	case VoiceHoldStart:
		return "voice_hold_start"
	case VoiceHoldStop:
		return "voice_hold_stop"
	default:
		return "unknown"
	}
}

// Pins reads the encoder lines. Levels are raw: the button is active-low.
type Pins interface {
	CLK() bool
	DT() bool
	Button() bool
}

// Backlight drives the display backlight.
type Backlight interface {
	Set(on bool)
}

// Config holds the classifier timing thresholds.
type Config struct {
	LongPress time.Duration
	Debounce  time.Duration
	VoiceHold time.Duration

	// VoiceEnabled turns on VoiceHoldStart/VoiceHoldStop. When off, holds
	// of any length classify as LongPress.
	VoiceEnabled bool
}

// DefaultConfig returns the stock KY-040 thresholds.
func DefaultConfig() Config {
	return Config{
		LongPress:    500 * time.Millisecond,
		Debounce:     200 * time.Millisecond,
		VoiceHold:    time.Second,
		VoiceEnabled: true,
	}
}

// ButtonPhase is the button sub-automaton state. The zero value is Released.
type ButtonPhase struct {
	Held       bool
	Since      time.Time
	VoiceFired bool
}

// Classifier is the encoder + button automaton.
type Classifier struct {
	pins Pins
	bl   Backlight
	now  func() time.Time
	cfg  Config

	lastCLK         bool
	phase           ButtonPhase
	lastButtonEvent time.Time
	lastActivity    time.Time
	backlightOn     bool
}

// New returns a classifier with the backlight on. A nil clock uses time.Now.
func New(pins Pins, bl Backlight, cfg Config, now func() time.Time) *Classifier {
	if now == nil {
		now = time.Now
	}
	def := DefaultConfig()
	if cfg.LongPress <= 0 {
		cfg.LongPress = def.LongPress
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = def.Debounce
	}
	if cfg.VoiceHold <= 0 {
		cfg.VoiceHold = def.VoiceHold
	}

	t := now()
	c := &Classifier{
		pins: pins,
		bl:   bl,
		now:  now,
		cfg:  cfg,
		// Pull-ups hold CLK high at rest.
		lastCLK:         true,
		lastButtonEvent: t,
		lastActivity:    t,
	}
	c.SetBacklight(true)
	return c
}

// Poll samples the pins once and returns the classified event, if any.
func (c *Classifier) Poll() Event {
	if c.pins == nil {
		return EventNone
	}

	clk := c.pins.CLK()
	if !clk && c.lastCLK {
		c.lastCLK = clk
		c.recordActivity()
		if c.pins.DT() {
			return RotateCW
		}
		return RotateCCW
	}
	c.lastCLK = clk

	return c.pollButton(!c.pins.Button())
}

func (c *Classifier) pollButton(pressed bool) Event {
	now := c.now()

	if !c.phase.Held {
		if pressed {
			c.phase = ButtonPhase{Held: true, Since: now}
			c.recordActivity()
		}
		return EventNone
	}

	if pressed {
		if c.cfg.VoiceEnabled && !c.phase.VoiceFired && now.Sub(c.phase.Since) >= c.cfg.VoiceHold {
			c.phase.VoiceFired = true
			c.recordActivity()
			return VoiceHoldStart
		}
		return EventNone
	}

	held := c.phase
	c.phase = ButtonPhase{}

	if held.VoiceFired {
		return VoiceHoldStop
	}
	if now.Sub(c.lastButtonEvent) < c.cfg.Debounce {
		return EventNone
	}
	c.lastButtonEvent = now

	if now.Sub(held.Since) >= c.cfg.LongPress {
		return LongPress
	}
	return ShortPress
}

// Phase reports the button sub-automaton state.
func (c *Classifier) Phase() ButtonPhase { return c.phase }

func (c *Classifier) recordActivity() {
	c.lastActivity = c.now()
	if !c.backlightOn {
		c.SetBacklight(true)
	}
}

// SecondsSinceActivity reports the idle time in seconds.
func (c *Classifier) SecondsSinceActivity() float64 {
	return c.now().Sub(c.lastActivity).Seconds()
}

// IsBacklightOn reports the last backlight state set.
func (c *Classifier) IsBacklightOn() bool { return c.backlightOn }

// SetBacklight drives the backlight pin and records its state.
func (c *Classifier) SetBacklight(on bool) {
	if c.bl != nil {
		c.bl.Set(on)
	}
	c.backlightOn = on
}
