package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"kiosk/hal"
)

// StoreBackend selects where tasks are kept.
type StoreBackend string

const (
	StoreMemory StoreBackend = "memory"
	StoreJSON   StoreBackend = "json"
	StoreSQLite StoreBackend = "sqlite"
)

// Duration is a time.Duration written as a Go duration string ("1.5s").
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

type Config struct {
	Store  StoreConfig  `toml:"store"`
	Input  InputConfig  `toml:"input"`
	Timing TimingConfig `toml:"timing"`
	Voice  VoiceConfig  `toml:"voice"`
	Device DeviceConfig `toml:"device"`
	Log    LogConfig    `toml:"log"`
	Pins   hal.PinMap   `toml:"pins"`
}

type StoreConfig struct {
	Backend StoreBackend `toml:"backend"`
	// Path is a directory for the json backend and a file for sqlite.
	Path string `toml:"path"`
}

type InputConfig struct {
	LongPress Duration `toml:"long_press"`
	Debounce  Duration `toml:"debounce"`
	VoiceHold Duration `toml:"voice_hold"`
}

type TimingConfig struct {
	Poll          Duration `toml:"poll"`
	IdleTimeout   Duration `toml:"idle_timeout"`
	QRIdleTimeout Duration `toml:"qr_idle_timeout"`
	Completing    Duration `toml:"completing"`
	VoiceResult   Duration `toml:"voice_result"`
}

type VoiceConfig struct {
	// URL of the speech server; empty disables voice commands.
	URL          string   `toml:"url"`
	SampleRate   uint32   `toml:"sample_rate"`
	MaxRecording Duration `toml:"max_recording"`
	Timeout      Duration `toml:"timeout"`
}

type DeviceConfig struct {
	// URL is where the management UI is reachable, shown on setup screens.
	URL         string `toml:"url"`
	Provisioned bool   `toml:"provisioned"`
	// ScreenTimeout is the initial state of the Settings toggle.
	ScreenTimeout bool `toml:"screen_timeout"`
}

type LogConfig struct {
	Level string `toml:"level"` // debug | info | warn | error
}

// Default returns the stock kiosk configuration storing tasks under
// storePath.
func Default(storePath string) Config {
	return Config{
		Store: StoreConfig{
			Backend: StoreJSON,
			Path:    storePath,
		},
		Input: InputConfig{
			LongPress: Duration(500 * time.Millisecond),
			Debounce:  Duration(200 * time.Millisecond),
			VoiceHold: Duration(time.Second),
		},
		Timing: TimingConfig{
			Poll:          Duration(time.Millisecond),
			IdleTimeout:   Duration(15 * time.Second),
			QRIdleTimeout: Duration(120 * time.Second),
			Completing:    Duration(500 * time.Millisecond),
			VoiceResult:   Duration(5 * time.Second),
		},
		Voice: VoiceConfig{
			SampleRate:   16000,
			MaxRecording: Duration(10 * time.Second),
			Timeout:      Duration(30 * time.Second),
		},
		Device: DeviceConfig{
			URL:           "http://192.168.4.1",
			Provisioned:   true,
			ScreenTimeout: true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Pins: hal.DefaultPins(),
	}
}

func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory:
	case StoreJSON, StoreSQLite:
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("store.path is required for backend %q", c.Store.Backend)
		}
	default:
		return fmt.Errorf("invalid store.backend: %q", c.Store.Backend)
	}

	positive := []struct {
		name string
		d    Duration
	}{
		{"input.long_press", c.Input.LongPress},
		{"input.debounce", c.Input.Debounce},
		{"input.voice_hold", c.Input.VoiceHold},
		{"timing.poll", c.Timing.Poll},
		{"timing.idle_timeout", c.Timing.IdleTimeout},
		{"timing.qr_idle_timeout", c.Timing.QRIdleTimeout},
		{"timing.completing", c.Timing.Completing},
		{"timing.voice_result", c.Timing.VoiceResult},
		{"voice.max_recording", c.Voice.MaxRecording},
		{"voice.timeout", c.Voice.Timeout},
	}
	for _, p := range positive {
		if p.d <= 0 {
			return fmt.Errorf("%s must be > 0", p.name)
		}
	}
	if c.Input.VoiceHold <= c.Input.LongPress {
		return errors.New("input.voice_hold must be longer than input.long_press")
	}
	if c.Voice.SampleRate == 0 {
		return errors.New("voice.sample_rate must be > 0")
	}

	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level: %q", c.Log.Level)
	}
	return nil
}

// VoiceEnabled reports whether a speech server is configured.
func (c Config) VoiceEnabled() bool {
	return strings.TrimSpace(c.Voice.URL) != ""
}
