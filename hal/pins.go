package hal

// PinMap assigns MCU GPIO numbers to the kiosk's wiring.
type PinMap struct {
	CLK       uint8 `toml:"clk"`
	DT        uint8 `toml:"dt"`
	SW        uint8 `toml:"sw"`
	Backlight uint8 `toml:"backlight"`

	// SPI LCD.
	SCK  uint8 `toml:"sck"`
	MOSI uint8 `toml:"mosi"`
	CS   uint8 `toml:"cs"`
	DC   uint8 `toml:"dc"`
	RST  uint8 `toml:"rst"`

	Buzzer uint8 `toml:"buzzer"`
}

// DefaultPins is the Pico wiring: KY-040 on GP0..GP2, ST7735 on SPI0.
func DefaultPins() PinMap {
	return PinMap{
		CLK:       0,
		DT:        1,
		SW:        2,
		Backlight: 20,
		SCK:       18,
		MOSI:      19,
		CS:        17,
		DC:        16,
		RST:       21,
		Buzzer:    15,
	}
}

// Display geometry of the ST7735 in landscape.
const (
	DisplayWidth  = 160
	DisplayHeight = 128
)
