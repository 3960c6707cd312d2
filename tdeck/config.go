// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tdeck

import (
	"fmt"
	"image"
	"strconv"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Pin is an ESP32-S3 GPIO number.
type Pin int

// NoPin marks a line that is not connected, e.g. a reset tied to the system
// reset.
const NoPin Pin = -1

// maxGPIO is the highest GPIO number of the ESP32-S3.
const maxGPIO Pin = 48

func (p Pin) String() string {
	if p == NoPin {
		return "NoPin"
	}
	return "GPIO" + strconv.Itoa(int(p))
}

// PinFunc resolves a Pin to a periph GPIO. It returns nil for unknown pins.
type PinFunc func(Pin) gpio.PinIO

// ByNumber resolves pins through the gpioreg registry, by number.
func ByNumber(p Pin) gpio.PinIO {
	return gpioreg.ByName(strconv.Itoa(int(p)))
}

// BusConfig is the SPI bus shared by the panel.
type BusConfig struct {
	// Host is the SPI port name, as known by spireg.
	Host string
	Mode spi.Mode
	// ThreeWire is set when MOSI is also used for reads.
	ThreeWire bool
	WriteFreq physic.Frequency
	ReadFreq  physic.Frequency
	SCLK      Pin
	MOSI      Pin
	MISO      Pin
	// DC selects between command and data.
	DC Pin
}

// LightConfig is the PWM backlight.
type LightConfig struct {
	Pin     Pin
	Freq    physic.Frequency
	Channel int
	Invert  bool
}

// PanelConfig is the ST7789 panel.
type PanelConfig struct {
	Width  int
	Height int
	CS     Pin
	RST    Pin
	Invert bool
	// Rotation is 0 to 3 clockwise quarter turns, 4 to 7 mirrored.
	Rotation int
}

// TouchConfig is the GT911 touch controller.
type TouchConfig struct {
	// Port is the I²C bus name, as known by i2creg.
	Port string
	Addr uint16
	SDA  Pin
	SCL  Pin
	// INT is the interrupt line. It is also pulsed to wake the controller.
	INT Pin
	RST Pin
	// Freq is the I²C clock.
	Freq physic.Frequency
	// The raw coordinate range reported by the controller.
	XMin int
	XMax int
	YMin int
	YMax int
}

// PowerConfig is the power sequencing before the drivers are opened.
type PowerConfig struct {
	// Enable gates the peripherals power.
	Enable Pin
	// Deselect are the chip selects of other devices sharing the SPI bus.
	// They are driven High (inactive).
	Deselect []Pin
	// Settle is the wait after enabling the power.
	Settle time.Duration
	// WakePulse is how long INT is held High to wake the touch controller.
	WakePulse time.Duration
}

// Config is the display and touch configuration of the board.
type Config struct {
	Bus   BusConfig
	Light LightConfig
	Panel PanelConfig
	Touch TouchConfig
	Power PowerConfig
}

// DefaultConfig is the T-Deck pin map.
var DefaultConfig = Config{
	Bus: BusConfig{
		Host:      "SPI2",
		Mode:      spi.Mode0,
		ThreeWire: true,
		WriteFreq: 40 * physic.MegaHertz,
		ReadFreq:  16 * physic.MegaHertz,
		SCLK:      40,
		MOSI:      41,
		MISO:      38,
		DC:        11,
	},
	Light: LightConfig{
		Pin:  42,
		Freq: 12 * physic.KiloHertz,
	},
	Panel: PanelConfig{
		Width:    240,
		Height:   320,
		CS:       12,
		RST:      NoPin,
		Invert:   true,
		Rotation: 1,
	},
	Touch: TouchConfig{
		Port: "I2C1",
		Addr: 0x5D,
		SDA:  18,
		SCL:  8,
		INT:  16,
		RST:  NoPin,
		Freq: 400 * physic.KiloHertz,
		XMin: 0,
		XMax: 240,
		YMin: 0,
		YMax: 320,
	},
	Power: PowerConfig{
		Enable: 10,
		// SD card, LoRa.
		Deselect:  []Pin{39, 9},
		Settle:    10 * time.Millisecond,
		WakePulse: 20 * time.Millisecond,
	},
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	type role struct {
		name     string
		pin      Pin
		optional bool
	}
	roles := []role{
		{"bus SCLK", c.Bus.SCLK, false},
		{"bus MOSI", c.Bus.MOSI, false},
		{"bus MISO", c.Bus.MISO, true},
		{"bus DC", c.Bus.DC, false},
		{"backlight", c.Light.Pin, false},
		{"panel CS", c.Panel.CS, false},
		{"panel RST", c.Panel.RST, true},
		{"touch SDA", c.Touch.SDA, false},
		{"touch SCL", c.Touch.SCL, false},
		{"touch INT", c.Touch.INT, false},
		{"touch RST", c.Touch.RST, true},
		{"power enable", c.Power.Enable, false},
	}
	for i, p := range c.Power.Deselect {
		roles = append(roles, role{fmt.Sprintf("deselect #%d", i), p, false})
	}
	used := map[Pin]string{}
	for _, r := range roles {
		if r.pin == NoPin && r.optional {
			continue
		}
		if r.pin < 0 || r.pin > maxGPIO {
			return fmt.Errorf("tdeck: invalid %s pin %d", r.name, int(r.pin))
		}
		if other, ok := used[r.pin]; ok {
			return fmt.Errorf("tdeck: %s and %s both use %s", other, r.name, r.pin)
		}
		used[r.pin] = r.name
	}

	if c.Bus.WriteFreq <= 0 || c.Bus.ReadFreq <= 0 {
		return fmt.Errorf("tdeck: invalid bus frequencies %s/%s", c.Bus.WriteFreq, c.Bus.ReadFreq)
	}
	if c.Bus.ReadFreq > c.Bus.WriteFreq {
		return fmt.Errorf("tdeck: bus read frequency %s above write frequency %s", c.Bus.ReadFreq, c.Bus.WriteFreq)
	}
	if c.Light.Freq <= 0 {
		return fmt.Errorf("tdeck: invalid backlight frequency %s", c.Light.Freq)
	}
	if c.Light.Channel < 0 {
		return fmt.Errorf("tdeck: invalid backlight channel %d", c.Light.Channel)
	}
	if c.Panel.Width <= 0 || c.Panel.Height <= 0 {
		return fmt.Errorf("tdeck: invalid panel size %dx%d", c.Panel.Width, c.Panel.Height)
	}
	if c.Panel.Rotation < 0 || c.Panel.Rotation > 7 {
		return fmt.Errorf("tdeck: invalid panel rotation %d", c.Panel.Rotation)
	}
	if c.Touch.Addr == 0 || c.Touch.Addr > 0x7F {
		return fmt.Errorf("tdeck: invalid touch address 0x%x", c.Touch.Addr)
	}
	if c.Touch.Freq <= 0 {
		return fmt.Errorf("tdeck: invalid touch frequency %s", c.Touch.Freq)
	}
	if c.Touch.XMax <= c.Touch.XMin || c.Touch.YMax <= c.Touch.YMin {
		return fmt.Errorf("tdeck: invalid touch bounds x %d..%d y %d..%d", c.Touch.XMin, c.Touch.XMax, c.Touch.YMin, c.Touch.YMax)
	}
	if c.Power.Settle < 0 || c.Power.WakePulse < 0 {
		return fmt.Errorf("tdeck: invalid power delays %s/%s", c.Power.Settle, c.Power.WakePulse)
	}
	return nil
}

// ScreenPoint maps a raw touch coordinate to the rotated screen.
//
// The raw range is scaled to the panel size then rotated like the panel.
// Mirrored rotations (4 to 7) flip the X axis after rotating.
func (c *Config) ScreenPoint(raw image.Point) image.Point {
	w, h := c.Panel.Width, c.Panel.Height
	x := clamp((raw.X-c.Touch.XMin)*w/(c.Touch.XMax-c.Touch.XMin), w)
	y := clamp((raw.Y-c.Touch.YMin)*h/(c.Touch.YMax-c.Touch.YMin), h)
	var p image.Point
	sw := w
	switch c.Panel.Rotation & 3 {
	case 0:
		p = image.Pt(x, y)
	case 1:
		p = image.Pt(y, w-1-x)
		sw = h
	case 2:
		p = image.Pt(w-1-x, h-1-y)
	case 3:
		p = image.Pt(h-1-y, x)
		sw = h
	}
	if c.Panel.Rotation&4 != 0 {
		p.X = sw - 1 - p.X
	}
	return p
}

func (c *Config) clone() Config {
	n := *c
	n.Power.Deselect = append([]Pin(nil), c.Power.Deselect...)
	return n
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}
