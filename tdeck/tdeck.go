// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tdeck

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"

	"github.com/GermanBionicSystems/tdeck/gt911"
	"github.com/GermanBionicSystems/tdeck/pwmlight"
	"github.com/GermanBionicSystems/tdeck/st7789"
)

// sleep is replaced in tests.
var sleep = time.Sleep

// TouchPoint is a touch in screen coordinates.
type TouchPoint struct {
	ID uint8
	image.Point
	Size int
}

// Dev is the brought-up display and touch subsystem.
//
// It implements display.Drawer by drawing on the panel.
type Dev struct {
	cfg   Config
	panel *st7789.Dev
	light *pwmlight.Dev
	touch *gt911.Dev
}

// New powers the peripherals and opens the panel, backlight and touch
// drivers.
//
// p is the SPI port of the panel and b the I²C bus of the touch controller.
// pins resolves the configured pin numbers; nil means ByNumber.
//
// The sequence is, in order: drive the power enable High, pulse the touch
// INT line High to wake the controller then release it, drive the other
// chip selects of the bus High, open the drivers and install the panel with
// the configured rotation.
//
// When a driver fails to open, the ones already opened are halted before
// returning the error.
func New(p spi.Port, b i2c.Bus, pins PinFunc, cfg *Config) (*Dev, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if pins == nil {
		pins = ByNumber
	}
	c := cfg.clone()
	s := &sequencer{pins: pins}

	s.high(c.Power.Enable)
	s.delay(c.Power.Settle)

	if c.Touch.RST != NoPin {
		s.high(c.Touch.RST)
	}
	s.high(c.Touch.INT)
	s.delay(c.Power.WakePulse)
	s.release(c.Touch.INT)

	for _, cs := range c.Power.Deselect {
		s.high(cs)
	}
	if s.err != nil {
		return nil, s.err
	}

	bl := s.pin(c.Light.Pin)
	dc := s.pin(c.Bus.DC)
	cs := s.pin(c.Panel.CS)
	irq := s.pin(c.Touch.INT)
	var rst gpio.PinOut
	if c.Panel.RST != NoPin {
		rst = s.pin(c.Panel.RST)
	}
	if s.err != nil {
		return nil, s.err
	}

	light, err := pwmlight.New(bl, &pwmlight.Opts{
		Freq:    c.Light.Freq,
		Channel: c.Light.Channel,
		Invert:  c.Light.Invert,
	})
	if err != nil {
		return nil, wrap(err)
	}

	mode := c.Bus.Mode
	if c.Bus.ThreeWire {
		mode |= spi.HalfDuplex
	}
	panel, err := st7789.NewSPI(p, dc, cs, rst, &st7789.Opts{
		W:        c.Panel.Width,
		H:        c.Panel.Height,
		Invert:   c.Panel.Invert,
		Freq:     c.Bus.WriteFreq,
		ReadFreq: c.Bus.ReadFreq,
		Mode:     mode,
	})
	if err != nil {
		return nil, wrap(err)
	}

	touch, err := gt911.New(b, &gt911.Opts{Addr: c.Touch.Addr, Freq: c.Touch.Freq, Int: irq})
	if err != nil {
		// Leave the panel asleep and dark; the power gate stays on.
		_ = panel.Halt()
		_ = light.Halt()
		return nil, wrap(err)
	}

	if err := panel.SetRotation(c.Panel.Rotation); err != nil {
		_ = touch.Halt()
		_ = panel.Halt()
		_ = light.Halt()
		return nil, wrap(err)
	}
	panel.SetBacklight(light)
	return &Dev{cfg: c, panel: panel, light: light, touch: touch}, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("tdeck.Dev{%s, %s, %s}", d.panel, d.light, d.touch)
}

// Config returns a copy of the configuration the board was brought up with.
func (d *Dev) Config() Config {
	return d.cfg.clone()
}

// Panel returns the LCD driver.
func (d *Dev) Panel() *st7789.Dev {
	return d.panel
}

// Touch returns the touch controller driver.
func (d *Dev) Touch() *gt911.Dev {
	return d.touch
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return d.panel.ColorModel()
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.panel.Bounds()
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	return d.panel.Draw(r, src, sp)
}

// Backlight implements display.DisplayBacklight.
func (d *Dev) Backlight(intensity display.Intensity) error {
	return d.light.Backlight(intensity)
}

// Touches returns the current touches in screen coordinates. It returns nil
// when the controller has nothing new.
func (d *Dev) Touches() ([]TouchPoint, error) {
	pts, err := d.touch.Touches()
	if err != nil || pts == nil {
		return nil, err
	}
	out := make([]TouchPoint, 0, len(pts))
	for _, p := range pts {
		out = append(out, TouchPoint{ID: p.ID, Point: d.cfg.ScreenPoint(p.Pt()), Size: p.Size})
	}
	return out, nil
}

// WaitForTouch waits for the touch controller to signal new coordinates.
func (d *Dev) WaitForTouch(timeout time.Duration) bool {
	return d.touch.WaitForTouch(timeout)
}

// Halt implements conn.Resource. It puts the touch controller and the panel
// to sleep and turns the backlight off.
//
// The peripherals power gate is left on.
func (d *Dev) Halt() error {
	return errors.Join(d.touch.Halt(), d.panel.Halt())
}

// sequencer drives the power sequencing pins. Once an operation failed, all
// following operations are skipped.
type sequencer struct {
	pins PinFunc
	err  error
}

func (s *sequencer) pin(p Pin) gpio.PinIO {
	if s.err != nil {
		return nil
	}
	g := s.pins(p)
	if g == nil || g == gpio.INVALID {
		s.err = fmt.Errorf("tdeck: %s not found", p)
		return nil
	}
	return g
}

func (s *sequencer) high(p Pin) {
	g := s.pin(p)
	if s.err != nil {
		return
	}
	if err := g.Out(gpio.High); err != nil {
		s.err = fmt.Errorf("tdeck: %s: %w", p, err)
	}
}

// release turns the pin into a floating input.
func (s *sequencer) release(p Pin) {
	g := s.pin(p)
	if s.err != nil {
		return
	}
	if err := g.In(gpio.Float, gpio.NoEdge); err != nil {
		s.err = fmt.Errorf("tdeck: %s: %w", p, err)
	}
}

func (s *sequencer) delay(d time.Duration) {
	if s.err != nil {
		return
	}
	sleep(d)
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("tdeck: %w", err)
}

var _ display.Drawer = &Dev{}
var _ display.DisplayBacklight = &Dev{}
