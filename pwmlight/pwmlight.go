// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package pwmlight drives a display backlight from a single PWM capable
// GPIO.
//
// The intensity is mapped linearly to the duty cycle. Full off and full on
// use a static level instead of PWM.
package pwmlight

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Opts defines the options for the backlight.
type Opts struct {
	// Freq is the PWM frequency.
	Freq physic.Frequency
	// Channel is the PWM channel of the board pin table. periph allocates
	// PWM per pin, so it is unused except in String().
	Channel int
	// Invert is set when the backlight is lit by a Low level.
	Invert bool
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Freq: 12 * physic.KiloHertz,
}

// Dev is a PWM backlight.
type Dev struct {
	pin  gpio.PinOut
	opts Opts
	// Last intensity set.
	intensity display.Intensity
}

// New returns a backlight on pin. It starts turned off.
func New(pin gpio.PinOut, opts *Opts) (*Dev, error) {
	if pin == nil || pin == gpio.INVALID {
		return nil, errors.New("pwmlight: invalid pin")
	}
	if opts.Freq <= 0 {
		return nil, fmt.Errorf("pwmlight: invalid frequency %s", opts.Freq)
	}
	d := &Dev{pin: pin, opts: *opts}
	return d, d.Backlight(0)
}

func (d *Dev) String() string {
	return fmt.Sprintf("pwmlight.Dev{%s, %s, ch%d}", d.pin, d.opts.Freq, d.opts.Channel)
}

// Halt implements conn.Resource. It turns the backlight off.
func (d *Dev) Halt() error {
	return d.Backlight(0)
}

// Intensity returns the last intensity set.
func (d *Dev) Intensity() display.Intensity {
	return d.intensity
}

// Backlight implements display.DisplayBacklight.
//
// 0 is off and 255 or more is fully lit.
func (d *Dev) Backlight(intensity display.Intensity) error {
	var err error
	switch {
	case intensity <= 0:
		err = d.pin.Out(d.level(false))
	case intensity >= 0xff:
		err = d.pin.Out(d.level(true))
	default:
		err = d.pin.PWM(d.duty(intensity), d.opts.Freq)
	}
	if err != nil {
		return fmt.Errorf("pwmlight: %w", err)
	}
	d.intensity = intensity
	return nil
}

func (d *Dev) level(on bool) gpio.Level {
	return gpio.Level(on != d.opts.Invert)
}

func (d *Dev) duty(intensity display.Intensity) gpio.Duty {
	v := gpio.Duty(int64(gpio.DutyMax) * int64(intensity) / 0xff)
	if d.opts.Invert {
		return gpio.DutyMax - v
	}
	return v
}

var _ display.DisplayBacklight = &Dev{}
var _ conn.Resource = &Dev{}
