// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package pwmlight

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
)

// halfDuty is the duty for intensity 0x80.
var halfDuty = gpio.Duty(int64(gpio.DutyMax) * 0x80 / 0xff)

type op struct {
	Level gpio.Level
	Duty  gpio.Duty
	Freq  physic.Frequency
	PWM   bool
}

// recPin records every output operation.
type recPin struct {
	gpiotest.Pin
	ops []op
}

func (p *recPin) Out(l gpio.Level) error {
	p.ops = append(p.ops, op{Level: l})
	return p.Pin.Out(l)
}

func (p *recPin) PWM(duty gpio.Duty, f physic.Frequency) error {
	p.ops = append(p.ops, op{Duty: duty, Freq: f, PWM: true})
	return nil
}

func TestBacklight(t *testing.T) {
	for _, tc := range []struct {
		name   string
		invert bool
		want   []op
	}{
		{
			name: "normal",
			want: []op{
				{Level: gpio.Low},
				{Level: gpio.High},
				{Duty: halfDuty, Freq: 12 * physic.KiloHertz, PWM: true},
				{Level: gpio.Low},
			},
		},
		{
			name:   "inverted",
			invert: true,
			want: []op{
				{Level: gpio.High},
				{Level: gpio.Low},
				{Duty: gpio.DutyMax - halfDuty, Freq: 12 * physic.KiloHertz, PWM: true},
				{Level: gpio.High},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := &recPin{Pin: gpiotest.Pin{N: "BL", Num: 42}}
			opts := DefaultOpts
			opts.Invert = tc.invert
			d, err := New(p, &opts)
			if err != nil {
				t.Fatal(err)
			}
			if err := d.Backlight(0xff); err != nil {
				t.Fatal(err)
			}
			if err := d.Backlight(0x80); err != nil {
				t.Fatal(err)
			}
			if d.Intensity() != 0x80 {
				t.Errorf("Intensity() = %d", d.Intensity())
			}
			if err := d.Halt(); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(p.ops, tc.want); diff != "" {
				t.Errorf("pin difference (-got +want):\n%s", diff)
			}
		})
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := New(nil, &DefaultOpts); err == nil {
		t.Error("expected error with nil pin")
	}
	if _, err := New(gpio.INVALID, &DefaultOpts); err == nil {
		t.Error("expected error with gpio.INVALID")
	}
	if _, err := New(&gpiotest.Pin{}, &Opts{}); err == nil {
		t.Error("expected error without frequency")
	}
}

func TestString(t *testing.T) {
	d, err := New(&gpiotest.Pin{N: "GPIO42", Num: 42}, &DefaultOpts)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(d.String(), "pwmlight.Dev{GPIO42(42), 12kHz, ch0}"); diff != "" {
		t.Errorf("String() difference (-got +want):\n%s", diff)
	}
}
