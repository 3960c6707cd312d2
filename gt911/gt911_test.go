// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gt911

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

const addr = 0x5D

var probe = i2ctest.IO{Addr: addr, W: []byte{0x81, 0x40}, R: []byte{'9', '1', '1', 0}}

func newDev(t *testing.T, ops ...i2ctest.IO) (*Dev, *i2ctest.Playback) {
	bus := &i2ctest.Playback{Ops: append([]i2ctest.IO{probe}, ops...), DontPanic: true}
	dev, err := New(bus, &DefaultOpts)
	if err != nil {
		t.Fatal(err)
	}
	return dev, bus
}

func TestNew(t *testing.T) {
	dev, bus := newDev(t)
	if dev.ProductID() != "911" {
		t.Errorf("ProductID() = %q", dev.ProductID())
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewNotDetected(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops:       []i2ctest.IO{{Addr: AltAddr, W: []byte{0x81, 0x40}, R: []byte{'9', '2', '8', 0}}},
		DontPanic: true,
	}
	_, err := New(bus, &Opts{Addr: AltAddr})
	if !errors.Is(err, ErrNotDetected) {
		t.Fatalf("New() = %v", err)
	}
}

func TestNewBusError(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	if _, err := New(bus, &DefaultOpts); err == nil {
		t.Fatal("expected error")
	}
}

func TestFirmwareAndResolution(t *testing.T) {
	dev, bus := newDev(t,
		i2ctest.IO{Addr: addr, W: []byte{0x81, 0x44}, R: []byte{0x60, 0x10}},
		i2ctest.IO{Addr: addr, W: []byte{0x81, 0x46}, R: []byte{0xF0, 0x00, 0x40, 0x01}},
	)
	fw, err := dev.Firmware()
	if err != nil {
		t.Fatal(err)
	}
	if fw != 0x1060 {
		t.Errorf("Firmware() = %#x", fw)
	}
	res, err := dev.Resolution()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(res, image.Pt(240, 320)); diff != "" {
		t.Errorf("Resolution() difference (-got +want):\n%s", diff)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestTouches(t *testing.T) {
	for _, tc := range []struct {
		name string
		ops  []i2ctest.IO
		want []Point
	}{
		{
			name: "not ready",
			ops: []i2ctest.IO{
				{Addr: addr, W: []byte{0x81, 0x4E}, R: []byte{0x00}},
			},
		},
		{
			name: "released",
			ops: []i2ctest.IO{
				{Addr: addr, W: []byte{0x81, 0x4E}, R: []byte{0x80}},
				{Addr: addr, W: []byte{0x81, 0x4E, 0x00}},
			},
			want: []Point{},
		},
		{
			name: "two points",
			ops: []i2ctest.IO{
				{Addr: addr, W: []byte{0x81, 0x4E}, R: []byte{0x82}},
				{Addr: addr, W: []byte{0x81, 0x4F}, R: []byte{
					0x00, 0x10, 0x00, 0x20, 0x01, 0x18, 0x00, 0x00,
					0x01, 0xEF, 0x00, 0x3F, 0x01, 0x05, 0x00, 0x00,
				}},
				{Addr: addr, W: []byte{0x81, 0x4E, 0x00}},
			},
			want: []Point{
				{ID: 0, X: 16, Y: 288, Size: 24},
				{ID: 1, X: 239, Y: 319, Size: 5},
			},
		},
		{
			name: "garbage count",
			ops: []i2ctest.IO{
				{Addr: addr, W: []byte{0x81, 0x4E}, R: []byte{0x8F}},
				{Addr: addr, W: []byte{0x81, 0x4E, 0x00}},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dev, bus := newDev(t, tc.ops...)
			got, err := dev.Touches()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Touches() difference (-got +want):\n%s", diff)
			}
			if err := bus.Close(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestConfig(t *testing.T) {
	cfg := make([]byte, ConfigSize)
	for i := range cfg {
		cfg[i] = byte(i)
	}
	sum := Checksum(cfg)
	var total byte
	for _, v := range cfg {
		total += v
	}
	if total+sum != 0 {
		t.Fatalf("Checksum() = %#x does not cancel the sum %#x", sum, total)
	}

	raw := append(append([]byte{}, cfg...), sum)
	bad := append(append([]byte{}, cfg...), sum+1)
	dev, bus := newDev(t,
		i2ctest.IO{Addr: addr, W: append([]byte{0x80, 0x47}, cfg...)},
		i2ctest.IO{Addr: addr, W: []byte{0x80, 0xFF, sum, 0x01}},
		i2ctest.IO{Addr: addr, W: []byte{0x80, 0x47}, R: raw},
		i2ctest.IO{Addr: addr, W: []byte{0x80, 0x47}, R: bad},
	)
	if err := dev.WriteConfig(cfg[:10]); err == nil {
		t.Error("expected length error")
	}
	if err := dev.WriteConfig(cfg); err != nil {
		t.Fatal(err)
	}
	got, err := dev.ReadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(got, cfg); diff != "" {
		t.Errorf("ReadConfig() difference (-got +want):\n%s", diff)
	}
	if _, err := dev.ReadConfig(); err == nil {
		t.Error("expected checksum error")
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestHalt(t *testing.T) {
	dev, bus := newDev(t, i2ctest.IO{Addr: addr, W: []byte{0x80, 0x40, 0x05}})
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestWaitForTouch(t *testing.T) {
	dev, _ := newDev(t)
	if dev.WaitForTouch(time.Millisecond) {
		t.Error("WaitForTouch() without interrupt line")
	}

	irq := &gpiotest.Pin{N: "INT", Num: 16, EdgesChan: make(chan gpio.Level, 1)}
	bus := &i2ctest.Playback{Ops: []i2ctest.IO{probe}, DontPanic: true}
	opts := DefaultOpts
	opts.Int = irq
	dev, err := New(bus, &opts)
	if err != nil {
		t.Fatal(err)
	}
	irq.EdgesChan <- gpio.Low
	if !dev.WaitForTouch(time.Second) {
		t.Error("WaitForTouch() missed the edge")
	}
	if dev.WaitForTouch(time.Millisecond) {
		t.Error("WaitForTouch() without edge")
	}
}
