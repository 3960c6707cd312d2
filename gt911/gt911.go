// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gt911

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Register addresses. They are 16 bits, sent big endian.
const (
	regCommand    uint16 = 0x8040
	regConfig     uint16 = 0x8047
	regChecksum   uint16 = 0x80FF
	regProductID  uint16 = 0x8140
	regFirmware   uint16 = 0x8144
	regResolution uint16 = 0x8146
	regStatus     uint16 = 0x814E
	regPoints     uint16 = 0x814F
)

const (
	cmdScreenOff byte = 0x05

	statusReady byte = 0x80
	statusCount byte = 0x0F

	pointSize = 8
)

// ConfigSize is the size of the configuration block, without the checksum
// and the fresh flag.
const ConfigSize = int(regChecksum - regConfig)

// MaxPoints is the maximum number of simultaneous touch points reported.
const MaxPoints = 5

// AltAddr is the address selected when INT is low at the end of reset.
const AltAddr uint16 = 0x14

// ErrNotDetected is returned by New when the device does not identify as a
// GT911.
var ErrNotDetected = errors.New("gt911: device not detected")

// Opts defines the options for the device.
type Opts struct {
	// Addr is the I²C address, 0x5D or 0x14.
	Addr uint16
	// Freq is the I²C bus clock. 0 leaves the bus untouched.
	Freq physic.Frequency
	// Int is the optional interrupt line, used by WaitForTouch.
	Int gpio.PinIn
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Addr: 0x5D,
	Freq: 400 * physic.KiloHertz,
}

// Point is a touch point in controller coordinates.
type Point struct {
	// ID tracks the same finger across reads.
	ID uint8
	X  int
	Y  int
	// Size is the touch area.
	Size int
}

// Pt returns the point coordinates.
func (p Point) Pt() image.Point {
	return image.Point{X: p.X, Y: p.Y}
}

// Dev is a handle to a GT911.
type Dev struct {
	d       *i2c.Dev
	irq     gpio.PinIn
	product string
	buf     [2 + MaxPoints*pointSize]byte
}

// New returns a handle to a GT911 after checking its product ID.
func New(b i2c.Bus, opts *Opts) (*Dev, error) {
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultOpts.Addr
	}
	if opts.Freq != 0 {
		if err := b.SetSpeed(opts.Freq); err != nil {
			return nil, wrap(err)
		}
	}
	d := &Dev{d: &i2c.Dev{Bus: b, Addr: addr}, irq: opts.Int}
	id := make([]byte, 4)
	if err := d.readReg(regProductID, id); err != nil {
		return nil, wrap(err)
	}
	d.product = strings.TrimRight(string(id), "\x00")
	if d.product != "911" {
		return nil, fmt.Errorf("%w: product ID %q", ErrNotDetected, d.product)
	}
	if d.irq != nil {
		if err := d.irq.In(gpio.Float, gpio.FallingEdge); err != nil {
			return nil, wrap(err)
		}
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("gt911.Dev{%s}", d.d)
}

// ProductID returns the product ID read at initialization.
func (d *Dev) ProductID() string {
	return d.product
}

// Firmware returns the firmware version.
func (d *Dev) Firmware() (uint16, error) {
	b := d.buf[:2]
	if err := d.readReg(regFirmware, b); err != nil {
		return 0, wrap(err)
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// Resolution returns the coordinate range configured in the controller.
func (d *Dev) Resolution() (image.Point, error) {
	b := d.buf[:4]
	if err := d.readReg(regResolution, b); err != nil {
		return image.Point{}, wrap(err)
	}
	return image.Point{
		X: int(b[0]) | int(b[1])<<8,
		Y: int(b[2]) | int(b[3])<<8,
	}, nil
}

// Touches returns the current touch points.
//
// It returns nil when the controller has no new coordinates. Otherwise it
// returns the points, possibly none when all fingers were released, and
// acknowledges the read.
func (d *Dev) Touches() ([]Point, error) {
	st := d.buf[:1]
	if err := d.readReg(regStatus, st); err != nil {
		return nil, wrap(err)
	}
	if st[0]&statusReady == 0 {
		return nil, nil
	}
	n := int(st[0] & statusCount)
	if n > MaxPoints {
		// Garbage; drop the frame.
		return nil, wrap(d.writeReg(regStatus, 0))
	}
	pts := make([]Point, 0, n)
	if n > 0 {
		raw := d.buf[:n*pointSize]
		if err := d.readReg(regPoints, raw); err != nil {
			return nil, wrap(err)
		}
		for i := 0; i < n; i++ {
			p := raw[i*pointSize:]
			pts = append(pts, Point{
				ID:   p[0],
				X:    int(p[1]) | int(p[2])<<8,
				Y:    int(p[3]) | int(p[4])<<8,
				Size: int(p[5]) | int(p[6])<<8,
			})
		}
	}
	if err := d.writeReg(regStatus, 0); err != nil {
		return nil, wrap(err)
	}
	return pts, nil
}

// WaitForTouch waits for the interrupt line to signal new coordinates.
//
// It returns false on timeout, or immediately when no interrupt line was
// configured.
func (d *Dev) WaitForTouch(timeout time.Duration) bool {
	if d.irq == nil {
		return false
	}
	return d.irq.WaitForEdge(timeout)
}

// ReadConfig returns the configuration block. The checksum is verified.
func (d *Dev) ReadConfig() ([]byte, error) {
	b := make([]byte, ConfigSize+1)
	if err := d.readReg(regConfig, b); err != nil {
		return nil, wrap(err)
	}
	cfg, sum := b[:ConfigSize], b[ConfigSize]
	if c := Checksum(cfg); c != sum {
		return nil, fmt.Errorf("gt911: invalid config checksum 0x%02x, expected 0x%02x", sum, c)
	}
	return cfg, nil
}

// WriteConfig writes a configuration block followed by its checksum and the
// fresh flag so the controller applies it.
func (d *Dev) WriteConfig(cfg []byte) error {
	if len(cfg) != ConfigSize {
		return fmt.Errorf("gt911: invalid config length %d, expected %d", len(cfg), ConfigSize)
	}
	if err := d.writeReg(regConfig, cfg...); err != nil {
		return wrap(err)
	}
	return wrap(d.writeReg(regChecksum, Checksum(cfg), 1))
}

// Halt implements conn.Resource. It puts the controller in screen off mode.
//
// The controller wakes up on an INT pulse.
func (d *Dev) Halt() error {
	return wrap(d.writeReg(regCommand, cmdScreenOff))
}

// Checksum returns the checksum of a configuration block: the two's
// complement of the sum of its bytes.
func Checksum(cfg []byte) byte {
	var sum byte
	for _, v := range cfg {
		sum += v
	}
	return ^sum + 1
}

func (d *Dev) readReg(reg uint16, r []byte) error {
	return d.d.Tx([]byte{byte(reg >> 8), byte(reg)}, r)
}

func (d *Dev) writeReg(reg uint16, data ...byte) error {
	w := make([]byte, 0, 2+len(data))
	w = append(w, byte(reg>>8), byte(reg))
	return d.d.Tx(append(w, data...), nil)
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("gt911: %w", err)
}

var _ conn.Resource = &Dev{}
