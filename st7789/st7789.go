// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7789

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"

	"github.com/GermanBionicSystems/tdeck/st7789/image565"
)

// Commands
const (
	swReset  byte = 0x01
	rddID    byte = 0x04
	slpIn    byte = 0x10
	slpOut   byte = 0x11
	norOn    byte = 0x13
	invOff   byte = 0x20
	invOn    byte = 0x21
	dispOff  byte = 0x28
	dispOn   byte = 0x29
	caSet    byte = 0x2A
	raSet    byte = 0x2B
	ramWr    byte = 0x2C
	madCtl   byte = 0x36
	colMod   byte = 0x3A
	colMod16 byte = 0x55 // 65K RGB interface, 16 bits per pixel.
)

// MADCTL bits.
const (
	madMY byte = 0x80 // Row address order.
	madMX byte = 0x40 // Column address order.
	madMV byte = 0x20 // Row/column exchange.
	madML byte = 0x10 // Vertical refresh order.
	madMH byte = 0x04 // Horizontal refresh order.
)

// madctlTable maps a rotation to the MADCTL value. 0 to 3 rotate clockwise
// by 90° steps, 4 to 7 are the same rotations mirrored.
var madctlTable = [8]byte{
	0,
	madMV | madMX | madMH,
	madMX | madMH | madMY | madML,
	madMV | madMY | madML,
	madMY | madML,
	madMV,
	madMX | madMH,
	madMV | madMX | madMY | madMH | madML,
}

// ErrReadTooFast is returned by ReadID when the connection clock is above
// the clock allowed for register reads.
var ErrReadTooFast = errors.New("st7789: bus clock too fast for register reads")

// sleep is replaced in tests.
var sleep = time.Sleep

// Opts defines the options for the device.
type Opts struct {
	// W and H are the native (rotation 0) panel size.
	W int
	H int
	// OffsetX and OffsetY locate the panel in the controller's 240x320
	// memory.
	OffsetX int
	OffsetY int
	// Invert enables color inversion. Most IPS panels need it.
	Invert bool
	// Rotation is the initial rotation, 0 to 7.
	Rotation int
	// Freq is the SPI clock used for pixel writes.
	Freq physic.Frequency
	// ReadFreq is the maximum SPI clock for register reads.
	ReadFreq physic.Frequency
	// Mode is the SPI mode. Add spi.HalfDuplex for 3-wire wiring.
	Mode spi.Mode
}

// DefaultOpts is the recommended default options for a 240x320 IPS panel.
var DefaultOpts = Opts{
	W:        240,
	H:        320,
	Invert:   true,
	Freq:     40 * physic.MegaHertz,
	ReadFreq: 16 * physic.MegaHertz,
	Mode:     spi.Mode0,
}

// Dev is an open handle to the display controller.
type Dev struct {
	c         conn.Conn
	dc        gpio.PinOut
	cs        gpio.PinOut
	rst       gpio.PinOut
	maxTxSize int

	opts     Opts
	rotation int
	rect     image.Rectangle
	light    display.DisplayBacklight

	// scratch is reused across Draw() calls.
	scratch []byte
}

// NewSPI returns a Dev object that communicates over SPI to a ST7789 display
// controller.
//
// dc is required. Pass nil for cs when the chip select is handled by the SPI
// port, and nil for rst when the reset line is tied to the system reset.
//
// The controller is reset (when rst is provided) and initialized. The
// display is turned on but the backlight, if any, is left untouched.
func NewSPI(p spi.Port, dc, cs, rst gpio.PinOut, opts *Opts) (*Dev, error) {
	if dc == nil || dc == gpio.INVALID {
		return nil, errors.New("st7789: dc pin is required")
	}
	if opts.W <= 0 || opts.H <= 0 {
		return nil, fmt.Errorf("st7789: invalid size %dx%d", opts.W, opts.H)
	}
	if opts.Rotation < 0 || opts.Rotation >= len(madctlTable) {
		return nil, fmt.Errorf("st7789: invalid rotation %d", opts.Rotation)
	}
	o := *opts
	if o.Freq == 0 {
		o.Freq = DefaultOpts.Freq
	}
	if err := dc.Out(gpio.Low); err != nil {
		return nil, wrap(err)
	}
	if cs != nil {
		if err := cs.Out(gpio.High); err != nil {
			return nil, wrap(err)
		}
	}
	c, err := p.Connect(o.Freq, o.Mode, 8)
	if err != nil {
		return nil, wrap(err)
	}
	d := &Dev{c: c, dc: dc, cs: cs, rst: rst, opts: o}
	if l, ok := c.(conn.Limits); ok {
		d.maxTxSize = l.MaxTxSize()
	}
	d.setRect(o.Rotation)

	eh := &errorHandler{d: d}
	d.reset(eh)
	initPanel(eh, &o)
	if eh.err != nil {
		return nil, wrap(eh.err)
	}
	return d, nil
}

func (d *Dev) String() string {
	return fmt.Sprintf("st7789.Dev{%s, %s, %s}", d.c, d.dc, d.rect.Max)
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image565.Model
}

// Bounds implements display.Drawer. Min is guaranteed to be {0, 0}.
//
// The size depends on the current rotation.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Rotation returns the current rotation.
func (d *Dev) Rotation() int {
	return d.rotation
}

// SetRotation changes the panel orientation. Odd rotations swap width and
// height.
func (d *Dev) SetRotation(r int) error {
	if r < 0 || r >= len(madctlTable) {
		return fmt.Errorf("st7789: invalid rotation %d", r)
	}
	eh := &errorHandler{d: d}
	eh.sendCommand(madCtl)
	eh.sendData([]byte{madctlTable[r]})
	if eh.err != nil {
		return wrap(eh.err)
	}
	d.setRect(r)
	return nil
}

// Invert enables or disables color inversion.
func (d *Dev) Invert(on bool) error {
	eh := &errorHandler{d: d}
	if on {
		eh.sendCommand(invOn)
	} else {
		eh.sendCommand(invOff)
	}
	return wrap(eh.err)
}

// SetBacklight attaches the backlight controlled by Backlight() and Halt().
func (d *Dev) SetBacklight(l display.DisplayBacklight) {
	d.light = l
}

// Backlight implements display.DisplayBacklight by forwarding to the
// attached backlight.
func (d *Dev) Backlight(intensity display.Intensity) error {
	if d.light == nil {
		return errors.New("st7789: no backlight attached")
	}
	return d.light.Backlight(intensity)
}

// Draw implements display.Drawer.
//
// It draws synchronously, once this function returns, the display is
// updated. An *image565.Image covering exactly r is sent without conversion.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	orig := r
	r = r.Intersect(d.rect)
	if r.Empty() {
		return nil
	}
	// Keep sp aligned with r.Min once clipped.
	sp = sp.Add(r.Min.Sub(orig.Min))
	n := 2 * r.Dx() * r.Dy()
	var pix []byte
	if img, ok := src.(*image565.Image); ok && img.Rect == r && sp == r.Min && img.Stride == 2*r.Dx() {
		// Fast path.
		pix = img.Pix[:n]
	} else {
		if cap(d.scratch) < n {
			d.scratch = make([]byte, n)
		}
		next := &image565.Image{Pix: d.scratch[:n], Stride: 2 * r.Dx(), Rect: r}
		draw.Draw(next, r, src, sp, draw.Src)
		pix = next.Pix
	}
	return d.sendPixels(r, pix)
}

// Write writes a full frame of raw RGB565 pixels, big endian, as stored in
// image565.Image.Pix.
func (d *Dev) Write(pixels []byte) (int, error) {
	if n := 2 * d.rect.Dx() * d.rect.Dy(); len(pixels) != n {
		return 0, fmt.Errorf("st7789: invalid pixel stream length; expected %d bytes, got %d bytes", n, len(pixels))
	}
	if err := d.sendPixels(d.rect, pixels); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Fill paints the whole display with one color.
func (d *Dev) Fill(c image565.Color) error {
	return d.Draw(d.rect, &image.Uniform{C: c}, image.Point{})
}

// ReadID reads the 24 bits display identification (manufacturer, version,
// driver).
//
// The ST7789 clocks out reads at a lower rate than writes. The connection
// runs at a single clock, so ReadID returns ErrReadTooFast unless the write
// clock is within ReadFreq. With DefaultOpts (40MHz writes, 16MHz reads) it
// always fails; open the Dev with Freq set to ReadFreq or lower to read the
// ID.
func (d *Dev) ReadID() (uint32, error) {
	if d.opts.ReadFreq != 0 && d.opts.Freq > d.opts.ReadFreq {
		return 0, ErrReadTooFast
	}
	eh := &errorHandler{d: d}
	r := make([]byte, 4)
	eh.dcOut(gpio.Low)
	eh.csOut(gpio.Low)
	eh.cTx([]byte{rddID}, nil)
	eh.dcOut(gpio.High)
	eh.cTx(nil, r)
	eh.csOut(gpio.High)
	if eh.err != nil {
		return 0, wrap(eh.err)
	}
	// One dummy clock precedes the 24 bits of data.
	v := uint32(r[0])<<24 | uint32(r[1])<<16 | uint32(r[2])<<8 | uint32(r[3])
	return (v >> 7) & 0xFFFFFF, nil
}

// Halt turns the backlight and the display off and puts the controller to
// sleep.
//
// Drawing afterward does not turn the display back on; create a new Dev.
func (d *Dev) Halt() error {
	if d.light != nil {
		if err := d.light.Backlight(0); err != nil {
			return err
		}
	}
	eh := &errorHandler{d: d}
	eh.sendCommand(dispOff)
	eh.sendCommand(slpIn)
	eh.delay(5 * time.Millisecond)
	return wrap(eh.err)
}

func (d *Dev) setRect(r int) {
	d.rotation = r
	if r&1 != 0 {
		d.rect = image.Rect(0, 0, d.opts.H, d.opts.W)
	} else {
		d.rect = image.Rect(0, 0, d.opts.W, d.opts.H)
	}
}

func (d *Dev) sendPixels(r image.Rectangle, pix []byte) error {
	ox, oy := d.opts.OffsetX, d.opts.OffsetY
	if d.rotation&1 != 0 {
		ox, oy = oy, ox
	}
	eh := &errorHandler{d: d}
	setWindow(eh, r.Min.X+ox, r.Min.Y+oy, r.Max.X-1+ox, r.Max.Y-1+oy)
	eh.sendCommand(ramWr)
	eh.sendData(pix)
	return wrap(eh.err)
}

// reset pulses the reset line, when there is one.
func (d *Dev) reset(eh *errorHandler) {
	if d.rst == nil {
		return
	}
	eh.rstOut(gpio.High)
	eh.delay(5 * time.Millisecond)
	eh.rstOut(gpio.Low)
	eh.delay(10 * time.Millisecond)
	eh.rstOut(gpio.High)
	eh.delay(120 * time.Millisecond)
}

func initPanel(ctrl controller, opts *Opts) {
	ctrl.sendCommand(swReset)
	ctrl.delay(150 * time.Millisecond)
	ctrl.sendCommand(slpOut)
	ctrl.delay(120 * time.Millisecond)
	ctrl.sendCommand(colMod)
	ctrl.sendData([]byte{colMod16})
	ctrl.sendCommand(madCtl)
	ctrl.sendData([]byte{madctlTable[opts.Rotation]})
	if opts.Invert {
		ctrl.sendCommand(invOn)
	} else {
		ctrl.sendCommand(invOff)
	}
	ctrl.sendCommand(norOn)
	ctrl.delay(10 * time.Millisecond)
	ctrl.sendCommand(dispOn)
	ctrl.delay(20 * time.Millisecond)
}

func setWindow(ctrl controller, x0, y0, x1, y1 int) {
	ctrl.sendCommand(caSet)
	ctrl.sendData([]byte{byte(x0 >> 8), byte(x0), byte(x1 >> 8), byte(x1)})
	ctrl.sendCommand(raSet)
	ctrl.sendData([]byte{byte(y0 >> 8), byte(y0), byte(y1 >> 8), byte(y1)})
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("st7789: %w", err)
}

var _ display.Drawer = &Dev{}
var _ display.DisplayBacklight = &Dev{}
