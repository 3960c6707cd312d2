// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package image565 implements a 16 bits per pixel image in the RGB 5-6-5
// packed format used by most small TFT controllers.
//
// Pixels are stored big endian, which is the byte order the ST7789 expects on
// the wire, so an Image can be streamed to the panel without conversion.
package image565

import (
	"fmt"
	"image"
	"image/color"
)

// Color is a 16 bits packed color: 5 bits red, 6 bits green, 5 bits blue.
type Color uint16

// Common colors.
const (
	Black   Color = 0x0000
	White   Color = 0xFFFF
	Red     Color = 0xF800
	Green   Color = 0x07E0
	Blue    Color = 0x001F
	Magenta Color = 0xF81F
)

// FromRGB packs 8 bits per channel values into a Color, discarding the low
// bits.
func FromRGB(r, g, b uint8) Color {
	return Color(uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3)
}

// RGB returns the 8 bits per channel values. The low bits are filled by
// replicating the high bits so White maps to 0xFF.
func (c Color) RGB() (r, g, b uint8) {
	r5 := uint8(c>>11) & 0x1F
	g6 := uint8(c>>5) & 0x3F
	b5 := uint8(c) & 0x1F
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// RGBA implements color.Color. The color is always opaque.
func (c Color) RGBA() (uint32, uint32, uint32, uint32) {
	r, g, b := c.RGB()
	return uint32(r) * 0x101, uint32(g) * 0x101, uint32(b) * 0x101, 0xFFFF
}

func (c Color) String() string {
	return fmt.Sprintf("RGB565(0x%04X)", uint16(c))
}

// Model is the color model of Color.
var Model = color.ModelFunc(convert)

func convert(c color.Color) color.Color {
	if v, ok := c.(Color); ok {
		return v
	}
	r, g, b, _ := c.RGBA()
	return FromRGB(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// Image is an in-memory image of Color values.
type Image struct {
	// Pix holds the image's pixels, 2 bytes per pixel, big endian.
	Pix []byte
	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

// New returns an initialized Image instance, all black.
func New(r image.Rectangle) *Image {
	w := r.Dx()
	h := r.Dy()
	return &Image{Pix: make([]byte, 2*w*h), Stride: 2 * w, Rect: r}
}

// FromWords returns an Image of size w x h filled from host order 16 bits
// words, row major.
func FromWords(words []uint16, w, h int) (*Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image565: invalid size %dx%d", w, h)
	}
	if len(words) != w*h {
		return nil, fmt.Errorf("image565: got %d words for %dx%d, expected %d", len(words), w, h, w*h)
	}
	img := New(image.Rect(0, 0, w, h))
	for i, v := range words {
		img.Pix[2*i] = byte(v >> 8)
		img.Pix[2*i+1] = byte(v)
	}
	return img, nil
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return Model
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	return i.RGB565At(x, y)
}

// RGB565At returns the Color at x, y. Out of bounds returns Black.
func (i *Image) RGB565At(x, y int) Color {
	if !(image.Point{x, y}.In(i.Rect)) {
		return Black
	}
	o := i.PixOffset(x, y)
	return Color(uint16(i.Pix[o])<<8 | uint16(i.Pix[o+1]))
}

// Set implements draw.Image.
func (i *Image) Set(x, y int, c color.Color) {
	i.SetRGB565(x, y, convert(c).(Color))
}

// SetRGB565 sets the Color at x, y. Out of bounds is ignored.
func (i *Image) SetRGB565(x, y int, c Color) {
	if !(image.Point{x, y}.In(i.Rect)) {
		return
	}
	o := i.PixOffset(x, y)
	i.Pix[o] = byte(c >> 8)
	i.Pix[o+1] = byte(c)
}

// PixOffset returns the index of the first element of Pix that corresponds
// to the pixel at (x, y).
func (i *Image) PixOffset(x, y int) int {
	return (y-i.Rect.Min.Y)*i.Stride + (x-i.Rect.Min.X)*2
}

// SubImage returns an image representing the portion of the image i visible
// through r. The returned value shares pixels with the original image.
func (i *Image) SubImage(r image.Rectangle) image.Image {
	r = r.Intersect(i.Rect)
	if r.Empty() {
		return &Image{}
	}
	o := i.PixOffset(r.Min.X, r.Min.Y)
	return &Image{Pix: i.Pix[o:], Stride: i.Stride, Rect: r}
}

// Fill sets every pixel to c.
func (i *Image) Fill(c Color) {
	for y := i.Rect.Min.Y; y < i.Rect.Max.Y; y++ {
		o := i.PixOffset(i.Rect.Min.X, y)
		for x := 0; x < i.Rect.Dx(); x++ {
			i.Pix[o+2*x] = byte(c >> 8)
			i.Pix[o+2*x+1] = byte(c)
		}
	}
}

var _ color.Color = Color(0)
var _ image.Image = &Image{}
