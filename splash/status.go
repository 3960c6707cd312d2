// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package splash

import (
	"image"
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/GermanBionicSystems/tdeck/st7789/image565"
)

// StatusHeight is the height of the strip drawn by Status.
const StatusHeight = 12

var statusFont = &proggy.TinySZ8pt7b

// StatusRect returns the status strip at the bottom of bounds.
func StatusRect(bounds image.Rectangle) image.Rectangle {
	r := bounds
	r.Min.Y = r.Max.Y - StatusHeight
	if r.Min.Y < bounds.Min.Y {
		r.Min.Y = bounds.Min.Y
	}
	return r
}

// Status clears the status strip of img and writes one line of text in it
// with a small bitmap font. It returns the strip so only it can be sent to
// the panel.
func Status(img *image565.Image, text string, bg, fg image565.Color) image.Rectangle {
	r := StatusRect(img.Bounds())
	sub := img.SubImage(r).(*image565.Image)
	sub.Fill(bg)
	cr, cg, cb := fg.RGB()
	c := color.RGBA{R: cr, G: cg, B: cb, A: 0xFF}
	tinyfont.WriteLine(&fbDisplay{img: sub}, statusFont, 2, StatusHeight-3, text, c)
	return r
}

// fbDisplay adapts an image565.Image to tinyfont. Coordinates are relative
// to the image origin.
type fbDisplay struct {
	img *image565.Image
}

func (d *fbDisplay) Size() (x, y int16) {
	s := d.img.Bounds().Size()
	return int16(s.X), int16(s.Y)
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	p := d.img.Bounds().Min.Add(image.Pt(int(x), int(y)))
	d.img.SetRGB565(p.X, p.Y, image565.FromRGB(c.R, c.G, c.B))
}

func (d *fbDisplay) Display() error {
	return nil
}

var _ drivers.Displayer = &fbDisplay{}
