// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sprite holds colorkeyed RGB565 bitmaps and the bomb sprite asset.
//
// A sprite is a fixed size buffer of image565 pixels. One reserved value,
// the key, marks transparent pixels: renderers must skip them instead of
// drawing them.
package sprite

import (
	"fmt"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"

	"github.com/GermanBionicSystems/tdeck/st7789/image565"
)

// Sprite is a colorkeyed bitmap. It must not be modified.
type Sprite struct {
	Width  int
	Height int
	// Key is the transparent color.
	Key image565.Color
	// Pix holds Width*Height pixels, row major.
	Pix []uint16
}

// Validate checks that the buffer matches the declared size.
func (s *Sprite) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("sprite: invalid size %dx%d", s.Width, s.Height)
	}
	if len(s.Pix) != s.Width*s.Height {
		return fmt.Errorf("sprite: got %d pixels for %dx%d", len(s.Pix), s.Width, s.Height)
	}
	return nil
}

// Bounds returns the sprite rectangle, at the origin.
func (s *Sprite) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// At returns the pixel at x, y.
func (s *Sprite) At(x, y int) image565.Color {
	return image565.Color(s.Pix[y*s.Width+x])
}

// Transparent reports whether the pixel at x, y is the key.
func (s *Sprite) Transparent(x, y int) bool {
	return s.At(x, y) == s.Key
}

// Image returns a copy of the sprite as an image, key pixels included.
func (s *Sprite) Image() *image565.Image {
	img, err := image565.FromWords(s.Pix, s.Width, s.Height)
	if err != nil {
		panic(err)
	}
	return img
}

// Mask returns an alpha mask: transparent for key pixels, opaque elsewhere.
func (s *Sprite) Mask() *image.Alpha {
	m := image.NewAlpha(s.Bounds())
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			if !s.Transparent(x, y) {
				m.SetAlpha(x, y, color.Alpha{A: 0xFF})
			}
		}
	}
	return m
}

// Draw scales the sprite with nearest neighbor sampling so it covers r in
// dst. Key pixels leave dst untouched.
func (s *Sprite) Draw(dst xdraw.Image, r image.Rectangle) {
	xdraw.NearestNeighbor.Scale(dst, r, s.Image(), s.Bounds(), xdraw.Over, &xdraw.Options{SrcMask: s.Mask()})
}

// Fit returns the largest rectangle with the sprite aspect ratio that fits
// in bounds, centered.
func (s *Sprite) Fit(bounds image.Rectangle) image.Rectangle {
	w, h := bounds.Dx(), bounds.Dy()
	if w*s.Height > h*s.Width {
		w = h * s.Width / s.Height
	} else {
		h = w * s.Height / s.Width
	}
	origin := bounds.Min.Add(image.Pt((bounds.Dx()-w)/2, (bounds.Dy()-h)/2))
	return image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}
}

// decode converts pixel art into pixels through a palette.
func decode(art []string, palette map[byte]image565.Color) ([]uint16, error) {
	var pix []uint16
	for y, row := range art {
		for x := 0; x < len(row); x++ {
			c, ok := palette[row[x]]
			if !ok {
				return nil, fmt.Errorf("sprite: unknown color %q at %d,%d", row[x], x, y)
			}
			pix = append(pix, uint16(c))
		}
	}
	return pix, nil
}
