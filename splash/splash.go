// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package splash composes the boot screen: a title line above the bomb
// sprite scaled to fill the rest of the screen.
package splash

import (
	"errors"
	"image"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/GermanBionicSystems/tdeck/sprite"
	"github.com/GermanBionicSystems/tdeck/st7789/image565"
)

// Opts defines the splash screen appearance.
type Opts struct {
	Title string
	// FontSize is in points, at 72 DPI.
	FontSize   float64
	Background image565.Color
	Foreground image565.Color
	// Sprite is drawn below the title. nil means the bomb.
	Sprite *sprite.Sprite
}

// DefaultOpts is the recommended default options.
var DefaultOpts = Opts{
	Title:      "T-Deck",
	FontSize:   24,
	Background: image565.FromRGB(0x10, 0x40, 0x20),
	Foreground: image565.White,
}

var (
	fontOnce sync.Once
	goFont   *truetype.Font
	fontErr  error
)

func face(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		goFont, fontErr = truetype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	return truetype.NewFace(goFont, &truetype.Options{Size: size}), nil
}

// Render returns the splash screen for a display of the given bounds.
func Render(bounds image.Rectangle, opts *Opts) (*image565.Image, error) {
	if bounds.Empty() {
		return nil, errors.New("splash: empty bounds")
	}
	s := opts.Sprite
	if s == nil {
		b := sprite.Bomb()
		s = &b
	}
	w, h := bounds.Dx(), bounds.Dy()
	dc := gg.NewContext(w, h)
	dc.SetColor(opts.Background)
	dc.Clear()

	top := 0
	if opts.Title != "" {
		f, err := face(opts.FontSize)
		if err != nil {
			return nil, err
		}
		dc.SetFontFace(f)
		dc.SetColor(opts.Foreground)
		lh := dc.FontHeight()
		dc.DrawStringAnchored(opts.Title, float64(w)/2, lh/2+2, 0.5, 0.5)
		top = int(lh) + 4
	}

	out := image565.New(bounds)
	xdraw.Draw(out, bounds, dc.Image(), image.Point{}, xdraw.Src)
	area := image.Rect(bounds.Min.X, bounds.Min.Y+top, bounds.Max.X, bounds.Max.Y)
	if !area.Empty() {
		s.Draw(out, s.Fit(area))
	}
	return out, nil
}
