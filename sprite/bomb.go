// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sprite

import (
	"fmt"

	"github.com/GermanBionicSystems/tdeck/st7789/image565"
)

// Bomb sprite dimensions.
const (
	BombWidth  = 32
	BombHeight = 24
)

// TransparencyKey is the magenta colorkey. No opaque pixel of the bundled
// art uses it.
const TransparencyKey = image565.Magenta

// bombPix is the decoded art, row major.
var bombPix [BombWidth * BombHeight]uint16

var bombPalette = map[byte]image565.Color{
	'.': TransparencyKey,
	'k': image565.Black,
	'K': image565.FromRGB(0x30, 0x30, 0x38),
	'W': image565.FromRGB(0xC0, 0xC0, 0xD0),
	'G': image565.FromRGB(0x80, 0x80, 0x80),
	'B': image565.FromRGB(0x8B, 0x5A, 0x2B),
	'Y': image565.FromRGB(0xFF, 0xE0, 0x00),
	'O': image565.FromRGB(0xFF, 0x80, 0x00),
	'R': image565.FromRGB(0xFF, 0x20, 0x00),
}

var bombArt = []string{
	"........................YYOY....",
	".........................OR.Y...",
	".......................BBOOY....",
	".....................BB.........",
	"....................B...........",
	"................kkkkkk..........",
	".............kk.kGGGGk..........",
	"..........kkkKKkkGGGGk..........",
	"........kkKKKKKKKKkkkk..........",
	".......kkKKWWKKKKKKkk...........",
	".......kKWWKKKKKKKKKk...........",
	"......kKWWKKKKKKKKKKKk..........",
	"......kKWKKKKKKKKKKKKk..........",
	"......kKKKKKKKKKKKKKKk..........",
	".....kKKKKKKKKKKKKKKKKk.........",
	".....kKKKKKKKKKKKKKKKKk.........",
	"......kKKKKKKKKKKKKKKk..........",
	"......kKKKKKKKKKKKKKKk..........",
	"......kKKKKKKKKKKKKKKk..........",
	".......kKKKKKKKKKKKKk...........",
	".......kkKKKKKKKKKKkk...........",
	"........kkKKKKKKKKkk............",
	"..........kkkKKkkk..............",
	".............kk.................",
}

// Bomb returns the bomb sprite. The app scales it to fill the screen.
//
// Each call returns its own copy of the pixels, modifying it doesn't change
// the asset.
func Bomb() Sprite {
	pix := make([]uint16, len(bombPix))
	copy(pix, bombPix[:])
	return Sprite{Width: BombWidth, Height: BombHeight, Key: TransparencyKey, Pix: pix}
}

func init() {
	pix, err := decode(bombArt, bombPalette)
	if err != nil {
		panic(err)
	}
	if len(pix) != len(bombPix) {
		panic(fmt.Sprintf("sprite: bomb art has %d pixels, want %d", len(pix), len(bombPix)))
	}
	copy(bombPix[:], pix)
}
