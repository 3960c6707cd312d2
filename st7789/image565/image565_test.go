// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package image565

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFromRGB(t *testing.T) {
	for _, tc := range []struct {
		r, g, b uint8
		want    Color
	}{
		{0, 0, 0, Black},
		{0xFF, 0xFF, 0xFF, White},
		{0xFF, 0, 0, Red},
		{0, 0xFF, 0, Green},
		{0, 0, 0xFF, Blue},
		{0xFF, 0, 0xFF, Magenta},
		{0x80, 0x80, 0x80, 0x8410},
	} {
		if got := FromRGB(tc.r, tc.g, tc.b); got != tc.want {
			t.Errorf("FromRGB(%#x, %#x, %#x) = %s, want %s", tc.r, tc.g, tc.b, got, tc.want)
		}
	}
}

func TestColorRGBA(t *testing.T) {
	r, g, b, a := White.RGBA()
	if r != 0xFFFF || g != 0xFFFF || b != 0xFFFF || a != 0xFFFF {
		t.Fatalf("White.RGBA() = %#x %#x %#x %#x", r, g, b, a)
	}
	r, g, b, a = Black.RGBA()
	if r != 0 || g != 0 || b != 0 || a != 0xFFFF {
		t.Fatalf("Black.RGBA() = %#x %#x %#x %#x", r, g, b, a)
	}
	// Every packed value survives a trip through 8 bits per channel.
	for v := 0; v < 0x10000; v += 7 {
		c := Color(v)
		if got := Model.Convert(color.NRGBA64Model.Convert(c)); got != c {
			t.Fatalf("Model.Convert(%s) = %s", c, got)
		}
	}
}

func TestImage(t *testing.T) {
	img := New(image.Rect(0, 0, 4, 3))
	if diff := cmp.Diff(len(img.Pix), 24); diff != "" {
		t.Fatalf("len(Pix) difference (-got +want):\n%s", diff)
	}
	img.SetRGB565(1, 2, 0xABCD)
	img.Set(3, 0, color.RGBA{R: 0xFF, A: 0xFF})
	img.SetRGB565(10, 10, White)

	if got := img.RGB565At(1, 2); got != 0xABCD {
		t.Errorf("RGB565At(1, 2) = %s", got)
	}
	if diff := cmp.Diff(img.Pix[2*(2*4+1):2*(2*4+1)+2], []byte{0xAB, 0xCD}); diff != "" {
		t.Errorf("big endian storage difference (-got +want):\n%s", diff)
	}
	if got := img.At(3, 0); got != Red {
		t.Errorf("At(3, 0) = %v", got)
	}
	if got := img.RGB565At(-1, 0); got != Black {
		t.Errorf("RGB565At(-1, 0) = %s", got)
	}
}

func TestSubImage(t *testing.T) {
	img := New(image.Rect(0, 0, 8, 8))
	sub := img.SubImage(image.Rect(2, 2, 4, 5)).(*Image)
	sub.Fill(Blue)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			want := Black
			if x >= 2 && x < 4 && y >= 2 && y < 5 {
				want = Blue
			}
			if got := img.RGB565At(x, y); got != want {
				t.Fatalf("RGB565At(%d, %d) = %s, want %s", x, y, got, want)
			}
		}
	}
	if empty := img.SubImage(image.Rect(20, 20, 30, 30)); !empty.Bounds().Empty() {
		t.Fatalf("SubImage() outside = %v", empty.Bounds())
	}
}

func TestDraw(t *testing.T) {
	img := New(image.Rect(0, 0, 2, 2))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
	for _, v := range img.Pix {
		if v != 0xFF {
			t.Fatalf("Pix = %x", img.Pix)
		}
	}
}

func TestFromWords(t *testing.T) {
	img, err := FromWords([]uint16{0x0102, 0x0304, 0x0506, 0x0708}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(img.Pix, []byte{1, 2, 3, 4, 5, 6, 7, 8}); diff != "" {
		t.Fatalf("Pix difference (-got +want):\n%s", diff)
	}
	if _, err := FromWords([]uint16{1, 2, 3}, 2, 2); err == nil {
		t.Fatal("expected length error")
	}
	if _, err := FromWords(nil, 0, 2); err == nil {
		t.Fatal("expected size error")
	}
}
