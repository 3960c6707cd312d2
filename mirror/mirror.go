// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mirror keeps a copy of what is drawn on a panel and streams it to
// HTTP clients.
//
// Each client gets the current frame immediately and a new one after every
// Draw. Frames are sent as a "multipart/x-mixed-replace" stream (MJPEG), which
// browsers render as a live image. PNG is the default since it keeps the
// RGB565 colors exact; "?format=jpeg" selects JPEG.
package mirror

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"net/http"
	"sync"

	"periph.io/x/conn/v3/display"

	"github.com/GermanBionicSystems/tdeck/st7789/image565"
)

// Opts for New.
type Opts struct {
	// W and H are the framebuffer size in pixels.
	W, H int
	// Format is used when the client doesn't ask for one.
	Format Format
}

// Dev is a display.Drawer that is also an http.Handler.
type Dev struct {
	format Format

	mu      sync.Mutex
	buf     *image565.Image
	clients map[*client]struct{}
	frames  map[Format][]byte
}

// New returns a black framebuffer of the requested size.
func New(opts *Opts) *Dev {
	return &Dev{
		format:  opts.Format,
		buf:     image565.New(image.Rect(0, 0, opts.W, opts.H)),
		clients: map[*client]struct{}{},
		frames:  map[Format][]byte{},
	}
}

func (d *Dev) String() string {
	r := d.buf.Bounds()
	return fmt.Sprintf("mirror.Dev{%dx%d, %s}", r.Dx(), r.Dy(), d.format)
}

// Halt implements conn.Resource.
//
// It ends all running client streams.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for c := range d.clients {
		select {
		case c.done <- struct{}{}:
		default:
		}
	}
	return nil
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image565.Model
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.buf.Bounds()
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	draw.Draw(d.buf, r, src, sp, draw.Src)
	for f := range d.frames {
		delete(d.frames, f)
	}
	for c := range d.clients {
		select {
		case c.refresh <- struct{}{}:
		default:
		}
	}
	return nil
}

// Snapshot returns a copy of the framebuffer.
func (d *Dev) Snapshot() *image565.Image {
	d.mu.Lock()
	defer d.mu.Unlock()
	img := image565.New(d.buf.Bounds())
	copy(img.Pix, d.buf.Pix)
	return img
}

// frame returns the encoded framebuffer, encoding it at most once per Draw.
func (d *Dev) frame(f Format) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b, ok := d.frames[f]; ok {
		return b, nil
	}
	b, err := f.encode(d.buf)
	if err != nil {
		return nil, err
	}
	d.frames[f] = b
	return b, nil
}

var _ display.Drawer = &Dev{}
var _ http.Handler = &Dev{}
