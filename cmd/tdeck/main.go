// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// tdeck brings up the T-Deck display and touch, shows the splash screen and
// prints touches.
//
// Use -term to preview the splash screen in the terminal instead. Use -http to
// also stream the screen content to a browser.
package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/tdeck/mirror"
	"github.com/GermanBionicSystems/tdeck/splash"
	"github.com/GermanBionicSystems/tdeck/st7789/image565"
	"github.com/GermanBionicSystems/tdeck/tdeck"
	"github.com/GermanBionicSystems/tdeck/termscreen"
)

func mainImpl() error {
	cfg := tdeck.DefaultConfig
	spiName := flag.String("spi", cfg.Bus.Host, "SPI port of the panel; the default is the board's name for it and usually needs overriding with a spireg name, e.g. \"SPI0.0\"")
	i2cName := flag.String("i2c", cfg.Touch.Port, "I²C bus of the touch controller; the default is the board's name for it and usually needs overriding with an i2creg name, e.g. \"1\"")
	term := flag.Bool("term", false, "preview in the terminal instead of the panel")
	title := flag.String("title", splash.DefaultOpts.Title, "splash screen title")
	brightness := flag.Int("brightness", 200, "backlight intensity, 0 to 255")
	touch := flag.Bool("touch", false, "print touches until interrupted")
	addr := flag.String("http", "", "stream the screen over HTTP on this address, e.g. :8010")
	verbose := flag.Bool("v", false, "verbose mode")
	flag.Parse()
	if !*verbose {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(log.Lmicroseconds)
	if flag.NArg() != 0 {
		return fmt.Errorf("unexpected argument: %s", flag.Args())
	}
	cfg.Bus.Host = *spiName
	cfg.Touch.Port = *i2cName

	opts := splash.DefaultOpts
	opts.Title = *title

	w, h := cfg.Panel.Width, cfg.Panel.Height
	if cfg.Panel.Rotation&1 != 0 {
		w, h = h, w
	}
	var m *mirror.Dev
	if *addr != "" {
		m = mirror.New(&mirror.Opts{W: w, H: h})
		defer m.Halt()
		go func() {
			log.Printf("Serving %s on %s", m, *addr)
			if err := http.ListenAndServe(*addr, m); err != nil {
				log.Printf("http: %v", err)
			}
		}()
	}

	if *term {
		dev := termscreen.New(&termscreen.Opts{W: w, H: h, Step: 4})
		if _, err := show(&opts, dev, m); err != nil {
			return err
		}
		if err := dev.Halt(); err != nil {
			return err
		}
		if m != nil {
			waitInterrupt()
		}
		return nil
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	p, err := spireg.Open(cfg.Bus.Host)
	if err != nil {
		return err
	}
	defer p.Close()
	b, err := i2creg.Open(cfg.Touch.Port)
	if err != nil {
		return err
	}
	defer b.Close()

	dev, err := tdeck.New(p, b, tdeck.ByNumber, &cfg)
	if err != nil {
		return err
	}
	log.Printf("%s", dev)
	img, err := show(&opts, dev, m)
	if err != nil {
		return err
	}
	if err := dev.Backlight(display.Intensity(*brightness)); err != nil {
		return err
	}
	if *touch {
		return printTouches(dev, img, &opts, m)
	}
	if m != nil {
		waitInterrupt()
	}
	return nil
}

// show renders the splash screen for dev and draws it on dev and on the
// mirror, if any.
func show(opts *splash.Opts, dev display.Drawer, m *mirror.Dev) (*image565.Image, error) {
	img, err := splash.Render(dev.Bounds(), opts)
	if err != nil {
		return nil, err
	}
	if err := draw(img, img.Bounds(), dev, m); err != nil {
		return nil, err
	}
	return img, nil
}

// draw sends the r part of img to dev and to the mirror, if any.
func draw(img *image565.Image, r image.Rectangle, dev display.Drawer, m *mirror.Dev) error {
	start := time.Now()
	if err := dev.Draw(r, img, r.Min); err != nil {
		return err
	}
	log.Printf("Drew %s in %s", r, time.Since(start))
	if m != nil {
		return m.Draw(r, img, r.Min)
	}
	return nil
}

func waitInterrupt() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
}

// printTouches prints touches and shows the last one in the status strip of
// img until interrupted.
func printTouches(dev *tdeck.Dev, img *image565.Image, opts *splash.Opts, m *mirror.Dev) error {
	defer dev.Halt()
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	for {
		select {
		case <-c:
			return nil
		default:
		}
		if !dev.WaitForTouch(100 * time.Millisecond) {
			continue
		}
		pts, err := dev.Touches()
		if err != nil {
			return err
		}
		for _, p := range pts {
			fmt.Printf("touch %d at %s size %d\n", p.ID, p.Point, p.Size)
		}
		if len(pts) != 0 {
			p := pts[len(pts)-1]
			r := splash.Status(img, fmt.Sprintf("touch %d at %s", p.ID, p.Point), opts.Background, opts.Foreground)
			if err := draw(img, r, dev, m); err != nil {
				return err
			}
		}
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "tdeck: %s.\n", err)
		os.Exit(1)
	}
}
