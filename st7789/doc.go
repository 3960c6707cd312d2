// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package st7789 controls a 16 bits color TFT LCD driven by a Sitronix
// ST7789 controller over SPI.
//
// The driver uses 4-wire signaling: a GPIO selects between command (Low) and
// data (High) bytes. The data line may be shared for reads (3-wire, half
// duplex), which is how the LilyGO T-Deck wires it.
//
// Pixels are sent in the RGB 5-6-5 format, see package image565.
//
// # Datasheet
//
// https://www.rhydolabz.com/documents/33/ST7789.pdf
package st7789
