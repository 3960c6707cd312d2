// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tdeck brings up the display and touch subsystem of the LilyGO
// T-Deck and T-Deck Plus.
//
// The board gates the power of its peripherals behind GPIO10. The ST7789
// panel shares its SPI bus with the SD card and the LoRa radio, whose chip
// selects must be held inactive. The GT911 touch controller has no reset
// line; it is woken up by pulsing its INT line, which also selects its I²C
// address.
//
// New runs the whole sequence once and returns a Dev that draws on the
// panel and reads touches in screen coordinates.
//
// # Schematic
//
// https://github.com/Xinyuan-LilyGO/T-Deck/tree/master/hardware
package tdeck
