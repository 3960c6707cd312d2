// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devices is a container for the LilyGO T-Deck display and touch
// drivers.
//
// The board bring-up lives in package tdeck. The peripheral drivers it wires
// together are st7789 (LCD panel), pwmlight (backlight) and gt911 (touch).
package devices
