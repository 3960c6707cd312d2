// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gt911 reads touch points from a Goodix GT911 capacitive touch
// controller over I²C.
//
// The GT911 answers on 0x5D or 0x14 depending on the level of its INT line
// while it comes out of reset. Boards without a reset line pulse INT high to
// wake the controller, which selects 0x5D.
//
// Up to 5 simultaneous points are reported.
//
// # Datasheet
//
// https://github.com/hadex/gt911-datasheet/blob/main/GT911%20Programming%20Guide_20140804_Rev00.pdf
package gt911
