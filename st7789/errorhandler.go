// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package st7789

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// controller is the minimal set of operations the command sequences need.
type controller interface {
	sendCommand(byte)
	sendData([]byte)
	delay(time.Duration)
}

// errorHandler is a wrapper for error management. Once a bus or pin
// operation failed, all following operations are skipped.
type errorHandler struct {
	d   *Dev
	err error
}

func (eh *errorHandler) rstOut(l gpio.Level) {
	if eh.err != nil || eh.d.rst == nil {
		return
	}
	eh.err = eh.d.rst.Out(l)
}

func (eh *errorHandler) dcOut(l gpio.Level) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.dc.Out(l)
}

func (eh *errorHandler) csOut(l gpio.Level) {
	if eh.err != nil || eh.d.cs == nil {
		return
	}
	eh.err = eh.d.cs.Out(l)
}

func (eh *errorHandler) cTx(w []byte, r []byte) {
	if eh.err != nil {
		return
	}
	eh.err = eh.d.c.Tx(w, r)
}

// cWrite sends w, split in chunks when the connection has a maximum
// transaction size.
func (eh *errorHandler) cWrite(w []byte) {
	limit := eh.d.maxTxSize
	if limit <= 0 {
		eh.cTx(w, nil)
		return
	}
	for len(w) > 0 && eh.err == nil {
		n := len(w)
		if n > limit {
			n = limit
		}
		eh.cTx(w[:n], nil)
		w = w[n:]
	}
}

func (eh *errorHandler) sendCommand(cmd byte) {
	eh.dcOut(gpio.Low)
	eh.csOut(gpio.Low)
	eh.cTx([]byte{cmd}, nil)
	eh.csOut(gpio.High)
}

func (eh *errorHandler) sendData(data []byte) {
	if len(data) == 0 {
		return
	}
	eh.dcOut(gpio.High)
	eh.csOut(gpio.Low)
	eh.cWrite(data)
	eh.csOut(gpio.High)
}

func (eh *errorHandler) delay(d time.Duration) {
	if eh.err != nil {
		return
	}
	sleep(d)
}
