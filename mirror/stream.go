// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mirror

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
)

type client struct {
	refresh chan struct{}
	done    chan struct{}
}

// ServeHTTP implements http.Handler.
//
// Only GET is accepted. The stream ends on Halt or when the client goes away.
func (d *Dev) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}
	f := d.format
	if s := r.URL.Query().Get("format"); s != "" {
		var err error
		if f, err = ParseFormat(s); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	pw := partWriter{w: w, boundary: boundary()}
	w.Header().Set("Content-Type", mime.FormatMediaType("multipart/x-mixed-replace", map[string]string{"boundary": pw.boundary}))

	c := &client{refresh: make(chan struct{}, 1), done: make(chan struct{}, 1)}
	d.mu.Lock()
	d.clients[c] = struct{}{}
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.clients, c)
		d.mu.Unlock()
	}()

	for {
		b, err := d.frame(f)
		if err != nil {
			return
		}
		// There is no way to report a write error inside an image stream.
		if err := pw.write(f.mimeType(), b); err != nil {
			return
		}
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		select {
		case <-c.refresh:
		case <-c.done:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// boundary returns a random multipart boundary, see RFC 2046 section 5.1.1.
func boundary() string {
	var b [30]byte
	if _, err := io.ReadFull(rand.Reader, b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// partWriter writes a never ending multipart body. mime/multipart.Writer
// can't be used since each part must end with its boundary line to be shown.
type partWriter struct {
	w        io.Writer
	boundary string
	started  bool
}

func (p *partWriter) write(contentType string, body []byte) error {
	if !p.started {
		if _, err := fmt.Fprintf(p.w, "--%s\r\n", p.boundary); err != nil {
			return err
		}
		p.started = true
	}
	if _, err := fmt.Fprintf(p.w, "Content-Type: %s\r\nContent-Length: %d\r\n\r\n", contentType, len(body)); err != nil {
		return err
	}
	if _, err := p.w.Write(body); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.w, "\r\n--%s\r\n", p.boundary)
	return err
}
