// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package serialport opens a serial device and exposes it as a byte source.
//
// The port is always configured 8N1, which is what the relay firmware uses.
package serialport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tarm/serial"
	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultBaud matches the fixed rate of the relay firmware.
	DefaultBaud physic.Frequency = 9600 * physic.Hertz
	// DefaultPath is the usual device of a USB to UART adapter on Linux.
	DefaultPath = "/dev/ttyUSB0"
	// DefaultReadTimeout bounds a read so a caller can notice cancellation
	// while the sensor is silent.
	DefaultReadTimeout = time.Second
)

// ErrTimeout is returned when no byte arrived within Opts.ReadTimeout.
var ErrTimeout = errors.New("serialport: read timed out")

// Opts represents the options to open a port.
type Opts struct {
	// Path is the device, `/dev/tty*` or `COM*`. Defaults to DefaultPath.
	Path string
	// Baud defaults to DefaultBaud.
	Baud physic.Frequency
	// ReadTimeout defaults to DefaultReadTimeout. A negative value blocks
	// until a byte arrives.
	ReadTimeout time.Duration
}

// Port is an open serial device.
//
// It implements io.ByteReader so it can be handed to lm75.New.
type Port struct {
	name string
	rwc  io.ReadWriteCloser
	r    *bufio.Reader
}

// Open opens the serial device described by opts. A nil opts opens
// DefaultPath at DefaultBaud.
func Open(opts *Opts) (*Port, error) {
	c, err := portConfig(opts)
	if err != nil {
		return nil, err
	}
	p, err := serial.OpenPort(c)
	if err != nil {
		return nil, fmt.Errorf("serialport: open %s: %w", c.Name, err)
	}
	return New(c.Name, p), nil
}

// portConfig applies the defaults to opts.
func portConfig(opts *Opts) (*serial.Config, error) {
	o := Opts{}
	if opts != nil {
		o = *opts
	}
	if o.Path == "" {
		o.Path = DefaultPath
	}
	if o.Baud == 0 {
		o.Baud = DefaultBaud
	}
	switch {
	case o.ReadTimeout == 0:
		o.ReadTimeout = DefaultReadTimeout
	case o.ReadTimeout < 0:
		o.ReadTimeout = 0
	}
	baud, err := Baud(o.Baud)
	if err != nil {
		return nil, err
	}
	return &serial.Config{
		Name:        o.Path,
		Baud:        baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: o.ReadTimeout,
	}, nil
}

// New wraps an already opened stream. Open uses it; it is also useful to run
// the decoder over a pipe or a socket.
func New(name string, rwc io.ReadWriteCloser) *Port {
	return &Port{name: name, rwc: rwc, r: bufio.NewReader(timeoutReader{rwc})}
}

// Baud converts f to the integral symbol rate expected by the OS.
func Baud(f physic.Frequency) (int, error) {
	if f <= 0 || f%physic.Hertz != 0 {
		return 0, fmt.Errorf("serialport: invalid baud rate %s", f)
	}
	return int(f / physic.Hertz), nil
}

// ReadByte implements io.ByteReader.
func (p *Port) ReadByte() (byte, error) {
	return p.r.ReadByte()
}

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	return p.rwc.Write(b)
}

type flusher interface {
	Flush()
}

type flusherErr interface {
	Flush() error
}

// Flush drops the buffered bytes and, when the device supports it, the bytes
// pending in the OS buffers. Call it before decoding so the first frame is
// aligned.
func (p *Port) Flush() error {
	p.r.Reset(timeoutReader{p.rwc})
	if f, ok := p.rwc.(flusher); ok {
		f.Flush()
	} else if f, ok := p.rwc.(flusherErr); ok {
		return f.Flush()
	}
	return nil
}

// Close implements io.Closer.
func (p *Port) Close() error {
	return p.rwc.Close()
}

func (p *Port) String() string {
	return p.name
}

// timeoutReader turns the (0, nil) read returned by the serial driver on
// timeout into ErrTimeout.
type timeoutReader struct {
	r io.Reader
}

func (t timeoutReader) Read(b []byte) (int, error) {
	n, err := t.r.Read(b)
	if n == 0 && err == nil && len(b) != 0 {
		return 0, ErrTimeout
	}
	return n, err
}

var _ io.ByteReader = &Port{}
var _ io.ReadWriteCloser = &Port{}
