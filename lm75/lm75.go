// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lm75

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
)

// Mode is the frame layout sent by the relay firmware.
type Mode byte

// State is the position of the decoder within a frame.
type State byte

const (
	// TwoByte frames carry the integer byte followed by the fraction byte.
	TwoByte Mode = 0
	// OneByte frames carry only the integer byte.
	OneByte Mode = 1

	AwaitingIntegerByte  State = 0
	AwaitingFractionByte State = 1

	_QUARTER_DEGREE physic.Temperature = 250 * physic.MilliKelvin

	// The minimum temperature the LM75A reports.
	MinimumTemperature physic.Temperature = physic.ZeroCelsius - 55*physic.Kelvin
	// The maximum temperature the LM75A reports.
	MaximumTemperature physic.Temperature = physic.ZeroCelsius + 125*physic.Kelvin
)

func (m Mode) String() string {
	switch m {
	case TwoByte:
		return "two-byte"
	case OneByte:
		return "one-byte"
	default:
		return fmt.Sprintf("Mode(%d)", byte(m))
	}
}

func (s State) String() string {
	switch s {
	case AwaitingIntegerByte:
		return "reading integer byte"
	case AwaitingFractionByte:
		return "reading fraction byte"
	default:
		return fmt.Sprintf("State(%d)", byte(s))
	}
}

// Opts represents the configurable options of the decoder.
type Opts struct {
	Mode Mode
	// Validate, if set, is called with each complete frame before it is
	// turned into a Reading. lsb is 0 in OneByte mode. A non-nil error
	// rejects the frame with ErrMalformedFrame.
	Validate func(msb, lsb byte) error
	// Seq is the sequence number of the first reading. Set it to the Next()
	// of a previous decoder to keep numbering across a reconnection.
	Seq uint64
}

// Dev decodes frames from a byte source.
//
// A Dev owns its sequence counter and must only be used from one goroutine.
// It references the source but doesn't own it; closing the source is up to
// the caller.
type Dev struct {
	src  io.ByteReader
	opts Opts
	seq  uint64
}

// New returns a decoder reading frames from src. If opts is nil, TwoByte
// frames without validation are assumed.
func New(src io.ByteReader, opts *Opts) (*Dev, error) {
	if src == nil {
		return nil, errors.New("lm75: nil source")
	}
	d := &Dev{src: src}
	if opts != nil {
		d.opts = *opts
	}
	if d.opts.Mode != TwoByte && d.opts.Mode != OneByte {
		return nil, fmt.Errorf("lm75: invalid mode %s", d.opts.Mode)
	}
	d.seq = d.opts.Seq
	return d, nil
}

// Decode reads exactly one frame and returns the decoded reading.
//
// A failed read returns a *StreamError and drops the partial frame. The
// sequence counter only advances on success.
func (d *Dev) Decode() (Reading, error) {
	msb, err := d.src.ReadByte()
	if err != nil {
		return Reading{}, &StreamError{State: AwaitingIntegerByte, Err: err}
	}
	var lsb byte
	if d.opts.Mode == TwoByte {
		if lsb, err = d.src.ReadByte(); err != nil {
			return Reading{}, &StreamError{State: AwaitingFractionByte, Err: err}
		}
	}
	if d.opts.Validate != nil {
		if err = d.opts.Validate(msb, lsb); err != nil {
			return Reading{}, fmt.Errorf("%w: %w", ErrMalformedFrame, err)
		}
	}
	r := Reading{Integer: int8(msb), Seq: d.seq}
	if d.opts.Mode == TwoByte {
		r.Fraction = fractionFromBits(lsb)
	}
	d.seq++
	return r, nil
}

// Readings returns the stream of readings.
//
// The sequence yields each decoded frame and stops after yielding the first
// error. Stopping the range loop always happens between frames. Sequence
// numbers continue across successive calls.
func (d *Dev) Readings() iter.Seq2[Reading, error] {
	return func(yield func(Reading, error) bool) {
		for {
			r, err := d.Decode()
			if !yield(r, err) || err != nil {
				return
			}
		}
	}
}

// Next returns the sequence number the next successful Decode will use.
func (d *Dev) Next() uint64 {
	return d.seq
}

// Mode returns the frame layout the decoder expects.
func (d *Dev) Mode() Mode {
	return d.opts.Mode
}

// Sense decodes one frame and writes the temperature to env.
func (d *Dev) Sense(env *physic.Env) error {
	r, err := d.Decode()
	if err != nil {
		return err
	}
	env.Temperature = r.Temperature()
	return nil
}

// Precision returns the resolution of the relayed frames: 0.25°C in TwoByte
// mode and 1°C in OneByte mode.
func (d *Dev) Precision(env *physic.Env) {
	env.Temperature = _QUARTER_DEGREE
	if d.opts.Mode == OneByte {
		env.Temperature = physic.Kelvin
	}
	env.Pressure = 0
	env.Humidity = 0
}

// Halt implements conn.Resource. It is a no-op since the source is owned by
// the caller.
func (d *Dev) Halt() error {
	return nil
}

func (d *Dev) String() string {
	if s, ok := d.src.(fmt.Stringer); ok {
		return fmt.Sprintf("lm75: %s", s)
	}
	return "lm75"
}

// InRange returns a validator for Opts.Validate rejecting frames whose integer
// byte falls outside [lo, hi] degrees Celsius.
func InRange(lo, hi int8) func(msb, lsb byte) error {
	return func(msb, _ byte) error {
		if v := int8(msb); v < lo || v > hi {
			return fmt.Errorf("integer byte %d outside [%d, %d]", v, lo, hi)
		}
		return nil
	}
}

// SensorRange is a validator for the documented range of the LM75A.
var SensorRange = InRange(-55, 125)

var _ conn.Resource = &Dev{}
