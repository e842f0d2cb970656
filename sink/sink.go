// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sink implements the outputs readings are handed to: a console line
// printer, a structured log and a character LCD.
package sink

import (
	"errors"

	"github.com/GermanBionicSystems/lm75serial/lm75"
)

// Sink receives each decoded reading once.
type Sink interface {
	Emit(r lm75.Reading) error
}

// Func adapts a function to a Sink.
type Func func(r lm75.Reading) error

// Emit implements Sink.
func (f Func) Emit(r lm75.Reading) error {
	return f(r)
}

// Multi returns a Sink emitting to every sink in order. All sinks see the
// reading even if one fails; the errors are joined.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

type multi []Sink

func (m multi) Emit(r lm75.Reading) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
