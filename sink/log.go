// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sink

import (
	"github.com/GermanBionicSystems/lm75serial/lm75"
	"github.com/rs/zerolog"
)

// Log writes one info event per reading.
type Log struct {
	l zerolog.Logger
}

// NewLog returns a Log writing to l.
func NewLog(l zerolog.Logger) *Log {
	return &Log{l: l}
}

// Emit implements Sink.
func (s *Log) Emit(r lm75.Reading) error {
	s.l.Info().
		Uint64("seq", r.Seq).
		Int8("integer", r.Integer).
		Int("hundredths", r.Fraction.Hundredths()).
		Float64("celsius", r.Temperature().Celsius()).
		Str("text", r.String()).
		Msg("reading")
	return nil
}

var _ Sink = &Log{}
