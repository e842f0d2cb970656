// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sink

import (
	"fmt"

	"github.com/GermanBionicSystems/lm75serial/lm75"
	"periph.io/x/conn/v3/display"
)

// Display shows the latest reading on a character display such as a
// usblcd.Dev. On displays with two rows or more the sequence number
// goes on the second row.
type Display struct {
	d display.TextDisplay
}

// NewDisplay returns a Display writing to d.
func NewDisplay(d display.TextDisplay) *Display {
	return &Display{d: d}
}

// Emit implements Sink.
func (s *Display) Emit(r lm75.Reading) error {
	if err := s.d.Clear(); err != nil {
		return wrap(err)
	}
	if _, err := s.d.WriteString(r.String()); err != nil {
		return wrap(err)
	}
	if s.d.Rows() < 2 {
		return nil
	}
	if err := s.d.MoveTo(s.d.MinRow()+1, s.d.MinCol()); err != nil {
		return wrap(err)
	}
	if _, err := s.d.WriteString(fmt.Sprintf("#%d", r.Seq)); err != nil {
		return wrap(err)
	}
	return nil
}

func wrap(err error) error {
	return fmt.Errorf("sink: %w", err)
}

var _ Sink = &Display{}
