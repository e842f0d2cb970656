// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sink

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"github.com/GermanBionicSystems/lm75serial/lm75"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
)

// ConsoleOpts represents the options available for the console.
type ConsoleOpts struct {
	// W defaults to a colorable stdout.
	W io.Writer
	// Color prefixes each line with a swatch going from blue when cold to red
	// when hot.
	Color   bool
	Palette *ansi256.Palette

	_ struct{}
}

// Console prints one line per reading, e.g. "[12    ] 23.50 *C".
type Console struct {
	w       io.Writer
	color   bool
	palette ansi256.Palette

	buf bytes.Buffer
}

// NewConsole returns a Console. opts may be nil.
func NewConsole(opts *ConsoleOpts) *Console {
	if opts == nil {
		opts = &ConsoleOpts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	c := &Console{w: opts.W, color: opts.Color, palette: *p}
	if c.w == nil {
		c.w = colorable.NewColorableStdout()
	}
	return c
}

// Emit implements Sink.
func (c *Console) Emit(r lm75.Reading) error {
	c.buf.Reset()
	if c.color {
		_, _ = c.buf.WriteString(c.palette.Block(Swatch(r)))
		_, _ = c.buf.WriteString("\033[0m ")
	}
	_, _ = fmt.Fprintf(&c.buf, "[%-6d] %s\n", r.Seq, r)
	_, err := c.buf.WriteTo(c.w)
	return err
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes.
func (c *Console) Halt() error {
	if !c.color {
		return nil
	}
	_, err := io.WriteString(c.w, "\033[0m")
	return err
}

func (c *Console) String() string {
	return "Console"
}

const (
	swatchCold = -10
	swatchHot  = 40
)

// Swatch returns the colour of a reading: pure blue at or below -10°C, pure
// red at or above 40°C, interpolated in between.
func Swatch(r lm75.Reading) color.NRGBA {
	c := r.Temperature().Celsius()
	t := (c - swatchCold) / (swatchHot - swatchCold)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	red := uint8(255*t + 0.5)
	return color.NRGBA{R: red, G: 0, B: 255 - red, A: 255}
}

var _ Sink = &Console{}
var _ conn.Resource = &Console{}
