// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package usblcd drives a character LCD behind an Adafruit USB + Serial
// backpack, or any backpack speaking the Matrix Orbital command set, over a
// serial port.
//
// Commands are two bytes, 0xFE then the command, followed by their
// arguments. Anything else written is shown as text at the cursor.
//
// # Datasheet
//
// https://learn.adafruit.com/usb-plus-serial-backpack/command-reference
package usblcd

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

const cmdPrefix byte = 0xfe

// Command bytes. Only the subset needed for a TextDisplay is implemented.
const (
	cmdDisplayOn     byte = 0x42
	cmdDisplayOff    byte = 0x46
	cmdMoveTo        byte = 0x47
	cmdHome          byte = 0x48
	cmdUnderlineOn   byte = 0x4a
	cmdUnderlineOff  byte = 0x4b
	cmdBack          byte = 0x4c
	cmdForward       byte = 0x4d
	cmdContrast      byte = 0x50
	cmdAutoScrollOn  byte = 0x51
	cmdAutoScrollOff byte = 0x52
	cmdBlockOn       byte = 0x53
	cmdBlockOff      byte = 0x54
	cmdClear         byte = 0x58
	cmdBrightness    byte = 0x99
	cmdSize          byte = 0xd1
)

// Dev is a character LCD on a serial backpack.
type Dev struct {
	mu   sync.Mutex
	w    io.Writer
	rows int
	cols int
}

// New returns a display of rows lines by cols characters writing to w. It
// tells the backpack the geometry and turns the display on.
//
// If w implements io.Closer, Halt closes it.
func New(w io.Writer, rows, cols int) (*Dev, error) {
	if rows < 1 || rows > 4 || cols < 1 || cols > 40 {
		return nil, fmt.Errorf("usblcd: unsupported size %dx%d", cols, rows)
	}
	d := &Dev{w: w, rows: rows, cols: cols}
	if err := d.command(cmdSize, byte(cols), byte(rows)); err != nil {
		return nil, err
	}
	if err := d.Display(true); err != nil {
		return nil, err
	}
	return d, nil
}

// AutoScroll makes text past the last line scroll the display up.
func (d *Dev) AutoScroll(enabled bool) error {
	if enabled {
		return d.command(cmdAutoScrollOn)
	}
	return d.command(cmdAutoScrollOff)
}

// Clear clears the display and moves the cursor home.
func (d *Dev) Clear() error {
	if err := d.command(cmdClear); err != nil {
		return err
	}
	return d.Home()
}

func (d *Dev) Cols() int {
	return d.cols
}

// Cursor sets the cursor style. CursorBlink and CursorBlock both select the
// blinking block, which is the only block cursor the backpack has.
func (d *Dev) Cursor(modes ...display.CursorMode) error {
	for _, mode := range modes {
		var err error
		switch mode {
		case display.CursorOff:
			if err = d.command(cmdBlockOff); err == nil {
				err = d.command(cmdUnderlineOff)
			}
		case display.CursorUnderline:
			err = d.command(cmdUnderlineOn)
		case display.CursorBlock, display.CursorBlink:
			err = d.command(cmdBlockOn)
		default:
			err = fmt.Errorf("usblcd: invalid cursor mode %d", mode)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Display turns the display on or off. The contents are kept.
func (d *Dev) Display(on bool) error {
	if on {
		// The argument is a timeout in minutes the backpack ignores.
		return d.command(cmdDisplayOn, 0)
	}
	return d.command(cmdDisplayOff)
}

// Halt turns the display off and closes the writer if it is an io.Closer.
func (d *Dev) Halt() error {
	err := d.Display(false)
	if c, ok := d.w.(io.Closer); ok {
		err = errors.Join(err, c.Close())
	}
	return err
}

func (d *Dev) Home() error {
	return d.command(cmdHome)
}

func (d *Dev) MinCol() int {
	return 1
}

func (d *Dev) MinRow() int {
	return 1
}

// Move moves the cursor one character. The backpack can't move between lines,
// use MoveTo.
func (d *Dev) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Forward:
		return d.command(cmdForward)
	case display.Backward:
		return d.command(cmdBack)
	case display.Up, display.Down:
		return display.ErrNotImplemented
	default:
		return fmt.Errorf("usblcd: invalid direction %d", dir)
	}
}

// MoveTo moves the cursor to row, col, both starting at 1.
func (d *Dev) MoveTo(row, col int) error {
	if row < d.MinRow() || row > d.rows || col < d.MinCol() || col > d.cols {
		return fmt.Errorf("usblcd: MoveTo(%d, %d) out of range", row, col)
	}
	return d.command(cmdMoveTo, byte(col), byte(row))
}

func (d *Dev) Rows() int {
	return d.rows
}

// Backlight implements display.DisplayBacklight.
func (d *Dev) Backlight(intensity display.Intensity) error {
	return d.command(cmdBrightness, byte(intensity))
}

// Contrast implements display.DisplayContrast.
func (d *Dev) Contrast(contrast display.Contrast) error {
	return d.command(cmdContrast, byte(contrast))
}

func (d *Dev) String() string {
	if s, ok := d.w.(fmt.Stringer); ok {
		return fmt.Sprintf("usblcd{%dx%d, %s}", d.cols, d.rows, s)
	}
	return fmt.Sprintf("usblcd{%dx%d}", d.cols, d.rows)
}

// Write sends p as is. The caller must not include the command prefix unless
// it means to send a command.
func (d *Dev) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.w.Write(p)
	if err != nil {
		return n, fmt.Errorf("usblcd: %w", err)
	}
	return n, nil
}

// WriteString shows text at the cursor.
func (d *Dev) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

func (d *Dev) command(cmd byte, args ...byte) error {
	b := make([]byte, 0, 2+len(args))
	b = append(b, cmdPrefix, cmd)
	b = append(b, args...)
	_, err := d.Write(b)
	return err
}

var _ display.TextDisplay = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ display.DisplayContrast = &Dev{}
var _ conn.Resource = &Dev{}
