// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package usblcd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/display/displaytest"
)

type port struct {
	buf    bytes.Buffer
	closed bool
	err    error
}

func (p *port) Write(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	return p.buf.Write(b)
}

func (p *port) Close() error {
	p.closed = true
	return nil
}

func newDev(t *testing.T) (*Dev, *port) {
	t.Helper()
	p := &port{}
	d, err := New(p, 2, 16)
	if err != nil {
		t.Fatal(err)
	}
	p.buf.Reset()
	return d, p
}

func TestNew(t *testing.T) {
	p := &port{}
	if _, err := New(p, 2, 16); err != nil {
		t.Fatal(err)
	}
	want := []byte{0xfe, 0xd1, 16, 2, 0xfe, 0x42, 0}
	if diff := cmp.Diff(want, p.buf.Bytes()); diff != "" {
		t.Errorf("New() wrote (-want +got):\n%s", diff)
	}
	for _, size := range [][2]int{{0, 16}, {5, 16}, {2, 0}, {2, 41}} {
		if _, err := New(&port{}, size[0], size[1]); err == nil {
			t.Errorf("New(%d, %d) succeeded", size[0], size[1])
		}
	}
	if _, err := New(&port{err: errors.New("unplugged")}, 2, 16); err == nil {
		t.Error("expected write error")
	}
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		f    func(d *Dev) error
		want []byte
	}{
		{"clear", func(d *Dev) error { return d.Clear() }, []byte{0xfe, 0x58, 0xfe, 0x48}},
		{"move to", func(d *Dev) error { return d.MoveTo(2, 5) }, []byte{0xfe, 0x47, 5, 2}},
		{"forward", func(d *Dev) error { return d.Move(display.Forward) }, []byte{0xfe, 0x4d}},
		{"cursor off", func(d *Dev) error { return d.Cursor(display.CursorOff) }, []byte{0xfe, 0x54, 0xfe, 0x4b}},
		{"underline", func(d *Dev) error { return d.Cursor(display.CursorUnderline) }, []byte{0xfe, 0x4a}},
		{"autoscroll", func(d *Dev) error { return d.AutoScroll(false) }, []byte{0xfe, 0x52}},
		{"backlight", func(d *Dev) error { return d.Backlight(128) }, []byte{0xfe, 0x99, 128}},
		{"contrast", func(d *Dev) error { return d.Contrast(200) }, []byte{0xfe, 0x50, 200}},
		{"text", func(d *Dev) error { _, err := d.WriteString("23.50 *C"); return err }, []byte("23.50 *C")},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			d, p := newDev(t)
			if err := test.f(d); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, p.buf.Bytes()); diff != "" {
				t.Errorf("wrote (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMoveToRange(t *testing.T) {
	d, p := newDev(t)
	for _, rc := range [][2]int{{0, 1}, {3, 1}, {1, 0}, {1, 17}} {
		if err := d.MoveTo(rc[0], rc[1]); err == nil {
			t.Errorf("MoveTo(%d, %d) succeeded", rc[0], rc[1])
		}
	}
	if err := d.Move(display.Up); !errors.Is(err, display.ErrNotImplemented) {
		t.Errorf("Move(Up) = %v", err)
	}
	if p.buf.Len() != 0 {
		t.Errorf("wrote %x after invalid moves", p.buf.Bytes())
	}
}

func TestHalt(t *testing.T) {
	d, p := newDev(t)
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if !p.closed {
		t.Error("Halt() did not close the port")
	}
	if diff := cmp.Diff([]byte{0xfe, 0x46}, p.buf.Bytes()); diff != "" {
		t.Errorf("Halt() wrote (-want +got):\n%s", diff)
	}
}

func TestTextDisplay(t *testing.T) {
	d, _ := newDev(t)
	for _, err := range displaytest.TestTextDisplay(d, false) {
		if !errors.Is(err, display.ErrNotImplemented) {
			t.Error(err)
		}
	}
	if s := d.String(); s != "usblcd{16x2}" {
		t.Errorf("String() = %q", s)
	}
}
