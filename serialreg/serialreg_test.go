// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package serialreg

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/GermanBionicSystems/lm75serial/config"
	"github.com/GermanBionicSystems/lm75serial/serialport"
	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/physic"
)

type nopRWC struct {
	io.Reader
}

func (nopRWC) Write(b []byte) (int, error) { return len(b), nil }
func (nopRWC) Close() error                { return nil }

// fakeOpen records the options instead of opening a device.
func fakeOpen(opened *[]serialport.Opts) func(*serialport.Opts) (*serialport.Port, error) {
	return func(o *serialport.Opts) (*serialport.Port, error) {
		*opened = append(*opened, *o)
		return serialport.New(o.Path, nopRWC{bytes.NewReader([]byte{0x17, 0xc0})}), nil
	}
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Baud = 19200 * physic.Hertz
	cfg.ReadTimeout = 300 * time.Millisecond
	cfg.Ports = []config.Port{
		{Name: "relay-b", Aliases: []string{"kitchen"}, Path: "/dev/ttyUSB1", Baud: serialport.DefaultBaud},
		{Name: "relay-a", Path: "/dev/ttyUSB0", Baud: 4800 * physic.Hertz, ReadTimeout: time.Second},
	}
	return cfg
}

func TestResolve(t *testing.T) {
	cfg := testConfig()
	r, err := FromConfig(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		want serialport.Opts
	}{
		// The first configured port, not the first by name.
		{"", serialport.Opts{Path: "/dev/ttyUSB1", Baud: serialport.DefaultBaud}},
		{"relay-b", serialport.Opts{Path: "/dev/ttyUSB1", Baud: serialport.DefaultBaud}},
		{"kitchen", serialport.Opts{Path: "/dev/ttyUSB1", Baud: serialport.DefaultBaud}},
		{"relay-a", serialport.Opts{Path: "/dev/ttyUSB0", Baud: 4800 * physic.Hertz, ReadTimeout: time.Second}},
		{"/dev/serial/by-path/pci-0000:00:14.0-usb-0:2:1.0", serialport.Opts{Path: "/dev/serial/by-path/pci-0000:00:14.0-usb-0:2:1.0", Baud: 19200 * physic.Hertz, ReadTimeout: 300 * time.Millisecond}},
		{"COM4", serialport.Opts{Path: "COM4", Baud: 19200 * physic.Hertz, ReadTimeout: 300 * time.Millisecond}},
	}
	for _, test := range tests {
		got, err := r.Resolve(test.name)
		if err != nil {
			t.Errorf("Resolve(%q) = %v", test.name, err)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Resolve(%q) mismatch (-want +got):\n%s", test.name, diff)
		}
	}
	_, err = r.Resolve("garage")
	if err == nil || !strings.Contains(err.Error(), "relay-b, relay-a") {
		t.Errorf("Resolve(garage) = %v; expected the configured names", err)
	}
}

func TestResolveEmpty(t *testing.T) {
	r := New(serialport.Opts{Path: "/dev/ignored"})
	if _, err := r.Resolve(""); err == nil {
		t.Error("expected error with no configured port")
	}
	if _, err := r.Resolve("relay"); err == nil {
		t.Error("expected error opening an unknown port")
	}
	got, err := r.Resolve("/dev/ttyACM0")
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != "/dev/ttyACM0" {
		t.Errorf("Resolve() = %+v", got)
	}
}

func TestOpen(t *testing.T) {
	cfg := testConfig()
	r, err := FromConfig(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	var opened []serialport.Opts
	r.open = fakeOpen(&opened)
	p, err := r.Open("kitchen")
	if err != nil {
		t.Fatal(err)
	}
	if p.String() != "/dev/ttyUSB1" {
		t.Errorf("Open(kitchen) = %s", p)
	}
	if b, err := p.ReadByte(); err != nil || b != 0x17 {
		t.Errorf("ReadByte() = %#x, %v", b, err)
	}
	if _, err := r.Open("garage"); err == nil {
		t.Error("expected error opening an unknown port")
	}
	if len(opened) != 1 {
		t.Errorf("opened %d ports; expected 1", len(opened))
	}
}

func TestOpenMissingDevice(t *testing.T) {
	r := New(serialport.Opts{})
	if _, err := r.Open("/dev/does-not-exist-lm75"); err == nil {
		t.Error("expected error opening a missing device path")
	}
}

func TestAddErrors(t *testing.T) {
	r := New(serialport.Opts{})
	if err := r.Add(Entry{Name: "relay", Aliases: []string{"porch"}, Opts: serialport.Opts{Path: "/dev/ttyUSB0"}}); err != nil {
		t.Fatal(err)
	}
	path := serialport.Opts{Path: "/dev/ttyUSB1"}
	tests := []struct {
		name string
		e    Entry
	}{
		{"empty", Entry{Opts: path}},
		{"spaces", Entry{Name: " relay2", Opts: path}},
		{"path name", Entry{Name: "/dev/ttyUSB1", Opts: path}},
		{"com name", Entry{Name: "com3", Opts: path}},
		{"no path", Entry{Name: "relay2"}},
		{"duplicate", Entry{Name: "relay", Opts: path}},
		{"name is alias", Entry{Name: "porch", Opts: path}},
		{"alias is name", Entry{Name: "relay2", Aliases: []string{"relay"}, Opts: path}},
		{"alias is alias", Entry{Name: "relay2", Aliases: []string{"porch"}, Opts: path}},
		{"alias twice", Entry{Name: "relay2", Aliases: []string{"a", "a"}, Opts: path}},
		{"alias is own name", Entry{Name: "relay2", Aliases: []string{"relay2"}, Opts: path}},
		{"empty alias", Entry{Name: "relay2", Aliases: []string{""}, Opts: path}},
	}
	for _, test := range tests {
		if err := r.Add(test.e); err == nil {
			t.Errorf("%s: Add(%+v) succeeded", test.name, test.e)
		}
	}
	if diff := cmp.Diff([]string{"relay"}, r.Names()); diff != "" {
		t.Errorf("failed Add modified the registry (-want +got):\n%s", diff)
	}
}

func TestFromConfigDuplicate(t *testing.T) {
	cfg := testConfig()
	cfg.Ports = append(cfg.Ports, config.Port{Name: "kitchen", Path: "/dev/ttyUSB2", Baud: serialport.DefaultBaud})
	if _, err := FromConfig(&cfg); err == nil {
		t.Error("expected error when a name reuses an alias")
	}
}

func TestIsPath(t *testing.T) {
	for name, want := range map[string]bool{
		"/dev/ttyUSB0": true,
		`\\.\COM10`:    true,
		"COM3":         true,
		"com12":        true,
		"COM":          false,
		"computer":     false,
		"relay":        false,
		"":             false,
	} {
		if got := isPath(name); got != want {
			t.Errorf("isPath(%q) = %t; expected %t", name, got, want)
		}
	}
}
