// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package serialreg resolves the port names used on the command line and in
// the configuration file to serial devices.
//
// A name is looked up as a configured port name, then as an alias of one,
// then as a device path. Device paths are opened with the registry's
// fallback options so the configured baud rate and read timeout apply to them
// too. The empty name selects the first configured port.
package serialreg

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/GermanBionicSystems/lm75serial/config"
	"github.com/GermanBionicSystems/lm75serial/serialport"
)

// Entry is a serial port known under a name.
type Entry struct {
	Name    string
	Aliases []string
	Opts    serialport.Opts
}

// Registry maps names and aliases to serial ports.
//
// It is not safe for concurrent modification.
type Registry struct {
	fallback serialport.Opts
	entries  []Entry
	// byName indexes entries by name and by alias.
	byName map[string]int
	open   func(*serialport.Opts) (*serialport.Port, error)
}

// New returns an empty registry. fallback is used to open device paths; its
// Path is ignored.
func New(fallback serialport.Opts) *Registry {
	fallback.Path = ""
	return &Registry{fallback: fallback, byName: map[string]int{}, open: serialport.Open}
}

// FromConfig returns a registry holding cfg.Ports, in order, with cfg.Baud
// and cfg.ReadTimeout as the fallback for device paths.
func FromConfig(cfg *config.Config) (*Registry, error) {
	r := New(serialport.Opts{Baud: cfg.Baud, ReadTimeout: cfg.ReadTimeout})
	for i := range cfg.Ports {
		p := &cfg.Ports[i]
		if err := r.Add(Entry{Name: p.Name, Aliases: p.Aliases, Opts: p.Opts()}); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add appends a port.
//
// Names and aliases must be unique and must not look like device paths, so
// that a lookup is never ambiguous.
func (r *Registry) Add(e Entry) error {
	if err := checkName(e.Name); err != nil {
		return fmt.Errorf("serialreg: port %s", err)
	}
	if e.Opts.Path == "" {
		return fmt.Errorf("serialreg: port %q has no device path", e.Name)
	}
	if _, ok := r.byName[e.Name]; ok {
		return fmt.Errorf("serialreg: port %q is already registered", e.Name)
	}
	seen := map[string]bool{e.Name: true}
	for _, alias := range e.Aliases {
		if err := checkName(alias); err != nil {
			return fmt.Errorf("serialreg: port %q alias %s", e.Name, err)
		}
		if seen[alias] {
			return fmt.Errorf("serialreg: port %q lists %q twice", e.Name, alias)
		}
		if _, ok := r.byName[alias]; ok {
			return fmt.Errorf("serialreg: port %q alias %q is already registered", e.Name, alias)
		}
		seen[alias] = true
	}
	e.Aliases = append([]string(nil), e.Aliases...)
	i := len(r.entries)
	r.entries = append(r.entries, e)
	for n := range seen {
		r.byName[n] = i
	}
	return nil
}

// Names returns the port names in the order they were added.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entries))
	for i := range r.entries {
		out = append(out, r.entries[i].Name)
	}
	return out
}

// Resolve returns the options to open the port called name.
func (r *Registry) Resolve(name string) (serialport.Opts, error) {
	if name == "" {
		if len(r.entries) == 0 {
			return serialport.Opts{}, errors.New("serialreg: no port configured")
		}
		return r.entries[0].Opts, nil
	}
	if i, ok := r.byName[name]; ok {
		return r.entries[i].Opts, nil
	}
	if isPath(name) {
		o := r.fallback
		o.Path = name
		return o, nil
	}
	if len(r.entries) == 0 {
		return serialport.Opts{}, fmt.Errorf("serialreg: unknown port %q", name)
	}
	return serialport.Opts{}, fmt.Errorf("serialreg: unknown port %q; configured: %s", name, strings.Join(r.Names(), ", "))
}

// Open resolves name and opens the port.
func (r *Registry) Open(name string) (*serialport.Port, error) {
	o, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return r.open(&o)
}

func checkName(name string) error {
	switch {
	case name == "":
		return errors.New("name is empty")
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("name %q has surrounding spaces", name)
	case isPath(name):
		return fmt.Errorf("name %q looks like a device path", name)
	}
	return nil
}

// isPath reports whether name is a device path: it contains a path separator
// or is a Windows COM port.
func isPath(name string) bool {
	if strings.ContainsAny(name, `/\`) {
		return true
	}
	if len(name) <= 3 || !strings.EqualFold(name[:3], "COM") {
		return false
	}
	_, err := strconv.ParseUint(name[3:], 10, 8)
	return err == nil
}
