// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lm75test is meant to be used to test drivers over a fake byte
// stream.
package lm75test

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// IO registers one byte read, or the error returned instead of it.
type IO struct {
	B   byte
	Err error
}

// Bytes returns one IO per byte.
func Bytes(b ...byte) []IO {
	ops := make([]IO, len(b))
	for i := range b {
		ops[i].B = b[i]
	}
	return ops
}

// Playback implements io.ByteReader and plays back a recorded stream.
//
// Once all the operations are consumed, ReadByte returns io.EOF.
type Playback struct {
	sync.Mutex
	Ops []IO
	// Count is the number of operations consumed so far.
	Count int
}

func (p *Playback) String() string {
	return "playback"
}

// ReadByte implements io.ByteReader.
func (p *Playback) ReadByte() (byte, error) {
	p.Lock()
	defer p.Unlock()
	if p.Count >= len(p.Ops) {
		return 0, io.EOF
	}
	op := p.Ops[p.Count]
	p.Count++
	return op.B, op.Err
}

// Close verifies that all the expected operations were consumed.
func (p *Playback) Close() error {
	p.Lock()
	defer p.Unlock()
	if p.Count != len(p.Ops) {
		return fmt.Errorf("lm75test: expected playback to be empty: I/O count %d; expected %d", p.Count, len(p.Ops))
	}
	return nil
}

// Record implements io.ByteReader and records every read from Src.
type Record struct {
	sync.Mutex
	Src io.ByteReader
	Ops []IO
}

func (r *Record) String() string {
	return "record"
}

// ReadByte implements io.ByteReader.
func (r *Record) ReadByte() (byte, error) {
	r.Lock()
	defer r.Unlock()
	if r.Src == nil {
		return 0, errors.New("lm75test: nil source")
	}
	b, err := r.Src.ReadByte()
	r.Ops = append(r.Ops, IO{B: b, Err: err})
	return b, err
}

var _ io.ByteReader = &Playback{}
var _ io.ByteReader = &Record{}
