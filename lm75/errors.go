// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lm75

import (
	"errors"
	"fmt"
)

// ErrMalformedFrame is returned when a frame was read completely but rejected
// by Opts.Validate.
var ErrMalformedFrame = errors.New("lm75: malformed frame")

// StreamError is returned when the source could not supply a byte of the
// current frame. The frame is dropped.
type StreamError struct {
	// State is the decoder state at the time of the failed read.
	State State
	Err   error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("lm75: %s: %v", e.State, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
