// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GermanBionicSystems/lm75serial/config"
	"github.com/GermanBionicSystems/lm75serial/lm75"
	"github.com/GermanBionicSystems/lm75serial/serialport"
	"github.com/GermanBionicSystems/lm75serial/sink"
	"github.com/rs/zerolog"
)

// reader pulls readings from a port and hands them to a sink, reopening the
// port when the stream fails.
type reader struct {
	cfg  config.Config
	open func() (*serialport.Port, error)
	out  sink.Sink
	log  zerolog.Logger

	seq     uint64
	emitted uint64
	attempt int
}

// run returns nil once cfg.Count readings were emitted or ctx is canceled.
func (r *reader) run(ctx context.Context) error {
	for {
		p, err := r.open()
		if err == nil {
			r.log.Info().Str("port", p.String()).Stringer("mode", r.cfg.Mode).Msg("reading")
			err = r.drain(ctx, p)
			if err == nil || ctx.Err() != nil {
				return nil
			}
			var se *lm75.StreamError
			if !errors.As(err, &se) {
				return err
			}
		}
		if !r.wait(ctx, err) {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// drain decodes frames from p until the count is reached, ctx is canceled or
// the stream fails. p is closed on return. Cancellation is noticed between
// frames and after each read timeout.
func (r *reader) drain(ctx context.Context, p *serialport.Port) error {
	var once sync.Once
	closePort := func() {
		once.Do(func() {
			if err := p.Close(); err != nil {
				r.log.Debug().Err(err).Msg("close")
			}
		})
	}
	stop := context.AfterFunc(ctx, closePort)
	defer stop()
	defer closePort()

	if err := p.Flush(); err != nil {
		return err
	}
	opts := lm75.Opts{Mode: r.cfg.Mode, Seq: r.seq}
	if r.cfg.Validate {
		opts.Validate = lm75.SensorRange
	}
	dev, err := lm75.New(p, &opts)
	if err != nil {
		return err
	}
	for ctx.Err() == nil {
		for reading, err := range dev.Readings() {
			if ctx.Err() != nil {
				return nil
			}
			if err != nil {
				if errors.Is(err, lm75.ErrMalformedFrame) {
					r.log.Warn().Err(err).Msg("dropped frame")
					break
				}
				if errors.Is(err, serialport.ErrTimeout) {
					// The frame boundary is lost; start over on fresh bytes.
					r.log.Debug().Err(err).Msg("sensor silent")
					if err := p.Flush(); err != nil {
						return err
					}
					break
				}
				return err
			}
			r.seq = dev.Next()
			r.attempt = 0
			if err := r.out.Emit(reading); err != nil {
				return fmt.Errorf("emit: %w", err)
			}
			r.emitted++
			if r.cfg.Count != 0 && r.emitted >= r.cfg.Count {
				return nil
			}
		}
	}
	return nil
}

// wait sleeps before the next reconnection. It returns false when the policy
// gives up or ctx is canceled.
func (r *reader) wait(ctx context.Context, cause error) bool {
	rc := &r.cfg.Reconnect
	if !rc.Enabled || ctx.Err() != nil {
		return false
	}
	r.attempt++
	if rc.MaxAttempts != 0 && r.attempt > rc.MaxAttempts {
		r.log.Error().Err(cause).Int("attempts", rc.MaxAttempts).Msg("giving up")
		return false
	}
	d := rc.Delay(r.attempt)
	r.log.Warn().Err(cause).Int("attempt", r.attempt).Dur("delay", d).Msg("reconnecting")
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
