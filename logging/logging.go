// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package logging sets up the zerolog logger used by the commands.
package logging

import (
	"io"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Opts represents the logger options.
type Opts struct {
	// Level is one of trace, debug, info, warn, error or off. An empty or
	// unknown level means info.
	Level string
	// W defaults to a colorable stderr.
	W       io.Writer
	NoColor bool
	// NoTimestamp drops the time field, useful in tests.
	NoTimestamp bool
}

// Configure builds a console logger, sets the global level and installs it
// as the zerolog global logger.
func Configure(opts Opts) zerolog.Logger {
	level, _ := ParseLevel(opts.Level)
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStderr()
	}
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    opts.NoColor,
		TimeFormat: time.RFC3339,
	}
	ctx := zerolog.New(out).With()
	if !opts.NoTimestamp {
		ctx = ctx.Timestamp()
	}
	logger := ctx.Str("app", "lm75serial").Logger()
	zerolog.SetGlobalLevel(level)
	log.Logger = logger
	return logger
}

// ParseLevel maps a level name to a zerolog level. ok is false for an empty
// or unknown name, in which case InfoLevel is returned.
func ParseLevel(raw string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	case "disabled", "off", "none":
		return zerolog.Disabled, true
	default:
		return zerolog.InfoLevel, false
	}
}
