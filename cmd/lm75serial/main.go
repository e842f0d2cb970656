// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lm75serial prints the temperature relayed by an LM75A sensor over a serial
// port, one line per reading:
//
//	[0     ] 23.50 *C
//	[1     ] 23.75 *C
//
// Settings come from an optional TOML file (see package config), then the
// LM75SERIAL_* environment variables, then the flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GermanBionicSystems/lm75serial/config"
	"github.com/GermanBionicSystems/lm75serial/logging"
	"github.com/GermanBionicSystems/lm75serial/serialport"
	"github.com/GermanBionicSystems/lm75serial/serialreg"
	"github.com/GermanBionicSystems/lm75serial/sink"
	"github.com/GermanBionicSystems/lm75serial/usblcd"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"
)

// loadConfig layers the file named by -config, the environment and the
// flags, in that order.
func loadConfig(args []string, getenv func(string) string) (config.Config, error) {
	fs := flag.NewFlagSet("lm75serial", flag.ContinueOnError)
	configPath := fs.String("config", "", "TOML configuration file")
	port := fs.String("port", "", "configured port name, alias or device path; empty selects the first configured port")
	baud := fs.Int("baud", 0, "baud rate when -port is a device path")
	mode := fs.Int("mode", 0, "bytes per frame: 1 or 2")
	count := fs.Uint64("count", 0, "stop after that many readings; 0 reads forever")
	validate := fs.Bool("validate", false, "drop frames outside the LM75A range")
	color := fs.Bool("color", false, "prefix each line with a colour swatch")
	logReadings := fs.Bool("log-readings", false, "also log each reading")
	logLevel := fs.String("log-level", "", "trace, debug, info, warn, error or off")
	lcd := fs.String("display", "", "port of a character LCD backpack showing the latest reading")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}
	if fs.NArg() != 0 {
		return config.Config{}, fmt.Errorf("unexpected argument: %s", fs.Args())
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return config.Config{}, err
		}
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return config.Config{}, err
	}
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "baud":
			cfg.Baud = physic.Frequency(*baud) * physic.Hertz
		case "mode":
			cfg.Mode, err = config.ParseMode(*mode)
		case "count":
			cfg.Count = *count
		case "validate":
			cfg.Validate = *validate
		case "color":
			cfg.Color = *color
		case "log-readings":
			cfg.LogReadings = *logReadings
		case "log-level":
			cfg.LogLevel = *logLevel
		case "display":
			cfg.Display.Port = *lcd
		}
	})
	if err != nil {
		return config.Config{}, err
	}
	if err = cfg.Check(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newSink builds the console sink plus the optional log and display sinks.
// The returned halt function releases them.
func newSink(cfg *config.Config, reg *serialreg.Registry, logger zerolog.Logger) (sink.Sink, func(), error) {
	console := sink.NewConsole(&sink.ConsoleOpts{Color: cfg.Color})
	halts := []func() error{console.Halt}
	halt := func() {
		for i := len(halts) - 1; i >= 0; i-- {
			if err := halts[i](); err != nil {
				logger.Warn().Err(err).Msg("halt")
			}
		}
	}
	sinks := []sink.Sink{console}
	if cfg.LogReadings {
		sinks = append(sinks, sink.NewLog(logger))
	}
	if cfg.Display.Port != "" {
		p, err := reg.Open(cfg.Display.Port)
		if err != nil {
			halt()
			return nil, nil, err
		}
		d, err := usblcd.New(p, cfg.Display.Rows, cfg.Display.Cols)
		if err != nil {
			_ = p.Close()
			halt()
			return nil, nil, err
		}
		logger.Info().Stringer("display", d).Msg("display ready")
		halts = append(halts, d.Halt)
		sinks = append(sinks, sink.NewDisplay(d))
	}
	if len(sinks) == 1 {
		return console, halt, nil
	}
	return sink.Multi(sinks...), halt, nil
}

func mainImpl() error {
	cfg, err := loadConfig(os.Args[1:], os.Getenv)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	logger := logging.Configure(logging.Opts{Level: cfg.LogLevel})

	reg, err := serialreg.FromConfig(&cfg)
	if err != nil {
		return err
	}
	logger.Debug().Strs("ports", reg.Names()).Msg("configured")

	out, halt, err := newSink(&cfg, reg, logger)
	if err != nil {
		return err
	}
	defer halt()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &reader{
		cfg:  cfg,
		open: func() (*serialport.Port, error) { return reg.Open(cfg.Port) },
		out:  out,
		log:  logger,
	}
	return r.run(ctx)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "lm75serial: %s.\n", err)
		os.Exit(1)
	}
}
