// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the reader configuration from a TOML file and the
// environment.
//
// A file looks like:
//
//	port = "relay"
//	mode = 2
//	validate = true
//	color = true
//	log_level = "info"
//	log_readings = false
//
//	[[ports]]
//	name = "relay"
//	aliases = ["kitchen"]
//	path = "/dev/ttyUSB0"
//	baud = 9600
//	read_timeout = "2s"
//
//	[[ports]]
//	name = "lcd"
//	path = "/dev/ttyACM0"
//
//	[display]
//	port = "lcd"
//	rows = 2
//	cols = 16
//
//	[reconnect]
//	enabled = true
//	initial_delay = "500ms"
//	max_delay = "30s"
//	multiplier = 2.0
//	max_attempts = 0
//
// Keys left out keep their default value. An empty port selects the first
// entry of ports.
package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/GermanBionicSystems/lm75serial/lm75"
	"github.com/GermanBionicSystems/lm75serial/serialport"
	"periph.io/x/conn/v3/physic"
)

// Environment variables overriding the file.
const (
	EnvPort = "LM75SERIAL_PORT"
	EnvBaud = "LM75SERIAL_BAUD"
	EnvMode = "LM75SERIAL_MODE"
	// EnvLogLevel is one of trace, debug, info, warn, error or off.
	EnvLogLevel = "LM75SERIAL_LOG_LEVEL"
)

// Port is a serial port to register under a name.
type Port struct {
	Name        string
	Aliases     []string
	Path        string
	Baud        physic.Frequency
	ReadTimeout time.Duration
}

// Opts returns the options to open the port.
func (p *Port) Opts() serialport.Opts {
	return serialport.Opts{Path: p.Path, Baud: p.Baud, ReadTimeout: p.ReadTimeout}
}

// Reconnect is the policy applied when the stream fails.
type Reconnect struct {
	Enabled      bool
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// MaxAttempts of 0 retries forever.
	MaxAttempts int
}

// Delay returns the wait before reconnection attempt n, 1-based.
func (r *Reconnect) Delay(n int) time.Duration {
	if n <= 1 || r.InitialDelay <= 0 {
		return r.InitialDelay
	}
	m := r.Multiplier
	if m < 1.0 {
		m = 1.0
	}
	d := float64(r.InitialDelay) * math.Pow(m, float64(n-1))
	if r.MaxDelay > 0 && d > float64(r.MaxDelay) {
		d = float64(r.MaxDelay)
	}
	return time.Duration(d)
}

// Display is a character LCD on a USB or serial backpack that shows the
// latest reading. It is disabled when Port is empty.
type Display struct {
	// Port is resolved like Config.Port.
	Port string
	Rows int
	Cols int
}

// Config is the reader configuration.
type Config struct {
	// Port is the configured name, alias or device path to read from. Empty
	// selects the first of Ports.
	Port string
	// Baud and ReadTimeout apply to device paths that are not one of the
	// configured Ports.
	Baud        physic.Frequency
	ReadTimeout time.Duration
	Ports       []Port
	Mode        lm75.Mode
	// Validate rejects frames outside the LM75A range.
	Validate bool
	// Count stops after that many readings; 0 reads forever.
	Count    uint64
	Color    bool
	LogLevel string
	// LogReadings also logs each reading as a structured event.
	LogReadings bool
	Display     Display
	Reconnect   Reconnect
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Port:        serialport.DefaultPath,
		Baud:        serialport.DefaultBaud,
		ReadTimeout: serialport.DefaultReadTimeout,
		Mode:        lm75.TwoByte,
		LogLevel:    "info",
		Display:     Display{Rows: 2, Cols: 16},
		Reconnect: Reconnect{
			Enabled:      true,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     30 * time.Second,
			Multiplier:   2,
		},
	}
}

type filePort struct {
	Name        string   `toml:"name"`
	Aliases     []string `toml:"aliases"`
	Path        string   `toml:"path"`
	Baud        int64    `toml:"baud"`
	ReadTimeout string   `toml:"read_timeout"`
}

type fileReconnect struct {
	Enabled      bool    `toml:"enabled"`
	InitialDelay string  `toml:"initial_delay"`
	MaxDelay     string  `toml:"max_delay"`
	Multiplier   float64 `toml:"multiplier"`
	MaxAttempts  int     `toml:"max_attempts"`
}

type fileDisplay struct {
	Port string `toml:"port"`
	Rows int    `toml:"rows"`
	Cols int    `toml:"cols"`
}

type fileConfig struct {
	Port        string        `toml:"port"`
	Baud        int64         `toml:"baud"`
	ReadTimeout string        `toml:"read_timeout"`
	Ports       []filePort    `toml:"ports"`
	Mode        int           `toml:"mode"`
	Validate    bool          `toml:"validate"`
	Count       uint64        `toml:"count"`
	Color       bool          `toml:"color"`
	LogLevel    string        `toml:"log_level"`
	LogReadings bool          `toml:"log_readings"`
	Display     fileDisplay   `toml:"display"`
	Reconnect   fileReconnect `toml:"reconnect"`
}

// Load reads the file at path over Default().
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config: load %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		return Config{}, fmt.Errorf("config: %s: unknown key %q", path, undecoded[0].String())
	}
	return fromFile(meta, &raw)
}

func fromFile(meta toml.MetaData, raw *fileConfig) (Config, error) {
	cfg := Default()
	var err error
	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("baud") {
		cfg.Baud = physic.Frequency(raw.Baud) * physic.Hertz
	}
	if meta.IsDefined("read_timeout") {
		if cfg.ReadTimeout, err = parseDuration("read_timeout", raw.ReadTimeout); err != nil {
			return Config{}, err
		}
	}
	for i, p := range raw.Ports {
		port := Port{Name: strings.TrimSpace(p.Name), Aliases: p.Aliases, Path: p.Path, Baud: serialport.DefaultBaud, ReadTimeout: serialport.DefaultReadTimeout}
		if p.Baud != 0 {
			port.Baud = physic.Frequency(p.Baud) * physic.Hertz
		}
		if p.ReadTimeout != "" {
			if port.ReadTimeout, err = parseDuration(fmt.Sprintf("ports[%d].read_timeout", i), p.ReadTimeout); err != nil {
				return Config{}, err
			}
		}
		cfg.Ports = append(cfg.Ports, port)
	}
	if meta.IsDefined("mode") {
		if cfg.Mode, err = ParseMode(raw.Mode); err != nil {
			return Config{}, err
		}
	}
	if meta.IsDefined("validate") {
		cfg.Validate = raw.Validate
	}
	if meta.IsDefined("count") {
		cfg.Count = raw.Count
	}
	if meta.IsDefined("color") {
		cfg.Color = raw.Color
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = raw.LogLevel
	}
	if meta.IsDefined("log_readings") {
		cfg.LogReadings = raw.LogReadings
	}
	if meta.IsDefined("display", "port") {
		cfg.Display.Port = strings.TrimSpace(raw.Display.Port)
	}
	if meta.IsDefined("display", "rows") {
		cfg.Display.Rows = raw.Display.Rows
	}
	if meta.IsDefined("display", "cols") {
		cfg.Display.Cols = raw.Display.Cols
	}
	if meta.IsDefined("reconnect", "enabled") {
		cfg.Reconnect.Enabled = raw.Reconnect.Enabled
	}
	if meta.IsDefined("reconnect", "initial_delay") {
		if cfg.Reconnect.InitialDelay, err = parseDuration("reconnect.initial_delay", raw.Reconnect.InitialDelay); err != nil {
			return Config{}, err
		}
	}
	if meta.IsDefined("reconnect", "max_delay") {
		if cfg.Reconnect.MaxDelay, err = parseDuration("reconnect.max_delay", raw.Reconnect.MaxDelay); err != nil {
			return Config{}, err
		}
	}
	if meta.IsDefined("reconnect", "multiplier") {
		cfg.Reconnect.Multiplier = raw.Reconnect.Multiplier
	}
	if meta.IsDefined("reconnect", "max_attempts") {
		cfg.Reconnect.MaxAttempts = raw.Reconnect.MaxAttempts
	}
	if err = cfg.Check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides the configuration with the LM75SERIAL_* variables
// returned by getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvPort)); v != "" {
		c.Port = v
	}
	if v := strings.TrimSpace(getenv(EnvBaud)); v != "" {
		b, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvBaud, err)
		}
		c.Baud = physic.Frequency(b) * physic.Hertz
	}
	if v := strings.TrimSpace(getenv(EnvMode)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvMode, err)
		}
		if c.Mode, err = ParseMode(n); err != nil {
			return err
		}
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
	return c.Check()
}

// Check returns an error if the configuration can't be used.
func (c *Config) Check() error {
	if c.Port == "" && len(c.Ports) == 0 {
		return errors.New("config: port is empty and no ports are configured")
	}
	if _, err := serialport.Baud(c.Baud); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for i := range c.Ports {
		p := &c.Ports[i]
		if p.Name == "" || p.Path == "" {
			return fmt.Errorf("config: ports[%d] needs a name and a path", i)
		}
		if _, err := serialport.Baud(p.Baud); err != nil {
			return fmt.Errorf("config: ports[%d]: %w", i, err)
		}
	}
	if c.Mode != lm75.TwoByte && c.Mode != lm75.OneByte {
		return fmt.Errorf("config: invalid mode %s", c.Mode)
	}
	if c.Display.Port != "" {
		if c.Display.Port == c.Port {
			return fmt.Errorf("config: display and sensor share port %q", c.Port)
		}
		if c.Display.Rows < 1 || c.Display.Cols < 1 {
			return fmt.Errorf("config: invalid display size %dx%d", c.Display.Cols, c.Display.Rows)
		}
	}
	if c.Reconnect.InitialDelay < 0 || c.Reconnect.MaxDelay < 0 || c.Reconnect.MaxAttempts < 0 {
		return errors.New("config: reconnect delays and attempts must not be negative")
	}
	return nil
}

// ParseMode maps the number of bytes per frame to a Mode.
func ParseMode(n int) (lm75.Mode, error) {
	switch n {
	case 1:
		return lm75.OneByte, nil
	case 2:
		return lm75.TwoByte, nil
	default:
		return 0, fmt.Errorf("config: mode must be 1 or 2 bytes per frame, got %d", n)
	}
}

func parseDuration(key, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("config: parse %s: %w", key, err)
	}
	return d, nil
}
