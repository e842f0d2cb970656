// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lm75serial is a container for the packages reading an LM75A
// temperature sensor relayed over a serial link.
//
// The frame decoder lives in lm75, the serial transport in serialport and the
// outputs in sink. cmd/lm75serial ties them together.
package lm75serial
