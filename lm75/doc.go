// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// lm75 decodes the temperature registers of an NXP LM75A sensor as they are
// relayed over a serial link by a microcontroller (for example an ATmega
// polling the sensor on I²C and forwarding the register bytes on its USART).
//
// Each frame is the register pair as read from the sensor. The first byte
// holds the signed whole degrees Celsius in two's complement. Bits 7 and 6 of
// the second byte hold the fraction in quarter degrees; the remaining bits are
// ignored. Some firmware only forwards the first byte; use OneByte for those.
//
// Range: -55°C - 125°C
//
// Resolution: 0.25°C in TwoByte mode, 1°C in OneByte mode.
//
// The serial link defaults to 9600 baud 8N1, see package serialport.
//
// For detailed information, refer to the [datasheet].
//
// [datasheet]: https://www.nxp.com/docs/en/data-sheet/LM75A.pdf
package lm75
