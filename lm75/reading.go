// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lm75

import (
	"strconv"

	"periph.io/x/conn/v3/physic"
)

// Fraction is the sub-degree part of a reading, in quarter degrees Celsius.
type Fraction uint8

const (
	FractionZero          Fraction = 0
	FractionQuarter       Fraction = 1
	FractionHalf          Fraction = 2
	FractionThreeQuarters Fraction = 3
)

var fractionDigits = [...]string{"00", "25", "50", "75"}

// fractionFromBits maps bit 7 (0.50) and bit 6 (0.25) of the fraction byte.
func fractionFromBits(lsb byte) Fraction {
	return Fraction(lsb >> 6)
}

// Hundredths returns the fraction in hundredths of a degree: 0, 25, 50 or 75.
func (f Fraction) Hundredths() int {
	return int(f) * 25
}

// String returns the two fractional digits, e.g. "50" for FractionHalf.
func (f Fraction) String() string {
	if int(f) < len(fractionDigits) {
		return fractionDigits[f]
	}
	return "Fraction(" + strconv.Itoa(int(f)) + ")"
}

// Reading is one decoded frame.
type Reading struct {
	// Integer is the signed whole degrees Celsius from the first byte.
	Integer int8
	// Fraction is decoded from the second byte. Always FractionZero in
	// OneByte mode.
	Fraction Fraction
	// Seq is the position of the reading in the decoder's stream, starting
	// at 0.
	Seq uint64
}

// Temperature returns the reading in degrees Celsius. The fraction carries
// the sign of the integer byte so that it matches String: {-23, 0.25} is
// -23.25°C.
func (r Reading) Temperature() physic.Temperature {
	frac := physic.Temperature(r.Fraction) * _QUARTER_DEGREE
	if r.Integer < 0 {
		frac = -frac
	}
	return physic.ZeroCelsius + physic.Temperature(r.Integer)*physic.Kelvin + frac
}

// String returns the reading as "<integer>.<two digits> *C", e.g. "23.50 *C".
//
// The digits come straight from the fraction bits so the output is the same
// on every call.
func (r Reading) String() string {
	b := make([]byte, 0, 12)
	b = strconv.AppendInt(b, int64(r.Integer), 10)
	b = append(b, '.')
	b = append(b, r.Fraction.String()...)
	b = append(b, " *C"...)
	return string(b)
}
