/*
 * Copyright (c) 2024 Golang Argentina
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
 * of the Software, and to permit persons to whom the Software is furnished to do
 * so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR IMPLIED,
 * INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS FOR A
 * PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT
 * HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF
 * CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE
 * OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 */

package protocol

import "math/rand"

// SequenceNumber is a bounded counter over the inclusive range
// [start, end]. The host sweeps it two by two over even values of
// [0x20, 0x7f]; the emulator echoes whatever sequence it receives and
// only uses the counter when originating frames of its own.
type SequenceNumber struct {
	start   int
	end     int
	current int
}

// NewSequenceNumber returns a counter over [start, end] initialized to a
// uniformly random value within the range.
func NewSequenceNumber(start, end int) *SequenceNumber {
	s := &SequenceNumber{start: start, end: end}
	s.Reset()
	return s
}

// Reset picks a new uniformly random value in [start, end].
func (s *SequenceNumber) Reset() {
	s.current = s.start + rand.Intn(s.end-s.start+1)
}

// ResetEven picks a new random value in range and forces it even, the
// way the host driver seeds its sweep.
func (s *SequenceNumber) ResetEven() {
	s.Reset()
	if s.current%2 == 1 {
		s.current--
	}
}

// Current returns the value the counter sits on.
func (s *SequenceNumber) Current() byte {
	return byte(s.current)
}

// Advance moves the counter forward by step, wrapping back to start when
// it runs past end, and returns the new value. Advance(1) reproduces the
// emulator sweep; the host calls Advance(2) after each successful
// exchange so an even seed stays even.
func (s *SequenceNumber) Advance(step int) byte {
	s.current += step
	if s.current > s.end {
		s.current = s.start
	}
	return s.Current()
}
