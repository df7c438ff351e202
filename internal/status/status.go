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

// Package status models the two 16-bit status words every reply of a
// Hasar fiscal printer leads with: the fiscal status and the printer
// status. Bit 15 of the fiscal word is a quick check equal to the OR of
// bits 0..7, kept consistent on every mutation.
package status

import "fmt"

// Flag is a bit index within a status word.
type Flag int

// Fiscal status flags.
const (
	ErrorFiscalMemory      Flag = 0
	ErrorWorkMemory        Flag = 1
	LowBattery             Flag = 2
	UnknownCommand         Flag = 3
	NotValidData           Flag = 4
	NotValidCommand        Flag = 5
	OverflowOfTotal        Flag = 6
	FiscalMemoryFull       Flag = 7
	FiscalMemoryAlmostFull Flag = 8
	CertifiedTerminal      Flag = 9
	FiscalizedTerminal     Flag = 10
	BadDate                Flag = 11
	OpenFiscalDocument     Flag = 12
	OpenDocument           Flag = 13
	QuickStatusCheck       Flag = 15
)

// Printer status flags.
const (
	PrinterError   Flag = 2
	PrinterOffline Flag = 3
	BufferFull     Flag = 6
	CoverOpen      Flag = 8
)

// Word is a fixed 16-bit status word.
type Word struct {
	bits  uint16
	quick bool
}

// NewFiscal returns an empty fiscal status word. The quick status check
// in bit 15 is rebuilt after every mutation.
func NewFiscal() *Word {
	return &Word{quick: true}
}

// NewPrinter returns an empty printer status word.
func NewPrinter() *Word {
	return &Word{}
}

// Set turns the flag on.
func (w *Word) Set(f Flag) {
	w.bits |= 1 << uint(f)
	w.rebuildQuick()
}

// Unset turns the flag off.
func (w *Word) Unset(f Flag) {
	w.bits &^= 1 << uint(f)
	w.rebuildQuick()
}

// IsSet reports whether the flag is on.
func (w *Word) IsSet(f Flag) bool {
	return w.bits&(1<<uint(f)) != 0
}

// Value returns the raw 16-bit word.
func (w *Word) Value() uint16 {
	return w.bits
}

// Hex renders the word as four uppercase hexadecimal characters, the
// serialized form carried in every reply.
func (w *Word) Hex() string {
	return fmt.Sprintf("%04X", w.bits)
}

func (w *Word) rebuildQuick() {
	if !w.quick {
		return
	}
	if w.bits&0x00ff != 0 {
		w.bits |= 1 << uint(QuickStatusCheck)
	} else {
		w.bits &^= 1 << uint(QuickStatusCheck)
	}
}
