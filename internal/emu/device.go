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

// Package emu emulates a Hasar SMH/P 615F fiscal printer: it receives
// framed commands, advances the fiscal document state machine and
// prints a 40-column receipt rendition of everything a real device
// would put on paper.
package emu

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	hasar "github.com/Golang-Argentina/hasar-fp"
	"github.com/Golang-Argentina/hasar-fp/internal/status"
	"github.com/Golang-Argentina/hasar-fp/pkg/eprom"
)

type docKind int

const (
	docFiscal docKind = iota
	docCredit
	docDNFH
	docNonFiscal
)

type (
	// document is the single source of truth for the device state: nil
	// means closed, anything else is the open document. The
	// open-document status bits are derived from it after every
	// command.
	document struct {
		kind   docKind
		letter string
		number int
		items  []docItem
	}

	docItem interface {
		docItem()
	}

	// fiscalItem is a sale line. amount is the unit amount; gross marks
	// it VAT-inclusive.
	fiscalItem struct {
		desc   string
		qty    decimal.Decimal
		amount decimal.Decimal
		vat    decimal.Decimal
		k      decimal.Decimal
		sign   string
		gross  bool
	}

	// discountItem is a general discount or surcharge over the whole
	// document.
	discountItem struct {
		desc   string
		amount decimal.Decimal
		sign   string
		gross  bool
	}
)

func (*fiscalItem) docItem()   {}
func (*discountItem) docItem() {}

func (doc *document) fiscalKind() bool {
	return doc.kind == docFiscal || doc.kind == docCredit
}

type (
	// Device is the emulated printer. It is driven one command at a
	// time by the link loop and is not safe for concurrent use.
	Device struct {
		fiscal  *status.Word
		printer *status.Word

		eprom         *eprom.Config
		headerTrailer map[int]string
		fantasy       map[int]string
		lastNumber    map[string]int

		customer     *hasar.CustomerData
		fiscalText   []string
		current      *document
		creditRef    string
		canAddItem   bool
		totalPrinted bool

		out   Sink
		now   func() time.Time
		logw  io.Writer
		debug bool
	}

	DeviceOption func(*Device)
)

// WithSink replaces the receipt output.
func WithSink(sink Sink) DeviceOption {
	return func(d *Device) {
		d.out = sink
	}
}

// WithClock replaces the wall clock used for header timestamps.
func WithClock(now func() time.Time) DeviceOption {
	return func(d *Device) {
		d.now = now
	}
}

// WithLogWriter redirects the operator log.
func WithLogWriter(w io.Writer) DeviceOption {
	return func(d *Device) {
		d.logw = w
	}
}

// WithDebug traces every handler invocation to the operator log.
func WithDebug(debug bool) DeviceOption {
	return func(d *Device) {
		d.debug = debug
	}
}

// NewDevice returns an emulated printer over cfg. The terminal starts
// certified and fiscalized with no document open; the A and B counters
// resume from the EPROM record.
func NewDevice(cfg *eprom.Config, options ...DeviceOption) *Device {
	d := &Device{
		fiscal:        status.NewFiscal(),
		printer:       status.NewPrinter(),
		eprom:         cfg,
		headerTrailer: cfg.HeaderTrailerCopy(),
		fantasy:       cfg.FantasyCopy(),
		lastNumber: map[string]int{
			"A": cfg.LastCounterA,
			"B": cfg.LastCounterB,
		},
		out:  NewConsole(os.Stdout, true),
		now:  time.Now,
		logw: os.Stderr,
	}
	d.cleanWorkMemory()
	d.fiscal.Set(status.CertifiedTerminal)
	d.fiscal.Set(status.FiscalizedTerminal)
	for _, option := range options {
		option(d)
	}
	return d
}

// Dispatch runs one command and returns the reply fields: printer
// status hex, fiscal status hex, then whatever the handler produced.
// Fiscal errors never suppress the reply; they surface as status bits.
func (d *Device) Dispatch(op byte, params []string) []string {
	d.cleanFiscalStatus()

	var extra []string
	if h, ok := commandTable[op]; ok {
		ret, err := h.fn(d, params)
		if err != nil {
			d.fail(err)
		} else {
			extra = ret
			if d.debug {
				d.logf("\x1b[32mDEBUG:\x1b[0m %s(%q) --> %q", h.name, params, ret)
			}
		}
	} else {
		d.fail(unknownCommand("comando 0x%02x no registrado en la tabla del controlador fiscal", op))
	}

	d.syncDocumentFlags()
	return append([]string{d.printer.Hex(), d.fiscal.Hex()}, extra...)
}

// FiscalStatus exposes the fiscal status word, mainly for tests.
func (d *Device) FiscalStatus() *status.Word {
	return d.fiscal
}

// PrinterStatus exposes the printer status word.
func (d *Device) PrinterStatus() *status.Word {
	return d.printer
}

// fail records a handler error: fiscal errors raise their status bit
// and go to the operator log; anything else is logged as-is.
func (d *Device) fail(err error) {
	var ferr *Error
	if errors.As(err, &ferr) {
		d.fiscal.Set(ferr.State)
		d.logf("\x1b[31;1m%s:\x1b[37;0m %s (PS: %s, FS: %s)",
			ferr.Name, ferr.Msg, d.printer.Hex(), d.fiscal.Hex())
		return
	}
	d.logf("error: %v", err)
}

func (d *Device) logf(format string, args ...any) {
	fmt.Fprintf(d.logw, format+"\n", args...)
}

// cleanFiscalStatus clears the transient bits that reflect only the
// outcome of the command being processed.
func (d *Device) cleanFiscalStatus() {
	d.fiscal.Unset(status.UnknownCommand)
	d.fiscal.Unset(status.NotValidData)
	d.fiscal.Unset(status.NotValidCommand)
	d.fiscal.Unset(status.OverflowOfTotal)
}

// cleanWorkMemory resets every transient of the working memory; runs at
// power-on and after each close or cancellation.
func (d *Device) cleanWorkMemory() {
	d.customer = nil
	d.fiscalText = nil
	d.current = nil
	d.creditRef = ""
	d.canAddItem = false
	d.totalPrinted = false
}

// syncDocumentFlags derives the open-document status bits from the
// document state.
func (d *Device) syncDocumentFlags() {
	if d.current != nil {
		d.fiscal.Set(status.OpenDocument)
		if d.current.fiscalKind() {
			d.fiscal.Set(status.OpenFiscalDocument)
		} else {
			d.fiscal.Unset(status.OpenFiscalDocument)
		}
		return
	}
	d.fiscal.Unset(status.OpenDocument)
	d.fiscal.Unset(status.OpenFiscalDocument)
}

func (d *Device) printLine(text string, align Align) {
	if text == "" {
		return
	}
	d.out.WriteLine(text, align)
}

func (d *Device) blankLine() {
	d.out.WriteLine("", AlignLeft)
}

func (d *Device) printSeparator() {
	d.out.WriteLine(separatorLine, AlignLeft)
}

func (d *Device) printDateTime() {
	now := d.now()
	d.printLine("Fecha : "+now.Format("02-01-06"), AlignRight)
	d.printLine("Hora  : "+now.Format("15:04:05"), AlignRight)
}

func (d *Device) printCutStart() {
	d.out.WriteLine(red(centerFill("8<------8<", LineWidth, '-')), AlignLeft)
}

func (d *Device) printCutEnd() {
	d.out.WriteLine(red(centerFill(">8------>8", LineWidth, '-')), AlignLeft)
}

var separatorLine = strings.Repeat("-", LineWidth)

func red(s string) string {
	return "\x1b[31m" + s + "\x1b[0m"
}

func bold(s string) string {
	return "\x1b[;1m" + s + "\x1b[0m"
}
