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

package hasar_test

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	hasar "github.com/Golang-Argentina/hasar-fp"
	"github.com/Golang-Argentina/hasar-fp/internal/emu"
	"github.com/Golang-Argentina/hasar-fp/pkg/eprom"
)

// startEmulator runs a full device emulator behind an in-memory pipe
// and returns the host side plus the captured receipt output.
func startEmulator(t *testing.T) (net.Conn, *bytes.Buffer) {
	t.Helper()
	hostPort, devPort := net.Pipe()
	var receipt bytes.Buffer
	console := emu.NewConsole(&receipt, false)
	console.SetPace(0)
	dev := emu.NewDevice(eprom.Default(),
		emu.WithSink(console),
		emu.WithLogWriter(io.Discard),
		emu.WithClock(func() time.Time {
			return time.Date(2009, time.May, 17, 14, 30, 0, 0, time.UTC)
		}),
	)
	done := make(chan error, 1)
	go func() {
		done <- emu.NewWrapper(devPort, dev, emu.WithWrapperLog(io.Discard)).Loop()
	}()
	t.Cleanup(func() {
		hostPort.Close()
		<-done
	})
	return hostPort, &receipt
}

func TestPrinterTicketFlow(t *testing.T) {
	t.Parallel()
	port, receipt := startEmulator(t)
	p := hasar.NewPrinter(hasar.NewDriver(port))

	if err := p.OpenTicket("B"); err != nil {
		t.Fatal(err)
	}
	p.AddItem(hasar.Item{
		Description: "WATER",
		Quantity:    decimal.NewFromInt(2),
		Price:       decimal.RequireFromString("12.10"),
		VATRate:     decimal.RequireFromString("21.00"),
	})
	if err := p.CloseDocument(); err != nil {
		t.Fatal(err)
	}

	number, err := p.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if number != "791" {
		t.Errorf("document number = %v, want 791", number)
	}

	out := receipt.String()
	for _, want := range []string{
		"CARLOS, AUGUSTO Y GERMAN ROCCASALVA",
		"WATER",
		"24.20",
		"T O T A L",
		"Fecha : 17-05-09",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("receipt missing %q:\n%s", want, out)
		}
	}
}

func TestPrinterBillARequiresCustomer(t *testing.T) {
	t.Parallel()
	port, _ := startEmulator(t)
	p := hasar.NewPrinter(hasar.NewDriver(port))

	if err := p.OpenBill("A"); err != nil {
		t.Fatal(err)
	}
	if err := p.CloseDocument(); err != nil {
		t.Fatal(err)
	}
	_, err := p.Finish()
	if err == nil {
		t.Fatal("Finish() error = nil, want fiscal status error")
	}
	fiscalErr := &hasar.FiscalStatusError{}
	if !errors.As(err, &fiscalErr) {
		t.Errorf("Finish() error = %v, want FiscalStatusError", err)
	}
}

func TestPrinterBillAWithCustomer(t *testing.T) {
	t.Parallel()
	port, receipt := startEmulator(t)
	p := hasar.NewPrinter(hasar.NewDriver(port))

	err := p.SetCustomerData(hasar.CustomerData{
		Name:           "DISTRIBUIDORA SUR S.A.",
		TaxID:          "30711281424",
		Responsibility: hasar.IVAResponsableInscripto,
		DocumentType:   "C",
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.OpenBill("A"); err != nil {
		t.Fatal(err)
	}
	p.AddItem(hasar.Item{
		Description: "GASEOSA",
		Quantity:    decimal.NewFromInt(1),
		Price:       decimal.RequireFromString("12.10"),
		VATRate:     decimal.RequireFromString("21.00"),
	})
	if err := p.CloseDocument(); err != nil {
		t.Fatal(err)
	}
	number, err := p.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if number != "366" {
		t.Errorf("document number = %v, want 366", number)
	}
	if !strings.Contains(receipt.String(), "NETO SIN IVA") {
		t.Error("A bill receipt missing the discriminated VAT block")
	}
}

func TestPrinterDailyAndPartialClose(t *testing.T) {
	t.Parallel()
	port, _ := startEmulator(t)
	p := hasar.NewPrinter(hasar.NewDriver(port))

	if _, err := p.DailyClose(); err != nil {
		t.Errorf("DailyClose() error = %v", err)
	}
	if _, err := p.PartialClose(); err != nil {
		t.Errorf("PartialClose() error = %v", err)
	}

	if err := p.OpenTicket("B"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.DailyClose(); !errors.Is(err, hasar.ErrDocumentOpen) {
		t.Errorf("DailyClose() with open document error = %v, want ErrDocumentOpen", err)
	}
}

func TestPrinterExecuteStatusRequest(t *testing.T) {
	t.Parallel()
	port, _ := startEmulator(t)
	p := hasar.NewPrinter(hasar.NewDriver(port))

	fields, err := p.Execute(hasar.CmdStatusRequest, nil, false)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(fields) != 2 || fields[0] != "0000" || fields[1] != "0600" {
		t.Errorf("Execute(StatusRequest) = %v, want [0000 0600]", fields)
	}
}

func TestPrinterCreditNote(t *testing.T) {
	t.Parallel()
	port, receipt := startEmulator(t)
	p := hasar.NewPrinter(hasar.NewDriver(port))

	if err := p.OpenCreditNote("B"); err != nil {
		t.Fatal(err)
	}
	p.AddItem(hasar.Item{
		Description: "DEVOLUCION",
		Quantity:    decimal.NewFromInt(1),
		Price:       decimal.RequireFromString("12.10"),
		VATRate:     decimal.RequireFromString("21.00"),
	})
	if err := p.CloseDocument(); err != nil {
		t.Fatal(err)
	}
	number, err := p.Finish()
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if number != "1" {
		t.Errorf("credit note number = %v, want 1", number)
	}
	if !strings.Contains(receipt.String(), "NOTA DE CREDITO") {
		t.Error("credit note title missing from receipt")
	}
}

func TestPrinterRejectsBadDocTypes(t *testing.T) {
	t.Parallel()
	p := hasar.NewPrinter(nil)
	if err := p.OpenBill("X"); !errors.Is(err, hasar.ErrInvalidDocType) {
		t.Errorf("OpenBill(X) error = %v, want ErrInvalidDocType", err)
	}
	if err := p.OpenDebitNote("C"); !errors.Is(err, hasar.ErrInvalidDocType) {
		t.Errorf("OpenDebitNote(C) error = %v, want ErrInvalidDocType", err)
	}
	if err := p.OpenCreditNote("Z"); !errors.Is(err, hasar.ErrInvalidDocType) {
		t.Errorf("OpenCreditNote(Z) error = %v, want ErrInvalidDocType", err)
	}
	if err := p.CloseDocument(); !errors.Is(err, hasar.ErrNoDocument) {
		t.Errorf("CloseDocument() error = %v, want ErrNoDocument", err)
	}
}
