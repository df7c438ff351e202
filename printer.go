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

package hasar

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentOpen   = errors.New("ya hay un documento en curso")
	ErrNoDocument     = errors.New("no hay un documento en curso")
	ErrInvalidDocType = errors.New("tipo de documento no válido")
)

type (
	// Printer is the document-building façade over the driver. Opens,
	// items and the close are buffered; Finish flushes the buffer as
	// individual sends and returns the issued document number.
	Printer struct {
		driver   *Driver
		current  DocumentType
		customer *CustomerData
		cmds     []bufferedCommand
		items    []Item
	}

	bufferedCommand struct {
		op    byte
		args  []string
		close bool
	}
)

// NewPrinter returns a façade over driver.
func NewPrinter(driver *Driver) *Printer {
	return &Printer{driver: driver}
}

// OpenBill starts a bill ticket of type "A" or "B".
func (p *Printer) OpenBill(billType string) error {
	if billType != "A" && billType != "B" {
		return fmt.Errorf("%w: factura %q", ErrInvalidDocType, billType)
	}
	p.current = DocBillTicket
	p.Command(CmdOpenFiscalReceipt, []string{billType, "T"})
	return nil
}

// OpenTicket starts a plain ticket; consumer tickets are type "B".
func (p *Printer) OpenTicket(ticketType string) error {
	if !IsFiscalDocType(ticketType) {
		return fmt.Errorf("%w: tique %q", ErrInvalidDocType, ticketType)
	}
	p.current = DocTicket
	p.Command(CmdOpenFiscalReceipt, []string{ticketType, "T"})
	return nil
}

// OpenDebitNote starts a debit note; "A" and "B" map to the wire
// letters "D" and "E".
func (p *Printer) OpenDebitNote(debitType string) error {
	letter, ok := map[string]string{"A": "D", "B": "E"}[debitType]
	if !ok {
		return fmt.Errorf("%w: nota de débito %q", ErrInvalidDocType, debitType)
	}
	p.current = DocDebitBillTicket
	p.Command(CmdOpenFiscalReceipt, []string{letter, "T"})
	return nil
}

// OpenCreditNote starts a credit note; "A" and "B" map to the wire
// letters "R" and "S". The reference record is sent ahead of the open.
func (p *Printer) OpenCreditNote(creditType string) error {
	letter, ok := map[string]string{"A": "R", "B": "S"}[creditType]
	if !ok {
		return fmt.Errorf("%w: nota de crédito %q", ErrInvalidDocType, creditType)
	}
	p.current = DocCreditBillTicket
	p.Command(CmdCreditNoteReference, []string{"1", "NC"})
	p.Command(CmdOpenCreditNote, []string{letter, "T"})
	return nil
}

// OpenReceipt starts a DNFH receipt.
func (p *Printer) OpenReceipt() {
	p.current = DocDNFH
	p.Command(CmdOpenDNFH, []string{"r", "T"})
}

// SetCustomerData stores the customer record; it is transmitted ahead
// of the buffered open when Finish runs.
func (p *Printer) SetCustomerData(data CustomerData) error {
	if !data.Responsibility.Valid() {
		return fmt.Errorf("responsabilidad frente al IVA no válida: %q", data.Responsibility)
	}
	p.customer = &data
	return nil
}

// AddItem queues one line item for the document in course.
func (p *Printer) AddItem(item Item) {
	p.items = append(p.items, item)
}

// AddItems queues several line items.
func (p *Printer) AddItems(items []Item) {
	for _, item := range items {
		p.AddItem(item)
	}
}

// CloseDocument queues the close of the document in course.
func (p *Printer) CloseDocument() error {
	if p.current == "" {
		return ErrNoDocument
	}
	p.cmds = append(p.cmds, bufferedCommand{close: true})
	return nil
}

// DailyClose runs a Z close. No document may be in course.
func (p *Printer) DailyClose() ([]string, error) {
	if p.current != "" {
		return nil, ErrDocumentOpen
	}
	return p.Execute(CmdDailyClose, []string{"Z"}, false)
}

// PartialClose runs an X report. No document may be in course.
func (p *Printer) PartialClose() ([]string, error) {
	if p.current != "" {
		return nil, ErrDocumentOpen
	}
	return p.Execute(CmdDailyClose, []string{"X"}, false)
}

// Command appends a command to the buffer without sending it.
func (p *Printer) Command(op byte, args []string) {
	p.cmds = append(p.cmds, bufferedCommand{op: op, args: args})
}

// Execute round-trips one command immediately and returns the parsed
// reply fields.
func (p *Printer) Execute(op byte, args []string, skipErrors bool) ([]string, error) {
	reply, err := p.driver.SendCommand(op, args, skipErrors)
	if err != nil {
		return nil, fmt.Errorf("error de la impresora fiscal: %w (comando 0x%02x %v)", err, op, args)
	}
	return reply, nil
}

// Finish flushes the buffer as individual sends: the stored customer
// record first, then each buffered command, expanding the queued items
// and the matching close opcode in place of the close marker. It
// returns the document number issued by the close, when there was one.
func (p *Printer) Finish() (string, error) {
	defer func() {
		p.cmds = nil
		p.items = nil
		p.current = ""
		p.customer = nil
	}()

	if p.customer != nil {
		args := []string{
			p.customer.Name,
			p.customer.TaxID,
			string(p.customer.Responsibility),
			p.customer.DocumentType,
		}
		if _, err := p.Execute(CmdSetCustomerData, args, false); err != nil {
			return "", err
		}
	}

	number := ""
	for _, cmd := range p.cmds {
		if !cmd.close {
			if _, err := p.Execute(cmd.op, cmd.args, false); err != nil {
				return "", err
			}
			continue
		}
		for _, item := range p.items {
			if _, err := p.Execute(CmdPrintLineItem, lineItemArgs(item), false); err != nil {
				return "", err
			}
		}
		reply, err := p.Execute(p.closeOpcode(), nil, false)
		if err != nil {
			return "", err
		}
		if len(reply) > 2 {
			number = reply[2]
		}
	}
	return number, nil
}

// Close releases the driver and its port.
func (p *Printer) Close() error {
	return p.driver.Close()
}

// lineItemArgs renders an item as the eight PrintLineItem fields. The
// façade sends VAT-inclusive amounts, hence the "T" total flag.
func lineItemArgs(item Item) []string {
	sign := "M"
	if item.Negative {
		sign = "m"
	}
	return []string{
		item.Description,
		item.Quantity.String(),
		item.Price.StringFixed(2),
		item.VATRate.StringFixed(2),
		sign,
		"0",
		"",
		"T",
	}
}

func (p *Printer) closeOpcode() byte {
	switch p.current {
	case DocCreditBillTicket, DocDNFH:
		return CmdCloseDNFH
	case DocNonFiscal:
		return CmdCloseNonFiscalReceipt
	default:
		return CmdCloseFiscalReceipt
	}
}
