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

// Package hasar drives Hasar-family Argentine fiscal printers over a
// serial line. It speaks the STX/ETX framed request/response protocol
// with ACK/NAK handshaking and exposes a document-building API on top:
// open a bill or ticket, add items, tender and close.
package hasar

import (
	"github.com/shopspring/decimal"
)

// Printer commands of the modeled subset.
const (
	CmdStatusRequest         byte = 0x2a
	CmdDailyClose            byte = 0x39
	CmdOpenFiscalReceipt     byte = 0x40
	CmdPrintFiscalText       byte = 0x41
	CmdPrintLineItem         byte = 0x42
	CmdSubtotal              byte = 0x43
	CmdTotalTender           byte = 0x44
	CmdCloseFiscalReceipt    byte = 0x45
	CmdOpenNonFiscalReceipt  byte = 0x48
	CmdPrintNonFiscalText    byte = 0x49
	CmdCloseNonFiscalReceipt byte = 0x4a
	CmdGeneralDiscount       byte = 0x54
	CmdLastItemDiscount      byte = 0x55
	CmdSetDateTime           byte = 0x58
	CmdGetDateTime           byte = 0x59
	CmdSetHeaderTrailer      byte = 0x5d
	CmdSetCustomerData       byte = 0x62
	CmdOpenDrawer            byte = 0x7b
	CmdOpenDNFH              byte = 0x80
	CmdOpenCreditNote        byte = 0x80
	CmdCloseDNFH             byte = 0x81
	CmdCloseCreditNote       byte = 0x81
	CmdPrintEmbarkItem       byte = 0x82
	CmdPrintAccountItem      byte = 0x83
	CmdPrintQuotationItem    byte = 0x84
	CmdPrintDNFHInfo         byte = 0x85
	CmdCreditNoteReference   byte = 0x93
	CmdPrintReceiptText      byte = 0x97
	CmdCancelAnyDocument     byte = 0x98
	CmdReprint               byte = 0x99
)

type (
	// DocumentType tags the kind of document a façade is building.
	DocumentType string

	// Responsibility is the customer's standing before the IVA.
	Responsibility string

	// CustomerData is the record sent with SetCustomerData and consumed
	// by the next fiscal open. DocumentType here is the ID document code
	// 0..4 (L.E., L.C., D.N.I., passport, C.I.) or "C" meaning TaxID is
	// a CUIT.
	CustomerData struct {
		Name           string
		TaxID          string
		Responsibility Responsibility
		DocumentType   string
	}

	// Item is one line of a document being built by the façade.
	// Quantity and Price are exact decimals; Price is the VAT-inclusive
	// unit amount. Negative items are sent with the subtract sign.
	Item struct {
		Description string
		Quantity    decimal.Decimal
		Price       decimal.Decimal
		VATRate     decimal.Decimal
		Negative    bool
	}
)

// Document types.
const (
	DocTicket           DocumentType = "TICKET"
	DocCreditTicket     DocumentType = "CREDIT_TICKET"
	DocBillTicket       DocumentType = "BILL_TICKET"
	DocCreditBillTicket DocumentType = "CREDIT_BILL_TICKET"
	DocDebitBillTicket  DocumentType = "DEBIT_BILL_TICKET"
	DocDNFH             DocumentType = "DNFH"
	DocNonFiscal        DocumentType = "NON_FISCAL"
)

// IVA responsibility codes.
const (
	IVAResponsableInscripto   Responsibility = "I"
	IVAResponsableNoInscripto Responsibility = "N"
	IVAExento                 Responsibility = "E"
	IVANoResponsable          Responsibility = "A"
	IVAConsumidorFinal        Responsibility = "C"
	IVAResponsableMonotributo Responsibility = "M"
	IVANoInscriptoBienesDeUso Responsibility = "B"
)

var responsibilityNames = map[Responsibility]string{
	IVAResponsableInscripto:   "RESPONSABLE INSCRIPTO",
	IVAResponsableNoInscripto: "RESPONSABLE NO INSCRIPTO",
	IVAExento:                 "EXENTO",
	IVANoResponsable:          "NO RESPONSABLE",
	IVAConsumidorFinal:        "CONSUMIDOR FINAL",
	IVAResponsableMonotributo: "RESPONSABLE MONOTRIBUTO",
	IVANoInscriptoBienesDeUso: "RESPONSABLE NO INSCRIPTO, BIENES DE USO",
}

// Name returns the printed description of the responsibility code, or
// "<NO VALUE>" for codes outside the table.
func (r Responsibility) Name() string {
	if name, ok := responsibilityNames[r]; ok {
		return name
	}
	return "<NO VALUE>"
}

// Valid reports whether r is one of the known responsibility codes.
func (r Responsibility) Valid() bool {
	_, ok := responsibilityNames[r]
	return ok
}

var customerDocLabels = map[string]string{
	"0": "L.E.  ",
	"1": "L.C.  ",
	"2": "D.N.I.",
	"3": "Pasap.",
	"4": "C.I.  ",
}

// CustomerDocLabel returns the printed label of an ID document code
// (0..4). The CUIT code "C" has its own printed form and is not in this
// table.
func CustomerDocLabel(code string) (string, bool) {
	label, ok := customerDocLabels[code]
	return label, ok
}

// FiscalDocTypes are the letters accepted by OpenFiscalReceipt and the
// credit variant of OpenDNFH.
const FiscalDocTypes = "ABCTDERS"

// IsFiscalDocType reports whether letter names a fiscal document type.
func IsFiscalDocType(letter string) bool {
	if len(letter) != 1 {
		return false
	}
	for i := 0; i < len(FiscalDocTypes); i++ {
		if FiscalDocTypes[i] == letter[0] {
			return true
		}
	}
	return false
}

// IsTypeA reports whether letter is a type-A document: bill A, debit
// note A or credit note A. These carry discriminated VAT: unit amounts
// print net and the receipt prints the NETO SIN IVA / IVA lines. Totals
// still treat each item as net or gross by its own total flag.
func IsTypeA(letter string) bool {
	return letter == "A" || letter == "D" || letter == "R"
}
