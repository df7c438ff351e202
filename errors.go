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
	"strconv"
)

type (
	// CommunicationError is fatal to the current exchange: exhausted
	// retries, timeouts or too many NAKs. The caller decides whether to
	// retry at a higher level or close the port.
	CommunicationError struct {
		Msg string
		Err error
	}

	// PrinterStatusError reports an error bit raised in the printer
	// status word of a reply.
	PrinterStatusError struct {
		Status string
		Msg    string
	}

	// FiscalStatusError reports an error bit raised in the fiscal
	// status word of a reply.
	FiscalStatusError struct {
		Status string
		Msg    string
	}

	statusMessage struct {
		mask uint16
		msg  string
	}
)

func (e *CommunicationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err.Error())
	}
	return e.Msg
}

// Unwrap returns the underlying error, if any.
func (e *CommunicationError) Unwrap() error {
	return e.Err
}

func (e *PrinterStatusError) Error() string {
	return fmt.Sprintf("%s (estado impresora %s)", e.Msg, e.Status)
}

func (e *FiscalStatusError) Error() string {
	return fmt.Sprintf("%s (estado fiscal %s)", e.Msg, e.Status)
}

// IsCommunicationError returns true if the error is a CommunicationError.
func IsCommunicationError(err error) bool {
	commErr := &CommunicationError{}
	return errors.As(err, &commErr)
}

// IsStatusError returns true if the error reports an error bit in
// either status word of a reply.
func IsStatusError(err error) bool {
	prnErr := &PrinterStatusError{}
	fisErr := &FiscalStatusError{}
	return errors.As(err, &prnErr) || errors.As(err, &fisErr)
}

// Operator-facing messages for the fiscal status bits the driver treats
// as errors. The bits not listed here (certification, open-document
// tracking, quick check) are informational.
var fiscalStatusMessages = []statusMessage{
	{1 << 0, "Error en memoria fiscal"},
	{1 << 1, "Error en comprobación en memoria de trabajo"},
	{1 << 2, "Poca batería"},
	{1 << 3, "Comando no reconocido"},
	{1 << 4, "Campo de datos no válido"},
	{1 << 5, "Comando no válido para el estado fiscal"},
	{1 << 6, "Desbordamiento de totales"},
	{1 << 7, "Memoria fiscal llena"},
	{1 << 8, "Memoria fiscal casi llena"},
	{1 << 11, "Es necesario hacer un cierre de jornada fiscal o se superó la cantidad de tickets en una factura."},
}

var printerStatusMessages = []statusMessage{
	{1 << 2, "Error y/o falla de la impresora"},
	{1 << 3, "Impresora fuera de línea"},
	{1 << 6, "Buffer de impresora lleno"},
	{1 << 8, "Tapa de impresora abierta"},
}

// CheckFiscalStatus inspects the four-character hex fiscal status word
// of a reply and returns a FiscalStatusError for the first error bit
// found, or nil.
func CheckFiscalStatus(status string) error {
	value, err := strconv.ParseUint(status, 16, 32)
	if err != nil {
		return &FiscalStatusError{Status: status, Msg: "estado fiscal ilegible"}
	}
	for _, sm := range fiscalStatusMessages {
		if uint16(value)&sm.mask == sm.mask {
			return &FiscalStatusError{Status: status, Msg: sm.msg}
		}
	}
	return nil
}

// CheckPrinterStatus inspects the four-character hex printer status
// word of a reply and returns a PrinterStatusError for the first error
// bit found, or nil.
func CheckPrinterStatus(status string) error {
	value, err := strconv.ParseUint(status, 16, 32)
	if err != nil {
		return &PrinterStatusError{Status: status, Msg: "estado de impresora ilegible"}
	}
	for _, sm := range printerStatusMessages {
		if uint16(value)&sm.mask == sm.mask {
			return &PrinterStatusError{Status: status, Msg: sm.msg}
		}
	}
	return nil
}
