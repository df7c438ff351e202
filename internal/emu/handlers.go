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

package emu

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	hasar "github.com/Golang-Argentina/hasar-fp"
	"github.com/Golang-Argentina/hasar-fp/internal/status"
)

type handler struct {
	name string
	fn   func(*Device, []string) ([]string, error)
}

func stub(name string) handler {
	return handler{
		name: name,
		fn: func(d *Device, params []string) ([]string, error) {
			return nil, notImplemented("'%s' todavia no se implementa", name)
		},
	}
}

// commandTable maps every opcode of the modeled subset to its handler.
// Built once; admissibility is checked inside each handler.
var commandTable = map[byte]handler{
	hasar.CmdStatusRequest:         {"StatusRequest", (*Device).statusRequest},
	hasar.CmdDailyClose:            {"DailyClose", (*Device).dailyClose},
	hasar.CmdOpenFiscalReceipt:     {"OpenFiscalReceipt", (*Device).openFiscalReceipt},
	hasar.CmdPrintFiscalText:       {"PrintFiscalText", (*Device).printFiscalText},
	hasar.CmdPrintLineItem:         {"PrintLineItem", (*Device).printLineItem},
	hasar.CmdSubtotal:              {"Subtotal", (*Device).subtotal},
	hasar.CmdTotalTender:           {"TotalTender", (*Device).totalTender},
	hasar.CmdCloseFiscalReceipt:    {"CloseFiscalReceipt", (*Device).closeFiscalReceipt},
	hasar.CmdOpenNonFiscalReceipt:  {"OpenNonFiscalReceipt", (*Device).openNonFiscalReceipt},
	hasar.CmdPrintNonFiscalText:    {"PrintNonFiscalText", (*Device).printNonFiscalText},
	hasar.CmdCloseNonFiscalReceipt: {"CloseNonFiscalReceipt", (*Device).closeNonFiscalReceipt},
	hasar.CmdGeneralDiscount:       {"GeneralDiscount", (*Device).generalDiscount},
	hasar.CmdLastItemDiscount:      stub("LastItemDiscount"),
	hasar.CmdSetDateTime:           {"SetDateTime", (*Device).setDateTime},
	hasar.CmdGetDateTime:           {"GetDateTime", (*Device).getDateTime},
	hasar.CmdSetHeaderTrailer:      {"SetHeaderTrailer", (*Device).setHeaderTrailer},
	hasar.CmdSetCustomerData:       {"SetCustomerData", (*Device).setCustomerData},
	hasar.CmdOpenDrawer:            {"OpenDrawer", (*Device).openDrawer},
	hasar.CmdOpenDNFH:              {"OpenDNFH", (*Device).openDNFH},
	hasar.CmdCloseDNFH:             {"CloseDNFH", (*Device).closeDNFH},
	hasar.CmdPrintEmbarkItem:       stub("PrintEmbarkItem"),
	hasar.CmdPrintAccountItem:      stub("PrintAccountItem"),
	hasar.CmdPrintQuotationItem:    stub("PrintQuotationItem"),
	hasar.CmdPrintDNFHInfo:         stub("PrintDNFHInfo"),
	hasar.CmdCreditNoteReference:   {"CreditNoteReference", (*Device).creditNoteReference},
	hasar.CmdPrintReceiptText:      stub("PrintReceiptText"),
	hasar.CmdCancelAnyDocument:     {"CancelAnyDocument", (*Device).cancelAnyDocument},
	hasar.CmdReprint:               stub("Reprint"),
}

func (d *Device) statusRequest(params []string) ([]string, error) {
	return nil, nil
}

func (d *Device) setDateTime(params []string) ([]string, error) {
	if d.current != nil {
		return nil, notValidCommand("existe un documento abierto")
	}
	if len(params) != 2 {
		return nil, notValidData("cantidad de parametros incorrectos (%d)", len(params))
	}
	when, err := time.Parse("060102 150405", params[0]+" "+params[1])
	if err != nil {
		d.fiscal.Set(status.BadDate)
		return nil, notValidData("error en el ingreso de fecha: '%s|%s'", params[0], params[1])
	}
	d.fiscal.Unset(status.BadDate)
	d.logf("[INFO] * Setting time to %s", when.Format(time.RFC3339))
	return nil, nil
}

func (d *Device) getDateTime(params []string) ([]string, error) {
	now := d.now()
	return []string{now.Format("060102"), now.Format("150405")}, nil
}

func (d *Device) setCustomerData(params []string) ([]string, error) {
	if d.current != nil {
		return nil, notValidCommand("existe un documento abierto")
	}
	if len(params) != 4 {
		return nil, notValidData("cantidad de parametros incorrectos (%d)", len(params))
	}
	data := hasar.CustomerData{
		Name:           params[0],
		TaxID:          params[1],
		Responsibility: hasar.Responsibility(params[2]),
		DocumentType:   params[3],
	}
	if data.DocumentType == "C" && !hasar.ValidCUIT(data.TaxID) {
		d.customer = nil
		return nil, notValidData("CUIT inválido (%s)", data.TaxID)
	}
	d.customer = &data
	return nil, nil
}

func (d *Device) setHeaderTrailer(params []string) ([]string, error) {
	if d.current != nil {
		return nil, notValidCommand("existe un documento abierto")
	}
	if len(params) != 2 {
		return nil, notValidData("cantidad de parametros incorrectos (%d)", len(params))
	}
	line, err := strconv.Atoi(params[0])
	if err != nil || line < 1 || line > len(d.headerTrailer) {
		return nil, notValidData("número de línea no válido (%s)", params[0])
	}
	text := params[1]
	if text == "\x7f" {
		d.headerTrailer[line] = ""
		return nil, nil
	}
	if len(text) > LineWidth {
		text = text[:LineWidth]
	}
	d.headerTrailer[line] = text
	return nil, nil
}

func (d *Device) openFiscalReceipt(params []string) ([]string, error) {
	if d.current != nil {
		return nil, notValidCommand("ya existe un documento abierto")
	}
	if len(params) < 2 {
		return nil, notValidData("cantidad de parametros incorrectos (%d)", len(params))
	}
	letter := params[0]
	if !hasar.IsFiscalDocType(letter) {
		return nil, notValidData("tipo de comprobante no válido (%s)", letter)
	}
	return d.openFiscal(letter, docFiscal, "TIQUE FACTURA")
}

// openFiscal runs the shared open path of fiscal receipts and credit
// notes: admissibility, numbering, the printed header block, and the
// consumption of the stored customer record.
func (d *Device) openFiscal(letter string, kind docKind, title string) ([]string, error) {
	if hasar.IsTypeA(letter) {
		if d.customer == nil {
			return nil, notValidCommand("no se habian ingresado los datos del cliente")
		}
		if r := d.customer.Responsibility; r != hasar.IVAResponsableInscripto &&
			r != hasar.IVAResponsableNoInscripto {
			return nil, notValidCommand("el cliente no cumple los requisitos para este comprobante")
		}
	}
	d.current = &document{kind: kind, letter: letter, number: d.lastNumber[letter] + 1}

	d.printCutStart()
	for _, i := range []int{1, 2} {
		d.printLine(d.fantasy[i], AlignLeft)
	}
	d.printLine(d.eprom.RazonSocial, AlignLeft)
	d.printLine("C.U.I.T. Nro : "+d.eprom.CUIT, AlignLeft)
	d.printLine(" INGRESOS BRUTOS : "+d.eprom.IB, AlignLeft)
	for _, i := range []int{1, 2, 3, 4} {
		d.printLine(d.headerTrailer[i], AlignLeft)
	}
	d.printLine("INICIO DE ACTIVIDADES : "+d.eprom.Inicio, AlignLeft)
	d.printLine("IVA RESPONSABLE INSCRIPTO", AlignLeft)
	for _, i := range []int{5, 6, 7} {
		d.printLine(d.headerTrailer[i], AlignLeft)
	}
	d.printSeparator()
	d.printLine(fmt.Sprintf("%s   %s  Nro.%04d-%08d",
		title, bold(fmt.Sprintf("\" %s \"", letter)), d.eprom.PV, d.current.number), AlignLeft)
	d.printDateTime()
	d.printSeparator()

	responsibility := hasar.IVAConsumidorFinal
	if d.customer != nil {
		responsibility = d.customer.Responsibility
		d.printLine(d.customer.Name, AlignLeft)
		if d.customer.DocumentType == "C" {
			d.printLine("CUIT  : "+hasar.FormatCUIT(d.customer.TaxID), AlignLeft)
		} else if label, ok := hasar.CustomerDocLabel(d.customer.DocumentType); ok {
			d.printLine(label+": "+d.customer.TaxID, AlignLeft)
		}
	}
	d.printLine("A "+responsibility.Name(), AlignLeft)
	for _, i := range []int{8, 9, 10} {
		d.printLine(d.headerTrailer[i], AlignLeft)
	}
	d.printSeparator()
	d.printLine("CANTIDAD/PRECIO UNIT (% IVA)", AlignLeft)
	d.printLine("DESCRIPCION          [%B.I.]     IMPORTE", AlignLeft)
	d.printSeparator()

	d.customer = nil
	d.canAddItem = true
	return nil, nil
}

func (d *Device) printFiscalText(params []string) ([]string, error) {
	if d.current == nil {
		return nil, notValidCommand("no hay un documento abierto")
	}
	if len(params) != 2 {
		return nil, notValidData("cantidad de parametros incorrectos (%d)", len(params))
	}
	limit := 3
	if d.current.letter == "T" {
		limit = 2
	}
	if len(d.fiscalText) >= limit {
		return nil, notValidCommand("se excede la cantidad de 'PrintFiscalText' permitidos")
	}
	text := params[0]
	if len(text) > 28 {
		text = text[:28]
	}
	d.fiscalText = append(d.fiscalText, text)
	return nil, nil
}

func (d *Device) printLineItem(params []string) ([]string, error) {
	if d.current == nil {
		return nil, notValidCommand("no hay documento abierto")
	}
	if !d.canAddItem {
		return nil, notValidCommand("no se pueden agregar mas items")
	}
	if len(params) != 8 {
		return nil, notValidData("cantidad de parametros incorrectos (%d)", len(params))
	}
	desc, display := params[0], params[6]

	// the firmware overloads the VAT field to route a discount
	if params[3] == "**.**" {
		return d.generalDiscount([]string{desc, params[2], params[4], display, "T"})
	}

	qty, err := decimal.NewFromString(params[1])
	if err != nil {
		return nil, notValidData("cantidad no válida (%s)", params[1])
	}
	amount, err := decimal.NewFromString(params[2])
	if err != nil {
		return nil, notValidData("monto no válido (%s)", params[2])
	}
	vat, err := decimal.NewFromString(params[3])
	if err != nil {
		return nil, notValidData("alicuota no válida (%s)", params[3])
	}
	k, err := decimal.NewFromString(params[5])
	if err != nil {
		return nil, notValidData("coeficiente no válido (%s)", params[5])
	}

	item := &fiscalItem{
		desc:   desc,
		qty:    qty,
		amount: amount,
		vat:    vat,
		k:      k,
		sign:   params[4],
		gross:  params[7] == "T",
	}
	d.current.items = append(d.current.items, item)

	shown := d.displayAmount(item)
	d.printLine(ljust(qty.StringFixed(3)+" / "+shown.StringFixed(2), 22)+
		ljust("("+padRate(vat)+")", 18), AlignLeft)
	for _, text := range d.fiscalText {
		d.printLine(text, AlignLeft)
	}
	d.fiscalText = nil
	d.printLine(ljust(desc, 22)+rjust(strings.Repeat(" ", 7), 8)+
		rjust(shown.Mul(qty).StringFixed(2), 10), AlignLeft)
	return nil, nil
}

// displayAmount converts the stored unit amount for display: type-A
// documents print net amounts, the rest print gross.
func (d *Device) displayAmount(item *fiscalItem) decimal.Decimal {
	typeA := hasar.IsTypeA(d.current.letter)
	switch {
	case item.gross && typeA:
		return hasar.NetAmount(item.amount)
	case !item.gross && !typeA:
		return hasar.GrossAmount(item.amount)
	default:
		return item.amount
	}
}

// padRate renders a VAT rate zero-padded to five cells: (21.00), (09.50).
func padRate(rate decimal.Decimal) string {
	s := rate.StringFixed(2)
	for len(s) < 5 {
		s = "0" + s
	}
	return s
}

func (d *Device) generalDiscount(params []string) ([]string, error) {
	if d.current == nil {
		return nil, notValidCommand("no hay documento abierto")
	}
	if len(d.current.items) < 1 {
		return nil, notValidCommand("no hubo una venta previa")
	}
	if len(params) != 5 {
		return nil, notValidData("cantidad de parametros incorrectos (%d)", len(params))
	}
	amount, err := decimal.NewFromString(params[1])
	if err != nil {
		return nil, notValidData("monto no válido (%s)", params[1])
	}
	item := &discountItem{
		desc:   params[0],
		amount: amount,
		sign:   params[2],
		gross:  params[4] == "T",
	}
	d.current.items = append(d.current.items, item)

	shown := item.amount
	if item.sign != "M" {
		shown = shown.Neg()
	}
	d.printLine(ljust(item.desc, 30)+rjust(shown.StringFixed(2), 10), AlignLeft)
	d.canAddItem = false
	return nil, nil
}

func (d *Device) subtotal(params []string) ([]string, error) {
	if d.current == nil {
		return nil, notValidCommand("no hay documento abierto")
	}
	if len(params) != 3 {
		return nil, notValidData("cantidad de parametros incorrectos (%d)", len(params))
	}
	total, items, _ := d.totals()
	return []string{
		strconv.Itoa(items),
		total.StringFixed(2),
		"0", "0", "0", "0",
	}, nil
}

func (d *Device) totalTender(params []string) ([]string, error) {
	if d.current == nil {
		return nil, notValidCommand("no hay documento abierto")
	}
	if len(params) < 4 {
		return nil, notValidData("cantidad de parametros incorrectos (%d)", len(params))
	}
	text, op := params[0], params[2]
	if op != "T" {
		return nil, notImplemented("esta opcion todavia no se implementa")
	}
	amount, err := decimal.NewFromString(params[1])
	if err != nil {
		return nil, notValidData("monto no válido (%s)", params[1])
	}
	d.printTotals()
	d.printLine("RECIBI/MOS", AlignLeft)
	d.printLine(ljust(text, 30)+rjust(amount.StringFixed(2), 10), AlignLeft)
	return []string{"0.0"}, nil
}

func (d *Device) closeFiscalReceipt(params []string) ([]string, error) {
	if d.current == nil || !d.current.fiscalKind() {
		return nil, notValidCommand("no hay documento abierto")
	}
	d.printTotals()
	for _, i := range []int{11, 12, 13, 14} {
		d.printLine(d.headerTrailer[i], AlignLeft)
	}
	d.printLine(bold("  CF")+"      V: 01.02", AlignLeft)
	d.printLine(bold(" DGI")+"      Reg.:NNG0003137", AlignLeft)
	d.printCutEnd()

	n := d.current.number
	d.lastNumber[d.current.letter] = n
	d.cleanWorkMemory()
	return []string{strconv.Itoa(n)}, nil
}

func (d *Device) openNonFiscalReceipt(params []string) ([]string, error) {
	if d.current != nil {
		return nil, notValidCommand("ya existe un documento abierto")
	}
	d.current = &document{kind: docNonFiscal, letter: "NF", number: d.lastNumber["NF"] + 1}
	d.printCutStart()
	d.printLine("DOCUMENTO NO FISCAL", AlignCenter)
	d.printDateTime()
	d.printSeparator()
	return nil, nil
}

func (d *Device) printNonFiscalText(params []string) ([]string, error) {
	if d.current == nil || d.current.kind != docNonFiscal {
		return nil, notValidCommand("no hay un documento no fiscal abierto")
	}
	if len(params) < 1 {
		return nil, notValidData("cantidad de parametros incorrectos (%d)", len(params))
	}
	text := params[0]
	if len(text) > LineWidth {
		text = text[:LineWidth]
	}
	d.printLine(text, AlignLeft)
	return nil, nil
}

func (d *Device) closeNonFiscalReceipt(params []string) ([]string, error) {
	if d.current == nil || d.current.kind != docNonFiscal {
		return nil, notValidCommand("no hay un documento no fiscal abierto")
	}
	d.printSeparator()
	d.printCutEnd()
	n := d.current.number
	d.lastNumber[d.current.letter] = n
	d.cleanWorkMemory()
	return []string{strconv.Itoa(n)}, nil
}

func (d *Device) dailyClose(params []string) ([]string, error) {
	if d.current != nil {
		return nil, notValidCommand("existe un documento abierto")
	}
	if len(params) != 1 {
		return nil, notValidData("cantidad de parametros incorrectos (%d)", len(params))
	}
	closeType := params[0]
	if closeType != "Z" && closeType != "X" {
		return nil, notValidData("tipo de cierre no válido (%s)", closeType)
	}
	d.logf("DailyClose('%s') requested", closeType)
	return nil, nil
}

func (d *Device) openDNFH(params []string) ([]string, error) {
	if d.current != nil {
		return nil, notValidCommand("ya existe un documento abierto")
	}
	if len(params) < 2 {
		return nil, notValidData("cantidad de parametros incorrectos (%d)", len(params))
	}
	letter := params[0]
	switch letter {
	case "r":
		d.current = &document{kind: docDNFH, letter: letter, number: d.lastNumber[letter] + 1}
		d.printCutStart()
		d.printLine(fmt.Sprintf("RECIBO          %s  Nro.%04d-%08d",
			bold("\" r \""), d.eprom.PV, d.current.number), AlignLeft)
		d.printDateTime()
		d.printSeparator()
		d.canAddItem = true
		return nil, nil
	case "R", "S":
		return d.openFiscal(letter, docCredit, "NOTA DE CREDITO")
	default:
		return nil, notValidData("tipo de comprobante no válido (%s)", letter)
	}
}

func (d *Device) creditNoteReference(params []string) ([]string, error) {
	if d.current != nil && d.current.kind != docCredit {
		return nil, notValidCommand("no válido para el documento abierto")
	}
	d.creditRef = strings.Join(params, " ")
	return nil, nil
}

func (d *Device) closeDNFH(params []string) ([]string, error) {
	if d.current == nil {
		return nil, notValidCommand("no hay documento abierto")
	}
	switch d.current.kind {
	case docCredit:
		return d.closeFiscalReceipt(params)
	case docDNFH:
		d.printSeparator()
		d.printCutEnd()
		n := d.current.number
		d.lastNumber[d.current.letter] = n
		d.cleanWorkMemory()
		return []string{strconv.Itoa(n)}, nil
	default:
		return nil, notValidCommand("no válido para el documento abierto")
	}
}

func (d *Device) cancelAnyDocument(params []string) ([]string, error) {
	if d.current == nil {
		return nil, notValidCommand("no hay documento abierto")
	}
	d.out.WriteLine(string([]byte{doubleWide})+"CANCELADO", AlignLeft)
	d.printCutEnd()
	d.cleanWorkMemory()
	return nil, nil
}

func (d *Device) openDrawer(params []string) ([]string, error) {
	d.logf("[INFO] * Drawer opened")
	return nil, nil
}
