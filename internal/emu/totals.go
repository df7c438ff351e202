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
	"github.com/shopspring/decimal"

	hasar "github.com/Golang-Argentina/hasar-fp"
)

// totals aggregates the open document's item list. Sale lines
// contribute qty * gross amount and their VAT with sign; discounts
// contribute their stored amount as-is. The item count moves one per
// sale line, signed.
func (d *Device) totals() (total decimal.Decimal, itemsCount int, iva decimal.Decimal) {
	for _, entry := range d.current.items {
		switch item := entry.(type) {
		case *fiscalItem:
			var unitIVA, unitAmount decimal.Decimal
			if item.gross {
				unitIVA = hasar.IVAFromGross(item.amount)
				unitAmount = item.amount
			} else {
				unitIVA = hasar.IVAFromNet(item.amount)
				unitAmount = hasar.GrossAmount(item.amount)
			}
			switch item.sign {
			case "M":
				total = total.Add(item.qty.Mul(unitAmount))
				iva = iva.Add(unitIVA.Mul(item.qty))
				itemsCount++
			case "m":
				total = total.Sub(item.qty.Mul(unitAmount))
				iva = iva.Sub(unitIVA.Mul(item.qty))
				itemsCount--
			}
		case *discountItem:
			var itemIVA decimal.Decimal
			if item.gross {
				itemIVA = hasar.IVAFromGross(item.amount)
			} else {
				itemIVA = hasar.IVAFromNet(item.amount)
			}
			switch item.sign {
			case "M":
				total = total.Add(item.amount)
				iva = iva.Add(itemIVA)
			case "m":
				total = total.Sub(item.amount)
				iva = iva.Sub(itemIVA)
			}
		}
	}
	return total, itemsCount, iva
}

// printTotals renders the totals block once per document: the
// discriminated NETO SIN IVA / IVA lines on type-A documents, then the
// double-wide TOTAL line.
func (d *Device) printTotals() {
	if d.totalPrinted {
		return
	}
	d.totalPrinted = true
	total, _, iva := d.totals()

	if hasar.IsTypeA(d.current.letter) {
		d.blankLine()
		d.printLine(ljust("NETO SIN IVA", 30)+rjust(hasar.NetAmount(total).StringFixed(2), 10), AlignLeft)
		d.printLine(ljust("IVA 21.00 %", 30)+rjust(iva.StringFixed(2), 10), AlignLeft)
	}
	d.blankLine()
	d.out.WriteLine(string([]byte{doubleWide})+"TOTAL"+rjust(" "+total.StringFixed(2), 15), AlignLeft)
}
