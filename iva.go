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

import "github.com/shopspring/decimal"

// The modeled device charges a single flat IVA rate of 21%. All money
// moves through exact decimals; rounding happens only at render time.
var (
	// IVARate is the flat rate in percent.
	IVARate = decimal.RequireFromString("21.00")

	ivaFactor   = decimal.RequireFromString("1.21")
	ivaFraction = decimal.RequireFromString("0.21")
)

// NetAmount strips the IVA out of a gross amount: gross / 1.21.
func NetAmount(gross decimal.Decimal) decimal.Decimal {
	return gross.Div(ivaFactor)
}

// GrossAmount adds the IVA onto a net amount: net * 1.21.
func GrossAmount(net decimal.Decimal) decimal.Decimal {
	return net.Mul(ivaFactor)
}

// IVAFromGross returns the IVA contained in a gross amount:
// (gross / 1.21) * 0.21.
func IVAFromGross(gross decimal.Decimal) decimal.Decimal {
	return NetAmount(gross).Mul(ivaFraction)
}

// IVAFromNet returns the IVA charged on a net amount: net * 0.21.
func IVAFromNet(net decimal.Decimal) decimal.Decimal {
	return net.Mul(ivaFraction)
}
