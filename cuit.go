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

var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// ValidCUIT reports whether cuit is a well-formed 11-digit CUIT whose
// check digit matches: with s the weighted sum of the first ten digits,
// r = 11 - (s mod 11), folding 11 to 0 and 10 to 9, the CUIT is valid
// iff r equals the eleventh digit.
func ValidCUIT(cuit string) bool {
	if len(cuit) != 11 {
		return false
	}
	sum := 0
	for i := 0; i < 10; i++ {
		d := cuit[i]
		if d < '0' || d > '9' {
			return false
		}
		sum += int(d-'0') * cuitWeights[i]
	}
	check := cuit[10]
	if check < '0' || check > '9' {
		return false
	}
	r := 11 - sum%11
	if r == 11 {
		r = 0
	}
	if r == 10 {
		r = 9
	}
	return r == int(check-'0')
}

// FormatCUIT renders an 11-digit CUIT in the printed XX-XXXXXXXX-X
// form. Strings of any other length come back unchanged.
func FormatCUIT(cuit string) string {
	if len(cuit) != 11 {
		return cuit
	}
	return cuit[:2] + "-" + cuit[2:10] + "-" + cuit[10:]
}
