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
	serial "github.com/daedaluz/goserial"
)

// OpenSerial opens path as a raw 9600 8N1 serial port suitable for
// NewDriver. Reads time out after WaitCharTime so the driver's deadline
// loops keep turning; a timed-out read counts as an idle line.
func OpenSerial(path string) (*serial.Port, error) {
	port, err := serial.Open(path, serial.NewOptions().SetReadTimeout(WaitCharTime))
	if err != nil {
		return nil, err
	}
	attrs, err := port.GetAttr()
	if err != nil {
		port.Close()
		return nil, err
	}
	attrs.MakeRaw()
	attrs.SetSpeed(serial.B9600)
	if err := port.SetAttr(serial.TCSANOW, attrs); err != nil {
		port.Close()
		return nil, err
	}
	return port, nil
}
