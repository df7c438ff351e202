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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Golang-Argentina/hasar-fp/internal/protocol"
)

type (
	// Wrapper is the device-side link layer: it reads frames off the
	// port, acknowledges them, hands the command to the device and
	// writes the reply back with the same sequence number, waiting for
	// the host's trailing acknowledgement.
	Wrapper struct {
		port  io.ReadWriter
		dev   *Device
		codec *protocol.Codec
		logw  io.Writer
	}

	WrapperOption func(*Wrapper)
)

// WithWrapperLog redirects the link loop's operator messages.
func WithWrapperLog(w io.Writer) WrapperOption {
	return func(wr *Wrapper) {
		wr.logw = w
	}
}

// NewWrapper returns a link loop joining port and dev. The codec runs
// with the device ranges: opcodes 0x01..0xfe, any sequence.
func NewWrapper(port io.ReadWriter, dev *Device, options ...WrapperOption) *Wrapper {
	w := &Wrapper{
		port: port,
		dev:  dev,
		codec: protocol.NewCodec(
			protocol.WithCommandRange(0x00, 0xff),
			protocol.WithSequenceRange(0x00, 0xff),
		),
		logw: os.Stderr,
	}
	for _, option := range options {
		option(w)
	}
	return w
}

// transmissionError is a low level framing problem on the incoming
// byte stream; the loop answers it with NAK and keeps reading.
type transmissionError struct {
	b byte
}

func (e *transmissionError) Error() string {
	return fmt.Sprintf("not STX received, instead %q (0x%02x)", e.b, e.b)
}

// Loop runs the protocol until the port closes. A clean end of stream
// returns nil; any other I/O failure comes back to the caller.
func (w *Wrapper) Loop() error {
	for {
		frame, err := w.readFrame()
		if err != nil {
			var te *transmissionError
			if errors.As(err, &te) {
				w.logf("Bad Request: %v", te)
				if err := w.writeControl(protocol.NAK); err != nil {
					return err
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				w.logf("Closed port by external process (finishing...)")
				return nil
			}
			return err
		}

		seq, op, params, err := w.codec.Parse(frame, -1)
		if err != nil {
			w.logf("Bad Request: %v", err)
			if err := w.writeControl(protocol.NAK); err != nil {
				return err
			}
			continue
		}
		if err := w.writeControl(protocol.ACK); err != nil {
			return err
		}

		fields := w.dev.Dispatch(op, params)
		reply, err := w.codec.Build(op, seq, fields)
		if err != nil {
			w.logf("could not frame reply: %v", err)
			continue
		}
		if err := w.write(reply); err != nil {
			return err
		}
	}
}

// readFrame reads one request off the wire: a stray ACK is echoed, an
// STX starts frame accumulation through ETX plus the four block check
// characters, anything else is a transmission error.
func (w *Wrapper) readFrame() ([]byte, error) {
	for {
		b, err := w.readByte()
		if err != nil {
			return nil, err
		}
		switch b {
		case protocol.ACK:
			if err := w.writeControl(protocol.ACK); err != nil {
				return nil, err
			}
			continue
		case protocol.STX:
		default:
			return nil, &transmissionError{b: b}
		}

		frame := []byte{b}
		for frame[len(frame)-1] != protocol.ETX {
			c, err := w.readByte()
			if err != nil {
				return nil, err
			}
			frame = append(frame, c)
		}
		for i := 0; i < 4; i++ {
			c, err := w.readByte()
			if err != nil {
				return nil, err
			}
			frame = append(frame, c)
		}
		return frame, nil
	}
}

// write sends the reply and waits for the host's trailing ACK,
// retransmitting while the host answers NAK.
func (w *Wrapper) write(frame []byte) error {
	for {
		if _, err := w.port.Write(frame); err != nil {
			return err
		}
		b, err := w.readByte()
		if err != nil {
			return err
		}
		switch b {
		case protocol.ACK:
			return nil
		case protocol.NAK:
			w.logf("NAK received, resending message.")
		default:
			w.logf("unknown response 0x%02x to reply, dropping", b)
			return nil
		}
	}
}

func (w *Wrapper) readByte() (byte, error) {
	var buf [1]byte
	for {
		n, err := w.port.Read(buf[:])
		if n == 1 {
			return buf[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

func (w *Wrapper) writeControl(c byte) error {
	_, err := w.port.Write([]byte{c})
	return err
}

func (w *Wrapper) logf(format string, args ...any) {
	fmt.Fprintf(w.logw, format+"\n", args...)
}
