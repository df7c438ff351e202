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
	"io"
	"os"
	"syscall"
	"time"

	"github.com/Golang-Argentina/hasar-fp/internal/protocol"
)

// Link timing and retry policy. A send is abandoned with a
// CommunicationError after WaitTime without progress (flow-control bytes
// extend the deadline), after more than Retries invalid reply frames,
// after more than NoReplyTries empty reads while a reply is being
// accumulated, or after more than MaxNAKs rejections of the outgoing
// frame.
const (
	WaitTime     = 10 * time.Second
	WaitCharTime = 100 * time.Millisecond
	Retries      = 4
	NoReplyTries = 200
	MaxNAKs      = 10
)

type (
	// Driver owns the serial port for its whole lifetime and runs the
	// framed exchange: write a command frame, wait for ACK, collect the
	// reply, validate its block check and sequence number, acknowledge.
	// It is not safe for concurrent use; the protocol pairs exactly one
	// reply to one request.
	Driver struct {
		port  io.ReadWriter
		codec *protocol.Codec
		seq   *protocol.SequenceNumber
	}

	DriverOption func(*Driver)
)

// WithCodec replaces the frame codec.
func WithCodec(codec *protocol.Codec) DriverOption {
	return func(d *Driver) {
		d.codec = codec
	}
}

// NewDriver returns a driver speaking over port. The sequence number is
// seeded to a random even value in [0x20, 0x7f] and advances by two
// after every successful exchange. The codec accepts the full opcode
// table; reads returning no byte are treated as an idle line.
func NewDriver(port io.ReadWriter, options ...DriverOption) *Driver {
	d := &Driver{
		port: port,
		codec: protocol.NewCodec(
			protocol.WithCommandRange(0x00, 0xff),
			protocol.WithSequenceRange(0x20, 0x7f),
		),
		seq: protocol.NewSequenceNumber(0x20, 0x7f),
	}
	d.seq.ResetEven()
	for _, option := range options {
		option(d)
	}
	return d
}

// SendCommand frames op with its fields, runs the exchange and returns
// the reply fields: printer status hex, fiscal status hex, then the
// command-specific payload. Unless skipErrors is set, an error bit in
// either status word comes back as a PrinterStatusError or
// FiscalStatusError.
func (d *Driver) SendCommand(op byte, fields []string, skipErrors bool) ([]string, error) {
	frame, err := d.codec.Build(op, d.seq.Current(), fields)
	if err != nil {
		return nil, err
	}

	reply, err := d.sendMessage(frame)
	if err != nil {
		return nil, err
	}

	_, _, replyFields, err := d.codec.Parse(reply, int(d.seq.Current()))
	if err != nil {
		return nil, &CommunicationError{Msg: "respuesta ilegible de la impresora", Err: err}
	}
	d.seq.Advance(2)

	if len(replyFields) < 2 {
		return nil, &CommunicationError{Msg: "respuesta incompleta de la impresora"}
	}
	if !skipErrors {
		if err := CheckPrinterStatus(replyFields[0]); err != nil {
			return nil, err
		}
		if err := CheckFiscalStatus(replyFields[1]); err != nil {
			return nil, err
		}
	}
	return replyFields, nil
}

// Close closes the underlying port when it supports closing.
func (d *Driver) Close() error {
	if closer, ok := d.port.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// sendMessage transmits frame and collects the validated reply frame,
// handling flow control, NAK retransmission and the bounded retry
// policy.
func (d *Driver) sendMessage(frame []byte) ([]byte, error) {
	if err := d.sendWaitACK(frame); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(WaitTime)
	retries := 0
	for {
		if time.Now().After(deadline) {
			return nil, &CommunicationError{
				Msg: "Expiró el tiempo de espera de respuesta de la impresora. Revise la conexión",
			}
		}
		c, ok, err := d.readByte()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		switch c {
		case protocol.DC2, protocol.DC4:
			// printer busy, keep waiting
			deadline = deadline.Add(WaitTime)
			continue
		case protocol.STX:
		default:
			continue
		}

		reply, err := d.readReply(c)
		if err != nil {
			return nil, err
		}

		if !protocol.CheckBCC(reply) {
			// send NAK and wait for a new answer
			if err := d.writeControl(protocol.NAK); err != nil {
				return nil, err
			}
			deadline = time.Now().Add(WaitTime)
			retries++
			if retries > Retries {
				return nil, &CommunicationError{
					Msg: "Falla de comunicación, demasiados paquetes invalidos (bad bcc).",
				}
			}
			continue
		}
		if reply[1] != d.seq.Current() {
			// the device took our message but replied stale
			if err := d.writeControl(protocol.ACK); err != nil {
				return nil, err
			}
			deadline = time.Now().Add(WaitTime)
			retries++
			if retries > Retries {
				return nil, &CommunicationError{
					Msg: "Falla de comunicación, demasiados paquetes invalidos (bad seq_no).",
				}
			}
			continue
		}

		if err := d.writeControl(protocol.ACK); err != nil {
			return nil, err
		}
		return reply, nil
	}
}

// sendWaitACK writes frame and waits for the device to acknowledge it,
// retransmitting on NAK up to MaxNAKs times.
func (d *Driver) sendWaitACK(frame []byte) error {
	for attempt := 0; ; attempt++ {
		if attempt > MaxNAKs {
			return &CommunicationError{Msg: "Demasiados NAK desde la impresora. Revise la conexión"}
		}
		if _, err := d.port.Write(frame); err != nil {
			return &CommunicationError{Msg: "falla de escritura en el puerto serie", Err: err}
		}
		deadline := time.Now().Add(WaitTime)
		nak := false
		for !nak {
			if time.Now().After(deadline) {
				return &CommunicationError{
					Msg: "Expiró el tiempo de espera de respuesta de la impresora. Revise la conexión",
				}
			}
			c, ok, err := d.readByte()
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			switch c {
			case protocol.ACK:
				return nil
			case protocol.NAK:
				nak = true
			}
		}
	}
}

// readReply accumulates reply bytes from the received STX through ETX
// plus the four block check characters.
func (d *Driver) readReply(first byte) ([]byte, error) {
	reply := []byte{first}
	noReply := 0
	next := func() (byte, error) {
		for {
			c, ok, err := d.readByte()
			if err != nil {
				return 0, err
			}
			if !ok {
				noReply++
				time.Sleep(WaitCharTime)
				if noReply > NoReplyTries {
					return 0, &CommunicationError{
						Msg: "Falla de comunicación mientras se recibía respuesta de la impresora",
					}
				}
				continue
			}
			noReply = 0
			return c, nil
		}
	}

	for reply[len(reply)-1] != protocol.ETX {
		c, err := next()
		if err != nil {
			return nil, err
		}
		reply = append(reply, c)
	}
	for i := 0; i < 4; i++ {
		c, err := next()
		if err != nil {
			return nil, err
		}
		reply = append(reply, c)
	}
	return reply, nil
}

func (d *Driver) readByte() (byte, bool, error) {
	var buf [1]byte
	n, err := d.port.Read(buf[:])
	if n == 1 {
		return buf[0], true, nil
	}
	if err == nil || isTimeout(err) {
		return 0, false, nil
	}
	return 0, false, &CommunicationError{Msg: "falla de lectura en el puerto serie", Err: err}
}

func (d *Driver) writeControl(c byte) error {
	if _, err := d.port.Write([]byte{c}); err != nil {
		return &CommunicationError{Msg: "falla de escritura en el puerto serie", Err: err}
	}
	return nil
}

func isTimeout(err error) bool {
	return os.IsTimeout(err) ||
		errors.Is(err, syscall.ETIMEDOUT) ||
		errors.Is(err, syscall.EAGAIN)
}
