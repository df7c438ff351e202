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

package protocol

import (
	"bytes"
	"fmt"
	"strings"
)

// minFrameLen is STX seq op ETX plus the four BCC characters.
const minFrameLen = 8

type (
	// Codec builds and parses frames of the form
	//
	//	STX seq op [FS field]* ETX bcc4
	//
	// where bcc4 is the uppercase hexadecimal of the low 16 bits of the
	// byte sum from STX through ETX inclusive. Opcode bounds are
	// exclusive on both ends, matching the device firmware; sequence
	// bounds are inclusive.
	Codec struct {
		cmdLo, cmdHi byte
		seqLo, seqHi byte
	}

	// Option configures a Codec.
	Option func(*Codec)
)

// WithCommandRange sets the open interval (lo, hi) of valid opcodes.
func WithCommandRange(lo, hi byte) Option {
	return func(c *Codec) {
		c.cmdLo, c.cmdHi = lo, hi
	}
}

// WithSequenceRange sets the inclusive range [lo, hi] of valid sequence
// numbers.
func WithSequenceRange(lo, hi byte) Option {
	return func(c *Codec) {
		c.seqLo, c.seqHi = lo, hi
	}
}

// NewCodec returns a Codec with the host defaults: opcodes in
// (0x20, 0x7f) and sequences in [0x20, 0x7f]. The emulator widens both
// to cover the full opcode table.
func NewCodec(options ...Option) *Codec {
	c := &Codec{
		cmdLo: 0x20, cmdHi: 0x7f,
		seqLo: 0x20, seqHi: 0x7f,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// BCC returns the four-character uppercase hexadecimal block check of b:
// the low 16 bits of the unsigned sum of its bytes.
func BCC(b []byte) string {
	var sum uint32
	for _, c := range b {
		sum += uint32(c)
	}
	return fmt.Sprintf("%04X", sum&0xffff)
}

// CheckBCC reports whether the trailing four bytes of frame match the
// block check of everything before them.
func CheckBCC(frame []byte) bool {
	if len(frame) < 4 {
		return false
	}
	content, bcc := frame[:len(frame)-4], frame[len(frame)-4:]
	return BCC(content) == strings.ToUpper(string(bcc))
}

// Build serializes op, seq and fields into a complete frame ready to put
// on the wire.
func (c *Codec) Build(op, seq byte, fields []string) ([]byte, error) {
	if seq < c.seqLo || seq > c.seqHi {
		return nil, &OutOfRangeError{What: "sequence", Value: seq, Lo: c.seqLo, Hi: c.seqHi}
	}
	if !c.commandInRange(op) {
		return nil, &OutOfRangeError{What: "command", Value: op, Lo: c.cmdLo, Hi: c.cmdHi}
	}

	var buf bytes.Buffer
	buf.WriteByte(STX)
	buf.WriteByte(seq)
	buf.WriteByte(op)
	for _, field := range fields {
		buf.WriteByte(FS)
		buf.WriteString(field)
	}
	buf.WriteByte(ETX)
	buf.WriteString(BCC(buf.Bytes()))
	return buf.Bytes(), nil
}

// Parse decodes a frame and returns its sequence number, opcode and
// field list. wantSeq, when non-negative, is the sequence number the
// caller expects; pass -1 to accept any, the way the emulator does.
//
// Validation order: block check, framing, sequence, opcode range,
// field separation.
func (c *Codec) Parse(frame []byte, wantSeq int) (seq, op byte, fields []string, err error) {
	if len(frame) < minFrameLen {
		return 0, 0, nil, &MalformedFrameError{Reason: "frame too short", Frame: frame}
	}
	if !CheckBCC(frame) {
		content := frame[:len(frame)-4]
		return 0, 0, nil, &BadBCCError{
			Received: string(frame[len(frame)-4:]),
			Expected: BCC(content),
			Frame:    frame,
		}
	}

	content := frame[: len(frame)-4 : len(frame)-4]
	if content[0] != STX {
		return 0, 0, nil, &MalformedFrameError{Reason: "STX is not the first character", Frame: frame}
	}
	if content[len(content)-1] != ETX {
		return 0, 0, nil, &MalformedFrameError{Reason: "ETX is not the last character", Frame: frame}
	}

	seq = content[1]
	if wantSeq >= 0 && seq != byte(wantSeq) {
		return 0, 0, nil, &SequenceMismatchError{Got: seq, Want: byte(wantSeq)}
	}

	op = content[2]
	if !c.commandInRange(op) {
		return 0, 0, nil, &OutOfRangeError{What: "command", Value: op, Lo: c.cmdLo, Hi: c.cmdHi}
	}

	payload := content[3 : len(content)-1]
	if len(payload) == 0 {
		return seq, op, []string{}, nil
	}
	if payload[0] != FS {
		return 0, 0, nil, &MalformedFrameError{Reason: "FS is not the first character of the parameter substring", Frame: frame}
	}
	fields = strings.Split(string(payload[1:]), string(FS))
	return seq, op, fields, nil
}

func (c *Codec) commandInRange(op byte) bool {
	return c.cmdLo < op && op < c.cmdHi
}
