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
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Golang-Argentina/hasar-fp/internal/protocol"
)

// scriptPort is an in-memory port driven by a callback: every write is
// recorded and may enqueue the bytes the next reads will return. An
// empty queue reads as an idle line.
type scriptPort struct {
	reads   []byte
	writes  [][]byte
	onWrite func(p *scriptPort, data []byte)
}

func (p *scriptPort) Read(b []byte) (int, error) {
	if len(p.reads) == 0 {
		return 0, nil
	}
	b[0] = p.reads[0]
	p.reads = p.reads[1:]
	return 1, nil
}

func (p *scriptPort) Write(b []byte) (int, error) {
	data := append([]byte(nil), b...)
	p.writes = append(p.writes, data)
	if p.onWrite != nil {
		p.onWrite(p, data)
	}
	return len(b), nil
}

func (p *scriptPort) countWrites(b byte) int {
	n := 0
	for _, w := range p.writes {
		if len(w) == 1 && w[0] == b {
			n++
		}
	}
	return n
}

func replyCodec() *protocol.Codec {
	return protocol.NewCodec(
		protocol.WithCommandRange(0x00, 0xff),
		protocol.WithSequenceRange(0x20, 0x7f),
	)
}

func TestSendCommandStatusRoundTrip(t *testing.T) {
	t.Parallel()
	codec := replyCodec()
	port := &scriptPort{}
	port.onWrite = func(p *scriptPort, data []byte) {
		if len(data) == 1 {
			return // control byte
		}
		reply, err := codec.Build(CmdStatusRequest, data[1], []string{"0000", "0600"})
		if err != nil {
			t.Errorf("building scripted reply: %v", err)
			return
		}
		p.reads = append(p.reads, protocol.ACK)
		p.reads = append(p.reads, reply...)
	}

	d := NewDriver(port)
	before := d.seq.Current()
	fields, err := d.SendCommand(CmdStatusRequest, nil, false)
	if err != nil {
		t.Fatalf("SendCommand() error = %v", err)
	}
	want := []string{"0000", "0600"}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("SendCommand() fields mismatch (-want +got):\n%s", diff)
	}

	// the final write is the host's ACK of the reply
	last := port.writes[len(port.writes)-1]
	if len(last) != 1 || last[0] != protocol.ACK {
		t.Errorf("last write = %v, want ACK", last)
	}

	// the sequence advanced by two, staying even
	after := d.seq.Current()
	expected := before + 2
	if before >= 0x7e {
		expected = 0x20
	}
	if after != expected {
		t.Errorf("sequence after send = 0x%02x, want 0x%02x", after, expected)
	}
}

func TestSendCommandBadBCCRetries(t *testing.T) {
	t.Parallel()
	codec := replyCodec()
	port := &scriptPort{}
	var lastSeq byte
	corrupted := func(seq byte) []byte {
		reply, _ := codec.Build(CmdStatusRequest, seq, []string{"0000", "0600"})
		reply[len(reply)-1] ^= 0x01
		return reply
	}
	port.onWrite = func(p *scriptPort, data []byte) {
		switch {
		case len(data) > 1:
			lastSeq = data[1]
			p.reads = append(p.reads, protocol.ACK)
			p.reads = append(p.reads, corrupted(lastSeq)...)
		case data[0] == protocol.NAK:
			p.reads = append(p.reads, corrupted(lastSeq)...)
		}
	}

	d := NewDriver(port)
	_, err := d.SendCommand(CmdStatusRequest, nil, false)
	if err == nil {
		t.Fatal("SendCommand() error = nil, want communication error")
	}
	if !IsCommunicationError(err) {
		t.Fatalf("SendCommand() error = %v, want CommunicationError", err)
	}
	if !strings.Contains(err.Error(), "bad bcc") {
		t.Errorf("error %q does not name bad bcc", err)
	}
	if got := port.countWrites(protocol.NAK); got != 5 {
		t.Errorf("host sent %d NAKs, want 5 (Retries+1)", got)
	}
}

func TestSendCommandStaleSequenceRetries(t *testing.T) {
	t.Parallel()
	codec := replyCodec()
	port := &scriptPort{}
	var lastSeq byte
	stale := func(seq byte) []byte {
		reply, _ := codec.Build(CmdStatusRequest, seq+1, []string{"0000", "0600"})
		return reply
	}
	port.onWrite = func(p *scriptPort, data []byte) {
		switch {
		case len(data) > 1:
			lastSeq = data[1]
			p.reads = append(p.reads, protocol.ACK)
			p.reads = append(p.reads, stale(lastSeq)...)
		case data[0] == protocol.ACK:
			// the host took the stale reply; give it another one
			p.reads = append(p.reads, stale(lastSeq)...)
		}
	}

	d := NewDriver(port)
	_, err := d.SendCommand(CmdStatusRequest, nil, false)
	if err == nil || !strings.Contains(err.Error(), "bad seq_no") {
		t.Errorf("SendCommand() error = %v, want bad seq_no communication error", err)
	}
}

func TestSendCommandTooManyNAKs(t *testing.T) {
	t.Parallel()
	port := &scriptPort{}
	port.onWrite = func(p *scriptPort, data []byte) {
		if len(data) > 1 {
			p.reads = append(p.reads, protocol.NAK)
		}
	}

	d := NewDriver(port)
	_, err := d.SendCommand(CmdStatusRequest, nil, false)
	if err == nil || !strings.Contains(err.Error(), "Demasiados NAK") {
		t.Fatalf("SendCommand() error = %v, want too-many-NAKs", err)
	}
	// the frame went out MaxNAKs+1 times
	frames := 0
	for _, w := range port.writes {
		if len(w) > 1 {
			frames++
		}
	}
	if frames != MaxNAKs+1 {
		t.Errorf("frame transmitted %d times, want %d", frames, MaxNAKs+1)
	}
}

func TestSendCommandStatusErrors(t *testing.T) {
	t.Parallel()
	codec := replyCodec()
	newPort := func(fiscal string) *scriptPort {
		port := &scriptPort{}
		port.onWrite = func(p *scriptPort, data []byte) {
			if len(data) != 1 {
				reply, _ := codec.Build(CmdStatusRequest, data[1], []string{"0000", fiscal})
				p.reads = append(p.reads, protocol.ACK)
				p.reads = append(p.reads, reply...)
			}
		}
		return port
	}

	// bit 3: unknown command
	d := NewDriver(newPort("8608"))
	_, err := d.SendCommand(CmdStatusRequest, nil, false)
	if err == nil || !IsStatusError(err) {
		t.Fatalf("SendCommand() error = %v, want FiscalStatusError", err)
	}
	if !strings.Contains(err.Error(), "Comando no reconocido") {
		t.Errorf("error %q does not carry the bit message", err)
	}

	// same reply with skipErrors: fields come back
	d = NewDriver(newPort("8608"))
	fields, err := d.SendCommand(CmdStatusRequest, nil, true)
	if err != nil {
		t.Fatalf("SendCommand(skipErrors) error = %v", err)
	}
	if fields[1] != "8608" {
		t.Errorf("fields[1] = %v, want 8608", fields[1])
	}
}

func TestSendCommandFlowControlExtendsDeadline(t *testing.T) {
	t.Parallel()
	codec := replyCodec()
	port := &scriptPort{}
	port.onWrite = func(p *scriptPort, data []byte) {
		if len(data) > 1 {
			reply, _ := codec.Build(CmdStatusRequest, data[1], []string{"0000", "0600"})
			p.reads = append(p.reads, protocol.ACK, protocol.DC2, protocol.DC4)
			p.reads = append(p.reads, reply...)
		}
	}
	d := NewDriver(port)
	if _, err := d.SendCommand(CmdStatusRequest, nil, false); err != nil {
		t.Errorf("SendCommand() with DC2/DC4 in stream error = %v", err)
	}
}
