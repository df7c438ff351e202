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
	"errors"
	"fmt"
)

type (
	// Error is implemented by every protocol-level error: bad block check
	// character, malformed framing, out-of-range values and sequence
	// mismatches. Link layers answer any of them with NAK.
	Error interface {
		error
		protocolError()
	}

	// BadBCCError reports a frame whose block check character does not
	// match the byte sum of its content.
	BadBCCError struct {
		Received string
		Expected string
		Frame    []byte
	}

	// MalformedFrameError reports a frame that does not follow the
	// STX ... ETX layout.
	MalformedFrameError struct {
		Reason string
		Frame  []byte
	}

	// OutOfRangeError reports an opcode or sequence number outside the
	// range the codec was configured with.
	OutOfRangeError struct {
		What  string
		Value byte
		Lo    byte
		Hi    byte
	}

	// SequenceMismatchError reports a reply carrying a sequence number
	// different from the one the caller is waiting for.
	SequenceMismatchError struct {
		Got  byte
		Want byte
	}
)

func (e *BadBCCError) Error() string {
	return fmt.Sprintf("bad bcc: received %q, expected %q in frame %q", e.Received, e.Expected, e.Frame)
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("malformed frame: %s in %q", e.Reason, e.Frame)
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s 0x%02x out of valid range (0x%02x, 0x%02x)", e.What, e.Value, e.Lo, e.Hi)
}

func (e *SequenceMismatchError) Error() string {
	return fmt.Sprintf("inconsistent sequence number 0x%02x, we are waiting for 0x%02x", e.Got, e.Want)
}

func (e *BadBCCError) protocolError()           {}
func (e *MalformedFrameError) protocolError()   {}
func (e *OutOfRangeError) protocolError()       {}
func (e *SequenceMismatchError) protocolError() {}

// IsProtocolError returns true if err is any protocol-level error.
func IsProtocolError(err error) bool {
	var pe Error
	return errors.As(err, &pe)
}
