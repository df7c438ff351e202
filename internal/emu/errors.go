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

	"github.com/Golang-Argentina/hasar-fp/internal/status"
)

// Error is a fiscal error raised by a command handler. It never turns
// into a NAK: the dispatcher sets State in the fiscal status word and
// the reply still goes out carrying the error in its status fields.
type Error struct {
	State status.Flag
	Name  string
	Msg   string
}

func (e *Error) Error() string {
	return e.Msg
}

// unknownCommand: the received opcode is not in the command table.
func unknownCommand(format string, args ...any) *Error {
	return &Error{
		State: status.UnknownCommand,
		Name:  "UnknownCommandError",
		Msg:   fmt.Sprintf(format, args...),
	}
}

// notImplemented: the opcode is in the command table but the emulator
// does not model it. Reported through the unknown-command bit, the way
// the real firmware answers commands it cannot run.
func notImplemented(format string, args ...any) *Error {
	return &Error{
		State: status.UnknownCommand,
		Name:  "NotImplementedCommand",
		Msg:   fmt.Sprintf(format, args...),
	}
}

// notValidData: a field of the received command carries invalid data.
func notValidData(format string, args ...any) *Error {
	return &Error{
		State: status.NotValidData,
		Name:  "NotValidDataError",
		Msg:   fmt.Sprintf(format, args...),
	}
}

// notValidCommand: the command is not admissible in the current fiscal
// state.
func notValidCommand(format string, args ...any) *Error {
	return &Error{
		State: status.NotValidCommand,
		Name:  "NotValidCommandError",
		Msg:   fmt.Sprintf(format, args...),
	}
}
