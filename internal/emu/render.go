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
	"io"
	"regexp"
	"strings"
	"time"
)

// LineWidth is the printable width of the emulated ticket.
const LineWidth = 40

// doubleWide marks a line whose remainder prints double width: spaced
// out, bold, trimmed to LineWidth cells.
const doubleWide = 0xf4

// Align selects how a line sits within the 40 columns.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Sink receives the rendered receipt one line at a time. Implementations
// are synchronous; every line lands before the call returns.
type Sink interface {
	WriteLine(text string, align Align)
	Flush()
}

// Console renders to a writer with ANSI styling, pacing each line like
// a real printer feeding paper.
type Console struct {
	w      io.Writer
	styled bool
	pace   time.Duration
}

// NewConsole returns a console sink. With styled false every ANSI
// escape is stripped before writing.
func NewConsole(w io.Writer, styled bool) *Console {
	return &Console{w: w, styled: styled, pace: 20 * time.Millisecond}
}

// SetPace changes the per-line delay; zero disables pacing.
func (c *Console) SetPace(pace time.Duration) {
	c.pace = pace
}

var ansiEscapes = regexp.MustCompile("\x1b\\[[0-9;]*m")

func (c *Console) WriteLine(text string, align Align) {
	if c.pace > 0 {
		time.Sleep(c.pace)
	}
	line := text
	if line != "" {
		if line[0] == doubleWide {
			line = "\x1b[;1m" + expandWide(line[1:]) + "\x1b[0m"
		}
		switch align {
		case AlignRight:
			line = rjust(line, LineWidth)
		case AlignCenter:
			line = center(line, LineWidth)
		default:
			line = ljust(line, LineWidth)
		}
	}
	if !c.styled {
		line = ansiEscapes.ReplaceAllString(line, "")
	}
	fmt.Fprintln(c.w, line)
	c.Flush()
}

// Flush pushes buffered output through when the writer buffers.
func (c *Console) Flush() {
	if f, ok := c.w.(interface{ Flush() error }); ok {
		f.Flush()
	}
}

// expandWide spaces the characters of s out to double width, trimmed to
// LineWidth cells.
func expandWide(s string) string {
	parts := strings.Split(s, "")
	wide := " " + strings.Join(parts, " ")
	if len(wide) > LineWidth {
		wide = wide[:LineWidth]
	}
	return wide
}

func ljust(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func rjust(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func center(s string, width int) string {
	return centerFill(s, width, ' ')
}

// centerFill pads s on both sides with fill, the extra cell going to
// the right.
func centerFill(s string, width int, fill byte) string {
	if len(s) >= width {
		return s
	}
	pad := width - len(s)
	left := pad / 2
	return strings.Repeat(string(fill), left) + s + strings.Repeat(string(fill), pad-left)
}
