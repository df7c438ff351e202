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
	"bytes"
	"strings"
	"testing"
)

func newTestConsole(styled bool) (*Console, *bytes.Buffer) {
	var buf bytes.Buffer
	c := NewConsole(&buf, styled)
	c.SetPace(0)
	return c, &buf
}

func TestConsoleAlignment(t *testing.T) {
	t.Parallel()
	type args struct {
		text  string
		align Align
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "left pads right",
			args: args{text: "HOLA", align: AlignLeft},
			want: "HOLA" + strings.Repeat(" ", 36) + "\n",
		},
		{
			name: "right pads left",
			args: args{text: "HOLA", align: AlignRight},
			want: strings.Repeat(" ", 36) + "HOLA" + "\n",
		},
		{
			name: "center splits padding",
			args: args{text: "HOLA", align: AlignCenter},
			want: strings.Repeat(" ", 18) + "HOLA" + strings.Repeat(" ", 18) + "\n",
		},
		{
			name: "empty line stays empty",
			args: args{text: "", align: AlignLeft},
			want: "\n",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, buf := newTestConsole(true)
			c.WriteLine(tt.args.text, tt.args.align)
			if got := buf.String(); got != tt.want {
				t.Errorf("WriteLine() wrote %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConsoleDoubleWide(t *testing.T) {
	t.Parallel()
	c, buf := newTestConsole(true)
	c.WriteLine(string([]byte{doubleWide})+"TOTAL", AlignLeft)
	got := buf.String()
	if !strings.Contains(got, " T O T A L") {
		t.Errorf("double-wide output %q does not space out the text", got)
	}
	if !strings.Contains(got, "\x1b[;1m") {
		t.Errorf("double-wide output %q is not bold", got)
	}
}

func TestConsoleDoubleWideTrim(t *testing.T) {
	t.Parallel()
	c, buf := newTestConsole(false)
	c.WriteLine(string([]byte{doubleWide})+strings.Repeat("X", 30), AlignLeft)
	got := strings.TrimRight(buf.String(), "\n")
	if len(got) != LineWidth {
		t.Errorf("double-wide line is %d cells, want %d: %q", len(got), LineWidth, got)
	}
}

func TestConsoleUnstyledStripsEscapes(t *testing.T) {
	t.Parallel()
	c, buf := newTestConsole(false)
	c.WriteLine(red("ATENCION"), AlignLeft)
	got := buf.String()
	if strings.Contains(got, "\x1b") {
		t.Errorf("unstyled output %q still carries escapes", got)
	}
	if !strings.Contains(got, "ATENCION") {
		t.Errorf("unstyled output %q lost the text", got)
	}
}

func TestCenterFill(t *testing.T) {
	t.Parallel()
	got := centerFill("8<------8<", LineWidth, '-')
	if len(got) != LineWidth {
		t.Fatalf("centerFill length = %d, want %d", len(got), LineWidth)
	}
	if !strings.HasPrefix(got, "---------------8<") {
		t.Errorf("centerFill() = %q", got)
	}
}
