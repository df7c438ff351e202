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

// emulate runs a Hasar 615F fiscal printer emulator on a tty or
// pseudo-tty, printing the receipt rendition to standard output.
//
//	emulate <tty-path> [-d] [-c eprom.yaml]
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	serial "github.com/daedaluz/goserial"
	"golang.org/x/term"

	"github.com/Golang-Argentina/hasar-fp/internal/emu"
	"github.com/Golang-Argentina/hasar-fp/pkg/eprom"
)

const usage = "uso: emulate <tty> [-d] [-c eprom.yaml]"

func main() {
	var (
		ttyPath string
		cfgPath string
		debug   bool
	)
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-d":
			debug = true
		case "-c":
			i++
			if i >= len(args) {
				fatal(usage)
			}
			cfgPath = args[i]
		default:
			if ttyPath != "" {
				fatal(usage)
			}
			ttyPath = args[i]
		}
	}
	if ttyPath == "" {
		fatal(usage)
	}

	cfg := eprom.Default()
	if cfgPath != "" {
		loaded, err := eprom.Load(cfgPath)
		if err != nil {
			fatal(err.Error())
		}
		cfg = loaded
	}

	port, err := openPort(ttyPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer port.Close()

	styled := term.IsTerminal(int(os.Stdout.Fd()))
	dev := emu.NewDevice(cfg,
		emu.WithSink(emu.NewConsole(os.Stdout, styled)),
		emu.WithDebug(debug),
	)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		fmt.Fprintln(os.Stderr)
		os.Exit(0)
	}()

	if err := emu.NewWrapper(port, dev).Loop(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openPort opens path as an unbuffered read-write byte stream. Real
// ttys and pty peers are switched to raw mode; the error is ignored so
// plain files and FIFOs keep working for offline runs.
func openPort(path string) (io.ReadWriteCloser, error) {
	port, err := serial.Open(path, serial.NewOptions())
	if err != nil {
		return nil, err
	}
	_ = port.MakeRaw()
	return port, nil
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
