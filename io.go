// io.go: Raw console I/O service for cli-helper
//
// The engine itself only ever calls Write (for help output); the rest of
// the interface exists for command actions that prompt or page. The
// standard implementation is unbuffered over the process streams, with
// single-key reads done in raw terminal mode.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package clihelper

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Console is the raw I/O service consumed by the framework and by command
// actions. Implementations must not buffer writes.
type Console interface {
	// Write emits text to standard output.
	Write(text string)

	// WriteErrorLine emits one line of text to standard error.
	WriteErrorLine(text string)

	// ReadLine reads one line from standard input, without the trailing
	// newline.
	ReadLine() (string, error)

	// ReadKey reads a single key press.
	ReadKey() (rune, error)

	// Width returns the usable output width in columns.
	Width() int
}

// defaultHelpWidth is used when standard output is not a terminal.
const defaultHelpWidth = 80

// stdConsole is the process-stream Console.
type stdConsole struct {
	in *bufio.Reader
}

// NewConsole returns a Console over os.Stdin, os.Stdout and os.Stderr.
func NewConsole() Console {
	return &stdConsole{in: bufio.NewReader(os.Stdin)}
}

func (c *stdConsole) Write(text string) {
	fmt.Fprint(os.Stdout, text)
}

func (c *stdConsole) WriteErrorLine(text string) {
	fmt.Fprintln(os.Stderr, text)
}

func (c *stdConsole) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadKey switches stdin to raw mode for the duration of one read so a
// single key press is delivered without waiting for Enter. Falls back to
// a buffered single-byte read when stdin is not a terminal.
func (c *stdConsole) ReadKey() (rune, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		b, err := c.in.ReadByte()
		if err != nil {
			return 0, err
		}
		return rune(b), nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return 0, err
	}
	defer func() { _ = term.Restore(fd, state) }()

	var buf [1]byte
	if _, err := os.Stdin.Read(buf[:]); err != nil {
		return 0, err
	}
	return rune(buf[0]), nil
}

func (c *stdConsole) Width() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultHelpWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultHelpWidth
	}
	return width
}
