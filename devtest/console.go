// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package devtest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/aaru-dps/devtest/utils"
)

// Console reads operator input line by line and writes menus and results.
type Console struct {
	in    *bufio.Reader
	out   io.Writer
	clear bool
	width int // hex dump bytes per row
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// NewTerminalConsole clears the screen between menus and fits hex dumps to the terminal width
// when out is a terminal.
func NewTerminalConsole(in, out *os.File) *Console {
	c := NewConsole(in, out)

	if fd := int(out.Fd()); term.IsTerminal(fd) {
		c.clear = true
		if cols, _, err := term.GetSize(fd); err == nil {
			c.width = utils.HexWidth(cols)
		}
	}

	return c
}

func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *Console) Println(a ...interface{}) {
	fmt.Fprintln(c.out, a...)
}

// Writer returns the output writer, for decoders that print directly.
func (c *Console) Writer() io.Writer {
	return c.out
}

// HexDump prints buf sized to the console.
func (c *Console) HexDump(buf []byte) {
	utils.HexDump(c.out, buf, c.width)
}

func (c *Console) Clear() {
	if c.clear {
		fmt.Fprint(c.out, "\033[H\033[2J")
	}
}

// readLine returns the next input line without surrounding whitespace. io.EOF is only returned
// once no more input is left.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

// Menu shows a numbered list of items plus an entry returning to parent, and returns the chosen
// number, 0 meaning return. Anything else redisplays the menu with an error line.
func (c *Console) Menu(title string, header []string, items []string, parent string) (int, error) {
	var errLine string

	for {
		c.Clear()

		for _, h := range header {
			c.Println(h)
		}
		if len(header) > 0 {
			c.Println()
		}

		c.Println(title)
		for i, item := range items {
			c.Printf("%d.- %s\n", i+1, item)
		}
		c.Printf("0.- Return to %s.\n", parent)

		if errLine != "" {
			c.Println(errLine)
			errLine = ""
		}

		c.Printf("Choose: ")
		line, err := c.readLine()
		if err != nil {
			return 0, err
		}

		n, err := strconv.Atoi(line)
		if err != nil || n < 0 || n > len(items) {
			errLine = fmt.Sprintf("Incorrect option %q.", line)
			continue
		}

		return n, nil
	}
}

// parseUint accepts decimal or 0x prefixed hexadecimal input.
func parseUint(s string, bits int) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, bits)
	}

	return strconv.ParseUint(s, 10, bits)
}

// ReadUint prompts for an unsigned integer of the given width. An empty line keeps cur.
func (c *Console) ReadUint(label string, bits int, cur uint64) (uint64, error) {
	for {
		c.Printf("%s [%d]: ", label, cur)

		line, err := c.readLine()
		if err != nil {
			return cur, err
		}
		if line == "" {
			return cur, nil
		}

		v, err := parseUint(line, bits)
		if err != nil {
			c.Printf("Not a valid unsigned %d-bit number.\n", bits)
			continue
		}

		return v, nil
	}
}

// ReadInt prompts for a signed integer of the given width. An empty line keeps cur.
func (c *Console) ReadInt(label string, bits int, cur int64) (int64, error) {
	for {
		c.Printf("%s [%d]: ", label, cur)

		line, err := c.readLine()
		if err != nil {
			return cur, err
		}
		if line == "" {
			return cur, nil
		}

		v, err := strconv.ParseInt(line, 10, bits)
		if err != nil {
			c.Printf("Not a valid signed %d-bit number.\n", bits)
			continue
		}

		return v, nil
	}
}

// ReadBool prompts for a yes / no answer. An empty line keeps cur.
func (c *Console) ReadBool(label string, cur bool) (bool, error) {
	for {
		c.Printf("%s (y/n) [%t]: ", label, cur)

		line, err := c.readLine()
		if err != nil {
			return cur, err
		}

		switch strings.ToLower(line) {
		case "":
			return cur, nil
		case "y", "yes", "true", "1":
			return true, nil
		case "n", "no", "false", "0":
			return false, nil
		}

		c.Println("Answer y or n.")
	}
}

// ReadString prompts for a line of text. An empty line keeps cur.
func (c *Console) ReadString(label, cur string) (string, error) {
	c.Printf("%s [%s]: ", label, cur)

	line, err := c.readLine()
	if err != nil || line == "" {
		return cur, err
	}

	return line, nil
}

// Pause waits for Enter.
func (c *Console) Pause() error {
	c.Printf("Press Enter to continue...")
	_, err := c.readLine()
	c.Println()
	return err
}
