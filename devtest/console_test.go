// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package devtest

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(input string) (*Console, *bytes.Buffer) {
	out := new(bytes.Buffer)
	return NewConsole(strings.NewReader(input), out), out
}

func TestMenu(t *testing.T) {
	c, out := newTestConsole("x\n3\n2\n")

	n, err := c.Menu("Things:", []string{"Device: /dev/sda"}, []string{"One.", "Two."}, "main menu")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.True(t, strings.HasPrefix(out.String(), "Device: /dev/sda\n\nThings:\n1.- One.\n2.- Two.\n0.- Return to main menu.\nChoose: "))
	assert.Contains(t, out.String(), "Incorrect option \"x\".\n")
	assert.Contains(t, out.String(), "Incorrect option \"3\".\n")
}

func TestMenuEOF(t *testing.T) {
	c, _ := newTestConsole("")

	_, err := c.Menu("Things:", nil, []string{"One."}, "main menu")
	assert.Equal(t, io.EOF, err)

	// a last line without a newline is still read
	c, _ = newTestConsole("1")
	n, err := c.Menu("Things:", nil, []string{"One."}, "main menu")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReadUint(t *testing.T) {
	c, out := newTestConsole("0x1f\n256\n\n")

	v, err := c.ReadUint("Count", 8, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1f), v)

	v, err = c.ReadUint("Count", 8, 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)
	assert.Contains(t, out.String(), "Not a valid unsigned 8-bit number.\n")
	assert.Contains(t, out.String(), "Count [7]: ")
}

func TestReadInt(t *testing.T) {
	c, _ := newTestConsole("-12\n")

	v, err := c.ReadInt("Count", 32, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(-12), v)
}

func TestReadBool(t *testing.T) {
	c, out := newTestConsole("maybe\ny\n\n")

	v, err := c.ReadBool("FUA", false)
	require.NoError(t, err)
	assert.True(t, v)
	assert.Contains(t, out.String(), "FUA (y/n) [false]: Answer y or n.\n")

	v, err = c.ReadBool("FUA", true)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestUintFieldClamp(t *testing.T) {
	c, out := newTestConsole("300\n\n0x3ffff\n")

	var head uint8 = 3
	f := uintParam("Head", &head).clamp(15)
	require.NoError(t, f.edit(c))
	// 300 does not fit in 8 bits and is asked again
	assert.Contains(t, out.String(), "Not a valid unsigned 8-bit number.\n")
	assert.Equal(t, uint8(3), head)

	var lba uint32
	g := uintParam("LBA", &lba).clamp(0xffff)
	require.NoError(t, g.edit(c))

	assert.Equal(t, uint32(0xffff), lba)
	assert.Contains(t, out.String(), "LBA clamped to 65535 (0xffff).\n")
	assert.Equal(t, "LBA: 65535", g.String())
}

func TestUintFieldClampSmall(t *testing.T) {
	c, out := newTestConsole("20\n")

	var head uint8
	f := uintParam("Head", &head).clamp(15)
	require.NoError(t, f.edit(c))

	assert.Equal(t, uint8(15), head)
	assert.Contains(t, out.String(), "Head clamped to 15 (0xf).\n")
}

func TestIntFieldLimits(t *testing.T) {
	c, out := newTestConsole("-9000000\n")

	var count int32
	f := intParam("Count", &count, -0x800000, 0x7fffff)
	require.NoError(t, f.edit(c))

	assert.Equal(t, int32(-0x800000), count)
	assert.Contains(t, out.String(), "Count clamped to -8388608.\n")
}
