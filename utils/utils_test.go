// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog2b(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0, Log2b(0))
	assert.Equal(0, Log2b(1))
	assert.Equal(3, Log2b(8))
	assert.Equal(10, Log2b(0x7ff))
}

func TestSwapBytes(t *testing.T) {
	assert.Equal(t, []byte("ST1000DM"), SwapBytes([]byte("TS0100MD")))
	// odd trailing byte is left alone
	assert.Equal(t, []byte("bac"), SwapBytes([]byte("abc")))
}

func TestFormatBytes(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("512 B", FormatBytes(512))
	assert.Equal("1 KB", FormatBytes(1000))
	assert.Equal("1.5 MB", FormatBytes(1500000))
	assert.Equal("2 TB", FormatBytes(2000398934016))
}

func TestHexDump(t *testing.T) {
	var b bytes.Buffer

	HexDump(&b, []byte("ATA     \x00\x01"), 8)
	assert.Equal(t,
		"00000000: 41 54 41 20 20 20 20 20  ATA     \n"+
			"00000008: 00 01                    ..\n",
		b.String())
}

func TestHexWidth(t *testing.T) {
	assert.Equal(t, 16, HexWidth(80))
	assert.Equal(t, 8, HexWidth(20))
	assert.Equal(t, 64, HexWidth(1000))
}
