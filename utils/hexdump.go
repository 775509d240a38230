// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package utils

import (
	"fmt"
	"io"
)

// HexDump writes buf to w as rows of offset, hex bytes and printable ASCII. A width of zero or less
// prints 16 bytes per row.
func HexDump(w io.Writer, buf []byte, width int) {
	if width <= 0 {
		width = 16
	}

	for offset := 0; offset < len(buf); offset += width {
		end := offset + width
		if end > len(buf) {
			end = len(buf)
		}
		row := buf[offset:end]

		fmt.Fprintf(w, "%08x: ", offset)
		for _, b := range row {
			fmt.Fprintf(w, "%02x ", b)
		}
		fmt.Fprintf(w, "%*s ", (width-len(row))*3, "")

		for _, b := range row {
			if b >= ' ' && b <= '~' {
				fmt.Fprintf(w, "%c", b)
			} else {
				fmt.Fprint(w, ".")
			}
		}
		fmt.Fprintln(w)
	}
}

// HexWidth returns how many bytes fit on one hex dump row of a terminal that is cols wide.
func HexWidth(cols int) int {
	// 10 columns of offset, then 4 per byte (hex, space and ASCII), rounded down to a multiple of 8
	n := (cols - 11) / 4
	n -= n % 8
	if n < 8 {
		return 8
	}
	if n > 64 {
		return 64
	}
	return n
}
