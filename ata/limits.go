// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package ata

const (
	MaxLBA28 = 0xfffffff
	MaxLBA48 = 0xffffffffffff
	MaxHead  = 15
)

// ClampLBA28 limits lba to what fits the 28 address bits of a 28-bit command.
func ClampLBA28(lba uint32) uint32 {
	if lba > MaxLBA28 {
		return MaxLBA28
	}
	return lba
}

// ClampLBA48 limits lba to what fits the 48 address bits of a 48-bit command.
func ClampLBA48(lba uint64) uint64 {
	if lba > MaxLBA48 {
		return MaxLBA48
	}
	return lba
}

// ClampHead limits a CHS head number to the four bits of the device register.
func ClampHead(head uint8) uint8 {
	if head > MaxHead {
		return MaxHead
	}
	return head
}
