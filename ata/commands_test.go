// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package ata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, uint32(0x1234), ClampLBA28(0x1234))
	assert.Equal(t, uint32(0xfffffff), ClampLBA28(0xfffffff))
	assert.Equal(t, uint32(0xfffffff), ClampLBA28(0x10000000))
	assert.Equal(t, uint32(0xfffffff), ClampLBA28(0xffffffff))

	assert.Equal(t, uint64(0xffffffffffff), ClampLBA48(0xffffffffffff))
	assert.Equal(t, uint64(0xffffffffffff), ClampLBA48(0x1000000000000))
	assert.Equal(t, uint64(42), ClampLBA48(42))

	assert.Equal(t, uint8(15), ClampHead(15))
	assert.Equal(t, uint8(15), ClampHead(16))
	assert.Equal(t, uint8(15), ClampHead(255))
	assert.Equal(t, uint8(0), ClampHead(0))
}

func TestLBA28Taskfile(t *testing.T) {
	tf := LBA28Taskfile(ATA_READ_SECTORS, 0x0abcdef1, 1)
	assert.Equal(t, Taskfile{
		Count:   1,
		LBALow:  0xf1,
		LBAMid:  0xde,
		LBAHigh: 0xbc,
		Device:  0x4a,
		Command: ATA_READ_SECTORS,
	}, tf)

	tf = LBA28Taskfile(ATA_READ_DMA, 0xffffffff, 0)
	assert.Equal(t, uint16(0xff), tf.LBALow)
	assert.Equal(t, uint16(0xff), tf.LBAMid)
	assert.Equal(t, uint16(0xff), tf.LBAHigh)
	assert.Equal(t, uint8(0x4f), tf.Device)
}

func TestLBA48Taskfile(t *testing.T) {
	tf := LBA48Taskfile(ATA_READ_SECTORS_EXT, 0x123456789abc, 0x0102)
	assert.Equal(t, Taskfile{
		Count:   0x0102,
		LBALow:  0x56bc,
		LBAMid:  0x349a,
		LBAHigh: 0x1278,
		Device:  DEVICE_LBA,
		Command: ATA_READ_SECTORS_EXT,
	}, tf)

	tf = LBA48Taskfile(ATA_READ_SECTORS_EXT, 0xffffffffffffffff, 1)
	assert.Equal(t, uint16(0xffff), tf.LBALow)
	assert.Equal(t, uint16(0xffff), tf.LBAMid)
	assert.Equal(t, uint16(0xffff), tf.LBAHigh)
}

func TestCHSTaskfile(t *testing.T) {
	tf := CHSTaskfile(ATA_READ_SECTORS, 0x1234, 20, 5, 1)
	assert.Equal(t, Taskfile{
		Count:   1,
		LBALow:  5,
		LBAMid:  0x34,
		LBAHigh: 0x12,
		Device:  15,
		Command: ATA_READ_SECTORS,
	}, tf)
}
