// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package ata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusString(t *testing.T) {
	assert.Equal(t, "0x51 (DRDY DSC ERR)", Status(0x51).String())
	assert.Equal(t, "0x00 (none)", Status(0).String())
	assert.Equal(t, "0x04 (ABRT)", ErrorABRT.String())
}

func TestRegisters(t *testing.T) {
	tf := LBA48Taskfile(ATA_READ_NATIVE_MAX_EXT, 0x123456789abc, 0)
	r := LBA48Registers{
		Status:  StatusDRDY,
		LBALow:  tf.LBALow,
		LBAMid:  tf.LBAMid,
		LBAHigh: tf.LBAHigh,
	}
	assert.Equal(t, uint64(0x123456789abc), r.LBA())
	assert.False(t, r.Failed())

	r28 := r.LBA28()
	r28.DeviceHead = 0x45
	assert.Equal(t, uint32(0x5789abc), r28.LBA())

	chs := r.CHS()
	chs.DeviceHead = 0xa3
	assert.Equal(t, uint16(0x789a), chs.Cylinder())
	assert.Equal(t, uint8(3), chs.Head())
	assert.Equal(t, uint8(0xbc), chs.Sector)

	r.Status |= StatusERR
	assert.True(t, r.Failed())
	assert.True(t, LBA28Registers{Status: StatusDF}.Failed())

	assert.Contains(t, r28.String(), "LBA: 91790012")
	assert.Contains(t, chs.String(), "Cylinder: 30874, head: 3, sector: 188")
}

func TestSMARTStatus(t *testing.T) {
	exceeded, valid := SMARTStatus(LBA28Registers{LBAMid: 0x4f, LBAHigh: 0xc2})
	assert.True(t, valid)
	assert.False(t, exceeded)

	exceeded, valid = SMARTStatus(LBA28Registers{LBAMid: 0xf4, LBAHigh: 0x2c})
	assert.True(t, valid)
	assert.True(t, exceeded)

	_, valid = SMARTStatus(LBA28Registers{})
	assert.False(t, valid)
}
