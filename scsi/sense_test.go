// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package scsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaru-dps/devtest/ata"
)

// ATA Return descriptor reporting a successful SMART RETURN STATUS
var ataReturnSense = []byte{
	0x72, SENSE_RECOVERED_ERROR, 0x00, 0x1d, 0, 0, 0, 0x0e,
	DESC_ATA_RETURN, 0x0c, 0x00, 0x00, 0x00, 0x01, 0x00, 0x10, 0x00, 0x4f, 0x00, 0xc2, 0x40, 0x50,
}

func TestDecodeFixedSense(t *testing.T) {
	s, ok := DecodeSense([]byte{0xf0, 0, 0x23, 0x00, 0x00, 0x01, 0x00, 10, 0, 0, 0, 0, 0x11, 0x00})
	require.True(t, ok)

	assert.Equal(t, uint8(0x70), s.ResponseCode)
	assert.Equal(t, uint8(SENSE_MEDIUM_ERROR), s.Key)
	assert.True(t, s.InfoValid)
	assert.Equal(t, uint64(256), s.Information)
	assert.True(t, s.ILI)
	assert.Equal(t, "MEDIUM ERROR, Unrecovered read error, information 256, incorrect length", s.String())
}

func TestDecodeDescriptorSense(t *testing.T) {
	buf := []byte{
		0x72, SENSE_BLANK_CHECK, 0x00, 0x05, 0, 0, 0, 0x10,
		DESC_INFORMATION, 0x0a, 0x80, 0, 0, 0, 0, 0, 0, 0, 0x12, 0x34,
		DESC_STREAM, 0x02, 0x00, 0x80,
	}

	s, ok := DecodeSense(buf)
	require.True(t, ok)

	assert.Equal(t, "BLANK CHECK", s.KeyName())
	assert.Equal(t, "End-of-data detected", s.Description())
	assert.True(t, s.InfoValid)
	assert.Equal(t, uint64(0x1234), s.Information)
	assert.True(t, s.Filemark)
	assert.False(t, s.EOM)
}

func TestDecodeSenseInvalid(t *testing.T) {
	_, ok := DecodeSense(nil)
	assert.False(t, ok)

	_, ok = DecodeSense([]byte{0x00, 0x00, 0x00, 0x00})
	assert.False(t, ok)

	s, ok := DecodeSense([]byte{0x70, 0x00, SENSE_UNIT_ATTENTION})
	require.True(t, ok)
	assert.Equal(t, "UNIT ATTENTION, No additional sense information", s.String())
}

func TestDescriptionFallback(t *testing.T) {
	assert.Equal(t, "ASC/ASCQ 7Fh/01h", Sense{ASC: 0x7f, ASCQ: 0x01}.Description())
	assert.Equal(t, "Vendor specific ASC/ASCQ 80h/00h", Sense{ASC: 0x80}.Description())
}

func TestATAReturnDescriptor(t *testing.T) {
	s, ok := DecodeSense(ataReturnSense)
	require.True(t, ok)

	regs, ok := s.ATAReturn()
	require.True(t, ok)

	assert.Equal(t, ata.Status(0x50), regs.Status)
	assert.Equal(t, uint16(1), regs.SectorCount)
	assert.Equal(t, uint16(0x10), regs.LBALow)
	assert.Equal(t, uint16(0x4f), regs.LBAMid)
	assert.Equal(t, uint16(0xc2), regs.LBAHigh)
	assert.Equal(t, uint8(0x40), regs.DeviceHead)
}

func TestATAReturnDescriptorExtended(t *testing.T) {
	buf := append([]byte(nil), ataReturnSense...)
	buf[10] = 0x01 // extend
	buf[14] = 0x12 // LBA (31:24)
	buf[16] = 0x34 // LBA (39:32)
	buf[18] = 0x56 // LBA (47:40)

	s, _ := DecodeSense(buf)
	regs, ok := s.ATAReturn()
	require.True(t, ok)
	assert.Equal(t, uint64(0x563412c24f10), regs.LBA())
}

func TestATAReturnFixed(t *testing.T) {
	buf := []byte{
		0x70, 0, SENSE_RECOVERED_ERROR,
		0x04, 0x51, 0xe0, 0x02, // error, status, device, count
		10,
		0x00, 0x11, 0x22, 0x03, // flags, LBA low, mid, high
		0x00, 0x1d,
	}

	s, ok := DecodeSense(buf)
	require.True(t, ok)

	regs, ok := s.ATAReturn()
	require.True(t, ok)
	assert.Equal(t, ata.ErrorABRT, regs.Error)
	assert.True(t, regs.Failed())
	assert.Equal(t, uint32(0x0032211), regs.LBA28().LBA())
	assert.Equal(t, uint8(2), regs.LBA28().SectorCount)

	s.ASCQ = 0x00
	_, ok = s.ATAReturn()
	assert.False(t, ok)
}
