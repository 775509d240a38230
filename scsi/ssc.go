// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// SCSI Stream Commands (SSC).

package scsi

import "encoding/binary"

const (
	READ_BLOCK_LIMITS_LEN   = 6
	READ_POSITION_SHORT_LEN = 20

	// SPACE codes
	SPACE_BLOCKS        = 0
	SPACE_FILEMARKS     = 1
	SPACE_SEQ_FILEMARKS = 2
	SPACE_END_OF_DATA   = 3
	SPACE_SETMARKS      = 4
	SPACE_SEQ_SETMARKS  = 5

	// Largest transfer length of SSC READ(6), in bytes or blocks
	MaxLength24 = 0xffffff
)

// BlockLimits is a decoded READ BLOCK LIMITS response.
type BlockLimits struct {
	Granularity uint8
	MaxLength   uint32
	MinLength   uint16
}

func DecodeBlockLimits(buf []byte) (BlockLimits, bool) {
	if len(buf) < READ_BLOCK_LIMITS_LEN {
		return BlockLimits{}, false
	}

	return BlockLimits{
		Granularity: buf[0] & 0x1f,
		MaxLength:   uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]),
		MinLength:   binary.BigEndian.Uint16(buf[4:]),
	}, true
}

func (d *Device) Rewind(immed bool) (Result, error) {
	cdb := CDB6{SCSI_REWIND}
	if immed {
		cdb[1] = 0x01
	}

	return d.send(cdb[:], DirNone, 0)
}

func (d *Device) ReadBlockLimits() (Result, error) {
	cdb := CDB6{SCSI_READ_BLOCK_LIMITS}
	return d.send(cdb[:], DirFromDevice, READ_BLOCK_LIMITS_LEN)
}

// SSCRead6 reads from a tape. With fixed set, length counts blocks of blockSize bytes, otherwise
// it is a byte count. length is clamped to 24 bits.
func (d *Device) SSCRead6(sili, fixed bool, length, blockSize uint32) (Result, error) {
	if length > MaxLength24 {
		length = MaxLength24
	}

	cdb := CDB6{SCSI_READ_6}
	if sili {
		cdb[1] |= 0x02
	}
	if fixed {
		cdb[1] |= 0x01
	}
	cdb[2] = uint8(length >> 16)
	cdb[3] = uint8(length >> 8)
	cdb[4] = uint8(length)

	n := uint64(length)
	if fixed {
		n *= uint64(blockSize)
	}

	return d.send(cdb[:], DirFromDevice, int(n))
}

func (d *Device) LoadUnload(immed, hold, eot, reten, load bool) (Result, error) {
	cdb := CDB6{SCSI_LOAD_UNLOAD}
	if immed {
		cdb[1] = 0x01
	}
	if hold {
		cdb[4] |= 0x08
	}
	if eot {
		cdb[4] |= 0x04
	}
	if reten {
		cdb[4] |= 0x02
	}
	if load {
		cdb[4] |= 0x01
	}

	return d.send(cdb[:], DirNone, 0)
}

// Locate10 positions the medium at a logical block, or a logical object if bt is clear.
func (d *Device) Locate10(bt, cp, immed bool, partition uint8, block uint32) (Result, error) {
	cdb := CDB10{SCSI_LOCATE_10}
	if bt {
		cdb[1] |= 0x04
	}
	if cp {
		cdb[1] |= 0x02
	}
	if immed {
		cdb[1] |= 0x01
	}
	binary.BigEndian.PutUint32(cdb[3:], block)
	cdb[8] = partition

	return d.send(cdb[:], DirNone, 0)
}

func (d *Device) Locate16(destType uint8, cp, immed bool, partition uint8, object uint64) (Result, error) {
	cdb := CDB16{SCSI_LOCATE_16}
	cdb[1] = (destType & 0x07) << 3
	if cp {
		cdb[1] |= 0x02
	}
	if immed {
		cdb[1] |= 0x01
	}
	cdb[3] = partition
	binary.BigEndian.PutUint64(cdb[4:], object)

	return d.send(cdb[:], DirNone, 0)
}

// ReadPosition sends READ POSITION. The short forms (service actions 0 and 1) have a fixed
// response length and ignore alloc.
func (d *Device) ReadPosition(action uint8, alloc uint16) (Result, error) {
	cdb := CDB10{SCSI_READ_POSITION}
	cdb[1] = action & 0x1f

	if action <= 1 {
		return d.send(cdb[:], DirFromDevice, READ_POSITION_SHORT_LEN)
	}

	binary.BigEndian.PutUint16(cdb[7:], alloc)

	return d.send(cdb[:], DirFromDevice, int(alloc))
}

// Space moves count (negative for backwards) units of the kind selected by code.
func (d *Device) Space(code uint8, count int32) (Result, error) {
	if count > 0x7fffff {
		count = 0x7fffff
	} else if count < -0x800000 {
		count = -0x800000
	}

	cdb := CDB6{SCSI_SPACE}
	cdb[1] = code & 0x07
	cdb[2] = uint8(count >> 16)
	cdb[3] = uint8(count >> 8)
	cdb[4] = uint8(count)

	return d.send(cdb[:], DirNone, 0)
}

func (d *Device) ReportDensitySupport(medium, mediumType bool, alloc uint16) (Result, error) {
	cdb := CDB10{SCSI_REPORT_DENSITY_SUPPORT}
	if mediumType {
		cdb[1] |= 0x02
	}
	if medium {
		cdb[1] |= 0x01
	}
	binary.BigEndian.PutUint16(cdb[7:], alloc)

	return d.send(cdb[:], DirFromDevice, int(alloc))
}
