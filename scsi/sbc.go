// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// SCSI Block Commands (SBC).

package scsi

import "encoding/binary"

// ReadFlags are the cache control bits of the READ(10/12/16) CDBs.
type ReadFlags struct {
	DPO       bool // disable page out
	FUA       bool // force unit access
	FUANV     bool // force unit access, non-volatile cache
	RelAddr   bool // relative address (obsolete, READ(10) / READ(12) only)
	Streaming bool // READ(12) / READ(16) only
}

func (f ReadFlags) byte1() (b uint8) {
	if f.DPO {
		b |= 0x10
	}
	if f.FUA {
		b |= 0x08
	}
	if f.FUANV {
		b |= 0x02
	}

	return b
}

// transferLen returns the data length of count blocks. A count of zero means zeroCount blocks,
// which is 256 for READ(6) and none for the larger CDBs.
func transferLen(count, blockSize, zeroCount uint32) int {
	if count == 0 {
		count = zeroCount
	}

	return int(uint64(count) * uint64(blockSize))
}

// Read6 reads count blocks (0 meaning 256) starting at lba, which is clamped to 21 bits.
func (d *Device) Read6(lba uint32, count uint8, blockSize uint32) (Result, error) {
	lba = ClampLBA6(lba)

	cdb := CDB6{SCSI_READ_6}
	cdb[1] = uint8(lba>>16) & 0x1f
	cdb[2] = uint8(lba >> 8)
	cdb[3] = uint8(lba)
	cdb[4] = count

	return d.send(cdb[:], DirFromDevice, transferLen(uint32(count), blockSize, 256))
}

func (d *Device) Read10(flags ReadFlags, lba uint32, count uint16, blockSize uint32) (Result, error) {
	cdb := CDB10{SCSI_READ_10}
	cdb[1] = flags.byte1()
	if flags.RelAddr {
		cdb[1] |= 0x01
	}
	binary.BigEndian.PutUint32(cdb[2:], lba)
	binary.BigEndian.PutUint16(cdb[7:], count)

	return d.send(cdb[:], DirFromDevice, transferLen(uint32(count), blockSize, 0))
}

func (d *Device) Read12(flags ReadFlags, lba, count uint32, blockSize uint32) (Result, error) {
	cdb := CDB12{SCSI_READ_12}
	cdb[1] = flags.byte1()
	if flags.RelAddr {
		cdb[1] |= 0x01
	}
	binary.BigEndian.PutUint32(cdb[2:], lba)
	binary.BigEndian.PutUint32(cdb[6:], count)
	if flags.Streaming {
		cdb[10] = 0x80
	}

	return d.send(cdb[:], DirFromDevice, transferLen(count, blockSize, 0))
}

func (d *Device) Read16(flags ReadFlags, lba uint64, count uint32, blockSize uint32) (Result, error) {
	cdb := CDB16{SCSI_READ_16}
	cdb[1] = flags.byte1()
	binary.BigEndian.PutUint64(cdb[2:], lba)
	binary.BigEndian.PutUint32(cdb[10:], count)
	if flags.Streaming {
		cdb[14] = 0x80
	}

	return d.send(cdb[:], DirFromDevice, transferLen(count, blockSize, 0))
}

// ReadLong10 reads a block together with its ECC bytes.
func (d *Device) ReadLong10(correct, pblock bool, lba uint32, transferBytes uint16) (Result, error) {
	cdb := CDB10{SCSI_READ_LONG_10}
	if pblock {
		cdb[1] |= 0x04
	}
	if correct {
		cdb[1] |= 0x02
	}
	binary.BigEndian.PutUint32(cdb[2:], lba)
	binary.BigEndian.PutUint16(cdb[7:], transferBytes)

	return d.send(cdb[:], DirFromDevice, int(transferBytes))
}

func (d *Device) ReadLong16(correct, pblock bool, lba uint64, transferBytes uint16) (Result, error) {
	cdb := CDB16{SCSI_SERVICE_ACTION_IN_16, SAI_READ_LONG_16}
	binary.BigEndian.PutUint64(cdb[2:], lba)
	binary.BigEndian.PutUint16(cdb[12:], transferBytes)
	if pblock {
		cdb[14] |= 0x02
	}
	if correct {
		cdb[14] |= 0x01
	}

	return d.send(cdb[:], DirFromDevice, int(transferBytes))
}

// Seek6 positions the heads at lba, which is clamped to 21 bits.
func (d *Device) Seek6(lba uint32) (Result, error) {
	lba = ClampLBA6(lba)

	cdb := CDB6{SCSI_SEEK_6}
	cdb[1] = uint8(lba>>16) & 0x1f
	cdb[2] = uint8(lba >> 8)
	cdb[3] = uint8(lba)

	return d.send(cdb[:], DirNone, 0)
}

func (d *Device) Seek10(lba uint32) (Result, error) {
	cdb := CDB10{SCSI_SEEK_10}
	binary.BigEndian.PutUint32(cdb[2:], lba)

	return d.send(cdb[:], DirNone, 0)
}
