// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Vendor specific commands of a few well known controllers and optical drives.

package scsi

import "encoding/binary"

const (
	ADAPTEC_TRANSLATE_LEN     = 8
	ADAPTEC_USAGE_COUNTER_LEN = 9

	// HL-DT-ST raw DVD sectors include ID, IED, CPR_MAI and EDC
	HLDTST_RAW_DVD_SECTOR = 2064

	// Plextor READ CD-DA subchannel selection
	PLEXTOR_SUBCHANNEL_NONE = 0 // 2352 bytes per sector
	PLEXTOR_SUBCHANNEL_Q    = 1 // 2368 bytes per sector
	PLEXTOR_SUBCHANNEL_PW   = 2 // 2448 bytes per sector
	PLEXTOR_SUBCHANNEL_ONLY = 3 // 96 bytes per sector

	// Plextor EEPROM variants
	PLEXTOR_EEPROM_CDR   = 0 // CD-R drives, 256 bytes
	PLEXTOR_EEPROM_PX708 = 1 // PX-708 and later DVD writers, 512 bytes
)

var plextorSectorSizes = [4]uint32{2352, 2368, 2448, 96}

// AdaptecTranslate asks an Adaptec ACB-4000 series controller for the physical address of lba.
func (d *Device) AdaptecTranslate(drive1 bool, lba uint32) (Result, error) {
	lba = ClampLBA6(lba)

	cdb := CDB6{ADAPTEC_TRANSLATE}
	cdb[1] = uint8(lba>>16) & 0x1f
	if drive1 {
		cdb[1] |= 0x20
	}
	cdb[2] = uint8(lba >> 8)
	cdb[3] = uint8(lba)

	return d.send(cdb[:], DirFromDevice, ADAPTEC_TRANSLATE_LEN)
}

// AdaptecReadUsageCounter reads, and optionally resets, the controller usage counters.
func (d *Device) AdaptecReadUsageCounter(drive1, reset bool) (Result, error) {
	cdb := CDB6{ADAPTEC_READ_USAGE_COUNTER}
	if drive1 {
		cdb[1] = 0x20
	}
	if reset {
		cdb[5] = 0x40
	}

	return d.send(cdb[:], DirFromDevice, ADAPTEC_USAGE_COUNTER_LEN)
}

// HLDTSTReadRawDVD reads unscrambled raw DVD sectors from an HL-DT-ST drive.
func (d *Device) HLDTSTReadRawDVD(lba uint32, count uint16) (Result, error) {
	cdb := CDB12{HLDTST_VENDOR, 0x48, 0x49, 0x54, 0x01}
	binary.BigEndian.PutUint32(cdb[6:], lba)
	binary.BigEndian.PutUint16(cdb[10:], count)

	return d.send(cdb[:], DirFromDevice, transferLen(uint32(count), HLDTST_RAW_DVD_SECTOR, 0))
}

// PlextorReadCDDA reads audio sectors, with the subchannel data selected by subchannel.
func (d *Device) PlextorReadCDDA(lba, count uint32, subchannel uint8) (Result, error) {
	subchannel &= 0x03

	cdb := CDB12{PLEXTOR_READ_CDDA}
	binary.BigEndian.PutUint32(cdb[2:], lba)
	binary.BigEndian.PutUint32(cdb[6:], count)
	cdb[10] = subchannel

	return d.send(cdb[:], DirFromDevice, transferLen(count, plextorSectorSizes[subchannel], 0))
}

// PlextorReadEEPROM dumps the drive EEPROM, whose size depends on the drive generation.
func (d *Device) PlextorReadEEPROM(kind uint8) (Result, error) {
	cdb := CDB10{PLEXTOR_READ_EEPROM}
	n := 256

	if kind == PLEXTOR_EEPROM_PX708 {
		cdb[1] = 0x01
		cdb[8] = 0x02
		n = 512
	} else {
		cdb[8] = 0x01
	}

	return d.send(cdb[:], DirFromDevice, n)
}
