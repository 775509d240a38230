// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// ATA command definitions.

package ata

const (
	// ATA commands
	ATA_CFA_REQUEST_EXTENDED_ERROR = 0x03
	ATA_READ_SECTORS               = 0x20
	ATA_READ_SECTORS_NO_RETRY      = 0x21
	ATA_READ_LONG                  = 0x22
	ATA_READ_LONG_NO_RETRY         = 0x23
	ATA_READ_SECTORS_EXT           = 0x24
	ATA_READ_DMA_EXT               = 0x25
	ATA_READ_NATIVE_MAX_EXT        = 0x27
	ATA_READ_MULTIPLE_EXT          = 0x29
	ATA_READ_LOG_EXT               = 0x2f
	ATA_READ_LOG_DMA_EXT           = 0x47
	ATA_SEEK                       = 0x70
	ATA_CFA_TRANSLATE_SECTOR       = 0x87
	ATA_IDENTIFY_PACKET_DEVICE     = 0xa1
	ATA_SMART                      = 0xb0
	ATA_READ_MULTIPLE              = 0xc4
	ATA_READ_DMA                   = 0xc8
	ATA_READ_DMA_NO_RETRY          = 0xc9
	ATA_CHECK_MEDIA_CARD_TYPE      = 0xd1
	ATA_IDENTIFY_DEVICE            = 0xec
	ATA_SET_FEATURES               = 0xef
	ATA_READ_NATIVE_MAX            = 0xf8

	// ATA feature register values for SMART
	SMART_READ_DATA                 = 0xd0
	SMART_ATTRIBUTE_AUTOSAVE        = 0xd2
	SMART_EXECUTE_OFFLINE_IMMEDIATE = 0xd4
	SMART_READ_LOG                  = 0xd5
	SMART_ENABLE_OPERATIONS         = 0xd8
	SMART_DISABLE_OPERATIONS        = 0xd9
	SMART_RETURN_STATUS             = 0xda

	// SMART signature, required in the LBA mid / high registers of every SMART command
	SMART_LBA_MID  = 0x4f
	SMART_LBA_HIGH = 0xc2

	// Sector count values for SMART ENABLE/DISABLE ATTRIBUTE AUTOSAVE
	SMART_AUTOSAVE_ENABLE  = 0xf1
	SMART_AUTOSAVE_DISABLE = 0x00

	// Device register bits
	DEVICE_LBA = 0x40
	DEVICE_DEV = 0x10

	// Bytes per logical sector assumed by data-in commands
	SECTOR_SIZE = 512
)

// Taskfile holds the input registers of an ATA command. For 48-bit commands the high byte of the
// 16-bit fields is the "previous" register content, for 28-bit and CHS commands it must be zero.
type Taskfile struct {
	Feature uint16
	Count   uint16
	LBALow  uint16
	LBAMid  uint16
	LBAHigh uint16
	Device  uint8
	Command uint8
}

// LBA28Taskfile fills the address registers of a 28-bit command. The top four LBA bits go into the
// device register together with the LBA mode bit.
func LBA28Taskfile(command uint8, lba uint32, count uint8) Taskfile {
	lba = ClampLBA28(lba)

	return Taskfile{
		Count:   uint16(count),
		LBALow:  uint16(lba & 0xff),
		LBAMid:  uint16((lba >> 8) & 0xff),
		LBAHigh: uint16((lba >> 16) & 0xff),
		Device:  DEVICE_LBA | uint8((lba>>24)&0x0f),
		Command: command,
	}
}

// LBA48Taskfile fills the address registers of a 48-bit command.
func LBA48Taskfile(command uint8, lba uint64, count uint16) Taskfile {
	lba = ClampLBA48(lba)

	return Taskfile{
		Count:   count,
		LBALow:  uint16(lba&0xff) | uint16((lba>>24)&0xff)<<8,
		LBAMid:  uint16((lba>>8)&0xff) | uint16((lba>>32)&0xff)<<8,
		LBAHigh: uint16((lba>>16)&0xff) | uint16((lba>>40)&0xff)<<8,
		Device:  DEVICE_LBA,
		Command: command,
	}
}

// CHSTaskfile fills the address registers of a CHS command. The head goes into the low nibble of
// the device register, with the LBA mode bit clear.
func CHSTaskfile(command uint8, cylinder uint16, head, sector, count uint8) Taskfile {
	return Taskfile{
		Count:   uint16(count),
		LBALow:  uint16(sector),
		LBAMid:  cylinder & 0xff,
		LBAHigh: cylinder >> 8,
		Device:  ClampHead(head),
		Command: command,
	}
}
