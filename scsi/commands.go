// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// SCSI command definitions.

package scsi

const (
	// SPC (primary commands)
	SCSI_TEST_UNIT_READY              = 0x00
	SCSI_REQUEST_SENSE                = 0x03
	SCSI_INQUIRY                      = 0x12
	SCSI_MODE_SENSE_6                 = 0x1a
	SCSI_PREVENT_ALLOW_MEDIUM_REMOVAL = 0x1e
	SCSI_LOG_SENSE                    = 0x4d
	SCSI_MODE_SENSE_10                = 0x5a
	SCSI_SERVICE_ACTION_IN_16         = 0x9e
	SCSI_REPORT_LUNS                  = 0xa0
	SCSI_SERVICE_ACTION_IN_12         = 0xab

	// SBC (block commands)
	SCSI_READ_6           = 0x08
	SCSI_SEEK_6           = 0x0b
	SCSI_READ_CAPACITY_10 = 0x25
	SCSI_READ_10          = 0x28
	SCSI_SEEK_10          = 0x2b
	SCSI_READ_LONG_10     = 0x3e
	SCSI_READ_16          = 0x88
	SCSI_READ_12          = 0xa8

	// SSC (stream commands)
	SCSI_REWIND                 = 0x01
	SCSI_READ_BLOCK_LIMITS      = 0x05
	SCSI_SPACE                  = 0x11
	SCSI_LOAD_UNLOAD            = 0x1b
	SCSI_LOCATE_10              = 0x2b
	SCSI_READ_POSITION          = 0x34
	SCSI_REPORT_DENSITY_SUPPORT = 0x44
	SCSI_LOCATE_16              = 0x92

	// MMC (multimedia commands)
	SCSI_READ_TOC_PMA_ATIP     = 0x43
	SCSI_GET_CONFIGURATION     = 0x46
	SCSI_READ_DISC_INFORMATION = 0x51
	SCSI_READ_CD_MSF           = 0xb9
	SCSI_READ_CD               = 0xbe

	// SAT
	SCSI_ATA_PASSTHRU_16 = 0x85

	// Vendor specific
	ADAPTEC_TRANSLATE           = 0x0f
	ADAPTEC_SET_ERROR_THRESHOLD = 0x10
	ADAPTEC_READ_USAGE_COUNTER  = 0x11
	PLEXTOR_READ_CDDA           = 0xd8
	HLDTST_VENDOR               = 0xe7
	PLEXTOR_READ_EEPROM         = 0xf1

	// Service actions
	SAI_READ_CAPACITY_16         = 0x10
	SAI_READ_LONG_16             = 0x11
	SAI_READ_MEDIA_SERIAL_NUMBER = 0x01

	// Minimum length of standard INQUIRY response
	INQ_REPLY_LEN = 36

	// SCSI-3 mode pages
	RIGID_DISK_DRIVE_GEOMETRY_PAGE = 0x04
	ALL_PAGES                      = 0x3f

	// Mode page control field
	MPAGE_CONTROL_CURRENT    = 0
	MPAGE_CONTROL_CHANGEABLE = 1
	MPAGE_CONTROL_DEFAULT    = 2
	MPAGE_CONTROL_SAVED      = 3

	// Largest LBA of the 6-byte READ / SEEK commands (21 bits)
	MaxLBA6 = 0x1fffff

	// SCSI status codes
	SAM_STAT_GOOD            = 0x00
	SAM_STAT_CHECK_CONDITION = 0x02
)

// SCSI CDB types
type (
	CDB6  [6]byte
	CDB10 [10]byte
	CDB12 [12]byte
	CDB16 [16]byte
)

// ClampLBA6 limits lba to the 21 address bits of READ(6) and SEEK(6).
func ClampLBA6(lba uint32) uint32 {
	if lba > MaxLBA6 {
		return MaxLBA6
	}
	return lba
}
