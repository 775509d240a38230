// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// CompactFlash and Media Card Pass-Through commands.

package scsi

import "github.com/aaru-dps/devtest/ata"

// CFARequestExtendedErrorCode returns the extended error code in the error register.
func (d *SATDevice) CFARequestExtendedErrorCode() (LBA28Result, error) {
	tf := ata.Taskfile{Command: ata.ATA_CFA_REQUEST_EXTENDED_ERROR}
	return d.lba28(tf, SAT_PROTO_NON_DATA, 0)
}

// CFATranslateSector returns the 512 byte translation (erase and write counts) of an LBA.
func (d *SATDevice) CFATranslateSector(lba uint32) (LBA28Result, error) {
	tf := ata.LBA28Taskfile(ata.ATA_CFA_TRANSLATE_SECTOR, lba, 1)
	return d.lba28(tf, SAT_PROTO_PIO_IN, ata.SECTOR_SIZE)
}

func (d *SATDevice) CFATranslateSectorCHS(cylinder uint16, head, sector uint8) (CHSResult, error) {
	tf := ata.CHSTaskfile(ata.ATA_CFA_TRANSLATE_SECTOR, cylinder, head, sector, 1)
	return d.chs(tf, SAT_PROTO_PIO_IN, ata.SECTOR_SIZE)
}

// CheckMediaCardType sends CHECK MEDIA CARD TYPE. Bit 0 of feature enables Media Card
// Pass-Through mode.
func (d *SATDevice) CheckMediaCardType(feature uint8) (LBA28Result, error) {
	tf := ata.Taskfile{Feature: uint16(feature), Command: ata.ATA_CHECK_MEDIA_CARD_TYPE}
	return d.lba28(tf, SAT_PROTO_NON_DATA, 0)
}

func (d *SATDevice) CFACheckMediaCardType(feature uint8) (LBA28Result, error) {
	return d.CheckMediaCardType(feature)
}
