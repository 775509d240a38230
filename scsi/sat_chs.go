// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// CHS addressed ATA commands, for devices predating LBA.

package scsi

import "github.com/aaru-dps/devtest/ata"

// IdentifyCHS sends IDENTIFY DEVICE with the LBA bit of the device register clear.
func (d *SATDevice) IdentifyCHS() (CHSResult, error) {
	tf := ata.Taskfile{Count: 1, Command: ata.ATA_IDENTIFY_DEVICE}
	return d.chs(tf, SAT_PROTO_PIO_IN, ata.SECTOR_SIZE)
}

// ReadDMACHS reads count sectors (0 meaning 256). head is clamped to 15.
func (d *SATDevice) ReadDMACHS(retry bool, cylinder uint16, head, sector, count uint8) (CHSResult, error) {
	cmd := uint8(ata.ATA_READ_DMA_NO_RETRY)
	if retry {
		cmd = ata.ATA_READ_DMA
	}

	tf := ata.CHSTaskfile(cmd, cylinder, head, sector, count)
	return d.chs(tf, SAT_PROTO_DMA, sectors(tf.Count, false)*ata.SECTOR_SIZE)
}

func (d *SATDevice) ReadLongCHS(retry bool, cylinder uint16, head, sector uint8, blockSize uint32) (CHSResult, error) {
	cmd := uint8(ata.ATA_READ_LONG_NO_RETRY)
	if retry {
		cmd = ata.ATA_READ_LONG
	}

	tf := ata.CHSTaskfile(cmd, cylinder, head, sector, 1)
	return d.chs(tf, SAT_PROTO_PIO_IN, int(blockSize))
}

func (d *SATDevice) ReadMultipleCHS(cylinder uint16, head, sector, count uint8) (CHSResult, error) {
	tf := ata.CHSTaskfile(ata.ATA_READ_MULTIPLE, cylinder, head, sector, count)
	return d.chs(tf, SAT_PROTO_PIO_IN, sectors(tf.Count, false)*ata.SECTOR_SIZE)
}

func (d *SATDevice) ReadSectorsCHS(retry bool, cylinder uint16, head, sector, count uint8) (CHSResult, error) {
	cmd := uint8(ata.ATA_READ_SECTORS_NO_RETRY)
	if retry {
		cmd = ata.ATA_READ_SECTORS
	}

	tf := ata.CHSTaskfile(cmd, cylinder, head, sector, count)
	return d.chs(tf, SAT_PROTO_PIO_IN, sectors(tf.Count, false)*ata.SECTOR_SIZE)
}

func (d *SATDevice) SeekCHS(cylinder uint16, head, sector uint8) (CHSResult, error) {
	tf := ata.CHSTaskfile(ata.ATA_SEEK, cylinder, head, sector, 0)
	return d.chs(tf, SAT_PROTO_NON_DATA, 0)
}

// SetFeatures sends SET FEATURES with the given subcommand, the remaining registers carrying its
// subcommand specific parameters.
func (d *SATDevice) SetFeatures(feature, count uint8, cylinder uint16, head, sector uint8) (CHSResult, error) {
	tf := ata.CHSTaskfile(ata.ATA_SET_FEATURES, cylinder, head, sector, count)
	tf.Feature = uint16(feature)

	return d.chs(tf, SAT_PROTO_NON_DATA, 0)
}
