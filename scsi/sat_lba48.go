// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// 48-bit LBA ATA commands.

package scsi

import "github.com/aaru-dps/devtest/ata"

func (d *SATDevice) ReadNativeMaxAddressExt() (LBA48Result, error) {
	tf := ata.Taskfile{Device: ata.DEVICE_LBA, Command: ata.ATA_READ_NATIVE_MAX_EXT}
	return d.lba48(tf, SAT_PROTO_NON_DATA, 0)
}

// ReadDMAExt reads count sectors (0 meaning 65536) at lba, which is clamped to 48 bits.
func (d *SATDevice) ReadDMAExt(lba uint64, count uint16) (LBA48Result, error) {
	tf := ata.LBA48Taskfile(ata.ATA_READ_DMA_EXT, lba, count)
	return d.lba48(tf, SAT_PROTO_DMA, sectors(count, true)*ata.SECTOR_SIZE)
}

// logTaskfile addresses count pages of a general purpose log starting at page. The page number
// goes into LBA (15:8) and LBA (39:32), which are both held by the LBA mid register pair.
func logTaskfile(cmd, log uint8, page, count uint16) ata.Taskfile {
	return ata.Taskfile{
		Count:   count,
		LBALow:  uint16(log),
		LBAMid:  page,
		Device:  ata.DEVICE_LBA,
		Command: cmd,
	}
}

func (d *SATDevice) ReadLogExt(log uint8, page, count uint16) (LBA48Result, error) {
	tf := logTaskfile(ata.ATA_READ_LOG_EXT, log, page, count)
	return d.lba48(tf, SAT_PROTO_PIO_IN, sectors(count, true)*ata.SECTOR_SIZE)
}

func (d *SATDevice) ReadLogDMAExt(log uint8, page, count uint16) (LBA48Result, error) {
	tf := logTaskfile(ata.ATA_READ_LOG_DMA_EXT, log, page, count)
	return d.lba48(tf, SAT_PROTO_DMA, sectors(count, true)*ata.SECTOR_SIZE)
}

func (d *SATDevice) ReadMultipleExt(lba uint64, count uint16) (LBA48Result, error) {
	tf := ata.LBA48Taskfile(ata.ATA_READ_MULTIPLE_EXT, lba, count)
	return d.lba48(tf, SAT_PROTO_PIO_IN, sectors(count, true)*ata.SECTOR_SIZE)
}

func (d *SATDevice) ReadSectorsExt(lba uint64, count uint16) (LBA48Result, error) {
	tf := ata.LBA48Taskfile(ata.ATA_READ_SECTORS_EXT, lba, count)
	return d.lba48(tf, SAT_PROTO_PIO_IN, sectors(count, true)*ata.SECTOR_SIZE)
}
