// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// 28-bit LBA ATA commands.

package scsi

import "github.com/aaru-dps/devtest/ata"

func (d *SATDevice) ReadNativeMaxAddress() (LBA28Result, error) {
	tf := ata.Taskfile{Device: ata.DEVICE_LBA, Command: ata.ATA_READ_NATIVE_MAX}
	return d.lba28(tf, SAT_PROTO_NON_DATA, 0)
}

// ReadDMA reads count sectors (0 meaning 256) at lba, which is clamped to 28 bits.
func (d *SATDevice) ReadDMA(retry bool, lba uint32, count uint8) (LBA28Result, error) {
	cmd := uint8(ata.ATA_READ_DMA_NO_RETRY)
	if retry {
		cmd = ata.ATA_READ_DMA
	}

	tf := ata.LBA28Taskfile(cmd, lba, count)
	return d.lba28(tf, SAT_PROTO_DMA, sectors(tf.Count, false)*ata.SECTOR_SIZE)
}

// ReadLong reads one sector plus its ECC bytes, blockSize bytes in total.
func (d *SATDevice) ReadLong(retry bool, lba uint32, blockSize uint32) (LBA28Result, error) {
	cmd := uint8(ata.ATA_READ_LONG_NO_RETRY)
	if retry {
		cmd = ata.ATA_READ_LONG
	}

	tf := ata.LBA28Taskfile(cmd, lba, 1)
	return d.lba28(tf, SAT_PROTO_PIO_IN, int(blockSize))
}

func (d *SATDevice) ReadMultiple(lba uint32, count uint8) (LBA28Result, error) {
	tf := ata.LBA28Taskfile(ata.ATA_READ_MULTIPLE, lba, count)
	return d.lba28(tf, SAT_PROTO_PIO_IN, sectors(tf.Count, false)*ata.SECTOR_SIZE)
}

func (d *SATDevice) ReadSectors(retry bool, lba uint32, count uint8) (LBA28Result, error) {
	cmd := uint8(ata.ATA_READ_SECTORS_NO_RETRY)
	if retry {
		cmd = ata.ATA_READ_SECTORS
	}

	tf := ata.LBA28Taskfile(cmd, lba, count)
	return d.lba28(tf, SAT_PROTO_PIO_IN, sectors(tf.Count, false)*ata.SECTOR_SIZE)
}

func (d *SATDevice) Seek(lba uint32) (LBA28Result, error) {
	tf := ata.LBA28Taskfile(ata.ATA_SEEK, lba, 0)
	return d.lba28(tf, SAT_PROTO_NON_DATA, 0)
}
