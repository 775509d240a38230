// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// SCSI Multi-Media Commands (MMC).

package scsi

import (
	"encoding/binary"
	"fmt"
)

// ReadCDOptions select the sector fields returned by READ CD and READ CD MSF.
type ReadCDOptions struct {
	SectorType uint8 // expected sector type, 0 accepts any
	DAP        bool  // digital audio play, conceal CD-DA errors
	Sync       bool
	Headers    uint8 // 0 none, 1 header only, 2 subheader only, 3 all headers
	UserData   bool
	EDC        bool  // EDC and ECC
	C2         uint8 // 0 none, 1 C2 error pointers, 2 C2 pointers and block error byte
	Subchannel uint8 // 0 none, 1 raw, 2 Q, 4 R-W
}

func (o ReadCDOptions) bytes() (b1, b9, b10 uint8) {
	b1 = (o.SectorType & 0x07) << 2
	if o.DAP {
		b1 |= 0x02
	}

	if o.Sync {
		b9 |= 0x80
	}
	b9 |= (o.Headers & 0x03) << 5
	if o.UserData {
		b9 |= 0x10
	}
	if o.EDC {
		b9 |= 0x08
	}
	b9 |= (o.C2 & 0x03) << 1

	b10 = o.Subchannel & 0x07

	return
}

// MSF is a CD address in minutes, seconds and frames.
type MSF struct {
	M, S, F uint8
}

// LBA converts the address, which includes the two second pregap, to a logical block address.
func (m MSF) LBA() int32 {
	return (int32(m.M)*60+int32(m.S))*75 + int32(m.F) - 150
}

func (m MSF) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", m.M, m.S, m.F)
}

// GetConfiguration requests feature descriptors starting at start, rt selecting all, current or
// a single feature.
func (d *Device) GetConfiguration(rt uint8, start, alloc uint16) (Result, error) {
	cdb := CDB10{SCSI_GET_CONFIGURATION}
	cdb[1] = rt & 0x03
	binary.BigEndian.PutUint16(cdb[2:], start)
	binary.BigEndian.PutUint16(cdb[7:], alloc)

	return d.send(cdb[:], DirFromDevice, int(alloc))
}

// ReadTOC reads the table of contents, PMA or ATIP depending on format.
func (d *Device) ReadTOC(msf bool, format, trackSession uint8, alloc uint16) (Result, error) {
	cdb := CDB10{SCSI_READ_TOC_PMA_ATIP}
	if msf {
		cdb[1] = 0x02
	}
	cdb[2] = format & 0x0f
	cdb[6] = trackSession
	binary.BigEndian.PutUint16(cdb[7:], alloc)

	return d.send(cdb[:], DirFromDevice, int(alloc))
}

func (d *Device) ReadDiscInformation(dataType uint8, alloc uint16) (Result, error) {
	cdb := CDB10{SCSI_READ_DISC_INFORMATION}
	cdb[1] = dataType & 0x07
	binary.BigEndian.PutUint16(cdb[7:], alloc)

	return d.send(cdb[:], DirFromDevice, int(alloc))
}

// ReadCD reads count sectors of blockSize bytes (the size implied by opts) from lba.
func (d *Device) ReadCD(lba, count, blockSize uint32, opts ReadCDOptions) (Result, error) {
	if count > MaxLength24 {
		count = MaxLength24
	}

	cdb := CDB12{SCSI_READ_CD}
	cdb[1], cdb[9], cdb[10] = opts.bytes()
	binary.BigEndian.PutUint32(cdb[2:], lba)
	cdb[6] = uint8(count >> 16)
	cdb[7] = uint8(count >> 8)
	cdb[8] = uint8(count)

	return d.send(cdb[:], DirFromDevice, transferLen(count, blockSize, 0))
}

// ReadCDMSF reads the sectors from start up to, but not including, end.
func (d *Device) ReadCDMSF(start, end MSF, blockSize uint32, opts ReadCDOptions) (Result, error) {
	cdb := CDB12{SCSI_READ_CD_MSF}
	cdb[1], cdb[9], cdb[10] = opts.bytes()
	cdb[3], cdb[4], cdb[5] = start.M, start.S, start.F
	cdb[6], cdb[7], cdb[8] = end.M, end.S, end.F

	var count uint32
	if n := end.LBA() - start.LBA(); n > 0 {
		count = uint32(n)
	}

	return d.send(cdb[:], DirFromDevice, transferLen(count, blockSize, 0))
}
