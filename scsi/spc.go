// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// SCSI Primary Commands (SPC).

package scsi

import (
	"encoding/binary"
	"fmt"
)

const (
	// Fixed allocation lengths
	REQUEST_SENSE_LEN      = 252
	READ_CAPACITY_10_LEN   = 8
	READ_CAPACITY_16_LEN   = 32
	DEFAULT_ALLOCATION_LEN = 512
)

// Capacity is a decoded READ CAPACITY response.
type Capacity struct {
	LastLBA   uint64 // max. addressable LBA
	BlockSize uint32 // logical block (i.e., sector) size
}

// Bytes returns the capacity in bytes.
func (c Capacity) Bytes() uint64 {
	return (c.LastLBA + 1) * uint64(c.BlockSize)
}

func (c Capacity) String() string {
	return fmt.Sprintf("last LBA %d, block size %d bytes, %d bytes", c.LastLBA, c.BlockSize, c.Bytes())
}

// InquiryRaw sends INQUIRY, optionally for a vital product data page.
func (d *Device) InquiryRaw(evpd bool, page uint8, alloc uint16) (Result, error) {
	cdb := CDB6{SCSI_INQUIRY}
	if evpd {
		cdb[1] = 0x01
	}
	cdb[2] = page
	binary.BigEndian.PutUint16(cdb[3:], alloc)

	return d.send(cdb[:], DirFromDevice, int(alloc))
}

func (d *Device) TestUnitReady() (Result, error) {
	cdb := CDB6{SCSI_TEST_UNIT_READY}
	return d.send(cdb[:], DirNone, 0)
}

// RequestSense fetches the pending sense data, in descriptor format if requested.
func (d *Device) RequestSense(descriptor bool) (Result, error) {
	cdb := CDB6{SCSI_REQUEST_SENSE}
	if descriptor {
		cdb[1] = 0x01
	}
	cdb[4] = REQUEST_SENSE_LEN

	return d.send(cdb[:], DirFromDevice, REQUEST_SENSE_LEN)
}

// ModeSense6 sends a SCSI MODE SENSE(6) command.
func (d *Device) ModeSense6(dbd bool, pageControl, pageNum, subPageNum, alloc uint8) (Result, error) {
	cdb := CDB6{SCSI_MODE_SENSE_6}
	if dbd {
		cdb[1] = 0x08
	}
	cdb[2] = (pageControl << 6) | (pageNum & 0x3f)
	cdb[3] = subPageNum
	cdb[4] = alloc

	return d.send(cdb[:], DirFromDevice, int(alloc))
}

// ModeSense10 sends a SCSI MODE SENSE(10) command.
func (d *Device) ModeSense10(llbaa, dbd bool, pageControl, pageNum, subPageNum uint8, alloc uint16) (Result, error) {
	cdb := CDB10{SCSI_MODE_SENSE_10}
	if llbaa {
		cdb[1] |= 0x10
	}
	if dbd {
		cdb[1] |= 0x08
	}
	cdb[2] = (pageControl << 6) | (pageNum & 0x3f)
	cdb[3] = subPageNum
	binary.BigEndian.PutUint16(cdb[7:], alloc)

	return d.send(cdb[:], DirFromDevice, int(alloc))
}

// LogSense sends a SCSI LOG SENSE command.
func (d *Device) LogSense(ppc, sp bool, pageControl, pageNum, subPageNum uint8, paramPtr, alloc uint16) (Result, error) {
	cdb := CDB10{SCSI_LOG_SENSE}
	if ppc {
		cdb[1] |= 0x02
	}
	if sp {
		cdb[1] |= 0x01
	}
	cdb[2] = (pageControl << 6) | (pageNum & 0x3f)
	cdb[3] = subPageNum
	binary.BigEndian.PutUint16(cdb[5:], paramPtr)
	binary.BigEndian.PutUint16(cdb[7:], alloc)

	return d.send(cdb[:], DirFromDevice, int(alloc))
}

// PreventAllowMediumRemoval sets the medium removal state (0 allow, 1 prevent, 2 / 3 persistent).
func (d *Device) PreventAllowMediumRemoval(prevent uint8) (Result, error) {
	cdb := CDB6{SCSI_PREVENT_ALLOW_MEDIUM_REMOVAL}
	cdb[4] = prevent & 0x03

	return d.send(cdb[:], DirNone, 0)
}

func (d *Device) ReadCapacity10() (Result, error) {
	cdb := CDB10{SCSI_READ_CAPACITY_10}
	return d.send(cdb[:], DirFromDevice, READ_CAPACITY_10_LEN)
}

func (d *Device) ReadCapacity16() (Result, error) {
	cdb := CDB16{SCSI_SERVICE_ACTION_IN_16, SAI_READ_CAPACITY_16}
	binary.BigEndian.PutUint32(cdb[10:], READ_CAPACITY_16_LEN)

	return d.send(cdb[:], DirFromDevice, READ_CAPACITY_16_LEN)
}

// ReportLUNs sends REPORT LUNS with the given SELECT REPORT field.
func (d *Device) ReportLUNs(selectReport uint8, alloc uint32) (Result, error) {
	cdb := CDB12{SCSI_REPORT_LUNS}
	cdb[2] = selectReport
	binary.BigEndian.PutUint32(cdb[6:], alloc)

	return d.send(cdb[:], DirFromDevice, int(alloc))
}

func (d *Device) ReadMediaSerialNumber(alloc uint32) (Result, error) {
	cdb := CDB12{SCSI_SERVICE_ACTION_IN_12, SAI_READ_MEDIA_SERIAL_NUMBER}
	binary.BigEndian.PutUint32(cdb[6:], alloc)

	return d.send(cdb[:], DirFromDevice, int(alloc))
}

// DecodeReadCapacity10 decodes the 8 byte READ CAPACITY(10) response.
func DecodeReadCapacity10(buf []byte) (Capacity, error) {
	if len(buf) < READ_CAPACITY_10_LEN {
		return Capacity{}, fmt.Errorf("READ CAPACITY(10) response too short: %d bytes", len(buf))
	}

	return Capacity{
		LastLBA:   uint64(binary.BigEndian.Uint32(buf[0:])),
		BlockSize: binary.BigEndian.Uint32(buf[4:]),
	}, nil
}

// DecodeReadCapacity16 decodes the READ CAPACITY(16) response.
func DecodeReadCapacity16(buf []byte) (Capacity, error) {
	if len(buf) < 12 {
		return Capacity{}, fmt.Errorf("READ CAPACITY(16) response too short: %d bytes", len(buf))
	}

	return Capacity{
		LastLBA:   binary.BigEndian.Uint64(buf[0:]),
		BlockSize: binary.BigEndian.Uint32(buf[8:]),
	}, nil
}
