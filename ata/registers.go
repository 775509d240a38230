// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// ATA status / error register decoding.

package ata

import (
	"fmt"
	"strings"
)

// Status is the ATA status register.
type Status uint8

const (
	StatusERR  Status = 1 << 0 // error
	StatusIDX  Status = 1 << 1 // index (obsolete)
	StatusCORR Status = 1 << 2 // corrected data (obsolete)
	StatusDRQ  Status = 1 << 3 // data request
	StatusDSC  Status = 1 << 4 // seek complete / deferred write error
	StatusDF   Status = 1 << 5 // device fault
	StatusDRDY Status = 1 << 6 // device ready
	StatusBSY  Status = 1 << 7 // busy
)

var statusBits = [8]string{"ERR", "IDX", "CORR", "DRQ", "DSC", "DF", "DRDY", "BSY"}

func (s Status) String() string {
	return fmt.Sprintf("0x%02x (%s)", uint8(s), bitNames(uint8(s), statusBits))
}

// Error is the ATA error register.
type Error uint8

const (
	ErrorAMNF  Error = 1 << 0 // address mark not found
	ErrorTK0NF Error = 1 << 1 // track 0 not found
	ErrorABRT  Error = 1 << 2 // command aborted
	ErrorMCR   Error = 1 << 3 // media change request
	ErrorIDNF  Error = 1 << 4 // ID not found
	ErrorMC    Error = 1 << 5 // media changed
	ErrorUNC   Error = 1 << 6 // uncorrectable data error
	ErrorICRC  Error = 1 << 7 // interface CRC error (bad block on older devices)
)

var errorBits = [8]string{"AMNF", "TK0NF", "ABRT", "MCR", "IDNF", "MC", "UNC", "ICRC"}

func (e Error) String() string {
	return fmt.Sprintf("0x%02x (%s)", uint8(e), bitNames(uint8(e), errorBits))
}

func bitNames(v uint8, names [8]string) string {
	var set []string

	for i := 7; i >= 0; i-- {
		if v&(1<<i) != 0 {
			set = append(set, names[i])
		}
	}

	if len(set) == 0 {
		return "none"
	}

	return strings.Join(set, " ")
}

func failed(s Status) bool {
	return s&(StatusERR|StatusDF) != 0
}

// LBA28Registers holds the registers returned by a 28-bit command.
type LBA28Registers struct {
	Status      Status
	Error       Error
	SectorCount uint8
	LBALow      uint8
	LBAMid      uint8
	LBAHigh     uint8
	DeviceHead  uint8
}

// LBA returns the 28-bit address held in the registers.
func (r LBA28Registers) LBA() uint32 {
	return uint32(r.DeviceHead&0x0f)<<24 | uint32(r.LBAHigh)<<16 | uint32(r.LBAMid)<<8 | uint32(r.LBALow)
}

// Failed reports whether the device flagged an error or a device fault.
func (r LBA28Registers) Failed() bool {
	return failed(r.Status)
}

func (r LBA28Registers) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Status: %s\n", r.Status)
	fmt.Fprintf(&b, "Error: %s\n", r.Error)
	fmt.Fprintf(&b, "Sector count: %d\n", r.SectorCount)
	fmt.Fprintf(&b, "LBA: %d (low %#02x, mid %#02x, high %#02x)\n", r.LBA(), r.LBALow, r.LBAMid, r.LBAHigh)
	fmt.Fprintf(&b, "Device/head: %#02x\n", r.DeviceHead)

	return b.String()
}

// LBA48Registers holds the registers returned by a 48-bit command. The high byte of each 16-bit
// field is the "previous" register content.
type LBA48Registers struct {
	Status      Status
	Error       Error
	SectorCount uint16
	LBALow      uint16
	LBAMid      uint16
	LBAHigh     uint16
	DeviceHead  uint8
}

// LBA returns the 48-bit address held in the registers.
func (r LBA48Registers) LBA() uint64 {
	return uint64(r.LBALow&0xff) | uint64(r.LBAMid&0xff)<<8 | uint64(r.LBAHigh&0xff)<<16 |
		uint64(r.LBALow>>8)<<24 | uint64(r.LBAMid>>8)<<32 | uint64(r.LBAHigh>>8)<<40
}

// Failed reports whether the device flagged an error or a device fault.
func (r LBA48Registers) Failed() bool {
	return failed(r.Status)
}

// LBA28 returns the current (low byte) register contents as seen by a 28-bit command.
func (r LBA48Registers) LBA28() LBA28Registers {
	return LBA28Registers{
		Status:      r.Status,
		Error:       r.Error,
		SectorCount: uint8(r.SectorCount),
		LBALow:      uint8(r.LBALow),
		LBAMid:      uint8(r.LBAMid),
		LBAHigh:     uint8(r.LBAHigh),
		DeviceHead:  r.DeviceHead,
	}
}

// CHS returns the register contents as seen by a CHS command.
func (r LBA48Registers) CHS() CHSRegisters {
	return CHSRegisters{
		Status:       r.Status,
		Error:        r.Error,
		SectorCount:  uint8(r.SectorCount),
		Sector:       uint8(r.LBALow),
		CylinderLow:  uint8(r.LBAMid),
		CylinderHigh: uint8(r.LBAHigh),
		DeviceHead:   r.DeviceHead,
	}
}

func (r LBA48Registers) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Status: %s\n", r.Status)
	fmt.Fprintf(&b, "Error: %s\n", r.Error)
	fmt.Fprintf(&b, "Sector count: %d\n", r.SectorCount)
	fmt.Fprintf(&b, "LBA: %d (low %#04x, mid %#04x, high %#04x)\n", r.LBA(), r.LBALow, r.LBAMid, r.LBAHigh)
	fmt.Fprintf(&b, "Device/head: %#02x\n", r.DeviceHead)

	return b.String()
}

// CHSRegisters holds the registers returned by a CHS command.
type CHSRegisters struct {
	Status       Status
	Error        Error
	SectorCount  uint8
	Sector       uint8
	CylinderLow  uint8
	CylinderHigh uint8
	DeviceHead   uint8
}

func (r CHSRegisters) Cylinder() uint16 {
	return uint16(r.CylinderHigh)<<8 | uint16(r.CylinderLow)
}

func (r CHSRegisters) Head() uint8 {
	return r.DeviceHead & 0x0f
}

// Failed reports whether the device flagged an error or a device fault.
func (r CHSRegisters) Failed() bool {
	return failed(r.Status)
}

func (r CHSRegisters) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Status: %s\n", r.Status)
	fmt.Fprintf(&b, "Error: %s\n", r.Error)
	fmt.Fprintf(&b, "Sector count: %d\n", r.SectorCount)
	fmt.Fprintf(&b, "Cylinder: %d, head: %d, sector: %d\n", r.Cylinder(), r.Head(), r.Sector)
	fmt.Fprintf(&b, "Device/head: %#02x\n", r.DeviceHead)

	return b.String()
}

// SMARTStatus interprets the registers returned by SMART RETURN STATUS. valid is false when the
// device did not return either signature.
func SMARTStatus(r LBA28Registers) (exceeded, valid bool) {
	switch {
	case r.LBAMid == SMART_LBA_MID && r.LBAHigh == SMART_LBA_HIGH:
		return false, true
	case r.LBAMid == 0xf4 && r.LBAHigh == 0x2c:
		return true, true
	}

	return false, false
}
