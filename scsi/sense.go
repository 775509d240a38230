// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// SCSI sense data decoding.

package scsi

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/aaru-dps/devtest/ata"
)

const (
	SENSE_NO_SENSE        = 0x0
	SENSE_RECOVERED_ERROR = 0x1
	SENSE_NOT_READY       = 0x2
	SENSE_MEDIUM_ERROR    = 0x3
	SENSE_HARDWARE_ERROR  = 0x4
	SENSE_ILLEGAL_REQUEST = 0x5
	SENSE_UNIT_ATTENTION  = 0x6
	SENSE_DATA_PROTECT    = 0x7
	SENSE_BLANK_CHECK     = 0x8
	SENSE_VENDOR_SPECIFIC = 0x9
	SENSE_COPY_ABORTED    = 0xa
	SENSE_ABORTED_COMMAND = 0xb
	SENSE_VOLUME_OVERFLOW = 0xd
	SENSE_MISCOMPARE      = 0xe
	SENSE_COMPLETED       = 0xf

	// Sense descriptor types
	DESC_INFORMATION = 0x00
	DESC_STREAM      = 0x04
	DESC_ATA_RETURN  = 0x09
)

var ErrIllegalRequest = errors.New("illegal SCSI request")

var senseKeys = [16]string{
	"NO SENSE",
	"RECOVERED ERROR",
	"NOT READY",
	"MEDIUM ERROR",
	"HARDWARE ERROR",
	"ILLEGAL REQUEST",
	"UNIT ATTENTION",
	"DATA PROTECT",
	"BLANK CHECK",
	"VENDOR SPECIFIC",
	"COPY ABORTED",
	"ABORTED COMMAND",
	"RESERVED",
	"VOLUME OVERFLOW",
	"MISCOMPARE",
	"COMPLETED",
}

// Common additional sense codes, keyed by ASC << 8 | ASCQ. See https://www.t10.org/lists/asc-num.htm
var ascTable = map[uint16]string{
	0x0000: "No additional sense information",
	0x0001: "Filemark detected",
	0x0002: "End-of-partition/medium detected",
	0x0004: "Beginning-of-partition/medium detected",
	0x0005: "End-of-data detected",
	0x001d: "ATA pass through information available",
	0x0401: "Logical unit is in process of becoming ready",
	0x0402: "Logical unit not ready, initializing command required",
	0x0403: "Logical unit not ready, manual intervention required",
	0x1100: "Unrecovered read error",
	0x1106: "CIRC unrecovered error",
	0x1400: "Recorded entity not found",
	0x1401: "Record not found",
	0x1500: "Random positioning error",
	0x1a00: "Parameter list length error",
	0x2000: "Invalid command operation code",
	0x2100: "Logical block address out of range",
	0x2400: "Invalid field in CDB",
	0x2500: "Logical unit not supported",
	0x2600: "Invalid field in parameter list",
	0x2800: "Not ready to ready change, medium may have changed",
	0x2900: "Power on, reset, or bus device reset occurred",
	0x3000: "Incompatible medium installed",
	0x3002: "Cannot read medium - incompatible format",
	0x3a00: "Medium not present",
	0x3a01: "Medium not present - tray closed",
	0x3a02: "Medium not present - tray open",
	0x3b00: "Sequential positioning error",
	0x3e02: "Timeout on logical unit",
	0x4400: "Internal target failure",
	0x4700: "SCSI parity error",
	0x5300: "Media load or eject failed",
	0x5302: "Medium removal prevented",
	0x5d00: "Failure prediction threshold exceeded",
	0x6300: "End of user area encountered on this track",
	0x6400: "Illegal mode for this track",
	0x6f00: "Copy protection key exchange failure - authentication failure",
}

// Sense is decoded fixed or descriptor format sense data.
type Sense struct {
	ResponseCode uint8
	Key          uint8
	ASC          uint8
	ASCQ         uint8
	InfoValid    bool
	Information  uint64
	CmdSpecific  uint32 // fixed format only
	Filemark     bool
	EOM          bool
	ILI          bool
	Descriptors  []byte // descriptor format only
	Raw          []byte
}

// DecodeSense decodes fixed (70h / 71h) or descriptor (72h / 73h) format sense data. It returns
// false when buf holds no recognisable sense data.
func DecodeSense(buf []byte) (Sense, bool) {
	var s Sense

	if len(buf) < 2 {
		return s, false
	}

	s.Raw = buf
	s.ResponseCode = buf[0] & 0x7f

	switch s.ResponseCode {
	case 0x70, 0x71:
		if len(buf) < 3 {
			return s, false
		}

		s.Key = buf[2] & 0x0f
		s.Filemark = buf[2]&0x80 != 0
		s.EOM = buf[2]&0x40 != 0
		s.ILI = buf[2]&0x20 != 0

		if len(buf) >= 7 {
			s.InfoValid = buf[0]&0x80 != 0
			s.Information = uint64(binary.BigEndian.Uint32(buf[3:]))
		}
		if len(buf) >= 12 {
			s.CmdSpecific = binary.BigEndian.Uint32(buf[8:])
		}
		if len(buf) >= 14 {
			s.ASC = buf[12]
			s.ASCQ = buf[13]
		}
	case 0x72, 0x73:
		if len(buf) < 4 {
			return s, false
		}

		s.Key = buf[1] & 0x0f
		s.ASC = buf[2]
		s.ASCQ = buf[3]

		if len(buf) > 8 {
			end := 8 + int(buf[7])
			if end > len(buf) {
				end = len(buf)
			}
			s.Descriptors = buf[8:end]
		}

		for _, d := range s.descriptors() {
			switch d[0] {
			case DESC_INFORMATION:
				if len(d) >= 12 {
					s.InfoValid = d[2]&0x80 != 0
					s.Information = binary.BigEndian.Uint64(d[4:])
				}
			case DESC_STREAM:
				if len(d) >= 4 {
					s.Filemark = d[3]&0x80 != 0
					s.EOM = d[3]&0x40 != 0
					s.ILI = d[3]&0x20 != 0
				}
			}
		}
	default:
		return s, false
	}

	return s, true
}

// descriptors splits the descriptor list, each entry including its two byte header.
func (s Sense) descriptors() [][]byte {
	var list [][]byte

	for d := s.Descriptors; len(d) >= 2; {
		n := 2 + int(d[1])
		if n > len(d) {
			break
		}
		list = append(list, d[:n])
		d = d[n:]
	}

	return list
}

// KeyName returns the name of the sense key.
func (s Sense) KeyName() string {
	return senseKeys[s.Key&0x0f]
}

// Description returns the meaning of the ASC / ASCQ pair.
func (s Sense) Description() string {
	if d, ok := ascTable[uint16(s.ASC)<<8|uint16(s.ASCQ)]; ok {
		return d
	}

	if s.ASC >= 0x80 || s.ASCQ >= 0x80 {
		return fmt.Sprintf("Vendor specific ASC/ASCQ %02Xh/%02Xh", s.ASC, s.ASCQ)
	}

	return fmt.Sprintf("ASC/ASCQ %02Xh/%02Xh", s.ASC, s.ASCQ)
}

func (s Sense) String() string {
	parts := []string{s.KeyName(), s.Description()}

	if s.InfoValid {
		parts = append(parts, fmt.Sprintf("information %d", s.Information))
	}
	if s.Filemark {
		parts = append(parts, "filemark")
	}
	if s.EOM {
		parts = append(parts, "end of medium")
	}
	if s.ILI {
		parts = append(parts, "incorrect length")
	}

	return strings.Join(parts, ", ")
}

// ATAReturn extracts the ATA registers returned by an ATA PASS-THROUGH command, either from the
// ATA Return descriptor or from fixed format sense data with ASC / ASCQ 00h / 1Dh.
func (s Sense) ATAReturn() (ata.LBA48Registers, bool) {
	var r ata.LBA48Registers

	for _, d := range s.descriptors() {
		if d[0] != DESC_ATA_RETURN || len(d) < 14 {
			continue
		}

		r.Error = ata.Error(d[3])
		r.SectorCount = uint16(d[4])<<8 | uint16(d[5])
		r.LBALow = uint16(d[6])<<8 | uint16(d[7])
		r.LBAMid = uint16(d[8])<<8 | uint16(d[9])
		r.LBAHigh = uint16(d[10])<<8 | uint16(d[11])
		r.DeviceHead = d[12]
		r.Status = ata.Status(d[13])

		// Without the extend bit only the current (low) bytes are meaningful
		if d[2]&0x01 == 0 {
			r.SectorCount &= 0xff
			r.LBALow &= 0xff
			r.LBAMid &= 0xff
			r.LBAHigh &= 0xff
		}

		return r, true
	}

	if (s.ResponseCode == 0x70 || s.ResponseCode == 0x71) && s.ASC == 0x00 && s.ASCQ == 0x1d &&
		len(s.Raw) >= 12 {
		b := s.Raw
		r.Error = ata.Error(b[3])
		r.Status = ata.Status(b[4])
		r.DeviceHead = b[5]
		r.SectorCount = uint16(b[6])
		r.LBALow = uint16(b[9])
		r.LBAMid = uint16(b[10])
		r.LBAHigh = uint16(b[11])

		return r, true
	}

	return r, false
}
