// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// ATA IDENTIFY DEVICE response parsing

package ata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/aaru-dps/devtest/utils"
)

// Table 10 of X3T13/2008D (ATA-3) Revision 7b, January 27, 1997
// Table 28 of T13/1410D (ATA/ATAPI-6) Revision 3b, February 26, 2002
// Table 31 of T13/1699-D (ATA8-ACS) Revision 6a, September 6, 2008
// Table 46 of T13/BSR INCITS 529 (ACS-4) Revision 08, April 28, 2015
var ataMinorVersions = map[uint16]string{
	0x0001: "ATA-1 X3T9.2/781D prior to revision 4",
	0x0002: "ATA-1 published, ANSI X3.221-1994",
	0x0003: "ATA-1 X3T9.2/781D revision 4",
	0x0004: "ATA-2 published, ANSI X3.279-1996",
	0x0005: "ATA-2 X3T10/948D prior to revision 2k",
	0x0006: "ATA-3 X3T10/2008D revision 1",
	0x0007: "ATA-2 X3T10/948D revision 2k",
	0x0008: "ATA-3 X3T10/2008D revision 0",
	0x0009: "ATA-2 X3T10/948D revision 3",
	0x000a: "ATA-3 published, ANSI X3.298-1997",
	0x000b: "ATA-3 X3T10/2008D revision 6",
	0x000c: "ATA-3 X3T13/2008D revision 7 and 7a",
	0x000d: "ATA/ATAPI-4 X3T13/1153D revision 6",
	0x000e: "ATA/ATAPI-4 T13/1153D revision 13",
	0x000f: "ATA/ATAPI-4 X3T13/1153D revision 7",
	0x0010: "ATA/ATAPI-4 T13/1153D revision 18",
	0x0011: "ATA/ATAPI-4 T13/1153D revision 15",
	0x0012: "ATA/ATAPI-4 published, ANSI NCITS 317-1998",
	0x0013: "ATA/ATAPI-5 T13/1321D revision 3",
	0x0014: "ATA/ATAPI-4 T13/1153D revision 14",
	0x0015: "ATA/ATAPI-5 T13/1321D revision 1",
	0x0016: "ATA/ATAPI-5 published, ANSI NCITS 340-2000",
	0x0017: "ATA/ATAPI-4 T13/1153D revision 17",
	0x0018: "ATA/ATAPI-6 T13/1410D revision 0",
	0x0019: "ATA/ATAPI-6 T13/1410D revision 3a",
	0x001a: "ATA/ATAPI-7 T13/1532D revision 1",
	0x001b: "ATA/ATAPI-6 T13/1410D revision 2",
	0x001c: "ATA/ATAPI-6 T13/1410D revision 1",
	0x001d: "ATA/ATAPI-7 published, ANSI INCITS 397-2005",
	0x001e: "ATA/ATAPI-7 T13/1532D revision 0",
	0x001f: "ACS-3 T13/2161-D revision 3b",
	0x0021: "ATA/ATAPI-7 T13/1532D revision 4a",
	0x0022: "ATA/ATAPI-6 published, ANSI INCITS 361-2002",
	0x0027: "ATA8-ACS T13/1699-D revision 3c",
	0x0028: "ATA8-ACS T13/1699-D revision 6",
	0x0029: "ATA8-ACS T13/1699-D revision 4",
	0x0031: "ACS-2 T13/2015-D revision 2",
	0x0033: "ATA8-ACS T13/1699-D revision 3e",
	0x0039: "ATA8-ACS T13/1699-D revision 4c",
	0x0042: "ATA8-ACS T13/1699-D revision 3f",
	0x0052: "ATA8-ACS T13/1699-D revision 3b",
	0x005e: "ACS-4 T13/BSR INCITS 529 revision 5",
	0x006d: "ACS-3 T13/2161-D revision 5",
	0x0082: "ACS-2 published, ANSI INCITS 482-2012",
	0x0107: "ATA8-ACS T13/1699-D revision 2d",
	0x010a: "ACS-3 published, ANSI INCITS 522-2014",
	0x0110: "ACS-2 T13/2015-D revision 3",
	0x011b: "ACS-3 T13/2161-D revision 4",
}

// IdentifyDeviceData is the 512 byte IDENTIFY DEVICE (or IDENTIFY PACKET DEVICE) page. ACS
// defines it as a page of 16-bit words; string fields are byteswapped within each word. Only the
// words used by this package are named.
type IdentifyDeviceData struct {
	GeneralConfig       uint16      // Word 0, general configuration. If bit 15 is zero, device is ATA.
	NumCylinders        uint16      // Word 1, default number of logical cylinders (obsolete).
	_                   uint16      // ...
	NumHeads            uint16      // Word 3, default number of logical heads (obsolete).
	_                   [2]uint16   // ...
	SectorsPerTrack     uint16      // Word 6, default sectors per track (obsolete).
	_                   [3]uint16   // ...
	SerialNumberRaw     [20]byte    // Word 10..19, device serial number, padded with spaces (20h).
	_                   [3]uint16   // ...
	FirmwareRevisionRaw [8]byte     // Word 23..26, device firmware revision, padded with spaces (20h).
	ModelNumberRaw      [40]byte    // Word 27..46, device model number, padded with spaces (20h).
	MaxMultiple         uint16      // Word 47, maximum sectors per READ/WRITE MULTIPLE in bits 7:0.
	_                   uint16      // ...
	Capabilities        uint16      // Word 49, bit 9 LBA supported, bit 8 DMA supported.
	_                   [4]uint16   // ...
	CurrentCylinders    uint16      // Word 54, current logical cylinders (obsolete).
	CurrentHeads        uint16      // Word 55, current logical heads (obsolete).
	CurrentSectors      uint16      // Word 56, current sectors per track (obsolete).
	_                   [3]uint16   // ...
	LBA28Capacity       [2]uint16   // Word 60..61, total addressable sectors for 28-bit commands.
	_                   [14]uint16  // ...
	SATACap             uint16      // Word 76, SATA capabilities.
	SATACapAddl         uint16      // Word 77, SATA additional capabilities.
	_                   [2]uint16   // ...
	MajorVersion        uint16      // Word 80, major version number.
	MinorVersion        uint16      // Word 81, minor version number.
	Word82              uint16      // Word 82, supported commands and feature sets (bit 0 SMART).
	Word83              uint16      // Word 83, supported commands and feature sets (bit 10 48-bit).
	Word84              uint16      // Word 84, supported commands and feature sets.
	Word85              uint16      // Word 85, enabled commands and feature sets (bit 0 SMART).
	Word86              uint16      // Word 86, enabled commands and feature sets.
	Word87              uint16      // Word 87, enabled commands and feature sets.
	UDMAModes           uint16      // Word 88, Ultra DMA modes supported / selected.
	_                   [11]uint16  // ...
	LBA48Capacity       [4]uint16   // Word 100..103, total addressable sectors for 48-bit commands.
	_                   [2]uint16   // ...
	SectorSizeInfo      uint16      // Word 106, physical / logical sector size.
	_                   uint16      // ...
	WWNRaw              [4]uint16   // Word 108..111, WWN (World Wide Name).
	_                   [105]uint16 // ...
	RotationRate        uint16      // Word 217, nominal media rotation rate.
	_                   [4]uint16   // ...
	TransportMajor      uint16      // Word 222, transport major version number.
	_                   [33]uint16  // ...
} // 512 bytes

// ParseIdentify decodes an IDENTIFY DEVICE page.
func ParseIdentify(buf []byte) (IdentifyDeviceData, error) {
	var d IdentifyDeviceData

	if len(buf) < 512 {
		return d, fmt.Errorf("IDENTIFY data too short: %d bytes", len(buf))
	}

	err := binary.Read(bytes.NewReader(buf[:512]), binary.LittleEndian, &d)
	return d, err
}

// ATAMajorVersion returns the ATA major version from an ATA IDENTIFY command.
func (d *IdentifyDeviceData) ATAMajorVersion() (s string) {
	if (d.MajorVersion == 0) || (d.MajorVersion == 0xffff) {
		s = "device does not report ATA major version"
		return
	}

	switch utils.Log2b(uint(d.MajorVersion)) {
	case 1:
		s = "ATA-1"
	case 2:
		s = "ATA-2"
	case 3:
		s = "ATA-3"
	case 4:
		s = "ATA/ATAPI-4"
	case 5:
		s = "ATA/ATAPI-5"
	case 6:
		s = "ATA/ATAPI-6"
	case 7:
		s = "ATA/ATAPI-7"
	case 8:
		s = "ATA8-ACS"
	case 9:
		s = "ACS-2"
	case 10:
		s = "ACS-3"
	case 11:
		s = "ACS-4"
	default:
		s = "unknown"
	}

	return
}

// ATAMinorVersion returns the ATA minor version from an ATA IDENTIFY command.
func (d *IdentifyDeviceData) ATAMinorVersion() string {
	if (d.MinorVersion == 0) || (d.MinorVersion == 0xffff) {
		return "device does not report ATA minor version"
	}

	// Since the ATA minor version word is not a bitmask, we simply do a map lookup
	if s, ok := ataMinorVersions[d.MinorVersion]; ok {
		return s
	}

	return "unknown"
}

// FirmwareRevision returns the firmware version of a device from an ATA IDENTIFY command.
func (d *IdentifyDeviceData) FirmwareRevision() []byte {
	return d.swapBytes(d.FirmwareRevisionRaw[:])
}

// ModelNumber returns the model number of a device from an ATA IDENTIFY command.
func (d *IdentifyDeviceData) ModelNumber() []byte {
	return d.swapBytes(d.ModelNumberRaw[:])
}

// SerialNumber returns the serial number of a device from an ATA IDENTIFY command.
func (d *IdentifyDeviceData) SerialNumber() []byte {
	return d.swapBytes(d.SerialNumberRaw[:])
}

func (d *IdentifyDeviceData) Transport() (s string) {
	if (d.TransportMajor == 0) || (d.TransportMajor == 0xffff) {
		s = "device does not report transport"
		return
	}

	switch d.TransportMajor >> 12 {
	case 0x0:
		s = "Parallel ATA"
	case 0x1:
		s = "Serial ATA"

		switch utils.Log2b(uint(d.TransportMajor & 0x0fff)) {
		case 0:
			s += " ATA8-AST"
		case 1:
			s += " SATA 1.0a"
		case 2:
			s += " SATA II Ext"
		case 3:
			s += " SATA 2.5"
		case 4:
			s += " SATA 2.6"
		case 5:
			s += " SATA 3.0"
		case 6:
			s += " SATA 3.1"
		case 7:
			s += " SATA 3.2"
		default:
			s += fmt.Sprintf(" SATA (%#03x)", d.TransportMajor&0x0fff)
		}
	case 0xe:
		s = fmt.Sprintf("PCIe (%#03x)", d.TransportMajor&0x0fff)
	default:
		s = fmt.Sprintf("Unknown (%#04x)", d.TransportMajor)
	}

	return
}

func (d *IdentifyDeviceData) WWN() string {
	naa := d.WWNRaw[0] >> 12
	oui := (uint32(d.WWNRaw[0]&0x0fff) << 12) | (uint32(d.WWNRaw[1]) >> 4)
	uniqueID := ((uint64(d.WWNRaw[1]) & 0xf) << 32) | (uint64(d.WWNRaw[2]) << 16) | uint64(d.WWNRaw[3])

	return fmt.Sprintf("%x %06x %09x", naa, oui, uniqueID)
}

// IsATAPI reports whether the page came from a packet device.
func (d *IdentifyDeviceData) IsATAPI() bool {
	return d.GeneralConfig>>14 == 0x2
}

func (d *IdentifyDeviceData) LBASupported() bool {
	return d.Capabilities&(1<<9) != 0
}

func (d *IdentifyDeviceData) DMASupported() bool {
	return d.Capabilities&(1<<8) != 0
}

func (d *IdentifyDeviceData) LBA48Supported() bool {
	return d.Word83&(1<<10) != 0
}

func (d *IdentifyDeviceData) SMARTSupported() bool {
	return d.Word82&0x1 != 0
}

func (d *IdentifyDeviceData) SMARTEnabled() bool {
	return d.Word85&0x1 != 0
}

// LBA28Sectors returns the number of sectors addressable by 28-bit commands.
func (d *IdentifyDeviceData) LBA28Sectors() uint32 {
	return uint32(d.LBA28Capacity[1])<<16 | uint32(d.LBA28Capacity[0])
}

// LBA48Sectors returns the number of sectors addressable by 48-bit commands.
func (d *IdentifyDeviceData) LBA48Sectors() uint64 {
	return uint64(d.LBA48Capacity[3])<<48 | uint64(d.LBA48Capacity[2])<<32 |
		uint64(d.LBA48Capacity[1])<<16 | uint64(d.LBA48Capacity[0])
}

// Describe prints a human readable summary of the page.
func (d *IdentifyDeviceData) Describe(w io.Writer) {
	fmt.Fprintf(w, "Model Number: %s\n", strings.TrimSpace(string(d.ModelNumber())))
	fmt.Fprintf(w, "Serial Number: %s\n", strings.TrimSpace(string(d.SerialNumber())))
	fmt.Fprintf(w, "Firmware Revision: %s\n", strings.TrimSpace(string(d.FirmwareRevision())))

	if d.IsATAPI() {
		fmt.Fprintf(w, "Packet device, command set %#02x\n", (d.GeneralConfig>>8)&0x1f)
		return
	}

	fmt.Fprintln(w, "LU WWN Device Id:", d.WWN())
	fmt.Fprintln(w, "ATA Major Version:", d.ATAMajorVersion())
	fmt.Fprintln(w, "ATA Minor Version:", d.ATAMinorVersion())
	fmt.Fprintln(w, "Transport:", d.Transport())
	fmt.Fprintf(w, "Default geometry: %d cylinders, %d heads, %d sectors per track\n",
		d.NumCylinders, d.NumHeads, d.SectorsPerTrack)
	fmt.Fprintf(w, "Current geometry: %d cylinders, %d heads, %d sectors per track\n",
		d.CurrentCylinders, d.CurrentHeads, d.CurrentSectors)
	fmt.Fprintf(w, "LBA supported: %v, DMA supported: %v, 48-bit supported: %v\n",
		d.LBASupported(), d.DMASupported(), d.LBA48Supported())
	fmt.Fprintf(w, "28-bit sectors: %d (%s)\n",
		d.LBA28Sectors(), utils.FormatBytes(uint64(d.LBA28Sectors())*SECTOR_SIZE))
	if d.LBA48Supported() {
		fmt.Fprintf(w, "48-bit sectors: %d (%s)\n",
			d.LBA48Sectors(), utils.FormatBytes(d.LBA48Sectors()*SECTOR_SIZE))
	}
	fmt.Fprintf(w, "Max sectors per multiple transfer: %d\n", d.MaxMultiple&0xff)
	fmt.Fprintf(w, "Rotation Rate: %d\n", d.RotationRate)
	fmt.Fprintf(w, "SMART support available: %v\n", d.SMARTSupported())
	fmt.Fprintf(w, "SMART support enabled: %v\n", d.SMARTEnabled())
}

func (d *IdentifyDeviceData) swapBytes(b []byte) []byte {
	tmp := make([]byte, len(b))
	copy(tmp, b)

	return utils.SwapBytes(tmp)
}
