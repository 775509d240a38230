// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// SMART data page parsing.

package ata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/aaru-dps/devtest/drivedb"
)

// Individual SMART attribute (12 bytes)
type smartAttr struct {
	Id          uint8
	Flags       uint16
	Value       uint8   // normalised value
	Worst       uint8   // worst value
	VendorBytes [6]byte // vendor-specific (and sometimes device-specific) data
	Reserved    uint8
}

// SMART data page, first 362 bytes of the SMART READ DATA response
type SmartPage struct {
	Version uint16
	Attrs   [30]smartAttr
}

// SmartData is a decoded SMART READ DATA response.
type SmartData struct {
	SmartPage
	OfflineStatus  uint8 // byte 362, off-line data collection status
	SelfTestStatus uint8 // byte 363, self-test execution status
}

// ParseSMARTData decodes the 512 byte SMART READ DATA response.
func ParseSMARTData(buf []byte) (SmartData, error) {
	var d SmartData

	if len(buf) < 364 {
		return d, fmt.Errorf("SMART data too short: %d bytes", len(buf))
	}

	if err := binary.Read(bytes.NewReader(buf[:362]), binary.LittleEndian, &d.SmartPage); err != nil {
		return d, err
	}

	d.OfflineStatus = buf[362]
	d.SelfTestStatus = buf[363]

	return d, nil
}

// PrintSMARTPage prints the attribute table of a SMART data page, naming and converting the raw
// values according to the drive database entry.
func PrintSMARTPage(smart SmartPage, drive drivedb.DriveModel, w io.Writer) {
	fmt.Fprintf(w, "SMART structure version: %d\n", smart.Version)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID#\tATTRIBUTE_NAME\tFLAG\tVALUE\tWORST\tRAW_VALUE")

	for _, attr := range smart.Attrs {
		if attr.Id == 0 {
			continue
		}

		name := "Unknown_Attribute"
		conv := drivedb.AttrConv{Conv: "raw48"}

		if c, ok := drive.Presets[strconv.Itoa(int(attr.Id))]; ok {
			if c.Name != "" {
				name = c.Name
			}
			if c.Conv != "" {
				conv.Conv = c.Conv
			}
		}

		fmt.Fprintf(tw, "%3d\t%s\t%#04x\t%03d\t%03d\t%s\n",
			attr.Id, name, attr.Flags, attr.Value, attr.Worst, formatRawValue(conv.Conv, attr.VendorBytes))
	}

	tw.Flush()
}

// formatRawValue renders the six raw bytes of an attribute the way the smartmontools conversion
// named by conv does.
func formatRawValue(conv string, raw [6]byte) string {
	var r [8]byte
	copy(r[:], raw[:])
	v := binary.LittleEndian.Uint64(r[:])

	w0 := uint16(v)
	w1 := uint16(v >> 16)
	w2 := uint16(v >> 32)

	switch conv {
	case "raw8":
		return fmt.Sprintf("%d %d %d %d %d %d", raw[5], raw[4], raw[3], raw[2], raw[1], raw[0])
	case "raw16":
		return fmt.Sprintf("%d %d %d", w2, w1, w0)
	case "hex48":
		return fmt.Sprintf("0x%012x", v)
	case "raw16(raw16)":
		if w1 != 0 || w2 != 0 {
			return fmt.Sprintf("%d (%d %d)", w0, w2, w1)
		}
		return strconv.Itoa(int(w0))
	case "raw16(avg16)":
		if w1 != 0 {
			return fmt.Sprintf("%d (Average %d)", w0, w1)
		}
		return strconv.Itoa(int(w0))
	case "raw24(raw8)":
		return fmt.Sprintf("%d (%d %d %d)", v&0xffffff, raw[5], raw[4], raw[3])
	case "tempminmax":
		return formatTempMinMax(raw, w0, w1, w2)
	case "min2hour":
		return fmt.Sprintf("%dh+%02dm", v/60, v%60)
	case "sec2hour":
		return fmt.Sprintf("%dh+%02dm+%02ds", v/3600, (v%3600)/60, v%60)
	case "halfmin2hour":
		return fmt.Sprintf("%dh+%02dm", v/120, (v/2)%60)
	}

	return strconv.FormatUint(v, 10)
}

// formatTempMinMax guesses which of the known vendor layouts holds the current, minimum and
// maximum temperatures.
func formatTempMinMax(raw [6]byte, w0, w1, w2 uint16) string {
	var lo, hi int

	t := int8(raw[0])
	ctw0 := checkTempWord(w0)

	switch {
	case w2 == 0 && w1 == 0 && ctw0 != 0:
		// 00 00 00 00 xx TT
		return strconv.Itoa(int(t))
	case w2 == 0 && ctw0 != 0 && checkTempRange(t, raw[2], raw[3], &lo, &hi):
		// 00 00 HL LH xx TT
		return fmt.Sprintf("%d (Min/Max %d/%d)", t, lo, hi)
	case w2 == 0 && raw[3] == 0 && checkTempRange(t, raw[1], raw[2], &lo, &hi):
		// 00 00 00 HL LH TT
		return fmt.Sprintf("%d (Min/Max %d/%d)", t, lo, hi)
	case w2 != 0 && ctw0&checkTempWord(w1)&checkTempWord(w2) != 0 && checkTempRange(t, raw[2], raw[4], &lo, &hi):
		// xx HL xx LH xx TT
		return fmt.Sprintf("%d (Min/Max %d/%d)", t, lo, hi)
	case w2 != 0 && ctw0 != 0 && w2 < 0x7fff && checkTempRange(t, raw[2], raw[3], &lo, &hi) && hi >= 40:
		// CC CC HL LH xx TT
		return fmt.Sprintf("%d (Min/Max %d/%d #%d)", t, lo, hi, w2)
	}

	return fmt.Sprintf("%d (%d %d %d %d %d)", raw[0], raw[5], raw[4], raw[3], raw[2], raw[1])
}

func checkTempRange(t int8, ut1, ut2 uint8, lo, hi *int) bool {
	t1, t2 := int8(ut1), int8(ut2)

	if t1 > t2 {
		t1, t2 = t2, t1
	}

	if -60 <= t1 && t1 <= t && t <= t2 && t2 <= 120 && !(t1 == -1 && t2 <= 0) {
		*lo, *hi = int(t1), int(t2)
		return true
	}

	return false
}

func checkTempWord(word uint16) int {
	switch {
	case word <= 0x7f:
		return 0x11 // >= 0, signed byte or word
	case word <= 0xff:
		return 0x01 // < 0, signed byte
	case word > 0xff80:
		return 0x10 // < 0, signed word
	default:
		return 0x00
	}
}
