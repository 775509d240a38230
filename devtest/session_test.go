// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package devtest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaru-dps/devtest/drivedb"
	"github.com/aaru-dps/devtest/scsi"
)

// fakeTransport records every CDB and answers with the data registered for its opcode.
type fakeTransport struct {
	cdbs [][]byte
	data map[byte][]byte
	resp scsi.Response
}

func (f *fakeTransport) SendCDB(cdb []byte, dir scsi.Direction, buf []byte, timeout time.Duration) (scsi.Response, error) {
	f.cdbs = append(f.cdbs, append([]byte(nil), cdb...))
	copy(buf, f.data[cdb[0]])

	return f.resp, nil
}

func (f *fakeTransport) Close() error {
	return nil
}

func (f *fakeTransport) lastCDB() []byte {
	return f.cdbs[len(f.cdbs)-1]
}

func inquiryData(vendor, product, rev string) []byte {
	buf := make([]byte, scsi.INQ_REPLY_LEN)
	copy(buf[8:32], strings.Repeat(" ", 24))
	copy(buf[8:], vendor)
	copy(buf[16:], product)
	copy(buf[32:36], rev)

	return buf
}

// identifyData returns IDENTIFY DEVICE data with byte swapped model and firmware strings.
func identifyData(model, firmware string) []byte {
	buf := make([]byte, 512)

	put := func(off, n int, s string) {
		raw := []byte(s + strings.Repeat(" ", n-len(s)))
		for i := 0; i < n; i += 2 {
			buf[off+i], buf[off+i+1] = raw[i+1], raw[i]
		}
	}
	put(46, 8, firmware)
	put(54, 40, model)

	return buf
}

func newFakeSession(input string, data map[byte][]byte) (*Session, *fakeTransport, *bytes.Buffer) {
	ft := &fakeTransport{data: data, resp: scsi.Response{Duration: time.Millisecond}}
	out := new(bytes.Buffer)
	c := NewConsole(strings.NewReader(input), out)

	s := NewSession(c, "/dev/sg0", scsi.NewDevice(ft, time.Second), drivedb.DriveDb{}, NewStats())

	return s, ft, out
}

func TestNewSessionATA(t *testing.T) {
	s, ft, _ := newFakeSession("", map[byte][]byte{
		scsi.SCSI_INQUIRY:         inquiryData("ATA", "WDC WD10", "0A01"),
		scsi.SCSI_ATA_PASSTHRU_16: identifyData("WDC WD10EZEX", "01.01A01"),
	})

	require.NotNil(t, s.inq)
	require.NotNil(t, s.ident)
	assert.Len(t, ft.cdbs, 2)

	h := s.summary()
	assert.Equal(t, "Device: /dev/sg0", h[0])
	assert.Contains(t, h[len(h)-1], "Model=WDC WD10EZEX, Firmware=01.01A01")
}

func TestNewSessionSCSI(t *testing.T) {
	s, ft, _ := newFakeSession("", map[byte][]byte{
		scsi.SCSI_INQUIRY: inquiryData("SEAGATE", "ST2000NM0023", "0003"),
	})

	assert.Nil(t, s.ident)
	assert.Len(t, ft.cdbs, 1)
	assert.Contains(t, s.summary(), "INQUIRY: Type=0x0, Vendor=SEAGATE, Product=ST2000NM0023, Revision=0003")
}

func TestRunEndsOnEOF(t *testing.T) {
	s, _, out := newFakeSession("9\n", map[byte][]byte{
		scsi.SCSI_INQUIRY: inquiryData("SEAGATE", "ST2000NM0023", "0003"),
	})

	require.NoError(t, s.Run())
	assert.Contains(t, out.String(), "Main menu:\n1.- Send an ATA command to the device.\n")
	assert.Contains(t, out.String(), "0.- Return to operating system.\n")
	assert.Contains(t, out.String(), `Incorrect option "9".`)
}

func TestSCSIMenuTestUnitReady(t *testing.T) {
	// main -> SCSI -> SPC -> TEST UNIT READY, then back out to the operating system
	s, ft, out := newFakeSession("2\n1\n2\n0\n0\n0\n0\n", map[byte][]byte{
		scsi.SCSI_INQUIRY: inquiryData("SEAGATE", "ST2000NM0023", "0003"),
	})

	require.NoError(t, s.Run())
	assert.Equal(t, []byte{scsi.SCSI_TEST_UNIT_READY, 0, 0, 0, 0, 0}, ft.lastCDB())
	assert.Contains(t, out.String(), "TEST UNIT READY results:")
	assert.Contains(t, out.String(), "Buffer is null.")
}

func TestSPCCommandsKeepOwnParameters(t *testing.T) {
	// main -> SCSI -> SPC -> INQUIRY with EVPD page 0x80 -> send, then MODE SENSE (10) with defaults
	s, ft, out := newFakeSession("2\n1\n1\n1\ny\n0x80\n\n2\n0\n5\n2\n0\n0\n0\n0\n", map[byte][]byte{
		scsi.SCSI_INQUIRY: inquiryData("SEAGATE", "ST2000NM0023", "0003"),
	})

	require.NoError(t, s.Run())
	require.GreaterOrEqual(t, len(ft.cdbs), 3)
	assert.Equal(t, []byte{scsi.SCSI_INQUIRY, 0x01, 0x80, 0, scsi.INQ_REPLY_LEN, 0}, ft.cdbs[len(ft.cdbs)-2])
	assert.Equal(t, []byte{scsi.SCSI_MODE_SENSE_10, 0, 0, 0, 0, 0, 0, 0x02, 0x00, 0}, ft.lastCDB())
	assert.Contains(t, out.String(), "Page: 0\nSubpage: 0\nAllocation length: 512\n\nParameters for MODE SENSE (10) command:")
}

func TestSBCMenuRead6Clamp(t *testing.T) {
	// main -> SCSI -> SBC -> READ (6) -> change parameters (LBA, count, block size) -> send
	s, ft, out := newFakeSession("2\n2\n1\n1\n0x300000\n2\n\n2\n0\n0\n0\n0\n", map[byte][]byte{
		scsi.SCSI_INQUIRY: inquiryData("SEAGATE", "ST2000NM0023", "0003"),
	})

	require.NoError(t, s.Run())
	assert.Contains(t, out.String(), "LBA clamped to 2097151 (0x1fffff).")
	assert.Equal(t, []byte{scsi.SCSI_READ_6, 0x1f, 0xff, 0xff, 2, 0}, ft.lastCDB())
	assert.Contains(t, out.String(), "Buffer is 1024 bytes.")
}

func TestATAMenuIdentify(t *testing.T) {
	// main -> ATA -> IDENTIFY DEVICE -> decode buffer, pause, return
	s, ft, out := newFakeSession("1\n1\n4\n\n0\n0\n0\n", map[byte][]byte{
		scsi.SCSI_INQUIRY:         inquiryData("ATA", "WDC WD10", "0A01"),
		scsi.SCSI_ATA_PASSTHRU_16: identifyData("WDC WD10EZEX", "01.01A01"),
	})

	require.NoError(t, s.Run())
	assert.Equal(t, byte(0xec), ft.lastCDB()[14])
	assert.NotContains(t, out.String(), "Warning: device does not report")
	assert.Contains(t, out.String(), "IDENTIFY DEVICE results:")
	assert.Contains(t, out.String(), "Model Number: WDC WD10EZEX\n")
}

func TestATAMenuWarnsWithoutSAT(t *testing.T) {
	s, _, out := newFakeSession("1\n0\n0\n", map[byte][]byte{
		scsi.SCSI_INQUIRY: inquiryData("SEAGATE", "ST2000NM0023", "0003"),
	})

	require.NoError(t, s.Run())
	assert.Contains(t, out.String(), "Warning: device does not report a SCSI / ATA Translation layer.")
}
