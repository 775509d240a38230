// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package scsi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaru-dps/devtest/ata"
)

func newFakeSAT() (*SATDevice, *fakeTransport) {
	d, ft := newFakeDevice()
	return NewSATDevice(d), ft
}

func TestIdentifyCDB(t *testing.T) {
	d, ft := newFakeSAT()

	_, err := d.Identify()
	require.NoError(t, err)

	// 0x08 : ATA protocol (4 << 1, PIO data-in)
	// 0x2e : CK_COND = 1, T_DIR = 1, BYT_BLOK = 1, T_LENGTH = 2
	assert.Equal(t, []byte{SCSI_ATA_PASSTHRU_16, 0x08, 0x2e, 0, 0, 0, 0x01, 0, 0, 0, 0, 0, 0, 0, ata.ATA_IDENTIFY_DEVICE, 0},
		ft.lastCDB())
	assert.Equal(t, 512, ft.bufLens[0])
	assert.Equal(t, DirFromDevice, ft.dirs[0])
}

func TestReadSectorsCDB(t *testing.T) {
	d, ft := newFakeSAT()

	_, err := d.ReadSectors(true, 0xffffffff, 0)
	require.NoError(t, err)

	cdb := ft.lastCDB()
	assert.Equal(t, uint8(0x08), cdb[1])
	assert.Equal(t, []byte{0, 0, 0, 0, 0xff, 0, 0xff, 0, 0xff, 0x4f, ata.ATA_READ_SECTORS}, cdb[4:15])
	// a zero count transfers 256 sectors
	assert.Equal(t, 256*512, ft.bufLens[0])

	_, err = d.ReadSectors(false, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint8(ata.ATA_READ_SECTORS_NO_RETRY), ft.lastCDB()[14])
}

func TestReadDMAExtCDB(t *testing.T) {
	d, ft := newFakeSAT()

	_, err := d.ReadDMAExt(0x123456789abc, 0x0102)
	require.NoError(t, err)

	assert.Equal(t, []byte{
		SCSI_ATA_PASSTHRU_16, SAT_PROTO_DMA<<1 | 0x01, 0x2e,
		0x00, 0x00, // feature
		0x01, 0x02, // count
		0x56, 0xbc, // LBA low
		0x34, 0x9a, // LBA mid
		0x12, 0x78, // LBA high
		ata.DEVICE_LBA, ata.ATA_READ_DMA_EXT, 0,
	}, ft.lastCDB())
	assert.Equal(t, 0x0102*512, ft.bufLens[0])
}

func TestReadLogExtCDB(t *testing.T) {
	d, ft := newFakeSAT()

	_, err := d.ReadLogExt(0x04, 0x0102, 1)
	require.NoError(t, err)

	cdb := ft.lastCDB()
	assert.Equal(t, []byte{0x00, 0x04, 0x01, 0x02}, cdb[7:11])
	assert.Equal(t, uint8(ata.ATA_READ_LOG_EXT), cdb[14])
}

func TestCHSCDB(t *testing.T) {
	d, ft := newFakeSAT()

	_, err := d.SeekCHS(0x0304, 99, 17)
	require.NoError(t, err)

	cdb := ft.lastCDB()
	// non-data: CK_COND only
	assert.Equal(t, uint8(SAT_PROTO_NON_DATA<<1), cdb[1])
	assert.Equal(t, uint8(SAT_CK_COND), cdb[2])
	assert.Equal(t, uint8(17), cdb[8])
	assert.Equal(t, uint8(0x04), cdb[10])
	assert.Equal(t, uint8(0x03), cdb[12])
	// head clamped to 15, LBA bit clear
	assert.Equal(t, uint8(15), cdb[13])
	assert.Equal(t, DirNone, ft.dirs[0])
}

func TestReadLongLength(t *testing.T) {
	d, ft := newFakeSAT()

	_, err := d.ReadLong(true, 0, 516)
	require.NoError(t, err)

	// not a whole number of sectors: length given in bytes
	assert.Equal(t, uint8(SAT_CK_COND|SAT_T_DIR_IN|SAT_T_LENGTH_TPSIU), ft.lastCDB()[2])
	assert.Equal(t, 516, ft.bufLens[0])
}

func TestSMARTCDB(t *testing.T) {
	d, ft := newFakeSAT()

	_, err := d.SMARTReadData()
	require.NoError(t, err)
	assert.Equal(t, []byte{SCSI_ATA_PASSTHRU_16, 0x08, 0x2e, 0x00, ata.SMART_READ_DATA, 0x00, 0x01, 0x00, 0x00, 0x00, 0x4f, 0x00, 0xc2, 0x00, ata.ATA_SMART, 0x00},
		ft.lastCDB())

	_, err = d.SMARTEnableAttributeAutosave()
	require.NoError(t, err)
	assert.Equal(t, uint8(ata.SMART_AUTOSAVE_ENABLE), ft.lastCDB()[6])

	_, err = d.SMARTExecuteOfflineImmediate(0x02)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x02), ft.lastCDB()[8])
}

func TestATARegistersReturned(t *testing.T) {
	d, ft := newFakeSAT()
	ft.resp = Response{Status: SAM_STAT_CHECK_CONDITION, DriverStatus: DRIVER_SENSE, Sense: ataReturnSense}

	r, err := d.SMARTReturnStatus()
	require.NoError(t, err)

	// CHECK CONDITION carrying registers of a successful command
	assert.False(t, r.Failed)
	exceeded, valid := ata.SMARTStatus(r.Registers)
	assert.True(t, valid)
	assert.False(t, exceeded)

	sense := append([]byte(nil), ataReturnSense...)
	sense[11] = byte(ata.ErrorABRT)
	sense[21] = byte(ata.StatusDRDY | ata.StatusERR)
	ft.resp.Sense = sense

	r, err = d.SMARTReturnStatus()
	require.NoError(t, err)
	assert.True(t, r.Failed)
	assert.Equal(t, ata.ErrorABRT, r.Registers.Error)
}

func TestATANoRegisters(t *testing.T) {
	d, ft := newFakeSAT()
	ft.resp = Response{Status: SAM_STAT_CHECK_CONDITION, Sense: []byte{0x70, 0, SENSE_ILLEGAL_REQUEST, 0, 0, 0, 0, 10, 0, 0, 0, 0, 0x20, 0x00}}

	r, err := d.ReadNativeMaxAddressExt()
	require.NoError(t, err)
	assert.True(t, r.Failed)
	assert.Equal(t, ata.LBA48Registers{}, r.Registers)
}

func TestIdentifyDevice(t *testing.T) {
	d, ft := newFakeSAT()

	page := make([]byte, 512)
	copy(page[54:], "BADC")
	ft.data = page

	id, err := d.IdentifyDevice()
	require.NoError(t, err)
	assert.Equal(t, "ABCD", string(id.ModelNumber()[:4]))
}

func TestCheckSAT(t *testing.T) {
	d, ft := newFakeSAT()

	ft.data = inquiryData("ATA", "WDC WD10EZEX-08W", "1A01")
	assert.NoError(t, d.CheckSAT())

	ft.data = inquiryData("SEAGATE", "ST600MM0006", "0003")
	assert.Equal(t, ErrNotSATA, d.CheckSAT())
}
