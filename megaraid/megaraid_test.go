// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package megaraid

import (
	"bufio"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaru-dps/devtest/scsi"
	"github.com/aaru-dps/devtest/utils"
)

func TestMakeDev(t *testing.T) {
	assert.Equal(t, uint(0x0800), MakeDev(8, 0))
	assert.Equal(t, uint(0x10301), MakeDev(259, 1))
	assert.Equal(t, uint(0xfb00), MakeDev(251, 0))
}

func TestIoctlNumber(t *testing.T) {
	assert.Equal(t, uintptr(0xc1944d01), MEGASAS_IOC_FIRMWARE)
}

func TestPackedSize(t *testing.T) {
	ioc := megasas_iocpacket{}
	assert.Len(t, ioc.PackedBytes(), 404)
}

func TestFindMajor(t *testing.T) {
	devices := "Character devices:\n  1 mem\n  4 tty\n250 megaraid_sas_ioctl\n\nBlock devices:\n  8 sd\n"
	assert.Equal(t, 250, findMajor(bufio.NewScanner(strings.NewReader(devices))))

	assert.Equal(t, 0, findMajor(bufio.NewScanner(strings.NewReader("Character devices:\n  1 mem\n"))))
}

func TestDcmdPacket(t *testing.T) {
	buf := make([]byte, 64)
	ioc := dcmdPacket(2, MR_DCMD_PD_GET_LIST, buf)
	b := ioc.PackedBytes()

	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(b[0:]))
	// sgl_off is the offset of the frame sgl
	assert.Equal(t, uint32(40), binary.LittleEndian.Uint32(b[4:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(b[8:]))

	frame := b[iocFrameOffset:]
	assert.Equal(t, uint8(MFI_CMD_DCMD), frame[0])
	assert.Equal(t, uint8(MFI_STAT_INVALID_STATUS), frame[2])
	assert.Equal(t, uint8(1), frame[7])
	assert.Equal(t, uint16(MFI_FRAME_DIR_READ), binary.LittleEndian.Uint16(frame[16:]))
	assert.Equal(t, uint32(64), binary.LittleEndian.Uint32(frame[20:]))
	assert.Equal(t, uint32(MR_DCMD_PD_GET_LIST), binary.LittleEndian.Uint32(frame[24:]))

	// iovec length
	assert.Equal(t, uint64(64), binary.LittleEndian.Uint64(b[iocFrameOffset+128+8:]))
}

func TestPthruPacket(t *testing.T) {
	cdb := []byte{scsi.SCSI_INQUIRY, 0, 0, 0, 36, 0}
	buf := make([]byte, 36)
	sense := make([]byte, scsi.SENSE_BUF_LEN)

	ioc := pthruPacket(0, 26, cdb, scsi.DirFromDevice, buf, sense, 15*time.Second)
	b := ioc.PackedBytes()

	// sgl_off, sge_count, sense_off, sense_len
	assert.Equal(t, uint32(48), binary.LittleEndian.Uint32(b[4:]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(b[8:]))
	assert.Equal(t, uint32(24), binary.LittleEndian.Uint32(b[12:]))
	assert.Equal(t, uint32(scsi.SENSE_BUF_LEN), binary.LittleEndian.Uint32(b[16:]))

	frame := b[iocFrameOffset:]
	assert.Equal(t, uint8(MFI_CMD_PD_SCSI_IO), frame[0])
	assert.Equal(t, uint8(scsi.SENSE_BUF_LEN), frame[1])
	assert.Equal(t, uint8(26), frame[4])
	assert.Equal(t, uint8(6), frame[6])
	assert.Equal(t, uint8(1), frame[7])
	assert.Equal(t, uint16(MFI_FRAME_DIR_READ), binary.LittleEndian.Uint16(frame[16:]))
	assert.Equal(t, uint16(15), binary.LittleEndian.Uint16(frame[18:]))
	assert.Equal(t, uint32(36), binary.LittleEndian.Uint32(frame[20:]))
	assert.Equal(t, cdb, frame[32:38])
}

func TestPthruPacketNoData(t *testing.T) {
	cdb := []byte{scsi.SCSI_TEST_UNIT_READY, 0, 0, 0, 0, 0}

	ioc := pthruPacket(0, 3, cdb, scsi.DirFromDevice, nil, nil, 0)
	b := ioc.PackedBytes()

	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(b[8:]), "sge_count")
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(b[16:]), "sense_len")
	assert.Equal(t, uint16(MFI_FRAME_DIR_NONE), binary.LittleEndian.Uint16(b[iocFrameOffset+16:]))
}

func TestFrameResponse(t *testing.T) {
	sense := make([]byte, scsi.SENSE_BUF_LEN)

	resp := frameResponse(MFI_STAT_OK, 0, sense)
	assert.False(t, resp.Failed())
	assert.Nil(t, resp.Sense)

	copy(sense, []byte{0x70, 0, 0x05, 0, 0, 0, 0, 0x0a, 0, 0, 0, 0, 0x24, 0x00})
	resp = frameResponse(MFI_STAT_SCSI_DONE_WITH_ERROR, 0, sense)
	assert.True(t, resp.Failed())
	assert.Equal(t, uint8(scsi.SAM_STAT_CHECK_CONDITION), resp.Status)
	assert.Len(t, resp.Sense, 13)

	resp = frameResponse(MFI_STAT_DEVICE_NOT_FOUND, 0, make([]byte, 8))
	assert.True(t, resp.Failed())
	assert.Equal(t, uint16(MFI_STAT_DEVICE_NOT_FOUND), resp.HostStatus)
}

func TestDecodeDeviceList(t *testing.T) {
	respBuf := make([]byte, PD_LIST_LEN)
	utils.NativeEndian.PutUint32(respBuf[4:], 2)

	utils.NativeEndian.PutUint16(respBuf[8:], 26)
	utils.NativeEndian.PutUint16(respBuf[10:], 252)
	respBuf[13] = 4
	utils.NativeEndian.PutUint64(respBuf[16:], 0x5000c500a1b2c3d4)

	utils.NativeEndian.PutUint16(respBuf[32:], 27)
	respBuf[38] = 0x0d

	devices, err := decodeDeviceList(respBuf)
	require.NoError(t, err)
	require.Len(t, devices, 2)

	assert.Equal(t, uint16(26), devices[0].DeviceId)
	assert.Equal(t, uint16(252), devices[0].EnclosureId)
	assert.Equal(t, uint8(4), devices[0].SlotNumber)
	assert.Equal(t, uint64(0x5000c500a1b2c3d4), devices[0].SASAddr[0])
	assert.Equal(t, uint16(27), devices[1].DeviceId)
	assert.Equal(t, uint8(0x0d), devices[1].SCSIDevType)

	// count larger than the buffer
	utils.NativeEndian.PutUint32(respBuf[4:], 0xffffffff)
	devices, err = decodeDeviceList(respBuf)
	require.NoError(t, err)
	assert.Len(t, devices, (PD_LIST_LEN-8)/24)
}

func TestDeviceName(t *testing.T) {
	assert.Equal(t, "megaraid0_26", DeviceName(0, 26))

	host, disk, ok := ParseDeviceName("megaraid1_7")
	assert.True(t, ok)
	assert.Equal(t, uint16(1), host)
	assert.Equal(t, uint8(7), disk)

	for _, name := range []string{"/dev/sda", "megaraid0", "megaraid0_256", "megaraid0_1x"} {
		_, _, ok := ParseDeviceName(name)
		assert.False(t, ok, name)
	}
}

func TestHosts(t *testing.T) {
	dir := t.TempDir()
	for host, driver := range map[string]string{"host0": "ahci", "host3": "megaraid_sas", "host5": "megaraid_sas"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, host), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, host, "proc_name"), []byte(driver+"\n"), 0644))
	}

	old := scsiHostDir
	scsiHostDir = dir
	defer func() { scsiHostDir = old }()

	assert.Equal(t, []uint16{3, 5}, Hosts())
}

func TestTransportImplementsScsi(t *testing.T) {
	var _ scsi.Transport = (*Ioctl)(nil).Transport(0, 0)
}
