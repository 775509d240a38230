// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Broadcom (formerly Avago, LSI) MegaRAID ioctl functions

package megaraid

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/aaru-dps/devtest/ioctl"
	"github.com/aaru-dps/devtest/utils"
)

const (
	MAX_IOCTL_SGE = 16

	MFI_CMD_PD_SCSI_IO = 0x04
	MFI_CMD_DCMD       = 0x05

	MR_DCMD_PD_GET_LIST = 0x02010000 // Obsolete / deprecated command

	MFI_FRAME_DIR_NONE  = 0x0000
	MFI_FRAME_DIR_WRITE = 0x0008
	MFI_FRAME_DIR_READ  = 0x0010
	MFI_FRAME_DIR_BOTH  = 0x0018

	// MFI command completion status
	MFI_STAT_OK                   = 0x00
	MFI_STAT_DEVICE_NOT_FOUND     = 0x0c
	MFI_STAT_SCSI_DONE_WITH_ERROR = 0x2d
	MFI_STAT_SCSI_IO_FAILED       = 0x2e
	MFI_STAT_INVALID_STATUS       = 0xff

	// Size of the PD list response buffer
	PD_LIST_LEN = 4096

	ioctlNode = "/dev/megaraid_sas_ioctl_node"
)

type megasas_sge64 struct {
	phys_addr uint32
	length    uint32
	_padding  uint32
}

type Iovec struct {
	Base uint64 // FIXME: this is not portable to 32-bit platforms!
	Len  uint64
}

type megasas_dcmd_frame struct {
	cmd           uint8
	reserved_0    uint8
	cmd_status    uint8
	reserved_1    [4]uint8
	sge_count     uint8
	context       uint32
	pad_0         uint32
	flags         uint16
	timeout       uint16
	data_xfer_len uint32
	opcode        uint32
	mbox          [12]byte      // FIXME: This is actually a union of [12]uint8 / [3]uint32
	sgl           megasas_sge64 // FIXME: This is actually a union of megasas_sge64 / megasas_sge32
}

type megasas_pthru_frame struct {
	cmd                    uint8
	sense_len              uint8
	cmd_status             uint8
	scsi_status            uint8
	target_id              uint8
	lun                    uint8
	cdb_len                uint8
	sge_count              uint8
	context                uint32
	pad_0                  uint32
	flags                  uint16
	timeout                uint16
	data_xfer_len          uint32
	sense_buf_phys_addr_lo uint32
	sense_buf_phys_addr_hi uint32
	cdb                    [16]byte
	sgl                    megasas_sge64
}

type megasas_iocpacket struct {
	host_no   uint16
	__pad1    uint16
	sgl_off   uint32
	sge_count uint32
	sense_off uint32
	sense_len uint32
	frame     [128]byte
	sgl       [MAX_IOCTL_SGE]Iovec
}

// Offset of the frame within the packed megasas_iocpacket
const iocFrameOffset = 20

// PDAddress is a physical device address, as returned by MR_DCMD_PD_GET_LIST.
type PDAddress struct {
	DeviceId          uint16
	EnclosureId       uint16
	EnclosureIndex    uint8
	SlotNumber        uint8
	SCSIDevType       uint8
	ConnectPortBitmap uint8
	SASAddr           [2]uint64
}

// Ioctl is a holder for the megasas ioctl device.
type Ioctl struct {
	DeviceMajor int
	fd          int
}

var (
	// 0xc1944d01 - Beware: cannot use unsafe.Sizeof(megasas_iocpacket{}) due to Go struct padding!
	MEGASAS_IOC_FIRMWARE = ioctl.Iowr('M', 1, 404)

	// sysfs directory listing SCSI hosts, each with a proc_name naming its driver
	scsiHostDir = "/sys/class/scsi_host"
)

// MakeDev returns the device ID for the specified major and minor numbers, equivalent to
// makedev(3). Based on gnu_dev_makedev macro, may be platform dependent!
func MakeDev(major, minor uint) uint {
	return (minor & 0xff) | ((major & 0xfff) << 8) |
		((minor &^ 0xff) << 12) | ((major &^ 0xfff) << 32)
}

// PackedBytes is a convenience method that will pack a megasas_iocpacket struct in little-endian
// format and return it as a byte slice
func (ioc *megasas_iocpacket) PackedBytes() []byte {
	b := new(bytes.Buffer)
	binary.Write(b, binary.LittleEndian, ioc)
	return b.Bytes()
}

// findMajor returns the major number of the megaraid_sas_ioctl character device, listed in the
// /proc/devices format.
func findMajor(r *bufio.Scanner) int {
	var major int

	for r.Scan() {
		if strings.HasSuffix(r.Text(), "megaraid_sas_ioctl") {
			if _, err := fmt.Sscanf(r.Text(), "%d", &major); err == nil {
				return major
			}
		}
	}

	return 0
}

// CreateIoctl determines the device ID for the MegaRAID SAS ioctl device, creates it if
// necessary, and opens it.
func CreateIoctl() (*Ioctl, error) {
	m := &Ioctl{fd: -1}

	// megaraid_sas driver does not automatically create ioctl device node, so find out the device
	// major number and create it.
	file, err := os.Open("/proc/devices")
	if err != nil {
		return nil, errors.Wrap(err, "cannot read /proc/devices")
	}
	defer file.Close()

	if m.DeviceMajor = findMajor(bufio.NewScanner(file)); m.DeviceMajor == 0 {
		return nil, errors.New("could not determine megaraid major number, is megaraid_sas loaded?")
	}

	err = unix.Mknod(ioctlNode, unix.S_IFCHR|0600, int(MakeDev(uint(m.DeviceMajor), 0)))
	if err != nil && err != unix.EEXIST {
		return nil, errors.Wrapf(err, "cannot create %s", ioctlNode)
	}

	if m.fd, err = unix.Open(ioctlNode, unix.O_RDWR, 0600); err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", ioctlNode)
	}

	zap.L().Debug("megaraid ioctl node opened", zap.Int("major", m.DeviceMajor))

	return m, nil
}

// Close closes the file descriptor of the Ioctl instance
func (m *Ioctl) Close() error {
	return unix.Close(m.fd)
}

func (m *Ioctl) send(ioc *megasas_iocpacket) ([]byte, error) {
	iocBuf := ioc.PackedBytes()

	// Note pointer to first item in iocBuf buffer
	err := ioctl.Ioctl(uintptr(m.fd), MEGASAS_IOC_FIRMWARE, uintptr(unsafe.Pointer(&iocBuf[0])))
	return iocBuf, err
}

// dcmdPacket builds a DCMD frame reading len(b) bytes into b.
func dcmdPacket(host uint16, opcode uint32, b []byte) megasas_iocpacket {
	ioc := megasas_iocpacket{host_no: host}

	// Approximation of C union behaviour
	dcmd := (*megasas_dcmd_frame)(unsafe.Pointer(&ioc.frame))
	dcmd.cmd = MFI_CMD_DCMD
	dcmd.cmd_status = MFI_STAT_INVALID_STATUS
	dcmd.opcode = opcode
	dcmd.flags = MFI_FRAME_DIR_READ
	dcmd.data_xfer_len = uint32(len(b))
	dcmd.sge_count = 1

	ioc.sge_count = 1
	ioc.sgl_off = uint32(unsafe.Offsetof(dcmd.sgl))
	ioc.sgl[0] = Iovec{uint64(uintptr(unsafe.Pointer(&b[0]))), uint64(len(b))}

	return ioc
}

// MFI sends a MegaRAID Firmware Interface (MFI) command to the specified host
func (m *Ioctl) MFI(host uint16, opcode uint32, b []byte) error {
	if len(b) == 0 {
		return errors.New("MFI command needs a response buffer")
	}

	ioc := dcmdPacket(host, opcode, b)

	iocBuf, err := m.send(&ioc)
	if err != nil {
		return errors.Wrapf(err, "MFI opcode %#08x on host %d", opcode, host)
	}

	if status := iocBuf[iocFrameOffset+2]; status != MFI_STAT_OK {
		return fmt.Errorf("MFI opcode %#08x on host %d failed with status %#02x", opcode, host, status)
	}

	return nil
}

// decodeDeviceList decodes a MR_DCMD_PD_GET_LIST response.
func decodeDeviceList(respBuf []byte) ([]PDAddress, error) {
	respCount := utils.NativeEndian.Uint32(respBuf[4:])

	// Do not trust the count beyond what fits in the buffer
	if limit := uint32(len(respBuf)-8) / 24; respCount > limit {
		respCount = limit
	}

	// Create a device array large enough to hold the specified number of devices
	devices := make([]PDAddress, respCount)
	err := binary.Read(bytes.NewReader(respBuf[8:]), utils.NativeEndian, &devices)

	return devices, err
}

// DeviceList retrieves a list of physical devices attached to the specified host
func (m *Ioctl) DeviceList(host uint16) ([]PDAddress, error) {
	respBuf := make([]byte, PD_LIST_LEN)

	if err := m.MFI(host, MR_DCMD_PD_GET_LIST, respBuf); err != nil {
		return nil, err
	}

	return decodeDeviceList(respBuf)
}

// Hosts returns the SCSI host numbers driven by megaraid_sas.
func Hosts() []uint16 {
	var hosts []uint16

	names, _ := filepath.Glob(filepath.Join(scsiHostDir, "host*", "proc_name"))
	for _, name := range names {
		b, err := os.ReadFile(name)
		if err != nil || strings.TrimSpace(string(b)) != "megaraid_sas" {
			continue
		}

		var host uint16
		if _, err := fmt.Sscanf(filepath.Base(filepath.Dir(name)), "host%d", &host); err == nil {
			hosts = append(hosts, host)
		}
	}

	return hosts
}

// DeviceName returns the name by which a physical disk behind a MegaRAID host is opened.
func DeviceName(host uint16, disk uint16) string {
	return fmt.Sprintf("megaraid%d_%d", host, disk)
}

// ParseDeviceName is the inverse of DeviceName.
func ParseDeviceName(name string) (host uint16, disk uint8, ok bool) {
	var h, d uint

	if _, err := fmt.Sscanf(name, "megaraid%d_%d", &h, &d); err != nil {
		return 0, 0, false
	}

	if h > 0xffff || d > 0xff || name != DeviceName(uint16(h), uint16(d)) {
		return 0, 0, false
	}

	return uint16(h), uint8(d), true
}

// ScanDevices returns the names of SCSI disks attached to every MegaRAID host.
func (m *Ioctl) ScanDevices() []string {
	var names []string

	for _, host := range Hosts() {
		devices, err := m.DeviceList(host)
		if err != nil {
			zap.L().Warn("cannot list MegaRAID physical disks", zap.Uint16("host", host), zap.Error(err))
			continue
		}

		for _, pd := range devices {
			if pd.SCSIDevType == 0 { // SCSI disk
				names = append(names, DeviceName(host, pd.DeviceId))
			}
		}
	}

	return names
}
