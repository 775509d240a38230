// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// NVMe admin commands.

package nvme

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/aaru-dps/devtest/ioctl"
	"github.com/aaru-dps/devtest/utils"
)

const (
	NVME_ADMIN_GET_LOG_PAGE = 0x02
	NVME_ADMIN_IDENTIFY     = 0x06

	// Identify CNS values
	CNS_NAMESPACE  = 0x00
	CNS_CONTROLLER = 0x01

	// Log page identifiers
	LOG_ERROR     = 0x01
	LOG_SMART     = 0x02
	LOG_FIRMWARE  = 0x03
	NSID_ALL      = 0xffffffff
	IDENTIFY_LEN  = 4096
	SMART_LOG_LEN = 512

	// Largest log page transfer accepted by GetLogPage
	MAX_LOG_LEN = 0x4000
)

var (
	NVME_IOCTL_ADMIN_CMD = ioctl.Iowr('N', 0x41, unsafe.Sizeof(nvmePassthruCommand{}))
)

// Defined in <linux/nvme_ioctl.h>
type nvmePassthruCommand struct {
	opcode       uint8
	flags        uint8
	rsvd1        uint16
	nsid         uint32
	cdw2         uint32
	cdw3         uint32
	metadata     uint64
	addr         uint64
	metadata_len uint32
	data_len     uint32
	cdw10        uint32
	cdw11        uint32
	cdw12        uint32
	cdw13        uint32
	cdw14        uint32
	cdw15        uint32
	timeout_ms   uint32
	result       uint32
} // 72 bytes

type IdentPowerState struct {
	MaxPower        uint16 // Centiwatts
	Rsvd2           uint8
	Flags           uint8
	EntryLat        uint32 // Microseconds
	ExitLat         uint32 // Microseconds
	ReadTput        uint8
	ReadLat         uint8
	WriteTput       uint8
	WriteLat        uint8
	IdlePower       uint16
	IdleScale       uint8
	Rsvd19          uint8
	ActivePower     uint16
	ActiveWorkScale uint8
	Rsvd23          [9]byte
}

type IdentController struct {
	VendorID     uint16              // PCI Vendor ID
	Ssvid        uint16              // PCI Subsystem Vendor ID
	SerialNumber [20]byte            // Serial Number
	ModelNumber  [40]byte            // Model Number
	Firmware     [8]byte             // Firmware Revision
	Rab          uint8               // Recommended Arbitration Burst
	IEEE         [3]byte             // IEEE OUI Identifier
	Cmic         uint8               // Controller Multi-Path I/O and Namespace Sharing Capabilities
	Mdts         uint8               // Maximum Data Transfer Size
	Cntlid       uint16              // Controller ID
	Ver          uint32              // Version
	Rtd3r        uint32              // RTD3 Resume Latency
	Rtd3e        uint32              // RTD3 Entry Latency
	Oaes         uint32              // Optional Asynchronous Events Supported
	Rsvd96       [160]byte           // ...
	Oacs         uint16              // Optional Admin Command Support
	Acl          uint8               // Abort Command Limit
	Aerl         uint8               // Asynchronous Event Request Limit
	Frmw         uint8               // Firmware Updates
	Lpa          uint8               // Log Page Attributes
	Elpe         uint8               // Error Log Page Entries
	Npss         uint8               // Number of Power States Support
	Avscc        uint8               // Admin Vendor Specific Command Configuration
	Apsta        uint8               // Autonomous Power State Transition Attributes
	Wctemp       uint16              // Warning Composite Temperature Threshold
	Cctemp       uint16              // Critical Composite Temperature Threshold
	Mtfa         uint16              // Maximum Time for Firmware Activation
	Hmpre        uint32              // Host Memory Buffer Preferred Size
	Hmmin        uint32              // Host Memory Buffer Minimum Size
	Tnvmcap      [16]byte            // Total NVM Capacity
	Unvmcap      [16]byte            // Unallocated NVM Capacity
	Rpmbs        uint32              // Replay Protected Memory Block Support
	Rsvd316      [196]byte           // ...
	Sqes         uint8               // Submission Queue Entry Size
	Cqes         uint8               // Completion Queue Entry Size
	Rsvd514      [2]byte             // (defined in NVMe 1.3)
	Nn           uint32              // Number of Namespaces
	Oncs         uint16              // Optional NVM Command Support
	Fuses        uint16              // Fused Operation Support
	Fna          uint8               // Format NVM Attributes
	Vwc          uint8               // Volatile Write Cache
	Awun         uint16              // Atomic Write Unit Normal
	Awupf        uint16              // Atomic Write Unit Power Fail
	Nvscc        uint8               // NVM Vendor Specific Command Configuration
	Rsvd531      uint8               // ...
	Acwu         uint16              // Atomic Compare & Write Unit
	Rsvd534      [2]byte             // ...
	Sgls         uint32              // SGL Support
	Rsvd540      [1508]byte          // ...
	Psd          [32]IdentPowerState // Power State Descriptors
	Vs           [1024]byte          // Vendor Specific
} // 4096 bytes

type LBAFormat struct {
	Ms uint16
	Ds uint8
	Rp uint8
}

type IdentNamespace struct {
	Nsze    uint64
	Ncap    uint64
	Nuse    uint64
	Nsfeat  uint8
	Nlbaf   uint8
	Flbas   uint8
	Mc      uint8
	Dpc     uint8
	Dps     uint8
	Nmic    uint8
	Rescap  uint8
	Fpi     uint8
	Rsvd33  uint8
	Nawun   uint16
	Nawupf  uint16
	Nacwu   uint16
	Nabsn   uint16
	Nabo    uint16
	Nabspf  uint16
	Rsvd46  [2]byte
	Nvmcap  [16]byte
	Rsvd64  [40]byte
	Nguid   [16]byte
	EUI64   [8]byte
	Lbaf    [16]LBAFormat
	Rsvd192 [192]byte
	Vs      [3712]byte
} // 4096 bytes

type SMARTLog struct {
	CritWarning      uint8
	Temperature      [2]uint8
	AvailSpare       uint8
	SpareThresh      uint8
	PercentUsed      uint8
	Rsvd6            [26]byte
	DataUnitsRead    [16]byte
	DataUnitsWritten [16]byte
	HostReads        [16]byte
	HostWrites       [16]byte
	CtrlBusyTime     [16]byte
	PowerCycles      [16]byte
	PowerOnHours     [16]byte
	UnsafeShutdowns  [16]byte
	MediaErrors      [16]byte
	NumErrLogEntries [16]byte
	WarningTempTime  uint32
	CritCompTime     uint32
	TempSensor       [8]uint16
	Rsvd216          [296]byte
} // 512 bytes

// Result holds the data returned by an admin command and the completion queue entry dword 0.
type Result struct {
	Buffer   []byte
	Status   uint32
	Duration time.Duration
}

type NVMeDevice struct {
	Name string
	fd   int
}

func NewNVMeDevice(name string) *NVMeDevice {
	return &NVMeDevice{name, -1}
}

func (d *NVMeDevice) Open() (err error) {
	if d.fd, err = unix.Open(d.Name, unix.O_RDWR, 0600); err != nil {
		return errors.Wrapf(err, "cannot open %s", d.Name)
	}
	return nil
}

func (d *NVMeDevice) Close() error {
	return unix.Close(d.fd)
}

func (d *NVMeDevice) adminCommand(cmd *nvmePassthruCommand) (Result, error) {
	start := time.Now()

	err := ioctl.Ioctl(uintptr(d.fd), NVME_IOCTL_ADMIN_CMD, uintptr(unsafe.Pointer(cmd)))

	zap.L().Debug("NVMe admin command",
		zap.String("call", fmt.Sprintf("opcode=%#02x, size=%#04x, nsid=%#08x, cdw10=%#08x",
			cmd.opcode, cmd.data_len, cmd.nsid, cmd.cdw10)),
		zap.Error(err))

	if err != nil {
		return Result{}, errors.Wrapf(err, "NVMe admin command %#02x", cmd.opcode)
	}

	return Result{Status: cmd.result, Duration: time.Since(start)}, nil
}

// identifyCommand builds IDENTIFY for the data structure selected by cns.
func identifyCommand(cns uint8, nsid uint32, buf []byte) nvmePassthruCommand {
	return nvmePassthruCommand{
		opcode:   NVME_ADMIN_IDENTIFY,
		nsid:     nsid,
		addr:     uint64(uintptr(unsafe.Pointer(&buf[0]))),
		data_len: uint32(len(buf)),
		cdw10:    uint32(cns),
	}
}

// Identify returns the 4096 byte data structure selected by cns. Namespace 0 is used when
// identifying the controller.
func (d *NVMeDevice) Identify(cns uint8, nsid uint32) (Result, error) {
	buf := make([]byte, IDENTIFY_LEN)

	cmd := identifyCommand(cns, nsid, buf)
	r, err := d.adminCommand(&cmd)
	r.Buffer = buf

	return r, err
}

// logPageCommand builds GET LOG PAGE, with the dword count in cdw10 bits 31:16 (zero based).
func logPageCommand(logID uint8, nsid uint32, buf []byte) (nvmePassthruCommand, error) {
	bufLen := len(buf)

	if (bufLen < 4) || (bufLen > MAX_LOG_LEN) || (bufLen%4 != 0) {
		return nvmePassthruCommand{}, fmt.Errorf("invalid log page size %d", bufLen)
	}

	return nvmePassthruCommand{
		opcode:   NVME_ADMIN_GET_LOG_PAGE,
		nsid:     nsid,
		addr:     uint64(uintptr(unsafe.Pointer(&buf[0]))),
		data_len: uint32(bufLen),
		cdw10:    uint32(logID) | (((uint32(bufLen) / 4) - 1) << 16),
	}, nil
}

// GetLogPage reads length bytes of a log page.
func (d *NVMeDevice) GetLogPage(logID uint8, nsid uint32, length int) (Result, error) {
	if length < 4 {
		return Result{}, fmt.Errorf("invalid log page size %d", length)
	}

	buf := make([]byte, length)

	cmd, err := logPageCommand(logID, nsid, buf)
	if err != nil {
		return Result{}, err
	}

	r, err := d.adminCommand(&cmd)
	r.Buffer = buf

	return r, err
}

func DecodeController(buf []byte) (IdentController, error) {
	var c IdentController
	err := binary.Read(bytes.NewReader(buf), utils.NativeEndian, &c)
	return c, err
}

func DecodeNamespace(buf []byte) (IdentNamespace, error) {
	var ns IdentNamespace
	err := binary.Read(bytes.NewReader(buf), utils.NativeEndian, &ns)
	return ns, err
}

func DecodeSMARTLog(buf []byte) (SMARTLog, error) {
	var sl SMARTLog
	err := binary.Read(bytes.NewReader(buf), utils.NativeEndian, &sl)
	return sl, err
}

func (c *IdentController) Describe(w io.Writer) {
	fmt.Fprintf(w, "Vendor ID: %#04x\n", c.VendorID)
	fmt.Fprintf(w, "Model number: %s\n", bytes.TrimSpace(c.ModelNumber[:]))
	fmt.Fprintf(w, "Serial number: %s\n", bytes.TrimSpace(c.SerialNumber[:]))
	fmt.Fprintf(w, "Firmware version: %s\n", bytes.TrimSpace(c.Firmware[:]))
	fmt.Fprintf(w, "IEEE OUI identifier: 0x%02x%02x%02x\n", c.IEEE[2], c.IEEE[1], c.IEEE[0])
	fmt.Fprintf(w, "Max. data transfer size: %d pages\n", 1<<c.Mdts)
	fmt.Fprintf(w, "Number of namespaces: %d\n", c.Nn)

	for i, ps := range c.Psd {
		if ps.MaxPower > 0 {
			fmt.Fprintf(w, "Power state %d: %.2f W, entry latency %d us, exit latency %d us\n",
				i, float64(ps.MaxPower)/100, ps.EntryLat, ps.ExitLat)
		}
	}
}

func (ns *IdentNamespace) Describe(w io.Writer, nsid uint32) {
	lbaf := ns.Lbaf[ns.Flbas&0x0f]

	fmt.Fprintf(w, "Namespace %d size: %d sectors\n", nsid, ns.Nsze)
	fmt.Fprintf(w, "Namespace %d capacity: %d sectors\n", nsid, ns.Ncap)
	fmt.Fprintf(w, "Namespace %d utilisation: %d sectors\n", nsid, ns.Nuse)
	fmt.Fprintf(w, "Formatted LBA size: %d bytes, metadata %d bytes\n", 1<<lbaf.Ds, lbaf.Ms)
	fmt.Fprintf(w, "EUI-64: %x\n", ns.EUI64)
}

func (sl *SMARTLog) Describe(w io.Writer) {
	unitsRead := le128ToBigInt(sl.DataUnitsRead)
	unitsWritten := le128ToBigInt(sl.DataUnitsWritten)
	unit := big.NewInt(512 * 1000)

	fmt.Fprintf(w, "Critical warning: %#02x\n", sl.CritWarning)
	fmt.Fprintf(w, "Temperature: %d Celsius\n",
		int(uint16(sl.Temperature[1])<<8|uint16(sl.Temperature[0]))-273) // Kelvin to degrees Celsius
	fmt.Fprintf(w, "Avail. spare: %d%%\n", sl.AvailSpare)
	fmt.Fprintf(w, "Avail. spare threshold: %d%%\n", sl.SpareThresh)
	fmt.Fprintf(w, "Percentage used: %d%%\n", sl.PercentUsed)
	fmt.Fprintf(w, "Data units read: %d [%s]\n",
		unitsRead, formatBigBytes(new(big.Int).Mul(unitsRead, unit)))
	fmt.Fprintf(w, "Data units written: %d [%s]\n",
		unitsWritten, formatBigBytes(new(big.Int).Mul(unitsWritten, unit)))
	fmt.Fprintf(w, "Host read commands: %d\n", le128ToBigInt(sl.HostReads))
	fmt.Fprintf(w, "Host write commands: %d\n", le128ToBigInt(sl.HostWrites))
	fmt.Fprintf(w, "Controller busy time: %d\n", le128ToBigInt(sl.CtrlBusyTime))
	fmt.Fprintf(w, "Power cycles: %d\n", le128ToBigInt(sl.PowerCycles))
	fmt.Fprintf(w, "Power on hours: %d\n", le128ToBigInt(sl.PowerOnHours))
	fmt.Fprintf(w, "Unsafe shutdowns: %d\n", le128ToBigInt(sl.UnsafeShutdowns))
	fmt.Fprintf(w, "Media & data integrity errors: %d\n", le128ToBigInt(sl.MediaErrors))
	fmt.Fprintf(w, "Error information log entries: %d\n", le128ToBigInt(sl.NumErrLogEntries))
}

// formatBigBytes falls back to a plain byte count beyond the uint64 range.
func formatBigBytes(v *big.Int) string {
	if v.IsUint64() {
		return utils.FormatBytes(v.Uint64())
	}

	return v.String() + " B"
}

// le128ToBigInt takes a little-endian 16-byte slice and returns a *big.Int representing it.
func le128ToBigInt(buf [16]byte) *big.Int {
	// Int.SetBytes() expects big-endian input, so reverse the bytes locally first
	rev := make([]byte, 16)
	for x := 0; x < 16; x++ {
		rev[x] = buf[16-x-1]
	}

	return new(big.Int).SetBytes(rev)
}
