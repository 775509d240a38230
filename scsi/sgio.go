// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// SCSI generic IO functions.

package scsi

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/aaru-dps/devtest/ioctl"
)

const (
	SG_DXFER_NONE        = -1
	SG_DXFER_TO_DEV      = -2
	SG_DXFER_FROM_DEV    = -3
	SG_DXFER_TO_FROM_DEV = -4

	SG_INFO_OK_MASK = 0x1
	SG_INFO_OK      = 0x0

	SG_IO = 0x2285

	// Timeout in milliseconds
	DEFAULT_TIMEOUT = 20000

	SENSE_BUF_LEN = 64

	DRIVER_SENSE = 0x08
)

// Direction is the data transfer direction of a CDB.
type Direction int32

const (
	DirNone         Direction = SG_DXFER_NONE
	DirToDevice     Direction = SG_DXFER_TO_DEV
	DirFromDevice   Direction = SG_DXFER_FROM_DEV
	DirToFromDevice Direction = SG_DXFER_TO_FROM_DEV
)

func (d Direction) String() string {
	switch d {
	case DirNone:
		return "none"
	case DirToDevice:
		return "to device"
	case DirFromDevice:
		return "from device"
	case DirToFromDevice:
		return "bidirectional"
	}

	return fmt.Sprintf("unknown (%d)", int32(d))
}

// Transport sends a single CDB to a device. The returned error is reserved for failures to issue
// the command at all; errors reported by the device are carried in the Response.
type Transport interface {
	SendCDB(cdb []byte, dir Direction, buf []byte, timeout time.Duration) (Response, error)
	Close() error
}

// Response holds the completion state of a CDB.
type Response struct {
	Status       uint8  // SCSI status
	HostStatus   uint16 // errors from host adapter
	DriverStatus uint16 // errors from software driver
	Sense        []byte // sense data actually written by the device
	Resid        int32  // requested minus actually transferred bytes
	Duration     time.Duration
}

// Failed reports whether the command did not complete with GOOD status.
func (r Response) Failed() bool {
	return r.Status != SAM_STAT_GOOD || r.HostStatus != 0 || r.DriverStatus&^DRIVER_SENSE != 0
}

// SCSI generic ioctl header, defined as sg_io_hdr_t in <scsi/sg.h>
type sgIoHdr struct {
	interface_id    int32   // 'S' for SCSI generic (required)
	dxfer_direction int32   // data transfer direction
	cmd_len         uint8   // SCSI command length (<= 16 bytes)
	mx_sb_len       uint8   // max length to write to sbp
	iovec_count     uint16  // 0 implies no scatter gather
	dxfer_len       uint32  // byte count of data transfer
	dxferp          uintptr // points to data transfer memory or scatter gather list
	cmdp            uintptr // points to command to perform
	sbp             uintptr // points to sense_buffer memory
	timeout         uint32  // MAX_UINT -> no timeout (unit: millisec)
	flags           uint32  // 0 -> default, see SG_FLAG...
	pack_id         int32   // unused internally (normally)
	usr_ptr         uintptr // unused internally
	status          uint8   // SCSI status
	masked_status   uint8   // shifted, masked scsi status
	msg_status      uint8   // messaging level data (optional)
	sb_len_wr       uint8   // byte count actually written to sbp
	host_status     uint16  // errors from host adapter
	driver_status   uint16  // errors from software driver
	resid           int32   // dxfer_len - actual_transferred
	duration        uint32  // time taken by cmd (unit: millisec)
	info            uint32  // auxiliary information
}

// SgioError is returned by helpers that need a successful command, such as Inquiry.
type SgioError struct {
	ScsiStatus   uint8
	HostStatus   uint16
	DriverStatus uint16
	Sense        Sense
	SenseValid   bool
}

func newSgioError(resp Response) SgioError {
	e := SgioError{
		ScsiStatus:   resp.Status,
		HostStatus:   resp.HostStatus,
		DriverStatus: resp.DriverStatus,
	}
	e.Sense, e.SenseValid = DecodeSense(resp.Sense)

	return e
}

func (e SgioError) Error() string {
	s := fmt.Sprintf("SCSI status: %#02x, host status: %#02x, driver status: %#02x",
		e.ScsiStatus, e.HostStatus, e.DriverStatus)

	if e.SenseValid {
		s += ", sense: " + e.Sense.String()
	}

	return s
}

// Is allows errors.Is(err, ErrIllegalRequest) on device errors.
func (e SgioError) Is(target error) bool {
	return target == ErrIllegalRequest && e.SenseValid && e.Sense.Key == SENSE_ILLEGAL_REQUEST
}

// SGIO is a Transport using the Linux SG_IO ioctl, available on sd, sr, st and sg nodes.
type SGIO struct {
	path string
	fd   int
}

// OpenSGIO opens a device node for SG_IO.
func OpenSGIO(path string) (*SGIO, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK, 0600)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open %s", path)
	}

	return &SGIO{path: path, fd: fd}, nil
}

func (s *SGIO) Close() error {
	return unix.Close(s.fd)
}

// SendCDB sends a SCSI Command Descriptor Block to the device, transferring data to or from buf.
func (s *SGIO) SendCDB(cdb []byte, dir Direction, buf []byte, timeout time.Duration) (Response, error) {
	var resp Response

	if len(cdb) == 0 {
		return resp, errors.New("empty CDB")
	}

	senseBuf := make([]byte, SENSE_BUF_LEN)

	// Populate required fields of "sg_io_hdr_t" struct
	hdr := sgIoHdr{
		interface_id:    'S',
		dxfer_direction: int32(dir),
		timeout:         uint32(timeout / time.Millisecond),
		cmd_len:         uint8(len(cdb)),
		mx_sb_len:       uint8(len(senseBuf)),
		cmdp:            uintptr(unsafe.Pointer(&cdb[0])),
		sbp:             uintptr(unsafe.Pointer(&senseBuf[0])),
	}

	if hdr.timeout == 0 {
		hdr.timeout = DEFAULT_TIMEOUT
	}

	if len(buf) > 0 && dir != DirNone {
		hdr.dxfer_len = uint32(len(buf))
		hdr.dxferp = uintptr(unsafe.Pointer(&buf[0]))
	} else {
		hdr.dxfer_direction = SG_DXFER_NONE
	}

	start := time.Now()

	if err := ioctl.Ioctl(uintptr(s.fd), SG_IO, uintptr(unsafe.Pointer(&hdr))); err != nil {
		return resp, errors.Wrapf(err, "SG_IO on %s", s.path)
	}

	resp = Response{
		Status:       hdr.status,
		HostStatus:   hdr.host_status,
		DriverStatus: hdr.driver_status,
		Resid:        hdr.resid,
		Duration:     time.Duration(hdr.duration) * time.Millisecond,
	}

	// Sub-millisecond commands report zero
	if resp.Duration == 0 {
		resp.Duration = time.Since(start)
	}

	if hdr.sb_len_wr > 0 {
		resp.Sense = senseBuf[:hdr.sb_len_wr]
	}

	return resp, nil
}
