// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package megaraid

import (
	"time"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/aaru-dps/devtest/scsi"
)

// Transport sends CDBs to one physical disk behind a MegaRAID host. It implements scsi.Transport.
type Transport struct {
	m     *Ioctl
	host  uint16
	disk  uint8
	owned bool
}

// Transport returns a transport for the disk with the given device id. Closing it leaves the
// ioctl node open.
func (m *Ioctl) Transport(host uint16, disk uint8) *Transport {
	return &Transport{m: m, host: host, disk: disk}
}

// Open opens the ioctl node and returns a transport for a device named by DeviceName.
func Open(name string) (*Transport, error) {
	host, disk, ok := ParseDeviceName(name)
	if !ok {
		return nil, errors.Errorf("invalid MegaRAID device name %q", name)
	}

	m, err := CreateIoctl()
	if err != nil {
		return nil, err
	}

	t := m.Transport(host, disk)
	t.owned = true

	return t, nil
}

func (t *Transport) Close() error {
	if t.owned {
		return t.m.Close()
	}

	return nil
}

// pthruPacket builds a PD SCSI IO frame. The frame sense address holds the user space address
// of sense, which the driver copies the sense data to.
func pthruPacket(host uint16, disk uint8, cdb []byte, dir scsi.Direction, buf, sense []byte, timeout time.Duration) megasas_iocpacket {
	ioc := megasas_iocpacket{host_no: host}

	// Approximation of C union behaviour
	pthru := (*megasas_pthru_frame)(unsafe.Pointer(&ioc.frame))
	pthru.cmd_status = MFI_STAT_INVALID_STATUS
	pthru.cmd = MFI_CMD_PD_SCSI_IO
	pthru.target_id = disk
	pthru.cdb_len = uint8(len(cdb))
	copy(pthru.cdb[:], cdb)

	if secs := timeout / time.Second; secs > 0xffff {
		pthru.timeout = 0xffff
	} else {
		pthru.timeout = uint16(secs)
	}

	if len(sense) > 0 {
		addr := uint64(uintptr(unsafe.Pointer(&sense[0])))
		pthru.sense_len = uint8(len(sense))
		pthru.sense_buf_phys_addr_lo = uint32(addr)
		pthru.sense_buf_phys_addr_hi = uint32(addr >> 32)

		ioc.sense_off = uint32(unsafe.Offsetof(pthru.sense_buf_phys_addr_lo))
		ioc.sense_len = uint32(len(sense))
	}

	if len(buf) == 0 {
		dir = scsi.DirNone
	}

	switch dir {
	case scsi.DirNone:
		pthru.flags = MFI_FRAME_DIR_NONE
		return ioc
	case scsi.DirFromDevice:
		pthru.flags = MFI_FRAME_DIR_READ
	case scsi.DirToDevice:
		pthru.flags = MFI_FRAME_DIR_WRITE
	case scsi.DirToFromDevice:
		pthru.flags = MFI_FRAME_DIR_BOTH
	}

	pthru.data_xfer_len = uint32(len(buf))
	pthru.sge_count = 1

	ioc.sge_count = 1
	ioc.sgl_off = uint32(unsafe.Offsetof(pthru.sgl))
	ioc.sgl[0] = Iovec{uint64(uintptr(unsafe.Pointer(&buf[0]))), uint64(len(buf))}

	return ioc
}

// frameResponse maps the completed frame status to a SCSI response. The driver only copies
// cmd_status back; a SCSI level error is reported as CHECK CONDITION unless the frame also
// carries a SCSI status.
func frameResponse(cmdStatus, scsiStatus uint8, sense []byte) scsi.Response {
	var resp scsi.Response

	switch cmdStatus {
	case MFI_STAT_OK:
		resp.Status = scsiStatus
	case MFI_STAT_SCSI_DONE_WITH_ERROR:
		resp.Status = scsiStatus
		if resp.Status == scsi.SAM_STAT_GOOD {
			resp.Status = scsi.SAM_STAT_CHECK_CONDITION
		}
	default:
		resp.HostStatus = uint16(cmdStatus)
	}

	// The driver does not report the sense length, so trim trailing zeroes
	n := len(sense)
	for n > 0 && sense[n-1] == 0 {
		n--
	}
	if n > 0 {
		resp.Sense = sense[:n]
	}

	return resp
}

// SendCDB sends a SCSI command to the physical disk through MFI pass-through.
func (t *Transport) SendCDB(cdb []byte, dir scsi.Direction, buf []byte, timeout time.Duration) (scsi.Response, error) {
	if len(cdb) == 0 || len(cdb) > 16 {
		return scsi.Response{}, errors.Errorf("invalid CDB length %d", len(cdb))
	}

	sense := make([]byte, scsi.SENSE_BUF_LEN)
	ioc := pthruPacket(t.host, t.disk, cdb, dir, buf, sense, timeout)

	start := time.Now()

	iocBuf, err := t.m.send(&ioc)
	if err != nil {
		return scsi.Response{}, errors.Wrapf(err, "MegaRAID pass-through to %s", DeviceName(t.host, uint16(t.disk)))
	}

	resp := frameResponse(iocBuf[iocFrameOffset+2], iocBuf[iocFrameOffset+3], sense)
	resp.Duration = time.Since(start)

	return resp, nil
}
