// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package scsi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Device sends SCSI commands over a Transport. Every command returns a Result; the error return is
// reserved for transport failures.
type Device struct {
	Transport Transport
	Timeout   time.Duration
}

// Result holds what a device command returned. Buffer and Sense are only valid until the next
// command is sent.
type Result struct {
	Buffer   []byte
	Sense    []byte
	Failed   bool
	Duration time.Duration
}

// SCSI INQUIRY response
type InquiryResponse struct {
	Peripheral   byte // peripheral qualifier, device type
	_            byte
	Version      byte
	_            [5]byte
	VendorIdent  [8]byte
	ProductIdent [16]byte
	ProductRev   [4]byte
}

func (inq InquiryResponse) String() string {
	return fmt.Sprintf("Type=0x%x, Vendor=%s, Product=%s, Revision=%s",
		inq.Peripheral,
		strings.TrimSpace(string(inq.VendorIdent[:])),
		strings.TrimSpace(string(inq.ProductIdent[:])),
		strings.TrimSpace(string(inq.ProductRev[:])))
}

// DeviceType returns the peripheral device type, e.g. 0x00 for direct access block devices.
func (inq InquiryResponse) DeviceType() uint8 {
	return inq.Peripheral & 0x1f
}

var peripheralTypes = map[uint8]string{
	0x00: "direct access block device",
	0x01: "sequential access device",
	0x02: "printer",
	0x03: "processor",
	0x04: "write once device",
	0x05: "CD/DVD device",
	0x07: "optical memory device",
	0x08: "medium changer",
	0x0c: "storage array controller",
	0x0d: "enclosure services device",
	0x0e: "simplified direct access device",
	0x11: "object-based storage device",
	0x14: "host managed zoned block device",
}

// DeviceTypeName describes the peripheral device type.
func (inq InquiryResponse) DeviceTypeName() string {
	if s, ok := peripheralTypes[inq.DeviceType()]; ok {
		return s
	}

	return fmt.Sprintf("peripheral type %#02x", inq.DeviceType())
}

// IsATA reports whether the INQUIRY data came from a SCSI / ATA Translation layer.
func IsATA(inq InquiryResponse) bool {
	return bytes.Equal(inq.VendorIdent[:], []byte("ATA     "))
}

func NewDevice(t Transport, timeout time.Duration) *Device {
	return &Device{Transport: t, Timeout: timeout}
}

// Open opens a device node with the SG_IO transport.
func Open(path string, timeout time.Duration) (*Device, error) {
	t, err := OpenSGIO(path)
	if err != nil {
		return nil, err
	}

	return NewDevice(t, timeout), nil
}

func (d *Device) Close() error {
	return d.Transport.Close()
}

// MaxTransferLen is the largest data buffer a single command may request.
const MaxTransferLen = 16 << 20

// send transfers a CDB with a data buffer of bufLen bytes, allocated here.
func (d *Device) send(cdb []byte, dir Direction, bufLen int) (Result, error) {
	var buf []byte

	if bufLen > MaxTransferLen {
		return Result{}, fmt.Errorf("transfer of %d bytes exceeds the %d byte limit", bufLen, MaxTransferLen)
	}
	if bufLen > 0 {
		buf = make([]byte, bufLen)
	}

	return d.sendBuf(cdb, dir, buf)
}

func (d *Device) sendBuf(cdb []byte, dir Direction, buf []byte) (Result, error) {
	resp, err := d.Transport.SendCDB(cdb, dir, buf, d.Timeout)
	if err != nil {
		zap.L().Debug("CDB not sent", zap.Binary("cdb", cdb), zap.Error(err))
		return Result{}, err
	}

	zap.L().Debug("CDB sent",
		zap.String("cdb", fmt.Sprintf("% x", cdb)),
		zap.Stringer("direction", dir),
		zap.Duration("duration", resp.Duration),
		zap.Uint8("status", resp.Status),
		zap.Int("sense_len", len(resp.Sense)))

	if resp.Resid > 0 && int(resp.Resid) <= len(buf) {
		buf = buf[:len(buf)-int(resp.Resid)]
	}

	return Result{
		Buffer:   buf,
		Sense:    resp.Sense,
		Failed:   resp.Failed(),
		Duration: resp.Duration,
	}, nil
}

// Inquiry sends a standard SCSI INQUIRY command and decodes the response. A device failure is
// returned as an SgioError.
func (d *Device) Inquiry() (InquiryResponse, error) {
	var inq InquiryResponse

	cdb := CDB6{SCSI_INQUIRY}
	binary.BigEndian.PutUint16(cdb[3:], INQ_REPLY_LEN)

	respBuf := make([]byte, INQ_REPLY_LEN)

	resp, err := d.Transport.SendCDB(cdb[:], DirFromDevice, respBuf, d.Timeout)
	if err != nil {
		return inq, err
	}

	if resp.Failed() {
		return inq, newSgioError(resp)
	}

	err = binary.Read(bytes.NewReader(respBuf), binary.BigEndian, &inq)
	return inq, err
}
