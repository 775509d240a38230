// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package scsi

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport records every CDB and replays a canned response.
type fakeTransport struct {
	cdbs    [][]byte
	dirs    []Direction
	bufLens []int
	timeout time.Duration

	resp Response
	data []byte
	err  error
}

func (f *fakeTransport) SendCDB(cdb []byte, dir Direction, buf []byte, timeout time.Duration) (Response, error) {
	f.cdbs = append(f.cdbs, append([]byte(nil), cdb...))
	f.dirs = append(f.dirs, dir)
	f.bufLens = append(f.bufLens, len(buf))
	f.timeout = timeout

	copy(buf, f.data)

	return f.resp, f.err
}

func (f *fakeTransport) Close() error {
	return nil
}

func (f *fakeTransport) lastCDB() []byte {
	return f.cdbs[len(f.cdbs)-1]
}

func newFakeDevice() (*Device, *fakeTransport) {
	ft := &fakeTransport{resp: Response{Duration: time.Millisecond}}
	return NewDevice(ft, 5*time.Second), ft
}

func inquiryData(vendor, product, rev string) []byte {
	buf := make([]byte, INQ_REPLY_LEN)
	buf[0] = 0x05
	copy(buf[8:16], "        ")
	copy(buf[8:], vendor)
	copy(buf[16:32], "                ")
	copy(buf[16:], product)
	copy(buf[32:36], rev)

	return buf
}

func TestInquiry(t *testing.T) {
	d, ft := newFakeDevice()
	ft.data = inquiryData("ATA", "ST1000DM003-1CH1", "CC47")

	inq, err := d.Inquiry()
	require.NoError(t, err)

	assert.Equal(t, []byte{SCSI_INQUIRY, 0, 0, 0, INQ_REPLY_LEN, 0}, ft.lastCDB())
	assert.Equal(t, DirFromDevice, ft.dirs[0])
	assert.Equal(t, 5*time.Second, ft.timeout)

	assert.Equal(t, "Type=0x5, Vendor=ATA, Product=ST1000DM003-1CH1, Revision=CC47", inq.String())
	assert.Equal(t, "CD/DVD device", inq.DeviceTypeName())
	assert.True(t, IsATA(inq))
}

func TestInquiryCheckCondition(t *testing.T) {
	d, ft := newFakeDevice()
	ft.resp = Response{
		Status:       SAM_STAT_CHECK_CONDITION,
		DriverStatus: DRIVER_SENSE,
		Sense:        []byte{0x70, 0, SENSE_ILLEGAL_REQUEST, 0, 0, 0, 0, 10, 0, 0, 0, 0, 0x24, 0x00},
	}

	_, err := d.Inquiry()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalRequest))
	assert.Contains(t, err.Error(), "ILLEGAL REQUEST, Invalid field in CDB")

	var sgErr SgioError
	require.True(t, errors.As(err, &sgErr))
	assert.Equal(t, uint8(SAM_STAT_CHECK_CONDITION), sgErr.ScsiStatus)
}

func TestTransportError(t *testing.T) {
	d, ft := newFakeDevice()
	ft.err = errors.New("no such device")

	_, err := d.TestUnitReady()
	assert.EqualError(t, err, "no such device")
}

func TestResultFailed(t *testing.T) {
	assert.False(t, Response{}.Failed())
	assert.False(t, Response{DriverStatus: DRIVER_SENSE}.Failed())
	assert.True(t, Response{Status: SAM_STAT_CHECK_CONDITION}.Failed())
	assert.True(t, Response{HostStatus: 1}.Failed())

	d, ft := newFakeDevice()
	ft.resp.Status = SAM_STAT_CHECK_CONDITION
	ft.resp.Sense = []byte{0x70, 0, SENSE_NOT_READY}

	r, err := d.TestUnitReady()
	require.NoError(t, err)
	assert.True(t, r.Failed)
	assert.Nil(t, r.Buffer)
	assert.Equal(t, DirNone, ft.dirs[0])
	assert.Equal(t, time.Millisecond, r.Duration)
}

func TestResid(t *testing.T) {
	d, ft := newFakeDevice()
	ft.resp.Resid = 200

	r, err := d.InquiryRaw(true, 0x80, 255)
	require.NoError(t, err)
	assert.Equal(t, []byte{SCSI_INQUIRY, 0x01, 0x80, 0x00, 0xff, 0}, ft.lastCDB())
	assert.Len(t, r.Buffer, 55)
}

func TestTransferLimit(t *testing.T) {
	d, ft := newFakeDevice()

	_, err := d.Read16(ReadFlags{}, 0, 0xffffffff, 512)
	assert.Error(t, err)
	assert.Empty(t, ft.cdbs)
}
