// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// SCSI / ATA Translation functions.

package scsi

import (
	"time"

	"github.com/pkg/errors"

	"github.com/aaru-dps/devtest/ata"
)

const (
	// ATA PASS-THROUGH protocols
	SAT_PROTO_HARD_RESET = 0
	SAT_PROTO_SRST       = 1
	SAT_PROTO_NON_DATA   = 3
	SAT_PROTO_PIO_IN     = 4
	SAT_PROTO_PIO_OUT    = 5
	SAT_PROTO_DMA        = 6
	SAT_PROTO_UDMA_IN    = 10

	// ATA PASS-THROUGH byte 2 flags
	SAT_CK_COND  = 0x20
	SAT_T_DIR_IN = 0x08
	SAT_BYT_BLOK = 0x04

	// T_LENGTH: where the transfer length is specified
	SAT_T_LENGTH_NONE  = 0
	SAT_T_LENGTH_COUNT = 2
	SAT_T_LENGTH_TPSIU = 3
)

var ErrNotSATA = errors.New("device is not behind a SCSI / ATA Translation layer")

// SATDevice sends ATA commands wrapped in ATA PASS-THROUGH(16).
type SATDevice struct {
	*Device
}

func NewSATDevice(d *Device) *SATDevice {
	return &SATDevice{d}
}

// CheckSAT returns ErrNotSATA if the INQUIRY vendor does not name a SAT layer.
func (d *SATDevice) CheckSAT() error {
	inq, err := d.Inquiry()
	if err != nil {
		return err
	}

	if !IsATA(inq) {
		return ErrNotSATA
	}

	return nil
}

// ATAResult holds what an ATA command returned. Failed is set when the device reported ERR or DF,
// or when the SCSI layer failed without returning the ATA registers.
type ATAResult struct {
	Buffer   []byte
	Sense    []byte
	Failed   bool
	Duration time.Duration
}

type LBA28Result struct {
	ATAResult
	Registers ata.LBA28Registers
}

type LBA48Result struct {
	ATAResult
	Registers ata.LBA48Registers
}

type CHSResult struct {
	ATAResult
	Registers ata.CHSRegisters
}

// sectors returns the number of 512 byte sectors moved for a sector count register value.
func sectors(count uint16, extend bool) int {
	if count != 0 {
		return int(count)
	}
	if extend {
		return 65536
	}
	return 256
}

// passThrough16 sends an ATA command with CK_COND set, so that the SAT layer always returns the
// ATA registers in the sense data.
func (d *SATDevice) passThrough16(tf ata.Taskfile, proto uint8, dir Direction, bufLen int, extend bool) (ATAResult, ata.LBA48Registers, error) {
	var regs ata.LBA48Registers

	cdb := CDB16{SCSI_ATA_PASSTHRU_16}
	cdb[1] = proto << 1
	if extend {
		cdb[1] |= 0x01
	}

	cdb[2] = SAT_CK_COND
	if bufLen > 0 {
		if bufLen == sectors(tf.Count, extend)*ata.SECTOR_SIZE {
			// 0x0e : BYT_BLOK = 1, T_LENGTH = 2, T_DIR = 1
			cdb[2] |= SAT_BYT_BLOK | SAT_T_LENGTH_COUNT
		} else {
			cdb[2] |= SAT_T_LENGTH_TPSIU
		}
		if dir == DirFromDevice {
			cdb[2] |= SAT_T_DIR_IN
		}
	} else {
		dir = DirNone
	}

	cdb[3] = uint8(tf.Feature >> 8)
	cdb[4] = uint8(tf.Feature)
	cdb[5] = uint8(tf.Count >> 8)
	cdb[6] = uint8(tf.Count)
	cdb[7] = uint8(tf.LBALow >> 8)
	cdb[8] = uint8(tf.LBALow)
	cdb[9] = uint8(tf.LBAMid >> 8)
	cdb[10] = uint8(tf.LBAMid)
	cdb[11] = uint8(tf.LBAHigh >> 8)
	cdb[12] = uint8(tf.LBAHigh)
	cdb[13] = tf.Device
	cdb[14] = tf.Command

	res, err := d.send(cdb[:], dir, bufLen)
	if err != nil {
		return ATAResult{}, regs, err
	}

	r := ATAResult{
		Buffer:   res.Buffer,
		Sense:    res.Sense,
		Failed:   res.Failed,
		Duration: res.Duration,
	}

	if sense, ok := DecodeSense(res.Sense); ok {
		var haveRegs bool
		if regs, haveRegs = sense.ATAReturn(); haveRegs {
			r.Failed = regs.Failed()
		}
	}

	return r, regs, nil
}

func (d *SATDevice) lba28(tf ata.Taskfile, proto uint8, bufLen int) (LBA28Result, error) {
	dir := DirNone
	if bufLen > 0 {
		dir = DirFromDevice
	}

	r, regs, err := d.passThrough16(tf, proto, dir, bufLen, false)
	return LBA28Result{ATAResult: r, Registers: regs.LBA28()}, err
}

func (d *SATDevice) lba48(tf ata.Taskfile, proto uint8, bufLen int) (LBA48Result, error) {
	dir := DirNone
	if bufLen > 0 {
		dir = DirFromDevice
	}

	r, regs, err := d.passThrough16(tf, proto, dir, bufLen, true)
	return LBA48Result{ATAResult: r, Registers: regs}, err
}

func (d *SATDevice) chs(tf ata.Taskfile, proto uint8, bufLen int) (CHSResult, error) {
	dir := DirNone
	if bufLen > 0 {
		dir = DirFromDevice
	}

	r, regs, err := d.passThrough16(tf, proto, dir, bufLen, false)
	return CHSResult{ATAResult: r, Registers: regs.CHS()}, err
}

// Identify sends IDENTIFY DEVICE.
func (d *SATDevice) Identify() (LBA28Result, error) {
	tf := ata.Taskfile{Count: 1, Command: ata.ATA_IDENTIFY_DEVICE}
	return d.lba28(tf, SAT_PROTO_PIO_IN, ata.SECTOR_SIZE)
}

// IdentifyPacket sends IDENTIFY PACKET DEVICE, which only ATAPI devices accept.
func (d *SATDevice) IdentifyPacket() (LBA28Result, error) {
	tf := ata.Taskfile{Count: 1, Command: ata.ATA_IDENTIFY_PACKET_DEVICE}
	return d.lba28(tf, SAT_PROTO_PIO_IN, ata.SECTOR_SIZE)
}

// IdentifyDevice sends IDENTIFY DEVICE and decodes the response.
func (d *SATDevice) IdentifyDevice() (ata.IdentifyDeviceData, error) {
	r, err := d.Identify()
	if err != nil {
		return ata.IdentifyDeviceData{}, err
	}

	if r.Failed {
		return ata.IdentifyDeviceData{}, errors.Errorf("IDENTIFY DEVICE failed: %s", r.Registers.Status)
	}

	return ata.ParseIdentify(r.Buffer)
}
