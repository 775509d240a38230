// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Package devtest is an interactive harness sending individual ATA, SCSI and NVMe commands to a
// device and showing everything they return.
package devtest

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/aaru-dps/devtest/ata"
	"github.com/aaru-dps/devtest/drivedb"
	"github.com/aaru-dps/devtest/nvme"
	"github.com/aaru-dps/devtest/scsi"
)

// Session is one interactive run against a single device.
type Session struct {
	c     *Console
	path  string
	stats *Stats
	db    drivedb.DriveDb

	dev  *scsi.Device
	sat  *scsi.SATDevice
	nvme *nvme.NVMeDevice

	inq   *scsi.InquiryResponse
	ident *ata.IdentifyDeviceData
}

// entry is a menu item.
type entry struct {
	name string
	run  func() error
}

// NewSession probes a SCSI device (or an ATA device behind SAT) so that the main menu can
// describe it.
func NewSession(c *Console, path string, dev *scsi.Device, db drivedb.DriveDb, stats *Stats) *Session {
	s := &Session{c: c, path: path, stats: stats, db: db, dev: dev, sat: scsi.NewSATDevice(dev)}

	inq, err := dev.Inquiry()
	if err != nil {
		zap.L().Warn("INQUIRY failed", zap.String("device", path), zap.Error(err))
		return s
	}
	s.inq = &inq

	if scsi.IsATA(inq) {
		ident, err := s.sat.IdentifyDevice()
		if err != nil {
			zap.L().Warn("IDENTIFY DEVICE failed", zap.String("device", path), zap.Error(err))
			return s
		}
		s.ident = &ident
	}

	return s
}

func NewNVMeSession(c *Console, path string, d *nvme.NVMeDevice, stats *Stats) *Session {
	return &Session{c: c, path: path, stats: stats, nvme: d}
}

// menu shows entries until the operator returns to parent.
func (s *Session) menu(title, parent string, header []string, entries []entry) error {
	items := make([]string, len(entries))
	for i, e := range entries {
		items[i] = e.name
	}

	for {
		n, err := s.c.Menu(title, header, items, parent)
		if err != nil || n == 0 {
			return err
		}

		if err := entries[n-1].run(); err != nil {
			return err
		}
	}
}

// commandEntries turns commands into menu entries running their command screen.
func (s *Session) commandEntries(family, parent string, cmds []command) []entry {
	entries := make([]entry, len(cmds))

	for i := range cmds {
		cmd := cmds[i]
		entries[i] = entry{
			name: fmt.Sprintf("Send %s command.", cmd.name),
			run:  func() error { return s.runCommand(family, parent, cmd) },
		}
	}

	return entries
}

func (s *Session) summary() []string {
	h := []string{"Device: " + s.path}

	switch {
	case s.nvme != nil:
		h = append(h, "Type: NVMe")
	case s.inq != nil:
		h = append(h, "Type: "+s.inq.DeviceTypeName(), "INQUIRY: "+s.inq.String())
	default:
		h = append(h, "Type: unknown, INQUIRY failed")
	}

	if s.ident != nil {
		h = append(h, fmt.Sprintf("IDENTIFY: Model=%s, Firmware=%s, Serial=%s",
			bytes.TrimSpace(s.ident.ModelNumber()),
			bytes.TrimSpace(s.ident.FirmwareRevision()),
			bytes.TrimSpace(s.ident.SerialNumber())))
	}

	return h
}

// Run shows the main menu until the operator leaves or the input ends.
func (s *Session) Run() error {
	var entries []entry

	if s.dev != nil {
		entries = append(entries,
			entry{"Send an ATA command to the device.", s.ataMenu},
			entry{"Send a SCSI command to the device.", s.scsiMenu})
	}
	if s.nvme != nil {
		entries = append(entries, entry{"Send an NVMe command to the device.", s.nvmeMenu})
	}
	entries = append(entries, entry{"Show command statistics.", s.statsMenu})

	err := s.menu("Main menu:", "operating system", s.summary(), entries)
	if err == io.EOF {
		return nil
	}

	return err
}

// driveModel returns the drive database entry of the IDENTIFY model, or just the defaults.
func (s *Session) driveModel() drivedb.DriveModel {
	if s.ident == nil {
		return s.db.LookupDrive(nil)
	}

	return s.db.LookupDrive(s.ident.ModelNumber())
}
