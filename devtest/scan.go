// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package devtest

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/aaru-dps/devtest/megaraid"
	"github.com/aaru-dps/devtest/nvme"
	"github.com/aaru-dps/devtest/scsi"
)

var nvmeNodeRe = regexp.MustCompile(`^/dev/nvme[0-9]+$`)

type scanRow struct {
	device, kind, model, revision string
}

// describeSCSI identifies a device with INQUIRY, and with IDENTIFY DEVICE when it is an ATA drive
// behind a SAT layer.
func describeSCSI(d *scsi.Device) (scanRow, error) {
	inq, err := d.Inquiry()
	if err != nil {
		return scanRow{}, err
	}

	row := scanRow{
		kind:     inq.DeviceTypeName(),
		model:    strings.TrimSpace(string(inq.VendorIdent[:])) + " " + strings.TrimSpace(string(inq.ProductIdent[:])),
		revision: strings.TrimSpace(string(inq.ProductRev[:])),
	}

	if scsi.IsATA(inq) {
		if ident, err := scsi.NewSATDevice(d).IdentifyDevice(); err == nil {
			row.kind = "ATA (SAT)"
			row.model = strings.TrimSpace(string(ident.ModelNumber()))
			row.revision = strings.TrimSpace(string(ident.FirmwareRevision()))
		}
	}

	return row, nil
}

func describeNVMe(path string) (scanRow, error) {
	d := nvme.NewNVMeDevice(path)
	if err := d.Open(); err != nil {
		return scanRow{}, err
	}
	defer d.Close()

	r, err := d.Identify(nvme.CNS_CONTROLLER, 0)
	if err != nil {
		return scanRow{}, err
	}

	ic, err := nvme.DecodeController(r.Buffer)
	if err != nil {
		return scanRow{}, err
	}

	return scanRow{
		kind:     "NVMe",
		model:    strings.TrimSpace(string(ic.ModelNumber[:])),
		revision: strings.TrimSpace(string(ic.Firmware[:])),
	}, nil
}

// Scan lists the SCSI, NVMe and MegaRAID physical devices that answer an identify command.
func Scan(w io.Writer, timeout time.Duration) error {
	var rows []scanRow

	add := func(device string, row scanRow, err error) {
		if err != nil {
			zap.L().Debug("skipping device", zap.String("device", device), zap.Error(err))
			return
		}
		row.device = device
		rows = append(rows, row)
	}

	for _, path := range scsi.ScanDevices() {
		d, err := scsi.Open(path, timeout)
		if err != nil {
			add(path, scanRow{}, err)
			continue
		}
		row, err := describeSCSI(d)
		d.Close()
		add(path, row, err)
	}

	nodes, _ := filepath.Glob("/dev/nvme*")
	for _, path := range nodes {
		if nvmeNodeRe.MatchString(path) {
			row, err := describeNVMe(path)
			add(path, row, err)
		}
	}

	if hosts := megaraid.Hosts(); len(hosts) > 0 {
		m, err := megaraid.CreateIoctl()
		if err != nil {
			zap.L().Warn("MegaRAID controller found but ioctl node unavailable", zap.Error(err))
		} else {
			for _, name := range m.ScanDevices() {
				host, disk, _ := megaraid.ParseDeviceName(name)
				row, err := describeSCSI(scsi.NewDevice(m.Transport(host, disk), timeout))
				add(name, row, err)
			}
			m.Close()
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tTYPE\tVENDOR / MODEL\tREVISION")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.device, r.kind, r.model, r.revision)
	}

	return tw.Flush()
}
