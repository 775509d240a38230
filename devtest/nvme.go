// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package devtest

import (
	"github.com/davecgh/go-spew/spew"
	gonvme "github.com/dswarbrick/go-nvme/nvme"

	"github.com/aaru-dps/devtest/nvme"
)

func nvmeOutcome(r nvme.Result, err error, extra ...view) outcome {
	o := outcome{buffer: r.Buffer, duration: r.Duration, err: err}
	if err != nil {
		o.buffer = nil
		return o
	}

	o.views = extra

	return o
}

// decodeViews offers a decoded report and a raw structure dump of buf.
func decodeViews[T any](buf []byte, decode func([]byte) (T, error), describe func(*T, *Console)) []view {
	return []view{
		{"Decode buffer.", func(c *Console) {
			v, err := decode(buf)
			if err != nil {
				c.Println(err)
				return
			}
			describe(&v, c)
		}},
		{"Dump structure.", func(c *Console) {
			v, err := decode(buf)
			if err != nil {
				c.Println(err)
				return
			}
			spew.Fdump(c.Writer(), v)
		}},
	}
}

func (s *Session) nvmeMenu() error {
	const parent = "NVMe commands menu"

	var (
		nsid    uint32 = 1
		logID   uint8  = nvme.LOG_ERROR
		logNSID uint32 = nvme.NSID_ALL
		logLen  uint32 = nvme.SMART_LOG_LEN
	)

	cmds := []command{
		{
			name: "IDENTIFY CONTROLLER",
			send: func() outcome {
				r, err := s.nvme.Identify(nvme.CNS_CONTROLLER, 0)
				return nvmeOutcome(r, err, decodeViews(r.Buffer, nvme.DecodeController,
					func(ic *nvme.IdentController, c *Console) { ic.Describe(c.Writer()) })...)
			},
		},
		{
			name:   "IDENTIFY NAMESPACE",
			fields: []field{uintParam("Namespace", &nsid)},
			send: func() outcome {
				r, err := s.nvme.Identify(nvme.CNS_NAMESPACE, nsid)
				return nvmeOutcome(r, err, decodeViews(r.Buffer, nvme.DecodeNamespace,
					func(ns *nvme.IdentNamespace, c *Console) { ns.Describe(c.Writer(), nsid) })...)
			},
		},
		{
			name: "GET LOG PAGE (SMART / HEALTH)",
			send: func() outcome {
				r, err := s.nvme.GetLogPage(nvme.LOG_SMART, nvme.NSID_ALL, nvme.SMART_LOG_LEN)
				return nvmeOutcome(r, err, decodeViews(r.Buffer, nvme.DecodeSMARTLog,
					func(sl *nvme.SMARTLog, c *Console) { sl.Describe(c.Writer()) })...)
			},
		},
		{
			name: "GET LOG PAGE",
			fields: []field{uintParam("Log identifier", &logID), uintParam("Namespace", &logNSID),
				uintParam("Length", &logLen).clamp(nvme.MAX_LOG_LEN)},
			send: func() outcome {
				return nvmeOutcome(s.nvme.GetLogPage(logID, logNSID, int(logLen)))
			},
		},
	}

	entries := append(s.commandEntries("nvme", parent, cmds),
		entry{"Print go-nvme reference report.", s.nvmeReport})

	return s.menu("NVMe commands:", "main menu", nil, entries)
}

// nvmeReport prints the controller, namespace 1 and SMART reports of the go-nvme library, on its
// own file descriptor, to compare against the decoded admin commands.
func (s *Session) nvmeReport() error {
	d := gonvme.NewNVMeDevice(s.path)
	if err := d.Open(); err != nil {
		s.c.Println("Cannot open NVMe device:", err)
		return s.c.Pause()
	}

	w := s.c.Writer()
	d.IdentifyController(w)
	d.IdentifyNamespace(w, 1)
	d.PrintSMART(w)
	d.Close()

	return s.c.Pause()
}
