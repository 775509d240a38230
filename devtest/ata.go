// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// ATA command menus. Commands are sent through the SCSI / ATA Translation layer.

package devtest

import (
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"github.com/aaru-dps/devtest/ata"
	"github.com/aaru-dps/devtest/scsi"
)

const ataParent = "ATA commands menu"

func ataOutcome(r scsi.ATAResult, regs fmt.Stringer, err error, extra ...view) outcome {
	o := outcome{buffer: r.Buffer, failed: r.Failed, duration: r.Duration, err: err}
	if err != nil {
		return o
	}

	o.views = append(o.views,
		view{"Decode error registers.", func(c *Console) { c.Println(regs.String()) }},
		senseView(r.Sense))
	o.views = append(o.views, extra...)

	return o
}

func lba28Outcome(r scsi.LBA28Result, err error, extra ...view) outcome {
	return ataOutcome(r.ATAResult, r.Registers, err, extra...)
}

func lba48Outcome(r scsi.LBA48Result, err error, extra ...view) outcome {
	return ataOutcome(r.ATAResult, r.Registers, err, extra...)
}

func chsOutcome(r scsi.CHSResult, err error, extra ...view) outcome {
	return ataOutcome(r.ATAResult, r.Registers, err, extra...)
}

// identifyViews decode an IDENTIFY DEVICE or IDENTIFY PACKET DEVICE response.
func identifyViews(buf []byte) []view {
	return []view{
		{"Decode buffer.", func(c *Console) {
			id, err := ata.ParseIdentify(buf)
			if err != nil {
				c.Println(err)
				return
			}
			id.Describe(c.Writer())
		}},
		{"Dump structure.", func(c *Console) {
			id, err := ata.ParseIdentify(buf)
			if err != nil {
				c.Println(err)
				return
			}
			spew.Fdump(c.Writer(), id)
		}},
	}
}

func (s *Session) ataMenu() error {
	var header []string

	if err := s.sat.CheckSAT(); errors.Is(err, scsi.ErrNotSATA) {
		header = append(header, "Warning: device does not report a SCSI / ATA Translation layer.")
	}

	entries := s.commandEntries("ata", ataParent, []command{
		{
			name: "IDENTIFY DEVICE",
			send: func() outcome {
				r, err := s.sat.Identify()
				return lba28Outcome(r, err, identifyViews(r.Buffer)...)
			},
		},
		{
			name: "IDENTIFY PACKET DEVICE",
			send: func() outcome {
				r, err := s.sat.IdentifyPacket()
				return lba28Outcome(r, err, identifyViews(r.Buffer)...)
			},
		},
	})

	entries = append(entries,
		entry{"Send a 28-bit ATA command.", s.ata28Menu},
		entry{"Send a 48-bit ATA command.", s.ata48Menu},
		entry{"Send a CHS ATA command.", s.chsMenu},
		entry{"Send a CompactFlash command.", s.cfaMenu},
		entry{"Send a Media Card Pass-Through command.", s.mcptMenu},
		entry{"Send a SMART command.", s.smartMenu})

	return s.menu("ATA commands:", "main menu", header, entries)
}

func (s *Session) ata28Menu() error {
	const parent = "28-bit ATA commands menu"

	var (
		retry     bool
		lba       uint32
		count     uint8  = 1
		blockSize uint32 = 516
	)

	lbaField := uintParam("LBA", &lba).clamp(ata.MaxLBA28)

	cmds := []command{
		{
			name: "READ NATIVE MAX ADDRESS",
			send: func() outcome { return lba28Outcome(s.sat.ReadNativeMaxAddress()) },
		},
		{
			name:   "READ DMA",
			fields: []field{boolParam("Retry", &retry), lbaField, uintParam("Count", &count)},
			send:   func() outcome { return lba28Outcome(s.sat.ReadDMA(retry, lba, count)) },
		},
		{
			name:   "READ LONG",
			fields: []field{boolParam("Retry", &retry), lbaField, uintParam("Block size", &blockSize)},
			send:   func() outcome { return lba28Outcome(s.sat.ReadLong(retry, lba, blockSize)) },
		},
		{
			name:   "READ MULTIPLE",
			fields: []field{lbaField, uintParam("Count", &count)},
			send:   func() outcome { return lba28Outcome(s.sat.ReadMultiple(lba, count)) },
		},
		{
			name:   "READ SECTORS",
			fields: []field{boolParam("Retry", &retry), lbaField, uintParam("Count", &count)},
			send:   func() outcome { return lba28Outcome(s.sat.ReadSectors(retry, lba, count)) },
		},
		{
			name:   "SEEK",
			fields: []field{lbaField},
			send:   func() outcome { return lba28Outcome(s.sat.Seek(lba)) },
		},
	}

	return s.menu("28-bit ATA commands:", ataParent, nil, s.commandEntries("ata28", parent, cmds))
}

func (s *Session) ata48Menu() error {
	const parent = "48-bit ATA commands menu"

	var (
		lba   uint64
		count uint16 = 1
		log   uint8
		page  uint16
	)

	lbaField := uintParam("LBA", &lba).clamp(ata.MaxLBA48)
	logFields := []field{uintParam("Log address", &log), uintParam("Page", &page), uintParam("Count", &count)}

	cmds := []command{
		{
			name: "READ NATIVE MAX ADDRESS EXT",
			send: func() outcome { return lba48Outcome(s.sat.ReadNativeMaxAddressExt()) },
		},
		{
			name:   "READ DMA EXT",
			fields: []field{lbaField, uintParam("Count", &count)},
			send:   func() outcome { return lba48Outcome(s.sat.ReadDMAExt(lba, count)) },
		},
		{
			name:   "READ LOG EXT",
			fields: logFields,
			send:   func() outcome { return lba48Outcome(s.sat.ReadLogExt(log, page, count)) },
		},
		{
			name:   "READ LOG DMA EXT",
			fields: logFields,
			send:   func() outcome { return lba48Outcome(s.sat.ReadLogDMAExt(log, page, count)) },
		},
		{
			name:   "READ MULTIPLE EXT",
			fields: []field{lbaField, uintParam("Count", &count)},
			send:   func() outcome { return lba48Outcome(s.sat.ReadMultipleExt(lba, count)) },
		},
		{
			name:   "READ SECTORS EXT",
			fields: []field{lbaField, uintParam("Count", &count)},
			send:   func() outcome { return lba48Outcome(s.sat.ReadSectorsExt(lba, count)) },
		},
	}

	return s.menu("48-bit ATA commands:", ataParent, nil, s.commandEntries("ata48", parent, cmds))
}

// chsParams holds the address fields shared by the CHS commands.
type chsParams struct {
	cylinder     uint16
	head, sector uint8
}

func (p *chsParams) fields() []field {
	return []field{
		uintParam("Cylinder", &p.cylinder),
		uintParam("Head", &p.head).clamp(ata.MaxHead),
		uintParam("Sector", &p.sector),
	}
}

func (s *Session) chsMenu() error {
	const parent = "CHS ATA commands menu"

	var (
		retry     bool
		count     uint8  = 1
		blockSize uint32 = 516
		feature   uint8
	)

	p := chsParams{sector: 1}

	cmds := []command{
		{
			name: "IDENTIFY DEVICE",
			send: func() outcome {
				r, err := s.sat.IdentifyCHS()
				return chsOutcome(r, err, identifyViews(r.Buffer)...)
			},
		},
		{
			name:   "READ DMA",
			fields: append([]field{boolParam("Retry", &retry)}, append(p.fields(), uintParam("Count", &count))...),
			send: func() outcome {
				return chsOutcome(s.sat.ReadDMACHS(retry, p.cylinder, p.head, p.sector, count))
			},
		},
		{
			name:   "READ LONG",
			fields: append([]field{boolParam("Retry", &retry)}, append(p.fields(), uintParam("Block size", &blockSize))...),
			send: func() outcome {
				return chsOutcome(s.sat.ReadLongCHS(retry, p.cylinder, p.head, p.sector, blockSize))
			},
		},
		{
			name:   "READ MULTIPLE",
			fields: append(p.fields(), uintParam("Count", &count)),
			send: func() outcome {
				return chsOutcome(s.sat.ReadMultipleCHS(p.cylinder, p.head, p.sector, count))
			},
		},
		{
			name:   "READ SECTORS",
			fields: append([]field{boolParam("Retry", &retry)}, append(p.fields(), uintParam("Count", &count))...),
			send: func() outcome {
				return chsOutcome(s.sat.ReadSectorsCHS(retry, p.cylinder, p.head, p.sector, count))
			},
		},
		{
			name:   "SEEK",
			fields: p.fields(),
			send:   func() outcome { return chsOutcome(s.sat.SeekCHS(p.cylinder, p.head, p.sector)) },
		},
		{
			name:   "SET FEATURES",
			fields: append([]field{uintParam("Feature", &feature), uintParam("Count", &count)}, p.fields()...),
			send: func() outcome {
				return chsOutcome(s.sat.SetFeatures(feature, count, p.cylinder, p.head, p.sector))
			},
		},
	}

	return s.menu("CHS ATA commands:", ataParent, nil, s.commandEntries("chs", parent, cmds))
}

func (s *Session) cfaMenu() error {
	const parent = "CompactFlash commands menu"

	var (
		lba     uint32
		feature uint8
	)

	p := chsParams{sector: 1}

	cmds := []command{
		{
			name: "REQUEST EXTENDED ERROR CODE",
			send: func() outcome { return lba28Outcome(s.sat.CFARequestExtendedErrorCode()) },
		},
		{
			name:   "TRANSLATE SECTOR (LBA)",
			fields: []field{uintParam("LBA", &lba).clamp(ata.MaxLBA28)},
			send:   func() outcome { return lba28Outcome(s.sat.CFATranslateSector(lba)) },
		},
		{
			name:   "TRANSLATE SECTOR (CHS)",
			fields: p.fields(),
			send: func() outcome {
				return chsOutcome(s.sat.CFATranslateSectorCHS(p.cylinder, p.head, p.sector))
			},
		},
		{
			name:   "CHECK MEDIA CARD TYPE",
			fields: []field{uintParam("Feature", &feature)},
			send:   func() outcome { return lba28Outcome(s.sat.CFACheckMediaCardType(feature)) },
		},
	}

	return s.menu("CompactFlash commands:", ataParent, nil, s.commandEntries("cfa", parent, cmds))
}

func (s *Session) mcptMenu() error {
	const parent = "Media Card Pass-Through commands menu"

	var feature uint8

	cmds := []command{
		{
			name:   "CHECK MEDIA CARD TYPE",
			fields: []field{uintParam("Feature", &feature)},
			send:   func() outcome { return lba28Outcome(s.sat.CheckMediaCardType(feature)) },
		},
	}

	return s.menu("Media Card Pass-Through commands:", ataParent, nil, s.commandEntries("mcpt", parent, cmds))
}

func (s *Session) smartMenu() error {
	const parent = "SMART commands menu"

	var (
		log        uint8
		subcommand uint8
	)

	cmds := []command{
		{
			name: "SMART READ DATA",
			send: func() outcome {
				r, err := s.sat.SMARTReadData()
				return lba28Outcome(r, err, view{"Decode buffer.", func(c *Console) {
					d, err := ata.ParseSMARTData(r.Buffer)
					if err != nil {
						c.Println(err)
						return
					}
					ata.PrintSMARTPage(d.SmartPage, s.driveModel(), c.Writer())
					c.Printf("Off-line data collection status: %#02x\n", d.OfflineStatus)
					c.Printf("Self-test execution status: %#02x\n", d.SelfTestStatus)
				}})
			},
		},
		{
			name:   "SMART READ LOG",
			fields: []field{uintParam("Log address", &log)},
			send:   func() outcome { return lba28Outcome(s.sat.SMARTReadLog(log)) },
		},
		{
			name: "SMART RETURN STATUS",
			send: func() outcome {
				r, err := s.sat.SMARTReturnStatus()
				return lba28Outcome(r, err, view{"Decode status.", func(c *Console) {
					switch exceeded, valid := ata.SMARTStatus(r.Registers); {
					case !valid:
						c.Println("Device did not return a SMART status signature.")
					case exceeded:
						c.Println("SMART status: threshold exceeded, drive failure predicted.")
					default:
						c.Println("SMART status: OK.")
					}
				}})
			},
		},
		{
			name: "SMART ENABLE OPERATIONS",
			send: func() outcome { return lba28Outcome(s.sat.SMARTEnableOperations()) },
		},
		{
			name: "SMART DISABLE OPERATIONS",
			send: func() outcome { return lba28Outcome(s.sat.SMARTDisableOperations()) },
		},
		{
			name: "SMART ENABLE ATTRIBUTE AUTOSAVE",
			send: func() outcome { return lba28Outcome(s.sat.SMARTEnableAttributeAutosave()) },
		},
		{
			name: "SMART DISABLE ATTRIBUTE AUTOSAVE",
			send: func() outcome { return lba28Outcome(s.sat.SMARTDisableAttributeAutosave()) },
		},
		{
			name:   "SMART EXECUTE OFF-LINE IMMEDIATE",
			fields: []field{uintParam("Subcommand", &subcommand)},
			send:   func() outcome { return lba28Outcome(s.sat.SMARTExecuteOfflineImmediate(subcommand)) },
		},
	}

	return s.menu("SMART commands:", ataParent, nil, s.commandEntries("smart", parent, cmds))
}
