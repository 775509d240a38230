// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// SCSI command menus.

package devtest

import (
	"bytes"
	"encoding/binary"

	"github.com/davecgh/go-spew/spew"

	"github.com/aaru-dps/devtest/scsi"
)

const scsiParent = "SCSI commands menu"

func scsiOutcome(r scsi.Result, err error, extra ...view) outcome {
	o := outcome{buffer: r.Buffer, failed: r.Failed, duration: r.Duration, err: err}
	if err != nil {
		return o
	}

	o.views = append([]view{senseView(r.Sense)}, extra...)

	return o
}

func inquiryViews(buf []byte) []view {
	decode := func(c *Console) (scsi.InquiryResponse, bool) {
		var inq scsi.InquiryResponse
		if err := binary.Read(bytes.NewReader(buf), binary.BigEndian, &inq); err != nil {
			c.Println("Buffer is too short for standard INQUIRY data.")
			return inq, false
		}
		return inq, true
	}

	return []view{
		{"Decode buffer.", func(c *Console) {
			if inq, ok := decode(c); ok {
				c.Println(inq.String())
				c.Println("Peripheral device type:", inq.DeviceTypeName())
			}
		}},
		{"Dump structure.", func(c *Console) {
			if inq, ok := decode(c); ok {
				spew.Fdump(c.Writer(), inq)
			}
		}},
	}
}

func capacityView(buf []byte, decode func([]byte) (scsi.Capacity, error)) view {
	return view{"Decode buffer.", func(c *Console) {
		capacity, err := decode(buf)
		if err != nil {
			c.Println(err)
			return
		}
		c.Println(capacity.String())
	}}
}

func (s *Session) scsiMenu() error {
	return s.menu("SCSI commands:", "main menu", nil, []entry{
		{"Send a SCSI Primary Command (SPC).", s.spcMenu},
		{"Send a SCSI Block Command (SBC).", s.sbcMenu},
		{"Send a SCSI Stream Command (SSC).", s.sscMenu},
		{"Send a Multi-Media Command (MMC).", s.mmcMenu},
		{"Send an Adaptec vendor command.", s.adaptecMenu},
		{"Send an HL-DT-ST vendor command.", s.hldtstMenu},
		{"Send a Plextor vendor command.", s.plextorMenu},
	})
}

func (s *Session) spcMenu() error {
	const parent = "SCSI Primary Commands menu"

	var (
		evpd, descriptor, dbd, llbaa, ppc, sp bool
		prevent, selectReport                 uint8
		inqPage                               uint8
		inqAlloc                              uint16 = scsi.INQ_REPLY_LEN
		modePage, modeSubpage, modeControl    uint8
		mode6Alloc                            uint8  = 0xff
		mode10Alloc                           uint16 = scsi.DEFAULT_ALLOCATION_LEN
		logPage, logSubpage, logControl       uint8
		paramPtr                              uint16
		logAlloc                              uint16 = scsi.DEFAULT_ALLOCATION_LEN
		lunsAlloc, serialAlloc                uint32 = scsi.DEFAULT_ALLOCATION_LEN, scsi.DEFAULT_ALLOCATION_LEN
	)

	// MODE SENSE (6) and (10) share the page selection, every other command keeps its own.
	modeFields := func(alloc field) []field {
		return []field{uintParam("Page control", &modeControl).clamp(3), uintParam("Page", &modePage).clamp(0x3f),
			uintParam("Subpage", &modeSubpage), alloc}
	}

	cmds := []command{
		{
			name:   "INQUIRY",
			fields: []field{boolParam("EVPD", &evpd), uintParam("Page", &inqPage), uintParam("Allocation length", &inqAlloc)},
			send: func() outcome {
				r, err := s.dev.InquiryRaw(evpd, inqPage, inqAlloc)
				if evpd {
					return scsiOutcome(r, err)
				}
				return scsiOutcome(r, err, inquiryViews(r.Buffer)...)
			},
		},
		{
			name: "TEST UNIT READY",
			send: func() outcome { return scsiOutcome(s.dev.TestUnitReady()) },
		},
		{
			name:   "REQUEST SENSE",
			fields: []field{boolParam("Descriptor format", &descriptor)},
			send: func() outcome {
				r, err := s.dev.RequestSense(descriptor)
				return scsiOutcome(r, err, senseView(r.Buffer))
			},
		},
		{
			name:   "MODE SENSE (6)",
			fields: append([]field{boolParam("DBD", &dbd)}, modeFields(uintParam("Allocation length", &mode6Alloc))...),
			send: func() outcome {
				return scsiOutcome(s.dev.ModeSense6(dbd, modeControl, modePage, modeSubpage, mode6Alloc))
			},
		},
		{
			name: "MODE SENSE (10)",
			fields: append([]field{boolParam("LLBAA", &llbaa), boolParam("DBD", &dbd)},
				modeFields(uintParam("Allocation length", &mode10Alloc))...),
			send: func() outcome {
				return scsiOutcome(s.dev.ModeSense10(llbaa, dbd, modeControl, modePage, modeSubpage, mode10Alloc))
			},
		},
		{
			name: "LOG SENSE",
			fields: []field{boolParam("PPC", &ppc), boolParam("SP", &sp), uintParam("Page control", &logControl).clamp(3),
				uintParam("Page", &logPage).clamp(0x3f), uintParam("Subpage", &logSubpage),
				uintParam("Parameter pointer", &paramPtr), uintParam("Allocation length", &logAlloc)},
			send: func() outcome {
				return scsiOutcome(s.dev.LogSense(ppc, sp, logControl, logPage, logSubpage, paramPtr, logAlloc))
			},
		},
		{
			name:   "PREVENT ALLOW MEDIUM REMOVAL",
			fields: []field{uintParam("Prevent", &prevent).clamp(3)},
			send:   func() outcome { return scsiOutcome(s.dev.PreventAllowMediumRemoval(prevent)) },
		},
		{
			name: "READ CAPACITY (10)",
			send: func() outcome {
				r, err := s.dev.ReadCapacity10()
				return scsiOutcome(r, err, capacityView(r.Buffer, scsi.DecodeReadCapacity10))
			},
		},
		{
			name: "READ CAPACITY (16)",
			send: func() outcome {
				r, err := s.dev.ReadCapacity16()
				return scsiOutcome(r, err, capacityView(r.Buffer, scsi.DecodeReadCapacity16))
			},
		},
		{
			name:   "REPORT LUNS",
			fields: []field{uintParam("Select report", &selectReport), uintParam("Allocation length", &lunsAlloc)},
			send:   func() outcome { return scsiOutcome(s.dev.ReportLUNs(selectReport, lunsAlloc)) },
		},
		{
			name:   "READ MEDIA SERIAL NUMBER",
			fields: []field{uintParam("Allocation length", &serialAlloc)},
			send:   func() outcome { return scsiOutcome(s.dev.ReadMediaSerialNumber(serialAlloc)) },
		},
	}

	return s.menu("SCSI Primary Commands:", scsiParent, nil, s.commandEntries("spc", parent, cmds))
}

func readFlagFields(f *scsi.ReadFlags) []field {
	return []field{
		boolParam("DPO", &f.DPO),
		boolParam("FUA", &f.FUA),
		boolParam("FUA_NV", &f.FUANV),
		boolParam("RelAddr", &f.RelAddr),
		boolParam("Streaming", &f.Streaming),
	}
}

func (s *Session) sbcMenu() error {
	const parent = "SCSI Block Commands menu"

	var (
		flags           scsi.ReadFlags
		lba             uint32
		lba64           uint64
		count8          uint8  = 1
		count16         uint16 = 1
		count32         uint32 = 1
		blockSize       uint32 = 512
		correct, pblock bool
		transferBytes   uint16 = 516
	)

	lba6 := uintParam("LBA", &lba).clamp(scsi.MaxLBA6)
	longFields := func(lbaField field) []field {
		return []field{boolParam("Correct", &correct), boolParam("PBLOCK", &pblock), lbaField,
			uintParam("Transfer length", &transferBytes)}
	}

	cmds := []command{
		{
			name:   "READ (6)",
			fields: []field{lba6, uintParam("Count", &count8), uintParam("Block size", &blockSize)},
			send:   func() outcome { return scsiOutcome(s.dev.Read6(lba, count8, blockSize)) },
		},
		{
			name: "READ (10)",
			fields: append(readFlagFields(&flags),
				uintParam("LBA", &lba), uintParam("Count", &count16), uintParam("Block size", &blockSize)),
			send: func() outcome { return scsiOutcome(s.dev.Read10(flags, lba, count16, blockSize)) },
		},
		{
			name: "READ (12)",
			fields: append(readFlagFields(&flags),
				uintParam("LBA", &lba), uintParam("Count", &count32), uintParam("Block size", &blockSize)),
			send: func() outcome { return scsiOutcome(s.dev.Read12(flags, lba, count32, blockSize)) },
		},
		{
			name: "READ (16)",
			fields: append(readFlagFields(&flags),
				uintParam("LBA", &lba64), uintParam("Count", &count32), uintParam("Block size", &blockSize)),
			send: func() outcome { return scsiOutcome(s.dev.Read16(flags, lba64, count32, blockSize)) },
		},
		{
			name:   "READ LONG (10)",
			fields: longFields(uintParam("LBA", &lba)),
			send: func() outcome {
				return scsiOutcome(s.dev.ReadLong10(correct, pblock, lba, transferBytes))
			},
		},
		{
			name:   "READ LONG (16)",
			fields: longFields(uintParam("LBA", &lba64)),
			send: func() outcome {
				return scsiOutcome(s.dev.ReadLong16(correct, pblock, lba64, transferBytes))
			},
		},
		{
			name:   "SEEK (6)",
			fields: []field{lba6},
			send:   func() outcome { return scsiOutcome(s.dev.Seek6(lba)) },
		},
		{
			name:   "SEEK (10)",
			fields: []field{uintParam("LBA", &lba)},
			send:   func() outcome { return scsiOutcome(s.dev.Seek10(lba)) },
		},
	}

	return s.menu("SCSI Block Commands:", scsiParent, nil, s.commandEntries("sbc", parent, cmds))
}

func (s *Session) sscMenu() error {
	const parent = "SCSI Stream Commands menu"

	var (
		immed, sili, fixed, hold, eot, reten, load, bt, cp, medium, mediumType bool
		length, blockSize, block                                               uint32
		partition, destType, action, code                                      uint8
		object                                                                 uint64
		alloc                                                                  uint16 = 0xff
		spaceCount                                                             int32
	)

	cmds := []command{
		{
			name:   "REWIND",
			fields: []field{boolParam("Immediate", &immed)},
			send:   func() outcome { return scsiOutcome(s.dev.Rewind(immed)) },
		},
		{
			name: "READ BLOCK LIMITS",
			send: func() outcome {
				r, err := s.dev.ReadBlockLimits()
				return scsiOutcome(r, err, view{"Decode buffer.", func(c *Console) {
					if bl, ok := scsi.DecodeBlockLimits(r.Buffer); ok {
						c.Printf("Granularity: %d, maximum block length: %d, minimum block length: %d\n",
							bl.Granularity, bl.MaxLength, bl.MinLength)
					} else {
						c.Println("Buffer is too short for READ BLOCK LIMITS data.")
					}
				}})
			},
		},
		{
			name: "READ (6)",
			fields: []field{boolParam("SILI", &sili), boolParam("Fixed", &fixed),
				uintParam("Length", &length).clamp(scsi.MaxLength24), uintParam("Block size", &blockSize)},
			send: func() outcome { return scsiOutcome(s.dev.SSCRead6(sili, fixed, length, blockSize)) },
		},
		{
			name: "LOAD UNLOAD",
			fields: []field{boolParam("Immediate", &immed), boolParam("Hold", &hold), boolParam("End of tape", &eot),
				boolParam("Retension", &reten), boolParam("Load", &load)},
			send: func() outcome { return scsiOutcome(s.dev.LoadUnload(immed, hold, eot, reten, load)) },
		},
		{
			name: "LOCATE (10)",
			fields: []field{boolParam("Block address type", &bt), boolParam("Change partition", &cp),
				boolParam("Immediate", &immed), uintParam("Partition", &partition), uintParam("Block", &block)},
			send: func() outcome { return scsiOutcome(s.dev.Locate10(bt, cp, immed, partition, block)) },
		},
		{
			name: "LOCATE (16)",
			fields: []field{uintParam("Destination type", &destType).clamp(7), boolParam("Change partition", &cp),
				boolParam("Immediate", &immed), uintParam("Partition", &partition), uintParam("Logical object", &object)},
			send: func() outcome {
				return scsiOutcome(s.dev.Locate16(destType, cp, immed, partition, object))
			},
		},
		{
			name:   "READ POSITION",
			fields: []field{uintParam("Service action", &action).clamp(0x1f), uintParam("Allocation length", &alloc)},
			send:   func() outcome { return scsiOutcome(s.dev.ReadPosition(action, alloc)) },
		},
		{
			name: "SPACE",
			fields: []field{uintParam("Code", &code).clamp(scsi.SPACE_SEQ_SETMARKS),
				intParam("Count", &spaceCount, -0x800000, 0x7fffff)},
			send: func() outcome { return scsiOutcome(s.dev.Space(code, spaceCount)) },
		},
		{
			name: "REPORT DENSITY SUPPORT",
			fields: []field{boolParam("Current medium", &medium), boolParam("Medium type", &mediumType),
				uintParam("Allocation length", &alloc)},
			send: func() outcome {
				return scsiOutcome(s.dev.ReportDensitySupport(medium, mediumType, alloc))
			},
		},
	}

	return s.menu("SCSI Stream Commands:", scsiParent, nil, s.commandEntries("ssc", parent, cmds))
}

func readCDFields(o *scsi.ReadCDOptions) []field {
	return []field{
		uintParam("Expected sector type", &o.SectorType).clamp(7),
		boolParam("DAP", &o.DAP),
		boolParam("Sync", &o.Sync),
		uintParam("Headers", &o.Headers).clamp(3),
		boolParam("User data", &o.UserData),
		boolParam("EDC / ECC", &o.EDC),
		uintParam("C2 pointers", &o.C2).clamp(2),
		uintParam("Subchannel", &o.Subchannel).clamp(4),
	}
}

func msfFields(label string, m *scsi.MSF) []field {
	return []field{
		uintParam(label+" minute", &m.M),
		uintParam(label+" second", &m.S).clamp(59),
		uintParam(label+" frame", &m.F).clamp(74),
	}
}

func (s *Session) mmcMenu() error {
	const parent = "Multi-Media Commands menu"

	var (
		rt, format, track, dataType uint8
		msf                         bool
		start                       uint16
		alloc                       uint16 = 0xfffe
		lba                         uint32
		count                       uint32 = 1
		blockSize                   uint32 = 2352
		opts                               = scsi.ReadCDOptions{Sync: true, Headers: 3, UserData: true, EDC: true}
		msfStart                           = scsi.MSF{S: 2}
		msfEnd                             = scsi.MSF{S: 2, F: 1}
	)

	cmds := []command{
		{
			name: "GET CONFIGURATION",
			fields: []field{uintParam("RT", &rt).clamp(3), uintParam("Starting feature", &start),
				uintParam("Allocation length", &alloc)},
			send: func() outcome { return scsiOutcome(s.dev.GetConfiguration(rt, start, alloc)) },
		},
		{
			name: "READ TOC/PMA/ATIP",
			fields: []field{boolParam("MSF", &msf), uintParam("Format", &format).clamp(0x0f),
				uintParam("Track / session", &track), uintParam("Allocation length", &alloc)},
			send: func() outcome { return scsiOutcome(s.dev.ReadTOC(msf, format, track, alloc)) },
		},
		{
			name:   "READ DISC INFORMATION",
			fields: []field{uintParam("Data type", &dataType).clamp(7), uintParam("Allocation length", &alloc)},
			send:   func() outcome { return scsiOutcome(s.dev.ReadDiscInformation(dataType, alloc)) },
		},
		{
			name: "READ CD",
			fields: append([]field{uintParam("LBA", &lba), uintParam("Count", &count).clamp(scsi.MaxLength24),
				uintParam("Block size", &blockSize)}, readCDFields(&opts)...),
			send: func() outcome { return scsiOutcome(s.dev.ReadCD(lba, count, blockSize, opts)) },
		},
		{
			name: "READ CD MSF",
			fields: append(append(msfFields("Start", &msfStart), msfFields("End", &msfEnd)...),
				append([]field{uintParam("Block size", &blockSize)}, readCDFields(&opts)...)...),
			send: func() outcome { return scsiOutcome(s.dev.ReadCDMSF(msfStart, msfEnd, blockSize, opts)) },
		},
	}

	return s.menu("Multi-Media Commands:", scsiParent, nil, s.commandEntries("mmc", parent, cmds))
}

func (s *Session) adaptecMenu() error {
	const parent = "Adaptec vendor commands menu"

	var (
		drive1, reset bool
		lba           uint32
	)

	cmds := []command{
		{
			name:   "TRANSLATE",
			fields: []field{boolParam("Drive 1", &drive1), uintParam("LBA", &lba).clamp(scsi.MaxLBA6)},
			send:   func() outcome { return scsiOutcome(s.dev.AdaptecTranslate(drive1, lba)) },
		},
		{
			name:   "READ / RESET USAGE COUNTER",
			fields: []field{boolParam("Drive 1", &drive1), boolParam("Reset", &reset)},
			send:   func() outcome { return scsiOutcome(s.dev.AdaptecReadUsageCounter(drive1, reset)) },
		},
	}

	return s.menu("Adaptec vendor commands:", scsiParent, nil, s.commandEntries("adaptec", parent, cmds))
}

func (s *Session) hldtstMenu() error {
	const parent = "HL-DT-ST vendor commands menu"

	var (
		lba   uint32
		count uint16 = 1
	)

	cmds := []command{
		{
			name:   "READ DVD (RAW)",
			fields: []field{uintParam("LBA", &lba), uintParam("Count", &count)},
			send:   func() outcome { return scsiOutcome(s.dev.HLDTSTReadRawDVD(lba, count)) },
		},
	}

	return s.menu("HL-DT-ST vendor commands:", scsiParent, nil, s.commandEntries("hldtst", parent, cmds))
}

func (s *Session) plextorMenu() error {
	const parent = "Plextor vendor commands menu"

	var (
		lba        uint32
		count      uint32 = 1
		subchannel uint8
		kind       uint8
	)

	cmds := []command{
		{
			name: "READ CD-DA",
			fields: []field{uintParam("LBA", &lba), uintParam("Count", &count),
				uintParam("Subchannel", &subchannel).clamp(scsi.PLEXTOR_SUBCHANNEL_ONLY)},
			send: func() outcome { return scsiOutcome(s.dev.PlextorReadCDDA(lba, count, subchannel)) },
		},
		{
			name:   "READ EEPROM",
			fields: []field{uintParam("EEPROM kind (0 CD-R, 1 PX-708)", &kind).clamp(scsi.PLEXTOR_EEPROM_PX708)},
			send:   func() outcome { return scsiOutcome(s.dev.PlextorReadEEPROM(kind)) },
		},
	}

	return s.menu("Plextor vendor commands:", scsiParent, nil, s.commandEntries("plextor", parent, cmds))
}
