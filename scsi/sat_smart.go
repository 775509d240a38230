// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// ATA SMART commands.

package scsi

import "github.com/aaru-dps/devtest/ata"

/*
 * Every SMART command is command code B0h, with the subcommand in the feature register and the
 * signature 4Fh / C2h in the LBA mid / high registers.
 */
func smartTaskfile(feature, count, lbaLow uint8) ata.Taskfile {
	return ata.Taskfile{
		Feature: uint16(feature),
		Count:   uint16(count),
		LBALow:  uint16(lbaLow),
		LBAMid:  ata.SMART_LBA_MID,
		LBAHigh: ata.SMART_LBA_HIGH,
		Command: ata.ATA_SMART,
	}
}

func (d *SATDevice) SMARTReadData() (LBA28Result, error) {
	return d.lba28(smartTaskfile(ata.SMART_READ_DATA, 1, 0), SAT_PROTO_PIO_IN, ata.SECTOR_SIZE)
}

// SMARTReadLog reads one sector of the given SMART log.
func (d *SATDevice) SMARTReadLog(log uint8) (LBA28Result, error) {
	return d.lba28(smartTaskfile(ata.SMART_READ_LOG, 1, log), SAT_PROTO_PIO_IN, ata.SECTOR_SIZE)
}

// SMARTReturnStatus reports the device reliability status in the LBA mid / high registers, see
// ata.SMARTStatus.
func (d *SATDevice) SMARTReturnStatus() (LBA28Result, error) {
	return d.lba28(smartTaskfile(ata.SMART_RETURN_STATUS, 0, 0), SAT_PROTO_NON_DATA, 0)
}

func (d *SATDevice) SMARTEnableOperations() (LBA28Result, error) {
	return d.lba28(smartTaskfile(ata.SMART_ENABLE_OPERATIONS, 0, 0), SAT_PROTO_NON_DATA, 0)
}

func (d *SATDevice) SMARTDisableOperations() (LBA28Result, error) {
	return d.lba28(smartTaskfile(ata.SMART_DISABLE_OPERATIONS, 0, 0), SAT_PROTO_NON_DATA, 0)
}

func (d *SATDevice) SMARTEnableAttributeAutosave() (LBA28Result, error) {
	tf := smartTaskfile(ata.SMART_ATTRIBUTE_AUTOSAVE, ata.SMART_AUTOSAVE_ENABLE, 0)
	return d.lba28(tf, SAT_PROTO_NON_DATA, 0)
}

func (d *SATDevice) SMARTDisableAttributeAutosave() (LBA28Result, error) {
	tf := smartTaskfile(ata.SMART_ATTRIBUTE_AUTOSAVE, ata.SMART_AUTOSAVE_DISABLE, 0)
	return d.lba28(tf, SAT_PROTO_NON_DATA, 0)
}

// SMARTExecuteOfflineImmediate starts the off-line routine or self-test named by subcommand.
func (d *SATDevice) SMARTExecuteOfflineImmediate(subcommand uint8) (LBA28Result, error) {
	return d.lba28(smartTaskfile(ata.SMART_EXECUTE_OFFLINE_IMMEDIATE, 0, subcommand), SAT_PROTO_NON_DATA, 0)
}
