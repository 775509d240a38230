// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package drivedb

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDrivedbH = `/*
 * drivedb.h - smartmontools drive database file
 */
const drive_settings builtin_knowndrives[] = {
  { "$Id: drivedb.h 5000 2020-01-01 00:00:00Z $",
    "-", "-",
    "Version information",
    ""
  },
  { "DEFAULT",
    "-", "",
    "Default settings",
    "-v 1,raw48,Raw_Read_Error_Rate "
    "-v 9,raw24(raw8),Power_On_Hours "
    "-v 194,tempminmax,Temperature_Celsius"
  },
  { "Seagate Barracuda 7200.14 (AF)", // tested with ST1000DM003
    "ST(1000|2000|3000)DM00[13]-.*",
    "",
    "",
    "-v 1,raw48:54 "
    "-v 9,msec24hour32"
  },
};
`

func TestParseDrivedbH(t *testing.T) {
	header, drives := ParseDrivedbH(strings.NewReader(sampleDrivedbH))

	assert.Contains(t, header, "# drivedb.h - smartmontools drive database file")
	require.Len(t, drives, 3)

	assert.Equal(t, "DEFAULT", drives[1].Family)
	assert.Equal(t, AttrConv{Conv: "tempminmax", Name: "Temperature_Celsius"}, drives[1].Presets["194"])
	assert.Equal(t, AttrConv{Conv: "raw24(raw8)", Name: "Power_On_Hours"}, drives[1].Presets["9"])

	assert.Equal(t, "Seagate Barracuda 7200.14 (AF)", drives[2].Family)
	assert.Equal(t, "ST(1000|2000|3000)DM00[13]-.*", drives[2].ModelRegex)
	assert.Equal(t, AttrConv{Conv: "msec24hour32"}, drives[2].Presets["9"])
}

func TestSaveLoadLookup(t *testing.T) {
	header, drives := ParseDrivedbH(strings.NewReader(sampleDrivedbH))
	db := DriveDb{Drives: drives}

	var buf bytes.Buffer
	require.NoError(t, db.Save(&buf, header))
	assert.True(t, strings.HasPrefix(buf.String(), "# This file was generated from:\n"))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	require.Len(t, loaded.Drives, 3)

	m := loaded.LookupDrive([]byte("ST1000DM003-1CH162                      "))
	assert.Equal(t, "Seagate Barracuda 7200.14 (AF)", m.Family)
	// conv overridden, name inherited from DEFAULT
	assert.Equal(t, AttrConv{Conv: "msec24hour32", Name: "Power_On_Hours"}, m.Presets["9"])
	assert.Equal(t, "Temperature_Celsius", m.Presets["194"].Name)

	m = loaded.LookupDrive([]byte("WDC WD10EZEX-08WN4A0"))
	assert.Equal(t, "DEFAULT", m.Family)
	assert.Equal(t, "raw24(raw8)", m.Presets["9"].Conv)
}

func TestLookupEmpty(t *testing.T) {
	var db DriveDb

	m := db.LookupDrive([]byte("anything"))
	assert.Equal(t, "", m.Family)
	assert.NotNil(t, m.Presets)
}

func TestLoadBadRegexp(t *testing.T) {
	db, err := Load(strings.NewReader("drives:\n- family: broken\n  model_regex: \"(\"\n"))
	require.NoError(t, err)
	require.Len(t, db.Drives, 1)
	assert.Nil(t, db.Drives[0].CompiledRegexp)
	assert.Equal(t, "", db.LookupDrive([]byte("(")).Family)
}
