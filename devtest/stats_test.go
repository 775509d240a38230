// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package devtest

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsObserve(t *testing.T) {
	s := NewStats()

	s.Observe("spc", "INQUIRY", outcome{duration: 2 * time.Millisecond})
	s.Observe("spc", "INQUIRY", outcome{duration: time.Millisecond, failed: true})
	s.Observe("spc", "INQUIRY", outcome{err: errors.New("no such device")})

	assert.Equal(t, 1.0, testutil.ToFloat64(s.commands.WithLabelValues("spc", "INQUIRY", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.commands.WithLabelValues("spc", "INQUIRY", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.commands.WithLabelValues("spc", "INQUIRY", "error")))

	// commands that were never sent have no duration
	assert.Equal(t, 1, testutil.CollectAndCount(s.duration))

	expected := `
# HELP devtest_commands_total Device commands sent, by result.
# TYPE devtest_commands_total counter
devtest_commands_total{command="INQUIRY",family="spc",result="error"} 1
devtest_commands_total{command="INQUIRY",family="spc",result="failed"} 1
devtest_commands_total{command="INQUIRY",family="spc",result="ok"} 1
`
	require.NoError(t, testutil.CollectAndCompare(s.commands, strings.NewReader(expected)))
}

func TestStatsNil(t *testing.T) {
	var s *Stats
	assert.NotPanics(t, func() { s.Observe("spc", "INQUIRY", outcome{}) })
}

func TestStatsWriteFile(t *testing.T) {
	s := NewStats()
	s.Observe("ata28", "READ SECTORS", outcome{duration: time.Millisecond})

	var buf bytes.Buffer
	require.NoError(t, s.WriteText(&buf))
	assert.Contains(t, buf.String(), `devtest_commands_total{command="READ SECTORS",family="ata28",result="ok"} 1`)
	assert.Contains(t, buf.String(), `devtest_command_duration_seconds_count{command="READ SECTORS",family="ata28"} 1`)

	path := filepath.Join(t.TempDir(), "devtest.prom")
	require.NoError(t, s.WriteFile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(b))
}

func TestStatsMenu(t *testing.T) {
	s, _, out := newFakeSession("", nil)
	s.c = NewConsole(strings.NewReader("1\n\n0\n"), out)
	s.stats.Observe("spc", "TEST UNIT READY", outcome{})

	require.NoError(t, s.statsMenu())
	assert.Contains(t, out.String(), "Command statistics:\n1.- Print statistics.\n2.- Save statistics to file.\n")
	assert.Contains(t, out.String(), `result="ok"} 1`)
}
