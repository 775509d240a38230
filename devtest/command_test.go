// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package devtest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCommand(t *testing.T) {
	s, _, out := newFakeSession("", nil)
	// change parameters, send, print buffer, show the extra view, send again, return
	s.c = NewConsole(strings.NewReader("1\n5\n2\n1\n\n2\n\n3\n0\n"), out)

	var (
		count uint8 = 1
		sent  []uint8
	)

	cmd := command{
		name:   "FROB",
		fields: []field{uintParam("Count", &count)},
		send: func() outcome {
			sent = append(sent, count)
			return outcome{buffer: []byte{0xde, 0xad, 0xbe, 0xef}, duration: time.Millisecond,
				views: []view{{"Frobnicate.", func(c *Console) { c.Println("frobnicated") }}}}
		},
	}

	require.NoError(t, s.runCommand("test", "test menu", cmd))

	assert.Equal(t, []uint8{5, 5}, sent)
	assert.Contains(t, out.String(), "Parameters for FROB command:\n1.- Change parameters.\n2.- Send command.\n0.- Return to test menu.\n")
	assert.Contains(t, out.String(), "Count: 5\n")
	assert.Contains(t, out.String(), "FROB took 1ms.\nSense is false.\nBuffer is 4 bytes.\n")
	assert.Contains(t, out.String(), "FROB results:\n1.- Print buffer.\n2.- Frobnicate.\n3.- Send command again.\n4.- Change parameters.\n")
	assert.Contains(t, out.String(), "frobnicated\n")
	assert.Contains(t, out.String(), "de ad be ef")
	assert.Equal(t, 2.0, testutil.ToFloat64(s.stats.commands.WithLabelValues("test", "FROB", "ok")))
}

func TestRunCommandWithoutFields(t *testing.T) {
	s, _, out := newFakeSession("", nil)
	s.c = NewConsole(strings.NewReader("1\n\n0\n"), out)

	cmd := command{
		name: "NOP",
		send: func() outcome { return outcome{failed: true, err: errors.New("device gone")} },
	}

	require.NoError(t, s.runCommand("test", "test menu", cmd))

	assert.NotContains(t, out.String(), "Parameters for NOP command:")
	assert.Contains(t, out.String(), "Sense is true.\nBuffer is null.\nError: device gone\n")
	assert.Contains(t, out.String(), "NOP results:\n1.- Print buffer.\n2.- Send command again.\n0.- Return to test menu.\n")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.stats.commands.WithLabelValues("test", "NOP", "error")))
}

func TestRunCommandChangeParameters(t *testing.T) {
	s, _, out := newFakeSession("", nil)
	// send, then change parameters from the results screen, send again, return twice
	s.c = NewConsole(strings.NewReader("2\n3\n9\n2\n0\n"), out)

	var (
		count uint8 = 1
		sent  []uint8
	)

	cmd := command{
		name:   "FROB",
		fields: []field{uintParam("Count", &count)},
		send: func() outcome {
			sent = append(sent, count)
			return outcome{}
		},
	}

	require.NoError(t, s.runCommand("test", "test menu", cmd))
	assert.Equal(t, []uint8{1, 9}, sent)
	assert.Contains(t, out.String(), "Count: 9\n")
}
