// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package scsi

import (
	"path/filepath"
	"regexp"
)

// Device nodes accepting SG_IO: whole disks, optical drives, rewinding tapes and generic nodes.
var scanPatterns = []struct {
	glob string
	re   *regexp.Regexp
}{
	{"/dev/sd*", regexp.MustCompile(`^/dev/sd[a-z]+$`)},
	{"/dev/sr*", regexp.MustCompile(`^/dev/sr[0-9]+$`)},
	{"/dev/st*", regexp.MustCompile(`^/dev/st[0-9]+$`)},
	{"/dev/sg*", regexp.MustCompile(`^/dev/sg[0-9]+$`)},
}

// ScanDevices returns the device nodes that can be opened with OpenSGIO.
func ScanDevices() []string {
	var devices []string

	for _, p := range scanPatterns {
		files, err := filepath.Glob(p.glob)
		if err != nil {
			continue
		}

		for _, file := range files {
			if p.re.MatchString(file) {
				devices = append(devices, file)
			}
		}
	}

	return devices
}
