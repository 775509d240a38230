// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package ioctl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIoctlNumbers(t *testing.T) {
	assert := assert.New(t)

	// NVME_IOCTL_ADMIN_CMD, 72 byte nvme_passthru_cmd
	assert.Equal(uintptr(0xc0484e41), Iowr('N', 0x41, 72))
	// MEGASAS_IOC_FIRMWARE, 404 byte megasas_iocpacket
	assert.Equal(uintptr(0xc1944d01), Iowr('M', 1, 404))
	// BLKGETSIZE64
	assert.Equal(uintptr(0x80081272), Ior(0x12, 114, 8))
	// BLKFLSBUF
	assert.Equal(uintptr(0x1261), Io(0x12, 97))
	assert.Equal(uintptr(0x40041234), Iow(0x12, 0x34, 4))
}
