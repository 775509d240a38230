// Copyright 2017-18 Daniel Swarbrick. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Implementation of Linux kernel ioctl macros (<uapi/asm-generic/ioctl.h>).
// See https://www.kernel.org/doc/Documentation/ioctl/ioctl-number.txt
package ioctl

import "golang.org/x/sys/unix"

const (
	iocNrBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14
	iocDirBits  = 2

	iocNrShift   = 0
	iocTypeShift = iocNrShift + iocNrBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocNone  = 0
	iocWrite = 1
	iocRead  = 2
)

func ioc(dir, t, nr, size uintptr) uintptr {
	return (dir << iocDirShift) | (t << iocTypeShift) | (nr << iocNrShift) | (size << iocSizeShift)
}

// Io is equivalent to the _IO macro.
func Io(t, nr uintptr) uintptr {
	return ioc(iocNone, t, nr, 0)
}

// Ior is equivalent to the _IOR macro.
func Ior(t, nr, size uintptr) uintptr {
	return ioc(iocRead, t, nr, size)
}

// Iow is equivalent to the _IOW macro.
func Iow(t, nr, size uintptr) uintptr {
	return ioc(iocWrite, t, nr, size)
}

// Iowr is equivalent to the _IOWR macro.
func Iowr(t, nr, size uintptr) uintptr {
	return ioc(iocRead|iocWrite, t, nr, size)
}

// Ioctl executes an ioctl command on the specified file descriptor.
func Ioctl(fd, cmd, ptr uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, cmd, ptr)
	if errno != 0 {
		return errno
	}
	return nil
}
