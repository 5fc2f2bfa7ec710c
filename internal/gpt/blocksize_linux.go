//go:build linux

package gpt

import (
	"os"

	"golang.org/x/sys/unix"
)

// logicalBlockSize asks the kernel for the device's logical sector size.
// Regular files (disk images) fail the ioctl and use 512.
func logicalBlockSize(f *os.File) int64 {
	size, err := unix.IoctlGetInt(int(f.Fd()), unix.BLKSSZGET)
	if err != nil || size < fallbackLBSize || size&(size-1) != 0 {
		return fallbackLBSize
	}
	return int64(size)
}
