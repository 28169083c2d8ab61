//go:build linux

package device

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

const devMem = "/dev/mem"

// writeRegister stores a 32-bit value at a physical address through a
// page-sized mapping of /dev/mem. Needs root, like the rest of the
// bring-up sequence.
func writeRegister(addr uint64, value uint32) error {
	fd, err := unix.Open(devMem, unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", devMem, err)
	}
	defer unix.Close(fd)

	page := uint64(unix.Getpagesize())
	base := addr &^ (page - 1)
	offset := addr - base

	mem, err := unix.Mmap(fd, int64(base), int(page), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmap 0x%08X: %w", base, err)
	}
	defer unix.Munmap(mem)

	*(*uint32)(unsafe.Pointer(&mem[offset])) = value
	return nil
}
