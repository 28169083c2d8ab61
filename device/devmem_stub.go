//go:build !linux

package device

import "errors"

func writeRegister(addr uint64, value uint32) error {
	return errors.New("physical register access requires linux")
}
