package driver

import (
	"encoding/binary"
	"fmt"
)

// Linux SocketCAN wire layouts: struct can_frame is 16 bytes, struct
// canfd_frame is 72. Both are little-endian with the EFF/RTR/ERR flags
// folded into the high bits of the identifier.
const (
	ClassicFrameSize = 16
	FDFrameSize      = 72

	canEffFlag = 0x80000000
	canRtrFlag = 0x40000000
	canErrFlag = 0x20000000
	canEffMask = MaxExtID
	canStdMask = MaxStdID

	canfdBRS = 0x01
	canfdESI = 0x02
)

// MarshalWire encodes the frame into the kernel layout: 16 bytes for
// classic frames, 72 for FD.
func (f *Frame) MarshalWire() ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	id := f.ID
	if f.Extended {
		id |= canEffFlag
	}
	if f.Remote {
		id |= canRtrFlag
	}
	if f.Err {
		id |= canErrFlag
	}

	if !f.IsFD {
		buf := make([]byte, ClassicFrameSize)
		binary.LittleEndian.PutUint32(buf[0:4], id)
		buf[4] = f.Len
		copy(buf[8:], f.Payload())
		return buf, nil
	}

	buf := make([]byte, FDFrameSize)
	binary.LittleEndian.PutUint32(buf[0:4], id)
	buf[4] = f.Len
	if f.BRS {
		buf[5] |= canfdBRS
	}
	if f.ESI {
		buf[5] |= canfdESI
	}
	copy(buf[8:], f.Payload())
	return buf, nil
}

// UnmarshalWire decodes a frame read from a raw CAN socket. The read size
// tells classic and FD frames apart.
func (f *Frame) UnmarshalWire(buf []byte) error {
	switch len(buf) {
	case ClassicFrameSize, FDFrameSize:
	default:
		return fmt.Errorf("driver: frame must be %d or %d bytes, got %d", ClassicFrameSize, FDFrameSize, len(buf))
	}

	*f = Frame{}
	id := binary.LittleEndian.Uint32(buf[0:4])
	f.Extended = id&canEffFlag != 0
	f.Err = id&canErrFlag != 0
	if f.Extended {
		f.ID = id & canEffMask
	} else {
		f.ID = id & canStdMask
	}
	f.Len = buf[4]

	if len(buf) == FDFrameSize {
		f.IsFD = true
		f.BRS = buf[5]&canfdBRS != 0
		f.ESI = buf[5]&canfdESI != 0
	} else {
		f.Remote = id&canRtrFlag != 0
	}

	if int(f.Len) > len(buf)-8 {
		return fmt.Errorf("driver: %w: length %d in %d-byte frame", ErrInvalidLen, f.Len, len(buf))
	}
	copy(f.Data[:], buf[8:8+int(f.Len)])
	return nil
}
