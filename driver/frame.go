package driver

import (
	"errors"
	"fmt"
	"log"
)

// Identifier limits for standard (11-bit) and extended (29-bit) frames.
const (
	MaxStdID = 0x7FF
	MaxExtID = 0x1FFFFFFF
)

// Payload limits.
const (
	MaxClassicLen = 8
	MaxFDLen      = 64
)

var (
	ErrInvalidID  = errors.New("driver: invalid identifier")
	ErrInvalidLen = errors.New("driver: invalid data length")
)

// Frame is a single CAN or CAN-FD frame. The 64-byte array covers both
// variants; Len says how much of it is payload.
type Frame struct {
	ID       uint32
	Len      uint8
	Data     [64]byte
	Extended bool // 29-bit identifier
	Remote   bool // remote transmission request, classic CAN only
	Err      bool // error frame reported by the controller
	IsFD     bool
	BRS      bool // bitrate switch, FD only
	ESI      bool // error state indicator, FD only
}

// NewFrame builds a data frame from a payload slice. Payloads longer than
// 8 bytes force FD mode; FD payloads are zero-padded up to the next legal
// FD length.
func NewFrame(id uint32, data []byte, fd bool) (Frame, error) {
	f := Frame{ID: id, IsFD: fd || len(data) > MaxClassicLen}
	if id > MaxStdID {
		f.Extended = true
	}
	if f.IsFD {
		f.BRS = true
	}
	n := len(data)
	if f.IsFD {
		if n > MaxFDLen {
			return Frame{}, fmt.Errorf("%w: %d exceeds CAN-FD maximum of %d", ErrInvalidLen, n, MaxFDLen)
		}
		n = nextFDLength(n)
	}
	f.Len = uint8(n)
	copy(f.Data[:], data)
	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// Payload returns the used portion of the data array.
func (f *Frame) Payload() []byte {
	n := int(f.Len)
	if n > len(f.Data) {
		n = len(f.Data)
	}
	return f.Data[:n]
}

// Validate reports whether the frame can go on the wire.
func (f *Frame) Validate() error {
	if f.Extended {
		if f.ID > MaxExtID {
			return fmt.Errorf("%w: 0x%X exceeds 29 bits", ErrInvalidID, f.ID)
		}
	} else if f.ID > MaxStdID {
		return fmt.Errorf("%w: 0x%X exceeds 11 bits", ErrInvalidID, f.ID)
	}
	if f.IsFD {
		if f.Remote {
			return fmt.Errorf("%w: RTR is not defined for CAN-FD", ErrInvalidLen)
		}
		if int(f.Len) > MaxFDLen || nextFDLength(int(f.Len)) != int(f.Len) {
			return fmt.Errorf("%w: %d is not a legal CAN-FD length", ErrInvalidLen, f.Len)
		}
		return nil
	}
	if f.Len > MaxClassicLen {
		return fmt.Errorf("%w: %d exceeds classic CAN maximum of %d", ErrInvalidLen, f.Len, MaxClassicLen)
	}
	return nil
}

// nextFDLength rounds a payload length up to the smallest legal CAN-FD
// length. Valid sizes are 0-8, 12, 16, 20, 24, 32, 48, 64; the DLC code
// is the canonical form of that table.
func nextFDLength(n int) int {
	return dlcToLen(dataLenToDLC(n))
}

// dataLenToDLC converts a payload length to the 4-bit DLC code.
func dataLenToDLC(n int) byte {
	if n <= 8 {
		return byte(n)
	}
	switch {
	case n <= 12:
		return 9
	case n <= 16:
		return 10
	case n <= 20:
		return 11
	case n <= 24:
		return 12
	case n <= 32:
		return 13
	case n <= 48:
		return 14
	default:
		return 15
	}
}

// dlcToLen converts a DLC code back to the payload length in bytes.
func dlcToLen(dlc byte) int {
	if dlc <= 8 {
		return int(dlc)
	}
	switch dlc {
	case 9:
		return 12
	case 10:
		return 16
	case 11:
		return 20
	case 12:
		return 24
	case 13:
		return 32
	case 14:
		return 48
	default:
		return 64
	}
}

// logFrame records a frame on the standard logger.
func logFrame(direction string, f Frame) {
	typ := "CAN  "
	if f.IsFD {
		typ = "CANFD"
	}
	log.Printf("%s %s: ID=0x%03X, LEN=%02d, Data=% 02X", direction, typ, f.ID, f.Len, f.Payload())
}
