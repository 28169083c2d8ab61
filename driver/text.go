package driver

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// FD text flag bits, third nibble of the "ID##<flag><data>" form.
const (
	textFlagBRS = 0x1
	textFlagESI = 0x2
)

// ParseText parses a frame in the cansend text format:
//
//	123#DEADBEEF      classic data frame
//	123#R             remote frame (optional length digit, 123#R4)
//	123##1DEADBEEF    CAN-FD frame, flag nibble = BRS|ESI
//
// Identifiers with more than three hex digits are extended. Dots inside
// the data part are ignored, as cansend allows.
func ParseText(s string) (Frame, error) {
	idPart, rest, ok := strings.Cut(s, "#")
	if !ok {
		return Frame{}, fmt.Errorf("driver: %q: missing # separator", s)
	}
	id, err := strconv.ParseUint(idPart, 16, 32)
	if err != nil {
		return Frame{}, fmt.Errorf("driver: %q: bad identifier: %w", s, err)
	}

	f := Frame{ID: uint32(id), Extended: len(idPart) > 3}

	switch {
	case strings.HasPrefix(rest, "#"): // FD frame
		rest = rest[1:]
		if rest == "" {
			return Frame{}, fmt.Errorf("driver: %q: missing FD flag nibble", s)
		}
		flags, err := strconv.ParseUint(rest[:1], 16, 8)
		if err != nil {
			return Frame{}, fmt.Errorf("driver: %q: bad FD flag nibble: %w", s, err)
		}
		f.IsFD = true
		f.BRS = flags&textFlagBRS != 0
		f.ESI = flags&textFlagESI != 0
		data, err := parseHexData(rest[1:])
		if err != nil {
			return Frame{}, fmt.Errorf("driver: %q: %w", s, err)
		}
		if len(data) > MaxFDLen {
			return Frame{}, fmt.Errorf("driver: %q: %w", s, ErrInvalidLen)
		}
		f.Len = uint8(nextFDLength(len(data)))
		copy(f.Data[:], data)

	case strings.HasPrefix(rest, "R"), strings.HasPrefix(rest, "r"): // RTR
		f.Remote = true
		if len(rest) > 1 {
			n, err := strconv.Atoi(rest[1:])
			if err != nil || n > MaxClassicLen {
				return Frame{}, fmt.Errorf("driver: %q: bad RTR length", s)
			}
			f.Len = uint8(n)
		}

	default:
		data, err := parseHexData(rest)
		if err != nil {
			return Frame{}, fmt.Errorf("driver: %q: %w", s, err)
		}
		if len(data) > MaxClassicLen {
			return Frame{}, fmt.Errorf("driver: %q: %w", s, ErrInvalidLen)
		}
		f.Len = uint8(len(data))
		copy(f.Data[:], data)
	}

	if err := f.Validate(); err != nil {
		return Frame{}, err
	}
	return f, nil
}

func parseHexData(s string) ([]byte, error) {
	s = strings.ReplaceAll(s, ".", "")
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bad data hex: %w", err)
	}
	return data, nil
}

// String renders the frame back in the cansend text format.
func (f Frame) String() string {
	id := fmt.Sprintf("%03X", f.ID)
	if f.Extended {
		id = fmt.Sprintf("%08X", f.ID)
	}
	switch {
	case f.IsFD:
		flags := 0
		if f.BRS {
			flags |= textFlagBRS
		}
		if f.ESI {
			flags |= textFlagESI
		}
		return fmt.Sprintf("%s##%X%X", id, flags, f.Payload())
	case f.Remote:
		return fmt.Sprintf("%s#R%d", id, f.Len)
	default:
		return fmt.Sprintf("%s#%X", id, f.Payload())
	}
}

// DumpLine renders the frame the way candump prints it, prefixed with the
// interface name.
func (f Frame) DumpLine(ifname string) string {
	id := fmt.Sprintf("%3X", f.ID)
	if f.Extended {
		id = fmt.Sprintf("%08X", f.ID)
	}
	switch {
	case f.Err:
		return fmt.Sprintf("  %s  %s   [%d]  ERRORFRAME  % X", ifname, id, f.Len, f.Payload())
	case f.Remote:
		return fmt.Sprintf("  %s  %s   [%d]  remote request", ifname, id, f.Len)
	case f.IsFD:
		return fmt.Sprintf("  %s  %s  [%02d]  % X", ifname, id, f.Len, f.Payload())
	default:
		return fmt.Sprintf("  %s  %s   [%d]  % X", ifname, id, f.Len, f.Payload())
	}
}
