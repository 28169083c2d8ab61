package driver

import (
	"bytes"
	"errors"
	"testing"
)

func TestNewFrameClassic(t *testing.T) {
	f, err := NewFrame(0x123, []byte{0xAB, 0xCD, 0xAB, 0xCD}, false)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	if f.IsFD {
		t.Error("4-byte payload should stay classic CAN")
	}
	if f.Extended {
		t.Error("0x123 should not be extended")
	}
	if f.Len != 4 {
		t.Errorf("Len = %d, want 4", f.Len)
	}
	if !bytes.Equal(f.Payload(), []byte{0xAB, 0xCD, 0xAB, 0xCD}) {
		t.Errorf("Payload = % X", f.Payload())
	}
}

func TestNewFrameForcesFDForLongPayload(t *testing.T) {
	data := make([]byte, 10)
	f, err := NewFrame(0x123, data, false)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	if !f.IsFD {
		t.Error("10-byte payload must force FD mode")
	}
	if f.Len != 12 {
		t.Errorf("Len = %d, want padding to 12", f.Len)
	}
}

func TestNewFrameExtendedID(t *testing.T) {
	f, err := NewFrame(0x12345678, []byte{0x01}, false)
	if err != nil {
		t.Fatalf("NewFrame failed: %v", err)
	}
	if !f.Extended {
		t.Error("0x12345678 must be extended")
	}
}

func TestNewFrameRejectsOversizedPayload(t *testing.T) {
	if _, err := NewFrame(0x123, make([]byte, 65), true); !errors.Is(err, ErrInvalidLen) {
		t.Errorf("65-byte payload: err = %v, want ErrInvalidLen", err)
	}
}

func TestValidateIDRanges(t *testing.T) {
	f := Frame{ID: 0x800}
	if err := f.Validate(); !errors.Is(err, ErrInvalidID) {
		t.Errorf("standard ID 0x800: err = %v, want ErrInvalidID", err)
	}
	f = Frame{ID: 0x2000_0000, Extended: true}
	if err := f.Validate(); !errors.Is(err, ErrInvalidID) {
		t.Errorf("extended ID 0x20000000: err = %v, want ErrInvalidID", err)
	}
	f = Frame{ID: 0x1FFF_FFFF, Extended: true}
	if err := f.Validate(); err != nil {
		t.Errorf("extended ID 0x1FFFFFFF: unexpected err %v", err)
	}
}

func TestValidateFDLengths(t *testing.T) {
	f := Frame{ID: 0x123, IsFD: true, Len: 13}
	if err := f.Validate(); !errors.Is(err, ErrInvalidLen) {
		t.Errorf("FD length 13: err = %v, want ErrInvalidLen", err)
	}
	f.Len = 48
	if err := f.Validate(); err != nil {
		t.Errorf("FD length 48: unexpected err %v", err)
	}
}

func TestValidateRejectsFDRemote(t *testing.T) {
	f := Frame{ID: 0x123, IsFD: true, Remote: true}
	if err := f.Validate(); !errors.Is(err, ErrInvalidLen) {
		t.Errorf("FD RTR: err = %v, want error", err)
	}
}

func TestDLCConversion(t *testing.T) {
	cases := []struct {
		len int
		dlc byte
	}{
		{0, 0}, {8, 8}, {9, 9}, {12, 9}, {13, 10}, {24, 12}, {33, 14}, {64, 15},
	}
	for _, c := range cases {
		if got := dataLenToDLC(c.len); got != c.dlc {
			t.Errorf("dataLenToDLC(%d) = %d, want %d", c.len, got, c.dlc)
		}
	}
	for dlc := byte(0); dlc <= 15; dlc++ {
		n := dlcToLen(dlc)
		if got := dataLenToDLC(n); got != dlc {
			t.Errorf("dataLenToDLC(dlcToLen(%d)) = %d", dlc, got)
		}
	}
}

func TestNextFDLength(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, 0}, {5, 5}, {8, 8}, {9, 12}, {12, 12}, {13, 16},
		{21, 24}, {25, 32}, {33, 48}, {49, 64}, {64, 64},
	}
	for _, c := range cases {
		if got := nextFDLength(c.in); got != c.want {
			t.Errorf("nextFDLength(%d) = %d, want %d", c.in, got, c.want)
		}
	}
	// Rounded lengths are exactly the legal FD sizes.
	for n := 0; n <= MaxFDLen; n++ {
		r := nextFDLength(n)
		if r < n || nextFDLength(r) != r {
			t.Errorf("nextFDLength(%d) = %d is not a fixed point above n", n, r)
		}
	}
}
