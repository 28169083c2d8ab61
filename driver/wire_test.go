package driver

import (
	"bytes"
	"testing"
)

func TestMarshalWireClassic(t *testing.T) {
	f, _ := NewFrame(0x123, []byte{0xDE, 0xAD}, false)
	buf, err := f.MarshalWire()
	if err != nil {
		t.Fatalf("MarshalWire failed: %v", err)
	}
	want := make([]byte, ClassicFrameSize)
	want[0] = 0x23
	want[1] = 0x01
	want[4] = 2
	want[8] = 0xDE
	want[9] = 0xAD
	if !bytes.Equal(buf, want) {
		t.Errorf("MarshalWire = % X, want % X", buf, want)
	}
}

func TestMarshalWireFDFlags(t *testing.T) {
	f, _ := NewFrame(0x123, make([]byte, 12), true)
	f.ESI = true
	buf, err := f.MarshalWire()
	if err != nil {
		t.Fatalf("MarshalWire failed: %v", err)
	}
	if len(buf) != FDFrameSize {
		t.Fatalf("FD frame is %d bytes, want %d", len(buf), FDFrameSize)
	}
	if buf[4] != 12 {
		t.Errorf("length byte = %d, want 12", buf[4])
	}
	if buf[5] != canfdBRS|canfdESI {
		t.Errorf("flag byte = 0x%02X, want BRS|ESI", buf[5])
	}
}

func TestMarshalWireExtendedAndRemote(t *testing.T) {
	f := Frame{ID: 0x12345678, Extended: true, Remote: true}
	buf, err := f.MarshalWire()
	if err != nil {
		t.Fatalf("MarshalWire failed: %v", err)
	}
	id := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	if id&canEffFlag == 0 {
		t.Error("EFF flag not set for extended frame")
	}
	if id&canRtrFlag == 0 {
		t.Error("RTR flag not set for remote frame")
	}
	if id&canEffMask != 0x12345678 {
		t.Errorf("identifier bits = 0x%X", id&canEffMask)
	}
}

func TestUnmarshalWireRoundTrip(t *testing.T) {
	frames := []Frame{}
	if f, err := NewFrame(0x7F, []byte{1, 2, 3}, false); err == nil {
		frames = append(frames, f)
	}
	if f, err := NewFrame(0x1ABCDEF0, bytes.Repeat([]byte{0x55}, 20), true); err == nil {
		frames = append(frames, f)
	}
	for _, f := range frames {
		buf, err := f.MarshalWire()
		if err != nil {
			t.Fatalf("MarshalWire failed: %v", err)
		}
		var g Frame
		if err := g.UnmarshalWire(buf); err != nil {
			t.Fatalf("UnmarshalWire failed: %v", err)
		}
		if g != f {
			t.Errorf("round trip changed the frame:\n got %+v\nwant %+v", g, f)
		}
	}
}

func TestUnmarshalWireRejectsBadSizes(t *testing.T) {
	var f Frame
	for _, n := range []int{0, 8, 15, 17, 71, 73} {
		if err := f.UnmarshalWire(make([]byte, n)); err == nil {
			t.Errorf("UnmarshalWire accepted %d bytes", n)
		}
	}
}

func TestUnmarshalWireRejectsOversizedLength(t *testing.T) {
	buf := make([]byte, ClassicFrameSize)
	buf[4] = 9
	var f Frame
	if err := f.UnmarshalWire(buf); err == nil {
		t.Error("UnmarshalWire accepted classic frame with length 9")
	}
}
