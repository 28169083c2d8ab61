package driver

import (
	"context"
	"testing"
	"time"
)

func recvFrame(t *testing.T, ch <-chan Frame) Frame {
	t.Helper()
	select {
	case f, ok := <-ch:
		if !ok {
			t.Fatal("subscriber channel closed")
		}
		return f
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return Frame{}
}

func TestFanoutDeliversToAllSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := make(chan Frame, 1)
	fan := newRxFanout(ctx, source)
	defer fan.Close()

	a := fan.Subscribe(4)
	b := fan.Subscribe(4)

	want := Frame{ID: 0x42, Len: 1, Data: [64]byte{0xAA}}
	source <- want

	if got := recvFrame(t, a); got != want {
		t.Errorf("subscriber a got %+v", got)
	}
	if got := recvFrame(t, b); got != want {
		t.Errorf("subscriber b got %+v", got)
	}
}

func TestFanoutDropsWhenSubscriberFull(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := make(chan Frame)
	fan := newRxFanout(ctx, source)
	defer fan.Close()

	slow := fan.Subscribe(1)
	source <- Frame{ID: 1}
	source <- Frame{ID: 2} // dropped, buffer already holds ID 1
	time.Sleep(50 * time.Millisecond)

	if got := recvFrame(t, slow); got.ID != 1 {
		t.Errorf("got ID %d, want 1", got.ID)
	}
	select {
	case f := <-slow:
		t.Errorf("unexpected second frame ID %d", f.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFanoutClosesSubscribersOnSourceClose(t *testing.T) {
	ctx := context.Background()
	source := make(chan Frame)
	fan := newRxFanout(ctx, source)

	sub := fan.Subscribe(1)
	close(source)
	fan.Close()

	select {
	case _, ok := <-sub:
		if ok {
			t.Error("expected closed channel, got frame")
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber channel not closed")
	}
}
