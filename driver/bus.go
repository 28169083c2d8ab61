package driver

import (
	"context"
	"time"
)

// Buffer and polling configuration.
const (
	RxBufferSize = 1024 // receive channel depth
	// recvTimeout bounds each blocking read so the read loop can observe
	// cancellation.
	recvTimeout = 100 * time.Millisecond
)

// Bus is the unified interface to a CAN adapter. Init opens the device,
// Start launches the receive loop, Stop tears both down. Subscribers each
// see every received frame.
type Bus interface {
	Init() error
	Start()
	Stop()
	Send(Frame) error
	Subscribe(buffer int) <-chan Frame
	Context() context.Context
}
