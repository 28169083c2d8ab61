//go:build !linux

package driver

import (
	"context"
	"errors"
)

var errNotLinux = errors.New("driver: SocketCAN requires linux")

// SocketCAN stub so the package builds on development hosts. Every
// operation fails; the real implementation is linux-only.
type SocketCAN struct {
	ifname string
}

func NewSocketCAN(ifname string) *SocketCAN { return &SocketCAN{ifname: ifname} }

func (s *SocketCAN) Init() error      { return errNotLinux }
func (s *SocketCAN) Start()           {}
func (s *SocketCAN) Stop()            {}
func (s *SocketCAN) Send(Frame) error { return errNotLinux }

func (s *SocketCAN) Subscribe(buffer int) <-chan Frame {
	ch := make(chan Frame)
	close(ch)
	return ch
}

func (s *SocketCAN) Context() context.Context { return context.Background() }
