//go:build linux

package driver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"

	"golang.org/x/sys/unix"
)

// SocketCAN drives a CAN interface through a raw AF_CAN socket with FD
// frames enabled. It implements Bus.
type SocketCAN struct {
	ifname string
	fd     int
	rxChan chan Frame
	fanout *rxFanout
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewSocketCAN(ifname string) *SocketCAN {
	return &SocketCAN{ifname: ifname, fd: -1}
}

func (s *SocketCAN) Init() error {
	iface, err := net.InterfaceByName(s.ifname)
	if err != nil {
		return fmt.Errorf("driver: lookup %s: %w", s.ifname, err)
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, unix.CAN_RAW)
	if err != nil {
		return fmt.Errorf("driver: open raw CAN socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_CAN_RAW, unix.CAN_RAW_FD_FRAMES, 1); err != nil {
		unix.Close(fd)
		return fmt.Errorf("driver: enable FD frames: %w", err)
	}
	// Bounded reads so the loop can notice cancellation.
	tv := unix.NsecToTimeval(recvTimeout.Nanoseconds())
	if err := unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		unix.Close(fd)
		return fmt.Errorf("driver: set receive timeout: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrCAN{Ifindex: iface.Index}); err != nil {
		unix.Close(fd)
		return fmt.Errorf("driver: bind %s: %w", s.ifname, err)
	}

	s.fd = fd
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.rxChan = make(chan Frame, RxBufferSize)
	s.fanout = newRxFanout(s.ctx, s.rxChan)
	log.Printf("SocketCAN driver bound to %s", s.ifname)
	return nil
}

func (s *SocketCAN) Start() {
	s.wg.Add(1)
	go s.readLoop()
}

func (s *SocketCAN) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	if s.fanout != nil {
		s.fanout.Close()
	}
	if s.fd >= 0 {
		unix.Close(s.fd)
		s.fd = -1
	}
}

func (s *SocketCAN) Send(f Frame) error {
	buf, err := f.MarshalWire()
	if err != nil {
		return err
	}
	n, err := unix.Write(s.fd, buf)
	if err != nil {
		return fmt.Errorf("driver: write %s: %w", s.ifname, err)
	}
	if n != len(buf) {
		return fmt.Errorf("driver: short write on %s: %d of %d bytes", s.ifname, n, len(buf))
	}
	logFrame("TX", f)
	return nil
}

func (s *SocketCAN) Subscribe(buffer int) <-chan Frame {
	return s.fanout.Subscribe(buffer)
}

func (s *SocketCAN) Context() context.Context { return s.ctx }

func (s *SocketCAN) readLoop() {
	defer s.wg.Done()
	buf := make([]byte, FDFrameSize)
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		n, err := unix.Read(s.fd, buf)
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				continue
			}
			if s.ctx.Err() != nil {
				return
			}
			log.Printf("SocketCAN read on %s failed: %v", s.ifname, err)
			return
		}

		var f Frame
		if err := f.UnmarshalWire(buf[:n]); err != nil {
			log.Printf("SocketCAN dropped malformed frame on %s: %v", s.ifname, err)
			continue
		}
		select {
		case s.rxChan <- f:
		case <-s.ctx.Done():
			return
		}
	}
}
