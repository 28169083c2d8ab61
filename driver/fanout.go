package driver

import (
	"context"
	"sync"
)

// rxFanout broadcasts frames from one source channel to every subscriber.
// Slow subscribers lose frames rather than stalling the bus.
type rxFanout struct {
	mu     sync.RWMutex
	subs   map[chan Frame]struct{}
	closed bool
	wg     sync.WaitGroup
}

func newRxFanout(ctx context.Context, source <-chan Frame) *rxFanout {
	f := &rxFanout{
		subs: make(map[chan Frame]struct{}),
	}
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case <-ctx.Done():
				f.closeAll()
				return
			case frame, ok := <-source:
				if !ok {
					f.closeAll()
					return
				}
				f.dispatch(frame)
			}
		}
	}()
	return f
}

func (f *rxFanout) Subscribe(buffer int) <-chan Frame {
	ch := make(chan Frame, buffer)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(ch)
		return ch
	}
	f.subs[ch] = struct{}{}
	return ch
}

func (f *rxFanout) dispatch(frame Frame) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch := range f.subs {
		select {
		case ch <- frame:
		default:
		}
	}
}

func (f *rxFanout) closeAll() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	subs := f.subs
	f.subs = nil
	f.mu.Unlock()

	for ch := range subs {
		close(ch)
	}
}

func (f *rxFanout) Close() {
	f.closeAll()
	f.wg.Wait()
}
