// Package payload provides frame sources for send mode: a fixed frame
// repeated forever, the chunked contents of an Intel HEX image, or the
// replay of a candump-format log.
package payload

import (
	"io"

	"github.com/orinworks/canctl/driver"
)

// Source yields successive frames to transmit. Next returns io.EOF when
// the source is exhausted; a Fixed source never is.
type Source interface {
	Next() (driver.Frame, error)
}

// Fixed repeats one frame forever.
type Fixed struct {
	Frame driver.Frame
}

func (f *Fixed) Next() (driver.Frame, error) {
	return f.Frame, nil
}

// List yields a finite sequence of frames.
type List struct {
	frames []driver.Frame
	pos    int
}

func NewList(frames []driver.Frame) *List {
	return &List{frames: frames}
}

func (l *List) Next() (driver.Frame, error) {
	if l.pos >= len(l.frames) {
		return driver.Frame{}, io.EOF
	}
	f := l.frames[l.pos]
	l.pos++
	return f, nil
}

// Len reports the number of frames remaining.
func (l *List) Len() int {
	return len(l.frames) - l.pos
}

// splitBlocks cuts data into chunks of at most bs bytes.
func splitBlocks(data []byte, bs int) [][]byte {
	if bs <= 0 {
		return nil
	}
	blocks := make([][]byte, 0, (len(data)+bs-1)/bs)
	for i := 0; i < len(data); i += bs {
		end := i + bs
		if end > len(data) {
			end = len(data)
		}
		blocks = append(blocks, data[i:end])
	}
	return blocks
}
