package payload

import (
	"fmt"
	"os"

	"github.com/marcinbor85/gohex"

	"github.com/orinworks/canctl/driver"
)

// LoadHexImage reads an Intel HEX file and turns its data segments into
// frames of at most chunk payload bytes, all carrying the given
// arbitration ID. Chunks larger than 8 bytes make FD frames.
func LoadHexImage(path string, id uint32, chunk int) (*List, error) {
	if chunk <= 0 || chunk > driver.MaxFDLen {
		return nil, fmt.Errorf("payload: chunk size must be 1..%d, got %d", driver.MaxFDLen, chunk)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(file); err != nil {
		return nil, fmt.Errorf("payload: parse %s: %w", path, err)
	}
	segments := mem.GetDataSegments()
	if len(segments) == 0 {
		return nil, fmt.Errorf("payload: no data segments in %s", path)
	}

	var frames []driver.Frame
	for _, seg := range segments {
		for _, block := range splitBlocks(seg.Data, chunk) {
			f, err := driver.NewFrame(id, block, chunk > driver.MaxClassicLen)
			if err != nil {
				return nil, fmt.Errorf("payload: segment 0x%08X: %w", seg.Address, err)
			}
			frames = append(frames, f)
		}
	}
	return NewList(frames), nil
}
