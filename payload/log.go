package payload

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/orinworks/canctl/driver"
)

// LoadLog reads a candump-format log and returns its frames for replay.
// Accepted line shapes:
//
//	(1234.567890) can0 123#DEADBEEF
//	can0 123#DEADBEEF
//	123#DEADBEEF
//
// Blank lines are skipped; a malformed line aborts the load.
func LoadLog(path string) (*List, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var frames []driver.Frame
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		f, err := parseLogLine(line)
		if err != nil {
			return nil, fmt.Errorf("payload: %s line %d: %w", path, lineNum, err)
		}
		frames = append(frames, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("payload: no frames in %s", path)
	}
	return NewList(frames), nil
}

func parseLogLine(line string) (driver.Frame, error) {
	// The frame is the last whitespace-separated field holding a '#';
	// timestamp and interface name come before it.
	fields := strings.Fields(line)
	for i := len(fields) - 1; i >= 0; i-- {
		if strings.Contains(fields[i], "#") {
			return driver.ParseText(fields[i])
		}
	}
	return driver.Frame{}, fmt.Errorf("no frame field in %q", line)
}
