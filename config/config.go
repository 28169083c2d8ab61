// Package config loads the optional YAML file describing controller
// settings and cyclic send jobs.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orinworks/canctl/driver"
	"github.com/orinworks/canctl/manager"
)

// CycleMsg is one cyclic transmit job. Data is a hex string, CycleTime is
// in milliseconds.
type CycleMsg struct {
	ID        uint32 `yaml:"id"`
	Data      string `yaml:"data"`
	CycleTime int    `yaml:"cycleTime"`
	FD        bool   `yaml:"fd"`
}

// Config mirrors the file layout:
//
//	controller: 1
//	bitrate: 500000
//	dbitrate: 1000000
//	cycle:
//	  heartbeat:
//	    id: 0x123
//	    data: abcdabcd
//	    cycleTime: 1000
type Config struct {
	Controller *int                `yaml:"controller"`
	Bitrate    *int                `yaml:"bitrate"`
	DBitrate   *int                `yaml:"dbitrate"`
	Cycle      map[string]CycleMsg `yaml:"cycle"`
}

func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.Controller != nil && *cfg.Controller != 0 && *cfg.Controller != 1 {
		return nil, fmt.Errorf("config: %s: controller must be 0 or 1, got %d", path, *cfg.Controller)
	}
	if cfg.Bitrate != nil && *cfg.Bitrate <= 0 {
		return nil, fmt.Errorf("config: %s: bitrate must be a positive integer, got %d", path, *cfg.Bitrate)
	}
	if cfg.DBitrate != nil && *cfg.DBitrate <= 0 {
		return nil, fmt.Errorf("config: %s: dbitrate must be a positive integer, got %d", path, *cfg.DBitrate)
	}
	return &cfg, nil
}

// Job converts a cycle entry into a manager job.
func (m CycleMsg) Job(name string) (manager.CycleJob, error) {
	if m.CycleTime <= 0 {
		return manager.CycleJob{}, fmt.Errorf("config: cycle %q: cycleTime must be positive, got %d", name, m.CycleTime)
	}
	data, err := hex.DecodeString(m.Data)
	if err != nil {
		return manager.CycleJob{}, fmt.Errorf("config: cycle %q: bad data hex: %w", name, err)
	}
	frame, err := driver.NewFrame(m.ID, data, m.FD)
	if err != nil {
		return manager.CycleJob{}, fmt.Errorf("config: cycle %q: %w", name, err)
	}
	return manager.CycleJob{
		Name:   name,
		Frame:  frame,
		Period: time.Duration(m.CycleTime) * time.Millisecond,
	}, nil
}

// Jobs converts every cycle entry, in map order.
func (c *Config) Jobs() ([]manager.CycleJob, error) {
	jobs := make([]manager.CycleJob, 0, len(c.Cycle))
	for name, msg := range c.Cycle {
		job, err := msg.Job(name)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
