// Package device brings the on-board CAN FD controllers of a Jetson Orin
// AGX up and down: pin-mux register writes, kernel module loading and
// ip-link configuration.
package device

import (
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strconv"
)

const (
	DefaultBitrate  = 500000
	DefaultDBitrate = 1000000
)

var (
	ErrBadController = errors.New("device: controller index must be 0 or 1")
	ErrBadBitrate    = errors.New("device: bitrate must be a positive integer")
	ErrBadDBitrate   = errors.New("device: dbitrate must be a positive integer")
)

// Config selects a controller and its bus timings.
type Config struct {
	Controller int
	Bitrate    int
	DBitrate   int
}

func (c Config) Validate() error {
	if c.Controller != 0 && c.Controller != 1 {
		return fmt.Errorf("%w, got %d", ErrBadController, c.Controller)
	}
	if c.Bitrate <= 0 {
		return fmt.Errorf("%w, got %d", ErrBadBitrate, c.Bitrate)
	}
	if c.DBitrate <= 0 {
		return fmt.Errorf("%w, got %d", ErrBadDBitrate, c.DBitrate)
	}
	return nil
}

// Interface returns the network interface name for the controller.
func (c Config) Interface() string {
	return fmt.Sprintf("can%d", c.Controller)
}

// regWrite is one 32-bit pin-mux store.
type regWrite struct {
	addr  uint64
	value uint32
}

// Pad control registers of the mttcan RX/TX pins, per controller.
// Values configure the pads for CAN input and output.
var pinmux = map[int][]regWrite{
	0: {
		{addr: 0x0C303018, value: 0xC458}, // CAN0_DIN
		{addr: 0x0C303010, value: 0xC400}, // CAN0_DOUT
	},
	1: {
		{addr: 0x0C303008, value: 0xC458}, // CAN1_DIN
		{addr: 0x0C303000, value: 0xC400}, // CAN1_DOUT
	},
}

// mttcan depends on can and can_raw; failures are tolerated because the
// modules may be built in.
var kernelModules = []string{"can", "can_raw", "mttcan"}

// Device performs the bring-up sequence for one controller. The command
// and register hooks exist so tests can observe the sequence without
// touching hardware.
type Device struct {
	cfg  Config
	run  func(name string, args ...string) error
	poke func(addr uint64, value uint32) error
}

func New(cfg Config) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Device{cfg: cfg, run: runCommand, poke: writeRegister}, nil
}

// SetupPins routes the controller's RX/TX pads to the CAN function.
func (d *Device) SetupPins() error {
	log.Printf("Configuring CAN%d pins...", d.cfg.Controller)
	for _, w := range pinmux[d.cfg.Controller] {
		if err := d.poke(w.addr, w.value); err != nil {
			return fmt.Errorf("device: pin-mux write 0x%X to 0x%08X: %w", w.value, w.addr, err)
		}
	}
	return nil
}

// LoadModules loads the CAN kernel modules. Individual failures are
// logged and swallowed.
func (d *Device) LoadModules() {
	log.Println("Loading kernel modules...")
	for _, mod := range kernelModules {
		if err := d.run("modprobe", mod); err != nil {
			log.Printf("Warning: modprobe %s failed: %v", mod, err)
		}
	}
}

// Up brings the interface up with the configured bitrates, bus-error
// reporting and FD mode enabled.
func (d *Device) Up() error {
	iface := d.cfg.Interface()
	log.Printf("Bringing up %s with bitrate=%d, dbitrate=%d...", iface, d.cfg.Bitrate, d.cfg.DBitrate)
	err := d.run("ip", "link", "set", iface, "up", "type", "can",
		"bitrate", strconv.Itoa(d.cfg.Bitrate),
		"dbitrate", strconv.Itoa(d.cfg.DBitrate),
		"berr-reporting", "on", "fd", "on")
	if err != nil {
		return fmt.Errorf("device: bring up %s: %w", iface, err)
	}
	return nil
}

// Down brings the interface down. Failure is tolerated and logged, the
// interface may already be gone.
func (d *Device) Down() {
	iface := d.cfg.Interface()
	log.Printf("Bringing down %s...", iface)
	if err := d.run("ip", "link", "set", iface, "down"); err != nil {
		log.Printf("Warning: bring down %s failed: %v", iface, err)
	}
}

// Setup runs the full bring-up sequence: pins, modules, link up.
func (d *Device) Setup() error {
	if err := d.SetupPins(); err != nil {
		return err
	}
	d.LoadModules()
	return d.Up()
}

func runCommand(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%v: %s", err, out)
		}
		return err
	}
	return nil
}
