package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/orinworks/canctl/device"
)

// execute runs the CLI with args and returns the error. Output is
// captured so test logs stay clean. Only invalid invocations belong
// here, valid ones would touch hardware.
func execute(t *testing.T, args ...string) error {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	defer func() {
		flagController = 0
		flagBitrate = device.DefaultBitrate
		flagDBitrate = device.DefaultDBitrate
		flagConfig = ""
		flagInterval = 1.0
	}()
	return rootCmd.Execute()
}

func TestRejectsControllerTwo(t *testing.T) {
	err := execute(t, "up", "-c", "2")
	if !errors.Is(err, device.ErrBadController) {
		t.Errorf("err = %v, want ErrBadController", err)
	}
}

func TestRejectsNonNumericBitrate(t *testing.T) {
	if err := execute(t, "up", "-b", "fast"); err == nil {
		t.Error("non-numeric bitrate accepted")
	}
}

func TestRejectsNegativeBitrate(t *testing.T) {
	err := execute(t, "up", "-b=-500000", "-c", "0")
	if !errors.Is(err, device.ErrBadBitrate) {
		t.Errorf("err = %v, want ErrBadBitrate", err)
	}
}

func TestRejectsNonPositiveInterval(t *testing.T) {
	if err := execute(t, "send", "-i", "0"); err == nil {
		t.Error("zero interval accepted")
	}
}

func TestRejectsConflictingSources(t *testing.T) {
	err := execute(t, "send", "--hex-file", "a.hex", "--log-file", "b.log")
	if err == nil {
		t.Error("conflicting payload sources accepted")
	}
	flagHexFile = ""
	flagLogFile = ""
}

func TestBannerReflectsSetup(t *testing.T) {
	if got := banner(true, "Listening on can0."); got != "Setup done. Listening on can0." {
		t.Errorf("banner with setup = %q", got)
	}
	if got := banner(false, "Listening on can0."); got != "Listening on can0." {
		t.Errorf("banner without setup = %q", got)
	}
}

func TestRejectsMissingConfigFile(t *testing.T) {
	if err := execute(t, "up", "--config", "/nonexistent/canctl.yaml"); err == nil {
		t.Error("missing config file accepted")
	}
}
