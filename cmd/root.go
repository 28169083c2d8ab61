// Package cmd implements the canctl command line.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/orinworks/canctl/config"
	"github.com/orinworks/canctl/device"
)

var (
	flagBitrate    int
	flagController int
	flagDBitrate   int
	flagConfig     string
	flagNoSetup    bool
)

var rootCmd = &cobra.Command{
	Use:   "canctl",
	Short: "Configure and exercise the Jetson Orin AGX CAN controllers",
	Long: `canctl configures one of the two on-board CAN FD controllers of a
Jetson Orin AGX (pin-mux, kernel modules, ip link) and then listens for or
transmits frames natively over SocketCAN.

Most operations need root.`,
	SilenceUsage: true,
}

// Execute runs the CLI. Validation and runtime errors exit 1; a clean
// interrupt exits 0.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVarP(&flagBitrate, "bitrate", "b", device.DefaultBitrate, "arbitration-phase bitrate in bits/s")
	pf.IntVarP(&flagController, "controller", "c", 0, "CAN controller index (0 or 1)")
	pf.IntVar(&flagDBitrate, "dbitrate", device.DefaultDBitrate, "data-phase bitrate in bits/s")
	pf.StringVar(&flagConfig, "config", "", "YAML configuration file")
	pf.BoolVar(&flagNoSetup, "no-setup", false, "skip hardware bring-up and teardown, use the interface as is")
}

func loadConfig() (*config.Config, error) {
	if flagConfig == "" {
		return nil, nil
	}
	return config.Load(flagConfig)
}

// deviceConfig merges flags over the optional config file. A flag set on
// the command line always wins.
func deviceConfig(cmd *cobra.Command, cfg *config.Config) device.Config {
	dc := device.Config{
		Controller: flagController,
		Bitrate:    flagBitrate,
		DBitrate:   flagDBitrate,
	}
	if cfg == nil {
		return dc
	}
	if cfg.Controller != nil && !cmd.Flags().Changed("controller") {
		dc.Controller = *cfg.Controller
	}
	if cfg.Bitrate != nil && !cmd.Flags().Changed("bitrate") {
		dc.Bitrate = *cfg.Bitrate
	}
	if cfg.DBitrate != nil && !cmd.Flags().Changed("dbitrate") {
		dc.DBitrate = *cfg.DBitrate
	}
	return dc
}

// banner builds the start-of-run message. "Setup done." only appears when
// the bring-up sequence actually ran.
func banner(setup bool, rest string) string {
	if setup {
		return "Setup done. " + rest
	}
	return rest
}

// signalContext is cancelled on INT or TERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
