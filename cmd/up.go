package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orinworks/canctl/device"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Configure pins, load modules and bring the interface up",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dc := deviceConfig(cmd, cfg)
		dev, err := device.New(dc)
		if err != nil {
			return err
		}
		if err := dev.Setup(); err != nil {
			return err
		}
		fmt.Printf("Setup done. %s is up.\n", dc.Interface())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(upCmd)
}
