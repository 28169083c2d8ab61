package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orinworks/canctl/device"
)

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Bring the interface down",
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
		dev.Down()
		fmt.Println("Interface brought down cleanly.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downCmd)
}
