package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orinworks/canctl/decode"
	"github.com/orinworks/canctl/device"
	"github.com/orinworks/canctl/driver"
)

var flagDecodeCBOR bool

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Bring the interface up and print received frames",
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().BoolVar(&flagDecodeCBOR, "decode-cbor", false, "attempt CBOR decoding of each payload")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dc := deviceConfig(cmd, cfg)
	dev, err := device.New(dc)
	if err != nil {
		return err
	}
	if !flagNoSetup {
		if err := dev.Setup(); err != nil {
			return err
		}
	}
	iface := dc.Interface()

	bus := driver.NewSocketCAN(iface)
	if err := bus.Init(); err != nil {
		return err
	}
	bus.Start()
	defer func() {
		bus.Stop()
		if !flagNoSetup {
			dev.Down()
			fmt.Println("Interface brought down cleanly.")
		}
	}()

	ctx, stop := signalContext()
	defer stop()

	rx := bus.Subscribe(driver.RxBufferSize)
	fmt.Printf("%s\n\n", banner(!flagNoSetup,
		fmt.Sprintf("Listening for CAN frames on %s. Press Ctrl-C to stop.", iface)))

	for {
		select {
		case <-ctx.Done():
			fmt.Printf("\nStopping listen on %s...\n", iface)
			return nil
		case f, ok := <-rx:
			if !ok {
				return nil
			}
			fmt.Println(f.DumpLine(iface))
			if flagDecodeCBOR {
				if diag, ok := decode.CBOR(f.Payload()); ok {
					fmt.Printf("          CBOR: %s\n", diag)
				}
			}
		}
	}
}
