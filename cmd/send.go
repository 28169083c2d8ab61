package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/orinworks/canctl/device"
	"github.com/orinworks/canctl/driver"
	"github.com/orinworks/canctl/manager"
	"github.com/orinworks/canctl/payload"
)

const defaultFrame = "123#abcdabcd"

var (
	flagInterval float64
	flagFrame    string
	flagHexFile  string
	flagLogFile  string
	flagHexID    uint32
	flagChunk    int
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Bring the interface up and transmit frames cyclically",
	RunE:  runSend,
}

func init() {
	f := sendCmd.Flags()
	f.Float64VarP(&flagInterval, "interval", "i", 1.0, "seconds between sends")
	f.StringVarP(&flagFrame, "frame", "f", defaultFrame, "frame to send, cansend text format")
	f.StringVar(&flagHexFile, "hex-file", "", "send the contents of an Intel HEX image instead of --frame")
	f.StringVar(&flagLogFile, "log-file", "", "replay a candump-format log instead of --frame")
	f.Uint32Var(&flagHexID, "hex-id", 0x123, "arbitration ID used with --hex-file")
	f.IntVar(&flagChunk, "chunk", 8, "payload bytes per frame with --hex-file")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	if flagInterval <= 0 {
		return errors.New("--interval must be a positive number")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dc := deviceConfig(cmd, cfg)
	dev, err := device.New(dc)
	if err != nil {
		return err
	}

	// Resolve the frame source before touching hardware so a bad file or
	// frame literal fails fast.
	useCycleJobs := cfg != nil && len(cfg.Cycle) > 0 &&
		flagHexFile == "" && flagLogFile == "" && !cmd.Flags().Changed("frame")
	var source payload.Source
	var jobs []manager.CycleJob
	if useCycleJobs {
		if jobs, err = cfg.Jobs(); err != nil {
			return err
		}
	} else {
		if source, err = frameSource(); err != nil {
			return err
		}
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

	if useCycleJobs {
		m := manager.New(bus)
		for _, j := range jobs {
			if err := m.AddCycleJob(j); err != nil {
				return err
			}
		}
		if err := m.Start(ctx); err != nil {
			return err
		}
		fmt.Printf("%s\n\n", banner(!flagNoSetup,
			fmt.Sprintf("Running %d cyclic jobs on %s. Press Ctrl-C to stop.", len(jobs), iface)))
		<-ctx.Done()
		fmt.Printf("\nStopping sends on %s...\n", iface)
		m.Stop()
		return nil
	}

	interval := time.Duration(flagInterval * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fmt.Printf("%s\n\n", banner(!flagNoSetup,
		fmt.Sprintf("Sending CAN frames on %s every %gs. Press Ctrl-C to stop.", iface, flagInterval)))
	for {
		f, err := source.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println("Source exhausted, all frames sent.")
				return nil
			}
			return err
		}
		if err := bus.Send(f); err != nil {
			log.Printf("Warning: send failed, retrying in %gs: %v", flagInterval, err)
		}
		select {
		case <-ctx.Done():
			fmt.Printf("\nStopping sends on %s...\n", iface)
			return nil
		case <-ticker.C:
		}
	}
}

func frameSource() (payload.Source, error) {
	switch {
	case flagHexFile != "" && flagLogFile != "":
		return nil, errors.New("--hex-file and --log-file are mutually exclusive")
	case flagHexFile != "":
		return payload.LoadHexImage(flagHexFile, flagHexID, flagChunk)
	case flagLogFile != "":
		return payload.LoadLog(flagLogFile)
	default:
		f, err := driver.ParseText(flagFrame)
		if err != nil {
			return nil, err
		}
		return &payload.Fixed{Frame: f}, nil
	}
}
