package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/caniot-project/caniot"
	"github.com/caniot-project/caniot/internal/devconfig"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a simulated CANIOT device's cooperative loop against a transport",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := devconfig.Open(configPath)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	driver, err := openDriver()
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	if closer, ok := driver.(io.Closer); ok {
		defer closer.Close()
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer logger.Sync()

	api := newDemoAPI(store, func(format string, args ...any) {
		logger.Sugar().Infof(format, args...)
	})

	dev := caniot.NewDevice(store.Identification(), store.NewCoreConfig(), driver, api, startupAttrKeys())
	dev.Init()
	logger.Info("listening", zap.String("did", dev.Did().String()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			logger.Info("shutting down")
			return nil
		default:
		}

		dev.Process()

		sec, msec := driver.GetTime()
		nowMs := uint64(sec)*1000 + uint64(msec)
		wait := dev.TimeUntilNextProcess(nowMs)
		if wait > 200*time.Millisecond {
			wait = 200 * time.Millisecond
		}
		time.Sleep(wait)
	}
}

// startupAttrKeys is the ordered set of attribute keys a freshly-started
// demo device publishes once before settling into normal telemetry, so a
// monitor session has immediate identification data to show: did, version
// and name, the first three attributes of the identification section.
func startupAttrKeys() []caniot.AttrKey {
	return []caniot.AttrKey{
		caniot.MakeAttrKey(caniot.SectionIndexIdentification, 0, 0),
		caniot.MakeAttrKey(caniot.SectionIndexIdentification, 1, 0),
		caniot.MakeAttrKey(caniot.SectionIndexIdentification, 2, 0),
	}
}
