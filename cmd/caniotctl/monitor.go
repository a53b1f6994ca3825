package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/caniot-project/caniot"
	"github.com/caniot-project/caniot/internal/devconfig"
	"github.com/caniot-project/caniot/internal/monitor"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run a read-only HTTP/metrics observer over a device's live traffic",
	RunE:  runMonitor,
}

// monitorViper holds the monitor subcommand's own settings, bound so every
// flag can also be set via a CANIOTCTL_ environment variable (no config
// file is read), independent of the persistent transport flags on rootCmd.
var monitorViper = viper.New()

func init() {
	monitorCmd.Flags().String("listen", ":8080", "HTTP listen address for the monitor server")
	monitorCmd.Flags().String("log-level", "info", "zap log level: debug|info|warn|error")

	_ = monitorViper.BindPFlag("listen", monitorCmd.Flags().Lookup("listen"))
	_ = monitorViper.BindPFlag("log_level", monitorCmd.Flags().Lookup("log-level"))
	monitorViper.SetEnvPrefix("CANIOTCTL")
	monitorViper.AutomaticEnv()

	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	logger, err := newZapLogger(monitorViper.GetString("log_level"))
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	defer logger.Sync()

	store, err := devconfig.Open(configPath)
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}

	driver, err := openDriver()
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	if closer, ok := driver.(io.Closer); ok {
		defer closer.Close()
	}

	api := newDemoAPI(store, func(format string, args ...any) {
		logger.Sugar().Infof(format, args...)
	})
	dev := caniot.NewDevice(store.Identification(), store.NewCoreConfig(), driver, api, nil)
	dev.Init()

	reg := prometheus.NewRegistry()
	addr := monitorViper.GetString("listen")
	srv := monitor.New(addr, dev, reg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		for ctx.Err() == nil {
			dev.Process()
			sec, msec := driver.GetTime()
			wait := dev.TimeUntilNextProcess(uint64(sec)*1000 + uint64(msec))
			if wait > 200*time.Millisecond {
				wait = 200 * time.Millisecond
			}
			time.Sleep(wait)
		}
	}()

	logger.Info("monitor listening", zap.String("addr", addr))
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		logger.Info("monitor shutting down")
		return srv.Shutdown()
	case err := <-errCh:
		return err
	}
}

// newZapLogger builds a zap logger at the given level, using the production
// JSON encoder so monitor output composes with log aggregation; serve logs
// through zap's development (console) config instead.
func newZapLogger(level string) (*zap.Logger, error) {
	var lvl zap.AtomicLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}
