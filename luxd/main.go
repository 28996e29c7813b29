// Command luxd runs the lux conditioning pipeline headless: it reads the
// configured sensor node, drives the LED and publishes telemetry to MQTT, a
// CSV file and a websocket live feed.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/itohio/golux/pkg/config"
	"github.com/itohio/golux/pkg/controller"
	"github.com/itohio/golux/pkg/lux"
	"github.com/itohio/golux/pkg/pipeline"
	"github.com/itohio/golux/pkg/sample"
	"github.com/itohio/golux/pkg/telemetry"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"
)

var errStreamClosed = errors.New("sensor stream closed")

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use simulated sensor instead of the configured source")
		filterFlag = flag.String("filter", "", "Filter override: sma, ema or sg")
	)
	flag.Parse()

	log := slog.New(tint.NewHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *portFlag != "" {
		cfg.Sensor.Port = *portFlag
	}
	if *mockFlag {
		cfg.Sensor.Source = "mock"
	}
	if *filterFlag != "" {
		cfg.Filter.Kind = *filterFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("stopped", "error", err)
		os.Exit(1)
	}
	log.Info("stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	mode, err := lux.ParseCombineMode(cfg.Sensor.Combine)
	if err != nil {
		return err
	}
	p, err := pipeline.New(cfg)
	if err != nil {
		return err
	}

	device, err := lux.Open(cfg, log)
	if err != nil {
		return err
	}
	if err := device.Connect(); err != nil {
		return fmt.Errorf("failed to connect to %s sensor: %w", cfg.Sensor.Source, err)
	}
	defer device.Close()

	ctrl := controller.New(cfg, p, device, log)

	sinks, hub, err := openSinks(cfg, ctrl.HandleCommand, log)
	if err != nil {
		return err
	}
	defer sinks.Close()

	// Sinks may block on the network, so publishing runs off the tick path
	// and only the newest record is kept when they fall behind.
	records := make(chan telemetry.Record, 64)
	ctrl.OnUpdate(func(rs []telemetry.Record) {
		if len(rs) == 0 {
			return
		}
		select {
		case records <- rs[len(rs)-1]:
		default:
		}
	})

	samples := sample.NewConverter(mode, 500, log)(device.Samples())
	ticks := sample.NewResampler(cfg.Sampling.Period, 500)(samples)

	log.Info("running",
		"source", cfg.Sensor.Source,
		"filter", cfg.Filter.Kind,
		"span_policy", cfg.Calibration.SpanPolicy,
		"period", cfg.Sampling.Period,
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := ctrl.Run(ctx, ticks)
		switch {
		case err == nil:
			return errStreamClosed
		case errors.Is(err, context.Canceled):
			return nil
		}
		return err
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case r := <-records:
				if err := sinks.Publish(r); err != nil {
					log.Warn("failed to publish telemetry", "error", err)
				}
			}
		}
	})

	if hub != nil {
		g.Go(func() error {
			return hub.ListenAndServe(ctx, cfg.Telemetry.HTTPAddr)
		})
	}

	return g.Wait()
}

// openSinks creates the telemetry sinks enabled in cfg. The returned hub is
// nil when the live feed is disabled.
func openSinks(cfg *config.Config, onCommand telemetry.CommandHandler, log *slog.Logger) (telemetry.Multi, *telemetry.Hub, error) {
	var sinks telemetry.Multi

	if cfg.MQTT.Broker != "" {
		m := telemetry.NewMQTT(cfg.MQTT, onCommand, log)
		if err := m.Connect(); err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, m)
	}

	if cfg.Telemetry.CSVPath != "" {
		c, err := telemetry.NewCSV(cfg.Telemetry.CSVPath)
		if err != nil {
			sinks.Close()
			return nil, nil, err
		}
		sinks = append(sinks, c)
	}

	var hub *telemetry.Hub
	if cfg.Telemetry.HTTPAddr != "" {
		hub = telemetry.NewHub(onCommand, log)
		sinks = append(sinks, hub)
	}

	return sinks, hub, nil
}
