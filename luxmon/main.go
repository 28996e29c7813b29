package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/golux/pkg/config"
	"github.com/itohio/golux/pkg/controller"
	"github.com/itohio/golux/pkg/lux"
	"github.com/itohio/golux/pkg/pipeline"
	"github.com/itohio/golux/pkg/sample"
	"github.com/itohio/golux/pkg/scope"
	"github.com/itohio/golux/pkg/telemetry"
	"github.com/lmittmann/tint"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use simulated sensor instead of the configured source")
		filterFlag = flag.String("filter", "", "Filter override: sma, ema or sg")
	)
	flag.Parse()

	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.TimeOnly}))
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

	application := app.NewWithID("com.itohio.golux")

	window := application.NewWindow("Lux Monitor")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		window:     window,
		log:        log,
	}

	toolbar := createToolbar(state)

	state.scopeWidget = scope.New(cfg)

	window.SetContent(container.NewBorder(
		toolbar,
		nil,
		nil,
		nil,
		state.scopeWidget,
	))
	window.SetOnClosed(func() {
		closeChain(state.chain)
	})
	window.ShowAndRun()
}

// chain tracks the components of a running sensor chain for graceful shutdown.
type chain struct {
	device     lux.Device
	controller *controller.Controller
	recorder   *telemetry.CSV
	cancel     context.CancelFunc
	done       chan struct{} // Closed when the controller goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	configPath  string
	scopeWidget *scope.ScopeWidget
	window      fyne.Window
	log         *slog.Logger

	connectBtn *widget.Button
	resetBtn   *widget.Button
	autoCheck  *widget.Check
	brightness *widget.Slider

	chain *chain // nil when disconnected

	// Throttling for scope updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

func (s *appState) connected() bool {
	return s.chain != nil && s.chain.device.IsConnected()
}

// saveConfig writes the configuration and reports failures in a dialog.
func (s *appState) saveConfig() bool {
	if err := s.cfg.Save(s.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), s.window)
		return false
	}
	return true
}

// createToolbar creates the toolbar with Connect, Settings and Reset on the
// left and the LED override controls on the right.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	resetBtn := widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), func() {
		if state.chain != nil {
			state.chain.controller.Reset()
			state.log.Info("calibration reset")
		}
	})
	resetBtn.Disable()
	state.resetBtn = resetBtn

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn, resetBtn),
		createOverrideControls(state),
		nil,
	)
}

// closeChain stops the controller, closes the device and waits for the
// controller goroutine to finish.
func closeChain(c *chain) {
	if c == nil {
		return
	}

	c.cancel()
	if c.device != nil {
		c.device.Close()
	}
	<-c.done

	if c.recorder != nil {
		c.recorder.Close()
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.chain != nil {
		closeChain(state.chain)
		state.chain = nil
		state.resetBtn.Disable()
		setOverrideEnabled(state, false)
		state.log.Info("disconnected", "source", state.cfg.Sensor.Source)
		return
	}

	c, err := openChain(state)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	state.chain = c
	state.resetBtn.Enable()
	setOverrideEnabled(state, true)
	applyOverride(state)
}

// openChain connects the configured sensor and starts the processing chain:
// device -> converter -> resampler -> controller.
func openChain(state *appState) (*chain, error) {
	cfg := state.cfg

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := lux.ParseCombineMode(cfg.Sensor.Combine)
	if err != nil {
		return nil, err
	}
	p, err := pipeline.New(cfg)
	if err != nil {
		return nil, err
	}

	device, err := lux.Open(cfg, state.log)
	if err != nil {
		return nil, err
	}
	if err := device.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s sensor: %w", cfg.Sensor.Source, err)
	}
	state.log.Info("connected", "source", cfg.Sensor.Source, "filter", cfg.Filter.Kind)

	var recorder *telemetry.CSV
	if cfg.Telemetry.CSVPath != "" {
		recorder, err = telemetry.NewCSV(cfg.Telemetry.CSVPath)
		if err != nil {
			device.Close()
			return nil, err
		}
	}

	ctrl := controller.New(cfg, p, device, state.log)

	// Throttle scope updates to ~60 FPS
	const updateInterval = 16 * time.Millisecond
	ctrl.OnUpdate(func(records []telemetry.Record) {
		if recorder != nil && len(records) > 0 {
			if err := recorder.Publish(records[len(records)-1]); err != nil {
				state.log.Warn("failed to record telemetry", "error", err)
			}
		}

		state.updateMu.Lock()
		now := time.Now()
		if now.Sub(state.lastUpdateTime) < updateInterval {
			state.updateMu.Unlock()
			return
		}
		state.lastUpdateTime = now
		state.updateMu.Unlock()

		fyne.Do(func() {
			state.scopeWidget.UpdateData(records)
		})
	})

	samples := sample.NewConverter(mode, 500, state.log)(device.Samples())
	ticks := sample.NewResampler(cfg.Sampling.Period, 500)(samples)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ctrl.Run(ctx, ticks); err != nil && ctx.Err() == nil {
			state.log.Error("controller stopped", "error", err)
		}
	}()

	return &chain{
		device:     device,
		controller: ctrl,
		recorder:   recorder,
		cancel:     cancel,
		done:       done,
	}, nil
}

// restartChain reconnects with the current configuration if connected.
func restartChain(state *appState) {
	if state.chain == nil {
		return
	}
	handleConnect(state)
	handleConnect(state)
}
