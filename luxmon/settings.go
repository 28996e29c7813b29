package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/golux/pkg/calib"
	"github.com/itohio/golux/pkg/filter"
	"github.com/itohio/golux/pkg/lux"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSensorTab(state),
		createFilterTab(state),
		createCalibrationTab(state),
		createOutputTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// submit saves the configuration and restarts a running chain so that the
// new parameters take effect.
func submit(state *appState) {
	if err := state.cfg.Validate(); err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	if state.saveConfig() {
		restartChain(state)
	}
}

func setFloat(dst *float64, text string) {
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		*dst = v
	}
}

func setInt(dst *int, text string) {
	if v, err := strconv.Atoi(text); err == nil {
		*dst = v
	}
}

func setDuration(dst *time.Duration, text string) {
	if v, err := time.ParseDuration(text); err == nil {
		*dst = v
	}
}

// createSensorTab creates the Sensor configuration tab.
func createSensorTab(state *appState) *container.TabItem {
	sourceSelect := widget.NewSelect(lux.Sources, nil)
	sourceSelect.SetSelected(state.cfg.Sensor.Source)

	// Map display name to actual port name
	ports, err := lux.Ports()
	portOptions := []string{}
	portMap := make(map[string]string)
	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	currentPort := state.cfg.Sensor.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	udpEntry := widget.NewEntry()
	udpEntry.SetText(state.cfg.Sensor.UDPAddr)

	combineSelect := widget.NewSelect([]string{
		string(lux.CombineMean),
		string(lux.CombineFirst),
		string(lux.CombineMax),
	}, nil)
	combineSelect.SetSelected(state.cfg.Sensor.Combine)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Source", Widget: sourceSelect},
			{Text: "Serial Port", Widget: portSelect},
			{Text: "UDP Listen Address", Widget: udpEntry},
			{Text: "Combine Sensors", Widget: combineSelect},
		},
		OnSubmit: func() {
			if sourceSelect.Selected != "" {
				state.cfg.Sensor.Source = sourceSelect.Selected
			}
			if portSelect.Selected != "" {
				selectedPort := portMap[portSelect.Selected]
				if selectedPort == "" {
					selectedPort = portSelect.Selected
				}
				state.cfg.Sensor.Port = selectedPort
			}
			if udpEntry.Text != "" {
				state.cfg.Sensor.UDPAddr = udpEntry.Text
			}
			if combineSelect.Selected != "" {
				state.cfg.Sensor.Combine = combineSelect.Selected
			}
			submit(state)
		},
	}

	return container.NewTabItem("Sensor", form)
}

// createFilterTab creates the Filter configuration tab.
func createFilterTab(state *appState) *container.TabItem {
	kinds := filter.Kinds()
	options := make([]string, len(kinds))
	for i, k := range kinds {
		options[i] = string(k)
	}
	kindSelect := widget.NewSelect(options, nil)
	kindSelect.SetSelected(state.cfg.Filter.Kind)

	windowEntry := widget.NewEntry()
	windowEntry.SetText(strconv.Itoa(state.cfg.Filter.Window))

	alphaEntry := widget.NewEntry()
	alphaEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Filter.Alpha))

	orderEntry := widget.NewEntry()
	orderEntry.SetText(strconv.Itoa(state.cfg.Filter.PolyOrder))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Filter", Widget: kindSelect},
			{Text: "Window (samples, SMA/SG)", Widget: windowEntry},
			{Text: "Alpha (EMA)", Widget: alphaEntry},
			{Text: "Polynomial Order (SG)", Widget: orderEntry},
		},
		OnSubmit: func() {
			if kindSelect.Selected != "" {
				state.cfg.Filter.Kind = kindSelect.Selected
			}
			setInt(&state.cfg.Filter.Window, windowEntry.Text)
			setFloat(&state.cfg.Filter.Alpha, alphaEntry.Text)
			setInt(&state.cfg.Filter.PolyOrder, orderEntry.Text)

			if _, err := filter.New(state.cfg.Filter); err != nil {
				dialog.ShowError(err, state.window)
				return
			}
			submit(state)
		},
	}

	return container.NewTabItem("Filter", form)
}

// createCalibrationTab creates the Calibration configuration tab.
func createCalibrationTab(state *appState) *container.TabItem {
	cal := &state.cfg.Calibration

	windowEntry := widget.NewEntry()
	windowEntry.SetText(strconv.Itoa(cal.WindowSize))

	alphaEntry := widget.NewEntry()
	alphaEntry.SetText(fmt.Sprintf("%.3f", cal.BoundsAlpha))

	minEntry := widget.NewEntry()
	minEntry.SetText(fmt.Sprintf("%.1f", cal.InitialMin))

	maxEntry := widget.NewEntry()
	maxEntry.SetText(fmt.Sprintf("%.1f", cal.InitialMax))

	spanEntry := widget.NewEntry()
	spanEntry.SetText(fmt.Sprintf("%g", cal.MinSpan))

	policySelect := widget.NewSelect([]string{
		calib.SpanAnchorMin.String(),
		calib.SpanCentered.String(),
	}, nil)
	policySelect.SetSelected(cal.SpanPolicy)

	strideEntry := widget.NewEntry()
	strideEntry.SetText(strconv.Itoa(cal.Stride))

	fullCheck := widget.NewCheck("", nil)
	fullCheck.SetChecked(cal.RequireFullWindow)

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Window (samples, 0=off)", Widget: windowEntry},
			{Text: "Bounds Alpha", Widget: alphaEntry},
			{Text: "Initial Min (lx)", Widget: minEntry},
			{Text: "Initial Max (lx)", Widget: maxEntry},
			{Text: "Min Span (lx)", Widget: spanEntry},
			{Text: "Span Policy", Widget: policySelect},
			{Text: "Stride (ticks)", Widget: strideEntry},
			{Text: "Require Full Window", Widget: fullCheck},
		},
		OnSubmit: func() {
			setInt(&cal.WindowSize, windowEntry.Text)
			setFloat(&cal.BoundsAlpha, alphaEntry.Text)
			setFloat(&cal.InitialMin, minEntry.Text)
			setFloat(&cal.InitialMax, maxEntry.Text)
			setFloat(&cal.MinSpan, spanEntry.Text)
			if policySelect.Selected != "" {
				cal.SpanPolicy = policySelect.Selected
			}
			setInt(&cal.Stride, strideEntry.Text)
			cal.RequireFullWindow = fullCheck.Checked
			submit(state)
		},
	}

	return container.NewTabItem("Calibration", form)
}

// createOutputTab creates the Output configuration tab.
func createOutputTab(state *appState) *container.TabItem {
	minEntry := widget.NewEntry()
	minEntry.SetText(strconv.Itoa(state.cfg.Output.Min))

	maxEntry := widget.NewEntry()
	maxEntry.SetText(strconv.Itoa(state.cfg.Output.Max))

	periodEntry := widget.NewEntry()
	periodEntry.SetText(state.cfg.Sampling.Period.String())

	historyEntry := widget.NewEntry()
	historyEntry.SetText(state.cfg.Sampling.History.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Duty Min", Widget: minEntry},
			{Text: "Duty Max", Widget: maxEntry},
			{Text: "Tick Period (0=per reading)", Widget: periodEntry},
			{Text: "History", Widget: historyEntry},
		},
		OnSubmit: func() {
			setInt(&state.cfg.Output.Min, minEntry.Text)
			setInt(&state.cfg.Output.Max, maxEntry.Text)
			setDuration(&state.cfg.Sampling.Period, periodEntry.Text)
			setDuration(&state.cfg.Sampling.History, historyEntry.Text)
			submit(state)
		},
	}

	return container.NewTabItem("Output", form)
}

// createMockTab creates the simulated sensor configuration tab.
func createMockTab(state *appState) *container.TabItem {
	m := &state.cfg.Mock

	baseEntry := widget.NewEntry()
	baseEntry.SetText(fmt.Sprintf("%.1f", m.BaseLux))

	amplitudeEntry := widget.NewEntry()
	amplitudeEntry.SetText(fmt.Sprintf("%.1f", m.Amplitude))

	periodEntry := widget.NewEntry()
	periodEntry.SetText(m.Period.String())

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(fmt.Sprintf("%.2f", m.NoiseLevel))

	outlierRateEntry := widget.NewEntry()
	outlierRateEntry.SetText(fmt.Sprintf("%.3f", m.OutlierRate))

	outlierLuxEntry := widget.NewEntry()
	outlierLuxEntry.SetText(fmt.Sprintf("%.0f", m.OutlierLux))

	sampleRateEntry := widget.NewEntry()
	sampleRateEntry.SetText(m.SampleRate.String())

	sensorsEntry := widget.NewEntry()
	sensorsEntry.SetText(strconv.Itoa(m.Sensors))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Base (lx)", Widget: baseEntry},
			{Text: "Amplitude (lx)", Widget: amplitudeEntry},
			{Text: "Period", Widget: periodEntry},
			{Text: "Noise Level (lx)", Widget: noiseEntry},
			{Text: "Outlier Rate", Widget: outlierRateEntry},
			{Text: "Outlier (lx)", Widget: outlierLuxEntry},
			{Text: "Sample Rate", Widget: sampleRateEntry},
			{Text: "Sensors", Widget: sensorsEntry},
		},
		OnSubmit: func() {
			setFloat(&m.BaseLux, baseEntry.Text)
			setFloat(&m.Amplitude, amplitudeEntry.Text)
			setDuration(&m.Period, periodEntry.Text)
			setFloat(&m.NoiseLevel, noiseEntry.Text)
			setFloat(&m.OutlierRate, outlierRateEntry.Text)
			setFloat(&m.OutlierLux, outlierLuxEntry.Text)
			setDuration(&m.SampleRate, sampleRateEntry.Text)
			setInt(&m.Sensors, sensorsEntry.Text)
			submit(state)
		},
	}

	return container.NewTabItem("Mock", form)
}
