package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// createOverrideControls creates the Auto checkbox and the manual brightness
// slider.
func createOverrideControls(state *appState) fyne.CanvasObject {
	label := widget.NewLabel("0 %")

	brightness := widget.NewSlider(0, 100)
	brightness.Step = 1
	brightness.OnChanged = func(v float64) {
		label.SetText(fmt.Sprintf("%.0f %%", v))
	}
	brightness.OnChangeEnded = func(float64) {
		applyOverride(state)
	}
	state.brightness = brightness

	auto := widget.NewCheck("Auto", nil)
	auto.Checked = true
	auto.OnChanged = func(bool) {
		applyOverride(state)
	}
	state.autoCheck = auto

	setOverrideEnabled(state, false)

	slider := container.NewGridWrap(fyne.NewSize(200, brightness.MinSize().Height), brightness)
	return container.NewHBox(auto, slider, label)
}

// setOverrideEnabled enables the override controls while connected.
func setOverrideEnabled(state *appState, enabled bool) {
	if state.autoCheck == nil {
		return
	}
	if enabled {
		state.autoCheck.Enable()
	} else {
		state.autoCheck.Disable()
	}
	if enabled && !state.autoCheck.Checked {
		state.brightness.Enable()
	} else {
		state.brightness.Disable()
	}
}

// applyOverride pushes the control state to the controller.
func applyOverride(state *appState) {
	setOverrideEnabled(state, state.chain != nil)
	if state.chain == nil {
		return
	}

	ctrl := state.chain.controller
	if state.autoCheck.Checked {
		ctrl.ClearOverride()
		return
	}
	if err := ctrl.SetOverride(state.brightness.Value); err != nil {
		dialog.ShowError(fmt.Errorf("failed to set LED brightness: %w", err), state.window)
	}
}
