package scope

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/golux/pkg/config"
	"github.com/itohio/golux/pkg/sample"
	"github.com/itohio/golux/pkg/telemetry"
)

// ScopeWidget is a custom Fyne widget that plots raw and filtered lux, the
// adaptive bounds and the LED duty over time.
type ScopeWidget struct {
	widget.BaseWidget

	cfg *config.Config

	// Data (protected by mu)
	mu      sync.RWMutex
	records []telemetry.Record
	latest  telemetry.Record
	hasData bool

	// Display buffer (reused for downsampling)
	display []telemetry.Record

	// Auto-scaling
	view view

	maxDisplayPoints int
}

// view is the visible data range.
type view struct {
	yMin, yMax float64 // lux
	xMin, xMax time.Time
	dMin, dMax float64 // duty
}

// New creates a new ScopeWidget instance.
func New(cfg *config.Config) *ScopeWidget {
	s := &ScopeWidget{
		cfg:              cfg,
		display:          make([]telemetry.Record, 0, 1000),
		maxDisplayPoints: 1000,
	}
	s.view = autoScale(nil, cfg.Sampling.History, cfg.Output, time.Now())
	s.ExtendBaseWidget(s)
	s.Refresh()
	return s
}

// UpdateData updates the widget with the record history, oldest first.
// This should be called from the controller callback using fyne.Do().
func (s *ScopeWidget) UpdateData(records []telemetry.Record) {
	s.mu.Lock()

	s.display = sample.Downsample(s.display, records, s.maxDisplayPoints)
	s.records = records
	s.hasData = len(records) > 0
	if s.hasData {
		s.latest = records[len(records)-1]
	}
	s.view = autoScale(s.display, s.cfg.Sampling.History, s.cfg.Output, time.Now())

	s.mu.Unlock()

	// Refresh outside the lock, the renderer takes a read lock.
	s.Refresh()
}

// autoScale computes the visible range of records. The lux axis covers the
// raw and filtered values and the bounds with a 10% margin. The time axis
// spans at least window.
func autoScale(records []telemetry.Record, window time.Duration, out config.OutputConfig, now time.Time) view {
	v := view{dMin: float64(out.Min), dMax: float64(out.Max)}
	if v.dMax <= v.dMin {
		v.dMax = v.dMin + 1
	}

	if len(records) == 0 {
		v.yMin, v.yMax = 0, 1
		v.xMin = now
		v.xMax = now.Add(10 * time.Second)
		return v
	}

	v.yMin, v.yMax = records[0].Raw, records[0].Raw
	for _, r := range records {
		for _, y := range [...]float64{r.Raw, r.Filtered, r.Min, r.Max} {
			if y < v.yMin {
				v.yMin = y
			}
			if y > v.yMax {
				v.yMax = y
			}
		}
	}

	span := v.yMax - v.yMin
	if span == 0 {
		span = 1
	}
	margin := span * 0.1
	v.yMin -= margin
	v.yMax += margin

	v.xMin = records[0].Timestamp
	v.xMax = records[len(records)-1].Timestamp
	if v.xMax.Sub(v.xMin) < window {
		v.xMax = v.xMin.Add(window)
	}
	if !v.xMax.After(v.xMin) {
		v.xMax = v.xMin.Add(time.Second)
	}
	return v
}

// CreateRenderer creates the widget renderer.
func (s *ScopeWidget) CreateRenderer() fyne.WidgetRenderer {
	grid := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &scopeRenderer{
		scope:   s,
		grid:    grid,
		objects: []fyne.CanvasObject{grid},
	}
}
