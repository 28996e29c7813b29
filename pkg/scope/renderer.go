package scope

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/itohio/golux/pkg/telemetry"
)

var (
	colorGrid     = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	colorAxis     = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	colorRaw      = color.RGBA{R: 255, G: 165, B: 0, A: 255}   // Orange
	colorFiltered = color.RGBA{R: 100, G: 200, B: 255, A: 255} // Light blue
	colorBounds   = color.RGBA{R: 0, G: 100, B: 200, A: 255}   // Dark blue
	colorDuty     = color.RGBA{R: 120, G: 220, B: 120, A: 255} // Green
	colorLabel    = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

const (
	marginLeft   = float32(60)
	marginRight  = float32(50)
	marginTop    = float32(20)
	marginBottom = float32(40)
)

// scopeRenderer renders the scope widget.
type scopeRenderer struct {
	scope *ScopeWidget

	// Background
	grid *canvas.Rectangle

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// plot maps data coordinates onto the drawing area.
type plot struct {
	x, y, w, h float32
	v          view
}

func (p plot) px(t time.Time) float32 {
	return p.x + float32(t.Sub(p.v.xMin).Seconds()/p.v.xMax.Sub(p.v.xMin).Seconds())*p.w
}

func (p plot) py(lux float64) float32 {
	return p.y + p.h - float32((lux-p.v.yMin)/(p.v.yMax-p.v.yMin))*p.h
}

func (p plot) pd(duty float64) float32 {
	return p.y + p.h - float32((duty-p.v.dMin)/(p.v.dMax-p.v.dMin))*p.h
}

// MinSize returns the minimum size of the widget.
func (r *scopeRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *scopeRenderer) Layout(size fyne.Size) {
	r.grid.Resize(size)

	if r.lastSize != size {
		r.lastSize = size
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh rebuilds the plot from the current display buffer.
func (r *scopeRenderer) Refresh() {
	r.scope.mu.RLock()
	records := r.scope.display
	latest := r.scope.latest
	hasData := r.scope.hasData
	v := r.scope.view
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	r.objects = []fyne.CanvasObject{r.grid}

	p := plot{
		x: marginLeft,
		y: marginTop,
		w: size.Width - marginLeft - marginRight,
		h: size.Height - marginTop - marginBottom,
		v: v,
	}

	r.drawGrid(p)

	if len(records) > 1 {
		r.drawTrace(p, records, colorBounds, 1, func(rec telemetry.Record) float32 { return p.py(rec.Min) })
		r.drawTrace(p, records, colorBounds, 1, func(rec telemetry.Record) float32 { return p.py(rec.Max) })
		r.drawTrace(p, records, colorDuty, 1, func(rec telemetry.Record) float32 { return p.pd(float64(rec.Command)) })
		r.drawTrace(p, records, colorRaw, 1.5, func(rec telemetry.Record) float32 { return p.py(rec.Raw) })
		r.drawTrace(p, records, colorFiltered, 2.5, func(rec telemetry.Record) float32 { return p.py(rec.Filtered) })
	}

	if hasData {
		r.drawStatus(p, latest)
	}
}

// drawGrid draws the grid with lux labels on the left, duty labels on the
// right and elapsed time below.
func (r *scopeRenderer) drawGrid(p plot) {
	numHLines := 8
	for i := range numHLines + 1 {
		y := p.y + float32(i)*p.h/float32(numHLines)
		r.addLine(fyne.NewPos(p.x, y), fyne.NewPos(p.x+p.w, y), colorGrid, 1)

		lux := p.v.yMax - float64(i)*(p.v.yMax-p.v.yMin)/float64(numHLines)
		r.addText(formatLux(lux), fyne.NewPos(p.x-5, y-6), colorAxis, 10, fyne.TextAlignTrailing)

		duty := p.v.dMax - float64(i)*(p.v.dMax-p.v.dMin)/float64(numHLines)
		r.addText(strconv.Itoa(int(math.Round(duty))), fyne.NewPos(p.x+p.w+5, y-6), colorDuty, 10, fyne.TextAlignLeading)
	}

	numVLines := 10
	span := p.v.xMax.Sub(p.v.xMin)
	for i := range numVLines + 1 {
		x := p.x + float32(i)*p.w/float32(numVLines)
		r.addLine(fyne.NewPos(x, p.y), fyne.NewPos(x, p.y+p.h), colorGrid, 1)

		offset := span * time.Duration(i) / time.Duration(numVLines)
		r.addText(formatTime(offset), fyne.NewPos(x-20, p.y+p.h+5), colorAxis, 10, fyne.TextAlignCenter)
	}
}

// drawTrace draws connected line segments through y(record) for each record.
func (r *scopeRenderer) drawTrace(p plot, records []telemetry.Record, c color.Color, width float32, y func(telemetry.Record) float32) {
	prev := fyne.NewPos(p.px(records[0].Timestamp), y(records[0]))
	for _, rec := range records[1:] {
		next := fyne.NewPos(p.px(rec.Timestamp), y(rec))
		r.addLine(prev, next, c, width)
		prev = next
	}
}

// drawStatus prints the newest values in the top left corner.
func (r *scopeRenderer) drawStatus(p plot, latest telemetry.Record) {
	lines := []struct {
		text string
		c    color.Color
	}{
		{"raw " + formatLux(latest.Raw), colorRaw},
		{"filtered " + formatLux(latest.Filtered), colorFiltered},
		{"bounds " + formatLux(latest.Min) + " .. " + formatLux(latest.Max), colorBounds},
		{fmt.Sprintf("duty %d (%s)", latest.Command, latest.Mode), colorDuty},
	}
	for i, l := range lines {
		r.addText(l.text, fyne.NewPos(p.x+10, p.y+10+float32(i)*14), l.c, 11, fyne.TextAlignLeading)
	}
}

func (r *scopeRenderer) addLine(a, b fyne.Position, c color.Color, width float32) {
	line := canvas.NewLine(c)
	line.Position1 = a
	line.Position2 = b
	line.StrokeWidth = width
	r.objects = append(r.objects, line)
}

func (r *scopeRenderer) addText(s string, pos fyne.Position, c color.Color, size float32, align fyne.TextAlign) {
	text := canvas.NewText(s, c)
	text.TextSize = size
	text.Alignment = align
	text.Move(pos)
	r.objects = append(r.objects, text)
}

// Objects returns all canvas objects for rendering.
func (r *scopeRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *scopeRenderer) Destroy() {}

func formatLux(v float64) string {
	switch a := math.Abs(v); {
	case a >= 1000:
		return strconv.FormatFloat(v, 'f', 0, 64) + " lx"
	case a >= 10:
		return strconv.FormatFloat(v, 'f', 1, 64) + " lx"
	default:
		return strconv.FormatFloat(v, 'f', 2, 64) + " lx"
	}
}

func formatTime(d time.Duration) string {
	if d < time.Second {
		return strconv.FormatFloat(d.Seconds(), 'f', 2, 64) + "s"
	}
	if d >= time.Minute {
		return strconv.FormatFloat(d.Minutes(), 'f', 1, 64) + "m"
	}
	return strconv.FormatFloat(d.Seconds(), 'f', 1, 64) + "s"
}
