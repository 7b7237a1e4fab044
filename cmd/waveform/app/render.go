package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"time"

	"github.com/seislab/pwave-audit/internal/metrics"
)

const (
	defaultPlotWidth  = 1200
	defaultPlotHeight = 360

	// Default border sizes in pixels
	defaultTopBorder    = 20
	defaultLeftBorder   = 20
	defaultBottomBorder = 60
	defaultRightBorder  = 20

	tickMarkHeight  = 5
	pixelsPerLabel  = 150.0
	defaultFontSize = 12.0
)

var (
	traceColor    = color.RGBA{R: 0x1f, G: 0x4e, B: 0x79, A: 0xff}
	filteredColor = color.RGBA{R: 0x2e, G: 0x8b, B: 0x57, A: 0xff}
	arrivalColor  = color.RGBA{R: 0xcc, G: 0x00, B: 0x00, A: 0xff}
	zeroLineColor = color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}
	axisColor     = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
)

// Plot is everything the renderer needs for one trace image.
type Plot struct {
	FileID       int
	Samples      []float64 // Normalized trace
	Filtered     []float64 // Optional band-passed overlay
	SamplingRate float64
	StartTime    time.Time
	Duration     float64
	Arrival      *float64 // Seconds from trace start, nil without a reference
	Metrics      metrics.Metrics
}

// BorderConfig defines the sizes of white space around the waveform
type BorderConfig struct {
	Top    int
	Left   int
	Bottom int // Space for time scale and the info bar
	Right  int
}

// RenderConfig holds the configuration options for waveform visualization
type RenderConfig struct {
	Width    int
	Height   int
	FontPath string
	FontSize float64

	BorderConfig  BorderConfig
	NoAnnotations bool
}

// WaveformRenderer draws a trace with its P arrival marker into an image.
type WaveformRenderer struct {
	config    RenderConfig
	annotator *Annotator
}

// NewWaveformRenderer creates a waveform renderer with the given
// configuration. Annotations require a font path; without one the image
// is rendered bare.
func NewWaveformRenderer(config RenderConfig) (*WaveformRenderer, error) {
	if config.Width == 0 {
		config.Width = defaultPlotWidth
	}
	if config.Height == 0 {
		config.Height = defaultPlotHeight
	}
	if config.FontSize == 0 {
		config.FontSize = defaultFontSize
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	r := WaveformRenderer{config: config}

	if config.FontPath != "" && !config.NoAnnotations {
		annotator, err := NewAnnotator(config.FontPath, config.FontSize)
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		r.annotator = annotator
	}

	return &r, nil
}

// Render creates an image of the trace with the arrival marked.
func (r *WaveformRenderer) Render(p *Plot) (*image.RGBA, error) {
	if len(p.Samples) == 0 {
		return nil, fmt.Errorf("nothing to render: empty trace")
	}

	fullWidth := r.config.Width + r.config.BorderConfig.Left + r.config.BorderConfig.Right
	fullHeight := r.config.Height + r.config.BorderConfig.Top + r.config.BorderConfig.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := image.Rect(
		r.config.BorderConfig.Left,
		r.config.BorderConfig.Top,
		r.config.BorderConfig.Left+r.config.Width,
		r.config.BorderConfig.Top+r.config.Height,
	)

	scale := amplitudeScale(p)

	drawHLine(img, area.Min.X, area.Max.X, area.Min.Y+area.Dy()/2, zeroLineColor)
	drawEnvelope(img, area, p.Samples, scale, traceColor)
	if len(p.Filtered) > 0 {
		drawEnvelope(img, area, p.Filtered, scale, filteredColor)
	}
	r.drawArrivalMarker(img, area, p)
	r.drawTimeTicks(img, area, p)

	if r.annotator != nil {
		if err := r.annotator.Annotate(img, p, area); err != nil {
			return nil, fmt.Errorf("annotating waveform: %w", err)
		}
	}

	return img, nil
}

// amplitudeScale returns the symmetric amplitude that maps to the plot
// edges, covering both the raw and filtered traces.
func amplitudeScale(p *Plot) float64 {
	maxAbs := p.Metrics.MaxAmplitude
	for _, v := range p.Filtered {
		maxAbs = math.Max(maxAbs, math.Abs(v))
	}
	if maxAbs == 0 {
		return 1
	}
	return maxAbs
}

// drawEnvelope renders a min/max amplitude envelope, one vertical segment
// per pixel column. This keeps long traces readable at any width.
func drawEnvelope(img *image.RGBA, area image.Rectangle, samples []float64, scale float64, c color.RGBA) {
	width := area.Dx()
	mid := area.Min.Y + area.Dy()/2
	half := float64(area.Dy()/2 - 2)

	for x := 0; x < width; x++ {
		lo := x * len(samples) / width
		hi := (x + 1) * len(samples) / width
		if hi <= lo {
			hi = lo + 1
		}
		if hi > len(samples) {
			hi = len(samples)
		}

		minV, maxV := samples[lo], samples[lo]
		for _, v := range samples[lo:hi] {
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
		}

		yTop := mid - int(maxV/scale*half)
		yBottom := mid - int(minV/scale*half)
		drawVLine(img, area.Min.X+x, yTop, yBottom, c)
	}
}

func (r *WaveformRenderer) drawArrivalMarker(img *image.RGBA, area image.Rectangle, p *Plot) {
	if p.Arrival == nil || p.Duration <= 0 {
		return
	}
	if *p.Arrival < 0 || *p.Arrival > p.Duration {
		return // marker would fall outside the plotted window
	}

	x := area.Min.X + int(*p.Arrival/p.Duration*float64(area.Dx()))
	if x >= area.Max.X {
		x = area.Max.X - 1
	}
	drawVLine(img, x, area.Min.Y, area.Max.Y, arrivalColor)
}

func (r *WaveformRenderer) drawTimeTicks(img *image.RGBA, area image.Rectangle, p *Plot) {
	numLabels := int(float64(area.Dx()) / pixelsPerLabel)
	if numLabels < 2 {
		numLabels = 2
	}

	for i := 0; i <= numLabels; i++ {
		x := area.Min.X + i*area.Dx()/numLabels
		if x >= area.Max.X {
			x = area.Max.X - 1
		}
		drawVLine(img, x, area.Max.Y, area.Max.Y+tickMarkHeight, axisColor)
	}
}

func drawVLine(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x, y, c)
	}
}

func drawHLine(img *image.RGBA, x0, x1, y int, c color.RGBA) {
	for x := x0; x < x1; x++ {
		img.SetRGBA(x, y, c)
	}
}
