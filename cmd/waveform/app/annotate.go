package app

import (
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"golang.org/x/image/font"
)

const (
	dpi     float64 = 72
	spacing float64 = 1.2
)

// Annotator draws the time scale and the metrics info bar with freetype.
type Annotator struct {
	context  *freetype.Context
	fontSize float64
}

// NewAnnotator loads a TTF font from disk and prepares the drawing context.
func NewAnnotator(fontPath string, fontSize float64) (*Annotator, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}

	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	context := freetype.NewContext()
	context.SetDPI(dpi)
	context.SetFont(parsedFont)
	context.SetFontSize(fontSize)
	context.SetSrc(image.Black)
	context.SetHinting(font.HintingFull)

	return &Annotator{context: context, fontSize: fontSize}, nil
}

func (a *Annotator) Annotate(img *image.RGBA, p *Plot, area image.Rectangle) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	ops := []struct {
		msg string
		fn  func(*image.RGBA, *Plot, image.Rectangle) error
	}{
		{"drawing time scale", a.drawTimeScale},
		{"drawing info", a.drawInfo},
	}

	for _, op := range ops {
		if err := op.fn(img, p, area); err != nil {
			return fmt.Errorf("%s: %w", op.msg, err)
		}
	}
	return nil
}

func (a *Annotator) drawTimeScale(img *image.RGBA, p *Plot, area image.Rectangle) error {
	numLabels := int(float64(area.Dx()) / pixelsPerLabel)
	if numLabels < 2 {
		numLabels = 2
	}

	y := area.Max.Y + tickMarkHeight + int(a.fontSize) + 2
	for i := 0; i <= numLabels; i++ {
		seconds := float64(i) / float64(numLabels) * p.Duration
		label := fmt.Sprintf("%.1fs", seconds)

		x := area.Min.X + i*area.Dx()/numLabels - len(label)*int(a.fontSize)/4
		if _, err := a.context.DrawString(label, freetype.Pt(x, y)); err != nil {
			return err
		}
	}
	return nil
}

func (a *Annotator) drawInfo(img *image.RGBA, p *Plot, area image.Rectangle) error {
	parts := []string{
		fmt.Sprintf("file %d", p.FileID),
		fmt.Sprintf("%s samples @ %gHz", humanize.Comma(int64(len(p.Samples))), p.SamplingRate),
		fmt.Sprintf("max amp %.2f", p.Metrics.MaxAmplitude),
	}

	if p.Arrival != nil {
		parts = append(parts, fmt.Sprintf("P at %.2fs", *p.Arrival))
	}
	if p.Metrics.SNRdB != nil {
		parts = append(parts, fmt.Sprintf("SNR %.2fdB", *p.Metrics.SNRdB))
	}
	if ratio, ok := p.Metrics.EnergyRatio(); ok {
		parts = append(parts, fmt.Sprintf("energy ratio %.2f", ratio))
	}

	y := area.Max.Y + tickMarkHeight + int(a.fontSize*spacing) + int(a.fontSize) + 6
	_, err := a.context.DrawString(strings.Join(parts, "  |  "), freetype.Pt(area.Min.X, y))
	return err
}
