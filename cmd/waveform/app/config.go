package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"
)

type ImageFormat string

type Config struct {
	DataDir    string
	Extension  string
	LabelPath  string
	FileID     int
	OutputFile string
	Format     ImageFormat
	FontPath   string

	// Arrival overrides the labeled P arrival, in seconds from trace start.
	Arrival *float64

	Filter           bool
	FilterConfigPath string
	LowCut           *float64
	HighCut          *float64
	Order            *int

	NoAnnotations bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format:    ImagePNG,
		Extension: ".trc",
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat string
	var arrival, lowCut, highCut float64
	var order int
	flag.StringVar(&c.DataDir, "d", "", "Path to the trace data directory")
	flag.StringVar(&c.Extension, "ext", c.Extension, "Trace file extension")
	flag.StringVar(&c.LabelPath, "labels", "", "Path to the P arrival label table (CSV)")
	flag.IntVar(&c.FileID, "id", 0, "File ID to render")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&c.FontPath, "font", "", "Path to a TTF font for annotations")
	flag.Float64Var(&arrival, "arrival", 0, "Manual P arrival override, seconds from trace start")
	flag.BoolVar(&c.Filter, "filter", false, "Apply the band-pass filter before rendering")
	flag.StringVar(&c.FilterConfigPath, "filter-config", "", "Path to a persisted filter configuration (JSON)")
	flag.Float64Var(&lowCut, "low", 0, "Band-pass low cutoff in Hz")
	flag.Float64Var(&highCut, "high", 0, "Band-pass high cutoff in Hz")
	flag.IntVar(&order, "order", 0, "Band-pass filter order")
	flag.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as time scale and metrics")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "arrival":
			c.Arrival = &arrival
		case "low":
			c.LowCut = &lowCut
		case "high":
			c.HighCut = &highCut
		case "order":
			c.Order = &order
		}
	})

	var err error
	if c.DataDir == "" {
		err = errors.New("data directory is required")
	} else if c.FileID <= 0 {
		err = errors.New("file ID is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
