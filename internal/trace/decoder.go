package trace

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

// Decoder decodes a serialized trace into its raw form. Implementations
// wrap whatever container format the data set uses; the loader only cares
// about samples, sampling rate and start time.
type Decoder interface {
	Decode(r io.Reader) (Raw, error)
}

const rawMagic = "TRC1"

// RawDecoder reads the compact binary trace container used by the test
// data sets. Layout, little-endian:
//
//	bytes 0..3   magic "TRC1"
//	bytes 4..11  float64 sampling rate, Hz
//	bytes 12..19 float64 start time, epoch seconds
//	bytes 20..23 uint32 sample count
//	...          float32 samples
type RawDecoder struct{}

func (RawDecoder) Decode(r io.Reader) (Raw, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return Raw{}, fmt.Errorf("reading magic: %w", err)
	}
	if string(magic[:]) != rawMagic {
		return Raw{}, fmt.Errorf("unexpected magic %q", magic[:])
	}

	var header struct {
		SamplingRate float64
		StartEpoch   float64
		Count        uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return Raw{}, fmt.Errorf("reading header: %w", err)
	}

	data := make([]float32, header.Count)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return Raw{}, fmt.Errorf("reading %d samples: %w", header.Count, err)
	}

	samples := make([]float64, len(data))
	for i, v := range data {
		samples[i] = float64(v)
	}

	return Raw{
		Samples:      samples,
		SamplingRate: header.SamplingRate,
		StartTime:    epochToTime(header.StartEpoch),
	}, nil
}

// Encode writes a raw trace in the RawDecoder container format.
func Encode(w io.Writer, raw Raw) error {
	if _, err := w.Write([]byte(rawMagic)); err != nil {
		return fmt.Errorf("writing magic: %w", err)
	}

	header := struct {
		SamplingRate float64
		StartEpoch   float64
		Count        uint32
	}{
		SamplingRate: raw.SamplingRate,
		StartEpoch:   timeToEpoch(raw.StartTime),
		Count:        uint32(len(raw.Samples)),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	data := make([]float32, len(raw.Samples))
	for i, v := range raw.Samples {
		data[i] = float32(v)
	}
	if err := binary.Write(w, binary.LittleEndian, data); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	return nil
}

// LoadFile decodes and loads a trace from a file. Any decode failure is
// reported as a MalformedTraceError carrying the original cause.
func LoadFile(d Decoder, path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}
	defer f.Close()

	raw, err := d.Decode(f)
	if err != nil {
		return nil, &MalformedTraceError{Reason: fmt.Sprintf("decoding %s", path), Err: err}
	}
	return Load(raw)
}

func epochToTime(sec float64) time.Time {
	s, frac := math.Modf(sec)
	return time.Unix(int64(s), int64(frac*float64(time.Second))).UTC()
}

func timeToEpoch(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
