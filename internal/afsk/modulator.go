package afsk

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// Modulator turns line bits into a filtered 16-bit sample buffer
type Modulator struct {
	params Params
	logger *logrus.Logger
}

// NewModulator creates a modulator for the given parameters
func NewModulator(params Params, logger *logrus.Logger) (*Modulator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Modulator{params: params, logger: logger}, nil
}

// Params returns the modulator configuration
func (m *Modulator) Params() Params {
	return m.params
}

// Modulate synthesizes one tone run per bit, mark for 1 and space for 0,
// carrying the phase from each run into the next
func (m *Modulator) Modulate(bits []uint8) []int {
	spb := m.params.SamplesPerBit()
	samples := make([]int, 0, len(bits)*spb)

	phase := 0.0
	for _, bit := range bits {
		freq := m.params.SpaceHz
		if bit == 1 {
			freq = m.params.MarkHz
		}
		samples, phase = AppendTone(samples, freq, spb, phase, m.params.Amplitude, m.params.SampleRate)
	}

	return samples
}

// Encode runs the full pipeline for a wrapped transmission: bitstream,
// modulation, normalization and high-pass filtering
func (m *Modulator) Encode(frame []byte) []int {
	bits := Bitstream(frame, m.params.SyncPairs)
	samples := m.Modulate(bits)

	peak := Normalize(samples)
	HighPass(samples, m.params.HighPassCutoff, m.params.SampleRate)

	m.logger.WithFields(logrus.Fields{
		"frame_bytes": len(frame),
		"bits":        len(bits),
		"samples":     len(samples),
		"raw_peak":    peak,
		"duration":    fmt.Sprintf("%.3fs", float64(len(samples))/float64(m.params.SampleRate)),
	}).Debug("Modulated transmission")

	return samples
}

// Normalize scales samples in place so the loudest reaches full scale.
// It returns the peak absolute value found before scaling; empty and
// silent buffers are left untouched.
func Normalize(samples []int) int {
	peak := 0
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	if peak == 0 {
		return 0
	}

	gain := float64(FullScale) / float64(peak)
	for i, s := range samples {
		samples[i] = int(float64(s) * gain)
	}
	return peak
}

// HighPass applies the single-pole high-pass filter in place.
//
//	y[n] = alpha * (x[n-1] + x[n] - y[n-1])
//
// with x[-1] = 0 and, for the first sample only, x[0] standing in for the
// missing y[-1]. Outputs are truncated to integers before being fed back.
func HighPass(samples []int, cutoff float64, sampleRate int) {
	rc := 1.0 / (cutoff * 2 * math.Pi)
	alpha := rc / (rc + 1.0/float64(sampleRate))

	prevIn := 0.0
	for i, s := range samples {
		x := float64(s)
		prevOut := x
		if i > 0 {
			prevOut = float64(samples[i-1])
		}
		samples[i] = int(alpha * (prevIn + x - prevOut))
		prevIn = x
	}
}
