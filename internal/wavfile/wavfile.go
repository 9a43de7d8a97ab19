package wavfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Output format constants
const (
	BitDepth    = 16
	NumChannels = 1
	pcmFormat   = 1 // WAVE_FORMAT_PCM
)

var (
	// ErrIO wraps failures to create, write or rename the output file
	ErrIO = errors.New("wav file I/O failed")
	// ErrSampleRange is returned when a sample does not fit in 16 bits
	ErrSampleRange = errors.New("sample out of 16-bit range")
	// ErrFormat is returned when reading a file that is not mono 16-bit PCM
	ErrFormat = errors.New("unsupported wav format")
)

// Recording is a decoded mono PCM file
type Recording struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Samples    []int
}

// Encode writes samples as a mono 16-bit PCM WAVE stream
func Encode(w io.WriteSeeker, samples []int, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	for i, s := range samples {
		if s > math.MaxInt16 || s < math.MinInt16 {
			return fmt.Errorf("%w: sample %d is %d", ErrSampleRange, i, s)
		}
	}

	enc := wav.NewEncoder(w, sampleRate, BitDepth, NumChannels, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: NumChannels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: BitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("%w: failed to write samples: %w", ErrIO, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("%w: failed to finalize header: %w", ErrIO, err)
	}
	return nil
}

// WriteFile encodes samples to path. The data is written to a temporary
// file in the same directory and renamed into place only once complete,
// so a failed write never leaves a partial file behind.
func WriteFile(path string, samples []int, sampleRate int) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create file in %s: %w", ErrIO, dir, err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err = Encode(tmp, samples, sampleRate); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to close %s: %w", ErrIO, tmpName, err)
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("%w: failed to set permissions on %s: %w", ErrIO, tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: failed to move file into place at %s: %w", ErrIO, path, err)
	}
	return nil
}

// ReadFile decodes a mono 16-bit PCM file written by WriteFile
func ReadFile(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %w", ErrIO, path, err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s is not a valid wav file", ErrFormat, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read PCM data from %s: %w", ErrIO, path, err)
	}

	if dec.WavAudioFormat != pcmFormat || dec.NumChans != NumChannels || dec.BitDepth != BitDepth {
		return nil, fmt.Errorf("%w: format=%d channels=%d bits=%d", ErrFormat, dec.WavAudioFormat, dec.NumChans, dec.BitDepth)
	}

	return &Recording{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Samples:    buf.Data,
	}, nil
}
