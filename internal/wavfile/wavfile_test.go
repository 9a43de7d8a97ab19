package wavfile

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWriteFile_Header tests the RIFF/WAVE header fields
func TestWriteFile_Header(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	samples := []int{0, 1000, -1000, 32767, -32768}

	require.NoError(t, WriteFile(path, samples, 96000))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 44+len(samples)*2)

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, uint32(len(data)-8), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, uint32(16), binary.LittleEndian.Uint32(data[16:20]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[20:22]), "PCM")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:24]), "mono")
	assert.Equal(t, uint32(96000), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint32(96000*2), binary.LittleEndian.Uint32(data[28:32]), "byte rate")
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[32:34]), "block align")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]))
	assert.Equal(t, "data", string(data[36:40]))
	assert.Equal(t, uint32(len(samples)*2), binary.LittleEndian.Uint32(data[40:44]))

	// Samples are signed little-endian
	for i, s := range samples {
		got := int16(binary.LittleEndian.Uint16(data[44+2*i:]))
		assert.Equal(t, int16(s), got, "sample %d", i)
	}
}

// TestWriteFile_ReadBack tests decoding the written file
func TestWriteFile_ReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readback.wav")
	samples := make([]int, 960)
	for i := range samples {
		samples[i] = (i*37)%65535 - 32767
	}

	require.NoError(t, WriteFile(path, samples, 96000))

	rec, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 96000, rec.SampleRate)
	assert.Equal(t, 1, rec.Channels)
	assert.Equal(t, 16, rec.BitDepth)
	assert.Equal(t, samples, rec.Samples)
}

// TestWriteFile_Errors tests failure modes and that nothing is left behind
func TestWriteFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(dir string) string
		samples []int
		wantErr error
	}{
		{
			name:    "Missing directory",
			path:    func(dir string) string { return filepath.Join(dir, "missing", "out.wav") },
			samples: []int{1, 2, 3},
			wantErr: ErrIO,
		},
		{
			name:    "Sample above range",
			path:    func(dir string) string { return filepath.Join(dir, "high.wav") },
			samples: []int{0, 32768},
			wantErr: ErrSampleRange,
		},
		{
			name:    "Sample below range",
			path:    func(dir string) string { return filepath.Join(dir, "low.wav") },
			samples: []int{-32769},
			wantErr: ErrSampleRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := tt.path(dir)

			err := WriteFile(path, tt.samples, 96000)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "unexpected error: %v", err)
			assert.NoFileExists(t, path)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries, "temporary files must be cleaned up")
		})
	}
}

// TestWriteFile_Overwrite tests that an existing file is replaced whole
func TestWriteFile_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	require.NoError(t, os.WriteFile(path, []byte("old content"), 0644))

	require.NoError(t, WriteFile(path, []int{5, -5}, 48000))

	rec, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 48000, rec.SampleRate)
	assert.Equal(t, []int{5, -5}, rec.Samples)
}

// TestEncode_InvalidSampleRate tests sample rate validation
func TestEncode_InvalidSampleRate(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "x.wav"))
	require.NoError(t, err)
	defer f.Close()

	assert.Error(t, Encode(f, []int{1}, 0))
}

// TestReadFile_Errors tests reading missing and malformed files
func TestReadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "nope.wav"))
	assert.ErrorIs(t, err, ErrIO)

	junk := filepath.Join(dir, "junk.wav")
	require.NoError(t, os.WriteFile(junk, []byte("definitely not a wave file at all"), 0644))
	_, err = ReadFile(junk)
	assert.Error(t, err)
}
