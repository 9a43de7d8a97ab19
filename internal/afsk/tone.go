package afsk

import "math"

const twoPi = 2 * math.Pi

// Tone synthesizes n samples of a sine tone starting at phase and returns
// them with the phase at which the next run must start to stay continuous.
func Tone(freq float64, n int, phase, amplitude float64, sampleRate int) ([]int, float64) {
	return AppendTone(make([]int, 0, n), freq, n, phase, amplitude, sampleRate)
}

// AppendTone is Tone writing into dst
func AppendTone(dst []int, freq float64, n int, phase, amplitude float64, sampleRate int) ([]int, float64) {
	sr := float64(sampleRate)
	for t := 0; t < n; t++ {
		s := amplitude * FullScale * math.Sin(twoPi*freq*float64(t)/sr+phase)
		dst = append(dst, int(s))
	}
	return dst, math.Mod(phase+twoPi*freq*float64(n)/sr, twoPi)
}
