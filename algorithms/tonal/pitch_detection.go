package tonal

import (
	"github.com/RyanBlaney/sonido-scribe/algorithms/common"
	"github.com/RyanBlaney/sonido-scribe/algorithms/spectral"
)

// PitchEstimator estimates the fundamental frequency of a single audio
// frame. The boolean is false when no pitch was detected, keeping an absent
// pitch distinguishable from any real frequency.
type PitchEstimator interface {
	EstimatePitch(samples []float64) (float64, bool)
}

// peak is a candidate location and height on the NSDF curve
type peak struct {
	lag   float64
	value float64
}

// MPM implements the McLeod Pitch Method.
//
// The NSDF of the frame is scanned for interpolated local maxima, one per
// non-negative lobe after the first zero crossing. The chosen candidate is
// the FIRST one whose height exceeds threshold times the highest raw peak,
// not the tallest one: taking the shortest plausible period biases the
// estimate toward the fundamental over its harmonics.
//
// References:
// - McLeod, P., Wyvill, G. (2005). "A smarter way to find pitch"
type MPM struct {
	threshold  float64
	sampleRate int
	autocorr   *spectral.Autocorrelation
}

// NewMPM creates a McLeod Pitch Method estimator.
//
// The threshold is the fraction of the global peak height a candidate must
// exceed to be accepted; 0.7 is the usual choice. The sample rate is that of
// the audio the estimator will be used on.
func NewMPM(threshold float64, sampleRate int) *MPM {
	return &MPM{
		threshold:  threshold,
		sampleRate: sampleRate,
		autocorr:   spectral.NewAutocorrelation(),
	}
}

// EstimatePitch attempts to detect the pitch of the samples using the
// McLeod Pitch Method. The boolean is false when no pitch was found.
func (m *MPM) EstimatePitch(samples []float64) (float64, bool) {
	nsdf := m.autocorr.NSDF(samples)

	best, ok := m.pickPeak(nsdf)
	if !ok {
		return 0, false
	}

	return float64(m.sampleRate) / best.lag, true
}

// pickPeak runs the McLeod/Wyvill peak picking over the NSDF.
//
// The scan starts after the initial positive run (the zero-lag region).
// Within each maximal run of non-negative values it tracks the highest
// strict local maximum and its quadratic refinement; a failed interpolation
// keeps the lobe's previous refined peak. The global maximum is tracked on
// raw values, candidate heights on refined ones.
func (m *MPM) pickPeak(nsdf []float64) (peak, bool) {
	start := 0
	for start < len(nsdf) && nsdf[start] > 0 {
		start++
	}

	var candidates []peak
	maxValue := 0.0

	i := start
	for i < len(nsdf) {
		if nsdf[i] < 0 {
			i++
			continue
		}

		var interpPeak peak
		localValue := 0.0

		for i < len(nsdf) && nsdf[i] >= 0 {
			if nsdf[i] > localValue && i > 0 && i < len(nsdf)-1 &&
				nsdf[i-1] < nsdf[i] && nsdf[i+1] < nsdf[i] {
				localValue = nsdf[i]

				if x, y, ok := common.QuadraticVertex(
					float64(i-1), nsdf[i-1],
					float64(i), nsdf[i],
					float64(i+1), nsdf[i+1],
				); ok {
					interpPeak = peak{lag: x, value: y}
				}

				if localValue > maxValue {
					maxValue = localValue
				}
			}
			i++
		}

		if interpPeak.value > 0 {
			candidates = append(candidates, interpPeak)
		}
		i++
	}

	for _, candidate := range candidates {
		if candidate.value > m.threshold*maxValue {
			return candidate, true
		}
	}

	return peak{}, false
}
