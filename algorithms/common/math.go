package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Epsilon is the float64 machine epsilon (2^-52), the near-zero guard used
// throughout the pipeline for divisor and degeneracy checks
const Epsilon = 1.0 / (1 << 52)

// RMS calculates the root mean square of the samples using gonum.
// The boolean is false when the input is empty, in which case no
// meaningful value exists.
func RMS(data []float64) (float64, bool) {
	if len(data) == 0 {
		return 0.0, false
	}
	return math.Sqrt(floats.Dot(data, data) / float64(len(data))), true
}

// PeakAmplitude returns the largest absolute sample value (the infinity
// norm), or 0 for an empty buffer.
func PeakAmplitude(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Norm(data, math.Inf(1))
}
