package spectral

import (
	"math/cmplx"

	"github.com/RyanBlaney/sonido-scribe/algorithms/common"
)

// Autocorrelation computes the autocorrelation and the normalized square
// difference function (NSDF) of a single audio frame.
//
// The autocorrelation uses the Wiener-Khinchin method: the frame is
// zero-padded to twice its length, transformed, multiplied bin by bin with
// its complex conjugate, and transformed back. With the FFT wrapper's
// scaling convention the value at lag tau is the plain product sum
// sum_i x[i]*x[i+tau] over the overlapping region.
//
// References:
//   - McLeod, P., Wyvill, G. "A Smarter Way to Find Pitch" (2005)
//   - Wiener-Khinchin theorem (autocorrelation via the power spectrum)
type Autocorrelation struct {
	fft *FFT
}

// NewAutocorrelation creates a new autocorrelation engine
func NewAutocorrelation() *Autocorrelation {
	return &Autocorrelation{
		fft: NewFFT(),
	}
}

// Compute returns the autocorrelation of the frame, one value per lag in
// [0, len(frame))
func (ac *Autocorrelation) Compute(frame []float64) []float64 {
	if len(frame) == 0 {
		return []float64{}
	}

	// Zero-pad to twice the frame length so the circular correlation of
	// the padded signal equals the linear correlation of the frame.
	fftLength := 2 * len(frame)
	padded := make([]float64, fftLength)
	copy(padded, frame)

	spectrum := ac.fft.Forward(padded)

	powerSpectrum := make([]complex128, len(spectrum))
	for i, bin := range spectrum {
		powerSpectrum[i] = bin * cmplx.Conj(bin)
	}

	autoc := ac.fft.InverseReal(powerSpectrum)

	return autoc[:len(frame)]
}

// SquareSums returns, for each lag tau, the sum of x[i]^2 + x[i+tau]^2 over
// the region where the frame overlaps its shifted copy. These are the
// divisors of the NSDF.
func (ac *Autocorrelation) SquareSums(frame []float64) []float64 {
	sqSums := make([]float64, len(frame))

	for tau := range frame {
		sum := 0.0
		for i := 0; i < len(frame)-tau; i++ {
			sum += frame[i]*frame[i] + frame[i+tau]*frame[i+tau]
		}
		sqSums[tau] = sum
	}

	return sqSums
}

// NSDF returns the normalized square difference function of the frame, as
// described by McLeod and Wyvill. The number of values equals the number of
// samples. Divisors at or below machine epsilon are floored to 1, so silent
// frames yield a flat NSDF of zeros rather than a division by near-zero.
func (ac *Autocorrelation) NSDF(frame []float64) []float64 {
	autoc := ac.Compute(frame)
	sqSums := ac.SquareSums(frame)

	nsdf := make([]float64, len(frame))
	for tau := range frame {
		sqSum := 1.0
		if sqSums[tau] > common.Epsilon {
			sqSum = sqSums[tau]
		}
		nsdf[tau] = 2.0 * autoc[tau] / sqSum
	}

	return nsdf
}
