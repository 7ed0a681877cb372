package spectral

import (
	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps the go-dsp transforms behind the narrow surface the
// autocorrelation engine needs.
//
// go-dsp's forward transform is unnormalized and its inverse divides by the
// transform length, so a forward/inverse round trip scales the signal by
// 1/N overall. The autocorrelation scaling depends on this convention.
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Forward transforms a real signal. go-dsp handles all lengths, including
// non-powers of two.
func (f *FFT) Forward(signal []float64) []complex128 {
	if len(signal) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(signal)
}

// Inverse transforms a spectrum back to the complex time domain.
func (f *FFT) Inverse(spectrum []complex128) []complex128 {
	if len(spectrum) == 0 {
		return []complex128{}
	}

	return fft.IFFT(spectrum)
}

// InverseReal transforms a spectrum back and keeps the real part. For a
// power spectrum the imaginary parts are numeric noise.
func (f *FFT) InverseReal(spectrum []complex128) []float64 {
	timeDomain := f.Inverse(spectrum)

	signal := make([]float64, len(timeDomain))
	for i, v := range timeDomain {
		signal[i] = real(v)
	}

	return signal
}
