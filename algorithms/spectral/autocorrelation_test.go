package spectral

import (
	"math"
	"testing"
)

// directAutocorrelation is the O(N^2) reference the FFT path must match.
func directAutocorrelation(frame []float64) []float64 {
	autoc := make([]float64, len(frame))
	for tau := range frame {
		sum := 0.0
		for i := 0; i < len(frame)-tau; i++ {
			sum += frame[i] * frame[i+tau]
		}
		autoc[tau] = sum
	}
	return autoc
}

func TestAutocorrelation_ComputeMatchesDirectSum(t *testing.T) {
	t.Parallel()

	frames := [][]float64{
		{1.0},
		{1.0, 2.0, 3.0, 4.0},
		{0.5, -0.25, 0.75, -1.0, 0.125, 0.0, -0.5, 1.0},
	}

	ac := NewAutocorrelation()
	for _, frame := range frames {
		got := ac.Compute(frame)
		want := directAutocorrelation(frame)

		if len(got) != len(frame) {
			t.Fatalf("len(Compute()) = %d, want %d", len(got), len(frame))
		}
		for tau := range want {
			if math.Abs(got[tau]-want[tau]) > 1e-9 {
				t.Errorf("Compute()[%d] = %v, want %v", tau, got[tau], want[tau])
			}
		}
	}
}

func TestAutocorrelation_ComputeEmptyFrame(t *testing.T) {
	t.Parallel()

	ac := NewAutocorrelation()
	if got := ac.Compute(nil); len(got) != 0 {
		t.Errorf("Compute(nil) = %v, want empty", got)
	}
}

func TestAutocorrelation_SquareSums(t *testing.T) {
	t.Parallel()

	ac := NewAutocorrelation()
	got := ac.SquareSums([]float64{1.0, 2.0, 3.0})

	// tau=0: (1+1)+(4+4)+(9+9) = 28
	// tau=1: (1+4)+(4+9)       = 18
	// tau=2: (1+9)             = 10
	want := []float64{28.0, 18.0, 10.0}

	if len(got) != len(want) {
		t.Fatalf("len(SquareSums()) = %d, want %d", len(got), len(want))
	}
	for tau := range want {
		if got[tau] != want[tau] {
			t.Errorf("SquareSums()[%d] = %v, want %v", tau, got[tau], want[tau])
		}
	}
}

func TestAutocorrelation_NSDFLagZeroIsOne(t *testing.T) {
	t.Parallel()

	frame := make([]float64, 256)
	for i := range frame {
		frame[i] = math.Sin(2 * math.Pi * float64(i) / 32.0)
	}

	ac := NewAutocorrelation()
	nsdf := ac.NSDF(frame)

	if len(nsdf) != len(frame) {
		t.Fatalf("len(NSDF()) = %d, want %d", len(nsdf), len(frame))
	}
	if math.Abs(nsdf[0]-1.0) > 1e-9 {
		t.Errorf("NSDF()[0] = %v, want 1", nsdf[0])
	}
}

func TestAutocorrelation_NSDFIsBounded(t *testing.T) {
	t.Parallel()

	frame := make([]float64, 200)
	for i := range frame {
		frame[i] = math.Sin(2*math.Pi*float64(i)/25.0) + 0.25*math.Sin(2*math.Pi*float64(i)/5.0)
	}

	ac := NewAutocorrelation()
	for tau, v := range ac.NSDF(frame) {
		if v > 1.0+1e-9 || v < -1.0-1e-9 {
			t.Errorf("NSDF()[%d] = %v, want within [-1, 1]", tau, v)
		}
	}
}

func TestAutocorrelation_NSDFSilentFrameIsZero(t *testing.T) {
	t.Parallel()

	ac := NewAutocorrelation()
	for tau, v := range ac.NSDF(make([]float64, 128)) {
		if v != 0.0 {
			t.Errorf("NSDF()[%d] = %v, want 0 for a silent frame", tau, v)
		}
	}
}

func TestAutocorrelation_NSDFPeaksNearPeriod(t *testing.T) {
	t.Parallel()

	// 100 Hz sine at 44100 Hz: period = 441 samples.
	frame := make([]float64, 2048)
	for i := range frame {
		frame[i] = math.Sin(2 * math.Pi * 100.0 * float64(i) / 44100.0)
	}

	ac := NewAutocorrelation()
	nsdf := ac.NSDF(frame)

	bestLag := 0
	bestValue := math.Inf(-1)
	for tau := 300; tau < 600; tau++ {
		if nsdf[tau] > bestValue {
			bestValue = nsdf[tau]
			bestLag = tau
		}
	}

	if bestLag < 439 || bestLag > 443 {
		t.Errorf("NSDF peak lag = %d, want near 441", bestLag)
	}
	if bestValue < 0.9 {
		t.Errorf("NSDF peak value = %v, want > 0.9", bestValue)
	}
}
