package temporal

// OnsetParams configures envelope-difference onset detection
type OnsetParams struct {
	// FrameWidth is the width in samples of the non-overlapping envelope
	// frames
	FrameWidth int `json:"frame_width"`
	// Threshold is the envelope rise that declares a new onset
	Threshold float64 `json:"threshold"`
}

// DefaultOnsetParams returns the standard onset detection parameters
func DefaultOnsetParams() OnsetParams {
	return OnsetParams{
		FrameWidth: 1600,
		Threshold:  0.125,
	}
}

// OnsetDetector finds note-start sample positions from the peak amplitude
// envelope of an amplitude-normalized signal.
//
// The signal is split into fixed, non-overlapping frames; each frame's
// envelope value is its largest absolute sample, assigned to the frame
// center. An onset is declared at a frame's center when the first
// difference of the envelope exceeds the threshold and no onset was
// declared for the immediately preceding frame (a one-frame refractory
// debounce).
type OnsetDetector struct {
	params   OnsetParams
	envelope *Envelope
}

// NewOnsetDetector creates an onset detector with default parameters
func NewOnsetDetector() *OnsetDetector {
	return NewOnsetDetectorWithParams(DefaultOnsetParams())
}

// NewOnsetDetectorWithParams creates an onset detector with the given
// parameters
func NewOnsetDetectorWithParams(params OnsetParams) *OnsetDetector {
	return &OnsetDetector{
		params:   params,
		envelope: NewEnvelope(),
	}
}

// Detect returns the ascending sample positions where a new note starts
func (od *OnsetDetector) Detect(signal []float64) ([]int, error) {
	values, centers, err := od.envelope.ComputePeak(signal, od.params.FrameWidth)
	if err != nil {
		return nil, err
	}

	// First difference of the envelope; the first entry is defined as 0 so
	// onsets are purely rise-driven.
	diff := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		diff[i] = values[i] - values[i-1]
	}

	onsets := []int{}
	armed := true
	for i := range diff {
		if diff[i] > od.params.Threshold && armed {
			onsets = append(onsets, centers[i])
			armed = false
		} else {
			armed = true
		}
	}

	return onsets, nil
}
