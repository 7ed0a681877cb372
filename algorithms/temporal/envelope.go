package temporal

import (
	"github.com/RyanBlaney/sonido-scribe/algorithms/common"
)

// Envelope extracts the peak amplitude envelope of a signal
type Envelope struct{}

// NewEnvelope creates a new envelope extractor
func NewEnvelope() *Envelope {
	return &Envelope{}
}

// ComputePeak computes the peak envelope over fixed, non-overlapping frames
// of the given width: one value per frame, the largest absolute sample in
// that frame, assigned to the frame's center position. A trailing partial
// frame is dropped, so the envelope never covers the final sub-width
// samples.
func (e *Envelope) ComputePeak(signal []float64, frameWidth int) (values []float64, centers []int, err error) {
	frames, err := common.Frames(signal, frameWidth, frameWidth, nil)
	if err != nil {
		return nil, nil, err
	}

	values = make([]float64, len(frames))
	centers = make([]int, len(frames))
	for i, frame := range frames {
		values[i] = common.PeakAmplitude(frame.Samples)
		centers[i] = frame.StartPos + frameWidth/2
	}

	return values, centers, nil
}
