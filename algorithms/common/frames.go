package common

// Frame is a contiguous slice of a sample buffer together with its starting
// position in the original audio
type Frame struct {
	// StartPos is the position of the first frame sample in the source buffer
	StartPos int
	// Samples contained in this frame
	Samples []float64
}

// FrameRange restricts fixed-width extraction to a sub-range of the buffer.
// A nil Start means the first sample; a nil End means the end of the buffer.
// End values past the end of the buffer are clamped.
type FrameRange struct {
	Start *int
	End   *int
}

// Frames slices samples into fixed-width frames.
//
// Frames start at start, start+stepSize, start+2*stepSize, ... and are
// emitted while the whole frame still fits before end; a trailing partial
// frame is dropped. Each frame owns a copy of its samples, so overlapping
// frames (stepSize < frameWidth) are safe to mutate independently.
func Frames(samples []float64, frameWidth, stepSize int, rng *FrameRange) ([]Frame, error) {
	if frameWidth <= 0 {
		return nil, ErrZeroFrameWidth
	}
	if stepSize <= 0 {
		return nil, ErrZeroStepSize
	}

	start := 0
	end := len(samples)
	if rng != nil {
		if rng.Start != nil && *rng.Start > 0 {
			start = *rng.Start
		}
		if rng.End != nil && *rng.End < end {
			end = *rng.End
		}
	}

	var frames []Frame
	for pos := start; pos+frameWidth <= end; pos += stepSize {
		frameSamples := make([]float64, frameWidth)
		copy(frameSamples, samples[pos:pos+frameWidth])
		frames = append(frames, Frame{
			StartPos: pos,
			Samples:  frameSamples,
		})
	}

	return frames, nil
}

// FramesByIndex slices samples into frames delimited by the given ascending
// start indices. Each frame spans from its index to the next (exclusive);
// the final frame runs from the last index to the end of the buffer.
//
// The indices must be sorted in ascending order, free of duplicates, and
// within the bounds of the buffer; an empty index sequence yields an empty
// frame sequence.
func FramesByIndex(samples []float64, indices []int) ([]Frame, error) {
	for i := 1; i < len(indices); i++ {
		if indices[i-1] > indices[i] {
			return nil, ErrFrameIndicesNotSorted
		}
	}

	frames := []Frame{}

	if len(indices) == 0 {
		return frames, nil
	}

	for i := range indices {
		if indices[i] < 0 || indices[i] >= len(samples) {
			return nil, &FrameIndexOutOfBoundsError{Index: indices[i]}
		}

		if i < len(indices)-1 {
			if indices[i+1] >= len(samples) {
				return nil, &FrameIndexOutOfBoundsError{Index: indices[i+1]}
			}
			if indices[i] == indices[i+1] {
				return nil, &DuplicateFrameIndicesError{Index: indices[i], Pos1: i, Pos2: i + 1}
			}

			frameSamples := make([]float64, indices[i+1]-indices[i])
			copy(frameSamples, samples[indices[i]:indices[i+1]])
			frames = append(frames, Frame{
				StartPos: indices[i],
				Samples:  frameSamples,
			})
		} else {
			frameSamples := make([]float64, len(samples)-indices[i])
			copy(frameSamples, samples[indices[i]:])
			frames = append(frames, Frame{
				StartPos: indices[i],
				Samples:  frameSamples,
			})
		}
	}

	return frames, nil
}
