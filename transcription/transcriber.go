package transcription

import (
	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/sonido-scribe/algorithms/common"
	"github.com/RyanBlaney/sonido-scribe/algorithms/temporal"
	"github.com/RyanBlaney/sonido-scribe/algorithms/tonal"
	"github.com/RyanBlaney/sonido-scribe/logging"
)

// TranscriberConfig holds configuration for transcription
type TranscriberConfig struct {
	OnsetFrameWidth int     `json:"onset_frame_width" yaml:"onset_frame_width"`
	OnsetThreshold  float64 `json:"onset_threshold" yaml:"onset_threshold"`
	MaxFrameWidth   int     `json:"max_frame_width" yaml:"max_frame_width"`
	SilenceRatio    float64 `json:"silence_ratio" yaml:"silence_ratio"`
	PitchThreshold  float64 `json:"pitch_threshold" yaml:"pitch_threshold"`
	GridFrameWidth  int     `json:"grid_frame_width" yaml:"grid_frame_width"`
	GridStepSize    int     `json:"grid_step_size" yaml:"grid_step_size"`
	Workers         int     `json:"workers" yaml:"workers"`
}

// DefaultTranscriberConfig returns the default transcription configuration
func DefaultTranscriberConfig() *TranscriberConfig {
	return &TranscriberConfig{
		OnsetFrameWidth: 1600,
		OnsetThreshold:  0.125,
		MaxFrameWidth:   8192,
		SilenceRatio:    0.2,
		PitchThreshold:  0.7,
		GridFrameWidth:  4096,
		GridStepSize:    1024,
		Workers:         1,
	}
}

// EstimatorFactory builds the pitch estimator Transcribe uses on each note
// frame. The sample rate is per call, so estimators are constructed inside
// Transcribe rather than held on the Transcriber.
type EstimatorFactory func(threshold float64, sampleRate int) tonal.PitchEstimator

// Transcriber turns a buffer of audio samples into a sequence of notes
type Transcriber struct {
	config       *TranscriberConfig
	onsets       *temporal.OnsetDetector
	newEstimator EstimatorFactory
	logger       logging.Logger
}

// NewTranscriber creates a transcriber using the McLeod Pitch Method for
// pitch estimation. A nil config uses defaults.
func NewTranscriber(config *TranscriberConfig) *Transcriber {
	return NewTranscriberWithEstimator(config, func(threshold float64, sampleRate int) tonal.PitchEstimator {
		return tonal.NewMPM(threshold, sampleRate)
	})
}

// NewTranscriberWithEstimator creates a transcriber with a custom pitch
// estimator factory. A nil config uses defaults.
func NewTranscriberWithEstimator(config *TranscriberConfig, factory EstimatorFactory) *Transcriber {
	if config == nil {
		config = DefaultTranscriberConfig()
	}

	logger := logging.WithFields(logging.Fields{
		"component": "transcriber",
	})

	return &Transcriber{
		config: config,
		onsets: temporal.NewOnsetDetectorWithParams(temporal.OnsetParams{
			FrameWidth: config.OnsetFrameWidth,
			Threshold:  config.OnsetThreshold,
		}),
		newEstimator: factory,
		logger:       logger,
	}
}

// pitchFrame is the estimation result for one note frame
type pitchFrame struct {
	startPos   int
	frameWidth int
	pitch      float64
	voiced     bool
}

// Transcribe transcribes the samples into notes. The buffer is normalized,
// split into one frame per detected onset, and each frame that is loud
// enough relative to the whole buffer is assigned the pitch estimated over
// its leading samples. A silent buffer transcribes to no notes.
func (t *Transcriber) Transcribe(samples []float64, sampleRate int) ([]Note, error) {
	logger := t.logger.WithFields(logging.Fields{
		"function":    "Transcribe",
		"samples":     len(samples),
		"sample_rate": sampleRate,
	})
	logger.Debug("Starting transcription")

	normalized, ok := normalize(samples)
	if !ok {
		logger.Debug("Buffer is silent, nothing to transcribe")
		return []Note{}, nil
	}

	onsets, err := t.onsets.Detect(normalized)
	if err != nil {
		logger.Error(err, "Failed to detect onsets")
		return nil, err
	}
	logger.Debug("Detected onsets", logging.Fields{
		"onsets": len(onsets),
	})

	frames, err := common.FramesByIndex(normalized, onsets)
	if err != nil {
		logger.Error(err, "Failed to frame buffer at onsets")
		return nil, err
	}

	frames = t.truncateFrames(frames)
	frames = t.discardQuietFrames(frames, normalized)
	logger.Debug("Selected note frames", logging.Fields{
		"frames": len(frames),
	})

	pitches, err := t.estimateFrames(frames, sampleRate)
	if err != nil {
		return nil, err
	}

	notes := assembleNotes(pitches)
	logger.Debug("Transcription complete", logging.Fields{
		"notes": len(notes),
	})

	return notes, nil
}

// TranscribeFixedGrid transcribes the samples using fixed-width overlapping
// frames instead of onset-delimited ones. There is no normalization and no
// silence filter; every grid frame with a detectable pitch becomes a note.
func (t *Transcriber) TranscribeFixedGrid(samples []float64, sampleRate int) ([]Note, error) {
	logger := t.logger.WithFields(logging.Fields{
		"function":    "TranscribeFixedGrid",
		"samples":     len(samples),
		"sample_rate": sampleRate,
	})
	logger.Debug("Starting fixed-grid transcription")

	frames, err := common.Frames(samples, t.config.GridFrameWidth, t.config.GridStepSize, nil)
	if err != nil {
		logger.Error(err, "Failed to frame buffer")
		return nil, err
	}

	pitches, err := t.estimateFrames(frames, sampleRate)
	if err != nil {
		return nil, err
	}

	notes := assembleNotes(pitches)
	logger.Debug("Fixed-grid transcription complete", logging.Fields{
		"notes": len(notes),
	})

	return notes, nil
}

// normalize scales the buffer so the largest magnitude is 1. The boolean is
// false when the buffer is empty or silent.
func normalize(samples []float64) ([]float64, bool) {
	max := common.PeakAmplitude(samples)
	if max <= common.Epsilon {
		return nil, false
	}

	normalized := make([]float64, len(samples))
	for i, sample := range samples {
		normalized[i] = sample / max
	}

	return normalized, true
}

// truncateFrames caps each frame at MaxFrameWidth leading samples. The pitch
// settles in the attack, so the tail of a long note adds cost but no
// information.
func (t *Transcriber) truncateFrames(frames []common.Frame) []common.Frame {
	for i, frame := range frames {
		if len(frame.Samples) > t.config.MaxFrameWidth {
			frames[i].Samples = frame.Samples[:t.config.MaxFrameWidth]
		}
	}
	return frames
}

// discardQuietFrames drops frames whose RMS falls below SilenceRatio times
// the RMS of the whole buffer. These are decaying tails and rests between
// notes, not notes.
func (t *Transcriber) discardQuietFrames(frames []common.Frame, buffer []float64) []common.Frame {
	bufferRMS, ok := common.RMS(buffer)
	if !ok {
		return nil
	}

	kept := frames[:0]
	for _, frame := range frames {
		frameRMS, ok := common.RMS(frame.Samples)
		if ok && frameRMS >= t.config.SilenceRatio*bufferRMS {
			kept = append(kept, frame)
		}
	}

	return kept
}

// estimateFrames runs pitch estimation over the frames, fanning out across
// Workers goroutines when more than one is configured. Each goroutine writes
// its own slot of the results slice, so output order stays the frame order.
func (t *Transcriber) estimateFrames(frames []common.Frame, sampleRate int) ([]pitchFrame, error) {
	estimator := t.newEstimator(t.config.PitchThreshold, sampleRate)
	results := make([]pitchFrame, len(frames))

	if t.config.Workers <= 1 {
		for i, frame := range frames {
			results[i] = estimateFrame(estimator, frame)
		}
		return results, nil
	}

	eg := new(errgroup.Group)
	eg.SetLimit(t.config.Workers)

	for i, frame := range frames {
		eg.Go(func() error {
			results[i] = estimateFrame(estimator, frame)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func estimateFrame(estimator tonal.PitchEstimator, frame common.Frame) pitchFrame {
	pitch, voiced := estimator.EstimatePitch(frame.Samples)
	return pitchFrame{
		startPos:   frame.StartPos,
		frameWidth: len(frame.Samples),
		pitch:      pitch,
		voiced:     voiced,
	}
}

// assembleNotes names the pitch of each voiced frame, preserving frame order
func assembleNotes(pitches []pitchFrame) []Note {
	notes := []Note{}
	for _, pf := range pitches {
		if !pf.voiced {
			continue
		}
		notes = append(notes, Note{
			Name:     tonal.FromPitch(pf.pitch),
			Start:    pf.startPos,
			Duration: pf.frameWidth,
		})
	}
	return notes
}
