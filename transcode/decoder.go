package transcode

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-scribe/logging"
)

// AudioData represents decoded audio data
type AudioData struct {
	PCM        []float64 `json:"-"` // Mono samples in [-1, 1]
	SampleRate int       `json:"sample_rate"`
	Channels   int       `json:"channels"`
	Duration   int       `json:"duration"` // Samples per channel
}

// wavFormatIEEEFloat is the WAV format tag for IEEE 754 float samples, as
// opposed to integer PCM (tag 1).
const wavFormatIEEEFloat = 3

// maxInt24 is the divisor for 24-bit integer samples. The full unsigned
// range, not the signed maximum, to keep parity with existing renderings of
// these files.
const maxInt24 = 1<<24 - 1

// ErrInvalidWAV reports data that does not parse as a WAV file at all.
var ErrInvalidWAV = errors.New("invalid WAV data")

// UnsupportedBitDepthError reports a WAV bit depth the decoder does not
// handle.
type UnsupportedBitDepthError struct {
	BitDepth int
}

func (e *UnsupportedBitDepthError) Error() string {
	return fmt.Sprintf("unsupported bit depth `%d`, expected 16, 24, or 32", e.BitDepth)
}

// UnsupportedChannelCountError reports a WAV channel layout the decoder does
// not handle.
type UnsupportedChannelCountError struct {
	Channels int
}

func (e *UnsupportedChannelCountError) Error() string {
	return fmt.Sprintf("unsupported channel count `%d`, expected mono or stereo audio", e.Channels)
}

// ReadWAVFile decodes the WAV file at path
func ReadWAVFile(path string) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "ReadWAVFile",
		"path":      path,
	})

	f, err := os.Open(path)
	if err != nil {
		logger.Error(err, "Failed to open WAV file")
		return nil, err
	}
	defer f.Close()

	audioData, err := DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return audioData, nil
}

// DecodeWAV decodes a WAV stream into mono float64 PCM.
//
// Integer PCM at 16, 24, and 32 bits is scaled into [-1, 1]; 32-bit IEEE
// float samples pass through unscaled. Stereo input keeps the left channel.
// Any other bit depth or channel layout is an error.
func DecodeWAV(r io.ReadSeeker) (*AudioData, error) {
	logger := logging.WithFields(logging.Fields{
		"component": "audio_decoder",
		"function":  "DecodeWAV",
	})

	logger.Debug("Starting WAV decode")

	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		logger.Error(ErrInvalidWAV, "WAV header validation failed")
		return nil, ErrInvalidWAV
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		logger.Error(err, "Failed to read PCM data")
		return nil, err
	}

	sampleRate := int(decoder.SampleRate)
	channels := int(decoder.NumChans)
	bitDepth := int(decoder.BitDepth)
	isFloat := decoder.WavAudioFormat == wavFormatIEEEFloat

	logger.Debug("Decoded WAV header", logging.Fields{
		"sample_rate": sampleRate,
		"channels":    channels,
		"bit_depth":   bitDepth,
		"float":       isFloat,
		"samples":     len(buf.Data),
	})

	samples, err := samplesToFloat64(buf.Data, bitDepth, isFloat)
	if err != nil {
		logger.Error(err, "Unsupported WAV sample format")
		return nil, err
	}

	pcm, err := extractLeftChannel(samples, channels)
	if err != nil {
		logger.Error(err, "Unsupported WAV channel layout")
		return nil, err
	}

	logger.Debug("WAV decode completed", logging.Fields{
		"pcm_samples": len(pcm),
	})

	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   len(pcm),
	}, nil
}

// samplesToFloat64 converts raw interleaved samples to float64.
//
// go-audio delivers every sample as an int; for IEEE float files those ints
// are the IEEE 754 bit patterns. Integer samples divide as float32 before
// widening, matching the precision of the files this pipeline was tuned on.
func samplesToFloat64(data []int, bitDepth int, isFloat bool) ([]float64, error) {
	if isFloat {
		if bitDepth != 32 {
			return nil, &UnsupportedBitDepthError{BitDepth: bitDepth}
		}
		samples := make([]float64, len(data))
		for i, v := range data {
			samples[i] = float64(math.Float32frombits(uint32(int32(v))))
		}
		return samples, nil
	}

	var max float32
	switch bitDepth {
	case 16:
		max = math.MaxInt16
	case 24:
		max = maxInt24
	case 32:
		max = math.MaxInt32
	default:
		return nil, &UnsupportedBitDepthError{BitDepth: bitDepth}
	}

	samples := make([]float64, len(data))
	for i, v := range data {
		samples[i] = float64(float32(v) / max)
	}
	return samples, nil
}

// extractLeftChannel reduces interleaved PCM to a single channel: mono
// passes through, stereo keeps the even indices.
func extractLeftChannel(samples []float64, channels int) ([]float64, error) {
	switch channels {
	case 1:
		return samples, nil
	case 2:
		left := make([]float64, 0, (len(samples)+1)/2)
		for i := 0; i < len(samples); i += 2 {
			left = append(left, samples[i])
		}
		return left, nil
	default:
		return nil, &UnsupportedChannelCountError{Channels: channels}
	}
}
