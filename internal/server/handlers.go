package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RyanBlaney/sonido-scribe/logging"
	"github.com/RyanBlaney/sonido-scribe/transcode"
	"github.com/RyanBlaney/sonido-scribe/transcription"
)

// transcriptionResponse is the JSON body for a successful transcription
type transcriptionResponse struct {
	Notes []transcription.Note `json:"notes"`
	Count int                  `json:"count"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleTranscription accepts a multipart WAV upload in the `audio` field
// and responds with the transcribed notes.
func (s *Server) handleTranscription(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.WithContext(r.Context()).WithFields(logging.Fields{
		"function": "handleTranscription",
	})

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadSize)
	if err := r.ParseMultipartForm(s.config.MaxUploadSize); err != nil {
		logger.Error(err, "Failed to parse multipart form")
		s.respondError(w, http.StatusBadRequest, "expected a multipart form within the upload size limit")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		logger.Error(err, "Missing audio form field")
		s.respondError(w, http.StatusBadRequest, "missing `audio` form field")
		return
	}
	defer file.Close()

	logger.Debug("Received audio upload", logging.Fields{
		"filename": header.Filename,
		"size":     header.Size,
	})

	audioData, err := transcode.DecodeWAV(file)
	if err != nil {
		logger.Error(err, "Failed to decode upload")
		if isClientDecodeError(err) {
			s.respondError(w, http.StatusBadRequest, err.Error())
		} else {
			s.respondError(w, http.StatusInternalServerError, "failed to read upload")
		}
		return
	}

	notes, err := s.transcriber.Transcribe(audioData.PCM, audioData.SampleRate)
	if err != nil {
		logger.Error(err, "Transcription failed")
		s.respondError(w, http.StatusInternalServerError, "transcription failed")
		return
	}

	logger.Debug("Transcription succeeded", logging.Fields{
		"notes": len(notes),
	})

	s.respondJSON(w, http.StatusOK, transcriptionResponse{
		Notes: notes,
		Count: len(notes),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error(err, "Failed to encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, errorResponse{Error: msg})
}

// isClientDecodeError reports whether err is a malformed or unsupported
// upload rather than a server fault.
func isClientDecodeError(err error) bool {
	var bitDepthErr *transcode.UnsupportedBitDepthError
	var channelErr *transcode.UnsupportedChannelCountError
	return errors.Is(err, transcode.ErrInvalidWAV) ||
		errors.As(err, &bitDepthErr) ||
		errors.As(err, &channelErr)
}
