package server

import (
	"bytes"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-scribe/logging"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(&logging.NoOpLogger{})
	os.Exit(m.Run())
}

// buildWAV encodes samples into WAV bytes. The encoder needs a seekable
// target, so it goes through a temp file.
func buildWAV(t *testing.T, samples []int, sampleRate, bitDepth, numChans int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create fixture: %v", err)
	}

	enc := wav.NewEncoder(f, sampleRate, bitDepth, numChans, 1)
	buf := &audio.IntBuffer{
		Data:           samples,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: numChans},
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("write fixture samples: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close fixture encoder: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close fixture file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

// sineWAV returns WAV bytes with leading silence and a 440 Hz tone, enough
// for exactly one detected onset at sample 5600.
func sineWAV(t *testing.T) []byte {
	t.Helper()

	samples := make([]int, 44100)
	for i := 4800; i < len(samples); i++ {
		samples[i] = int(32767 * math.Sin(2*math.Pi*440*float64(i)/44100))
	}
	return buildWAV(t, samples, 44100, 16, 1)
}

// multipartBody builds a multipart form with content under the given field
// name, returning the body and its content type.
func multipartBody(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

type noteResponse struct {
	Name     string `json:"name"`
	Start    int    `json:"start"`
	Duration int    `json:"duration"`
}

type transcriptionBody struct {
	Notes []noteResponse `json:"notes"`
	Count int            `json:"count"`
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got, want := rec.Body.String(), `{"status":"ok"}`; got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestHandleTranscription(t *testing.T) {
	t.Parallel()

	body, contentType := multipartBody(t, "audio", "note.wav", sineWAV(t))

	s := New(Config{})
	req := httptest.NewRequest("POST", "/api/transcriptions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var got transcriptionBody
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if got.Count != 1 || len(got.Notes) != 1 {
		t.Fatalf("count = %d with %d notes, want exactly 1", got.Count, len(got.Notes))
	}

	want := noteResponse{Name: "A4", Start: 5600, Duration: 8192}
	if got.Notes[0] != want {
		t.Errorf("notes[0] = %+v, want %+v", got.Notes[0], want)
	}
}

func TestHandleTranscription_SilentAudio(t *testing.T) {
	t.Parallel()

	wavBytes := buildWAV(t, make([]int, 44100), 44100, 16, 1)
	body, contentType := multipartBody(t, "audio", "silence.wav", wavBytes)

	s := New(Config{})
	req := httptest.NewRequest("POST", "/api/transcriptions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// An empty transcription is an empty list, never null.
	if !strings.Contains(rec.Body.String(), `"notes":[]`) {
		t.Errorf("body = %s, want an empty notes list", rec.Body.String())
	}

	var got transcriptionBody
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if got.Count != 0 {
		t.Errorf("count = %d, want 0", got.Count)
	}
}

func TestHandleTranscription_MissingAudioField(t *testing.T) {
	t.Parallel()

	body, contentType := multipartBody(t, "wrong_field", "note.wav", []byte("data"))

	s := New(Config{})
	req := httptest.NewRequest("POST", "/api/transcriptions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "missing `audio` form field") {
		t.Errorf("body = %s, want the missing-field error", rec.Body.String())
	}
}

func TestHandleTranscription_InvalidWAV(t *testing.T) {
	t.Parallel()

	body, contentType := multipartBody(t, "audio", "note.wav", []byte("this is not a wav file"))

	s := New(Config{})
	req := httptest.NewRequest("POST", "/api/transcriptions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "invalid WAV data") {
		t.Errorf("body = %s, want the invalid WAV error", rec.Body.String())
	}
}

func TestHandleTranscription_UnsupportedBitDepth(t *testing.T) {
	t.Parallel()

	wavBytes := buildWAV(t, []int{0, 64, 128, 64}, 44100, 8, 1)
	body, contentType := multipartBody(t, "audio", "lofi.wav", wavBytes)

	s := New(Config{})
	req := httptest.NewRequest("POST", "/api/transcriptions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "unsupported bit depth `8`") {
		t.Errorf("body = %s, want the bit depth error", rec.Body.String())
	}
}

func TestHandleTranscription_UploadTooLarge(t *testing.T) {
	t.Parallel()

	body, contentType := multipartBody(t, "audio", "note.wav", sineWAV(t))

	s := New(Config{MaxUploadSize: 1024})
	req := httptest.NewRequest("POST", "/api/transcriptions", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleTranscription_NonMultipartBody(t *testing.T) {
	t.Parallel()

	s := New(Config{})
	req := httptest.NewRequest("POST", "/api/transcriptions", strings.NewReader("plain body"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
