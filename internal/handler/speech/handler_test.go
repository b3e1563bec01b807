package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"

	speechsvc "github.com/voxlab/charchat/internal/service/speech"
)

type fakeSpeechService struct {
	audioReply string
	videoReply string
	lastPath   string
}

func (f *fakeSpeechService) Transcribe(_ context.Context, path string) string {
	f.lastPath = path
	return f.audioReply
}

func (f *fakeSpeechService) ProcessVideo(_ context.Context, path string) string {
	f.lastPath = path
	return f.videoReply
}

func setupRouter(svc SpeechService) *chi.Mux {
	handler := New(svc)
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestTranscription(t *testing.T) {
	svc := &fakeSpeechService{audioReply: "hello world"}
	r := setupRouter(svc)

	body, contentType := multipartUpload(t, "audio", "clip.wav", []byte("wav-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/speech/transcriptions", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var out struct {
		Text       string `json:"text"`
		Recognized bool   `json:"recognized"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if out.Text != "hello world" {
		t.Fatalf("expected transcription text, got %q", out.Text)
	}
	if !out.Recognized {
		t.Fatalf("expected recognized to be true")
	}
	if _, err := os.Stat(svc.lastPath); !os.IsNotExist(err) {
		t.Fatalf("spooled upload was not cleaned up")
	}
}

func TestTranscriptionSentinelNotRecognized(t *testing.T) {
	svc := &fakeSpeechService{audioReply: speechsvc.SentinelUnrecognized}
	r := setupRouter(svc)

	body, contentType := multipartUpload(t, "audio", "clip.wav", []byte("wav-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/speech/transcriptions", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var out struct {
		Text       string `json:"text"`
		Recognized bool   `json:"recognized"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if out.Recognized {
		t.Fatalf("sentinel text should not be marked recognized")
	}
}

func TestVideoTranscription(t *testing.T) {
	svc := &fakeSpeechService{videoReply: "from the video"}
	r := setupRouter(svc)

	body, contentType := multipartUpload(t, "video", "clip.mp4", []byte("mp4-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/speech/video-transcriptions", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if out.Text != "from the video" {
		t.Fatalf("expected video transcription, got %q", out.Text)
	}
}

func TestTranscriptionMissingFile(t *testing.T) {
	r := setupRouter(&fakeSpeechService{})

	body, contentType := multipartUpload(t, "wrong-field", "clip.wav", []byte("wav"))
	req := httptest.NewRequest(http.MethodPost, "/speech/transcriptions", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
