package speech

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	speechsvc "github.com/voxlab/charchat/internal/service/speech"
	"github.com/voxlab/charchat/pkg/logger"
	"github.com/voxlab/charchat/pkg/utils"
)

// SpeechService abstracts the transcription pipeline for testing.
type SpeechService interface {
	Transcribe(ctx context.Context, audioPath string) string
	ProcessVideo(ctx context.Context, videoPath string) string
}

// Handler serves the transcription endpoints.
type Handler struct {
	speechSvc SpeechService
}

// New creates a speech handler.
func New(speechSvc SpeechService) *Handler {
	return &Handler{
		speechSvc: speechSvc,
	}
}

// RegisterRoutes registers speech routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/speech", func(speechRouter chi.Router) {
		speechRouter.Post("/transcriptions", h.handleTranscription)
		speechRouter.Post("/video-transcriptions", h.handleVideoTranscription)
	})
}

// handleTranscription transcribes an uploaded audio file.
func (h *Handler) handleTranscription(w http.ResponseWriter, r *http.Request) {
	h.processUpload(w, r, "audio", h.speechSvc.Transcribe)
}

// handleVideoTranscription extracts and transcribes the audio track of an
// uploaded video file.
func (h *Handler) handleVideoTranscription(w http.ResponseWriter, r *http.Request) {
	h.processUpload(w, r, "video", h.speechSvc.ProcessVideo)
}

func (h *Handler) processUpload(w http.ResponseWriter, r *http.Request, field string, process func(context.Context, string) string) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, field+" file is required")
		return
	}
	defer file.Close()

	path, err := spoolUpload(file, header.Filename)
	if err != nil {
		logger.L().Error("failed to spool upload", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.Remove(path)

	text := process(r.Context(), path)

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"text":       text,
		"recognized": speechsvc.Recognized(text),
	})
}

// spoolUpload writes the uploaded file to a temp path, preserving the
// extension so ffmpeg can infer the container format.
func spoolUpload(file multipart.File, filename string) (string, error) {
	ext := filepath.Ext(filename)
	path := filepath.Join(os.TempDir(), fmt.Sprintf("charchat-upload-%s%s", uuid.NewString(), ext))

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing upload: %w", err)
	}

	return path, nil
}
