// Package speech wraps the speech-to-text and audio-extraction
// collaborators. Failures surface as sentinel strings, not errors; callers
// check the result before substituting it for typed input.
package speech

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voxlab/charchat/internal/config"
	"github.com/voxlab/charchat/pkg/logger"
)

const (
	// SentinelUnrecognized is returned when the recognizer produced no text.
	SentinelUnrecognized = "Could not understand audio"
	// SentinelVideoFailed is returned when audio extraction failed.
	SentinelVideoFailed = "Failed to process video"

	errPrefix = "Error: "
)

// Recognized reports whether a transcription result is usable text rather
// than a failure sentinel.
func Recognized(text string) bool {
	return text != "" &&
		text != SentinelUnrecognized &&
		text != SentinelVideoFailed &&
		!strings.HasPrefix(text, errPrefix)
}

// Transcriber converts an audio file into text or a sentinel string.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) string
}

// GoogleTranscriber implements Transcriber over the Cloud Speech-to-Text
// synchronous Recognize call.
type GoogleTranscriber struct {
	client     *speech.Client
	language   string
	sampleRate int32
}

// NewGoogleTranscriber builds the Cloud Speech client from configuration.
func NewGoogleTranscriber(ctx context.Context, cfg config.SpeechConfig) (*GoogleTranscriber, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating speech client: %w", err)
	}

	return &GoogleTranscriber{
		client:     client,
		language:   cfg.Language,
		sampleRate: int32(cfg.SampleRateHertz),
	}, nil
}

// Transcribe reads the audio file and returns the recognized text, or a
// sentinel string when recognition fails.
func (g *GoogleTranscriber) Transcribe(ctx context.Context, audioPath string) string {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		logger.L().Error("failed to read audio file", zap.String("path", audioPath), zap.Error(err))
		return errPrefix + err.Error()
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: g.sampleRate,
			LanguageCode:    g.language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	})
	if err != nil {
		logger.L().Error("recognize request failed", zap.Error(err))
		return errPrefix + err.Error()
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}

	if len(parts) == 0 {
		logger.L().Warn("recognizer returned no alternatives", zap.String("path", audioPath))
		return SentinelUnrecognized
	}

	text := strings.Join(parts, " ")
	logger.L().Info("transcribed audio", zap.Int("chars", len(text)))
	return text
}

// Service composes transcription with video audio extraction.
type Service struct {
	transcriber  Transcriber
	ffmpegPath   string
	extractAudio func(ctx context.Context, videoPath string) (string, error)
}

// NewService wires the transcriber with the ffmpeg-based extractor.
func NewService(transcriber Transcriber, ffmpegPath string) *Service {
	s := &Service{
		transcriber: transcriber,
		ffmpegPath:  ffmpegPath,
	}
	s.extractAudio = s.ffmpegExtract
	return s
}

// Transcribe exposes the underlying transcriber.
func (s *Service) Transcribe(ctx context.Context, audioPath string) string {
	return s.transcriber.Transcribe(ctx, audioPath)
}

// ProcessVideo extracts the audio track of a video file and transcribes it.
// The temporary audio artifact is removed regardless of outcome.
func (s *Service) ProcessVideo(ctx context.Context, videoPath string) string {
	audioPath, err := s.extractAudio(ctx, videoPath)
	if err != nil {
		logger.L().Error("audio extraction failed", zap.String("video", videoPath), zap.Error(err))
		return SentinelVideoFailed
	}
	defer os.Remove(audioPath)

	return s.transcriber.Transcribe(ctx, audioPath)
}

func (s *Service) ffmpegExtract(ctx context.Context, videoPath string) (string, error) {
	outPath := filepath.Join(os.TempDir(), fmt.Sprintf("charchat-audio-%s.wav", uuid.NewString()))

	cmd := exec.CommandContext(ctx, s.ffmpegPath,
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		outPath,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("running ffmpeg: %w: %s", err, output)
	}

	return outPath, nil
}
