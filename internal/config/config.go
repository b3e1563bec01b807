package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates every setting the service needs.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Chat   ChatConfig
	Gemini GeminiConfig
	Speech SpeechConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		Store:  loadStoreConfig(),
		Chat:   chat,
		Gemini: loadGeminiConfig(),
		Speech: speech,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// StoreConfig locates the sqlite database file.
type StoreConfig struct {
	Path string
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		Path: getEnvOrDefault("DATABASE_PATH", "conversations.db"),
	}
}

// ChatConfig tunes context-window assembly.
type ChatConfig struct {
	// RecentTurnLimit caps the per-persona history used when the caller
	// supplies no session id. Explicit sessions are replayed in full.
	RecentTurnLimit int
}

func loadChatConfig() (ChatConfig, error) {
	limit := 10
	if override, err := parseOptionalIntEnv("CHAT_RECENT_TURN_LIMIT"); err != nil {
		return ChatConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return ChatConfig{}, fmt.Errorf("CHAT_RECENT_TURN_LIMIT must be positive, got %d", *override)
		}
		limit = *override
	}
	return ChatConfig{RecentTurnLimit: limit}, nil
}

// GeminiConfig holds the generation API credentials and endpoint. Passed into
// the gateway constructor rather than read from globals.
type GeminiConfig struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Enabled reports whether the generation API can be called.
func (c GeminiConfig) Enabled() bool {
	return c.APIKey != ""
}

func loadGeminiConfig() GeminiConfig {
	timeout := 30
	if override, err := parseOptionalIntEnv("GEMINI_TIMEOUT_SECONDS"); err == nil && override != nil && *override > 0 {
		timeout = *override
	}

	return GeminiConfig{
		APIKey:         strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		BaseURL:        getEnvOrDefault("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"),
		TimeoutSeconds: timeout,
	}
}

// SpeechConfig describes the speech-to-text collaborator.
type SpeechConfig struct {
	Enabled         bool
	Language        string
	SampleRateHertz int
	FFmpegPath      string
}

func loadSpeechConfig() (SpeechConfig, error) {
	rate := 16000
	if override, err := parseOptionalIntEnv("SPEECH_SAMPLE_RATE"); err != nil {
		return SpeechConfig{}, err
	} else if override != nil {
		rate = *override
	}

	enabled, err := parseBoolEnv("SPEECH_ENABLED", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "")
	if err != nil {
		return SpeechConfig{}, err
	}

	return SpeechConfig{
		Enabled:         enabled,
		Language:        getEnvOrDefault("SPEECH_LANGUAGE", "en-US"),
		SampleRateHertz: rate,
		FFmpegPath:      getEnvOrDefault("FFMPEG_PATH", "ffmpeg"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
