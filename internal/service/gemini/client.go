// Package gemini is the stateless HTTP client for the remote generation API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/voxlab/charchat/internal/config"
	"github.com/voxlab/charchat/pkg/logger"
)

// ErrNoCandidates reports a 200 response whose payload carried no usable
// candidate text.
var ErrNoCandidates = errors.New("response contained no candidates")

// StatusError reports a non-200 response from the generation API.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generation api returned %d: %s", e.Code, e.Body)
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client calls the generateContent endpoint. Credentials and endpoint come
// from an explicit config struct, never process-wide state.
type Client struct {
	http   *resty.Client
	apiKey string
	url    string
}

// NewClient builds a gateway client from configuration.
func NewClient(cfg config.GeminiConfig) *Client {
	httpClient := resty.New().
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	return &Client{
		http:   httpClient,
		apiKey: cfg.APIKey,
		url:    cfg.BaseURL,
	}
}

// Generate posts the prompt and returns the first candidate's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		Post(c.url)
	if err != nil {
		return "", fmt.Errorf("calling generation api: %w", err)
	}

	if resp.StatusCode() != 200 {
		logger.L().Warn("generation api error",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", resp.String()))
		return "", &StatusError{Code: resp.StatusCode(), Body: resp.String()}
	}

	var parsed generateResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("decoding generation response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoCandidates
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
