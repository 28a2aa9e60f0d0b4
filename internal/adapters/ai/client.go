// Package ai talks to the speech-to-text and summarization service.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrNotConfigured = errors.New("ai service not configured")
	ErrBadResponse   = errors.New("ai service bad response")
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client for baseURL. An empty baseURL yields a client
// whose calls fail with ErrNotConfigured.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

type transcribeResponse struct {
	Transcript string `json:"transcript"`
	Error      string `json:"error"`
}

type summaryRequest struct {
	Transcript string `json:"transcript"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
	Error   string `json:"error"`
}

// Transcribe uploads audio as the multipart field "audio".
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if filename == "" {
		filename = "audio.webm"
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	var out transcribeResponse
	if err := c.post(ctx, "/transcribe", mw.FormDataContentType(), &body, &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrBadResponse, out.Error)
	}
	return out.Transcript, nil
}

func (c *Client) Summarize(ctx context.Context, transcript string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	b, err := json.Marshal(summaryRequest{Transcript: transcript})
	if err != nil {
		return "", fmt.Errorf("marshal summary request: %w", err)
	}

	var out summaryResponse
	if err := c.post(ctx, "/generate_summary", "application/json", bytes.NewReader(b), &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrBadResponse, out.Error)
	}
	return out.Summary, nil
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.ai").Str("path", path).Msg("request failed")
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	log.Debug().Str("module", "adapters.ai").Str("path", path).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("ai response")

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", ErrBadResponse, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrBadResponse, path, err)
	}
	return nil
}
