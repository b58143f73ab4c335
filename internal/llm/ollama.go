package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"suspect/internal/models"
)

// OllamaClient drives the Ollama generate API in non-streaming mode.
type OllamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllama returns a client for the given base URL (e.g.
// http://localhost:11434) and model tag. timeout bounds each Generate call.
func NewOllama(baseURL, model string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
	}
}

// Generate sends a prompt and blocks until the full response text arrives
// or the timeout fires. Failures come back as TransportError.
func (o *OllamaClient) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	payload := ollamaGenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
		Options: map[string]any{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	slog.Debug("sending generate request", "model", o.model, "prompt_bytes", len(prompt))

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", &models.TransportError{Op: "generate", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &models.TransportError{
			Op:  "generate",
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))),
		}
	}

	var parsed ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &models.TransportError{Op: "generate", Err: fmt.Errorf("decoding response: %w", err)}
	}

	slog.Debug("generate request completed",
		"model", o.model,
		"latency", time.Since(start),
		"response_bytes", len(parsed.Response))
	return parsed.Response, nil
}

// Available checks the endpoint's tag listing with a short deadline.
func (o *OllamaClient) Available(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("building availability request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return &models.TransportError{Op: "availability check", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &models.TransportError{
			Op:  "availability check",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return nil
}
