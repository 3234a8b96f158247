package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
	moderationModel      = "omni-moderation-latest"
)

type OpenAIConfig struct {
	APIKey       string
	Organization string
	Project      string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
	// Backoff is the first retry delay after a 429; it doubles per attempt.
	Backoff time.Duration
}

type OpenAIClient struct {
	cfg        OpenAIConfig
	httpClient *http.Client
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOpenAIModel
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	return &OpenAIClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type apiError struct {
	Message string `json:"message"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type moderationResponse struct {
	Results []struct {
		Flagged    bool            `json:"flagged"`
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
	Error *apiError `json:"error,omitempty"`
}

// Stream sends a chat completion with streaming enabled and forwards content
// deltas as they arrive. Rate limited requests are retried before the stream
// starts.
func (c *OpenAIClient) Stream(ctx context.Context, system, user string) (<-chan string, <-chan error) {
	content := make(chan string, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(content)
		defer close(errs)

		if c.cfg.APIKey == "" {
			errs <- fmt.Errorf("openai: %w", ErrNotConfigured)
			return
		}

		body, err := json.Marshal(chatRequest{
			Model: c.cfg.Model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: user},
			},
			Temperature: 0.9,
			Stream:      true,
		})
		if err != nil {
			errs <- fmt.Errorf("failed to marshal request: %w", err)
			return
		}

		start := time.Now()
		resp, err := c.post(ctx, "/chat/completions", body, "text/event-stream")
		if err != nil {
			errs <- err
			return
		}
		defer resp.Body.Close()

		stop := context.AfterFunc(ctx, func() { resp.Body.Close() })
		defer stop()

		if err := readEvents(ctx, resp.Body, content); err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			slog.Warn("OpenAI stream ended early", "model", c.cfg.Model, "elapsed", time.Since(start), "error", err)
			errs <- fmt.Errorf("stream error: %w", err)
			return
		}
		slog.Info("OpenAI stream completed", "model", c.cfg.Model, "elapsed", time.Since(start))
	}()

	return content, errs
}

func readEvents(ctx context.Context, r io.Reader, content chan<- string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			return nil
		}

		var chunk chatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if chunk.Error != nil {
			return fmt.Errorf("API error: %s", chunk.Error.Message)
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		select {
		case content <- chunk.Choices[0].Delta.Content:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}

// Moderate reports whether the moderation endpoint flags text.
func (c *OpenAIClient) Moderate(ctx context.Context, text string) (bool, error) {
	if c.cfg.APIKey == "" {
		return false, fmt.Errorf("openai: %w", ErrNotConfigured)
	}

	body, err := json.Marshal(map[string]string{"model": moderationModel, "input": text})
	if err != nil {
		return false, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.post(ctx, "/moderations", body, "application/json")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var result moderationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Error != nil {
		return false, fmt.Errorf("API error: %s", result.Error.Message)
	}

	for _, r := range result.Results {
		if r.Flagged {
			slog.Info("Moderation flagged input", "categories", flaggedCategories(r.Categories))
			return true, nil
		}
	}
	return false, nil
}

func flaggedCategories(categories map[string]bool) []string {
	var out []string
	for name, hit := range categories {
		if hit {
			out = append(out, name)
		}
	}
	return out
}

// post retries 429 responses with exponential backoff and returns the first
// 200 response for the caller to close.
func (c *OpenAIClient) post(ctx context.Context, path string, body []byte, accept string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.cfg.Backoff * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", accept)
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		if c.cfg.Organization != "" {
			req.Header.Set("OpenAI-Organization", c.cfg.Organization)
		}
		if c.cfg.Project != "" {
			req.Header.Set("OpenAI-Project", c.cfg.Project)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			msg, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limit exceeded (429): %s", strings.TrimSpace(string(msg)))
			slog.Warn("OpenAI rate limited", "path", path, "attempt", attempt+1)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			msg, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		}
		return resp, nil
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
