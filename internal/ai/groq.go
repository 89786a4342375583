package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GroqClient calls Groq's OpenAI-compatible chat-completion API.
// Temperature is pinned at 0 for deterministic-leaning persona answers.
type GroqClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// GroqConfig configures a GroqClient.
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

func NewGroqClient(cfg GroqConfig) *GroqClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "openai/gpt-oss-20b"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		// Streaming completions can run long
		timeout = 300 * time.Second
	}
	return &GroqClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		client:  &http.Client{Timeout: timeout},
	}
}

// Token is one fragment of a streamed completion. A non-nil Err terminates
// the stream.
type Token struct {
	Content string
	Err     error
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

// Complete sends the prompt and returns the full generated text.
func (gc *GroqClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := gc.send(ctx, prompt, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

// Stream sends the prompt and returns a channel of text fragments parsed
// from the SSE response. The channel is closed when the model finishes, the
// context is canceled, or an error is emitted. The response body is owned by
// the reader goroutine and released on all paths.
func (gc *GroqClient) Stream(ctx context.Context, prompt string) (<-chan Token, error) {
	resp, err := gc.send(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	ch := make(chan Token, 16)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "[DONE]" {
				return
			}

			var chunk struct {
				Choices []struct {
					Delta struct {
						Content string `json:"content"`
					} `json:"delta"`
				} `json:"choices"`
			}
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				continue
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}

			select {
			case ch <- Token{Content: chunk.Choices[0].Delta.Content}:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case ch <- Token{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return ch, nil
}

func (gc *GroqClient) send(ctx context.Context, prompt string, stream bool) (*http.Response, error) {
	reqBody := chatRequest{
		Model:       gc.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
		Stream:      stream,
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, gc.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+gc.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := gc.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling chat completion: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("chat completion failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return resp, nil
}
