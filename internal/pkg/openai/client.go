package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ManuelReschke/contapp-relay/internal/pkg/config"
)

// ErrMissingAPIKey is returned before any outbound call when no key is set.
var ErrMissingAPIKey = errors.New("Missing OPENAI_API_KEY")

// APIError is a non-2xx answer from the chat completions endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai: status=%d: %s", e.StatusCode, e.Message)
}

type CompletionRequest struct {
	Model string
	// Messages are forwarded to the API as received.
	Messages    []json.RawMessage
	Temperature float64
}

type Client struct {
	apiKey       string
	baseURL      string
	defaultModel string
	temperature  float64
	httpClient   *http.Client
}

// NewClient builds a chat client. timeout bounds every call.
func NewClient(cfg config.ChatConfig, timeout time.Duration) *Client {
	return &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		defaultModel: cfg.DefaultModel,
		temperature:  cfg.Temperature,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Configured reports whether an API key is available.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

func (c *Client) DefaultModel() string {
	return c.defaultModel
}

// Complete sends one chat completion and returns the trimmed content of the
// first choice.
func (c *Client) Complete(ctx context.Context, in CompletionRequest) (string, error) {
	if !c.Configured() {
		return "", ErrMissingAPIKey
	}
	if len(in.Messages) == 0 {
		return "", errors.New("messages are required")
	}

	model := strings.TrimSpace(in.Model)
	if model == "" {
		model = c.defaultModel
	}
	temperature := in.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	jsonBody, err := json.Marshal(map[string]any{
		"model":       model,
		"messages":    in.Messages,
		"temperature": temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeErr := json.Unmarshal(body, &response)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "OpenAI error"
		if decodeErr == nil && response.Error != nil && strings.TrimSpace(response.Error.Message) != "" {
			msg = response.Error.Message
		}
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode openai response: %w", decodeErr)
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
