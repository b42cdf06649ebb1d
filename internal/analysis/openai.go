package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"alfredmail-be/config"
)

const completionsURL = "https://api.openai.com/v1/chat/completions"

// Completer produces raw completion text for a prompt. Satisfied by
// OpenAIClient; faked in tests.
type Completer interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// OpenAIClient calls the chat-completions endpoint. A non-2xx response
// is fatal for the analysis call and is propagated, not retried.
type OpenAIClient struct {
	apiKey    string
	preferred string
	cheap     string
	client    *http.Client
}

func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	return &OpenAIClient{
		apiKey:    cfg.OpenAIAPIKey,
		preferred: cfg.OpenAIModel,
		cheap:     cfg.OpenAIFallback,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("OpenAI API key is missing, check OPENAI_API_KEY")
	}

	model := SelectModel(len(prompt.User), c.preferred, c.cheap, c.preferred)

	reqBody := map[string]interface{}{
		"model": model,
		"messages": []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		"max_tokens":      1500,
		"temperature":     0.3,
		"response_format": map[string]string{"type": "json_object"},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, completionsURL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("no choices in completion response")
	}

	return parsed.Choices[0].Message.Content, nil
}
