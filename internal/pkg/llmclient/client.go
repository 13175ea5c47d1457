package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Config struct {
	URL     string        `yaml:"url" env:"URL"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT" env-default:"60s"`
}

// Client — тонкая обёртка над сервисом улучшения формулировок.
type Client struct {
	url        string
	httpClient *http.Client
}

func New(config Config) *Client {
	return &Client{
		url:        config.URL,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

type improveRequest struct {
	Text string `json:"text"`
}

type improveResponse struct {
	Text string `json:"text"`
}

func (c *Client) ImproveText(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(improveRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/improve", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call llm service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("llm service returned %d: %s", resp.StatusCode, string(raw))
	}

	var parsed improveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return parsed.Text, nil
}
