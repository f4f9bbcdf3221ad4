// Package aitag asks an OpenAI-compatible chat completions endpoint to tag
// and describe a child's drawing.
package aitag

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

	"kidcanvas/pkg/sanitize"
)

const (
	_defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	_defaultModel    = "gpt-4o-mini"
	_defaultTimeout  = 30 * time.Second

	MaxTags = 10
)

var ErrDisabled = errors.New("ai tagging is not configured")

const prompt = `You are tagging a child's artwork for a family gallery.
Return JSON only: {"tags": ["..."], "description": "..."}.
Tags: up to 10 short lowercase nouns or colors visible in the picture.
Description: one warm sentence describing the drawing.`

type Config struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
}

type Result struct {
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = _defaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = _defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = _defaultTimeout
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Describe tags the image at imageURL. The title is passed as a hint.
func (c *Client) Describe(ctx context.Context, imageURLStr, title string) (*Result, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	hint := prompt
	if title != "" {
		hint += "\nThe child called it: " + title
	}

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: hint},
				{Type: "image_url", ImageURL: &imageURL{URL: imageURLStr}},
			},
		}},
		Temperature:    0.2,
		MaxTokens:      300,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("aitag - Describe - json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("aitag - Describe - NewRequest: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("aitag - Describe - http.Do: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("aitag - Describe - io.ReadAll: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aitag - Describe: status %d: %s", resp.StatusCode, truncate(string(raw), 256))
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, fmt.Errorf("aitag - Describe - decode response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, errors.New("aitag - Describe: no choices in response")
	}

	return parseResult(cr.Choices[0].Message.Content)
}

func parseResult(content string) (*Result, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var r Result
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &r); err != nil {
		return nil, fmt.Errorf("aitag - parseResult: %w", err)
	}

	r.Tags = sanitize.Tags(r.Tags)
	if len(r.Tags) > MaxTags {
		r.Tags = r.Tags[:MaxTags]
	}
	r.Description = sanitize.Text(r.Description)
	return &r, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
