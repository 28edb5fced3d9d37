// Package openai implements llm.Client using the OpenAI Chat Completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"imagelens-backend/internal/llm"
)

const defaultAPIURL = "https://api.openai.com/v1/chat/completions"

// Pricing per 1M tokens, USD. Unknown models fall back to the cheapest entry.
var pricing = map[string]struct{ input, output float64 }{
	"gpt-4o-mini":   {0.15, 0.60},
	"gpt-4o":        {2.50, 10.00},
	"gpt-4-turbo":   {10.00, 30.00},
	"gpt-3.5-turbo": {0.50, 1.50},
}

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("COMPLETION_MODEL is required for OpenAI")
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		apiURL: defaultAPIURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// WithBaseURL overrides the API endpoint, used by tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.apiURL = url
	return c
}

type contentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL *struct {
		URL string `json:"url"`
	} `json:"image_url,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Complete sends a text-only prompt.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (llm.Completion, error) {
	msg := chatMessage{Role: "user", Content: prompt}
	return c.completeOnce(ctx, []chatMessage{msg}, maxTokens)
}

// CompleteVision sends a prompt with an attached image as a data URL.
func (c *Client) CompleteVision(ctx context.Context, prompt string, image []byte, maxTokens int) (llm.Completion, error) {
	if len(image) == 0 {
		return llm.Completion{}, fmt.Errorf("openai vision call requires image bytes")
	}
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(image)
	imagePart := contentPart{Type: "image_url"}
	imagePart.ImageURL = &struct {
		URL string `json:"url"`
	}{URL: dataURL}
	msg := chatMessage{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: prompt},
			imagePart,
		},
	}
	return c.completeOnce(ctx, []chatMessage{msg}, maxTokens)
}

func (c *Client) completeOnce(ctx context.Context, messages []chatMessage, maxTokens int) (llm.Completion, error) {
	reqBody := chatRequest{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return llm.Completion{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return llm.Completion{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return llm.Completion{}, fmt.Errorf("openai request timeout: %w", err)
		}
		return llm.Completion{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Completion{}, err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return llm.Completion{}, fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		if resp.StatusCode == http.StatusForbidden || strings.Contains(parsed.Error.Code, "unsupported_country_region_territory") || strings.Contains(parsed.Error.Message, "unsupported_country_region_territory") {
			return llm.Completion{}, fmt.Errorf("openai error: %s: %w", parsed.Error.Message, llm.ErrRegionBlocked)
		}
		return llm.Completion{}, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode == http.StatusForbidden {
		return llm.Completion{}, fmt.Errorf("openai http status 403: %w", llm.ErrRegionBlocked)
	}
	if resp.StatusCode != http.StatusOK {
		return llm.Completion{}, fmt.Errorf("openai http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if len(parsed.Choices) == 0 {
		return llm.Completion{}, fmt.Errorf("openai response missing choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	usage := toUsage(c.model, parsed.Usage)
	logUsage(c.model, usage)
	return llm.Completion{Text: content, Usage: usage}, nil
}

func toUsage(model string, raw *struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}) llm.Usage {
	if raw == nil {
		return llm.Usage{}
	}
	return llm.Usage{
		PromptTokens:     raw.PromptTokens,
		CompletionTokens: raw.CompletionTokens,
		TotalTokens:      raw.TotalTokens,
		TotalCost:        costFor(model, raw.PromptTokens, raw.CompletionTokens),
	}
}

func costFor(model string, promptTokens, completionTokens int) float64 {
	key := strings.ToLower(strings.TrimSpace(model))
	rates, ok := pricing[key]
	if !ok {
		rates = pricing["gpt-4o-mini"]
	}
	inputCost := float64(promptTokens) / 1_000_000 * rates.input
	outputCost := float64(completionTokens) / 1_000_000 * rates.output
	return inputCost + outputCost
}

func logUsage(model string, usage llm.Usage) {
	log.Printf("llm response provider=openai model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d cost=%.6f",
		model, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens, usage.TotalCost)
}

var _ llm.Client = (*Client)(nil)
