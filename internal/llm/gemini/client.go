// Package gemini implements llm.Client using the Google Generative Language API.
package gemini

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

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Pricing per 1M tokens, USD. Unknown models fall back to the cheapest entry.
var pricing = map[string]struct{ input, output float64 }{
	"gemini-2.5-flash-lite": {0.10, 0.40},
	"gemini-2.0-flash":      {0.10, 0.40},
	"gemini-2.5-flash":      {0.30, 2.50},
	"gemini-2.5-pro":        {1.25, 10.00},
	"gemini-1.5-flash":      {0.075, 0.30},
	"gemini-1.5-pro":        {0.075, 0.30},
}

// Client implements llm.Client against the generateContent endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new Gemini client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("COMPLETION_MODEL is required for Gemini")
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("GEMINI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// WithBaseURL overrides the API endpoint, used by tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = strings.TrimRight(url, "/")
	return c
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type contentPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []contentPart `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Complete sends a text-only prompt.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (llm.Completion, error) {
	parts := []contentPart{{Text: prompt}}
	return c.generate(ctx, parts, prompt, maxTokens)
}

// CompleteVision sends a prompt with an inline base64 image.
func (c *Client) CompleteVision(ctx context.Context, prompt string, image []byte, maxTokens int) (llm.Completion, error) {
	if len(image) == 0 {
		return llm.Completion{}, fmt.Errorf("gemini vision call requires image bytes")
	}
	parts := []contentPart{
		{Text: prompt},
		{InlineData: &inlineData{
			MimeType: "image/png",
			Data:     base64.StdEncoding.EncodeToString(image),
		}},
	}
	return c.generate(ctx, parts, prompt, maxTokens)
}

func (c *Client) generate(ctx context.Context, parts []contentPart, prompt string, maxTokens int) (llm.Completion, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: parts}},
	}
	if maxTokens > 0 {
		reqBody.GenerationConfig = &generationConfig{MaxOutputTokens: maxTokens}
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return llm.Completion{}, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return llm.Completion{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return llm.Completion{}, fmt.Errorf("gemini request timeout: %w", err)
		}
		return llm.Completion{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Completion{}, err
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return llm.Completion{}, fmt.Errorf("gemini response parse: %w", err)
	}
	if parsed.Error != nil {
		if resp.StatusCode == http.StatusForbidden || parsed.Error.Code == http.StatusForbidden || strings.Contains(parsed.Error.Message, "unsupported_country_region_territory") {
			return llm.Completion{}, fmt.Errorf("gemini error: %s: %w", parsed.Error.Message, llm.ErrRegionBlocked)
		}
		return llm.Completion{}, fmt.Errorf("gemini error: %s (%s)", parsed.Error.Message, parsed.Error.Status)
	}
	if resp.StatusCode == http.StatusForbidden {
		return llm.Completion{}, fmt.Errorf("gemini http status 403: %w", llm.ErrRegionBlocked)
	}
	if resp.StatusCode != http.StatusOK {
		return llm.Completion{}, fmt.Errorf("gemini http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return llm.Completion{}, fmt.Errorf("gemini response missing candidates")
	}

	var b strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	text := strings.TrimSpace(b.String())
	usage := estimateUsage(c.model, prompt, text)
	logUsage(c.model, usage)
	return llm.Completion{Text: text, Usage: usage}, nil
}

// estimateUsage approximates tokens at 4 characters per token. The
// generateContent response does not always include usage metadata.
func estimateUsage(model, prompt, response string) llm.Usage {
	promptTokens := len(prompt) / 4
	completionTokens := len(response) / 4
	return llm.Usage{
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		TotalCost:        costFor(model, promptTokens, completionTokens),
	}
}

func costFor(model string, promptTokens, completionTokens int) float64 {
	key := strings.ToLower(strings.TrimSpace(model))
	rates, ok := pricing[key]
	if !ok {
		rates = pricing["gemini-2.5-flash-lite"]
	}
	inputCost := float64(promptTokens) / 1_000_000 * rates.input
	outputCost := float64(completionTokens) / 1_000_000 * rates.output
	return inputCost + outputCost
}

func logUsage(model string, usage llm.Usage) {
	log.Printf("llm response provider=gemini model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d cost=%.6f",
		model, usage.PromptTokens, usage.CompletionTokens, usage.TotalTokens, usage.TotalCost)
}

var _ llm.Client = (*Client)(nil)
