// Package llm defines the provider-neutral completion client used by the
// analysis pipeline. Implementations live in the openai and gemini subpackages.
package llm

import (
	"context"
	"errors"
	"strings"
)

// Usage reports token consumption and estimated cost for a single call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	TotalCost        float64
}

// Add accumulates another call's usage into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
	u.TotalCost += other.TotalCost
}

// Completion is the text result of a model call plus its usage.
type Completion struct {
	Text  string
	Usage Usage
}

// Client is a text-completion capability with optional image input.
type Client interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (Completion, error)
	CompleteVision(ctx context.Context, prompt string, image []byte, maxTokens int) (Completion, error)
}

// ErrRegionBlocked indicates the provider rejected the call because the
// caller's region is not served.
var ErrRegionBlocked = errors.New("provider region blocked")

// IsRegionBlocked reports whether err represents a provider region block.
// Providers surface this as a dedicated error code or a bare 403.
func IsRegionBlocked(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRegionBlocked) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unsupported_country_region_territory") ||
		strings.Contains(msg, "unsupported country") ||
		strings.Contains(msg, "403")
}
