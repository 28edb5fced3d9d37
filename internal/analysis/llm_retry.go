package analysis

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"time"

	"imagelens-backend/internal/llm"
)

const llmRetryBaseDelay = 300 * time.Millisecond

// retryingClient retries one transient failure per call. Region blocks and
// other non-transient errors pass straight through.
type retryingClient struct {
	base      llm.Client
	requestID string
}

func newRetryingClient(base llm.Client, requestID string) llm.Client {
	if base == nil {
		return nil
	}
	return retryingClient{
		base:      base,
		requestID: requestID,
	}
}

func (r retryingClient) Complete(ctx context.Context, prompt string, maxTokens int) (llm.Completion, error) {
	resp, err := r.base.Complete(ctx, prompt, maxTokens)
	if err == nil || !shouldRetryLLM(err) {
		return resp, err
	}
	if err := r.wait(ctx, err); err != nil {
		return llm.Completion{}, err
	}
	return r.base.Complete(ctx, prompt, maxTokens)
}

func (r retryingClient) CompleteVision(ctx context.Context, prompt string, image []byte, maxTokens int) (llm.Completion, error) {
	resp, err := r.base.CompleteVision(ctx, prompt, image, maxTokens)
	if err == nil || !shouldRetryLLM(err) {
		return resp, err
	}
	if err := r.wait(ctx, err); err != nil {
		return llm.Completion{}, err
	}
	return r.base.CompleteVision(ctx, prompt, image, maxTokens)
}

func (r retryingClient) wait(ctx context.Context, cause error) error {
	log.Printf("llm retry attempt=1 request_id=%s error=%s", r.requestID, cause.Error())
	select {
	case <-time.After(llmRetryBaseDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func shouldRetryLLM(err error) bool {
	if err == nil {
		return false
	}
	if llm.IsRegionBlocked(err) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "timeout") {
		return true
	}
	if strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof") {
		return true
	}

	return false
}
