package openai

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"imagelens-backend/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient("test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client.WithBaseURL(server.URL), server
}

func TestCompleteReturnsTextAndUsage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["max_tokens"] != float64(100) {
			t.Errorf("expected max_tokens=100, got %v", req["max_tokens"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "POSITIVE"}}],
			"usage": {"prompt_tokens": 40, "completion_tokens": 2, "total_tokens": 42}
		}`))
	})

	got, err := client.Complete(context.Background(), "classify sentiment", 100)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got.Text != "POSITIVE" {
		t.Fatalf("unexpected text: %q", got.Text)
	}
	if got.Usage.TotalTokens != 42 {
		t.Fatalf("expected 42 total tokens, got %d", got.Usage.TotalTokens)
	}
	wantCost := 40.0/1_000_000*0.15 + 2.0/1_000_000*0.60
	if math.Abs(got.Usage.TotalCost-wantCost) > 1e-12 {
		t.Fatalf("expected cost %v, got %v", wantCost, got.Usage.TotalCost)
	}
}

func TestCompleteVisionSendsDataURL(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content []struct {
					Type     string `json:"type"`
					ImageURL *struct {
						URL string `json:"url"`
					} `json:"image_url"`
				} `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || len(req.Messages[0].Content) != 2 {
			t.Errorf("expected one message with text and image parts")
		} else {
			img := req.Messages[0].Content[1]
			if img.Type != "image_url" || img.ImageURL == nil || !strings.HasPrefix(img.ImageURL.URL, "data:image/png;base64,") {
				t.Errorf("expected base64 data URL image part, got %+v", img)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "OCR: hello\nCONTENT_TYPE: MEME"}}],
			"usage": {"prompt_tokens": 300, "completion_tokens": 20, "total_tokens": 320}
		}`))
	})

	got, err := client.CompleteVision(context.Background(), "extract text", []byte{0x89, 0x50, 0x4e, 0x47}, 512)
	if err != nil {
		t.Fatalf("CompleteVision: %v", err)
	}
	if !strings.Contains(got.Text, "CONTENT_TYPE: MEME") {
		t.Fatalf("unexpected text: %q", got.Text)
	}
}

func TestCompleteMapsRegionBlock(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"message": "Country, region, or territory not supported", "type": "invalid_request_error", "code": "unsupported_country_region_territory"}}`))
	})

	_, err := client.Complete(context.Background(), "hello", 100)
	if err == nil {
		t.Fatal("expected error")
	}
	if !llm.IsRegionBlocked(err) {
		t.Fatalf("expected region-blocked error, got %v", err)
	}
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "model not found", "type": "invalid_request_error"}}`))
	})

	_, err := client.Complete(context.Background(), "hello", 100)
	if err == nil {
		t.Fatal("expected error")
	}
	if llm.IsRegionBlocked(err) {
		t.Fatalf("should not classify as region block: %v", err)
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected API error message, got %v", err)
	}
}

func TestCostForUnknownModelFallsBack(t *testing.T) {
	got := costFor("some-future-model", 1_000_000, 1_000_000)
	want := 0.15 + 0.60
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected fallback pricing %v, got %v", want, got)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "gpt-4o-mini"); err == nil {
		t.Fatal("expected error for missing api key")
	}
	if _, err := NewClient("key", " "); err == nil {
		t.Fatal("expected error for missing model")
	}
}
