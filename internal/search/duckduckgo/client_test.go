package duckduckgo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleHTML = `<html><body>
<div class="result">
  <h2><a class="result__a" href="/l/?uddg=https%3A%2F%2Fexample.com%2Fstory">Example Story</a></h2>
  <a class="result__snippet">A short snippet about the story.</a>
</div>
<div class="result">
  <h2><a class="result__a" href="https://other.example.com">Other Result</a></h2>
  <a class="result__snippet">Second snippet.</a>
</div>
</body></html>`

func TestSearchParsesResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostFormValue("q"); got != "moon landing" {
			t.Errorf("expected query in form, got %q", got)
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(sampleHTML))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	results, err := client.Search(context.Background(), "moon landing")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Example Story" {
		t.Fatalf("unexpected title: %q", results[0].Title)
	}
	if results[0].URL != "https://example.com/story" {
		t.Fatalf("expected unwrapped redirect URL, got %q", results[0].URL)
	}
	if results[0].Snippet != "A short snippet about the story." {
		t.Fatalf("unexpected snippet: %q", results[0].Snippet)
	}
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	client := NewClient("")
	if _, err := client.Search(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestSearchErrorsOnNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div class="no-results">nothing</div></body></html>`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Search(context.Background(), "anything"); err == nil {
		t.Fatal("expected error when no results parsed")
	}
}

func TestSearchErrorsOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Search(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
