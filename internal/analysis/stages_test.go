package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"imagelens-backend/internal/llm"
	"imagelens-backend/internal/search"
)

// stubLLM routes prompts to canned answers and counts calls.
type stubLLM struct {
	completeFn func(prompt string, maxTokens int) (llm.Completion, error)
	visionFn   func(prompt string, maxTokens int) (llm.Completion, error)

	completeCalls int
	visionCalls   int
}

func (s *stubLLM) Complete(ctx context.Context, prompt string, maxTokens int) (llm.Completion, error) {
	s.completeCalls++
	if s.completeFn == nil {
		return llm.Completion{}, errors.New("unexpected Complete call")
	}
	return s.completeFn(prompt, maxTokens)
}

func (s *stubLLM) CompleteVision(ctx context.Context, prompt string, image []byte, maxTokens int) (llm.Completion, error) {
	s.visionCalls++
	if s.visionFn == nil {
		return llm.Completion{}, errors.New("unexpected CompleteVision call")
	}
	return s.visionFn(prompt, maxTokens)
}

type stubSearch struct {
	fn    func(query string) ([]search.Result, error)
	calls []string
}

func (s *stubSearch) Search(ctx context.Context, query string) ([]search.Result, error) {
	s.calls = append(s.calls, query)
	if s.fn == nil {
		return nil, errors.New("unexpected Search call")
	}
	return s.fn(query)
}

func TestParseEntryResponse(t *testing.T) {
	text, category, ok := parseEntryResponse("OCR: hello world\nCONTENT_TYPE: MEME")
	if !ok || text != "hello world" || category != "MEME" {
		t.Fatalf("unexpected parse: %q %q %v", text, category, ok)
	}

	_, _, ok = parseEntryResponse("something completely unstructured")
	if ok {
		t.Fatal("expected parse to fail without prefixes")
	}
}

func TestEntryFallsBackOnMalformedResponse(t *testing.T) {
	client := &stubLLM{
		visionFn: func(prompt string, maxTokens int) (llm.Completion, error) {
			return llm.Completion{Text: "just a blob of prose"}, nil
		},
	}
	p := NewPipeline(client, nil, 100, "req-1")

	rec, err := p.runEntry(context.Background(), NewRecord(), []byte{1})
	if err != nil {
		t.Fatalf("runEntry: %v", err)
	}
	if rec.ExtractedText != "just a blob of prose" {
		t.Fatalf("expected full response as text, got %q", rec.ExtractedText)
	}
	if rec.Category != CategoryOther {
		t.Fatalf("expected OTHER fallback, got %s", rec.Category)
	}
}

func TestEntryUsesMaxTokenOverride(t *testing.T) {
	var gotMax int
	client := &stubLLM{
		visionFn: func(prompt string, maxTokens int) (llm.Completion, error) {
			gotMax = maxTokens
			return llm.Completion{Text: "OCR: x\nCONTENT_TYPE: OTHER"}, nil
		},
	}
	p := NewPipeline(client, nil, 100, "req-1")
	if _, err := p.runEntry(context.Background(), NewRecord(), []byte{1}); err != nil {
		t.Fatalf("runEntry: %v", err)
	}
	if gotMax != 512 {
		t.Fatalf("expected entry max tokens 512, got %d", gotMax)
	}
}

func TestBuildSearchQuery(t *testing.T) {
	short := "BUY NOW!!!"
	if got := buildSearchQuery(short); got != short {
		t.Fatalf("short text should pass through, got %q", got)
	}

	longWithSentence := "The first sentence is right here. " + strings.Repeat("filler ", 30)
	if got := buildSearchQuery(longWithSentence); got != "The first sentence is right here." {
		t.Fatalf("expected cut at sentence boundary, got %q", got)
	}

	longNoSentence := strings.Repeat("a", 250)
	if got := buildSearchQuery(longNoSentence); len(got) != 200 {
		t.Fatalf("expected 200-char cap, got %d", len(got))
	}
}

func TestBuildSearchQueryMultibyte(t *testing.T) {
	got := buildSearchQuery(strings.Repeat("日", 250))
	if !utf8.ValidString(got) {
		t.Fatalf("query contains a split rune: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 200 {
		t.Fatalf("expected 200-rune cap, got %d", n)
	}
}

func TestSearchSkipsInapplicableCategory(t *testing.T) {
	searcher := &stubSearch{}
	p := NewPipeline(&stubLLM{}, searcher, 100, "req-1")

	rec := NewRecord()
	rec.Category = CategoryMeme
	rec.ExtractedText = "some meme text"

	rec = p.runSearch(context.Background(), rec)
	if rec.SearchResults != NotApplicable {
		t.Fatalf("expected N/A for non-article content, got %q", rec.SearchResults)
	}
	if len(searcher.calls) != 0 {
		t.Fatalf("search should not be invoked, got %d calls", len(searcher.calls))
	}
}

func TestSearchRecordsFailureString(t *testing.T) {
	searcher := &stubSearch{
		fn: func(query string) ([]search.Result, error) {
			return nil, errors.New("rate limited")
		},
	}
	p := NewPipeline(&stubLLM{}, searcher, 100, "req-1")

	rec := NewRecord()
	rec.Category = CategoryArticle
	rec.ExtractedText = "Some article text."

	rec = p.runSearch(context.Background(), rec)
	if rec.SearchResults != "Search failed: rate limited" {
		t.Fatalf("unexpected failure string: %q", rec.SearchResults)
	}
}

func TestMemeNameDegenerateAnswers(t *testing.T) {
	cases := []struct {
		name   string
		answer string
		want   string
	}{
		{"empty", "", "Unknown Meme"},
		{"too long", strings.Repeat("x", 120), "Unknown Meme"},
		{"normal", "Drake Pointing", "Drake Pointing"},
		{"multibyte within limit", strings.Repeat("草", 40), strings.Repeat("草", 40)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &stubLLM{
				completeFn: func(prompt string, maxTokens int) (llm.Completion, error) {
					return llm.Completion{Text: tc.answer}, nil
				},
			}
			p := NewPipeline(client, nil, 100, "req-1")
			rec := NewRecord()
			rec.Category = CategoryMeme
			rec.ExtractedText = "meme text"

			rec = p.runMemeName(context.Background(), rec)
			if rec.MemeName != tc.want {
				t.Fatalf("got %q, want %q", rec.MemeName, tc.want)
			}
		})
	}
}

func TestHumorTruncatesLongExplanations(t *testing.T) {
	long := strings.Repeat("funny ", 100)
	client := &stubLLM{
		completeFn: func(prompt string, maxTokens int) (llm.Completion, error) {
			return llm.Completion{Text: long}, nil
		},
	}
	p := NewPipeline(client, nil, 100, "req-1")
	rec := NewRecord()
	rec.Category = CategoryMeme
	rec.ExtractedText = "meme text"
	rec.MemeName = "Drake Pointing"

	rec = p.runHumor(context.Background(), rec)
	if len(rec.HumorExplanation) != 500 {
		t.Fatalf("expected 500-char cap, got %d", len(rec.HumorExplanation))
	}
	if !strings.HasSuffix(rec.HumorExplanation, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", rec.HumorExplanation[490:])
	}
}

func TestHumorTruncatesMultibyteCleanly(t *testing.T) {
	client := &stubLLM{
		completeFn: func(prompt string, maxTokens int) (llm.Completion, error) {
			return llm.Completion{Text: strings.Repeat("面白い", 200)}, nil
		},
	}
	p := NewPipeline(client, nil, 100, "req-1")
	rec := NewRecord()
	rec.Category = CategoryMeme
	rec.ExtractedText = "meme text"

	rec = p.runHumor(context.Background(), rec)
	if !utf8.ValidString(rec.HumorExplanation) {
		t.Fatalf("explanation contains a split rune: %q", rec.HumorExplanation)
	}
	if n := utf8.RuneCountInString(rec.HumorExplanation); n != 500 {
		t.Fatalf("expected 500-rune cap, got %d", n)
	}
	if !strings.HasSuffix(rec.HumorExplanation, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", rec.HumorExplanation)
	}
}

func TestNormalizePlatform(t *testing.T) {
	cases := []struct {
		in   string
		want Platform
	}{
		{"x", PlatformTwitter},
		{"X", PlatformTwitter},
		{"TWITTER", PlatformTwitter},
		{" reddit ", PlatformReddit},
		{"MYSPACE", PlatformUnknown},
		{"", PlatformUnknown},
	}
	for _, tc := range cases {
		if got := NormalizePlatform(tc.in); got != tc.want {
			t.Errorf("NormalizePlatform(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestPosterStripsHandleMarkers(t *testing.T) {
	cases := []struct {
		answer string
		want   string
	}{
		{"@elonmusk", "elonmusk"},
		{"u/throwaway123", "throwaway123"},
		{"Jane Doe", "Jane Doe"},
		{"", "Unknown User"},
		{strings.Repeat("n", 150), "Unknown User"},
		{strings.Repeat("山", 50), strings.Repeat("山", 50)},
	}
	for _, tc := range cases {
		client := &stubLLM{
			completeFn: func(prompt string, maxTokens int) (llm.Completion, error) {
				return llm.Completion{Text: tc.answer}, nil
			},
		}
		p := NewPipeline(client, nil, 100, "req-1")
		rec := NewRecord()
		rec.Category = CategorySocialMedia
		rec.ExtractedText = "post text"
		rec.Platform = PlatformTwitter

		rec = p.runPoster(context.Background(), rec)
		if rec.PosterName != tc.want {
			t.Errorf("answer %q: got %q, want %q", tc.answer, rec.PosterName, tc.want)
		}
	}
}

func TestSentimentInvalidAnswerDefaultsNeutral(t *testing.T) {
	client := &stubLLM{
		completeFn: func(prompt string, maxTokens int) (llm.Completion, error) {
			return llm.Completion{Text: "kind of mixed, really"}, nil
		},
	}
	p := NewPipeline(client, nil, 100, "req-1")
	rec := NewRecord()
	rec.ExtractedText = "some text"

	rec = p.runSentiment(context.Background(), rec)
	if rec.Sentiment != SentimentNeutral {
		t.Fatalf("expected NEUTRAL, got %s", rec.Sentiment)
	}
}

func TestTailFailuresDegrade(t *testing.T) {
	client := &stubLLM{
		completeFn: func(prompt string, maxTokens int) (llm.Completion, error) {
			return llm.Completion{}, fmt.Errorf("boom")
		},
	}
	p := NewPipeline(client, nil, 100, "req-1")
	rec := NewRecord()
	rec.ExtractedText = "some text"
	rec.IsPolitical = true
	rec.IsOutrage = true

	rec = p.runSentiment(context.Background(), rec)
	rec = p.runPolitical(context.Background(), rec)
	rec = p.runOutrage(context.Background(), rec)

	if rec.Sentiment != SentimentNeutral || rec.IsPolitical || rec.IsOutrage {
		t.Fatalf("expected conservative defaults, got %+v", rec)
	}
}
