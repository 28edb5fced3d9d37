package analysis

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"imagelens-backend/internal/llm"
	"imagelens-backend/internal/search"
	"imagelens-backend/internal/shared/metrics"
	"imagelens-backend/internal/shared/telemetry"
)

// runEntry extracts text and classifies the image. Region blocks degrade to
// an ERROR record with empty text so the tail short-circuits without further
// capability calls. Any other failure is fatal to the request.
func (p *Pipeline) runEntry(ctx context.Context, rec Record, image []byte) (Record, error) {
	completion, err := p.llm.CompleteVision(ctx, entryPrompt, image, entryMaxTokens)
	if err != nil {
		if llm.IsRegionBlocked(err) {
			metrics.IncRegionBlocked()
			telemetry.Error("entry.region_blocked", map[string]any{
				"request_id": p.requestID,
				"error":      err.Error(),
			})
			rec.Category = CategoryError
			rec.ExtractedText = ""
			rec.Usage.Error = err.Error()
			return rec, nil
		}
		return rec, fmt.Errorf("entry stage: %w", err)
	}
	rec.Usage.Add(completion.Usage)

	text, rawCategory, ok := parseEntryResponse(completion.Text)
	if !ok {
		// Malformed-but-present responses are still usable as plain text.
		rec.ExtractedText = strings.TrimSpace(completion.Text)
		rec.Category = CategoryOther
	} else {
		rec.ExtractedText = text
		rec.Category = NormalizeCategory(rawCategory)
	}

	telemetry.Debug("entry.text", map[string]any{
		"request_id": p.requestID,
		"text":       rec.ExtractedText,
	})
	telemetry.Info("entry.classified", map[string]any{
		"request_id": p.requestID,
		"category":   string(rec.Category),
	})
	return rec, nil
}

// parseEntryResponse pulls the OCR and CONTENT_TYPE lines out of the model's
// line-oriented answer. ok is false when neither prefix is present.
func parseEntryResponse(raw string) (text, category string, ok bool) {
	for _, line := range strings.Split(raw, "\n") {
		if after, found := strings.CutPrefix(line, "OCR:"); found {
			text = strings.TrimSpace(after)
			ok = true
		} else if after, found := strings.CutPrefix(line, "CONTENT_TYPE:"); found {
			category = strings.TrimSpace(after)
			ok = true
		}
	}
	return text, category, ok
}

// runSearch fact-checks article and factual content. Failures are recorded
// in the result, never raised.
func (p *Pipeline) runSearch(ctx context.Context, rec Record) Record {
	if (rec.Category != CategoryArticle && rec.Category != CategoryFacts) || strings.TrimSpace(rec.ExtractedText) == "" {
		p.logSkip(StageSearch, rec)
		return rec
	}

	query := buildSearchQuery(rec.ExtractedText)
	results, err := p.search.Search(ctx, query)
	if err != nil {
		p.logDegraded(StageSearch, err)
		rec.SearchResults = "Search failed: " + err.Error()
		return rec
	}

	rec.SearchResults = flattenSearchResults(results)
	telemetry.Debug("search.results", map[string]any{
		"request_id": p.requestID,
		"results":    rec.SearchResults,
	})
	return rec
}

// buildSearchQuery takes the first 200 characters of the extracted text and,
// when that exceeds 100 characters, cuts at the first sentence boundary.
// Lengths count runes so multi-byte text is never cut mid-character.
func buildSearchQuery(text string) string {
	query := truncateRunes(text, 200)
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) > 100 {
		if sentence, _, found := strings.Cut(query, "."); found {
			query = sentence + "."
		}
	}
	return query
}

// truncateRunes cuts s to at most n runes, never splitting a character.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// flattenSearchResults renders ranked hits into the single text blob the
// downstream prompts and the response expect.
func flattenSearchResults(results []search.Result) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(r.Title)
		if r.Snippet != "" {
			b.WriteString(": ")
			b.WriteString(r.Snippet)
		}
		if r.URL != "" {
			b.WriteString(" (")
			b.WriteString(r.URL)
			b.WriteString(")")
		}
	}
	return b.String()
}

// runMemeName identifies the meme format for MEME content.
func (p *Pipeline) runMemeName(ctx context.Context, rec Record) Record {
	if rec.Category != CategoryMeme || strings.TrimSpace(rec.ExtractedText) == "" {
		p.logSkip(StageMemeName, rec)
		return rec
	}

	completion, err := p.llm.Complete(ctx, memeNamePrompt(rec.ExtractedText), p.maxTokens)
	if err != nil {
		p.logDegraded(StageMemeName, err)
		rec.MemeName = "Analysis Failed"
		return rec
	}
	rec.Usage.Add(completion.Usage)

	name := strings.TrimSpace(completion.Text)
	if name == "" || utf8.RuneCountInString(name) > 100 {
		name = "Unknown Meme"
	}
	rec.MemeName = name
	return rec
}

// runHumor explains the joke for MEME content. Runs after meme naming and
// degrades independently of it.
func (p *Pipeline) runHumor(ctx context.Context, rec Record) Record {
	if rec.Category != CategoryMeme || strings.TrimSpace(rec.ExtractedText) == "" {
		p.logSkip(StageHumor, rec)
		return rec
	}

	memeContext := ""
	if rec.MemeName != "" && rec.MemeName != "Unknown Meme" && rec.MemeName != NotApplicable {
		memeContext = fmt.Sprintf(" (Meme format: %s)", rec.MemeName)
	}

	completion, err := p.llm.Complete(ctx, humorPrompt(rec.ExtractedText, memeContext), humorMaxTokens)
	if err != nil {
		p.logDegraded(StageHumor, err)
		rec.HumorExplanation = "Humor analysis failed"
		return rec
	}
	rec.Usage.Add(completion.Usage)

	explanation := strings.TrimSpace(completion.Text)
	if explanation == "" {
		explanation = "Humor analysis unavailable"
	} else if utf8.RuneCountInString(explanation) > 500 {
		explanation = truncateRunes(explanation, 497) + "..."
	}
	rec.HumorExplanation = explanation
	return rec
}

// runPlatform detects which social network a SOCIAL_MEDIA screenshot is from.
func (p *Pipeline) runPlatform(ctx context.Context, rec Record) Record {
	if rec.Category != CategorySocialMedia || strings.TrimSpace(rec.ExtractedText) == "" {
		p.logSkip(StagePlatform, rec)
		return rec
	}

	completion, err := p.llm.Complete(ctx, platformPrompt(rec.ExtractedText), p.maxTokens)
	if err != nil {
		p.logDegraded(StagePlatform, err)
		rec.Platform = PlatformUnknown
		return rec
	}
	rec.Usage.Add(completion.Usage)

	rec.Platform = NormalizePlatform(completion.Text)
	return rec
}

// runPoster identifies the original poster of SOCIAL_MEDIA content.
func (p *Pipeline) runPoster(ctx context.Context, rec Record) Record {
	if rec.Category != CategorySocialMedia || strings.TrimSpace(rec.ExtractedText) == "" {
		p.logSkip(StagePoster, rec)
		return rec
	}

	completion, err := p.llm.Complete(ctx, posterPrompt(rec.ExtractedText, rec.Platform), p.maxTokens)
	if err != nil {
		p.logDegraded(StagePoster, err)
		rec.PosterName = "Unknown User"
		return rec
	}
	rec.Usage.Add(completion.Usage)

	poster := strings.TrimSpace(completion.Text)
	if poster == "" || utf8.RuneCountInString(poster) > 100 {
		poster = "Unknown User"
	}
	poster = strings.TrimPrefix(poster, "@")
	poster = strings.TrimPrefix(poster, "u/")
	rec.PosterName = strings.TrimSpace(poster)
	return rec
}

// runSentiment classifies emotional tone. Empty text short-circuits to
// NEUTRAL without a capability call.
func (p *Pipeline) runSentiment(ctx context.Context, rec Record) Record {
	if strings.TrimSpace(rec.ExtractedText) == "" {
		rec.Sentiment = SentimentNeutral
		p.logSkip(StageSentiment, rec)
		return rec
	}

	completion, err := p.llm.Complete(ctx, sentimentPrompt(rec.ExtractedText), p.maxTokens)
	if err != nil {
		p.logDegraded(StageSentiment, err)
		rec.Sentiment = SentimentNeutral
		return rec
	}
	rec.Usage.Add(completion.Usage)

	rec.Sentiment = NormalizeSentiment(completion.Text)
	return rec
}

// runPolitical asks a closed YES/NO question. Anything but a clear YES
// resolves to false.
func (p *Pipeline) runPolitical(ctx context.Context, rec Record) Record {
	if strings.TrimSpace(rec.ExtractedText) == "" {
		rec.IsPolitical = false
		p.logSkip(StagePolitical, rec)
		return rec
	}

	completion, err := p.llm.Complete(ctx, politicalPrompt(rec.ExtractedText), p.maxTokens)
	if err != nil {
		p.logDegraded(StagePolitical, err)
		rec.IsPolitical = false
		return rec
	}
	rec.Usage.Add(completion.Usage)

	rec.IsPolitical = strings.ToUpper(strings.TrimSpace(completion.Text)) == "YES"
	return rec
}

// runOutrage mirrors runPolitical with its own question.
func (p *Pipeline) runOutrage(ctx context.Context, rec Record) Record {
	if strings.TrimSpace(rec.ExtractedText) == "" {
		rec.IsOutrage = false
		p.logSkip(StageOutrage, rec)
		return rec
	}

	completion, err := p.llm.Complete(ctx, outragePrompt(rec.ExtractedText), p.maxTokens)
	if err != nil {
		p.logDegraded(StageOutrage, err)
		rec.IsOutrage = false
		return rec
	}
	rec.Usage.Add(completion.Usage)

	rec.IsOutrage = strings.ToUpper(strings.TrimSpace(completion.Text)) == "YES"
	return rec
}

// runAssemble closes the walk with a summary log. The record is already
// complete at this point.
func (p *Pipeline) runAssemble(rec Record) Record {
	telemetry.Info("analysis.assembled", map[string]any{
		"request_id":   p.requestID,
		"category":     string(rec.Category),
		"sentiment":    string(rec.Sentiment),
		"is_political": rec.IsPolitical,
		"is_outrage":   rec.IsOutrage,
		"total_tokens": rec.Usage.TotalTokens,
		"total_cost":   rec.Usage.TotalCost,
	})
	return rec
}
