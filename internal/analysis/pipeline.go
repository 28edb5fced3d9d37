package analysis

import (
	"context"
	"fmt"

	"imagelens-backend/internal/llm"
	"imagelens-backend/internal/search"
	"imagelens-backend/internal/shared/telemetry"
)

const (
	entryMaxTokens = 512
	humorMaxTokens = 200
)

// Pipeline walks one image through the stage graph. A fresh pipeline is
// built per request so no state leaks between concurrent analyses.
type Pipeline struct {
	llm       llm.Client
	search    search.Client
	maxTokens int
	requestID string
}

// NewPipeline constructs a pipeline around the given capability clients.
// maxTokens is the per-call output budget for stages without an override.
func NewPipeline(llmClient llm.Client, searchClient search.Client, maxTokens int, requestID string) *Pipeline {
	if maxTokens <= 0 {
		maxTokens = 100
	}
	return &Pipeline{
		llm:       llmClient,
		search:    searchClient,
		maxTokens: maxTokens,
		requestID: requestID,
	}
}

// Run executes the full walk: entry, one category branch, then the fixed
// tail. The returned record is fully populated even when enrichment stages
// degrade. Only entry-stage failures that are not region blocks surface as
// errors.
func (p *Pipeline) Run(ctx context.Context, image []byte) (Record, error) {
	rec := NewRecord()
	stage := StageEntry
	for stage != StageDone {
		if err := ctx.Err(); err != nil {
			return rec, err
		}
		var err error
		rec, err = p.step(ctx, stage, rec, image)
		if err != nil {
			return rec, err
		}
		stage = nextStage(stage, rec.Category)
	}
	return rec, nil
}

func (p *Pipeline) step(ctx context.Context, stage Stage, rec Record, image []byte) (Record, error) {
	switch stage {
	case StageEntry:
		return p.runEntry(ctx, rec, image)
	case StageSearch:
		return p.runSearch(ctx, rec), nil
	case StageMemeName:
		return p.runMemeName(ctx, rec), nil
	case StageHumor:
		return p.runHumor(ctx, rec), nil
	case StagePlatform:
		return p.runPlatform(ctx, rec), nil
	case StagePoster:
		return p.runPoster(ctx, rec), nil
	case StageSentiment:
		return p.runSentiment(ctx, rec), nil
	case StagePolitical:
		return p.runPolitical(ctx, rec), nil
	case StageOutrage:
		return p.runOutrage(ctx, rec), nil
	case StageAssemble:
		return p.runAssemble(rec), nil
	default:
		return rec, fmt.Errorf("unknown pipeline stage %q", stage)
	}
}

func (p *Pipeline) logSkip(stage Stage, rec Record) {
	telemetry.Info("stage.skip", map[string]any{
		"request_id": p.requestID,
		"stage":      string(stage),
		"category":   string(rec.Category),
	})
}

func (p *Pipeline) logDegraded(stage Stage, err error) {
	telemetry.Error("stage.degraded", map[string]any{
		"request_id": p.requestID,
		"stage":      string(stage),
		"error":      err.Error(),
	})
}
