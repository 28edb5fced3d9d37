package analysis

import (
	"context"

	"imagelens-backend/internal/llm"
	"imagelens-backend/internal/search"
	"imagelens-backend/internal/shared/metrics"
	"imagelens-backend/internal/shared/telemetry"
	"imagelens-backend/internal/usage"
)

// Quota is the slice of the usage service the analysis flow needs.
type Quota interface {
	Consume(ctx context.Context, userID string, n int) (usage.Usage, error)
	RecordTokens(ctx context.Context, userID string, tokens int64, cost float64) error
}

// Service runs analyses on behalf of authenticated users: quota enforcement,
// a fresh pipeline per request, and usage bookkeeping.
type Service struct {
	llm       llm.Client
	search    search.Client
	maxTokens int
	quota     Quota
}

// NewService constructs the analysis service. quota may be nil to disable
// enforcement.
func NewService(llmClient llm.Client, searchClient search.Client, maxTokens int, quota Quota) *Service {
	return &Service{
		llm:       llmClient,
		search:    searchClient,
		maxTokens: maxTokens,
		quota:     quota,
	}
}

// Analyze charges one quota unit, walks the pipeline, and records token/cost
// consumption. Returns usage.ErrLimitReached when the quota is exhausted.
func (s *Service) Analyze(ctx context.Context, userID, requestID string, image []byte) (Record, error) {
	if s.quota != nil {
		if _, err := s.quota.Consume(ctx, userID, 1); err != nil {
			return Record{}, err
		}
	}

	metrics.IncAnalysisStarted()
	start := metrics.NowMillis()

	pipeline := NewPipeline(newRetryingClient(s.llm, requestID), s.search, s.maxTokens, requestID)
	rec, err := pipeline.Run(ctx, image)

	metrics.ObserveAnalysisDurationMs(metrics.NowMillis() - start)

	if err != nil {
		metrics.IncAnalysisFailed()
		telemetry.Error("analysis.failed", map[string]any{
			"request_id": requestID,
			"user_id":    userID,
			"error":      err.Error(),
		})
		return rec, err
	}

	metrics.IncAnalysisCompleted()
	metrics.IncCategory(string(rec.Category))

	if s.quota != nil && rec.Usage.TotalTokens > 0 {
		if err := s.quota.RecordTokens(ctx, userID, int64(rec.Usage.TotalTokens), rec.Usage.TotalCost); err != nil {
			telemetry.Error("usage.record_failed", map[string]any{
				"request_id": requestID,
				"user_id":    userID,
				"error":      err.Error(),
			})
		}
	}

	telemetry.Info("analysis.complete", map[string]any{
		"request_id":   requestID,
		"user_id":      userID,
		"category":     string(rec.Category),
		"total_tokens": rec.Usage.TotalTokens,
		"total_cost":   rec.Usage.TotalCost,
	})
	return rec, nil
}
