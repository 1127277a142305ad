package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ismart/research-discovery-service/internal/domain"
	"github.com/ismart/research-discovery-service/internal/observability"
	"github.com/ismart/research-discovery-service/internal/sources/openalex"
)

// DefaultKeywordConcurrency caps how many keyword partitions run at once.
const DefaultKeywordConcurrency = 5

// DiscoverySource streams discovered works for one keyword. Implemented by
// openalex.Client.
type DiscoverySource interface {
	FetchKeyword(ctx context.Context, keyword string, pages int) []openalex.Work
}

// Config holds the orchestrator knobs.
type Config struct {
	// KeywordConcurrency bounds simultaneous keyword searches.
	KeywordConcurrency int
	// Pages is the default per-keyword page budget when the caller does
	// not supply one.
	Pages int
}

// Service runs the full pipeline for a query: keyword partitioning,
// concurrent per-keyword discovery and enrichment, then cross-keyword
// deduplication.
type Service struct {
	cfg       Config
	discovery DiscoverySource
	enricher  *Enricher
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// Result is the outcome of one pipeline run.
type Result struct {
	// Papers are the deduplicated, scored records in arrival order.
	Papers []*domain.Paper
	// Keywords are the partitions the query was split into.
	Keywords []string
}

// NewService wires the pipeline. metrics may be nil, which disables
// instrumentation.
func NewService(cfg Config, discovery DiscoverySource, enricher *Enricher, metrics *observability.Metrics, logger zerolog.Logger) *Service {
	if cfg.KeywordConcurrency <= 0 {
		cfg.KeywordConcurrency = DefaultKeywordConcurrency
	}
	if cfg.Pages <= 0 {
		cfg.Pages = openalex.DefaultPages
	}
	return &Service{
		cfg:       cfg,
		discovery: discovery,
		enricher:  enricher,
		metrics:   metrics,
		logger:    logger.With().Str("component", "pipeline").Logger(),
	}
}

// Discover runs the pipeline for query, fetching up to pages result pages
// per keyword (non-positive falls back to the configured default). A
// keyword that yields nothing, or whose upstream calls fail, never aborts
// the run; the other keywords still contribute.
func (s *Service) Discover(ctx context.Context, query string, pages int) *Result {
	start := time.Now()
	if pages <= 0 {
		pages = s.cfg.Pages
	}

	keywords := domain.SplitKeywords(query)
	searchID := uuid.NewString()
	logger := observability.WithSearchContext(s.logger, searchID, query)
	logger.Info().
		Int("keywords", len(keywords)).
		Int("pages", pages).
		Msg("starting discovery pipeline")

	if s.metrics != nil {
		s.metrics.RecordPipelineStarted()
		s.metrics.RecordKeywords(len(keywords))
	}

	sem := make(chan struct{}, s.cfg.KeywordConcurrency)
	batches := make([][]*domain.Paper, len(keywords))

	var wg sync.WaitGroup
	for i, kw := range keywords {
		wg.Add(1)
		go func(i int, kw string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			works := s.discovery.FetchKeyword(ctx, kw, pages)
			papers := s.enricher.EnrichWorks(ctx, works, kw)
			batches[i] = papers

			outcome := "ok"
			if len(papers) == 0 {
				outcome = "empty"
			}
			if s.metrics != nil {
				s.metrics.RecordKeywordSearch(outcome)
			}
			logger.Info().
				Str("keyword", kw).
				Int("works", len(works)).
				Int("papers", len(papers)).
				Msg("keyword search finished")
		}(i, kw)
	}
	wg.Wait()

	var all []*domain.Paper
	for _, batch := range batches {
		all = append(all, batch...)
	}
	deduped := Deduplicate(all)

	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.RecordPapersDiscovered(len(all))
		s.metrics.RecordPapersDuplicate(len(all) - len(deduped))
		s.metrics.RecordPipelineCompleted(elapsed.Seconds())
	}
	logger.Info().
		Int("discovered", len(all)).
		Int("unique", len(deduped)).
		Dur("elapsed", elapsed).
		Msg("discovery pipeline finished")

	return &Result{Papers: deduped, Keywords: keywords}
}
