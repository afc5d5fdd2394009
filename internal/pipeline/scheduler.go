// Package pipeline implements the daemon's main loop: one *cycle* per
// tick, fetching every active source through a bounded worker pool and
// running each new item through Summarize -> Evaluate -> insert_item ->
// insert_vector before sleeping until the next tick.
package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"prismis/internal/analysis/evaluate"
	"prismis/internal/analysis/summarize"
	"prismis/internal/config"
	"prismis/internal/domain/entity"
	"prismis/internal/embed"
	"prismis/internal/fetch"
	"prismis/internal/observability/logging"
	"prismis/internal/observability/metrics"
	"prismis/internal/repository"
)

// defaultSourceWorkers matches spec.md §4.G's default worker pool size:
// sources are fetched in parallel, bounded by this many at once.
const defaultSourceWorkers = 4

// ConfigLoader re-reads config.toml at the start of every cycle, so
// interval and interest-profile edits propagate without a restart.
type ConfigLoader func() (*config.Config, error)

// Scheduler runs the main loop described in spec.md §4.G. It owns no
// network or LLM client directly; those are reached through the
// Fetcher, Summarizer, Evaluator and embedding Hook it is constructed
// with.
type Scheduler struct {
	store         repository.Store
	fetchers      fetch.Fetcher
	summarizer    summarize.Summarizer
	evaluator     evaluate.Evaluator
	embedHook     *embed.Hook
	loadConfig    ConfigLoader
	sourceWorkers int
}

// New wires a Scheduler around its collaborators. fetchers is typically
// a *fetch.Registry, which already dispatches by source type; it is
// accepted here as the narrower fetch.Fetcher interface so tests can
// substitute a fake without constructing a full registry. sourceWorkers
// <= 0 falls back to defaultSourceWorkers.
func New(
	store repository.Store,
	fetchers fetch.Fetcher,
	summarizer summarize.Summarizer,
	evaluator evaluate.Evaluator,
	embedHook *embed.Hook,
	loadConfig ConfigLoader,
	sourceWorkers int,
) *Scheduler {
	if sourceWorkers <= 0 {
		sourceWorkers = defaultSourceWorkers
	}
	return &Scheduler{
		store:         store,
		fetchers:      fetchers,
		summarizer:    summarizer,
		evaluator:     evaluator,
		embedHook:     embedHook,
		loadConfig:    loadConfig,
		sourceWorkers: sourceWorkers,
	}
}

// Run executes cycles until ctx is cancelled. Cancellation is
// cooperative: the scheduler stops accepting new cycles and lets the
// current one finish — in-flight fetches are cancelled at the next
// inter-item boundary, in-flight analyses are allowed to complete.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Error("cycle failed", slog.Any("error", err))
		}

		cfg, err := s.loadConfig()
		interval := time.Duration(config.DefaultFetchInterval) * time.Minute
		if err == nil {
			interval = time.Duration(cfg.Daemon.FetchIntervalMinutes) * time.Minute
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// runCycle is one pass over every active source: load config, fetch each
// source through a bounded pool, analyze and persist new items, mark
// each source fetched, then reconcile orphaned vectors once every
// source worker has finished.
func (s *Scheduler) runCycle(ctx context.Context) error {
	ctx = logging.WithCycleIDValue(ctx, newCycleID())
	logger := logging.WithCycleID(ctx, slog.Default())

	cfg, err := s.loadConfig()
	if err != nil {
		return err
	}

	sources, err := s.store.ListSources(ctx, true)
	if err != nil {
		return err
	}
	logger.Info("cycle started", slog.Int("sources", len(sources)))

	fetchCfg := fetch.Config{
		MaxItemsPerFeed: cfg.Daemon.MaxItemsPerFeed,
		MaxDaysLookback: cfg.Daemon.MaxDaysLookback,
	}.Clamped()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.sourceWorkers)

	for _, source := range sources {
		source := source
		eg.Go(func() error {
			s.processSource(egCtx, logger, source, cfg.Context, fetchCfg)
			return nil
		})
	}
	// errgroup.Wait only ever returns an error from a Go func that
	// itself returns one; processSource swallows everything so a
	// single source's fault can never abort the cycle.
	_ = eg.Wait()

	deleted, err := s.store.CleanupOrphanedVectors(ctx)
	if err != nil {
		logger.Warn("cleanup orphaned vectors failed", slog.Any("error", err))
	} else {
		metrics.RecordVectorReconciliation(deleted)
		if deleted > 0 {
			logger.Info("cleaned up orphaned vectors", slog.Int("count", deleted))
		}
	}

	logger.Info("cycle finished")
	return nil
}

// processSource fetches one source and analyzes its new records
// sequentially, so per-source LLM cost stays predictable and the
// exists-then-insert dedup check never races within the source. Any
// failure here is isolated to this source: it is recorded via
// MarkFetched and never propagated to the cycle.
func (s *Scheduler) processSource(ctx context.Context, logger *slog.Logger, source *entity.Source, userCtx entity.UserContext, fetchCfg fetch.Config) {
	start := time.Now()
	records, err := s.fetchers.Fetch(ctx, source)
	metrics.RecordSourceFetch(source.ID, time.Since(start))
	if err != nil {
		metrics.RecordSourceFetchError(source.ID)
		logger.Warn("fetch failed", slog.String("source_id", source.ID), slog.Any("error", err))
		if markErr := s.store.MarkFetched(ctx, source.ID, false, err); markErr != nil {
			logger.Error("mark fetched failed", slog.String("source_id", source.ID), slog.Any("error", markErr))
		}
		return
	}
	metrics.RecordItemsFetched(source.ID, len(records))

	for _, record := range records {
		if ctx.Err() != nil {
			break
		}
		s.processRecord(ctx, logger, source, record, userCtx, fetchCfg)
	}

	if err := s.store.MarkFetched(ctx, source.ID, true, nil); err != nil {
		logger.Error("mark fetched failed", slog.String("source_id", source.ID), slog.Any("error", err))
	}
}

// processRecord is the dedup-then-analyze-then-persist critical section
// for one fetched record. exists and Insert execute back to back with no
// intervening await on another source, which is what makes the dedup
// check linearizable per spec.md §5.
func (s *Scheduler) processRecord(ctx context.Context, logger *slog.Logger, source *entity.Source, record entity.FetchRecord, userCtx entity.UserContext, fetchCfg fetch.Config) {
	exists, err := s.store.Exists(ctx, source.ID, record.ExternalID)
	if err != nil {
		logger.Warn("exists check failed", slog.String("source_id", source.ID), slog.Any("error", err))
		return
	}
	if exists {
		return
	}

	summarizeStart := time.Now()
	summaryOut, err := s.summarizer.Summarize(ctx, summarize.Input{
		Title:      record.Title,
		URL:        record.URL,
		Content:    record.Content,
		SourceType: source.Type,
	})
	metrics.RecordSummarizationDuration(time.Since(summarizeStart))
	metrics.RecordItemSummarized(err == nil)
	if err != nil {
		logger.Warn("summarize failed", slog.String("url", record.URL), slog.Any("error", err))
		return
	}

	evalOut, err := s.evaluator.Evaluate(ctx, evaluate.Input{
		Title:       record.Title,
		URL:         record.URL,
		Content:     record.Content,
		UserContext: userCtx,
	})
	if err != nil {
		logger.Warn("evaluate failed", slog.String("url", record.URL), slog.Any("error", err))
		return
	}

	item := &entity.ContentItem{
		SourceID:       source.ID,
		ExternalID:     record.ExternalID,
		Title:          record.Title,
		URL:            record.URL,
		Content:        record.Content,
		Summary:        summaryOut.Summary,
		ReadingSummary: summaryOut.ReadingSummary,
		Priority:       evalOut.Priority,
		PublishedAt:    record.PublishedAt,
		FetchedAt:      time.Now().UTC(),
		Analysis: entity.Analysis{
			AlphaInsights:    summaryOut.AlphaInsights,
			Patterns:         summaryOut.Patterns,
			Entities:         summaryOut.Entities,
			Metrics:          record.Metrics,
			MatchedInterests: evalOut.MatchedInterests,
			Reasoning:        evalOut.Reasoning,
			Diff:             record.Diff,
		},
	}

	id, err := s.store.Insert(ctx, item)
	if err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return
		}
		logger.Warn("insert item failed", slog.String("url", record.URL), slog.Any("error", err))
		return
	}
	item.ID = id

	if s.embedHook != nil {
		s.embedHook.EmbedItem(ctx, item)
	}
}

func newCycleID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
