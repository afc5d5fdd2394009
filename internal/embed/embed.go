// Package embed implements the Embedder component: it turns one item's
// analysis text into a fixed-dimensional vector via a configured
// provider. Unlike the teacher's embedding hook, this runs synchronously
// as one pipeline step rather than a detached goroutine — there is no
// HTTP response to let complete out from under a cancelled request, so
// the async dispatch the teacher needed doesn't apply here. The panic
// recovery is kept: Hook.EmbedItem recovers panics and swallows every
// failure itself, so an embedding failure is never fatal to the cycle.
package embed

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"time"

	"prismis/internal/domain/entity"
	"prismis/internal/repository"
)

var ErrEmbedFailed = errors.New("embedding generation failed")

// Embedder derives a fixed-width vector from text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Hook writes an item's embedding to the vector store. A failure is
// logged and swallowed: an item without an embedding is still queryable
// by priority and date, so embedding is never allowed to fail the cycle.
type Hook struct {
	embedder        Embedder
	vectors         repository.VectorRepository
	metricsRecorder MetricsRecorder
}

func NewHook(embedder Embedder, vectors repository.VectorRepository) *Hook {
	return &Hook{
		embedder:        embedder,
		vectors:         vectors,
		metricsRecorder: NewPrometheusMetrics(),
	}
}

// EmbedItem derives and stores the embedding for one analyzed item. It
// never returns an error to the caller: a provider error, a store error
// or a panic is logged and counted as a failure instead. An item with no
// summary text is skipped with a warning and not counted.
func (h *Hook) EmbedItem(ctx context.Context, item *entity.ContentItem) {
	if h.embedder == nil {
		return
	}

	text := item.ReadingSummary
	if text == "" {
		text = item.Summary
	}
	if text == "" {
		slog.Warn("skipping embedding: item has no summary text", slog.String("content_id", item.ID))
		return
	}

	h.metricsRecorder.RecordPending(1)
	defer h.metricsRecorder.RecordPending(-1)

	defer func() {
		if r := recover(); r != nil {
			h.metricsRecorder.RecordProcessed(false)
			slog.Error("panic while embedding item",
				slog.String("content_id", item.ID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	start := time.Now()
	vector, err := h.embedder.Embed(ctx, text)
	duration := time.Since(start)

	if err != nil {
		h.metricsRecorder.RecordProcessed(false)
		slog.Warn("embedding failed, item remains queryable by priority and date",
			slog.String("content_id", item.ID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return
	}

	if err := h.vectors.InsertVector(ctx, item.ID, vector); err != nil {
		h.metricsRecorder.RecordProcessed(false)
		slog.Warn("failed to persist embedding",
			slog.String("content_id", item.ID),
			slog.String("error", err.Error()))
		return
	}

	h.metricsRecorder.RecordProcessed(true)
	h.metricsRecorder.RecordDuration(duration)
}
