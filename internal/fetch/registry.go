package fetch

import (
	"context"
	"log/slog"
	"net/http"

	"prismis/internal/domain/entity"
)

// Registry dispatches a source to the fetcher for its type. It is the
// duck-typed polymorphism point the pipeline uses instead of a type
// switch scattered across callers: every source, regardless of type,
// is fetched through the same Fetch(ctx, source) call.
type Registry struct {
	byType   map[entity.SourceType]Fetcher
	fallback Fetcher
}

// NewRegistry builds the standard feed/forum/video/file registry. An
// unrecognized source type falls back to the feed fetcher rather than
// failing the cycle outright, since many forum and blog platforms also
// expose a plain RSS/Atom feed at their canonical URL.
func NewRegistry(client *http.Client, cfg Config, previousContent PreviousContentFunc) *Registry {
	feedFetcher := NewFeedFetcher(client, cfg)
	return &Registry{
		byType: map[entity.SourceType]Fetcher{
			entity.SourceTypeFeed:  feedFetcher,
			entity.SourceTypeForum: NewForumFetcher(client, cfg),
			entity.SourceTypeVideo: NewVideoFetcher(client, cfg),
			entity.SourceTypeFile:  NewFileFetcher(client, cfg, previousContent),
		},
		fallback: feedFetcher,
	}
}

func (r *Registry) For(source *entity.Source) Fetcher {
	if f, ok := r.byType[source.Type]; ok {
		return f
	}
	slog.Warn("unrecognized source type, falling back to feed fetcher",
		slog.String("source_id", source.ID),
		slog.String("type", string(source.Type)))
	return r.fallback
}

func (r *Registry) Fetch(ctx context.Context, source *entity.Source) ([]entity.FetchRecord, error) {
	return r.For(source).Fetch(ctx, source)
}
