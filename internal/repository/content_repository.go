package repository

import (
	"context"
	"time"

	"prismis/internal/domain/entity"
)

// ContentRepository manages the ContentItem table. Exists is the dedup
// gate and must be an O(index lookup) operation; Insert enforces the
// (source_id, external_id) uniqueness invariant and returns ErrDuplicate
// rather than a generic error when it is violated.
type ContentRepository interface {
	Exists(ctx context.Context, sourceID, externalID string) (bool, error)
	Insert(ctx context.Context, item *entity.ContentItem) (string, error)
	GetItem(ctx context.Context, id string) (*entity.ContentItem, error)
	Prune(ctx context.Context, priority entity.Priority, olderThan *time.Time) (int, error)

	// LatestContentForSource returns the raw content of the most
	// recently fetched item for sourceID, used by the file fetcher to
	// diff a tracked file against its last-seen body. found is false
	// when the source has no items yet.
	LatestContentForSource(ctx context.Context, sourceID string) (content string, found bool, err error)
}
