// Package repository declares the persistence contracts the pipeline and
// its collaborators depend on. Concrete implementations live under
// internal/store/sqlite.
package repository

import (
	"context"

	"prismis/internal/domain/entity"
)

// SourceRepository manages the Source table. AddSource enforces the
// (url, type) uniqueness invariant and the type enum; MarkFetched is the
// only mutator for the error-counter/last-fetched bookkeeping.
type SourceRepository interface {
	AddSource(ctx context.Context, url string, typ entity.SourceType, name string) (string, error)
	Get(ctx context.Context, id string) (*entity.Source, error)
	ListSources(ctx context.Context, activeOnly bool) ([]*entity.Source, error)
	MarkFetched(ctx context.Context, id string, ok bool, fetchErr error) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}
