package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"prismis/internal/analysis/evaluate"
	"prismis/internal/analysis/summarize"
	"prismis/internal/config"
	"prismis/internal/domain/entity"
	"prismis/internal/embed"
	"prismis/internal/fetch"
)

// fakeStore implements repository.Store entirely in memory so the
// scheduler's per-cycle behavior can be exercised without a real
// database.
type fakeStore struct {
	mu               sync.Mutex
	sources          []*entity.Source
	items            map[string]*entity.ContentItem
	existing         map[string]bool
	fetchedOK        map[string]bool
	fetchedErr       map[string]error
	cleanupCallCount int
}

func newFakeStore(sources ...*entity.Source) *fakeStore {
	return &fakeStore{
		sources:    sources,
		items:      make(map[string]*entity.ContentItem),
		existing:   make(map[string]bool),
		fetchedOK:  make(map[string]bool),
		fetchedErr: make(map[string]error),
	}
}

func (f *fakeStore) AddSource(ctx context.Context, url string, typ entity.SourceType, name string) (string, error) {
	return "", nil
}
func (f *fakeStore) Get(ctx context.Context, id string) (*entity.Source, error) {
	for _, s := range f.sources {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, entity.ErrNotFound
}
func (f *fakeStore) ListSources(ctx context.Context, activeOnly bool) ([]*entity.Source, error) {
	return f.sources, nil
}
func (f *fakeStore) MarkFetched(ctx context.Context, id string, ok bool, fetchErr error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchedOK[id] = ok
	f.fetchedErr[id] = fetchErr
	return nil
}
func (f *fakeStore) SetActive(ctx context.Context, id string, active bool) error { return nil }
func (f *fakeStore) Delete(ctx context.Context, id string) error                 { return nil }

func (f *fakeStore) Exists(ctx context.Context, sourceID, externalID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[sourceID+"|"+externalID], nil
}
func (f *fakeStore) Insert(ctx context.Context, item *entity.ContentItem) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := item.SourceID + "|" + item.ExternalID
	if f.existing[key] {
		return "", entity.ErrDuplicate
	}
	f.existing[key] = true
	id := item.SourceID + ":" + item.ExternalID
	item.ID = id
	f.items[id] = item
	return id, nil
}
func (f *fakeStore) GetItem(ctx context.Context, id string) (*entity.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return item, nil
}
func (f *fakeStore) Prune(ctx context.Context, priority entity.Priority, olderThan *time.Time) (int, error) {
	return 0, nil
}
func (f *fakeStore) LatestContentForSource(ctx context.Context, sourceID string) (string, bool, error) {
	return "", false, nil
}

func (f *fakeStore) InsertVector(ctx context.Context, contentID string, vector []float32) error {
	return nil
}
func (f *fakeStore) DeleteVector(ctx context.Context, contentID string) error { return nil }
func (f *fakeStore) CleanupOrphanedVectors(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanupCallCount++
	return 0, nil
}

func (f *fakeStore) Init(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                   { return nil }

// fakeFetcher returns a fixed set of records for every source, or an
// error when failWith is set (used to test per-source isolation).
type fakeFetcher struct {
	records  []entity.FetchRecord
	failWith error
}

func (f *fakeFetcher) Fetch(ctx context.Context, source *entity.Source) ([]entity.FetchRecord, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.records, nil
}

type fakeSummarizer struct{}

func (fakeSummarizer) Summarize(ctx context.Context, in summarize.Input) (summarize.Output, error) {
	return summarize.Output{Summary: "summary", ReadingSummary: "reading summary"}, nil
}

type fakeEvaluator struct{}

func (fakeEvaluator) Evaluate(ctx context.Context, in evaluate.Input) (evaluate.Output, error) {
	return evaluate.Output{Priority: entity.PriorityMedium, MatchedInterests: []string{}}, nil
}

func newTestScheduler(t *testing.T, store *fakeStore, fetcher fetch.Fetcher) *Scheduler {
	t.Helper()
	loadConfig := func() (*config.Config, error) {
		return &config.Config{Daemon: config.DaemonConfig{
			FetchIntervalMinutes: 30, MaxItemsPerFeed: 50, MaxDaysLookback: 7,
		}}, nil
	}
	return New(store, fetcher, fakeSummarizer{}, fakeEvaluator{}, nil, loadConfig, defaultSourceWorkers)
}

func TestRunCycle_InsertsNewItemsAndSkipsExisting(t *testing.T) {
	source := &entity.Source{ID: "src-1", URL: "https://example.com/feed", Type: entity.SourceTypeFeed, Active: true}
	store := newFakeStore(source)
	store.existing["src-1|ext-1"] = true // pre-seed as a dup

	now := time.Now().UTC()
	fetcher := &fakeFetcher{records: []entity.FetchRecord{
		{ExternalID: "ext-1", Title: "dup", URL: "https://example.com/a", PublishedAt: &now},
		{ExternalID: "ext-2", Title: "new", URL: "https://example.com/b", PublishedAt: &now},
	}}

	sched := newTestScheduler(t, store, fetcher)
	if err := sched.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle() error = %v", err)
	}

	if len(store.items) != 1 {
		t.Fatalf("len(store.items) = %d, want 1 (the duplicate must be skipped)", len(store.items))
	}
	if store.fetchedOK["src-1"] != true {
		t.Error("expected MarkFetched(ok=true) after a successful fetch")
	}
	if store.cleanupCallCount != 1 {
		t.Errorf("cleanupCallCount = %d, want 1", store.cleanupCallCount)
	}
}

func TestRunCycle_OneSourceFailingDoesNotBlockOthers(t *testing.T) {
	failing := &entity.Source{ID: "src-fail", URL: "https://bad.example.com/feed", Type: entity.SourceTypeFeed, Active: true}
	healthy := &entity.Source{ID: "src-ok", URL: "https://good.example.com/feed", Type: entity.SourceTypeFeed, Active: true}
	store := newFakeStore(failing, healthy)

	now := time.Now().UTC()
	fetcher := &perSourceFetcher{
		bySource: map[string]fetch.Fetcher{
			"src-fail": &fakeFetcher{failWith: errors.New("network unreachable")},
			"src-ok":   &fakeFetcher{records: []entity.FetchRecord{{ExternalID: "ext-1", Title: "ok", URL: "https://good.example.com/a", PublishedAt: &now}}},
		},
	}

	sched := newTestScheduler(t, store, fetcher)
	if err := sched.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle() error = %v", err)
	}

	if store.fetchedOK["src-fail"] != false {
		t.Error("expected MarkFetched(ok=false) for the failing source")
	}
	if store.fetchedOK["src-ok"] != true {
		t.Error("expected MarkFetched(ok=true) for the healthy source despite the other failing")
	}
	if len(store.items) != 1 {
		t.Errorf("len(store.items) = %d, want 1 (only the healthy source's item)", len(store.items))
	}
}

// perSourceFetcher dispatches by source ID so a single-source failure
// can be tested alongside a healthy source in the same cycle.
type perSourceFetcher struct {
	bySource map[string]fetch.Fetcher
}

func (p *perSourceFetcher) Fetch(ctx context.Context, source *entity.Source) ([]entity.FetchRecord, error) {
	return p.bySource[source.ID].Fetch(ctx, source)
}

func TestRunCycle_EmbedHookRunsForInsertedItems(t *testing.T) {
	source := &entity.Source{ID: "src-1", URL: "https://example.com/feed", Type: entity.SourceTypeFeed, Active: true}
	store := newFakeStore(source)

	now := time.Now().UTC()
	fetcher := &fakeFetcher{records: []entity.FetchRecord{
		{ExternalID: "ext-1", Title: "new", URL: "https://example.com/a", PublishedAt: &now},
	}}

	sched := newTestScheduler(t, store, fetcher)
	sched.embedHook = embed.NewHook(noopEmbedder{}, store)

	if err := sched.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle() error = %v", err)
	}
	if len(store.items) != 1 {
		t.Fatalf("len(store.items) = %d, want 1", len(store.items))
	}
}

type noopEmbedder struct{}

func (noopEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}
