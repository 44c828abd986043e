package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/igordot/SuMu/domain/genomics"
	apperrors "github.com/igordot/SuMu/internal/errors"
	"github.com/igordot/SuMu/internal/testkit"
)

// memoryStore is a map-backed SnapshotStore for tests.
type memoryStore struct {
	mu    sync.Mutex
	snaps map[string]*genomics.CohortSnapshot
}

func newMemoryStore() *memoryStore {
	return &memoryStore{snaps: make(map[string]*genomics.CohortSnapshot)}
}

func (s *memoryStore) Save(ctx context.Context, snap *genomics.CohortSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.Cohort] = snap
	return nil
}

func (s *memoryStore) Get(ctx context.Context, cohort string) (*genomics.CohortSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap, ok := s.snaps[cohort]; ok {
		return snap, nil
	}
	return nil, errors.New("not cached")
}

func (s *memoryStore) Delete(ctx context.Context, cohort string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, cohort)
	return nil
}

// countingLoader wraps a FakeLoader and counts clinical fetches.
type countingLoader struct {
	testkit.FakeLoader
	mu      sync.Mutex
	fetches int
}

func (l *countingLoader) FetchClinical(ctx context.Context, cohort string) ([]genomics.ClinicalRecord, error) {
	l.mu.Lock()
	l.fetches++
	l.mu.Unlock()
	return l.FakeLoader.FetchClinical(ctx, cohort)
}

func TestCohortService_FetchAssemblesSnapshot(t *testing.T) {
	gen := testkit.NewCohortGenerator(testkit.DefaultGeneratorConfig())
	loader := &testkit.FakeLoader{Snapshot: gen.Generate("SKCM")}

	svc := NewCohortService(loader, nil, nil)
	snap, err := svc.Load(context.Background(), "SKCM")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Clinical) == 0 || len(snap.Mutations) == 0 {
		t.Error("snapshot missing tables")
	}
	if snap.Expression == nil || snap.CopyNumber == nil {
		t.Error("snapshot missing matrices")
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestCohortService_CacheHitSkipsLoader(t *testing.T) {
	gen := testkit.NewCohortGenerator(testkit.DefaultGeneratorConfig())
	loader := &countingLoader{FakeLoader: testkit.FakeLoader{Snapshot: gen.Generate("SKCM")}}
	store := newMemoryStore()

	svc := NewCohortService(loader, store, nil)

	if _, err := svc.Load(context.Background(), "SKCM"); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	if _, err := svc.Load(context.Background(), "SKCM"); err != nil {
		t.Fatalf("second load failed: %v", err)
	}

	loader.mu.Lock()
	defer loader.mu.Unlock()
	if loader.fetches != 1 {
		t.Errorf("loader fetched %d times, want 1 (second load from cache)", loader.fetches)
	}
}

func TestCohortService_InvalidateDropsCache(t *testing.T) {
	gen := testkit.NewCohortGenerator(testkit.DefaultGeneratorConfig())
	loader := &countingLoader{FakeLoader: testkit.FakeLoader{Snapshot: gen.Generate("SKCM")}}
	store := newMemoryStore()

	svc := NewCohortService(loader, store, nil)
	ctx := context.Background()

	if _, err := svc.Load(ctx, "SKCM"); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := svc.Invalidate(ctx, "SKCM"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	if _, err := svc.Load(ctx, "SKCM"); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	loader.mu.Lock()
	defer loader.mu.Unlock()
	if loader.fetches != 2 {
		t.Errorf("loader fetched %d times, want 2 after invalidation", loader.fetches)
	}
}

func TestCohortService_RetrievalFailureSurfaces(t *testing.T) {
	loader := &testkit.FakeLoader{Err: apperrors.Retrieval("SKCM", "clinical", errors.New("connection refused"))}

	svc := NewCohortService(loader, nil, nil)
	_, err := svc.Load(context.Background(), "SKCM")
	if err == nil {
		t.Fatal("expected retrieval error")
	}
	if apperrors.GetCode(err) != apperrors.CodeRetrieval {
		t.Errorf("error code = %s, want %s", apperrors.GetCode(err), apperrors.CodeRetrieval)
	}
}
