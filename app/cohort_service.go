package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/igordot/SuMu/domain/genomics"
	"github.com/igordot/SuMu/internal"
	"github.com/igordot/SuMu/ports"
)

// CohortService fetches and caches cohort snapshots. The four tables are
// fetched concurrently; a single table failure fails the whole load since a
// partial snapshot is worse than none.
type CohortService struct {
	loader ports.CohortLoader
	store  ports.SnapshotStore // optional
	logger *internal.Logger
}

// NewCohortService creates a cohort service. store may be nil to disable
// snapshot caching.
func NewCohortService(loader ports.CohortLoader, store ports.SnapshotStore, logger *internal.Logger) *CohortService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CohortService{loader: loader, store: store, logger: logger}
}

// Load returns the snapshot for a cohort, from cache when available.
func (s *CohortService) Load(ctx context.Context, cohort string) (*genomics.CohortSnapshot, error) {
	if s.store != nil {
		if snap, err := s.store.Get(ctx, cohort); err == nil && snap != nil {
			s.logger.Info("cohort %s served from snapshot cache (fetched %s)", cohort, snap.FetchedAt.Format(time.RFC3339))
			return snap, nil
		}
	}

	snap, err := s.Fetch(ctx, cohort)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Save(ctx, snap); err != nil {
			s.logger.Warn("failed to cache snapshot for cohort %s: %v", cohort, err)
		}
	}
	return snap, nil
}

// Fetch always hits the data service, bypassing the cache.
func (s *CohortService) Fetch(ctx context.Context, cohort string) (*genomics.CohortSnapshot, error) {
	start := time.Now()
	snap := &genomics.CohortSnapshot{Cohort: cohort, FetchedAt: start}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		clinical, err := s.loader.FetchClinical(gctx, cohort)
		if err != nil {
			return err
		}
		snap.Clinical = clinical
		return nil
	})
	g.Go(func() error {
		mutations, err := s.loader.FetchMutations(gctx, cohort)
		if err != nil {
			return err
		}
		snap.Mutations = mutations
		return nil
	})
	g.Go(func() error {
		expr, err := s.loader.FetchExpression(gctx, cohort)
		if err != nil {
			return err
		}
		snap.Expression = expr
		return nil
	})
	g.Go(func() error {
		cn, err := s.loader.FetchCopyNumber(gctx, cohort)
		if err != nil {
			return err
		}
		snap.CopyNumber = cn
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("cohort %s fetched in %s (%d clinical, %d mutations)",
		cohort, time.Since(start).Round(time.Millisecond), len(snap.Clinical), len(snap.Mutations))
	return snap, nil
}

// Invalidate drops a cached snapshot.
func (s *CohortService) Invalidate(ctx context.Context, cohort string) error {
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, cohort)
}
