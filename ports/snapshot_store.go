package ports

import (
	"context"

	"github.com/igordot/SuMu/domain/genomics"
)

// SnapshotStore persists fetched cohort snapshots so repeated analyses skip
// the network. Read-through only; invalidation is an explicit Delete.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot *genomics.CohortSnapshot) error
	Get(ctx context.Context, cohort string) (*genomics.CohortSnapshot, error)
	Delete(ctx context.Context, cohort string) error
}
