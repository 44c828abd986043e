package ports

import (
	"context"

	"github.com/igordot/SuMu/domain/genomics"
)

// CohortLoader is the data retrieval boundary: four read operations against
// an external cohort data service. Each fails with a RETRIEVAL_ERROR on
// network or missing-cohort failure; nothing is retried here.
type CohortLoader interface {
	FetchClinical(ctx context.Context, cohort string) ([]genomics.ClinicalRecord, error)
	FetchMutations(ctx context.Context, cohort string) ([]genomics.MutationRecord, error)
	FetchExpression(ctx context.Context, cohort string) (*genomics.GeneMatrix, error)
	FetchCopyNumber(ctx context.Context, cohort string) (*genomics.GeneMatrix, error)
}
