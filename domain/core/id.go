package core

import (
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// Domain-specific ID types
type (
	// RunID identifies a single analysis run (fetch + fit + summarize)
	RunID ID
	// SampleID identifies a patient sample within a cohort (e.g. a TCGA barcode)
	SampleID string
	// FeatureLabel names one derived biomarker column
	FeatureLabel string
)

// NewRunID mints the identifier stamped on one analysis run.
func NewRunID() RunID {
	return RunID(NewID())
}

// NormalizeSampleID trims whitespace and uppercases a raw sample barcode
func NormalizeSampleID(raw string) SampleID {
	return SampleID(strings.ToUpper(strings.TrimSpace(raw)))
}
