// Package formula builds model formulas of the form "outcome ~ term + term".
// Biomarker columns are injected programmatically as a term list rather than
// by raw string splicing; the placeholder token is kept as a thin
// compatibility layer for formulas written as strings.
package formula

import (
	"strings"

	"github.com/igordot/SuMu/internal/errors"
)

// BiomarkerToken is the placeholder that stands in for "all biomarker
// columns" in a string formula, e.g. "outcome ~ 1 + __BIOM".
const BiomarkerToken = "__BIOM"

// Formula is an additive model specification.
type Formula struct {
	Outcome string
	Terms   []string
}

// String renders the formula in the conventional "y ~ a + b" notation.
// Terms with characters outside identifier syntax are backtick-quoted.
func (f Formula) String() string {
	if len(f.Terms) == 0 {
		return f.Outcome + " ~ 1"
	}
	quoted := make([]string, len(f.Terms))
	for i, t := range f.Terms {
		quoted[i] = Quote(t)
	}
	return f.Outcome + " ~ " + strings.Join(quoted, " + ")
}

// Builder composes a formula term by term.
type Builder struct {
	f Formula
}

// New starts a formula for the named outcome column.
func New(outcome string) *Builder {
	return &Builder{f: Formula{Outcome: outcome}}
}

// Intercept adds the constant term.
func (b *Builder) Intercept() *Builder {
	b.f.Terms = append(b.f.Terms, "1")
	return b
}

// Term adds one covariate term.
func (b *Builder) Term(name string) *Builder {
	b.f.Terms = append(b.f.Terms, name)
	return b
}

// Biomarkers adds every biomarker column as an additive term.
func (b *Builder) Biomarkers(names ...string) *Builder {
	b.f.Terms = append(b.f.Terms, names...)
	return b
}

// Placeholder adds the biomarker token, to be swapped for the built matrix's
// columns at expansion time.
func (b *Builder) Placeholder() *Builder {
	b.f.Terms = append(b.f.Terms, BiomarkerToken)
	return b
}

// Build returns the composed formula.
func (b *Builder) Build() Formula {
	return b.f
}

// Quote wraps a term in backticks when it contains punctuation a formula
// parser would mis-read (biomarker labels often carry ':' or '.').
func Quote(term string) string {
	if term == "" || term == "1" {
		return term
	}
	for i, r := range term {
		identChar := r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9' && i > 0)
		if !identChar {
			return "`" + term + "`"
		}
	}
	return term
}

// Default is the standard biomarker formula for an outcome column: intercept
// plus the placeholder, expanded later against the built matrix.
func Default(outcome string) string {
	return New(outcome).Intercept().Placeholder().Build().String()
}

// Parse splits a "y ~ a + b" string into its outcome and term list. Backtick
// quotes around a term are stripped; quoted terms must not contain '+'.
func Parse(raw string) (Formula, error) {
	lhs, rhs, ok := strings.Cut(raw, "~")
	if !ok {
		return Formula{}, errors.FormulaSubstitution(raw)
	}
	f := Formula{Outcome: strings.TrimSpace(lhs)}
	for _, part := range strings.Split(rhs, "+") {
		term := strings.Trim(strings.TrimSpace(part), "`")
		if term == "" {
			continue
		}
		f.Terms = append(f.Terms, term)
	}
	return f, nil
}

// Expand substitutes the biomarker placeholder in a string formula with the
// biomarker column names, rebuilding the formula term by term. The token is
// matched as a whole term, so identifiers that merely contain it pass
// through untouched.
//
// Fails with a FORMULA_SUBSTITUTION error when biomarker columns were
// supplied but the formula has no placeholder, since that almost always
// means the caller's formula is misconfigured and the biomarkers would be
// silently ignored. A placeholder with zero biomarker columns expands to
// nothing, leaving an intercept-only model when no other terms remain.
func Expand(raw string, biomarkerCols []string) (string, error) {
	parsed, err := Parse(raw)
	if err != nil {
		return "", err
	}

	b := New(parsed.Outcome)
	substituted := false
	for _, term := range parsed.Terms {
		switch {
		case term == BiomarkerToken:
			if !substituted {
				b.Biomarkers(biomarkerCols...)
			}
			substituted = true
		case term == "1":
			b.Intercept()
		default:
			b.Term(term)
		}
	}
	if !substituted && len(biomarkerCols) > 0 {
		return "", errors.FormulaSubstitution(raw)
	}
	return b.Build().String(), nil
}
