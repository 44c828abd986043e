package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igordot/SuMu/internal/errors"
)

func TestExpand_SubstitutesPlaceholder(t *testing.T) {
	out, err := Expand("outcome ~ 1 + __BIOM", []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, "outcome ~ 1 + A + B + C", out)
}

func TestExpand_QuotesPunctuatedLabels(t *testing.T) {
	out, err := Expand("outcome ~ 1 + __BIOM", []string{"BRAF:p.V600E", "NRAS"})
	require.NoError(t, err)
	assert.Equal(t, "outcome ~ 1 + `BRAF:p.V600E` + NRAS", out)
}

func TestExpand_MissingTokenWithBiomarkers(t *testing.T) {
	_, err := Expand("outcome ~ 1 + age", []string{"BRAF"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeFormulaSubstitution, errors.GetCode(err))
}

func TestExpand_NoTokenNoBiomarkers(t *testing.T) {
	out, err := Expand("outcome ~ 1 + age", nil)
	require.NoError(t, err)
	assert.Equal(t, "outcome ~ 1 + age", out)
}

func TestExpand_TokenWithZeroBiomarkers(t *testing.T) {
	out, err := Expand("outcome ~ 1 + __BIOM", nil)
	require.NoError(t, err)
	assert.Equal(t, "outcome ~ 1", out)
}

func TestExpand_RejectsLongerIdentifier(t *testing.T) {
	// __BIOMX is not the placeholder
	_, err := Expand("outcome ~ __BIOMX", []string{"A"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeFormulaSubstitution, errors.GetCode(err))
}

func TestExpand_BareTokenZeroBiomarkers(t *testing.T) {
	// With nothing to substitute the model degrades to intercept-only,
	// never to a dangling "outcome ~".
	out, err := Expand("outcome ~ __BIOM", nil)
	require.NoError(t, err)
	assert.Equal(t, "outcome ~ 1", out)
}

func TestExpand_TokenInsideIdentifierNotSubstituted(t *testing.T) {
	_, err := Expand("outcome ~ x__BIOM", []string{"A"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeFormulaSubstitution, errors.GetCode(err))
}

func TestExpand_FormulaWithoutTilde(t *testing.T) {
	_, err := Expand("just a string", []string{"A"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeFormulaSubstitution, errors.GetCode(err))
}

func TestExpand_PreservesQuotedTerms(t *testing.T) {
	out, err := Expand("outcome ~ 1 + `age:group` + __BIOM", []string{"NRAS"})
	require.NoError(t, err)
	assert.Equal(t, "outcome ~ 1 + `age:group` + NRAS", out)
}

func TestDefault_BuildsPlaceholderFormula(t *testing.T) {
	assert.Equal(t, "outcome ~ 1 + __BIOM", Default("outcome"))
}

func TestParse_RoundTrip(t *testing.T) {
	f, err := Parse("outcome ~ 1 + `BRAF:p.V600E` + NRAS")
	require.NoError(t, err)
	assert.Equal(t, "outcome", f.Outcome)
	assert.Equal(t, []string{"1", "BRAF:p.V600E", "NRAS"}, f.Terms)
	assert.Equal(t, "outcome ~ 1 + `BRAF:p.V600E` + NRAS", f.String())
}

func TestBuilder_ComposesTerms(t *testing.T) {
	f := New("outcome").
		Intercept().
		Term("age_at_diagnosis").
		Biomarkers("BRAF:p.V600E", "NRAS").
		Build()

	assert.Equal(t, "outcome ~ 1 + age_at_diagnosis + `BRAF:p.V600E` + NRAS", f.String())
}

func TestBuilder_EmptyTermsIsInterceptOnly(t *testing.T) {
	f := New("outcome").Build()
	assert.Equal(t, "outcome ~ 1", f.String())
}

func TestQuote(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"NRAS", "NRAS"},
		{"age_at_diagnosis", "age_at_diagnosis"},
		{"1", "1"},
		{"BRAF:p.V600E", "`BRAF:p.V600E`"},
		{"2nd_try", "`2nd_try`"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Quote(tc.in), "Quote(%q)", tc.in)
	}
}
