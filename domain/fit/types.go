package fit

import (
	"github.com/igordot/SuMu/domain/core"
)

// Frame is the row-aligned tabular dataset handed to a fitting backend:
// one outcome column plus named predictor columns. Frames are built once by
// the analysis service and never mutated afterwards.
type Frame struct {
	SampleIDs []core.SampleID
	Outcome   string
	Y         []float64
	Columns   []string
	X         [][]float64 // X[row][col], len(Y) x len(Columns)
}

// NumRows returns the row count.
func (f *Frame) NumRows() int { return len(f.Y) }

// Column returns the values of one predictor column, or nil.
func (f *Frame) Column(name string) []float64 {
	for j, c := range f.Columns {
		if c == name {
			col := make([]float64, len(f.X))
			for i := range f.X {
				col[i] = f.X[i][j]
			}
			return col
		}
	}
	return nil
}

// InterceptTerm is the coefficient name backends use for the constant term.
const InterceptTerm = "(Intercept)"

// Coefficient is one estimated model term.
type Coefficient struct {
	Term     string  `json:"term"`
	Estimate float64 `json:"estimate"`
	StdError float64 `json:"std_error"`
}

// Fitted is the capability a fitting backend returns: coefficient
// extraction plus prediction for new predictor rows. Backends are free to
// carry whatever internal state they like behind this.
type Fitted interface {
	Coefficients() []Coefficient
	// Predict returns the predicted outcome probability for one predictor
	// row ordered as the training frame's Columns.
	Predict(x []float64) float64
}

// Model is the opaque fitted-model handle. Created once per fit call and
// immutable thereafter.
type Model struct {
	RunID     core.RunID `json:"run_id"`
	Formula   string     `json:"formula"`
	Outcome   string     `json:"outcome"`
	SampleKey string     `json:"sample_key"`
	Backend   string     `json:"backend"`

	fitted  Fitted
	columns []string
}

// NewModel wraps a backend result with its fit metadata.
func NewModel(formula, outcome, sampleKey, backend string, columns []string, fitted Fitted) *Model {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Model{
		Formula:   formula,
		Outcome:   outcome,
		SampleKey: sampleKey,
		Backend:   backend,
		fitted:    fitted,
		columns:   cols,
	}
}

// Coefficients returns the estimated terms.
func (m *Model) Coefficients() []Coefficient {
	return m.fitted.Coefficients()
}

// Columns returns the predictor column order the model was trained on.
func (m *Model) Columns() []string {
	cols := make([]string, len(m.columns))
	copy(cols, m.columns)
	return cols
}

// PredictFrame scores every row of an evaluation frame. The frame's columns
// must be ordered as the training columns; rows missing a column score as
// zero for that predictor.
func (m *Model) PredictFrame(frame *Frame) []float64 {
	preds := make([]float64, frame.NumRows())
	for i := range frame.X {
		preds[i] = m.fitted.Predict(frame.X[i])
	}
	return preds
}
