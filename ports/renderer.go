package ports

import (
	"github.com/igordot/SuMu/domain/metrics"
)

// PlotRenderer receives the optional side-effecting visualizations of the
// summarizer: a histogram of predicted probabilities and the ROC curve.
// Rendering never feeds back into computed values.
type PlotRenderer interface {
	RenderHistogram(title string, bins []metrics.HistogramBin) error
	RenderROC(title string, points []metrics.ROCPoint) error
}
