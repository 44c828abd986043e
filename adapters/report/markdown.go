package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/igordot/SuMu/app"
	"github.com/igordot/SuMu/domain/core"
	"github.com/igordot/SuMu/domain/survival"
)

// Markdown builds the markdown source of an analysis report.
func Markdown(cohort string, run core.RunID, rows []app.SummaryRow, auc float64, curve []survival.CurvePoint) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Biomarker analysis: %s\n\n", cohort)
	if run != "" {
		fmt.Fprintf(&b, "Run: `%s`\n\n", run)
	}
	fmt.Fprintf(&b, "AUC: **%.4f**\n\n", auc)

	b.WriteString("## Feature ranking\n\n")
	b.WriteString("| rank | feature | estimate | std error | p |\n")
	b.WriteString("|------|---------|----------|-----------|---|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %d | %s | %.4f | %.4f | %.4g |\n", r.Rank, r.Feature, r.Estimate, r.StdError, r.PValue)
	}

	if len(curve) > 0 {
		b.WriteString("\n## Kaplan-Meier survival curve\n\n")
		b.WriteString("| time | at risk | events | survival |\n")
		b.WriteString("|------|---------|--------|----------|\n")
		for _, p := range curve {
			fmt.Fprintf(&b, "| %.0f | %d | %d | %.4f |\n", p.Time, p.AtRisk, p.Events, p.Survival)
		}
	}

	return []byte(b.String())
}

// ToHTML renders report markdown to HTML for the web UI.
func ToHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML(md, p, renderer)
}
