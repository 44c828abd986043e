// Package report renders analysis outputs: an Excel workbook with the
// summary table and plot data, and a markdown/HTML report for the web UI.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/igordot/SuMu/app"
	"github.com/igordot/SuMu/domain/metrics"
)

// ExcelReport accumulates sheets into one workbook. It implements
// ports.PlotRenderer so the summarizer's histogram/ROC side effects land as
// data sheets; Save writes the file once at the end of a run.
type ExcelReport struct {
	file *excelize.File
	path string
}

// defaultSheet is the sheet excelize seeds a new workbook with.
const defaultSheet = "Sheet1"

// NewExcelReport creates a workbook writer targeting the given path.
func NewExcelReport(path string) *ExcelReport {
	return &ExcelReport{file: excelize.NewFile(), path: path}
}

// WriteSummary writes the ranked coefficient table and the AUC scalar.
func (r *ExcelReport) WriteSummary(cohort string, rows []app.SummaryRow, auc float64) error {
	sheet := "Summary"
	if err := r.ensureSheet(sheet); err != nil {
		return err
	}

	headers := []interface{}{"rank", "feature", "estimate", "std_error", "p_value"}
	if err := r.writeRow(sheet, 1, headers); err != nil {
		return err
	}
	for i, row := range rows {
		values := []interface{}{row.Rank, row.Feature, row.Estimate, row.StdError, row.PValue}
		if err := r.writeRow(sheet, i+2, values); err != nil {
			return err
		}
	}

	footer := len(rows) + 3
	if err := r.writeRow(sheet, footer, []interface{}{"cohort", cohort}); err != nil {
		return err
	}
	return r.writeRow(sheet, footer+1, []interface{}{"AUC", auc})
}

// RenderHistogram writes histogram bins as a data sheet.
func (r *ExcelReport) RenderHistogram(title string, bins []metrics.HistogramBin) error {
	sheet := "Histogram"
	if err := r.ensureSheet(sheet); err != nil {
		return err
	}
	if err := r.writeRow(sheet, 1, []interface{}{"lower", "upper", "count"}); err != nil {
		return err
	}
	for i, b := range bins {
		if err := r.writeRow(sheet, i+2, []interface{}{b.Lower, b.Upper, b.Count}); err != nil {
			return err
		}
	}
	return nil
}

// RenderROC writes ROC curve points as a data sheet.
func (r *ExcelReport) RenderROC(title string, points []metrics.ROCPoint) error {
	sheet := "ROC"
	if err := r.ensureSheet(sheet); err != nil {
		return err
	}
	if err := r.writeRow(sheet, 1, []interface{}{"threshold", "fpr", "tpr"}); err != nil {
		return err
	}
	for i, p := range points {
		if err := r.writeRow(sheet, i+2, []interface{}{p.Threshold, p.FPR, p.TPR}); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the workbook to disk.
func (r *ExcelReport) Save() error {
	if err := r.file.SaveAs(r.path); err != nil {
		return fmt.Errorf("failed to save report workbook: %w", err)
	}
	return nil
}

func (r *ExcelReport) ensureSheet(name string) error {
	if idx, err := r.file.GetSheetIndex(name); err == nil && idx != -1 {
		return nil
	}
	idx, err := r.file.NewSheet(name)
	if err != nil {
		return err
	}
	r.file.SetActiveSheet(idx)
	// excelize starts every workbook with an empty "Sheet1"; drop it once a
	// real sheet exists so it never ships in the report.
	if name != defaultSheet {
		_ = r.file.DeleteSheet(defaultSheet)
	}
	return nil
}

func (r *ExcelReport) writeRow(sheet string, rowIdx int, values []interface{}) error {
	for c, v := range values {
		cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
		if err := r.file.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
