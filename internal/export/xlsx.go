// Package export renders a computed funnel view as an XLSX workbook for
// offline sharing.
package export

import (
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/funnel-analytics/internal/orchestrator"
)

// WriteXLSX writes the view as a two-sheet workbook: the funnel stages
// with their rates, then the per-stage insight text.
func WriteXLSX(w io.Writer, view orchestrator.View) error {
	f := xlsx.NewFile()

	if err := addFunnelSheet(f, view); err != nil {
		return err
	}
	if err := addInsightsSheet(f, view); err != nil {
		return err
	}

	return eris.Wrap(f.Write(w), "export: write workbook")
}

// SaveXLSX writes the view workbook to a file path.
func SaveXLSX(path string, view orchestrator.View) error {
	f := xlsx.NewFile()

	if err := addFunnelSheet(f, view); err != nil {
		return err
	}
	if err := addInsightsSheet(f, view); err != nil {
		return err
	}

	return eris.Wrapf(f.Save(path), "export: save workbook %s", path)
}

func addFunnelSheet(f *xlsx.File, view orchestrator.View) error {
	sheet, err := f.AddSheet("Funnel")
	if err != nil {
		return eris.Wrap(err, "export: add funnel sheet")
	}

	meta := sheet.AddRow()
	meta.AddCell().Value = "Computed at"
	meta.AddCell().Value = view.ComputedAt.Format(time.RFC3339)
	meta.AddCell().Value = "Data status"
	meta.AddCell().Value = string(view.Status)

	sheet.AddRow() // spacer

	header := sheet.AddRow()
	for _, h := range []string{"Stage", "Count", "% of previous"} {
		header.AddCell().Value = h
	}

	for _, stage := range view.Funnel.Stages {
		row := sheet.AddRow()
		row.AddCell().Value = stage.Label
		row.AddCell().SetInt(stage.Value)
		row.AddCell().SetFloat(stage.PercentOfPrevious)
	}

	sheet.AddRow() // spacer

	total := sheet.AddRow()
	total.AddCell().Value = "End-to-end conversion %"
	total.AddCell().SetFloat(view.Funnel.EndToEndConversionRate)

	return nil
}

func addInsightsSheet(f *xlsx.File, view orchestrator.View) error {
	sheet, err := f.AddSheet("Insights")
	if err != nil {
		return eris.Wrap(err, "export: add insights sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Stage", "Type", "Text"} {
		header.AddCell().Value = h
	}

	for _, bundle := range view.Insights {
		for _, text := range bundle.Insights {
			row := sheet.AddRow()
			row.AddCell().Value = string(bundle.StageKey)
			row.AddCell().Value = "insight"
			row.AddCell().Value = text
		}
		for _, text := range bundle.Recommendations {
			row := sheet.AddRow()
			row.AddCell().Value = string(bundle.StageKey)
			row.AddCell().Value = "recommendation"
			row.AddCell().Value = text
		}
	}

	return nil
}
