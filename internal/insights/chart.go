package insights

import (
	"fmt"

	"github.com/raseed-labs/raseed-backend/internal/analytics"
	"github.com/xuri/excelize/v2"
)

const (
	spendingSheet = "Spending"
	xlsxMIMEType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// buildWorkbook writes the category totals to a sheet and charts them as a
// clustered bar chart.
func buildWorkbook(month string, totals []analytics.CategorySpend) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", spendingSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"Category", "Amount (INR)", "Receipts"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(spendingSheet, cell, h)
	}
	for i, cs := range totals {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(spendingSheet, cell, v)
		}
		write(1, string(cs.Category))
		write(2, cs.Total)
		write(3, cs.Count)
	}
	_ = f.SetColWidth(spendingSheet, "A", "A", 18)
	_ = f.SetColWidth(spendingSheet, "B", "C", 14)

	if len(totals) > 0 {
		last := len(totals) + 1
		err := f.AddChart(spendingSheet, "E2", &excelize.Chart{
			Type: excelize.Bar,
			Series: []excelize.ChartSeries{{
				Name:       fmt.Sprintf("%s!$B$1", spendingSheet),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", spendingSheet, last),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", spendingSheet, last),
			}},
			Title:  []excelize.RichTextRun{{Text: fmt.Sprintf("Spending by Category - %s", month)}},
			Legend: excelize.ChartLegend{Position: "none"},
			PlotArea: excelize.ChartPlotArea{
				ShowVal: true,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("add chart: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
