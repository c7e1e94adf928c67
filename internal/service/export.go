package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

var qualityExportSheets = []string{"Summary", "Pareto", "Trend"}

// ExportQualityReport renders the windowed quality analytics as an xlsx
// workbook with summary, Pareto and weekly trend sheets.
func (s *QualityService) ExportQualityReport(ctx context.Context, tenantID string, days int) (*excelize.File, string, error) {
	days = normalizeDays(days)

	summary, err := s.Summary(ctx, tenantID, days)
	if err != nil {
		return nil, "", err
	}
	pareto, err := s.Pareto(ctx, tenantID, days, 0)
	if err != nil {
		return nil, "", err
	}
	trend, err := s.Trend(ctx, tenantID, days, "week")
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", qualityExportSheets[0])
	for _, sheet := range qualityExportSheets[1:] {
		f.NewSheet(sheet)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	writeHeader := func(sheet string, headers []string) {
		for i, h := range headers {
			col, _ := excelize.ColumnNumberToName(i + 1)
			cell := col + "1"
			f.SetCellValue(sheet, cell, h)
			f.SetCellStyle(sheet, cell, cell, headerStyle)
		}
	}

	writeHeader("Summary", []string{"Metric", "Value"})
	summaryRows := [][]any{
		{"Window (days)", summary.WindowDays},
		{"Total produced", summary.TotalProduced},
		{"Total good", summary.TotalGood},
		{"Total scrap", summary.TotalScrap},
		{"Total rework", summary.TotalRework},
		{"Yield (%)", summary.Yield},
		{"Scrap rate (%)", summary.ScrapRate},
		{"Rework rate (%)", summary.ReworkRate},
	}
	for i, row := range summaryRows {
		f.SetCellValue("Summary", fmt.Sprintf("A%d", i+2), row[0])
		f.SetCellValue("Summary", fmt.Sprintf("B%d", i+2), row[1])
	}

	writeHeader("Pareto", []string{"Reason", "Scrap", "Percentage", "Cumulative %"})
	for i, entry := range pareto {
		r := i + 2
		f.SetCellValue("Pareto", fmt.Sprintf("A%d", r), entry.ReasonCode)
		f.SetCellValue("Pareto", fmt.Sprintf("B%d", r), entry.TotalScrap)
		f.SetCellValue("Pareto", fmt.Sprintf("C%d", r), entry.Percentage)
		f.SetCellValue("Pareto", fmt.Sprintf("D%d", r), entry.CumulativePercentage)
	}

	writeHeader("Trend", []string{"Week of", "Produced", "Good", "Scrap", "Scrap rate (%)"})
	for i, bucket := range trend {
		r := i + 2
		f.SetCellValue("Trend", fmt.Sprintf("A%d", r), bucket.Date)
		f.SetCellValue("Trend", fmt.Sprintf("B%d", r), bucket.Produced)
		f.SetCellValue("Trend", fmt.Sprintf("C%d", r), bucket.Good)
		f.SetCellValue("Trend", fmt.Sprintf("D%d", r), bucket.Scrap)
		f.SetCellValue("Trend", fmt.Sprintf("E%d", r), bucket.ScrapRate)
	}

	filename := fmt.Sprintf("quality-report-%s.xlsx", time.Now().Format("20060102"))
	return f, filename, nil
}
