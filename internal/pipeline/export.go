package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"harristax/internal"
	"harristax/internal/normalize"
)

// ExportAccountToXLSX writes one workbook per account: a Summary sheet
// of key/value fields from the summary panels and jurisdictions, then
// one sheet per normalized table from both sites.
func ExportAccountToXLSX(result internal.AccountResult, statement *internal.StatementResult, outputPath string) error {
	f := excelize.NewFile()
	const summarySheet = "Summary"
	_ = f.SetSheetName(f.GetSheetName(0), summarySheet)

	row := 1
	if result.PropertySummary != nil {
		row = writeFieldsSection(f, summarySheet, row, "Property Summary", result.PropertySummary.KeyValues)
	}
	if result.JurisdictionDetails != nil {
		row = writeFieldsSection(f, summarySheet, row, "Jurisdiction Details", result.JurisdictionDetails.KeyValues)
	}
	for _, jurisdiction := range result.Jurisdictions {
		row = writeFieldsSection(f, summarySheet, row, jurisdiction.Label, jurisdiction.Fields)
	}

	tables := append([]normalize.NormalizedTable{}, result.TaxSummary...)
	tables = append(tables, result.JurisdictionSummary...)
	if statement != nil {
		tables = append(tables, statement.Tables...)
	}
	for i, table := range tables {
		sheet := fmt.Sprintf("Table%d", i+1)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		writeTableSheet(f, sheet, table)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func writeFieldsSection(f *excelize.File, sheet string, startRow int, title string, fields *normalize.Fields) int {
	if fields.Len() == 0 {
		return startRow
	}
	row := startRow
	if title != "" {
		setCell(f, sheet, 1, row, title)
		row++
	}
	for _, key := range fields.Keys() {
		value, _ := fields.Get(key)
		setCell(f, sheet, 1, row, key)
		for i, v := range value.Values() {
			setCell(f, sheet, 2+i, row, v)
		}
		row++
	}
	return row + 1
}

func writeTableSheet(f *excelize.File, sheet string, table normalize.NormalizedTable) {
	row := 1
	if table.Title != "" {
		setCell(f, sheet, 1, row, table.Title)
		row++
	}
	if len(table.Headers) > 0 {
		for i, header := range table.Headers {
			setCell(f, sheet, i+1, row, header)
		}
		row++
	}
	for _, record := range table.Records {
		for i, header := range table.Headers {
			value, _ := record.Get(header)
			setCell(f, sheet, i+1, row, strings.Join(value.Values(), "; "))
		}
		row++
	}
	for _, key := range table.Fields.Keys() {
		value, _ := table.Fields.Get(key)
		setCell(f, sheet, 1, row, key)
		setCell(f, sheet, 2, row, strings.Join(value.Values(), "; "))
		row++
	}
	for _, cells := range table.Rows {
		for i, cell := range cells {
			setCell(f, sheet, i+1, row, cell)
		}
		row++
	}
}

func setCell(f *excelize.File, sheet string, col, row int, value any) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	_ = f.SetCellValue(sheet, cell, value)
}
