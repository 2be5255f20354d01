package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
	"github.com/secmon-lab/phenodash/pkg/repository"
	"github.com/xuri/excelize/v2"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// IsValid checks if the format is supported
func (f Format) IsValid() bool {
	return f == FormatCSV || f == FormatXLSX
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Write writes the view's rows in the given format
func Write(w io.Writer, format Format, view *model.View) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, view.Rows)
	case FormatXLSX:
		return WriteXLSX(w, view)
	default:
		return goerr.New("unsupported export format", goerr.V("format", format))
	}
}

func rowValues(r model.WeeklyRecord) []int64 {
	return []int64{r.MRSA, r.VRSA, r.Wild, r.Others, r.Total}
}

// WriteCSV writes rows with the same header as the input file
func WriteCSV(w io.Writer, rows []model.WeeklyRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(repository.Columns()); err != nil {
		return goerr.Wrap(err, "failed to write CSV header")
	}

	record := make([]string, len(repository.Columns()))
	for _, r := range rows {
		record[0] = r.WeekLabel()
		for i, v := range rowValues(r) {
			record[i+1] = strconv.FormatInt(v, 10)
		}
		if err := writer.Write(record); err != nil {
			return goerr.Wrap(err, "failed to write CSV row", goerr.V("week", r.WeekLabel()))
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return goerr.Wrap(err, "failed to flush CSV")
	}
	return nil
}

const (
	dataSheet    = "Data"
	summarySheet = "Summary"
)

// WriteXLSX writes a workbook with the filtered rows and the metric cards
func WriteXLSX(w io.Writer, view *model.View) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return goerr.Wrap(err, "failed to rename sheet")
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return goerr.Wrap(err, "failed to create sheet", goerr.V("sheet", summarySheet))
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return goerr.Wrap(err, "failed to create header style")
	}

	if err := writeDataSheet(f, view.Rows, headerStyle); err != nil {
		return err
	}
	if err := writeSummarySheet(f, view, headerStyle); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return goerr.Wrap(err, "failed to write workbook")
	}
	return nil
}

func writeDataSheet(f *excelize.File, rows []model.WeeklyRecord, headerStyle int) error {
	columns := repository.Columns()
	for i, name := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return goerr.Wrap(err, "failed to convert coordinates")
		}
		if err := f.SetCellValue(dataSheet, cell, name); err != nil {
			return goerr.Wrap(err, "failed to set header cell", goerr.V("cell", cell))
		}
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return goerr.Wrap(err, "failed to convert coordinates")
	}
	if err := f.SetCellStyle(dataSheet, "A1", last, headerStyle); err != nil {
		return goerr.Wrap(err, "failed to set header style")
	}
	if err := f.SetColWidth(dataSheet, "A", "A", 14); err != nil {
		return goerr.Wrap(err, "failed to set column width")
	}

	for i, r := range rows {
		values := []any{r.WeekLabel()}
		for _, v := range rowValues(r) {
			values = append(values, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return goerr.Wrap(err, "failed to convert coordinates")
		}
		if err := f.SetSheetRow(dataSheet, cell, &values); err != nil {
			return goerr.Wrap(err, "failed to write row", goerr.V("week", r.WeekLabel()))
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, view *model.View, headerStyle int) error {
	if err := f.SetSheetRow(summarySheet, "A1", &[]any{"Metric", "Value"}); err != nil {
		return goerr.Wrap(err, "failed to write summary header")
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return goerr.Wrap(err, "failed to set header style")
	}

	rows := [][]any{
		{"Start", view.Range.Start.Format(model.DateLayout)},
		{"End", view.Range.End.Format(model.DateLayout)},
		{"Weeks", view.Summary.Rows},
	}
	for _, m := range view.Metrics {
		rows = append(rows, []any{m.Label, m.Value})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return goerr.Wrap(err, "failed to convert coordinates")
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return goerr.Wrap(err, "failed to write summary row", goerr.V("cell", cell))
		}
	}
	return f.SetColWidth(summarySheet, "A", "A", 18)
}
