package repository

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/phenodash/pkg/domain/interfaces"
	"github.com/secmon-lab/phenodash/pkg/domain/model"
)

// Column names of the weekly phenotype file
const (
	ColumnWeek   = "Week"
	ColumnMRSA   = "MRSA"
	ColumnVRSA   = "VRSA"
	ColumnWild   = "Wild"
	ColumnOthers = "others"
	ColumnTotal  = "Total"
)

// Columns returns the required columns in file order
func Columns() []string {
	return []string{ColumnWeek, ColumnMRSA, ColumnVRSA, ColumnWild, ColumnOthers, ColumnTotal}
}

const utf8BOM = "\ufeff"

// CSV implements DatasetSource over a CSV file on disk
type CSV struct {
	path string
}

// NewCSV creates a new CSV dataset source
func NewCSV(path string) interfaces.DatasetSource {
	return &CSV{path: path}
}

// Stat returns the current version of the file
func (c *CSV) Stat(ctx context.Context) (model.SourceVersion, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.SourceVersion{}, goerr.Wrap(err, "data file not found",
				goerr.V("path", c.path),
				goerr.T(model.ErrTagDataLoad))
		}
		return model.SourceVersion{}, goerr.Wrap(err, "failed to stat data file",
			goerr.V("path", c.path),
			goerr.T(model.ErrTagDataLoad))
	}
	if info.IsDir() {
		return model.SourceVersion{}, goerr.New("data path is a directory",
			goerr.V("path", c.path),
			goerr.T(model.ErrTagDataLoad))
	}

	return model.SourceVersion{
		Path:    c.path,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}, nil
}

// Load reads and parses the whole file. Either a complete Dataset or a
// DataLoadError is returned, never a partial dataset.
func (c *CSV) Load(ctx context.Context) (*model.Dataset, error) {
	version, err := c.Stat(ctx)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open data file",
			goerr.V("path", c.path),
			goerr.T(model.ErrTagDataLoad))
	}
	defer f.Close()

	records, err := ParseCSV(bufio.NewReader(f))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load data file",
			goerr.V("path", c.path),
			goerr.T(model.ErrTagDataLoad))
	}

	ds := model.NewDataset(version, records)
	ctxlog.From(ctx).Info("Dataset loaded",
		"path", c.path,
		"rows", ds.Len(),
		"dataset_id", ds.ID,
	)
	return ds, nil
}

// ParseCSV parses weekly records from r. The header row is required, columns
// are matched by name case-insensitively and extra columns are ignored.
// Records are returned sorted by week ascending.
func ParseCSV(r io.Reader) ([]model.WeeklyRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, goerr.New("data file is empty", goerr.T(model.ErrTagDataLoad))
		}
		return nil, goerr.Wrap(err, "failed to read header", goerr.T(model.ErrTagDataLoad))
	}

	index, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var records []model.WeeklyRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "malformed CSV row", goerr.T(model.ErrTagDataLoad))
		}

		line, _ := reader.FieldPos(0)
		rec, err := parseRow(row, index, line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, goerr.New("data file has no rows", goerr.T(model.ErrTagDataLoad))
	}

	slices.SortStableFunc(records, func(a, b model.WeeklyRecord) int {
		return a.Week.Compare(b.Week)
	})
	for i := 1; i < len(records); i++ {
		if records[i].Week.Equal(records[i-1].Week) {
			return nil, goerr.New("duplicate week",
				goerr.V("week", records[i].WeekLabel()),
				goerr.T(model.ErrTagDataLoad))
		}
	}

	return records, nil
}

type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, error) {
	found := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := found[key]; !dup {
			found[key] = i
		}
	}

	index := make(columnIndex, len(Columns()))
	for _, col := range Columns() {
		i, ok := found[strings.ToLower(col)]
		if !ok {
			return nil, goerr.New("missing required column",
				goerr.V("column", col),
				goerr.V("header", header),
				goerr.T(model.ErrTagDataLoad))
		}
		index[col] = i
	}
	return index, nil
}

func parseRow(row []string, index columnIndex, line int) (model.WeeklyRecord, error) {
	week, err := parseWeek(row[index[ColumnWeek]])
	if err != nil {
		return model.WeeklyRecord{}, goerr.Wrap(err, "invalid week",
			goerr.V("line", line),
			goerr.V("column", ColumnWeek),
			goerr.V("value", row[index[ColumnWeek]]),
			goerr.T(model.ErrTagDataLoad))
	}

	rec := model.WeeklyRecord{Week: week}
	counts := []struct {
		column string
		dst    *int64
	}{
		{ColumnMRSA, &rec.MRSA},
		{ColumnVRSA, &rec.VRSA},
		{ColumnWild, &rec.Wild},
		{ColumnOthers, &rec.Others},
		{ColumnTotal, &rec.Total},
	}
	for _, c := range counts {
		value := row[index[c.column]]
		n, err := parseCount(value)
		if err != nil {
			return model.WeeklyRecord{}, goerr.Wrap(err, "invalid count",
				goerr.V("line", line),
				goerr.V("column", c.column),
				goerr.V("value", value),
				goerr.T(model.ErrTagDataLoad))
		}
		*c.dst = n
	}

	return rec, nil
}

// parseWeek parses any common date or datetime string and keeps its calendar date
func parseWeek(s string) (time.Time, error) {
	value := strings.TrimSpace(s)
	if value == "" {
		return time.Time{}, goerr.New("empty date")
	}
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "unparseable date")
	}
	return model.Date(t), nil
}

// parseCount parses a non-negative integer count. Integral floats such as
// "12.0" are accepted.
func parseCount(s string) (int64, error) {
	value := strings.TrimSpace(s)
	if value == "" {
		return 0, goerr.New("empty count")
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil {
			return 0, goerr.Wrap(err, "count is not a number")
		}
		if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt64 || f < math.MinInt64 {
			return 0, goerr.New("count is not an integer")
		}
		n = int64(f)
	}

	if n < 0 {
		return 0, goerr.New("count is negative")
	}
	return n, nil
}
