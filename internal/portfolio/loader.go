// Package portfolio loads holdings from user-supplied files. Supported
// formats are xlsx and csv with a header row; columns are matched by name
// (name, symbol, type, value) case-insensitively.
package portfolio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/smarimus/ai-finance-assistant/internal/finance"
)

// Load reads holdings from path, dispatching on the file extension.
func Load(path string) ([]finance.Holding, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return LoadXLSX(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open portfolio file: %w", err)
		}
		defer f.Close()
		return LoadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported portfolio format %q (want .xlsx or .csv)", filepath.Ext(path))
	}
}

// LoadXLSX reads holdings from the first sheet of an xlsx workbook.
func LoadXLSX(path string) ([]finance.Holding, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	return parseRows(rows)
}

// LoadCSV reads holdings from CSV data with a header row.
func LoadCSV(r io.Reader) ([]finance.Holding, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) ([]finance.Holding, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("portfolio file has no data rows")
	}
	cols := columnIndex(rows[0])
	if _, ok := cols["value"]; !ok {
		return nil, fmt.Errorf("portfolio file is missing a value column")
	}

	var holdings []finance.Holding
	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		raw := cell(row, cols, "value")
		value, err := parseValue(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad value %q: %w", i+2, raw, err)
		}
		holdings = append(holdings, finance.Holding{
			Name:        cell(row, cols, "name"),
			Symbol:      cell(row, cols, "symbol"),
			Type:        cell(row, cols, "type"),
			Description: cell(row, cols, "description"),
			Value:       value,
		})
	}
	if len(holdings) == 0 {
		return nil, fmt.Errorf("portfolio file has no holdings")
	}
	return holdings, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseValue accepts plain numbers plus common display formats like
// "$12,500.00".
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	return strconv.ParseFloat(s, 64)
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
