package tabular

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"decorana/domain/ordination"

	"github.com/xuri/excelize/v2"
)

// Reader loads a sites x species abundance table from CSV or Excel.
//
// Expected layout: the first row is a header whose cells past the first
// are species names; every following row starts with a site label and
// continues with abundance values. Empty cells count as zero.
type Reader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewReader creates a reader, picking the parser from the file extension.
func NewReader(filePath string) *Reader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &Reader{filePath: filePath, fileType: fileType}
}

// Read parses the file into a validated abundance matrix plus labels.
func (r *Reader) Read() (*ordination.AbundanceMatrix, ordination.Labels, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, ordination.Labels{}, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, ordination.Labels{}, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, ordination.Labels{}, err
	}

	return parseTable(rows)
}

func (r *Reader) readCSVRows() ([][]string, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	log.Printf("[Reader] Read %d rows from %s", len(rows), r.filePath)
	return rows, nil
}

func (r *Reader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	log.Printf("[Reader] Read %d rows from %s sheet %s", len(rows), r.filePath, sheet)
	return rows, nil
}

// parseTable turns header + label column + numeric body into domain types.
func parseTable(rows [][]string) (*ordination.AbundanceMatrix, ordination.Labels, error) {
	if len(rows) < 3 {
		return nil, ordination.Labels{}, fmt.Errorf("table needs a header and at least 2 data rows, got %d rows", len(rows))
	}
	header := rows[0]
	if len(header) < 3 {
		return nil, ordination.Labels{}, fmt.Errorf("table needs at least 2 species columns, got %d", len(header)-1)
	}

	labels := ordination.Labels{
		Species: append([]string(nil), header[1:]...),
	}
	nSpecies := len(labels.Species)

	values := make([][]float64, 0, len(rows)-1)
	for lineNo, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		labels.Sites = append(labels.Sites, row[0])
		vals := make([]float64, nSpecies)
		for j := 0; j < nSpecies; j++ {
			cell := ""
			if j+1 < len(row) {
				cell = strings.TrimSpace(row[j+1])
			}
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, ordination.Labels{}, fmt.Errorf("row %d column %q: invalid abundance %q", lineNo+2, labels.Species[j], cell)
			}
			vals[j] = v
		}
		values = append(values, vals)
	}

	m, err := ordination.NewAbundanceMatrix(values)
	if err != nil {
		return nil, ordination.Labels{}, err
	}
	return m, labels, nil
}
