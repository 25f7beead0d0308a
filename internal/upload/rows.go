// Package upload turns an uploaded spreadsheet into the ordered row-arrays
// the ingestion pipeline consumes. Only the extension gate and row
// extraction live here; cell semantics beyond plain strings are out of scope.
package upload

import (
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedType rejects any upload that is neither .csv nor .xlsx,
// before a single byte is parsed.
var ErrUnsupportedType = errors.New("Only CSV or XLSX allowed")

// Rows reads every row of the uploaded file as a slice of string cells.
// The filename's extension selects the parser. Rows are returned in file
// order with no header handling; skipping the header is the pipeline's job.
func Rows(filename string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "csv":
		return csvRows(r)
	case "xlsx":
		return xlsxRows(r)
	}
	return nil, ErrUnsupportedType
}

func csvRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows are handled per-cell downstream
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

func xlsxRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}
