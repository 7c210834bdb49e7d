// processing.go
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/xuri/excelize/v2"
)

var (
	ErrEmpty           = errors.New("empty file")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooManyRows     = errors.New("too many rows")
)

// LoadError is returned for any upload that could not be turned into a Table.
type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string { return fmt.Sprintf("dataset: %s: %v", e.File, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// SupportedExtensions lists what the upload form accepts. Any delimited type may carry a .gz suffix.
var SupportedExtensions = []string{".csv", ".tsv", ".txt", ".xlsx"}

// Load parses an upload into a Table. The file name decides the format.
func Load(r io.Reader, fileName string, size int64, opts Options) (*Table, error) {
	name := strings.ToLower(strings.TrimSpace(fileName))
	if strings.HasSuffix(name, ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, &LoadError{File: fileName, Err: fmt.Errorf("gzip: %w", err)}
		}
		defer zr.Close()
		r = zr
		name = strings.TrimSuffix(name, ".gz")
	}

	var (
		data *Table
		err  error
	)
	switch {
	case strings.HasSuffix(name, ".xlsx"):
		data, err = processExcel(r)
	case strings.HasSuffix(name, ".csv"), strings.HasSuffix(name, ".tsv"), strings.HasSuffix(name, ".txt"):
		data, err = processDelimited(r, name, opts.Delimiter)
	default:
		err = ErrUnsupportedType
	}
	if err != nil {
		return nil, &LoadError{File: fileName, Err: err}
	}
	if opts.MaxRows > 0 && len(data.Rows) > opts.MaxRows {
		return nil, &LoadError{File: fileName, Err: fmt.Errorf("%w (> %d)", ErrTooManyRows, opts.MaxRows)}
	}

	data.FileName = fileName
	data.FileSize = size
	data.UploadTime = time.Now()
	data.NumericCols = DetectNumericColumns(data)
	return data, nil
}

func processDelimited(file io.Reader, name, mode string) (*Table, error) {
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmpty
	}
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = delimiterFor(name, mode, raw)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	return &Table{Headers: cleanHeaders(rows[0]), Rows: rows[1:]}, nil
}

// delimiterFor picks the field separator. In comma mode every file is CSV.
func delimiterFor(name, mode string, raw []byte) rune {
	if mode == DelimiterComma {
		return ','
	}
	switch {
	case strings.HasSuffix(name, ".tsv"):
		return '\t'
	case strings.HasSuffix(name, ".txt"):
		header := raw
		if i := bytes.IndexByte(raw, '\n'); i >= 0 {
			header = raw[:i]
		}
		if bytes.IndexByte(header, '\t') >= 0 && bytes.IndexByte(header, ',') < 0 {
			return '\t'
		}
	}
	return ','
}

func processExcel(file io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no sheets")
	}
	// raw values, so number formats such as 0.00 do not round p-values away
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	return &Table{Headers: cleanHeaders(rows[0]), Rows: rows[1:]}, nil
}

func cleanHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		headers[i] = h
	}
	return headers
}

// missingTokens are read as missing values, the way spreadsheet exports write them.
var missingTokens = map[string]bool{
	"na": true, "n/a": true, "#n/a": true, "nan": true, "-nan": true,
	"null": true, "none": true, "-": true,
}

// ParseNumber coerces a cell to a finite float. Blank, NA-like and non-numeric cells report false.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || missingTokens[strings.ToLower(s)] {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func isMissing(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || missingTokens[strings.ToLower(s)]
}

func DetectNumericColumns(data *Table) []int {
	var numericCols []int
	for col := range data.Headers {
		if isColumnNumeric(data, col) {
			numericCols = append(numericCols, col)
		}
	}
	return numericCols
}

func isColumnNumeric(data *Table, colIndex int) bool {
	numericCount := 0
	totalCount := 0
	for _, row := range data.Rows {
		if colIndex >= len(row) {
			continue
		}
		val := row[colIndex]
		if isMissing(val) {
			continue
		}
		totalCount++
		if _, ok := ParseNumber(val); ok {
			numericCount++
		}
	}
	if totalCount == 0 {
		return false
	}
	return float64(numericCount)/float64(totalCount) >= 0.8
}
