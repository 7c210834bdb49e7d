// types.go
package dataset

import "time"

// Table is one uploaded file. A session keeps the last one it loaded.
type Table struct {
	Headers     []string   `json:"headers"`
	Rows        [][]string `json:"rows"`
	NumericCols []int      `json:"numeric_cols,omitempty"`
	FileName    string     `json:"file_name"`
	UploadTime  time.Time  `json:"upload_time"`
	FileSize    int64      `json:"file_size"`
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the raw text at row/col, or "" for ragged rows.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Options controls how uploads are parsed.
type Options struct {
	// Delimiter is "auto" (by extension) or "comma" (every delimited file as CSV).
	Delimiter string
	MaxRows   int
}

const (
	DelimiterAuto  = "auto"
	DelimiterComma = "comma"
)
