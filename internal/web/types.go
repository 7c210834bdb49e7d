// types.go
package web

import "volcanoweb/internal/volcano"

// Slider is one threshold control.
type Slider struct {
	Name  string
	Label string
	Min   float64
	Max   float64
	Step  float64
	Value float64
}

// PageData feeds index.html.
type PageData struct {
	Title  string
	Prompt string
	Error  string
	Accept string

	HasTable    bool
	FileName    string
	FileSize    int64
	RowCount    int
	Headers     []string
	NumericCols []int
	Columns     volcano.Columns

	HasPlot    bool
	FoldChange Slider
	Sig        Slider
	PlotURL    string
	Retained   int
	Dropped    int
	Counts     volcano.Counts
	Summary    volcano.Summary
	LabelCount int
}

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// TableSummary describes an uploaded table without its rows.
type TableSummary struct {
	FileName       string   `json:"file_name"`
	FileSize       int64    `json:"file_size"`
	Rows           int      `json:"rows"`
	Headers        []string `json:"headers"`
	NumericColumns []string `json:"numeric_columns"`
}
