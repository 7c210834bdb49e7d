package dataset

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/xuri/excelize/v2"
)

func TestLoadCSVTrimsHeaders(t *testing.T) {
	in := " gene , log2FC ,pvalue \nTP53,3.0,0.001\nBRCA1,-1.0,0.2\n"
	tbl, err := Load(strings.NewReader(in), "genes.csv", int64(len(in)), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"gene", "log2FC", "pvalue"}
	for i, h := range want {
		if tbl.Headers[i] != h {
			t.Errorf("header %d = %q, want %q", i, tbl.Headers[i], h)
		}
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tbl.Rows))
	}
	if tbl.FileName != "genes.csv" || tbl.FileSize != int64(len(in)) {
		t.Errorf("metadata not set: %+v", tbl)
	}
	if tbl.ColumnIndex("pvalue") != 2 || tbl.ColumnIndex("missing") != -1 {
		t.Errorf("ColumnIndex mismatch")
	}
}

func TestLoadEmptyHeaderNamed(t *testing.T) {
	in := "\ufeffid,,p\na,1,0.5\n"
	tbl, err := Load(strings.NewReader(in), "x.csv", 0, Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Headers[0] != "id" {
		t.Errorf("BOM not stripped: %q", tbl.Headers[0])
	}
	if tbl.Headers[1] != "Column_2" {
		t.Errorf("empty header = %q, want Column_2", tbl.Headers[1])
	}
}

func TestLoadDelimiterByExtension(t *testing.T) {
	tsv := "gene\tfc\tp\nA\t1.5\t0.01\n"
	cases := []struct {
		name     string
		file     string
		mode     string
		wantCols int
	}{
		{"tsv auto", "a.tsv", DelimiterAuto, 3},
		{"txt sniffed tab", "a.txt", DelimiterAuto, 3},
		{"tsv comma mode", "a.tsv", DelimiterComma, 1},
		{"txt comma mode", "a.txt", DelimiterComma, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tbl, err := Load(strings.NewReader(tsv), tc.file, 0, Options{Delimiter: tc.mode})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(tbl.Headers) != tc.wantCols {
				t.Fatalf("headers = %v, want %d columns", tbl.Headers, tc.wantCols)
			}
		})
	}
}

func TestLoadTxtWithCommasStaysCSV(t *testing.T) {
	in := "gene,fc,p\nA,1.5,0.01\n"
	tbl, err := Load(strings.NewReader(in), "a.txt", 0, Options{Delimiter: DelimiterAuto})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tbl.Headers) != 3 {
		t.Fatalf("headers = %v", tbl.Headers)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		in   string
		file string
		opts Options
		want error
	}{
		{"empty", "   \n", "a.csv", Options{}, ErrEmpty},
		{"extension", "a,b\n1,2\n", "a.json", Options{}, ErrUnsupportedType},
		{"too many rows", "a\n1\n2\n3\n", "a.csv", Options{MaxRows: 2}, ErrTooManyRows},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.in), tc.file, 0, tc.opts)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			var le *LoadError
			if !errors.As(err, &le) {
				t.Fatalf("err %T is not *LoadError", err)
			}
		})
	}
}

func TestLoadMalformedCSV(t *testing.T) {
	in := "a,b\n\"unterminated,2\n"
	if _, err := Load(strings.NewReader(in), "bad.csv", 0, Options{}); err == nil {
		t.Fatal("expected parse error for unterminated quote")
	}
}

func TestLoadGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("gene\tfc\tp\nA\t2\t0.01\n"))
	zw.Close()

	tbl, err := Load(&buf, "results.tsv.gz", 0, Options{Delimiter: DelimiterAuto})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tbl.Headers) != 3 || len(tbl.Rows) != 1 {
		t.Fatalf("unexpected table: %+v", tbl)
	}
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]interface{}{" gene ", "log2FC", "pvalue"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{"TP53", 3.0, 0.001})
	f.SetSheetRow(sheet, "A3", &[]interface{}{"MYC", -2.5, 0.0001})
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	f.Close()

	tbl, err := Load(&buf, "Results.XLSX", int64(buf.Len()), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Headers[0] != "gene" || len(tbl.Rows) != 2 {
		t.Fatalf("unexpected table: headers=%v rows=%d", tbl.Headers, len(tbl.Rows))
	}
	if v, ok := ParseNumber(tbl.Cell(1, 1)); !ok || v != -2.5 {
		t.Errorf("cell(1,1) = %q", tbl.Cell(1, 1))
	}
}

func TestLoadXLSXIgnoresNumberFormat(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]interface{}{"gene", "log2FC", "pvalue"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{"TP53", 3.14159, 0.0001234})
	style, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}
	if err := f.SetCellStyle(sheet, "B2", "C2", style); err != nil {
		t.Fatalf("SetCellStyle: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	f.Close()

	tbl, err := Load(&buf, "styled.xlsx", int64(buf.Len()), Options{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v, ok := ParseNumber(tbl.Cell(0, 2)); !ok || v != 0.0001234 {
		t.Errorf("p-value cell = %q, want 0.0001234", tbl.Cell(0, 2))
	}
	if v, ok := ParseNumber(tbl.Cell(0, 1)); !ok || v != 3.14159 {
		t.Errorf("fold change cell = %q, want 3.14159", tbl.Cell(0, 1))
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"0.05", 0.05, true},
		{" 1e-10 ", 1e-10, true},
		{"-3", -3, true},
		{"NA", 0, false},
		{"nan", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseNumber(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseNumber(%q) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestDetectNumericColumns(t *testing.T) {
	tbl := &Table{
		Headers: []string{"gene", "fc", "p"},
		Rows: [][]string{
			{"A", "1.0", "0.1"},
			{"B", "2.0", "NA"},
			{"C", "x", "0.3"},
			{"D", "4.0", "0.4"},
			{"E", "5.0"},
		},
	}
	got := DetectNumericColumns(tbl)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("numeric cols = %v, want [1 2]", got)
	}
}
