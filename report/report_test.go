package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/weiihann/matbench/table"
)

func unionFixture() []table.Summary {
	c := []table.Summary{
		{Language: "C", MatrixSize: 256, TimeMs: 40, MemoryMB: 1.5},
		{Language: "C", MatrixSize: 128, TimeMs: 5, MemoryMB: 1.25},
	}
	python := []table.Summary{
		{Language: "Python", MatrixSize: 128, TimeMs: 1500, MemoryMB: 20.5},
		{Language: "Python", MatrixSize: 256, TimeMs: 12000, MemoryMB: 24},
	}
	goRows := []table.Summary{
		{Language: "Go", MatrixSize: 128, TimeMs: 10, MemoryMB: 8},
		{Language: "Go", MatrixSize: 256, TimeMs: 80, MemoryMB: 9},
	}

	return table.Union(python, c, goRows)
}

func TestGroupSortsBySize(t *testing.T) {
	got := Group(unionFixture())

	want := []Series{
		{Language: "C", Rows: []table.Summary{
			{Language: "C", MatrixSize: 128, TimeMs: 5, MemoryMB: 1.25},
			{Language: "C", MatrixSize: 256, TimeMs: 40, MemoryMB: 1.5},
		}},
		{Language: "Go", Rows: []table.Summary{
			{Language: "Go", MatrixSize: 128, TimeMs: 10, MemoryMB: 8},
			{Language: "Go", MatrixSize: 256, TimeMs: 80, MemoryMB: 9},
		}},
		{Language: "Python", Rows: []table.Summary{
			{Language: "Python", MatrixSize: 128, TimeMs: 1500, MemoryMB: 20.5},
			{Language: "Python", MatrixSize: 256, TimeMs: 12000, MemoryMB: 24},
		}},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Group mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, unionFixture()); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	output := buf.String()

	for _, want := range []string{
		"Languages: C (2 sizes) Go (2 sizes) Python (2 sizes)",
		"| 128x128 | C | 5.000ms | 1.25 MB | 1.00x |",
		"| 128x128 | Go | 10.000ms | 8.00 MB | 2.00x |",
		"| 128x128 | Python | 1.50s | 20.50 MB | 300.00x |",
		"| 256x256 | Python | 12.00s | 24.00 MB | 300.00x |",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\noutput:\n%s", want, output)
		}
	}

	if strings.Index(output, "| 128x128 |") > strings.Index(output, "| 256x256 |") {
		t.Error("sizes not listed in ascending order")
	}
}

func TestGenerateEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(&buf, nil)
	if err == nil {
		t.Error("expected error for empty results")
	}
}

func TestGenerateJSON(t *testing.T) {
	rows := []table.Summary{
		{Language: "Go", MatrixSize: 4, TimeMs: 0.002, MemoryMB: 3},
		{Language: "Go", MatrixSize: 2, TimeMs: 0.001, MemoryMB: 3},
	}

	var buf bytes.Buffer
	if err := GenerateJSON(&buf, rows); err != nil {
		t.Fatalf("GenerateJSON failed: %v", err)
	}

	var parsed []Series
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if len(parsed) != 1 {
		t.Fatalf("expected 1 series, got %d", len(parsed))
	}
	if parsed[0].Language != "Go" {
		t.Errorf("language = %q, want Go", parsed[0].Language)
	}
	if parsed[0].Rows[0].MatrixSize != 2 {
		t.Errorf("first size = %d, want 2", parsed[0].Rows[0].MatrixSize)
	}
}

func TestFormatMB(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "-"},
		{0.5, "0.50 MB"},
		{20.1, "20.10 MB"},
		{1023.99, "1023.99 MB"},
		{1536, "1.50 GB"},
	}

	for _, tt := range tests {
		got := formatMB(tt.input)
		if got != tt.want {
			t.Errorf("formatMB(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatMs(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0.000ms"},
		{0.0125, "0.013ms"},
		{999.5, "999.500ms"},
		{1000, "1.00s"},
		{1500, "1.50s"},
		{60000, "60.00s"},
	}

	for _, tt := range tests {
		got := formatMs(tt.input)
		if got != tt.want {
			t.Errorf("formatMs(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
