package table

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeFormat(t *testing.T) {
	rows := []Summary{
		{Language: "Go", MatrixSize: 128, TimeMs: 20, MemoryMB: 7.5},
		{Language: "Go", MatrixSize: 64, TimeMs: 1.23456, MemoryMB: 7.555},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, rows); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := "Language,Matrix_Size,Time_ms,Memory_MB\n" +
		"Go,128,20.000,7.50\n" +
		"Go,64,1.235,7.55\n"

	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Encode output mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	rows := []Summary{
		{Language: "Go", MatrixSize: 2, TimeMs: 0.001, MemoryMB: 3.25},
		{Language: "Go", MatrixSize: 4, TimeMs: 0.012, MemoryMB: 3.5},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, rows); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if diff := cmp.Diff(rows, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeForeignPrecision(t *testing.T) {
	// The Python harness writes round()ed floats without padding.
	input := "Language,Matrix_Size,Time_ms,Memory_MB\n" +
		"Python,128,1234.5,20.1\n" +
		"Python,256,9876.543,21.0\n"

	got, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	want := []Summary{
		{Language: "Python", MatrixSize: 128, TimeMs: 1234.5, MemoryMB: 20.1},
		{Language: "Python", MatrixSize: 256, TimeMs: 9876.543, MemoryMB: 21},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong header", "Lang,Size,Time,Mem\nGo,2,1.0,1.0\n"},
		{"short header", "Language,Matrix_Size,Time_ms\n"},
		{"bad size", "Language,Matrix_Size,Time_ms,Memory_MB\nGo,two,1.0,1.0\n"},
		{"zero size", "Language,Matrix_Size,Time_ms,Memory_MB\nGo,0,1.0,1.0\n"},
		{"bad time", "Language,Matrix_Size,Time_ms,Memory_MB\nGo,2,fast,1.0\n"},
		{"bad memory", "Language,Matrix_Size,Time_ms,Memory_MB\nGo,2,1.0,lots\n"},
		{"empty language", "Language,Matrix_Size,Time_ms,Memory_MB\n,2,1.0,1.0\n"},
		{"nan time", "Language,Matrix_Size,Time_ms,Memory_MB\nGo,2,NaN,1.0\n"},
		{"inf time", "Language,Matrix_Size,Time_ms,Memory_MB\nGo,2,+Inf,1.0\n"},
		{"negative time", "Language,Matrix_Size,Time_ms,Memory_MB\nGo,2,-1.5,1.0\n"},
		{"nan memory", "Language,Matrix_Size,Time_ms,Memory_MB\nGo,2,1.0,nan\n"},
		{"negative memory", "Language,Matrix_Size,Time_ms,Memory_MB\nGo,2,1.0,-0.01\n"},
		{"extra column", "Language,Matrix_Size,Time_ms,Memory_MB\nGo,2,1.0,1.0,x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			if !errors.Is(err, ErrSchema) {
				t.Errorf("err = %v, want ErrSchema", err)
			}
		})
	}
}

func TestWriteFileCreatesDirAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "results", "benchmark_go.csv")

	first := []Summary{
		{Language: "Go", MatrixSize: 2, TimeMs: 1, MemoryMB: 1},
		{Language: "Go", MatrixSize: 4, TimeMs: 2, MemoryMB: 2},
		{Language: "Go", MatrixSize: 8, TimeMs: 3, MemoryMB: 3},
	}
	if err := WriteFile(path, first); err != nil {
		t.Fatalf("first WriteFile failed: %v", err)
	}

	second := []Summary{
		{Language: "Go", MatrixSize: 16, TimeMs: 42, MemoryMB: 9.99},
	}
	if err := WriteFile(path, second); err != nil {
		t.Fatalf("second WriteFile failed: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if diff := cmp.Diff(second, got); diff != "" {
		t.Errorf("table not replaced (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the table in the output dir, got %d entries", len(entries))
	}
}

func TestWriteFileUnwritableDir(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "blocker")

	if err := os.WriteFile(blocker, []byte("not a dir"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	err := WriteFile(filepath.Join(blocker, "out.csv"), nil)
	if !errors.Is(err, ErrIOFailure) {
		t.Errorf("err = %v, want ErrIOFailure", err)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, ErrIOFailure) {
		t.Errorf("err = %v, want ErrIOFailure", err)
	}
}

func TestReadFilesUnion(t *testing.T) {
	dir := t.TempDir()

	c := []Summary{{Language: "C", MatrixSize: 128, TimeMs: 5, MemoryMB: 1.5}}
	goRows := []Summary{
		{Language: "Go", MatrixSize: 128, TimeMs: 6, MemoryMB: 8},
		{Language: "Go", MatrixSize: 256, TimeMs: 50, MemoryMB: 9},
	}

	cPath := filepath.Join(dir, "benchmark_c.csv")
	goPath := filepath.Join(dir, "benchmark_go.csv")

	if err := WriteFile(cPath, c); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := WriteFile(goPath, goRows); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := ReadFiles(cPath, goPath)
	if err != nil {
		t.Fatalf("ReadFiles failed: %v", err)
	}

	want := append(append([]Summary{}, c...), goRows...)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("union mismatch (-want +got):\n%s", diff)
	}
}
