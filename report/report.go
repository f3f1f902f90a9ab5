// Package report formats the union of several results tables into
// cross-language comparison tables.
package report

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"

	"github.com/weiihann/matbench/table"
)

// Series holds the rows of one language, sorted by matrix size.
type Series struct {
	Language string          `json:"language"`
	Rows     []table.Summary `json:"rows"`
}

// Group splits rows by language and sorts every group by matrix size
// ascending. Groups are ordered by language name.
func Group(rows []table.Summary) []Series {
	byLang := make(map[string][]table.Summary)
	for _, r := range rows {
		byLang[r.Language] = append(byLang[r.Language], r)
	}

	out := make([]Series, 0, len(byLang))
	for lang, group := range byLang {
		slices.SortStableFunc(group, func(a, b table.Summary) int {
			return cmp.Compare(a.MatrixSize, b.MatrixSize)
		})

		out = append(out, Series{Language: lang, Rows: group})
	}

	slices.SortFunc(out, func(a, b Series) int {
		return cmp.Compare(a.Language, b.Language)
	})

	return out
}

// Generate writes a markdown comparison of rows: one table per matrix
// size listing every language with its slowdown relative to the fastest.
func Generate(w io.Writer, rows []table.Summary) error {
	if len(rows) == 0 {
		return fmt.Errorf("no results to report")
	}

	series := Group(rows)

	// Header.
	fmt.Fprintln(w, "## Matrix Multiplication Benchmark")
	fmt.Fprintln(w)

	fmt.Fprint(w, "Languages:")
	for _, s := range series {
		fmt.Fprintf(w, " %s (%d sizes)", s.Language, len(s.Rows))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	// Table header.
	fmt.Fprintln(w, "| Size | Language | Time | Memory | Slowdown |")
	fmt.Fprintln(w, "|------|----------|------|--------|----------|")

	for _, size := range sizes(rows) {
		atSize := rowsAt(rows, size)
		fastest := findFastest(atSize)

		for _, r := range atSize {
			slowdown := 1.0
			if fastest > 0 && r.TimeMs > 0 {
				slowdown = r.TimeMs / fastest
			}

			fmt.Fprintf(w, "| %dx%d | %s | %s | %s | %.2fx |\n",
				size, size,
				r.Language,
				formatMs(r.TimeMs),
				formatMB(r.MemoryMB),
				slowdown,
			)
		}
	}

	return nil
}

// GenerateJSON writes rows grouped by language as JSON to w.
func GenerateJSON(w io.Writer, rows []table.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(Group(rows))
}

// sizes returns the distinct matrix sizes in ascending order.
func sizes(rows []table.Summary) []int {
	out := make([]int, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.MatrixSize)
	}

	slices.Sort(out)

	return slices.Compact(out)
}

// rowsAt returns the rows for size, fastest first.
func rowsAt(rows []table.Summary, size int) []table.Summary {
	var out []table.Summary
	for _, r := range rows {
		if r.MatrixSize == size {
			out = append(out, r)
		}
	}

	slices.SortStableFunc(out, func(a, b table.Summary) int {
		if c := cmp.Compare(a.TimeMs, b.TimeMs); c != 0 {
			return c
		}

		return cmp.Compare(a.Language, b.Language)
	})

	return out
}

func findFastest(rows []table.Summary) float64 {
	fastest := math.Inf(1)
	for _, r := range rows {
		if r.TimeMs > 0 && r.TimeMs < fastest {
			fastest = r.TimeMs
		}
	}

	if math.IsInf(fastest, 1) {
		return 0
	}

	return fastest
}

func formatMs(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.3fms", ms)
	}

	return fmt.Sprintf("%.2fs", ms/1000)
}

func formatMB(mb float64) string {
	if mb <= 0 {
		return "-"
	}

	if mb >= 1024 {
		return fmt.Sprintf("%.2f GB", mb/1024)
	}

	return fmt.Sprintf("%.2f MB", mb)
}
