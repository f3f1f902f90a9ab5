// Package harness measures the naive matrix multiply: it times repeated
// trials per matrix size, samples resident memory around each trial and
// reduces the samples to one results table row per size.
package harness

import (
	"math"
	"time"

	"github.com/weiihann/matbench/table"
)

const bytesPerMB = 1024 * 1024

// Sample is the measurement of a single trial.
type Sample struct {
	Elapsed     time.Duration
	MemoryBytes uint64
}

// newSample keeps the larger of the two memory snapshots.
func newSample(elapsed time.Duration, before, after uint64) Sample {
	return Sample{
		Elapsed:     elapsed,
		MemoryBytes: max(before, after),
	}
}

// meanSeconds returns the arithmetic mean of the trial durations in seconds.
func meanSeconds(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}

	var total float64
	for _, s := range samples {
		total += s.Elapsed.Seconds()
	}

	return total / float64(len(samples))
}

// meanMB returns the arithmetic mean of the memory readings in megabytes.
func meanMB(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}

	var total float64
	for _, s := range samples {
		total += float64(s.MemoryBytes) / bytesPerMB
	}

	return total / float64(len(samples))
}

// Summarize reduces the samples of one matrix size to a table row: mean
// time in milliseconds rounded to 3 decimals and mean memory in megabytes
// rounded to 2 decimals.
func Summarize(language string, size int, samples []Sample) table.Summary {
	return table.Summary{
		Language:   language,
		MatrixSize: size,
		TimeMs:     round(meanSeconds(samples)*1000, 3),
		MemoryMB:   round(meanMB(samples), 2),
	}
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))

	return math.Round(v*p) / p
}
