package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/weiihann/matbench/table"
	"github.com/weiihann/matbench/workload"
)

// Defaults used when a Config field is left empty.
const (
	DefaultLanguage    = "Go"
	DefaultRepetitions = 5
	DefaultSeed        = 42
	DefaultOutputPath  = "results/benchmark_go.csv"
)

// DefaultSizes are the matrix sizes benchmarked by every harness of the
// comparison.
func DefaultSizes() []int {
	return []int{128, 256, 512, 1024}
}

// Config holds the parameters of one benchmark run.
type Config struct {
	// Language labels every row of the table.
	Language string
	// Sizes are benchmarked in this order and appear in this order in
	// the table.
	Sizes       []int
	Repetitions int
	// Seed is shared by both operands of every trial.
	Seed       int64
	OutputPath string
}

// Validate checks that the run is well formed.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Language) == "" {
		errs = append(errs, errors.New("language label is empty"))
	}

	if strings.ContainsAny(c.Language, ",\"\r\n") {
		errs = append(errs, fmt.Errorf("language label %q contains CSV delimiters", c.Language))
	}

	if len(c.Sizes) == 0 {
		errs = append(errs, errors.New("no matrix sizes"))
	}

	for _, size := range c.Sizes {
		if size <= 0 {
			errs = append(errs, fmt.Errorf("%w: %d", workload.ErrInvalidSize, size))
		}
	}

	if c.Repetitions <= 0 {
		errs = append(errs, fmt.Errorf("repetitions must be positive, got %d", c.Repetitions))
	}

	if c.OutputPath == "" {
		errs = append(errs, errors.New("output path is empty"))
	}

	return errors.Join(errs...)
}

// Harness runs the in-process benchmark.
type Harness struct {
	cfg    Config
	probe  MemoryProbe
	out    io.Writer
	logger *slog.Logger
}

// New creates a Harness. Progress and statistics are printed to out;
// structured logs go to logger. probe is required; a nil out discards
// console output and a nil logger falls back to slog.Default.
func New(cfg Config, probe MemoryProbe, out io.Writer, logger *slog.Logger) *Harness {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Harness{
		cfg:    cfg,
		probe:  probe,
		out:    out,
		logger: logger.With(slog.String("language", cfg.Language)),
	}
}

type sizeStats struct {
	size        int
	meanSeconds float64
	meanMB      float64
}

// Run benchmarks every configured size and writes the results table.
// The table is written once, after all trials succeeded; any failure
// aborts the run and leaves an existing table untouched.
func (h *Harness) Run(ctx context.Context) ([]table.Summary, error) {
	if err := h.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if h.probe == nil {
		return nil, ErrNoProbe
	}

	h.logger.InfoContext(ctx, "starting benchmark",
		slog.Any("sizes", h.cfg.Sizes),
		slog.Int("repetitions", h.cfg.Repetitions),
		slog.Int64("seed", h.cfg.Seed),
		slog.String("output", h.cfg.OutputPath),
	)

	rows := make([]table.Summary, 0, len(h.cfg.Sizes))
	stats := make([]sizeStats, 0, len(h.cfg.Sizes))

	for _, size := range h.cfg.Sizes {
		fmt.Fprintf(h.out, "Benchmarking %dx%d matrices...\n", size, size)

		samples := make([]Sample, 0, h.cfg.Repetitions)

		for rep := 1; rep <= h.cfg.Repetitions; rep++ {
			sample, err := h.trial(ctx, size, rep)
			if err != nil {
				return nil, fmt.Errorf("size %d trial %d: %w", size, rep, err)
			}

			samples = append(samples, sample)
		}

		row := Summarize(h.cfg.Language, size, samples)
		rows = append(rows, row)
		stats = append(stats, sizeStats{
			size:        size,
			meanSeconds: meanSeconds(samples),
			meanMB:      meanMB(samples),
		})

		h.logger.InfoContext(ctx, "size complete",
			slog.Int("size", size),
			slog.Float64("time_ms", row.TimeMs),
			slog.Float64("memory_mb", row.MemoryMB),
		)
	}

	if err := table.WriteFile(h.cfg.OutputPath, rows); err != nil {
		return nil, fmt.Errorf("write table: %w", err)
	}

	printStatistics(h.out, stats)
	fmt.Fprintf(h.out, "\nResults exported to: %s\n", h.cfg.OutputPath)

	return rows, nil
}

func (h *Harness) trial(ctx context.Context, size, rep int) (Sample, error) {
	a, err := workload.New(size, h.cfg.Seed)
	if err != nil {
		return Sample{}, fmt.Errorf("create matrix a: %w", err)
	}

	b, err := workload.New(size, h.cfg.Seed)
	if err != nil {
		return Sample{}, fmt.Errorf("create matrix b: %w", err)
	}

	before, err := h.probe.ResidentBytes()
	if err != nil {
		return Sample{}, fmt.Errorf("sample memory before: %w", err)
	}

	start := time.Now()
	product, err := workload.Multiply(a, b)
	elapsed := time.Since(start)

	if err != nil {
		return Sample{}, fmt.Errorf("multiply: %w", err)
	}

	after, err := h.probe.ResidentBytes()
	if err != nil {
		return Sample{}, fmt.Errorf("sample memory after: %w", err)
	}

	sample := newSample(elapsed, before, after)

	if h.logger.Enabled(ctx, slog.LevelDebug) {
		h.logger.DebugContext(ctx, "trial finished",
			slog.Int("size", size),
			slog.Int("rep", rep),
			slog.Duration("elapsed", elapsed),
			slog.String("memory", humanize.IBytes(sample.MemoryBytes)),
			slog.Float64("trace", product.Trace()),
		)
	}

	return sample, nil
}

func printStatistics(w io.Writer, stats []sizeStats) {
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "BENCHMARK STATISTICS")
	fmt.Fprintln(w, rule)

	for _, s := range stats {
		fmt.Fprintf(w, "Size %4d: Time = %.5fs, Memory = %.2f MB\n",
			s.size, s.meanSeconds, s.meanMB)
	}
}
