// Package main provides the CLI entry point for matbench, a cross-language
// matrix multiplication benchmarking tool.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/weiihann/matbench/config"
	"github.com/weiihann/matbench/harness"
	"github.com/weiihann/matbench/report"
	"github.com/weiihann/matbench/table"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "matbench",
		Short: "Cross-language matrix multiplication benchmarking tool",
		Long: `Matbench times the naive O(n^3) product of dense square matrices,
samples resident memory around every trial and writes the averaged
results per matrix size to a CSV table. Tables produced by harnesses in
other languages can be run and compared side by side.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newExecCmd(logger))
	root.AddCommand(newReportCmd())

	return root
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		configPath  string
		language    string
		sizes       []int
		repetitions int
		seed        int64
		output      string
		probe       string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Benchmark the Go matrix multiply",
		Long: `Multiply two seeded random matrices for every size, repeat each size
the given number of times and write one averaged row per size to the
output table. An existing table at the output path is replaced.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()

			if configPath != "" {
				var err error

				cfg, err = config.Load(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
			}

			flags := cmd.Flags()
			if flags.Changed("language") {
				cfg.Language = language
			}
			if flags.Changed("sizes") {
				cfg.Sizes = sizes
			}
			if flags.Changed("repetitions") {
				cfg.Repetitions = repetitions
			}
			if flags.Changed("seed") {
				cfg.Seed = seed
			}
			if flags.Changed("output") {
				cfg.Output = output
			}
			if flags.Changed("probe") {
				cfg.Probe = probe
			}

			return runBenchmark(cmd.Context(), logger, cmd.OutOrStdout(), cfg)
		},
	}

	defaults := config.Default()

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "",
		"Path to a TOML configuration file")
	flags.StringVar(&language, "language", defaults.Language,
		"Language label written to every row")
	flags.IntSliceVar(&sizes, "sizes", defaults.Sizes,
		"Matrix sizes to benchmark, in order")
	flags.IntVar(&repetitions, "repetitions", defaults.Repetitions,
		"Trials per matrix size")
	flags.Int64Var(&seed, "seed", defaults.Seed,
		"Seed shared by both operands of every trial")
	flags.StringVar(&output, "output", defaults.Output,
		"Path of the results table")
	flags.StringVar(&probe, "probe", defaults.Probe,
		"Memory probe: rss (current RSS) or maxrss (peak RSS)")

	return cmd
}

func runBenchmark(
	ctx context.Context,
	logger *slog.Logger,
	out io.Writer,
	cfg config.Config,
) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	probe, err := harness.ProbeByName(cfg.Probe)
	if err != nil {
		return fmt.Errorf("create memory probe: %w", err)
	}

	h := harness.New(cfg.Harness(), probe, out, logger)

	if _, err := h.Run(ctx); err != nil {
		return fmt.Errorf("run benchmark: %w", err)
	}

	logger.InfoContext(ctx, "benchmark complete")

	return nil
}

func newExecCmd(logger *slog.Logger) *cobra.Command {
	var (
		language  string
		tablePath string
		timeout   time.Duration
		env       []string
	)

	cmd := &cobra.Command{
		Use:   "exec --language NAME --table PATH -- COMMAND [ARGS...]",
		Short: "Run a benchmark harness written in another language",
		Long: `Run an external harness, wait for it to finish and load the results
table it wrote. Every row must carry the given language label. Targets
ending in .jar run with java -jar and .py targets with python3.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if language == "" {
				return fmt.Errorf("--language is required")
			}
			if tablePath == "" {
				return fmt.Errorf("--table is required")
			}

			cmdCfg := harness.WrapCommand(args[0], args[1:])
			runner := harness.NewExternalRunner(
				language, cmdCfg.Binary, cmdCfg.Args, env, cmd.ErrOrStderr(), logger,
			)

			rows, err := runner.Run(cmd.Context(), harness.ExternalConfig{
				TablePath: tablePath,
				Timeout:   timeout,
			})
			if err != nil {
				return fmt.Errorf("run %s harness: %w", language, err)
			}

			return report.Generate(cmd.OutOrStdout(), rows)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&language, "language", "",
		"Language label the harness writes (e.g. C, Java, Python)")
	flags.StringVar(&tablePath, "table", "",
		"Path of the results table the harness writes")
	flags.DurationVar(&timeout, "timeout", 2*time.Hour,
		"Kill the harness after this long (0 = no limit)")
	flags.StringSliceVar(&env, "env", nil,
		"Extra KEY=VALUE environment for the harness")

	return cmd
}

func newReportCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "report TABLE.csv...",
		Short: "Compare results tables from several harnesses",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := table.ReadFiles(args...)
			if err != nil {
				return fmt.Errorf("read tables: %w", err)
			}

			if outputJSON {
				if err := report.GenerateJSON(cmd.OutOrStdout(), rows); err != nil {
					return fmt.Errorf("generate JSON report: %w", err)
				}

				return nil
			}

			if err := report.Generate(cmd.OutOrStdout(), rows); err != nil {
				return fmt.Errorf("generate report: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false,
		"Output results as JSON instead of table")

	return cmd
}
