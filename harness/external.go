package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/weiihann/matbench/table"
)

// ErrLanguageMismatch is returned when an external harness writes rows
// labelled with a language other than the expected one.
var ErrLanguageMismatch = errors.New("results table language mismatch")

// waitDelay bounds how long Run waits for output pipes after the harness
// is killed.
const waitDelay = 2 * time.Second

// ExternalConfig holds parameters for a single external harness execution.
type ExternalConfig struct {
	// TablePath is where the harness writes its results table.
	TablePath string
	Timeout   time.Duration
}

// ExternalRunner launches a benchmark harness written in another language
// and loads the table it produces.
type ExternalRunner struct {
	Language   string
	BinaryPath string
	Args       []string
	Env        []string
	Stdout     io.Writer
	Logger     *slog.Logger
}

// NewExternalRunner creates an ExternalRunner for the given language
// label. Env is appended to the inherited environment. The harness'
// stdout is forwarded to stdout when it is not nil. A nil logger falls
// back to slog.Default.
func NewExternalRunner(
	language, binaryPath string,
	args, env []string,
	stdout io.Writer,
	logger *slog.Logger,
) *ExternalRunner {
	if logger == nil {
		logger = slog.Default()
	}

	return &ExternalRunner{
		Language:   language,
		BinaryPath: binaryPath,
		Args:       args,
		Env:        env,
		Stdout:     stdout,
		Logger:     logger.With(slog.String("language", language)),
	}
}

// Run executes the harness and returns the rows of its results table.
func (r *ExternalRunner) Run(ctx context.Context, cfg ExternalConfig) ([]table.Summary, error) {
	if cfg.TablePath == "" {
		return nil, errors.New("table path is empty")
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.TablePath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: create dir for %s: %w",
			table.ErrIOFailure, cfg.TablePath, err)
	}

	// A table left over from an earlier run must not pass for fresh output.
	if err := os.Remove(cfg.TablePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: remove stale table %s: %w",
			table.ErrIOFailure, cfg.TablePath, err)
	}

	cmd := exec.CommandContext(ctx, r.BinaryPath, r.Args...)
	cmd.WaitDelay = waitDelay

	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if r.Stdout != nil {
		cmd.Stdout = r.Stdout
	}

	r.Logger.InfoContext(ctx, "starting harness",
		slog.String("binary", r.BinaryPath),
		slog.Any("args", r.Args),
		slog.String("table", cfg.TablePath),
	)

	wallStart := time.Now()

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf(
			"harness %s failed: %w\nstderr: %s",
			r.Language, err, stderr.String(),
		)
	}

	wallElapsed := time.Since(wallStart)

	rows, err := table.ReadFile(cfg.TablePath)
	if err != nil {
		return nil, fmt.Errorf("load %s table: %w", r.Language, err)
	}

	if err := checkLanguage(r.Language, rows); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.TablePath, err)
	}

	var size uint64
	if info, err := os.Stat(cfg.TablePath); err == nil {
		size = uint64(info.Size())
	}

	r.Logger.InfoContext(ctx, "harness finished",
		slog.Duration("wall_time", wallElapsed),
		slog.Int("rows", len(rows)),
		slog.String("table_size", humanize.Bytes(size)),
	)

	return rows, nil
}

func checkLanguage(language string, rows []table.Summary) error {
	if len(rows) == 0 {
		return errors.New("results table has no rows")
	}

	for _, row := range rows {
		if row.Language != language {
			return fmt.Errorf("%w: row for size %d is labelled %q, want %q",
				ErrLanguageMismatch, row.MatrixSize, row.Language, language)
		}
	}

	return nil
}
