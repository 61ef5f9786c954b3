// Package mix combines synthesized per-asset segments into one shard track.
package mix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"mixdown/internal/filtergraph"
	"mixdown/internal/logging"
	"mixdown/internal/services"
)

// CommandRunner executes an external command and returns an error describing
// its failure output. Tests substitute a fake to capture arguments.
type CommandRunner func(ctx context.Context, name string, args ...string) error

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Mixer sums segment files additively via FFmpeg's amix filter. Authored
// levels are preserved: amix normalization is disabled and the output lasts
// as long as the longest input.
type Mixer struct {
	logger  *slog.Logger
	binary  string
	timeout time.Duration
	run     CommandRunner
}

func New(logger *slog.Logger, binary string, timeout time.Duration) *Mixer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Mixer{
		logger:  logging.NewComponentLogger(logger, "mix"),
		binary:  binary,
		timeout: timeout,
		run:     defaultCommandRunner,
	}
}

// WithCommandRunner replaces the subprocess runner, for tests.
func (m *Mixer) WithCommandRunner(run CommandRunner) {
	if run != nil {
		m.run = run
	}
}

// Mix combines the segment files into outputPath. At least one segment must
// be supplied; the zero-segment case is a passthrough handled by the caller.
func (m *Mixer) Mix(ctx context.Context, segments []string, outputPath string) error {
	if len(segments) == 0 {
		return services.Wrap(services.ErrValidation, "mix", "amix", "no segments to mix", nil)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	args := []string{"-nostdin", "-y"}
	for _, seg := range segments {
		args = append(args, "-i", seg)
	}
	args = append(args,
		"-filter_complex", filtergraph.Mix(len(segments)).String(),
		outputPath,
	)

	log := logging.WithContext(ctx, m.logger)
	log.Debug("mixing segments", logging.Int("inputs", len(segments)))

	start := time.Now()
	if err := m.run(ctx, m.binary, args...); err != nil {
		marker := services.ErrExternalTool
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return services.Wrap(marker, "mix", "ffmpeg", fmt.Sprintf("%d inputs", len(segments)), err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "mix", "stat output", outputPath, err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "mix", "ffmpeg",
			fmt.Sprintf("mixed track %s is empty", outputPath), nil)
	}

	log.Info("shard track mixed",
		logging.String(logging.FieldEventType, "track_mixed"),
		logging.Int("inputs", len(segments)),
		logging.String("path", outputPath),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}
