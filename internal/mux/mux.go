// Package mux merges a shard's mixed audio track back into its rendered
// video container, or passes the video through untouched when the shard
// produced no audio.
package mux

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"mixdown/internal/fileutil"
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

// AudioCodec maps an output container format to the encoder used when muxing
// the mixed track into it.
func AudioCodec(format string) (string, error) {
	switch strings.ToLower(format) {
	case "mp4", "mov":
		return "aac", nil
	case "webm":
		return "libopus", nil
	}
	return "", services.Wrap(services.ErrValidation, "merge", "select codec",
		fmt.Sprintf("unsupported container format %q", format), nil)
}

// Merger attaches mixed audio to rendered video containers.
type Merger struct {
	logger  *slog.Logger
	binary  string
	timeout time.Duration
	run     CommandRunner
}

func New(logger *slog.Logger, binary string, timeout time.Duration) *Merger {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Merger{
		logger:  logging.NewComponentLogger(logger, "mux"),
		binary:  binary,
		timeout: timeout,
		run:     defaultCommandRunner,
	}
}

// WithCommandRunner replaces the subprocess runner, for tests.
func (m *Merger) WithCommandRunner(run CommandRunner) {
	if run != nil {
		m.run = run
	}
}

// Merge muxes audioPath into videoPath, writing the result to outputPath.
// The video stream is stream-copied, never re-encoded. An empty audioPath
// means the shard has no audible assets; the video file is then copied to
// outputPath byte for byte.
func (m *Merger) Merge(ctx context.Context, videoPath, audioPath, format, outputPath string) error {
	log := logging.WithContext(ctx, m.logger)

	if audioPath == "" {
		if err := fileutil.CopyFileVerified(videoPath, outputPath); err != nil {
			return services.Wrap(services.ErrExternalTool, "merge", "passthrough copy", videoPath, err)
		}
		log.Info("no audio for shard, video passed through",
			logging.String(logging.FieldEventType, "video_passthrough"),
			logging.String("path", outputPath))
		return nil
	}

	codec, err := AudioCodec(format)
	if err != nil {
		return err
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	args := []string{
		"-nostdin", "-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", codec,
		outputPath,
	}

	start := time.Now()
	if err := m.run(ctx, m.binary, args...); err != nil {
		marker := services.ErrExternalTool
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return services.Wrap(marker, "merge", "ffmpeg", outputPath, err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "merge", "stat output", outputPath, err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrExternalTool, "merge", "ffmpeg",
			fmt.Sprintf("merged container %s is empty", outputPath), nil)
	}

	log.Info("audio merged into container",
		logging.String(logging.FieldEventType, "audio_merged"),
		logging.String("codec", codec),
		logging.String("path", outputPath),
		logging.Duration("elapsed", time.Since(start)))
	return nil
}
