package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"mixdown/internal/logging"
	"mixdown/internal/services"
	"mixdown/internal/timeline"
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

// Request describes one span to synthesize within a shard.
type Request struct {
	Span       timeline.Span
	Shard      timeline.Shard
	FPS        float64
	SampleRate int
	// HasAudio reports whether the source file carries an audio stream.
	HasAudio   bool
	OutputPath string
}

// Segment is a synthesized per-asset audio file ready for mixing.
type Segment struct {
	Key  string
	Path string
}

// Synthesizer renders spans into standalone audio segments via FFmpeg.
type Synthesizer struct {
	logger  *slog.Logger
	binary  string
	timeout time.Duration
	run     CommandRunner
}

func New(logger *slog.Logger, binary string, timeout time.Duration) *Synthesizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Synthesizer{
		logger:  logging.NewComponentLogger(logger, "synth"),
		binary:  binary,
		timeout: timeout,
		run:     defaultCommandRunner,
	}
}

// WithCommandRunner replaces the subprocess runner, for tests.
func (s *Synthesizer) WithCommandRunner(run CommandRunner) {
	if run != nil {
		s.run = run
	}
}

// SkipReason explains why a span produces no segment. Empty means the span
// must be synthesized.
func SkipReason(span timeline.Span, hasAudio bool) string {
	switch {
	case span.PlaybackRate == 0:
		return "playback rate is zero"
	case span.Volume == 0 && span.Envelope == nil:
		return "volume is zero"
	case span.Kind == timeline.KindVideo && !hasAudio:
		return "video source has no audio stream"
	}
	return ""
}

// Synthesize renders one span to req.OutputPath. It returns ok=false without
// error when the span is skipped. Subprocess failures and empty outputs are
// returned as fatal errors naming the asset.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (Segment, bool, error) {
	ctx = services.WithAssetKey(ctx, req.Span.Key)
	log := logging.WithContext(ctx, s.logger)

	if reason := SkipReason(req.Span, req.HasAudio); reason != "" {
		log.Debug("skipping span", logging.String("reason", reason))
		return Segment{}, false, nil
	}

	// A missing track would desynchronize the shard, so an audio source
	// without a usable stream is fatal rather than skippable.
	if !req.HasAudio {
		return Segment{}, false, services.Wrap(services.ErrValidation, "synthesize", "probe",
			fmt.Sprintf("audio asset %s has no audio stream in %s", req.Span.Key, req.Span.Source), nil)
	}
	if req.SampleRate <= 0 {
		return Segment{}, false, services.Wrap(services.ErrValidation, "synthesize", "probe",
			fmt.Sprintf("asset %s has no usable sample rate", req.Span.Key), nil)
	}

	chain, err := BuildChain(req.Span, req.Shard, req.FPS, req.SampleRate)
	if err != nil {
		return Segment{}, false, services.Wrap(services.ErrValidation, "synthesize", "build filter chain", req.Span.Key, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// Segments are downmixed to stereo so amix and the final mux never see
	// mismatched channel layouts from multichannel sources.
	args := []string{
		"-nostdin", "-y",
		"-i", req.Span.Source,
		"-vn",
		"-af", chain.String(),
		"-ac", "2",
		req.OutputPath,
	}
	log.Debug("synthesizing segment", logging.String("filter", chain.String()))

	start := time.Now()
	if err := s.run(ctx, s.binary, args...); err != nil {
		marker := services.ErrExternalTool
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return Segment{}, false, services.Wrap(marker, "synthesize", "ffmpeg", fmt.Sprintf("asset %s", req.Span.Key), err)
	}

	info, err := os.Stat(req.OutputPath)
	if err != nil {
		return Segment{}, false, services.Wrap(services.ErrExternalTool, "synthesize", "stat output", fmt.Sprintf("asset %s", req.Span.Key), err)
	}
	if info.Size() == 0 {
		return Segment{}, false, services.Wrap(services.ErrExternalTool, "synthesize", "ffmpeg",
			fmt.Sprintf("asset %s produced empty output %s", req.Span.Key, req.OutputPath), nil)
	}

	log.Info("segment synthesized",
		logging.String(logging.FieldEventType, "segment_synthesized"),
		logging.String("path", req.OutputPath),
		logging.Duration("elapsed", time.Since(start)))
	return Segment{Key: req.Span.Key, Path: req.OutputPath}, true, nil
}
