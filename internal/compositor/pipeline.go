// Package compositor orchestrates the full shard pipeline: reconstruct the
// asset timeline from the manifest, synthesize per-asset segments in
// parallel, mix them into one shard track, and merge that track into the
// rendered video container.
package compositor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"mixdown/internal/ledger"
	"mixdown/internal/logging"
	"mixdown/internal/manifest"
	"mixdown/internal/media/ffprobe"
	"mixdown/internal/mix"
	"mixdown/internal/mux"
	"mixdown/internal/services"
	"mixdown/internal/synth"
	"mixdown/internal/timeline"
)

const lockRetryDelay = 250 * time.Millisecond

// Prober inspects a media file's streams. The default implementation shells
// out to ffprobe; tests substitute a fake.
type Prober func(ctx context.Context, path string) (ffprobe.Result, error)

// Options configures a Pipeline.
type Options struct {
	Logger      *slog.Logger
	WorkDir     string
	FFmpeg      string
	FFprobe     string
	Timeout     time.Duration
	Concurrency int
	// Ledger is optional; runs are not recorded when nil.
	Ledger *ledger.Store
}

// Request identifies one shard to composite.
type Request struct {
	Manifest manifest.Manifest
	// ManifestPath is recorded in the ledger for diagnostics; it may be
	// empty when the manifest was not loaded from disk.
	ManifestPath string
	VideoPath    string
	OutputPath   string
}

// Result reports what one composition run produced.
type Result struct {
	RunID      string
	Spans      []timeline.Span
	Segments   []synth.Segment
	Skipped    int
	MixedPath  string
	OutputPath string
}

// Pipeline runs shard compositions. One Pipeline serves many shards; each
// Compose call is independent and safe to invoke concurrently.
type Pipeline struct {
	logger      *slog.Logger
	workDir     string
	concurrency int
	store       *ledger.Store
	registry    *Registry

	probe       Prober
	synthesizer *synth.Synthesizer
	mixer       *mix.Mixer
	merger      *mux.Merger
}

func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	ffprobeBinary := opts.FFprobe
	return &Pipeline{
		logger:      logging.NewComponentLogger(logger, "compositor"),
		workDir:     opts.WorkDir,
		concurrency: concurrency,
		store:       opts.Ledger,
		registry:    NewRegistry(),
		probe: func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, ffprobeBinary, path)
		},
		synthesizer: synth.New(logger, opts.FFmpeg, opts.Timeout),
		mixer:       mix.New(logger, opts.FFmpeg, opts.Timeout),
		merger:      mux.New(logger, opts.FFmpeg, opts.Timeout),
	}
}

// Registry exposes the in-flight job registry for status inspection.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Close refuses new compositions. In-flight runs finish normally.
func (p *Pipeline) Close() {
	p.registry.Close()
}

// WithProber replaces the stream prober, for tests.
func (p *Pipeline) WithProber(probe Prober) {
	if probe != nil {
		p.probe = probe
	}
}

// WithCommandRunner replaces the subprocess runner of every stage, for tests.
func (p *Pipeline) WithCommandRunner(run func(ctx context.Context, name string, args ...string) error) {
	p.synthesizer.WithCommandRunner(run)
	p.mixer.WithCommandRunner(run)
	p.merger.WithCommandRunner(run)
}

// Compose runs the full pipeline for one shard. Any stage failure aborts the
// run: a shard with wrong audio is worse than a shard that visibly failed.
// The scratch workspace is removed on success and kept for inspection on
// failure.
func (p *Pipeline) Compose(ctx context.Context, req Request) (Result, error) {
	m := req.Manifest
	if err := m.Validate(); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "compose", "validate manifest", req.ManifestPath, err)
	}

	runID, err := p.registry.Register(m.Shard)
	if err != nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "compose", "register run", "", err)
	}
	defer p.registry.Complete(runID)

	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithShard(ctx, m.Shard.StartFrame, m.Shard.EndFrame)
	log := logging.WithContext(ctx, p.logger)

	lock := flock.New(filepath.Join(p.workDir, fmt.Sprintf("shard-%d-%d.lock", m.Shard.StartFrame, m.Shard.EndFrame)))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return Result{}, services.Wrap(services.ErrConfiguration, "compose", "acquire shard lock", lock.Path(), err)
	}
	defer func() { _ = lock.Unlock() }()

	var runRow *ledger.Run
	if p.store != nil {
		runRow, err = p.store.Begin(ctx, runID, req.ManifestPath, m.Shard, m.NormalizedFormat())
		if err != nil {
			return Result{}, services.Wrap(services.ErrConfiguration, "compose", "record run", "", err)
		}
	}
	fail := func(err error) (Result, error) {
		log.Error("shard composition failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "scratch workspace kept for inspection"))
		if runRow != nil {
			if ferr := p.store.Fail(context.WithoutCancel(ctx), runRow.ID, services.Details(err)); ferr != nil {
				log.Warn("failed to record run failure", logging.Error(ferr))
			}
		}
		return Result{RunID: runID}, err
	}

	start := time.Now()
	spans := timeline.Reconstruct(m.Frames)
	log.Info("timeline reconstructed",
		logging.Int("frames", len(m.Frames)),
		logging.Int("spans", len(spans)))

	workspace, err := newWorkspace(p.workDir, m.Shard, runID)
	if err != nil {
		return fail(services.Wrap(services.ErrConfiguration, "compose", "create workspace", p.workDir, err))
	}

	probes, err := p.probeSources(ctx, spans)
	if err != nil {
		return fail(err)
	}

	segments, skipped, err := p.synthesizeAll(ctx, spans, m, probes, workspace)
	if err != nil {
		return fail(err)
	}

	result := Result{
		RunID:      runID,
		Spans:      spans,
		Segments:   segments,
		Skipped:    skipped,
		OutputPath: req.OutputPath,
	}

	if len(segments) > 0 {
		result.MixedPath = filepath.Join(workspace, "mixed.wav")
		paths := make([]string, len(segments))
		for i, seg := range segments {
			paths[i] = seg.Path
		}
		if err := p.mixer.Mix(ctx, paths, result.MixedPath); err != nil {
			return fail(err)
		}
	}

	if err := p.merger.Merge(ctx, req.VideoPath, result.MixedPath, m.NormalizedFormat(), req.OutputPath); err != nil {
		return fail(err)
	}

	if runRow != nil {
		if err := p.store.Complete(ctx, runRow.ID, req.OutputPath, len(segments)); err != nil {
			log.Warn("failed to record run completion", logging.Error(err))
		}
	}
	if err := cleanupWorkspace(workspace); err != nil {
		log.Warn("workspace cleanup failed", logging.Error(err))
	}

	log.Info("shard composed",
		logging.String(logging.FieldEventType, "shard_composed"),
		logging.Int("segments", len(segments)),
		logging.Int("skipped", skipped),
		logging.String("output", req.OutputPath),
		logging.Duration("elapsed", time.Since(start)))
	return result, nil
}

// probeSources inspects each unique source once. Spans the synthesizer will
// skip on rate or volume alone never reach a subprocess, so they are not
// probed either.
func (p *Pipeline) probeSources(ctx context.Context, spans []timeline.Span) (map[string]ffprobe.Result, error) {
	probes := make(map[string]ffprobe.Result)
	for _, span := range spans {
		if synth.SkipReason(span, true) != "" {
			continue
		}
		if _, ok := probes[span.Source]; ok {
			continue
		}
		result, err := p.probe(ctx, span.Source)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "compose", "probe source",
				fmt.Sprintf("asset %s (%s)", span.Key, span.Source), err)
		}
		probes[span.Source] = result
	}
	return probes, nil
}

// synthesizeAll fans spans out across a bounded worker group and collects
// the produced segments in span order. The first failure cancels the rest.
func (p *Pipeline) synthesizeAll(ctx context.Context, spans []timeline.Span, m manifest.Manifest, probes map[string]ffprobe.Result, workspace string) ([]synth.Segment, int, error) {
	type slot struct {
		segment synth.Segment
		ok      bool
	}
	slots := make([]slot, len(spans))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, span := range spans {
		i, span := i, span
		g.Go(func() error {
			probe := probes[span.Source]
			segment, ok, err := p.synthesizer.Synthesize(gctx, synth.Request{
				Span:       span,
				Shard:      m.Shard,
				FPS:        m.FPS,
				SampleRate: probe.AudioSampleRate(),
				HasAudio:   probe.AudioStreamCount() > 0,
				OutputPath: filepath.Join(workspace, fmt.Sprintf("segment-%03d.wav", i)),
			})
			if err != nil {
				return err
			}
			slots[i] = slot{segment: segment, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var segments []synth.Segment
	skipped := 0
	for _, s := range slots {
		if s.ok {
			segments = append(segments, s.segment)
		} else {
			skipped++
		}
	}
	return segments, skipped, nil
}
