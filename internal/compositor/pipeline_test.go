package compositor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mixdown/internal/ledger"
	"mixdown/internal/manifest"
	"mixdown/internal/media/ffprobe"
	"mixdown/internal/services"
	"mixdown/internal/testsupport"
	"mixdown/internal/timeline"
)

const testFPS = 30.0

func sampledFrames(n int, samples ...timeline.FrameSample) [][]timeline.FrameSample {
	return testsupport.ConstantFrames(n, testFPS, samples...)
}

func audioProbe() ffprobe.Result {
	return ffprobe.Result{Streams: []ffprobe.Stream{
		{Index: 0, CodecName: "mp3", CodecType: "audio", SampleRate: "44100", Channels: 2},
	}}
}

func videoOnlyProbe() ffprobe.Result {
	return ffprobe.Result{Streams: []ffprobe.Stream{
		{Index: 0, CodecName: "h264", CodecType: "video"},
	}}
}

func writeOutputRunner(t *testing.T) func(context.Context, string, ...string) error {
	t.Helper()
	return func(_ context.Context, _ string, args ...string) error {
		return os.WriteFile(args[len(args)-1], []byte("media"), 0o644)
	}
}

func testManifest(frames [][]timeline.FrameSample) manifest.Manifest {
	return manifest.Manifest{
		Shard:  timeline.Shard{StartFrame: 0, EndFrame: len(frames)},
		FPS:    testFPS,
		Format: manifest.FormatMP4,
		Frames: frames,
	}
}

func TestComposeEndToEnd(t *testing.T) {
	workDir := t.TempDir()
	outDir := t.TempDir()
	store, err := ledger.Open(filepath.Join(workDir, "ledger.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	defer store.Close()

	p := New(Options{WorkDir: workDir, FFmpeg: "ffmpeg", FFprobe: "ffprobe", Concurrency: 2, Ledger: store})
	p.WithCommandRunner(writeOutputRunner(t))
	p.WithProber(func(_ context.Context, path string) (ffprobe.Result, error) {
		if strings.HasSuffix(path, ".mp3") {
			return audioProbe(), nil
		}
		return videoOnlyProbe(), nil
	})

	frames := sampledFrames(60,
		timeline.FrameSample{Key: "music", Source: "/assets/music.mp3", Kind: timeline.KindAudio, PlaybackRate: 1, Volume: 1},
		timeline.FrameSample{Key: "broll", Source: "/assets/broll.mp4", Kind: timeline.KindVideo, PlaybackRate: 1, Volume: 1},
	)
	out := filepath.Join(outDir, "shard-0.mp4")
	result, err := p.Compose(context.Background(), Request{
		Manifest:   testManifest(frames),
		VideoPath:  "/renders/shard-0-video.mp4",
		OutputPath: out,
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	if len(result.Spans) != 2 {
		t.Fatalf("spans = %d, want 2", len(result.Spans))
	}
	if len(result.Segments) != 1 || result.Segments[0].Key != "music" {
		t.Fatalf("segments = %+v", result.Segments)
	}
	if result.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", result.Skipped)
	}
	if result.MixedPath == "" {
		t.Fatal("mixed path not set")
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Fatalf("output missing: %v", err)
	}

	// scratch workspace removed on success
	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			t.Fatalf("workspace %s left behind", entry.Name())
		}
	}

	runs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != ledger.StatusCompleted || runs[0].SegmentCount != 1 {
		t.Fatalf("ledger runs = %+v", runs)
	}
}

func TestComposePassthroughWhenShardIsSilent(t *testing.T) {
	workDir := t.TempDir()
	dir := t.TempDir()
	video := filepath.Join(dir, "video.mp4")
	payload := []byte("rendered shard video")
	if err := os.WriteFile(video, payload, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p := New(Options{WorkDir: workDir, FFmpeg: "ffmpeg", FFprobe: "ffprobe"})
	p.WithCommandRunner(func(context.Context, string, ...string) error {
		t.Fatal("subprocess launched for silent shard")
		return nil
	})
	p.WithProber(func(context.Context, string) (ffprobe.Result, error) {
		return videoOnlyProbe(), nil
	})

	frames := sampledFrames(30,
		timeline.FrameSample{Key: "broll", Source: "/assets/broll.mp4", Kind: timeline.KindVideo, PlaybackRate: 1, Volume: 1},
	)
	out := filepath.Join(dir, "shard-0.mp4")
	result, err := p.Compose(context.Background(), Request{
		Manifest:   testManifest(frames),
		VideoPath:  video,
		OutputPath: out,
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if len(result.Segments) != 0 || result.MixedPath != "" {
		t.Fatalf("result = %+v, want passthrough", result)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("passthrough altered bytes: %q", got)
	}
}

func TestComposeAbortsOnSynthesisFailure(t *testing.T) {
	workDir := t.TempDir()
	store, err := ledger.Open(filepath.Join(workDir, "ledger.db"))
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	defer store.Close()

	p := New(Options{WorkDir: workDir, FFmpeg: "ffmpeg", FFprobe: "ffprobe", Ledger: store})
	p.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		for _, arg := range args {
			if arg == "-af" {
				return errors.New("Invalid argument")
			}
		}
		return os.WriteFile(args[len(args)-1], []byte("media"), 0o644)
	})
	p.WithProber(func(context.Context, string) (ffprobe.Result, error) {
		return audioProbe(), nil
	})

	frames := sampledFrames(30,
		timeline.FrameSample{Key: "music", Source: "/assets/music.mp3", Kind: timeline.KindAudio, PlaybackRate: 1, Volume: 1},
	)
	_, err = p.Compose(context.Background(), Request{
		Manifest:   testManifest(frames),
		VideoPath:  "/renders/shard-0-video.mp4",
		OutputPath: filepath.Join(t.TempDir(), "shard-0.mp4"),
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v, want external tool marker", err)
	}
	if !strings.Contains(err.Error(), "music") {
		t.Fatalf("error %q does not name the failing asset", err)
	}

	// workspace kept for inspection
	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	kept := false
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "shard-0-30-") {
			kept = true
		}
	}
	if !kept {
		t.Fatal("failed run's workspace was removed")
	}

	runs, err := store.List(context.Background(), ledger.StatusFailed)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ErrorMessage == "" {
		t.Fatalf("failed runs = %+v", runs)
	}
}

func TestComposeProbesEachSourceOnce(t *testing.T) {
	workDir := t.TempDir()
	p := New(Options{WorkDir: workDir, FFmpeg: "ffmpeg", FFprobe: "ffprobe"})
	p.WithCommandRunner(writeOutputRunner(t))

	calls := make(map[string]int)
	p.WithProber(func(_ context.Context, path string) (ffprobe.Result, error) {
		calls[path]++
		return audioProbe(), nil
	})

	frames := sampledFrames(30,
		timeline.FrameSample{Key: "intro", Source: "/assets/music.mp3", Kind: timeline.KindAudio, PlaybackRate: 1, Volume: 1},
		timeline.FrameSample{Key: "outro", Source: "/assets/music.mp3", Kind: timeline.KindAudio, PlaybackRate: 1, Volume: 0.5},
		timeline.FrameSample{Key: "vo", Source: "/assets/voiceover.wav", Kind: timeline.KindAudio, PlaybackRate: 1, Volume: 1},
	)
	_, err := p.Compose(context.Background(), Request{
		Manifest:   testManifest(frames),
		VideoPath:  "/renders/shard-0-video.mp4",
		OutputPath: filepath.Join(t.TempDir(), "shard-0.mp4"),
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	for path, count := range calls {
		if count != 1 {
			t.Fatalf("source %s probed %d times", path, count)
		}
	}
	if len(calls) != 2 {
		t.Fatalf("probed %d sources, want 2", len(calls))
	}
}

func TestComposeSkipsProbeForSilentSpans(t *testing.T) {
	workDir := t.TempDir()
	p := New(Options{WorkDir: workDir, FFmpeg: "ffmpeg", FFprobe: "ffprobe"})
	p.WithCommandRunner(writeOutputRunner(t))

	calls := make(map[string]int)
	p.WithProber(func(_ context.Context, path string) (ffprobe.Result, error) {
		calls[path]++
		return audioProbe(), nil
	})

	frames := sampledFrames(30,
		timeline.FrameSample{Key: "music", Source: "/assets/music.mp3", Kind: timeline.KindAudio, PlaybackRate: 1, Volume: 1},
		timeline.FrameSample{Key: "muted", Source: "/assets/muted.mp3", Kind: timeline.KindAudio, PlaybackRate: 1, Volume: 0},
		timeline.FrameSample{Key: "frozen", Source: "/assets/frozen.mp3", Kind: timeline.KindAudio, PlaybackRate: 0, Volume: 1},
	)
	result, err := p.Compose(context.Background(), Request{
		Manifest:   testManifest(frames),
		VideoPath:  "/renders/shard-0-video.mp4",
		OutputPath: filepath.Join(t.TempDir(), "shard-0.mp4"),
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if result.Skipped != 2 {
		t.Fatalf("skipped = %d, want 2", result.Skipped)
	}
	if _, probed := calls["/assets/muted.mp3"]; probed {
		t.Fatal("zero-volume span launched a probe")
	}
	if _, probed := calls["/assets/frozen.mp3"]; probed {
		t.Fatal("zero-rate span launched a probe")
	}
	if len(calls) != 1 {
		t.Fatalf("probed %d sources, want 1", len(calls))
	}
}

func TestComposeRejectsInvalidManifest(t *testing.T) {
	p := New(Options{WorkDir: t.TempDir(), FFmpeg: "ffmpeg", FFprobe: "ffprobe"})
	m := testManifest(sampledFrames(10,
		timeline.FrameSample{Key: "music", Source: "/assets/music.mp3", Kind: timeline.KindAudio, PlaybackRate: 1, Volume: 1},
	))
	m.FPS = 0
	_, err := p.Compose(context.Background(), Request{Manifest: m, VideoPath: "v.mp4", OutputPath: "o.mp4"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation marker", err)
	}
}
