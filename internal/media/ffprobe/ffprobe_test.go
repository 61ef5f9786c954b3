package ffprobe

import (
	"math"
	"testing"
)

func TestResultHelpers(t *testing.T) {
	result := Result{
		Streams: []Stream{
			{CodecType: "video"},
			{CodecType: "audio", SampleRate: "48000", Channels: 2},
			{CodecType: "audio", SampleRate: "44100"},
		},
		Format: Format{
			Duration: "123.45",
		},
	}
	if result.AudioStreamCount() != 2 {
		t.Fatalf("expected 2 audio streams, got %d", result.AudioStreamCount())
	}
	stream, ok := result.FirstAudioStream()
	if !ok {
		t.Fatal("expected an audio stream")
	}
	if stream.SampleRateHz() != 48000 {
		t.Fatalf("unexpected sample rate: %d", stream.SampleRateHz())
	}
	if result.AudioSampleRate() != 48000 {
		t.Fatalf("unexpected result sample rate: %d", result.AudioSampleRate())
	}
	if result.DurationSeconds() != 123.45 {
		t.Fatalf("unexpected duration: %v", result.DurationSeconds())
	}
}

func TestResultHelpersNoAudio(t *testing.T) {
	result := Result{Streams: []Stream{{CodecType: "video"}}}
	if result.AudioStreamCount() != 0 {
		t.Fatalf("expected 0 audio streams, got %d", result.AudioStreamCount())
	}
	if _, ok := result.FirstAudioStream(); ok {
		t.Fatal("expected no audio stream")
	}
	if result.AudioSampleRate() != 0 {
		t.Fatalf("expected sample rate 0, got %d", result.AudioSampleRate())
	}
}

func TestResultHelpersHandleInvalidNumbers(t *testing.T) {
	result := Result{
		Streams: []Stream{{CodecType: "audio", SampleRate: "bad"}},
		Format:  Format{Duration: "bad"},
	}
	if !math.IsNaN(result.DurationSeconds()) {
		t.Fatalf("expected duration NaN, got %v", result.DurationSeconds())
	}
	if result.AudioSampleRate() != 0 {
		t.Fatalf("expected sample rate 0, got %d", result.AudioSampleRate())
	}
}
