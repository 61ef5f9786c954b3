package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"mixdown/internal/manifest"
	"mixdown/internal/testsupport"
	"mixdown/internal/timeline"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand()
	want := []string{"compose", "spans", "probe", "runs", "deps", "config"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("command %q not registered", name)
		}
	}
}

func writeTestManifest(t *testing.T) string {
	t.Helper()
	frames := testsupport.ConstantFrames(30, 30, timeline.FrameSample{
		Key:          "music",
		Source:       "/assets/music.mp3",
		Kind:         timeline.KindAudio,
		PlaybackRate: 1,
		Volume:       1,
	})
	return testsupport.WriteManifest(t, manifest.Manifest{
		Shard:  timeline.Shard{StartFrame: 0, EndFrame: 30},
		FPS:    30,
		Format: manifest.FormatMP4,
		Frames: frames,
	})
}

func TestSpansCommandRendersTimeline(t *testing.T) {
	path := writeTestManifest(t)

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"spans", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	rendered := out.String()
	for _, fragment := range []string{"music", "audio", "0-29", "Shard 0-30"} {
		if !strings.Contains(rendered, fragment) {
			t.Fatalf("output %q missing %q", rendered, fragment)
		}
	}
}

func TestSpansCommandRejectsMissingManifest(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"spans", filepath.Join(t.TempDir(), "absent.json")})

	if err := root.Execute(); err == nil {
		t.Fatal("missing manifest accepted")
	}
}

func TestComposeCommandValidatesFlagArity(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeTestManifest(t)

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"compose", "-m", path})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "--output") {
		t.Fatalf("err = %v, want arity error", err)
	}
}
