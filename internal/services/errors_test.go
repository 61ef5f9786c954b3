package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("exit status 1")
	err := Wrap(ErrExternalTool, "synthesize", "ffmpeg", "asset music", inner)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected wrapped inner error, got %v", err)
	}
}

func TestWrapNilMarkerDefaults(t *testing.T) {
	err := Wrap(nil, "mix", "", "", nil)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("nil marker must default to external tool, got %v", err)
	}
}

func TestDetailsStripsMarkerPrefix(t *testing.T) {
	err := Wrap(ErrValidation, "manifest", "load", "fps must be positive", nil)
	if got := Details(err); got != "manifest: load: fps must be positive" {
		t.Fatalf("unexpected details: %q", got)
	}
	if Details(nil) != "" {
		t.Fatal("nil error must produce empty details")
	}
}
