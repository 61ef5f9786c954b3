package deps

import "testing"

func TestCheckBinariesMissingCommand(t *testing.T) {
	statuses := CheckBinaries([]Requirement{{Name: "FFmpeg", Command: ""}})
	if len(statuses) != 1 {
		t.Fatalf("expected 1 status, got %d", len(statuses))
	}
	if statuses[0].Available {
		t.Fatal("empty command must not be available")
	}
	if statuses[0].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %q", statuses[0].Detail)
	}
}

func TestCheckBinariesUnknownBinary(t *testing.T) {
	statuses := CheckBinaries([]Requirement{{Name: "FFmpeg", Command: "definitely-not-a-real-binary-9f2c"}})
	if statuses[0].Available {
		t.Fatal("unknown binary must not be available")
	}
}

func TestRequirementsUseConfiguredCommands(t *testing.T) {
	reqs := Requirements("/opt/ffmpeg", "/opt/ffprobe")
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %d", len(reqs))
	}
	if reqs[0].Command != "/opt/ffmpeg" || reqs[1].Command != "/opt/ffprobe" {
		t.Fatalf("unexpected commands: %+v", reqs)
	}
}
