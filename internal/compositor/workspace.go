package compositor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mixdown/internal/timeline"
)

// runMarkerName marks a scratch directory as disposable. Cleanup refuses to
// remove directories without it so a misconfigured work dir can never take
// user data with it.
const runMarkerName = ".mixdown-run"

func newWorkspace(workDir string, shard timeline.Shard, runID string) (string, error) {
	dir := filepath.Join(workDir, fmt.Sprintf("shard-%d-%d-%s", shard.StartFrame, shard.EndFrame, runID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create workspace: %w", err)
	}
	marker := filepath.Join(dir, runMarkerName)
	if err := os.WriteFile(marker, []byte(runID+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write workspace marker: %w", err)
	}
	return dir, nil
}

func cleanupWorkspace(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, runMarkerName))
	if err != nil {
		return fmt.Errorf("workspace %s has no run marker, refusing to remove", dir)
	}
	if strings.TrimSpace(string(data)) == "" {
		return fmt.Errorf("workspace %s has an empty run marker, refusing to remove", dir)
	}
	return os.RemoveAll(dir)
}
