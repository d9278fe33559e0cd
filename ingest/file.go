package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// IngestFile loads the newest staged JSON document for the entity type from
// dir and ingests it. Staged files are named "<entity>_*.json" by whatever
// wrote them; the most recently modified one wins.
func (e *Engine) IngestFile(ctx context.Context, dir string, entity EntityType) (SyncOutcome, error) {
	path, err := latestStaged(dir, string(entity))
	if err != nil {
		return SyncOutcome{Endpoint: string(entity)}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return SyncOutcome{Endpoint: string(entity)}, fmt.Errorf("read %s: %w", path, err)
	}
	return e.Ingest(ctx, entity, raw, map[string]string{"file": filepath.Base(path)})
}

func latestStaged(dir, prefix string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read staging dir: %w", err)
	}

	var best string
	var bestTime time.Time
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := ent.Info()
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestTime) {
			best = filepath.Join(dir, name)
			bestTime = info.ModTime()
		}
	}
	if best == "" {
		return "", fmt.Errorf("no staged %q document in %s", prefix, dir)
	}
	return best, nil
}
