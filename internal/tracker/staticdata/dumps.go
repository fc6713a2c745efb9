// Package staticdata maintains the reference tables and asset files the
// tracker derives from the upstream assets API: raw JSON dumps for manual
// curation, database loads of heroes, abilities, and ranks, and hero icon
// downloads.
package staticdata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	apperrors "github.com/deadlock-tools/tracker/internal/platform/errors"
)

// AssetClient is the slice of the assets API this package consumes.
type AssetClient interface {
	RawResource(ctx context.Context, path string) (json.RawMessage, error)
}

// Categories maps dump file names to assets API paths. The dump files feed
// the hand-curated CSV tables, so the payloads are written verbatim.
var Categories = map[string]string{
	"heroes.json": "/v2/heroes",
	"items.json":  "/v2/items",
	"ranks.json":  "/v2/ranks",
}

// DumpResult summarizes one dump run.
type DumpResult struct {
	Written []string
	Failed  []string
}

// WriteDumps fetches every category and writes its raw payload under dir,
// one file per category. A failed category is reported and skipped.
func WriteDumps(ctx context.Context, client AssetClient, dir string, logger *log.Logger) (DumpResult, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return DumpResult{}, fmt.Errorf("create dump dir: %w", err)
	}

	var result DumpResult
	for _, name := range []string{"heroes.json", "items.json", "ranks.json"} {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		payload, err := client.RawResource(ctx, Categories[name])
		if err != nil {
			logger.Printf("skipping %s: %v", name, err)
			result.Failed = append(result.Failed, name)
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return result, fmt.Errorf("write %s: %w", name, err)
		}
		logger.Printf("wrote %s (%d bytes)", path, len(payload))
		result.Written = append(result.Written, name)
	}
	if len(result.Written) == 0 {
		return result, apperrors.New(apperrors.CodeIngestFetchFailed, "every dump category failed")
	}
	return result, nil
}
