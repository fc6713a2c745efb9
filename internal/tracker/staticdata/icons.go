package staticdata

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/deadlock-tools/tracker/internal/deadlock"
	apperrors "github.com/deadlock-tools/tracker/internal/platform/errors"
)

// IconClient is the slice of the assets API the icon fetcher consumes.
type IconClient interface {
	Heroes(ctx context.Context) ([]deadlock.AssetHero, error)
	DownloadTo(ctx context.Context, rawURL, path string) error
}

// IconOptions controls a hero icon download run.
type IconOptions struct {
	// Dir is the local directory icon files are written to.
	Dir string
	// Force re-downloads files that already exist on disk.
	Force bool
}

// IconResult summarizes one icon download run.
type IconResult struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// DownloadHeroIcons fetches the card and minimap images for every hero.
// Existing files are kept unless Force is set, and one broken image never
// aborts the run.
func DownloadHeroIcons(ctx context.Context, client IconClient, opts IconOptions, logger *log.Logger) (IconResult, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return IconResult{}, fmt.Errorf("create icon dir: %w", err)
	}

	heroes, err := client.Heroes(ctx)
	if err != nil {
		return IconResult{}, apperrors.Wrap(apperrors.CodeIngestFetchFailed, "fetch heroes", err)
	}

	var result IconResult
	for _, hero := range heroes {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		images := []struct {
			kind string
			url  string
		}{
			{"card", hero.Images.HeroCard},
			{"minimap", hero.Images.Minimap},
		}
		for _, image := range images {
			if image.url == "" {
				continue
			}
			name, err := iconFileName(hero.ClassName, image.kind, image.url)
			if err != nil {
				logger.Printf("skipping %s %s: %v", hero.Name, image.kind, err)
				result.Failed++
				continue
			}
			dst := filepath.Join(opts.Dir, name)
			if !opts.Force {
				if _, err := os.Stat(dst); err == nil {
					result.Skipped++
					continue
				}
			}
			if err := client.DownloadTo(ctx, image.url, dst); err != nil {
				logger.Printf("skipping %s %s: %v", hero.Name, image.kind, err)
				result.Failed++
				continue
			}
			logger.Printf("downloaded %s", dst)
			result.Downloaded++
		}
	}

	logger.Printf("hero icons: %d downloaded, %d skipped, %d failed",
		result.Downloaded, result.Skipped, result.Failed)
	return result, nil
}

// iconFileName derives a stable local file name from the hero's class name
// and the remote file's extension.
func iconFileName(className, kind, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse image url: %w", err)
	}
	ext := path.Ext(parsed.Path)
	if ext == "" {
		ext = ".png"
	}
	if className == "" {
		return "", fmt.Errorf("hero has no class name")
	}
	return className + "_" + kind + ext, nil
}
