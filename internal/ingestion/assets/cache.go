package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// FetchResult reports the outcome of a best-effort artwork download: either
// a web-servable path, or skipped with a reason. Callers log skips and keep
// going; they never abort ingestion over one.
type FetchResult struct {
	Path    string
	Skipped bool
	Reason  string
}

func fetched(path string) FetchResult {
	return FetchResult{Path: path}
}

func skipped(reason string) FetchResult {
	return FetchResult{Skipped: true, Reason: reason}
}

// Cache mirrors cover art and screenshots into a game folder's artwork
// directory, producing stable paths the web layer can serve.
type Cache struct {
	libraryRoot string
	httpClient  *http.Client
}

func NewCache(libraryRoot string, httpClient *http.Client) *Cache {
	return &Cache{libraryRoot: libraryRoot, httpClient: httpClient}
}

// EnsureDirs creates the artwork and screenshots subdirectories for a folder.
func (c *Cache) EnsureDirs(folder string) error {
	dir := filepath.Join(c.libraryRoot, folder, "artwork", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artwork dirs for %s: %w", folder, err)
	}
	return nil
}

// MirrorPoster downloads a cover image to <folder>/artwork/poster.jpg.
func (c *Cache) MirrorPoster(ctx context.Context, folder, imageURL string) FetchResult {
	if imageURL == "" {
		return skipped("no cover image url")
	}
	local := filepath.Join(c.libraryRoot, folder, "artwork", "poster.jpg")
	if err := c.download(ctx, imageURL, local); err != nil {
		return skipped(err.Error())
	}
	return fetched(fmt.Sprintf("/gamelibrary/%s/artwork/poster.jpg", url.PathEscape(folder)))
}

// MirrorScreenshot downloads one screenshot to
// <folder>/artwork/screenshots/<n>.jpg. Each screenshot is independent; a
// failure skips only this one.
func (c *Cache) MirrorScreenshot(ctx context.Context, folder, imageURL string, n int) FetchResult {
	if imageURL == "" {
		return skipped("no screenshot url")
	}
	filename := fmt.Sprintf("%d.jpg", n)
	local := filepath.Join(c.libraryRoot, folder, "artwork", "screenshots", filename)
	if err := c.download(ctx, imageURL, local); err != nil {
		return skipped(err.Error())
	}
	return fetched(fmt.Sprintf("/gamelibrary/%s/artwork/screenshots/%s", url.PathEscape(folder), filename))
}

func (c *Cache) download(ctx context.Context, imageURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: HTTP %d", imageURL, resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(dest)
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
