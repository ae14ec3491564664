package preview

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/openrl/rlmaps-downloader/internal/http"
	ioutils "github.com/openrl/rlmaps-downloader/internal/io"
	"github.com/openrl/rlmaps-downloader/internal/model"
)

// maxConcurrentFetches bounds how many preview downloads run at once.
const maxConcurrentFetches = 4

// imageExtensions are probed in order when inferring a cache file
// extension from a preview URL.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".gif"}

// Cache stores preview images on disk, one file per catalog id, and
// reports completed fetches back into the result store.
//
// Fetches are deduplicated per destination path and bounded by a
// weighted semaphore, so a burst of enrichment dispatches cannot
// dogpile one URL or exhaust sockets. Completions carry the search
// generation they belong to; the store drops stale ones silently.
type Cache struct {
	http  *http.Client
	store *model.Store
	dir   string

	group singleflight.Group
	sem   *semaphore.Weighted

	onProgress model.ProgressFunc
}

// NewCache creates a preview cache rooted at dir.
func NewCache(httpClient *http.Client, store *model.Store, dir string, onProgress model.ProgressFunc) *Cache {
	return &Cache{
		http:       httpClient,
		store:      store,
		dir:        dir,
		sem:        semaphore.NewWeighted(maxConcurrentFetches),
		onProgress: onProgress,
	}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// PathFor returns the cache file path for a catalog id, with the
// extension inferred from the preview URL.
func (c *Cache) PathFor(id, url string) string {
	return filepath.Join(c.dir, id+ExtFromURL(url))
}

// ExtFromURL infers an image file extension by substring match on the
// URL, defaulting to ".png" when nothing matches.
func ExtFromURL(url string) string {
	lower := strings.ToLower(url)
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return ext
		}
	}
	return ".png"
}

// EnsureCached makes the preview for one result available at dest and
// records the path in the store.
//
// An empty url is a no-op. If dest already exists no network request
// is made. Otherwise the bytes are fetched and written, then the store
// is updated; a stale generation makes the update a silent no-op. On
// fetch failure the result's downloading flag is cleared without
// setting a path, so the preview renders as not available rather than
// as an error.
//
// EnsureCached is safe to call from multiple goroutines.
func (c *Cache) EnsureCached(ctx context.Context, url, dest string, index int, gen uint64) {
	if url == "" {
		return
	}

	if err := ioutils.EnsureDir(c.dir); err != nil {
		c.report(fmt.Sprintf("Error creating preview cache: %v", err), model.LevelWarning)
		c.store.ClearPreviewDownloading(gen, index)
		return
	}

	if _, err := os.Stat(dest); err == nil {
		c.store.SetImagePath(gen, index, dest)
		return
	}

	_, err, _ := c.group.Do(dest, func() (interface{}, error) {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer c.sem.Release(1)

		data, err := c.http.DownloadBytes(ctx, url)
		if err != nil {
			return nil, err
		}
		return nil, ioutils.WriteFile(ctx, dest, data)
	})

	if err != nil {
		if ctx.Err() == nil {
			c.report(fmt.Sprintf("Error fetching preview %s: %v", url, err), model.LevelWarning)
		}
		c.store.ClearPreviewDownloading(gen, index)
		return
	}

	c.store.SetImagePath(gen, index, dest)
}

func (c *Cache) report(message string, level model.ProgressLevel) {
	if c.onProgress != nil {
		c.onProgress(model.ProgressEvent{Message: message, Level: level})
	}
}
