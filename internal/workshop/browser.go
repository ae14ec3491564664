package workshop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/openrl/rlmaps-downloader/internal/http"
	"github.com/openrl/rlmaps-downloader/internal/model"
)

// ErrSessionActive is returned by StartSearch while another search
// session is in progress.
var ErrSessionActive = errors.New("search already in progress")

// Catalog is the slice of the catalog API the browser consumes.
type Catalog interface {
	Search(ctx context.Context, keyword string, page int) ([]*model.MapResult, int, error)
	Releases(ctx context.Context, id string) ([]model.Release, error)
}

// PreviewFetcher caches preview images and writes completions back
// into the result store.
type PreviewFetcher interface {
	PathFor(id, url string) string
	EnsureCached(ctx context.Context, url, dest string, index int, gen uint64)
}

// Browser coordinates the search pipeline: one session at a time,
// a store seeded from the search response, and a sequential
// enrichment loop that fills in releases and dispatches preview
// fetches.
//
// The searching flag is the admission gate: StartSearch claims it
// with a compare-and-set, so a second search is rejected without
// taking any lock. All other session transitions (stop, replace,
// natural end) are serialized by mu and validated against the store
// generation, so a worker that lost its session can never clear the
// flag out from under a newer one.
type Browser struct {
	catalog  Catalog
	previews PreviewFetcher
	store    *model.Store

	searching atomic.Bool
	stopFlag  atomic.Bool

	mu     sync.Mutex // guards cancel and session transitions
	cancel context.CancelFunc
	wg     sync.WaitGroup

	errMu     sync.Mutex
	lastError string

	onProgress model.ProgressFunc
}

// NewBrowser creates a Browser over the given store. onProgress may
// be nil.
func NewBrowser(catalog Catalog, previews PreviewFetcher, store *model.Store, onProgress model.ProgressFunc) *Browser {
	return &Browser{
		catalog:    catalog,
		previews:   previews,
		store:      store,
		onProgress: onProgress,
	}
}

// Store returns the result store the browser writes into.
func (b *Browser) Store() *model.Store {
	return b.store
}

// Searching reports whether a search session is in progress.
func (b *Browser) Searching() bool {
	return b.searching.Load()
}

// LastError returns the most recent terminal search error message,
// or an empty string.
func (b *Browser) LastError() string {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	return b.lastError
}

// Wait blocks until the current session's background goroutine has
// exited. Preview fetches may still be in flight afterwards.
func (b *Browser) Wait() {
	b.wg.Wait()
}

// StartSearch begins a new search session for one keyword and page.
//
// If a session is already in progress the call is rejected with
// ErrSessionActive and the running session is untouched. Otherwise
// the previous worker is joined, the store is cleared under a fresh
// generation, and a background goroutine performs the catalog query
// and the enrichment chain.
func (b *Browser) StartSearch(keyword string, page int) error {
	if !b.searching.CompareAndSwap(false, true) {
		b.report("Search already in progress", model.LevelWarning)
		return ErrSessionActive
	}

	// Only the flag holder reaches this point, so the previous worker
	// can no longer be between Add and Done.
	b.wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	b.stopFlag.Store(false)
	b.errMu.Lock()
	b.lastError = ""
	b.errMu.Unlock()

	gen := b.store.Reset()

	b.report(fmt.Sprintf("Searching for %q (page %d)...", keyword, page), model.LevelInfo)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.runSearch(ctx, gen, keyword, page)
	}()

	return nil
}

// StopSearch cancels the session: stop flag, context cancellation,
// then a generation bump that empties the store and invalidates every
// in-flight callback. The worker goroutine is left to drain; its
// writes are all stale by the time it observes anything.
func (b *Browser) StopSearch() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopFlag.Store(true)
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.store.Reset()
	b.searching.Store(false)
}

// endSession clears the searching flag, but only if gen is still the
// store's current generation. A stop or a replacement search bumps
// the generation first, so a stale worker's terminal transition is a
// no-op here.
func (b *Browser) endSession(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.store.Generation() == gen {
		b.searching.Store(false)
	}
}

func (b *Browser) runSearch(ctx context.Context, gen uint64, keyword string, page int) {
	defer b.endSession(gen)

	results, total, err := b.catalog.Search(ctx, keyword, page)
	if err != nil {
		if ctx.Err() != nil || b.stopFlag.Load() {
			return
		}
		var httpErr *http.HTTPError
		if errors.As(err, &httpErr) {
			b.setLastError(fmt.Sprintf("Catalog request failed: %v", httpErr))
		} else {
			b.setLastError(fmt.Sprintf("Could not read catalog response: %v", err))
		}
		return
	}

	if !b.store.AppendResults(gen, results, total) {
		return
	}
	b.report(fmt.Sprintf("Found %d maps on this page (%d total)", len(results), total), model.LevelInfo)

	b.enrichLoop(ctx, gen)
}

// enrichLoop walks the store in index order, fetching each result's
// release list. One release request is in flight at a time; a failed
// item is reported and skipped, not fatal. Preview fetches are
// dispatched fire-and-forget and overlap the next iteration.
func (b *Browser) enrichLoop(ctx context.Context, gen uint64) {
	for index := 0; ; index++ {
		if ctx.Err() != nil || b.stopFlag.Load() {
			return
		}

		id, name, err := b.store.IdentityAt(gen, index)
		if errors.Is(err, model.ErrIndexOutOfRange) {
			b.report("Map details loaded", model.LevelVerbose)
			return
		}
		if err != nil {
			return
		}

		releases, err := b.catalog.Releases(ctx, id)
		if err != nil {
			if ctx.Err() != nil || b.stopFlag.Load() {
				return
			}
			b.report(fmt.Sprintf("Error fetching releases for %s: %v", name, err), model.LevelWarning)
			continue
		}

		previewURL := ""
		for _, release := range releases {
			if release.PictureURL != "" {
				previewURL = release.PictureURL
				break
			}
		}

		if !b.store.SetReleases(gen, index, id, releases, previewURL, model.SizeUnknown) {
			return
		}

		if previewURL == "" {
			continue
		}

		dest := b.previews.PathFor(id, previewURL)
		if _, statErr := os.Stat(dest); statErr == nil {
			b.store.SetImagePath(gen, index, dest)
			continue
		}
		if b.store.SetPreviewDownloading(gen, index, true) {
			go b.previews.EnsureCached(ctx, previewURL, dest, index, gen)
		}
	}
}

func (b *Browser) setLastError(message string) {
	b.errMu.Lock()
	b.lastError = message
	b.errMu.Unlock()
	b.report(message, model.LevelError)
}

func (b *Browser) report(message string, level model.ProgressLevel) {
	if b.onProgress != nil {
		b.onProgress(model.ProgressEvent{Message: message, Level: level})
	}
}
