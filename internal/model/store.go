package model

import (
	"errors"
	"sync"
)

// ErrStaleGeneration is returned by Store accessors when the caller's
// captured generation no longer matches the store's current one. The
// caller's work belongs to a finished search and must be dropped.
var ErrStaleGeneration = errors.New("stale search generation")

// ErrIndexOutOfRange is returned by Store accessors when an index is
// at or past the end of the current result sequence.
var ErrIndexOutOfRange = errors.New("result index out of range")

// Store holds the map results of the current search.
//
// Store is the one shared, mutable structure in the pipeline. All
// access goes through its methods, which take a single exclusive
// lock; the raw sequence is never handed out. Two counters coordinate
// the asynchronous parts:
//
//   - The version counter increases on every externally visible
//     mutation. UIs re-render when they observe a new version.
//   - The generation counter increases on every new search or
//     explicit cancellation. Asynchronous completions capture the
//     generation they were started under and every mutating method
//     re-validates it; a mismatch makes the call a silent no-op.
//
// The lock is never held across a network call: callers snapshot what
// they need (IdentityAt), perform the slow work, then write back
// through a generation-checked method.
type Store struct {
	mu         sync.Mutex
	results    []*MapResult
	totalFound int
	version    uint64
	generation uint64
}

// NewStore returns an empty Store at generation zero.
func NewStore() *Store {
	return &Store{}
}

// Reset starts a new generation: it bumps the generation counter,
// clears the result sequence and the total-found counter, and bumps
// the version. The new generation value is returned for callbacks to
// capture.
func (s *Store) Reset() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.results = nil
	s.totalFound = 0
	s.version++
	return s.generation
}

// Generation returns the current generation counter.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Version returns the current version counter.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Len returns the number of results in the current sequence.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

// TotalFound returns the catalog's total hit count for the current
// search, which can exceed Len when results span multiple pages.
func (s *Store) TotalFound() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalFound
}

// AppendResults appends one batch of freshly parsed results and
// records the total-found counter. The version is bumped once for the
// whole batch so observers see a single refresh. Returns false
// without mutating anything if gen is stale.
func (s *Store) AppendResults(gen uint64, results []*MapResult, totalFound int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	s.results = append(s.results, results...)
	s.totalFound = totalFound
	s.version++
	return true
}

// IdentityAt returns the id and name of the result at index. It is
// the snapshot step of the enrichment loop: the caller takes the
// identity under the lock, releases it, and performs the network call
// outside.
func (s *Store) IdentityAt(gen uint64, index int) (id, name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return "", "", ErrStaleGeneration
	}
	if index < 0 || index >= len(s.results) {
		return "", "", ErrIndexOutOfRange
	}
	r := s.results[index]
	return r.ID, r.Name, nil
}

// SetReleases writes the enrichment outcome for the result at index:
// its release list, the chosen preview URL, and the display size.
// Besides the generation, the catalog id is re-checked so that a
// concurrent clear-and-repopulate aliasing the same index to a
// different entry cannot be corrupted. Returns false if nothing was
// written.
func (s *Store) SetReleases(gen uint64, index int, id string, releases []Release, previewURL, size string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || index < 0 || index >= len(s.results) {
		return false
	}
	r := s.results[index]
	if r.ID != id {
		return false
	}
	r.Releases = releases
	r.PreviewURL = previewURL
	r.Size = size
	s.version++
	return true
}

// SetPreviewDownloading flags the result at index as having a preview
// fetch in flight. Returns false if gen is stale or index is out of
// range.
func (s *Store) SetPreviewDownloading(gen uint64, index int, downloading bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || index < 0 || index >= len(s.results) {
		return false
	}
	s.results[index].PreviewDownloading = downloading
	s.version++
	return true
}

// SetImagePath records the local preview image path for the result at
// index and clears its downloading flag. Returns false if gen is
// stale or index is out of range.
func (s *Store) SetImagePath(gen uint64, index int, path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || index < 0 || index >= len(s.results) {
		return false
	}
	r := s.results[index]
	r.ImagePath = path
	r.PreviewLoaded = true
	r.PreviewDownloading = false
	s.version++
	return true
}

// ClearPreviewDownloading drops the downloading flag without setting
// an image path. Used when a preview fetch fails; a missing path
// renders as "not available" rather than as an error.
func (s *Store) ClearPreviewDownloading(gen uint64, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || index < 0 || index >= len(s.results) {
		return false
	}
	s.results[index].PreviewDownloading = false
	s.version++
	return true
}

// Snapshot returns a copy of the current results for rendering.
// Mutating the returned slice has no effect on the store.
func (s *Store) Snapshot() []MapResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MapResult, len(s.results))
	for i, r := range s.results {
		out[i] = *r
	}
	return out
}

// At returns a copy of the result at index and whether it exists.
func (s *Store) At(index int) (MapResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.results) {
		return MapResult{}, false
	}
	return *s.results[index], true
}
