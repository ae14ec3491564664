package workshop

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/openrl/rlmaps-downloader/internal/http"
	"github.com/openrl/rlmaps-downloader/internal/model"
)

type row struct {
	id   string
	name string
}

// fakeCatalog serves canned search rows and release lists. Search can
// be gated so tests control when the response lands; the first
// Releases call can be gated so tests observe the store mid-chain.
type fakeCatalog struct {
	rows       []row
	total      int
	searchErr  error
	searchGate chan struct{}

	releases   map[string][]model.Release
	releaseErr map[string]error

	firstReleaseStarted chan struct{}
	firstReleaseProceed chan struct{}
	firstRelease        sync.Once

	mu           sync.Mutex
	searchCalls  int
	releaseCalls []string
}

func (f *fakeCatalog) Search(ctx context.Context, keyword string, page int) ([]*model.MapResult, int, error) {
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()

	if f.searchGate != nil {
		<-f.searchGate
	}
	if f.searchErr != nil {
		return nil, 0, f.searchErr
	}

	results := make([]*model.MapResult, 0, len(f.rows))
	for _, r := range f.rows {
		results = append(results, &model.MapResult{ID: r.id, Name: r.name})
	}
	total := f.total
	if total == 0 {
		total = len(results)
	}
	return results, total, nil
}

func (f *fakeCatalog) Releases(ctx context.Context, id string) ([]model.Release, error) {
	f.mu.Lock()
	f.releaseCalls = append(f.releaseCalls, id)
	f.mu.Unlock()

	if f.firstReleaseStarted != nil {
		f.firstRelease.Do(func() {
			close(f.firstReleaseStarted)
			<-f.firstReleaseProceed
		})
	}

	if err := f.releaseErr[id]; err != nil {
		return nil, err
	}
	return f.releases[id], nil
}

func (f *fakeCatalog) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.releaseCalls...)
}

// fakeFetcher records preview dispatches without touching the store.
type fakeFetcher struct {
	dir    string
	notify chan string

	mu         sync.Mutex
	dispatched []string
}

func (f *fakeFetcher) PathFor(id, url string) string {
	return filepath.Join(f.dir, id+".png")
}

func (f *fakeFetcher) EnsureCached(ctx context.Context, url, dest string, index int, gen uint64) {
	f.mu.Lock()
	f.dispatched = append(f.dispatched, url)
	f.mu.Unlock()
	if f.notify != nil {
		f.notify <- url
	}
}

func (f *fakeFetcher) dispatches() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.dispatched...)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []model.ProgressEvent
}

func (r *eventRecorder) record(e model.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) messagesAt(level model.ProgressLevel) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var msgs []string
	for _, e := range r.events {
		if e.Level == level {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

func newTestBrowser(t *testing.T, catalog *fakeCatalog) (*Browser, *model.Store, *fakeFetcher, *eventRecorder) {
	t.Helper()
	store := model.NewStore()
	fetcher := &fakeFetcher{dir: t.TempDir()}
	recorder := &eventRecorder{}
	browser := NewBrowser(catalog, fetcher, store, recorder.record)
	return browser, store, fetcher, recorder
}

func TestBrowser_Search_SeedsStoreThenEnriches(t *testing.T) {
	catalog := &fakeCatalog{
		rows: []row{{"1", "Flip Reset Pack"}, {"2", "Aerial Drill"}},
		releases: map[string][]model.Release{
			"1": {{Name: "Release 1", Tag: "v1", DownloadURL: "https://cdn.example/1.zip"}},
			"2": {},
		},
		firstReleaseStarted: make(chan struct{}),
		firstReleaseProceed: make(chan struct{}),
	}
	browser, store, _, _ := newTestBrowser(t, catalog)

	if err := browser.StartSearch("flip", 1); err != nil {
		t.Fatalf("StartSearch failed: %v", err)
	}

	// The chain is now blocked inside the first Releases call, so the
	// store holds exactly the seeded, not yet enriched results.
	<-catalog.firstReleaseStarted

	snapshot := store.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("seeded %d results, want 2", len(snapshot))
	}
	if snapshot[0].Name != "Flip Reset Pack" || snapshot[1].Name != "Aerial Drill" {
		t.Errorf("order = %q, %q", snapshot[0].Name, snapshot[1].Name)
	}
	if len(snapshot[0].Releases) != 0 || len(snapshot[1].Releases) != 0 {
		t.Error("releases should be empty before enrichment")
	}
	if store.TotalFound() != 2 {
		t.Errorf("TotalFound = %d, want 2", store.TotalFound())
	}
	if !browser.Searching() {
		t.Error("Searching should be true while the chain runs")
	}

	close(catalog.firstReleaseProceed)
	browser.Wait()

	if browser.Searching() {
		t.Error("Searching should be false after the chain completes")
	}

	enriched := store.Snapshot()
	if len(enriched[0].Releases) != 1 {
		t.Errorf("first result has %d releases, want 1", len(enriched[0].Releases))
	}
	if enriched[0].Size != model.SizeUnknown {
		t.Errorf("Size = %q, want %q", enriched[0].Size, model.SizeUnknown)
	}
	if got := catalog.calls(); len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Errorf("release calls = %v, want [1 2]", got)
	}
}

func TestBrowser_StartSearch_RejectsSecondSession(t *testing.T) {
	catalog := &fakeCatalog{
		rows:       []row{{"1", "Flip Reset Pack"}},
		searchGate: make(chan struct{}),
	}
	browser, store, _, recorder := newTestBrowser(t, catalog)

	if err := browser.StartSearch("flip", 1); err != nil {
		t.Fatalf("StartSearch failed: %v", err)
	}
	genBefore := store.Generation()

	err := browser.StartSearch("aerial", 1)
	if !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second StartSearch error = %v, want ErrSessionActive", err)
	}
	if store.Generation() != genBefore {
		t.Error("rejected search must leave the running session's generation unchanged")
	}

	close(catalog.searchGate)
	browser.Wait()

	if got := catalog.searchCalls; got != 1 {
		t.Errorf("search calls = %d, want 1", got)
	}
	if store.Len() != 1 {
		t.Errorf("store length = %d, want 1", store.Len())
	}
	if msgs := recorder.messagesAt(model.LevelWarning); len(msgs) == 0 {
		t.Error("rejection should be reported")
	}
}

func TestBrowser_Enrichment_PartialFailureContinues(t *testing.T) {
	catalog := &fakeCatalog{
		rows: []row{{"1", "Flip Reset Pack"}, {"2", "Aerial Drill"}, {"3", "Rings"}},
		releases: map[string][]model.Release{
			"1": {{Name: "One", Tag: "v1"}},
			"3": {{Name: "Three", Tag: "v3"}},
		},
		releaseErr: map[string]error{
			"2": errors.New("boom"),
		},
	}
	browser, store, _, recorder := newTestBrowser(t, catalog)

	if err := browser.StartSearch("drill", 1); err != nil {
		t.Fatalf("StartSearch failed: %v", err)
	}
	browser.Wait()

	if got := catalog.calls(); len(got) != 3 || got[0] != "1" || got[1] != "2" || got[2] != "3" {
		t.Errorf("release calls = %v, want strictly ordered [1 2 3]", got)
	}

	snapshot := store.Snapshot()
	if len(snapshot[0].Releases) != 1 || len(snapshot[2].Releases) != 1 {
		t.Error("items around the failed one should still be enriched")
	}
	if len(snapshot[1].Releases) != 0 || snapshot[1].Size != "" {
		t.Error("failed item should stay bare")
	}
	if msgs := recorder.messagesAt(model.LevelWarning); len(msgs) != 1 {
		t.Errorf("warnings = %v, want exactly one", msgs)
	}
	if browser.Searching() {
		t.Error("chain must terminate despite the failure")
	}
}

func TestBrowser_StopSearch_SuppressesLateResponse(t *testing.T) {
	catalog := &fakeCatalog{
		rows:       []row{{"1", "Flip Reset Pack"}},
		searchGate: make(chan struct{}),
	}
	browser, store, _, recorder := newTestBrowser(t, catalog)

	if err := browser.StartSearch("flip", 1); err != nil {
		t.Fatalf("StartSearch failed: %v", err)
	}

	browser.StopSearch()
	if browser.Searching() {
		t.Error("Searching should be false immediately after StopSearch")
	}

	// The catalog response lands only now, against a dead generation.
	close(catalog.searchGate)
	browser.Wait()

	if store.Len() != 0 {
		t.Errorf("store length = %d, want 0 after stop", store.Len())
	}
	if msgs := recorder.messagesAt(model.LevelError); len(msgs) != 0 {
		t.Errorf("stopped session must not report errors, got %v", msgs)
	}

	// The browser accepts a fresh session afterwards.
	if err := browser.StartSearch("flip", 1); err != nil {
		t.Fatalf("StartSearch after stop failed: %v", err)
	}
	browser.Wait()
	if store.Len() != 1 {
		t.Errorf("store length = %d, want 1 from the new session", store.Len())
	}
}

func TestBrowser_SearchTransportError(t *testing.T) {
	catalog := &fakeCatalog{
		searchErr: &http.HTTPError{StatusCode: 500, URL: "https://catalog/projects/", Message: "Internal Server Error"},
	}
	browser, store, _, recorder := newTestBrowser(t, catalog)

	if err := browser.StartSearch("flip", 1); err != nil {
		t.Fatalf("StartSearch failed: %v", err)
	}
	browser.Wait()

	if browser.Searching() {
		t.Error("Searching should be false after a terminal search error")
	}
	if store.Len() != 0 {
		t.Errorf("store length = %d, want 0", store.Len())
	}

	lastError := browser.LastError()
	if !strings.Contains(lastError, "Catalog request failed") {
		t.Errorf("LastError = %q, want catalog request failure", lastError)
	}
	if msgs := recorder.messagesAt(model.LevelError); len(msgs) != 1 {
		t.Errorf("error events = %v, want exactly one", msgs)
	}
}

func TestBrowser_SearchParseError(t *testing.T) {
	catalog := &fakeCatalog{
		searchErr: fmt.Errorf("parsing search response: %w", errors.New("unexpected end of JSON input")),
	}
	browser, _, _, _ := newTestBrowser(t, catalog)

	if err := browser.StartSearch("flip", 1); err != nil {
		t.Fatalf("StartSearch failed: %v", err)
	}
	browser.Wait()

	lastError := browser.LastError()
	if !strings.Contains(lastError, "Could not read catalog response") {
		t.Errorf("LastError = %q, want parse failure message", lastError)
	}
}

func TestBrowser_Enrichment_DispatchesPreviewFetch(t *testing.T) {
	pictureURL := "https://cdn.example/cover.png"
	catalog := &fakeCatalog{
		rows: []row{{"42", "Rings"}},
		releases: map[string][]model.Release{
			"42": {{Name: "One", Tag: "v1", PictureURL: pictureURL, DownloadURL: "https://cdn.example/rings.zip"}},
		},
	}
	browser, store, fetcher, _ := newTestBrowser(t, catalog)
	fetcher.notify = make(chan string)

	if err := browser.StartSearch("rings", 1); err != nil {
		t.Fatalf("StartSearch failed: %v", err)
	}

	if got := <-fetcher.notify; got != pictureURL {
		t.Errorf("dispatched url = %q, want %q", got, pictureURL)
	}
	browser.Wait()

	result, _ := store.At(0)
	if result.PreviewURL != pictureURL {
		t.Errorf("PreviewURL = %q, want %q", result.PreviewURL, pictureURL)
	}
	if !result.PreviewDownloading {
		t.Error("PreviewDownloading should be set before the fetch is dispatched")
	}
}

func TestBrowser_Enrichment_PreviewDiskHitSkipsDispatch(t *testing.T) {
	pictureURL := "https://cdn.example/cover.png"
	catalog := &fakeCatalog{
		rows: []row{{"42", "Rings"}},
		releases: map[string][]model.Release{
			"42": {{Name: "One", Tag: "v1", PictureURL: pictureURL}},
		},
	}
	browser, store, fetcher, _ := newTestBrowser(t, catalog)

	cached := fetcher.PathFor("42", pictureURL)
	if err := os.WriteFile(cached, []byte("cached"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := browser.StartSearch("rings", 1); err != nil {
		t.Fatalf("StartSearch failed: %v", err)
	}
	browser.Wait()

	result, _ := store.At(0)
	if result.ImagePath != cached {
		t.Errorf("ImagePath = %q, want %q", result.ImagePath, cached)
	}
	if !result.PreviewLoaded {
		t.Error("PreviewLoaded should be true for a disk hit")
	}
	if result.PreviewDownloading {
		t.Error("PreviewDownloading should stay false for a disk hit")
	}
	if got := fetcher.dispatches(); len(got) != 0 {
		t.Errorf("dispatches = %v, want none", got)
	}
}
