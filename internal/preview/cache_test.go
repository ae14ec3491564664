package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	internalhttp "github.com/openrl/rlmaps-downloader/internal/http"
	"github.com/openrl/rlmaps-downloader/internal/model"
)

func TestExtFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://cdn.example/cover.png", ".png"},
		{"https://cdn.example/cover.jpg", ".jpg"},
		{"https://cdn.example/cover.jpeg", ".jpeg"},
		{"https://cdn.example/cover.webp", ".webp"},
		{"https://cdn.example/anim.gif", ".gif"},
		{"https://cdn.example/cover.JPG?w=640", ".jpg"},
		{"https://cdn.example/blob/42", ".png"},
		{"", ".png"},
	}

	for _, tt := range tests {
		if got := ExtFromURL(tt.url); got != tt.want {
			t.Errorf("ExtFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

// seedStore returns a store holding one bare result awaiting its preview.
func seedStore(t *testing.T) (*model.Store, uint64) {
	t.Helper()
	store := model.NewStore()
	gen := store.Reset()
	store.AppendResults(gen, []*model.MapResult{{ID: "412", Name: "Rings"}}, 1)
	store.SetPreviewDownloading(gen, 0, true)
	return store, gen
}

func newTestCache(store *model.Store, dir string, onProgress model.ProgressFunc) *Cache {
	return NewCache(internalhttp.NewClient(5*time.Second, 0), store, dir, onProgress)
}

func TestCache_EnsureCached(t *testing.T) {
	imageBytes := []byte("png bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(imageBytes)
	}))
	defer server.Close()

	store, gen := seedStore(t)
	dir := t.TempDir()
	cache := newTestCache(store, dir, nil)

	url := server.URL + "/cover.png"
	dest := cache.PathFor("412", url)
	if want := filepath.Join(dir, "412.png"); dest != want {
		t.Errorf("PathFor = %q, want %q", dest, want)
	}

	cache.EnsureCached(context.Background(), url, dest, 0, gen)

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
	if string(data) != string(imageBytes) {
		t.Errorf("cache file content = %q, want %q", data, imageBytes)
	}

	result, ok := store.At(0)
	if !ok {
		t.Fatal("result missing from store")
	}
	if result.ImagePath != dest {
		t.Errorf("ImagePath = %q, want %q", result.ImagePath, dest)
	}
	if !result.PreviewLoaded {
		t.Error("PreviewLoaded should be true")
	}
	if result.PreviewDownloading {
		t.Error("PreviewDownloading should be cleared")
	}
}

func TestCache_EnsureCached_DiskHit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network request expected when cache file exists")
	}))
	defer server.Close()

	store, gen := seedStore(t)
	dir := t.TempDir()
	cache := newTestCache(store, dir, nil)

	url := server.URL + "/cover.png"
	dest := cache.PathFor("412", url)
	if err := os.WriteFile(dest, []byte("cached"), 0644); err != nil {
		t.Fatal(err)
	}

	cache.EnsureCached(context.Background(), url, dest, 0, gen)

	result, _ := store.At(0)
	if result.ImagePath != dest {
		t.Errorf("ImagePath = %q, want %q", result.ImagePath, dest)
	}
}

func TestCache_EnsureCached_StaleGeneration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late bytes"))
	}))
	defer server.Close()

	store, gen := seedStore(t)
	cache := newTestCache(store, t.TempDir(), nil)

	// A new search invalidates the generation before the fetch lands.
	store.Reset()
	versionBefore := store.Version()

	url := server.URL + "/cover.png"
	cache.EnsureCached(context.Background(), url, cache.PathFor("412", url), 0, gen)

	if store.Version() != versionBefore {
		t.Error("stale completion must not mutate the store")
	}
	if store.Len() != 0 {
		t.Errorf("store length = %d, want 0", store.Len())
	}
}

func TestCache_EnsureCached_FetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	var events []model.ProgressEvent
	store, gen := seedStore(t)
	cache := newTestCache(store, t.TempDir(), func(e model.ProgressEvent) {
		events = append(events, e)
	})

	url := server.URL + "/cover.png"
	dest := cache.PathFor("412", url)
	cache.EnsureCached(context.Background(), url, dest, 0, gen)

	result, _ := store.At(0)
	if result.PreviewDownloading {
		t.Error("PreviewDownloading should be cleared after failure")
	}
	if result.ImagePath != "" {
		t.Errorf("ImagePath = %q, want empty after failure", result.ImagePath)
	}
	if result.PreviewLoaded {
		t.Error("PreviewLoaded should stay false after failure")
	}

	if len(events) != 1 || events[0].Level != model.LevelWarning {
		t.Errorf("events = %+v, want one warning", events)
	}
}

func TestCache_EnsureCached_EmptyURL(t *testing.T) {
	store, gen := seedStore(t)
	cache := newTestCache(store, t.TempDir(), func(e model.ProgressEvent) {
		t.Errorf("unexpected event: %+v", e)
	})

	versionBefore := store.Version()
	cache.EnsureCached(context.Background(), "", "", 0, gen)

	if store.Version() != versionBefore {
		t.Error("empty URL must be a no-op")
	}
}
