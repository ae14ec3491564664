package rlmaps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	internalhttp "github.com/openrl/rlmaps-downloader/internal/http"
)

const searchBody = `[
	{"id": 1, "name": "Flip Reset Pack", "description": "<p>Practice <b>flip resets</b></p>", "namespace": {"path": "dmc"}},
	{"id": 2, "name": "Aerial Drill", "description": "", "namespace": {"path": "lethamyr"}},
	{"id": 3, "name": "", "description": "nameless entry"}
]`

const releasesBody = `[
	{
		"name": "Version 2",
		"tag_name": "v2",
		"description": "collision fixes",
		"assets": {"links": [
			{"name": "notes.txt", "url": "https://cdn.example/notes.txt"},
			{"name": "cover.png", "url": "https://cdn.example/cover.png"},
			{"name": "extra.jpg", "url": "https://cdn.example/extra.jpg"},
			{"name": "Flip:Reset.zip", "url": "https://cdn.example/flip.zip"},
			{"name": "older.zip", "url": "https://cdn.example/older.zip"}
		]}
	},
	{
		"name": "Version 1",
		"tag_name": "v1",
		"description": "",
		"assets": {"links": []}
	}
]`

func newTestCatalog(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	client := NewClient(internalhttp.NewClient(5*time.Second, 0), server.URL)
	return client, server.Close
}

func TestClient_Search(t *testing.T) {
	client, closeServer := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/projects/")
		}
		if got := r.URL.Query().Get("search"); got != "flip reset" {
			t.Errorf("search = %q, want %q", got, "flip reset")
		}
		if got := r.URL.Query().Get("page"); got != "1" {
			t.Errorf("page = %q, want %q", got, "1")
		}
		w.Header().Set("X-Total", "37")
		w.Write([]byte(searchBody))
	})
	defer closeServer()

	results, total, err := client.Search(context.Background(), "flip reset", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if total != 37 {
		t.Errorf("total = %d, want 37", total)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (nameless entry skipped)", len(results))
	}

	first := results[0]
	if first.ID != "1" {
		t.Errorf("ID = %q, want %q", first.ID, "1")
	}
	if first.Name != "Flip Reset Pack" {
		t.Errorf("Name = %q, want %q", first.Name, "Flip Reset Pack")
	}
	if first.Author != "dmc" {
		t.Errorf("Author = %q, want %q", first.Author, "dmc")
	}
	if first.Description != "Practice flip resets" {
		t.Errorf("Description = %q, want HTML stripped", first.Description)
	}
	if len(first.Releases) != 0 {
		t.Errorf("Releases should be empty before enrichment, got %d", len(first.Releases))
	}

	if results[1].Name != "Aerial Drill" {
		t.Errorf("second result = %q, want %q", results[1].Name, "Aerial Drill")
	}
}

func TestClient_Search_TotalFallback(t *testing.T) {
	client, closeServer := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchBody))
	})
	defer closeServer()

	_, total, err := client.Search(context.Background(), "flip", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want page item count 3 when X-Total is absent", total)
	}
}

func TestClient_Search_TransportError(t *testing.T) {
	client, closeServer := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	defer closeServer()

	_, _, err := client.Search(context.Background(), "flip", 1)
	var httpErr *internalhttp.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", httpErr.StatusCode)
	}
}

func TestClient_Search_ParseError(t *testing.T) {
	client, closeServer := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"`))
	})
	defer closeServer()

	_, _, err := client.Search(context.Background(), "flip", 1)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parsing search response") {
		t.Errorf("error = %v, want parse error", err)
	}
	var httpErr *internalhttp.HTTPError
	if errors.As(err, &httpErr) {
		t.Error("parse error should not be an *HTTPError")
	}
}

func TestClient_Project(t *testing.T) {
	client, closeServer := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/412" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/projects/412")
		}
		w.Write([]byte(`{"id":412,"name":"Flip Reset Pack","description":"<p>practice</p>","namespace":{"path":"dmc"}}`))
	})
	defer closeServer()

	result, err := client.Project(context.Background(), "412")
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if result.ID != "412" {
		t.Errorf("ID = %q, want %q", result.ID, "412")
	}
	if result.Name != "Flip Reset Pack" {
		t.Errorf("Name = %q, want %q", result.Name, "Flip Reset Pack")
	}
	if result.Description != "practice" {
		t.Errorf("Description = %q, want flattened HTML", result.Description)
	}
	if result.Author != "dmc" {
		t.Errorf("Author = %q, want %q", result.Author, "dmc")
	}
}

func TestClient_Project_NotUsable(t *testing.T) {
	client, closeServer := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"404 Project Not Found"}`))
	})
	defer closeServer()

	_, err := client.Project(context.Background(), "9999")
	if err == nil {
		t.Fatal("expected error for a project without id and name")
	}
}

func TestClient_Releases(t *testing.T) {
	client, closeServer := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/412/releases" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/projects/412/releases")
		}
		w.Write([]byte(releasesBody))
	})
	defer closeServer()

	releases, err := client.Releases(context.Background(), "412")
	if err != nil {
		t.Fatalf("Releases failed: %v", err)
	}
	if len(releases) != 2 {
		t.Fatalf("got %d releases, want 2", len(releases))
	}

	latest := releases[0]
	if latest.Tag != "v2" {
		t.Errorf("Tag = %q, want %q", latest.Tag, "v2")
	}
	if latest.PictureURL != "https://cdn.example/cover.png" {
		t.Errorf("PictureURL = %q, want first image link", latest.PictureURL)
	}
	if latest.DownloadURL != "https://cdn.example/flip.zip" {
		t.Errorf("DownloadURL = %q, want first zip link", latest.DownloadURL)
	}
	if latest.FileName != "FlipReset.zip" {
		t.Errorf("FileName = %q, want sanitized %q", latest.FileName, "FlipReset.zip")
	}

	empty := releases[1]
	if empty.DownloadURL != "" || empty.PictureURL != "" {
		t.Errorf("release without links should have empty URLs, got %+v", empty)
	}
}

func TestClient_Releases_ParseError(t *testing.T) {
	client, closeServer := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>rate limited</html>`))
	})
	defer closeServer()

	_, err := client.Releases(context.Background(), "412")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parsing releases response") {
		t.Errorf("error = %v, want parse error", err)
	}
}
