package library

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/openrl/rlmaps-downloader/internal/model"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// maxConcurrentFolderScans bounds how many map folders are read at once.
const maxConcurrentFolderScans = 8

// payloadExtensions are the file extensions treated as installed map
// payloads. The install pipeline produces .upk files; .udk files are
// archives that were extracted but never renamed.
var payloadExtensions = []string{".upk", ".udk"}

// previewExtensions are probed, in order, when looking for a preview
// image next to a payload.
var previewExtensions = []string{".jfif", ".jpg", ".jpeg", ".png", ".gif", ".webp"}

// sidecarFieldPattern recovers the known metadata fields from sidecar
// files that no longer parse as strict JSON (older builds sometimes
// left trailing bytes after the closing brace).
var sidecarFieldPattern = regexp.MustCompile(`"(Title|Author|Description|PreviewUrl)"\s*:\s*"([^"]*)"`)

// Entry is one installed map discovered in the maps folder.
//
// Title, Author, Description and PreviewURL come from the JSON sidecar
// written at install time; when no sidecar exists the payload file
// name (without extension) stands in as the title. ImagePath points at
// a preview image found next to the payload, or is empty.
type Entry struct {
	// Path is the absolute path of the payload file (.upk or .udk).
	Path string

	// Folder is the directory containing the payload.
	Folder string

	Title       string
	Author      string
	Description string
	PreviewURL  string

	// ImagePath is the preview image next to the payload, if any.
	ImagePath string

	// ModTime is the payload file's modification time.
	ModTime time.Time
}

// Scanner discovers installed maps on disk.
//
// A scan walks the maps folder one level deep: each subfolder is
// expected to hold one installed map (payload, sidecar, preview), and
// loose payload files directly in the maps folder are picked up too.
//
// Example:
//
//	scanner := NewScanner()
//	entries, err := scanner.Scan(ctx, settings.MapsFolderPath)
//	for _, entry := range entries {
//	    fmt.Printf("%s by %s\n", entry.Title, entry.Author)
//	}
type Scanner struct{}

// NewScanner creates a new Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan reads the maps folder and returns every installed map found.
//
// Subfolders are scanned concurrently. Entries are deduplicated by
// case-folded canonical path and sorted case-insensitively by title.
// A maps folder that does not exist yet yields an empty library, not
// an error. Unreadable subfolders and payloads are skipped.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Entry, error) {
	items, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading maps folder %s: %w", root, err)
	}

	var (
		mu      sync.Mutex
		entries []Entry
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFolderScans)

	for _, item := range items {
		item := item // capture
		path := filepath.Join(root, item.Name())

		if item.IsDir() {
			g.Go(func() error {
				found, err := scanFolder(ctx, path)
				if err != nil {
					return err
				}
				mu.Lock()
				entries = append(entries, found...)
				mu.Unlock()
				return nil
			})
			continue
		}

		if !isPayload(item.Name()) {
			continue
		}
		g.Go(func() error {
			entry, err := buildEntry(path)
			if err != nil {
				return nil
			}
			mu.Lock()
			entries = append(entries, entry)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortEntries(entries)
	return dedupe(entries), nil
}

// scanFolder collects the payload entries of one map folder. Folders
// that cannot be read yield no entries rather than failing the scan.
func scanFolder(ctx context.Context, folder string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items, err := os.ReadDir(folder)
	if err != nil {
		return nil, nil
	}

	var entries []Entry
	for _, item := range items {
		if item.IsDir() || !isPayload(item.Name()) {
			continue
		}
		entry, err := buildEntry(filepath.Join(folder, item.Name()))
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// buildEntry assembles the Entry for one payload file: stat, sidecar
// metadata, preview probe.
func buildEntry(path string) (Entry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, fmt.Errorf("reading payload %s: %w", filepath.Base(path), err)
	}

	entry := Entry{
		Path:    path,
		Folder:  filepath.Dir(path),
		Title:   payloadStem(path),
		ModTime: info.ModTime(),
	}

	if sidecar, ok := loadSidecar(path); ok {
		if sidecar.Title != "" {
			entry.Title = sidecar.Title
		}
		entry.Author = sidecar.Author
		entry.Description = sidecar.Description
		entry.PreviewURL = sidecar.PreviewURL
	}

	entry.ImagePath = probePreview(path)
	return entry, nil
}

// loadSidecar reads the metadata sidecar for a payload. The install
// pipeline names the sidecar after the map folder; a sidecar named
// after the payload itself is accepted as well.
func loadSidecar(payloadPath string) (model.Sidecar, bool) {
	dir := filepath.Dir(payloadPath)
	candidates := []string{
		filepath.Join(dir, filepath.Base(dir)+".json"),
		filepath.Join(dir, payloadStem(payloadPath)+".json"),
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		return parseSidecar(data), true
	}
	return model.Sidecar{}, false
}

// parseSidecar decodes sidecar bytes. Strict JSON is tried first; when
// that fails the known fields are recovered by pattern match so a
// damaged sidecar still contributes what it can.
func parseSidecar(data []byte) model.Sidecar {
	var sidecar model.Sidecar
	if err := json.Unmarshal(data, &sidecar); err != nil {
		sidecar = model.Sidecar{}
		for _, match := range sidecarFieldPattern.FindAllSubmatch(data, -1) {
			value := string(match[2])
			switch string(match[1]) {
			case "Title":
				if sidecar.Title == "" {
					sidecar.Title = value
				}
			case "Author":
				if sidecar.Author == "" {
					sidecar.Author = value
				}
			case "Description":
				if sidecar.Description == "" {
					sidecar.Description = value
				}
			case "PreviewUrl":
				if sidecar.PreviewURL == "" {
					sidecar.PreviewURL = value
				}
			}
		}
	}

	sidecar.Title = stripControl(sidecar.Title)
	sidecar.Author = stripControl(sidecar.Author)
	sidecar.Description = stripControl(sidecar.Description)
	sidecar.PreviewURL = stripControl(sidecar.PreviewURL)
	return sidecar
}

// probePreview looks for a preview image next to the payload, first
// under the payload's own name, then under the folder's name (the
// install pipeline copies previews under the folder name).
func probePreview(payloadPath string) string {
	dir := filepath.Dir(payloadPath)
	stems := []string{payloadStem(payloadPath), filepath.Base(dir)}

	for _, stem := range stems {
		for _, ext := range previewExtensions {
			candidate := filepath.Join(dir, stem+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}

// sortEntries orders entries case-insensitively by title, with the
// path as tiebreaker so the order is stable across scans.
func sortEntries(entries []Entry) {
	collator := collate.New(language.English, collate.IgnoreCase)
	sort.Slice(entries, func(a, b int) bool {
		if cmp := collator.CompareString(entries[a].Title, entries[b].Title); cmp != 0 {
			return cmp < 0
		}
		return entries[a].Path < entries[b].Path
	})
}

// dedupe drops entries whose case-folded canonical path was already
// seen, keeping the first occurrence in sorted order.
func dedupe(entries []Entry) []Entry {
	caser := cases.Fold()
	seen := make(map[string]struct{}, len(entries))

	out := entries[:0]
	for _, entry := range entries {
		key := caser.String(filepath.Clean(entry.Path))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, entry)
	}
	return out
}

func isPayload(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, payloadExt := range payloadExtensions {
		if ext == payloadExt {
			return true
		}
	}
	return false
}

// payloadStem returns the payload file name without its extension.
func payloadStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// stripControl removes control characters from sidecar strings so a
// damaged file cannot corrupt terminal output.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
