package model

import (
	"regexp"
	"strings"
	"unicode"
)

// SizeUnknown is the display size used until a real size is known.
// The catalog's release listing carries no byte counts, so enriched
// results keep this placeholder.
const SizeUnknown = "?"

// MapResult represents one map entry discovered by a catalog search.
//
// A MapResult starts out bare (id, name, description, author) and is
// enriched in place by the detail chain: first with its Releases and
// preview URL, later with a local preview image path once the preview
// cache has a copy on disk.
//
// Results are identified by catalog id within one search generation
// and are only ever mutated through Store methods, never replaced, so
// an index captured early in the pipeline keeps pointing at the same
// entry for as long as the generation is current.
type MapResult struct {
	// ID is the catalog id, unique within one search generation.
	ID string

	// Name is the display name of the map.
	Name string

	// Description is the HTML-stripped catalog description.
	Description string

	// Author is the publishing namespace of the catalog entry.
	Author string

	// PreviewURL is the remote preview picture link chosen during
	// enrichment. Empty until releases have been loaded.
	PreviewURL string

	// Releases lists the downloadable versions, newest first as
	// returned by the catalog. Empty until enrichment reaches this
	// entry.
	Releases []Release

	// ImagePath is the local path of the cached preview image.
	// Empty means no preview is available yet.
	ImagePath string

	// Size is a display string for the download size.
	Size string

	// PreviewDownloading is true while a preview fetch for this
	// entry is in flight.
	PreviewDownloading bool

	// PreviewLoaded is true once ImagePath points at a cached file.
	PreviewLoaded bool
}

// Release is one downloadable version of a MapResult.
//
// Releases are built wholesale from one catalog detail response and
// never modified afterwards.
type Release struct {
	// Name is the release title.
	Name string

	// Tag is the version tag.
	Tag string

	// Description is the release notes text as published.
	Description string

	// DownloadURL is the archive link, chosen as the first .zip
	// asset of the release.
	DownloadURL string

	// PictureURL is the preview picture link, chosen as the first
	// image asset of the release. May be empty.
	PictureURL string

	// FileName is the sanitized archive file name the download is
	// saved under.
	FileName string
}

// Sidecar is the metadata file written next to an installed map and
// read back when scanning the local library. Field names match the
// JSON keys used on disk.
type Sidecar struct {
	Title       string `json:"Title"`
	Author      string `json:"Author"`
	Description string `json:"Description"`
	PreviewURL  string `json:"PreviewUrl"`
}

// SanitizeMapFolderName converts a map name into a folder name:
// spaces become underscores and punctuation is dropped.
//
// Example:
//
//	SanitizeMapFolderName("Flip Reset Pack!") // "Flip_Reset_Pack"
func SanitizeMapFolderName(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, name)
}

// invalidFileChars matches characters that cannot appear in file
// names across platforms, including control characters.
var invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// SanitizeArchiveName strips filesystem-unsafe characters from an
// archive file name declared by the catalog.
//
// Example:
//
//	SanitizeArchiveName(`my:map/v1.zip`) // "mymapv1.zip"
func SanitizeArchiveName(name string) string {
	name = invalidFileChars.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
