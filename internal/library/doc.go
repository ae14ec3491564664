// Package library discovers maps already installed in the maps folder.
//
// # Scanning
//
// A scan walks the configured maps folder one level deep and returns
// one Entry per payload file (.upk or .udk) it finds:
//
//	scanner := library.NewScanner()
//	entries, err := scanner.Scan(ctx, settings.MapsFolderPath)
//
// Subfolders are read concurrently. Results are deduplicated by
// case-folded path and sorted case-insensitively by title.
//
// # Sidecar Metadata
//
// The install pipeline writes a JSON sidecar next to each payload with
// the map's title, author, description and preview URL. The scanner
// reads it back with a strict JSON decode first and falls back to a
// field-by-field pattern match for sidecars with trailing bytes from
// older builds. Control characters are stripped from every loaded
// string. Without a sidecar, the payload file name serves as the
// title.
//
// # Preview Images
//
// For each payload the scanner probes sibling files named after the
// payload or after its folder across the usual image extensions and
// records the first match as the entry's preview image.
package library
