// Package model defines the core data structures shared by the
// workshop pipeline: search results, releases, the result store, and
// the download state machine.
//
// # MapResult and Release
//
// MapResult is one catalog search hit. It starts bare and is enriched
// in place as the pipeline learns more about it:
//
//	result := &model.MapResult{ID: "42", Name: "Aerial Drill"}
//	// ...enrichment fills Releases, PreviewURL, ImagePath later
//
// Release is one downloadable version of a map and is immutable once
// built from a catalog response.
//
// # Store
//
// Store owns the result sequence for the current search. All reads
// and writes go through generation-checked, lock-guarded methods:
//
//	store := model.NewStore()
//	gen := store.Reset()
//	store.AppendResults(gen, results, totalFound)
//
//	// Later, from an asynchronous completion:
//	if !store.SetImagePath(gen, index, path) {
//	    // a newer search started; the write was dropped
//	}
//
// Observers watch Version to know when to re-render:
//
//	if v := store.Version(); v != lastSeen {
//	    render(store.Snapshot())
//	    lastSeen = v
//	}
//
// # DownloadState
//
// DownloadState tracks a download job through directory creation,
// transfer, extraction, payload polling and renaming, with distinct
// terminal failure states for folder, network and timeout errors.
package model
