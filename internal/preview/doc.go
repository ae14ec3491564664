// Package preview caches map preview images on disk.
//
// Previews are fetched at most once per cache path: the first check is
// the disk itself, concurrent fetches for the same path collapse into
// one request, and at most four downloads run at a time.
//
// # Usage
//
//	cache := preview.NewCache(httpClient, store, "/cache/previews", onProgress)
//
//	dest := cache.PathFor("412", pictureURL)
//	go cache.EnsureCached(ctx, pictureURL, dest, index, gen)
//
// Completions write back into the result store under its lock. Each
// completion carries the search generation it was dispatched for; if a
// new search started in the meantime the store rejects the write and
// the completion disappears without a trace, which is the intended
// cancellation behavior for superseded sessions.
package preview
