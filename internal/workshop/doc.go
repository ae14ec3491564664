// Package workshop coordinates searching the community map catalog
// and enriching the results.
//
// A search is a session: one background goroutine owns it from the
// catalog query through the enrichment chain. The Browser admits at
// most one session at a time and rejects, rather than queues, a
// second StartSearch.
//
// # Lifecycle
//
//	browser := workshop.NewBrowser(catalog, previews, store, onProgress)
//
//	if err := browser.StartSearch("flip reset", 1); err != nil {
//	    // workshop.ErrSessionActive: a session is already running
//	}
//
//	// ... the store's version counter advances as results arrive ...
//
//	browser.StopSearch() // cancel and clear
//
// # Staleness
//
// Every session captures the store generation minted by its
// StartSearch. Asynchronous completions (the search response, each
// enrichment write, each preview fetch) revalidate that generation
// against the store before mutating anything, so work belonging to a
// stopped or replaced session dissolves without side effects. The
// session context cancels in-flight requests early; the generation
// check is what guarantees correctness.
//
// # Enrichment
//
// The enrichment chain runs strictly in index order with one release
// request in flight at a time. A failure on one item is reported and
// skipped. Preview downloads are dispatched fire-and-forget to the
// preview cache and overlap the next detail request.
package workshop
