// Package http provides an HTTP client configured for catalog API requests.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Request pacing via golang.org/x/time/rate
//   - File downloads with progress tracking
//   - Timeout handling
//   - Typed status errors (HTTPError)
//
// # Basic Usage
//
//	client := http.NewClient(60*time.Second, 4)
//
//	// Fetch a catalog response with its headers
//	body, headers, err := client.GetWithHeaders(ctx, searchURL)
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, zipURL, "/maps/Rings/rings.zip", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
//
// # Error Handling
//
// Non-200 responses become *HTTPError values, so callers can separate
// transport failures from parse failures:
//
//	var httpErr *http.HTTPError
//	if errors.As(err, &httpErr) {
//	    fmt.Printf("catalog returned %d\n", httpErr.StatusCode)
//	}
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
package http
