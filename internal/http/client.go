package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// HTTPError holds the status code and URL of a failed HTTP request.
//
// The catalog client and the install pipeline use errors.As to tell
// transport failures apart from parse failures.
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Client wraps HTTP operations with catalog-specific configuration.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout handling
//   - Request pacing via a token-bucket rate limiter
//   - File download with progress tracking
//
// Example usage:
//
//	client := NewClient(60*time.Second, 4)
//
//	// Fetch a JSON body
//	body, err := client.Get(ctx, "https://celab.jetfox.ovh/api/v4/projects/?search=flip")
//
//	// Download file with progress
//	err = client.DownloadFile(ctx, zipURL, "/maps/Rings/rings.zip", func(written, total int64) {
//	    percent := float64(written) / float64(total) * 100
//	    fmt.Printf("%.1f%%\n", percent)
//	})
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient creates a new HTTP client for catalog and archive requests.
//
// The client is configured with:
//   - the given timeout (60 seconds if not positive)
//   - "rlmaps-downloader" User-Agent header
//   - at most requestsPerSecond request starts per second
//     (unlimited if not positive)
func NewClient(timeout time.Duration, requestsPerSecond float64) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "rlmaps-downloader",
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// ProgressWriter wraps a writer to track download progress.
//
// Use this to monitor large downloads by providing an OnUpdate callback
// that receives the current bytes written and total expected bytes.
//
// Example:
//
//	pw := &ProgressWriter{
//	    Writer: file,
//	    Total:  contentLength,
//	    OnUpdate: func(written, total int64) {
//	        fmt.Printf("%d / %d bytes\n", written, total)
//	    },
//	}
//	io.Copy(pw, response.Body)
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with current progress.
	// Parameters are (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

// do waits for the rate limiter, then performs a GET request with the
// configured User-Agent. The caller owns the response body.
func (c *Client) do(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	return c.httpClient.Do(req)
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK (*HTTPError)
//   - Reading the body fails
//
// Example:
//
//	data, err := client.Get(ctx, "https://example.com/preview.png")
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	body, _, err := c.GetWithHeaders(ctx, url)
	return body, err
}

// GetWithHeaders performs a GET request and returns the response body
// along with the response headers.
//
// The catalog reports the total result count through the X-Total
// header, so search needs the headers as well as the body:
//
//	body, headers, err := client.GetWithHeaders(ctx, searchURL)
//	total := headers.Get("X-Total")
func (c *Client) GetWithHeaders(ctx context.Context, url string) ([]byte, http.Header, error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	return body, resp.Header, nil
}

// GetString performs a GET request and returns the response body as a string.
//
// This is a convenience wrapper around Get for fetching text content.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// DownloadFile downloads a file to the specified path with optional progress callback.
//
// The file is created (or truncated if it exists) and the content is streamed
// directly to disk, avoiding loading the entire file into memory.
//
// Parameters:
//   - ctx: Context for cancellation
//   - url: URL to download from
//   - destPath: Local file path to save to
//   - onProgress: Optional callback called with (bytesWritten, totalBytes)
//     Pass nil to disable progress tracking
//
// Example:
//
//	err := client.DownloadFile(ctx, zipURL, "/maps/Rings/rings.zip", func(written, total int64) {
//	    if total > 0 {
//	        fmt.Printf("%.1f%%\r", float64(written)/float64(total)*100)
//	    }
//	})
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	resp, err := c.do(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	file, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer file.Close()

	var writer io.Writer = file
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   file,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	_, err = io.Copy(writer, resp.Body)
	return err
}

// DownloadBytes downloads a file and returns the bytes in memory.
//
// Use this for small files like preview images. For archives, use
// DownloadFile to stream directly to disk.
//
// Example:
//
//	imageData, err := client.DownloadBytes(ctx, previewURL)
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}
