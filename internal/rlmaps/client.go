package rlmaps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/openrl/rlmaps-downloader/internal/http"
	"github.com/openrl/rlmaps-downloader/internal/model"
	"github.com/openrl/rlmaps-downloader/internal/rlmaps/dto"
)

// DefaultBaseURL is the public community map catalog.
const DefaultBaseURL = "https://celab.jetfox.ovh/api/v4"

// Client queries the GitLab-style catalog API for community maps.
//
// The catalog exposes three read-only endpoints: a paged project
// search, a single-project lookup, and a per-project release listing.
// All of them return JSON.
//
// Example usage:
//
//	client := rlmaps.NewClient(httpClient, "")
//
//	results, total, err := client.Search(ctx, "flip", 1)
//
//	releases, err := client.Releases(ctx, results[0].ID)
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a catalog client. An empty baseURL selects
// DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Search queries one page of catalog projects matching the keyword.
//
// It returns the page's results and the total match count from the
// X-Total response header. When the header is absent or malformed the
// total falls back to the page's item count. Items without an id or a
// name are skipped.
//
// Transport failures surface as *http.HTTPError; a malformed body
// surfaces as a parse error.
func (c *Client) Search(ctx context.Context, keyword string, page int) ([]*model.MapResult, int, error) {
	searchURL := fmt.Sprintf("%s/projects/?search=%s&page=%d", c.baseURL, url.QueryEscape(keyword), page)

	body, headers, err := c.http.GetWithHeaders(ctx, searchURL)
	if err != nil {
		return nil, 0, err
	}

	var projects []dto.JSONProject
	if err := json.Unmarshal(body, &projects); err != nil {
		return nil, 0, fmt.Errorf("parsing search response: %w", err)
	}

	results := make([]*model.MapResult, 0, len(projects))
	for i := range projects {
		if projects[i].ID == 0 || projects[i].Name == "" {
			continue
		}
		results = append(results, projects[i].ToMapResult())
	}

	total := len(projects)
	if v := headers.Get("X-Total"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			total = n
		}
	}

	return results, total, nil
}

// Project fetches a single catalog project by id. The CLI uses it to
// resolve a map's name and description when installing by id, without
// running a search first.
func (c *Client) Project(ctx context.Context, id string) (*model.MapResult, error) {
	projectURL := fmt.Sprintf("%s/projects/%s", c.baseURL, url.PathEscape(id))

	body, err := c.http.Get(ctx, projectURL)
	if err != nil {
		return nil, err
	}

	var project dto.JSONProject
	if err := json.Unmarshal(body, &project); err != nil {
		return nil, fmt.Errorf("parsing project response: %w", err)
	}
	if project.ID == 0 || project.Name == "" {
		return nil, fmt.Errorf("project %s has no usable id or name", id)
	}

	return project.ToMapResult(), nil
}

// Releases fetches the release list for one catalog project id,
// newest first in catalog order.
func (c *Client) Releases(ctx context.Context, id string) ([]model.Release, error) {
	releasesURL := fmt.Sprintf("%s/projects/%s/releases", c.baseURL, url.PathEscape(id))

	body, err := c.http.Get(ctx, releasesURL)
	if err != nil {
		return nil, err
	}

	var items []dto.JSONRelease
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("parsing releases response: %w", err)
	}

	releases := make([]model.Release, 0, len(items))
	for i := range items {
		releases = append(releases, items[i].ToRelease())
	}

	return releases, nil
}
