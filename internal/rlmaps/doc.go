// Package rlmaps provides a typed client for the community map catalog.
//
// The catalog is a GitLab-style API with three endpoints this package
// consumes:
//
//  1. Project search: GET /projects/?search=<keyword>&page=<n>
//  2. Project lookup: GET /projects/<id>
//  3. Release listing: GET /projects/<id>/releases
//
// # Searching
//
// Search returns one page of map results plus the total match count:
//
//	client := rlmaps.NewClient(httpClient, "")
//	results, total, err := client.Search(ctx, "flip reset", 1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("showing %d of %d maps\n", len(results), total)
//
// # Release Listing
//
// Releases returns the downloadable versions of one map:
//
//	releases, err := client.Releases(ctx, "412")
//	for _, r := range releases {
//	    fmt.Println(r.Tag, r.DownloadURL)
//	}
//
// # Catalog Data Format
//
// Search responses are JSON arrays of projects; descriptions arrive as
// HTML and are flattened to plain text. Release asset links carry no
// type marker, so they are classified by file-name suffix: the first
// image-extension link is the preview picture and the first .zip link
// is the archive download.
package rlmaps
