package dto

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/openrl/rlmaps-downloader/internal/model"
)

// JSONProject represents one project entry from the catalog search response.
type JSONProject struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Namespace   *JSONNamespace `json:"namespace"`
}

// JSONNamespace contains the owning namespace of a project. Its path
// doubles as the map author.
type JSONNamespace struct {
	Path string `json:"path"`
}

// ToMapResult converts JSONProject to a model.MapResult.
//
// The description arrives as HTML and is flattened to plain text.
// Releases stay empty until enrichment fills them in.
func (jp *JSONProject) ToMapResult() *model.MapResult {
	author := ""
	if jp.Namespace != nil {
		author = jp.Namespace.Path
	}

	return &model.MapResult{
		ID:          strconv.FormatInt(jp.ID, 10),
		Name:        jp.Name,
		Description: flattenHTML(jp.Description),
		Author:      author,
	}
}

// flattenHTML strips markup from a description and collapses runs of
// whitespace into single spaces.
func flattenHTML(s string) string {
	if s == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}
