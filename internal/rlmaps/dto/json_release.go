package dto

import (
	"strings"

	"github.com/openrl/rlmaps-downloader/internal/model"
)

// imageExtensions are the asset name suffixes treated as preview pictures.
var imageExtensions = []string{".jfif", ".jpg", ".jpeg", ".png", ".gif", ".webp"}

// JSONRelease represents one release entry from the catalog releases response.
type JSONRelease struct {
	Name        string      `json:"name"`
	TagName     string      `json:"tag_name"`
	Description string      `json:"description"`
	Assets      *JSONAssets `json:"assets"`
}

// JSONAssets groups the downloadable links of a release.
type JSONAssets struct {
	Links []JSONAssetLink `json:"links"`
}

// JSONAssetLink is one downloadable asset of a release.
type JSONAssetLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ToRelease converts JSONRelease to a model.Release.
//
// Asset links are classified by name suffix: the first link with an
// image extension becomes the preview picture, the first .zip link
// becomes the download target. Later matches are ignored.
func (jr *JSONRelease) ToRelease() model.Release {
	release := model.Release{
		Name:        jr.Name,
		Tag:         jr.TagName,
		Description: jr.Description,
	}

	if jr.Assets == nil {
		return release
	}

	for _, link := range jr.Assets.Links {
		name := strings.ToLower(link.Name)

		if release.PictureURL == "" && hasImageExtension(name) {
			release.PictureURL = link.URL
			continue
		}
		if release.DownloadURL == "" && strings.HasSuffix(name, ".zip") {
			release.DownloadURL = link.URL
			release.FileName = model.SanitizeArchiveName(link.Name)
		}
	}

	return release
}

func hasImageExtension(name string) bool {
	for _, ext := range imageExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
