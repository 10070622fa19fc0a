package discovery

import (
	"github.com/openrsl/rslserver/internal/models"
	"github.com/openrsl/rslserver/internal/rsl"
)

// SeedDocument builds a draft RSL document from discovered pages: one
// content block per page with a default search-index license. The owner
// edits the draft in the UI before publishing, so the defaults are
// deliberately conservative.
func SeedDocument(pages []models.DiscoveredPage) *rsl.Document {
	doc := &rsl.Document{}

	for _, page := range pages {
		if page.URL == "" {
			continue
		}

		content := rsl.Content{
			URL:          page.URL,
			LastModified: page.LastModified,
			Licenses: []rsl.License{
				{Permits: []string{rsl.TermSearchIndex}},
			},
		}
		if page.Title != "" {
			content.SetMetadata("title", page.Title)
		}
		if page.Description != "" {
			content.SetMetadata("description", page.Description)
		}

		doc.Contents = append(doc.Contents, content)
	}

	return doc
}
