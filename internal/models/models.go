package models

import (
	"time"

	"github.com/google/uuid"
)

// LicenseDocument is a stored RSL document. XMLContent is always the
// generator's canonical form; the structured document is rebuilt from it on
// every read and never persisted.
type LicenseDocument struct {
	ID         uuid.UUID `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Name       string    `json:"name"`
	SiteURL    string    `json:"site_url,omitempty"`
	XMLContent string    `json:"xml_content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DiscoveryConfig describes a scheduled sitemap discovery for one site.
type DiscoveryConfig struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         string     `json:"ownerId"`
	SiteURL         string     `json:"siteUrl"`
	SitemapURL      string     `json:"sitemapUrl"`
	UserAgent       string     `json:"userAgent"`
	RefreshInterval string     `json:"refreshInterval"`
	AllowedDomains  []string   `json:"allowedDomains"`
	MaxPages        int        `json:"maxPages"`
	Status          string     `json:"status"`
	LastRun         *time.Time `json:"lastRun,omitempty"`
	NextRun         *time.Time `json:"nextRun,omitempty"`
	Errors          []string   `json:"errors,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// DiscoveredPage is one candidate URL found during discovery, with whatever
// page metadata could be extracted.
type DiscoveredPage struct {
	URL          string `json:"url"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	LastModified string `json:"lastModified,omitempty"`
}

// NewLicenseDocument creates a document with generated UUID and timestamps.
func NewLicenseDocument(ownerID, name string) *LicenseDocument {
	now := time.Now()
	return &LicenseDocument{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewDiscoveryConfig creates a discovery config with generated UUID and timestamps.
func NewDiscoveryConfig(ownerID, siteURL string) *DiscoveryConfig {
	now := time.Now()
	return &DiscoveryConfig{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		SiteURL:   siteURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
