package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/openrsl/rslserver/internal/models"
)

type Store interface {
	Initialize() error
	Close() error

	// Document operations. Documents are opaque XML blobs keyed by id and
	// scoped to an owner; an ownership mismatch reads as not found.
	CreateDocument(ctx context.Context, doc *models.LicenseDocument) error
	GetDocument(ctx context.Context, id uuid.UUID, ownerID string) (*models.LicenseDocument, error)
	ListDocuments(ctx context.Context, ownerID string, limit, offset int) ([]*models.LicenseDocument, error)
	UpdateDocument(ctx context.Context, doc *models.LicenseDocument) error
	DeleteDocument(ctx context.Context, id uuid.UUID, ownerID string) error

	// Discovery config operations
	ListDiscoveryConfigs(ctx context.Context) ([]*models.DiscoveryConfig, error)
	GetDiscoveryConfig(ctx context.Context, id uuid.UUID) (*models.DiscoveryConfig, error)
	CreateDiscoveryConfig(ctx context.Context, config *models.DiscoveryConfig) error
	UpdateDiscoveryConfig(ctx context.Context, config *models.DiscoveryConfig) error
	DeleteDiscoveryConfig(ctx context.Context, id uuid.UUID) error
}
