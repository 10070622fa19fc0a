package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/openrsl/rslserver/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS documents (
            id UUID PRIMARY KEY,
            owner_id VARCHAR(255) NOT NULL,
            name VARCHAR(255) NOT NULL,
            site_url VARCHAR(2048),
            xml_content TEXT NOT NULL,
            created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS discovery_configs (
            id UUID PRIMARY KEY,
            owner_id VARCHAR(255) NOT NULL,
            site_url VARCHAR(2048) NOT NULL,
            sitemap_url VARCHAR(2048),
            user_agent VARCHAR(255),
            refresh_interval VARCHAR(64),
            allowed_domains TEXT[],
            max_pages INTEGER,
            status VARCHAR(32),
            last_run TIMESTAMP,
            next_run TIMESTAMP,
            errors TEXT[],
            created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_documents_owner_id ON documents(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_discovery_configs_owner_id ON discovery_configs(owner_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, doc *models.LicenseDocument) error {
	query := `
        INSERT INTO documents (id, owner_id, name, site_url, xml_content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            site_url = EXCLUDED.site_url,
            xml_content = EXCLUDED.xml_content,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.OwnerID,
		doc.Name,
		doc.SiteURL,
		doc.XMLContent,
		doc.CreatedAt,
		doc.UpdatedAt,
	)

	return err
}

func (s *PostgresStore) GetDocument(ctx context.Context, id uuid.UUID, ownerID string) (*models.LicenseDocument, error) {
	query := `
        SELECT id, owner_id, name, site_url, xml_content, created_at, updated_at
        FROM documents
        WHERE id = $1 AND owner_id = $2
    `

	doc := &models.LicenseDocument{}
	err := s.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Name,
		&doc.SiteURL,
		&doc.XMLContent,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return doc, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, ownerID string, limit, offset int) ([]*models.LicenseDocument, error) {
	query := `
        SELECT id, owner_id, name, site_url, xml_content, created_at, updated_at
        FROM documents
        WHERE owner_id = $1
        ORDER BY updated_at DESC
        LIMIT $2 OFFSET $3
    `

	rows, err := s.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.LicenseDocument
	for rows.Next() {
		doc := &models.LicenseDocument{}
		err := rows.Scan(
			&doc.ID,
			&doc.OwnerID,
			&doc.Name,
			&doc.SiteURL,
			&doc.XMLContent,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)

		if err != nil {
			return nil, err
		}

		docs = append(docs, doc)
	}

	return docs, nil
}

func (s *PostgresStore) UpdateDocument(ctx context.Context, doc *models.LicenseDocument) error {
	query := `
        UPDATE documents
        SET name = $1, site_url = $2, xml_content = $3, updated_at = CURRENT_TIMESTAMP
        WHERE id = $4 AND owner_id = $5
    `

	result, err := s.db.ExecContext(ctx, query,
		doc.Name,
		doc.SiteURL,
		doc.XMLContent,
		doc.ID,
		doc.OwnerID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, id uuid.UUID, ownerID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (s *PostgresStore) ListDiscoveryConfigs(ctx context.Context) ([]*models.DiscoveryConfig, error) {
	query := `
        SELECT id, owner_id, site_url, sitemap_url, user_agent, refresh_interval,
               allowed_domains, max_pages, status, last_run, next_run, errors,
               created_at, updated_at
        FROM discovery_configs
        ORDER BY created_at
    `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*models.DiscoveryConfig
	for rows.Next() {
		config := &models.DiscoveryConfig{}
		var domains, errs []string
		var sitemapURL, userAgent, refreshInterval, status sql.NullString

		err := rows.Scan(
			&config.ID,
			&config.OwnerID,
			&config.SiteURL,
			&sitemapURL,
			&userAgent,
			&refreshInterval,
			pq.Array(&domains),
			&config.MaxPages,
			&status,
			&config.LastRun,
			&config.NextRun,
			pq.Array(&errs),
			&config.CreatedAt,
			&config.UpdatedAt,
		)

		if err != nil {
			return nil, err
		}

		config.SitemapURL = sitemapURL.String
		config.UserAgent = userAgent.String
		config.RefreshInterval = refreshInterval.String
		config.Status = status.String
		config.AllowedDomains = domains
		config.Errors = errs
		configs = append(configs, config)
	}

	return configs, nil
}

func (s *PostgresStore) GetDiscoveryConfig(ctx context.Context, id uuid.UUID) (*models.DiscoveryConfig, error) {
	query := `
        SELECT id, owner_id, site_url, sitemap_url, user_agent, refresh_interval,
               allowed_domains, max_pages, status, last_run, next_run, errors,
               created_at, updated_at
        FROM discovery_configs
        WHERE id = $1
    `

	config := &models.DiscoveryConfig{}
	var domains, errs []string
	var sitemapURL, userAgent, refreshInterval, status sql.NullString

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&config.ID,
		&config.OwnerID,
		&config.SiteURL,
		&sitemapURL,
		&userAgent,
		&refreshInterval,
		pq.Array(&domains),
		&config.MaxPages,
		&status,
		&config.LastRun,
		&config.NextRun,
		pq.Array(&errs),
		&config.CreatedAt,
		&config.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	config.SitemapURL = sitemapURL.String
	config.UserAgent = userAgent.String
	config.RefreshInterval = refreshInterval.String
	config.Status = status.String
	config.AllowedDomains = domains
	config.Errors = errs
	return config, nil
}

func (s *PostgresStore) CreateDiscoveryConfig(ctx context.Context, config *models.DiscoveryConfig) error {
	query := `
        INSERT INTO discovery_configs (id, owner_id, site_url, sitemap_url, user_agent,
            refresh_interval, allowed_domains, max_pages, status, last_run, next_run,
            errors, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
    `

	_, err := s.db.ExecContext(ctx, query,
		config.ID,
		config.OwnerID,
		config.SiteURL,
		config.SitemapURL,
		config.UserAgent,
		config.RefreshInterval,
		pq.Array(config.AllowedDomains),
		config.MaxPages,
		config.Status,
		config.LastRun,
		config.NextRun,
		pq.Array(config.Errors),
		config.CreatedAt,
		config.UpdatedAt,
	)

	return err
}

func (s *PostgresStore) UpdateDiscoveryConfig(ctx context.Context, config *models.DiscoveryConfig) error {
	query := `
        UPDATE discovery_configs
        SET site_url = $1, sitemap_url = $2, user_agent = $3, refresh_interval = $4,
            allowed_domains = $5, max_pages = $6, status = $7, last_run = $8,
            next_run = $9, errors = $10, updated_at = CURRENT_TIMESTAMP
        WHERE id = $11
    `

	_, err := s.db.ExecContext(ctx, query,
		config.SiteURL,
		config.SitemapURL,
		config.UserAgent,
		config.RefreshInterval,
		pq.Array(config.AllowedDomains),
		config.MaxPages,
		config.Status,
		config.LastRun,
		config.NextRun,
		pq.Array(config.Errors),
		config.ID,
	)

	return err
}

func (s *PostgresStore) DeleteDiscoveryConfig(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM discovery_configs WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
