package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/openrsl/rslserver/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS documents (
            id TEXT PRIMARY KEY,
            owner_id TEXT NOT NULL,
            name TEXT NOT NULL,
            site_url TEXT,
            xml_content TEXT NOT NULL,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE TABLE IF NOT EXISTS discovery_configs (
            id TEXT PRIMARY KEY,
            owner_id TEXT NOT NULL,
            site_url TEXT NOT NULL,
            sitemap_url TEXT,
            user_agent TEXT,
            refresh_interval TEXT,
            allowed_domains TEXT,
            max_pages INTEGER,
            status TEXT,
            last_run DATETIME,
            next_run DATETIME,
            errors TEXT,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
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

func (s *SQLiteStore) CreateDocument(ctx context.Context, doc *models.LicenseDocument) error {
	query := `
        INSERT INTO documents (id, owner_id, name, site_url, xml_content, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            site_url = excluded.site_url,
            xml_content = excluded.xml_content,
            updated_at = CURRENT_TIMESTAMP
    `

	_, err := s.db.ExecContext(ctx, query,
		doc.ID.String(),
		doc.OwnerID,
		doc.Name,
		doc.SiteURL,
		doc.XMLContent,
		doc.CreatedAt,
		doc.UpdatedAt,
	)

	return err
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id uuid.UUID, ownerID string) (*models.LicenseDocument, error) {
	query := `
        SELECT id, owner_id, name, site_url, xml_content, created_at, updated_at
        FROM documents
        WHERE id = ? AND owner_id = ?
    `

	doc := &models.LicenseDocument{}
	var idStr string

	err := s.db.QueryRowContext(ctx, query, id.String(), ownerID).Scan(
		&idStr,
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

	doc.ID, _ = uuid.Parse(idStr)
	return doc, nil
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, ownerID string, limit, offset int) ([]*models.LicenseDocument, error) {
	query := `
        SELECT id, owner_id, name, site_url, xml_content, created_at, updated_at
        FROM documents
        WHERE owner_id = ?
        ORDER BY updated_at DESC
        LIMIT ? OFFSET ?
    `

	rows, err := s.db.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.LicenseDocument
	for rows.Next() {
		doc := &models.LicenseDocument{}
		var idStr string

		err := rows.Scan(
			&idStr,
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

		doc.ID, _ = uuid.Parse(idStr)
		docs = append(docs, doc)
	}

	return docs, nil
}

func (s *SQLiteStore) UpdateDocument(ctx context.Context, doc *models.LicenseDocument) error {
	query := `
        UPDATE documents
        SET name = ?, site_url = ?, xml_content = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ? AND owner_id = ?
    `

	result, err := s.db.ExecContext(ctx, query,
		doc.Name,
		doc.SiteURL,
		doc.XMLContent,
		doc.ID.String(),
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

func (s *SQLiteStore) DeleteDocument(ctx context.Context, id uuid.UUID, ownerID string) error {
	query := `DELETE FROM documents WHERE id = ? AND owner_id = ?`

	result, err := s.db.ExecContext(ctx, query, id.String(), ownerID)
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

func (s *SQLiteStore) ListDiscoveryConfigs(ctx context.Context) ([]*models.DiscoveryConfig, error) {
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
		config, err := scanDiscoveryConfig(rows.Scan)
		if err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}

	return configs, nil
}

func (s *SQLiteStore) GetDiscoveryConfig(ctx context.Context, id uuid.UUID) (*models.DiscoveryConfig, error) {
	query := `
        SELECT id, owner_id, site_url, sitemap_url, user_agent, refresh_interval,
               allowed_domains, max_pages, status, last_run, next_run, errors,
               created_at, updated_at
        FROM discovery_configs
        WHERE id = ?
    `

	row := s.db.QueryRowContext(ctx, query, id.String())
	config, err := scanDiscoveryConfig(row.Scan)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return config, nil
}

func (s *SQLiteStore) CreateDiscoveryConfig(ctx context.Context, config *models.DiscoveryConfig) error {
	query := `
        INSERT INTO discovery_configs (id, owner_id, site_url, sitemap_url, user_agent,
            refresh_interval, allowed_domains, max_pages, status, last_run, next_run,
            errors, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	domainsJSON, err := json.Marshal(config.AllowedDomains)
	if err != nil {
		return err
	}
	errorsJSON, err := json.Marshal(config.Errors)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		config.ID.String(),
		config.OwnerID,
		config.SiteURL,
		config.SitemapURL,
		config.UserAgent,
		config.RefreshInterval,
		string(domainsJSON),
		config.MaxPages,
		config.Status,
		config.LastRun,
		config.NextRun,
		string(errorsJSON),
		config.CreatedAt,
		config.UpdatedAt,
	)

	return err
}

func (s *SQLiteStore) UpdateDiscoveryConfig(ctx context.Context, config *models.DiscoveryConfig) error {
	query := `
        UPDATE discovery_configs
        SET site_url = ?, sitemap_url = ?, user_agent = ?, refresh_interval = ?,
            allowed_domains = ?, max_pages = ?, status = ?, last_run = ?, next_run = ?,
            errors = ?, updated_at = CURRENT_TIMESTAMP
        WHERE id = ?
    `

	domainsJSON, err := json.Marshal(config.AllowedDomains)
	if err != nil {
		return err
	}
	errorsJSON, err := json.Marshal(config.Errors)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		config.SiteURL,
		config.SitemapURL,
		config.UserAgent,
		config.RefreshInterval,
		string(domainsJSON),
		config.MaxPages,
		config.Status,
		config.LastRun,
		config.NextRun,
		string(errorsJSON),
		config.ID.String(),
	)

	return err
}

func (s *SQLiteStore) DeleteDiscoveryConfig(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM discovery_configs WHERE id = ?`, id.String())
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanDiscoveryConfig reads one discovery config row; the JSON-encoded
// columns are decoded back into their slice fields.
func scanDiscoveryConfig(scan func(dest ...interface{}) error) (*models.DiscoveryConfig, error) {
	config := &models.DiscoveryConfig{}
	var idStr, domainsJSON, errorsJSON string
	var sitemapURL, userAgent, refreshInterval, status sql.NullString

	err := scan(
		&idStr,
		&config.OwnerID,
		&config.SiteURL,
		&sitemapURL,
		&userAgent,
		&refreshInterval,
		&domainsJSON,
		&config.MaxPages,
		&status,
		&config.LastRun,
		&config.NextRun,
		&errorsJSON,
		&config.CreatedAt,
		&config.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	config.ID, _ = uuid.Parse(idStr)
	config.SitemapURL = sitemapURL.String
	config.UserAgent = userAgent.String
	config.RefreshInterval = refreshInterval.String
	config.Status = status.String
	json.Unmarshal([]byte(domainsJSON), &config.AllowedDomains)
	json.Unmarshal([]byte(errorsJSON), &config.Errors)

	return config, nil
}
