package api

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/openrsl/rslserver/internal/discovery"
	"github.com/openrsl/rslserver/internal/models"
	"github.com/openrsl/rslserver/internal/rsl"
	"github.com/openrsl/rslserver/internal/storage"
)

type Handler struct {
	store storage.Store
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PaginationResponse struct {
	Data  interface{} `json:"data"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// XMLRequest is the transport shape for endpoints that accept raw RSL text.
type XMLRequest struct {
	XMLContent string `json:"xmlContent" binding:"required"`
}

// DocumentRequest creates or updates a stored document.
type DocumentRequest struct {
	Name       string `json:"name" binding:"required"`
	SiteURL    string `json:"siteUrl"`
	XMLContent string `json:"xmlContent" binding:"required"`
}

// DiscoverRequest runs a one-off discovery and returns a seeded draft.
type DiscoverRequest struct {
	SiteURL        string   `json:"siteUrl" binding:"required"`
	SitemapURL     string   `json:"sitemapUrl"`
	UserAgent      string   `json:"userAgent"`
	AllowedDomains []string `json:"allowedDomains"`
	MaxPages       int      `json:"maxPages"`
}

func NewHandler(store storage.Store) *Handler {
	return &Handler{store: store}
}

func ownerID(c *gin.Context) string {
	return c.GetString("ownerID")
}

// RSL core endpoints

func (h *Handler) ValidateDocument(c *gin.Context) {
	var req XMLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "xmlContent is required"})
		return
	}

	doc, err := rsl.Parse(req.XMLContent, "request")
	if err != nil {
		// Structural failure: the text cannot be meaningfully validated.
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, rsl.Validate(doc.Contents))
}

func (h *Handler) ParseDocument(c *gin.Context) {
	var req XMLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "xmlContent is required"})
		return
	}

	doc, err := rsl.Parse(req.XMLContent, "request")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *Handler) GenerateDocument(c *gin.Context) {
	var doc rsl.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid document payload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"xmlContent": rsl.Generate(&doc)})
}

// Stored document endpoints

func (h *Handler) ListDocuments(c *gin.Context) {
	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	docs, err := h.store.ListDocuments(c.Request.Context(), ownerID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch documents"})
		return
	}

	if docs == nil {
		docs = []*models.LicenseDocument{}
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  docs,
		Page:  page,
		Limit: limit,
	})
}

func (h *Handler) CreateDocument(c *gin.Context) {
	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid document data"})
		return
	}

	canonical, report, err := canonicalize(req.XMLContent)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if !report.IsValid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document has validation errors", "report": report})
		return
	}

	doc := models.NewLicenseDocument(ownerID(c), req.Name)
	doc.SiteURL = req.SiteURL
	doc.XMLContent = canonical

	if err := h.store.CreateDocument(c.Request.Context(), doc); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to save document"})
		return
	}

	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) GetDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid document ID"})
		return
	}

	doc, err := h.store.GetDocument(c.Request.Context(), id, ownerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch document"})
		return
	}

	if doc == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Document not found"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *Handler) UpdateDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid document ID"})
		return
	}

	var req DocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid document data"})
		return
	}

	canonical, report, err := canonicalize(req.XMLContent)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	// Errors block the save; warnings do not.
	if !report.IsValid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document has validation errors", "report": report})
		return
	}

	doc := &models.LicenseDocument{
		ID:         id,
		OwnerID:    ownerID(c),
		Name:       req.Name,
		SiteURL:    req.SiteURL,
		XMLContent: canonical,
	}

	if err := h.store.UpdateDocument(c.Request.Context(), doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update document"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid document ID"})
		return
	}

	if err := h.store.DeleteDocument(c.Request.Context(), id, ownerID(c)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) GetDocumentReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid document ID"})
		return
	}

	doc, err := h.store.GetDocument(c.Request.Context(), id, ownerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch document"})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Document not found"})
		return
	}

	parsed, err := rsl.Parse(doc.XMLContent, doc.SiteURL)
	if err != nil {
		// Stored documents are canonical output, so this indicates
		// corruption rather than user error.
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Stored document is not parseable"})
		return
	}

	c.JSON(http.StatusOK, rsl.Validate(parsed.Contents))
}

// Discovery endpoints

func (h *Handler) RunDiscovery(c *gin.Context) {
	var req DiscoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "siteUrl is required"})
		return
	}

	d := discovery.NewDiscoverer(&discovery.Config{
		SiteURL:        req.SiteURL,
		SitemapURL:     req.SitemapURL,
		UserAgent:      req.UserAgent,
		AllowedDomains: req.AllowedDomains,
		MaxPages:       req.MaxPages,
	})

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	pages, err := d.DiscoverPages(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Discovery failed: " + err.Error()})
		return
	}

	draft := discovery.SeedDocument(pages)
	c.JSON(http.StatusOK, gin.H{
		"pages":      pages,
		"document":   draft,
		"xmlContent": rsl.Generate(draft),
		"report":     rsl.Validate(draft.Contents),
	})
}

func (h *Handler) ListDiscoveryConfigs(c *gin.Context) {
	configs, err := h.store.ListDiscoveryConfigs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch discovery configs"})
		return
	}

	if configs == nil {
		configs = []*models.DiscoveryConfig{}
	}

	c.JSON(http.StatusOK, configs)
}

func (h *Handler) GetDiscoveryConfig(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid discovery config ID"})
		return
	}

	config, err := h.store.GetDiscoveryConfig(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch discovery config"})
		return
	}

	if config == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Discovery config not found"})
		return
	}

	c.JSON(http.StatusOK, config)
}

func (h *Handler) CreateDiscoveryConfig(c *gin.Context) {
	var config models.DiscoveryConfig
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid discovery config data"})
		return
	}

	if config.ID == uuid.Nil {
		config.ID = uuid.New()
	}
	config.OwnerID = ownerID(c)

	now := time.Now()
	config.Status = "Running"
	config.CreatedAt = now
	config.UpdatedAt = now

	if interval, err := time.ParseDuration(config.RefreshInterval); err == nil {
		nextRun := now.Add(interval)
		config.NextRun = &nextRun
	}

	if err := h.store.CreateDiscoveryConfig(c.Request.Context(), &config); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to create discovery config"})
		return
	}

	// Run the first discovery in the background. The goroutine works on its
	// own copy so it never touches the struct the response below is
	// serializing.
	runCfg := config
	go func() {
		log.Printf("Starting discovery for config ID: %s", runCfg.ID)
		if err := h.runDiscovery(&runCfg); err != nil {
			log.Printf("Error running discovery: %v", err)
			runCfg.Status = "Error"
			runCfg.Errors = append(runCfg.Errors, err.Error())
		} else {
			runCfg.Status = "Completed"
		}

		runCfg.UpdatedAt = time.Now()
		if err := h.store.UpdateDiscoveryConfig(context.Background(), &runCfg); err != nil {
			log.Printf("Error updating discovery status: %v", err)
		}
	}()

	c.JSON(http.StatusCreated, config)
}

func (h *Handler) UpdateDiscoveryConfig(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid discovery config ID"})
		return
	}

	var config models.DiscoveryConfig
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid discovery config data"})
		return
	}

	config.ID = id
	config.OwnerID = ownerID(c)

	if err := h.store.UpdateDiscoveryConfig(c.Request.Context(), &config); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to update discovery config"})
		return
	}

	c.JSON(http.StatusOK, config)
}

func (h *Handler) DeleteDiscoveryConfig(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid discovery config ID"})
		return
	}

	if err := h.store.DeleteDiscoveryConfig(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to delete discovery config"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// runDiscovery executes one discovery run for a stored config and persists
// the seeded draft as a document owned by the config's owner. The config is
// updated in place with the run bookkeeping; the caller persists it.
func (h *Handler) runDiscovery(config *models.DiscoveryConfig) error {
	d := discovery.NewDiscoverer(&discovery.Config{
		SiteURL:        config.SiteURL,
		SitemapURL:     config.SitemapURL,
		UserAgent:      config.UserAgent,
		AllowedDomains: config.AllowedDomains,
		MaxPages:       config.MaxPages,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pages, err := d.DiscoverPages(ctx)
	if err != nil {
		return err
	}

	draft := discovery.SeedDocument(pages)
	doc := models.NewLicenseDocument(config.OwnerID, "Draft for "+config.SiteURL)
	doc.SiteURL = config.SiteURL
	doc.XMLContent = rsl.Generate(draft)

	if err := h.store.CreateDocument(ctx, doc); err != nil {
		return err
	}

	now := time.Now()
	config.LastRun = &now
	if interval, err := time.ParseDuration(config.RefreshInterval); err == nil {
		nextRun := now.Add(interval)
		config.NextRun = &nextRun
	}

	return nil
}

// canonicalize parses raw RSL text, validates it, and re-serializes to the
// canonical form that gets persisted.
func canonicalize(xmlContent string) (string, *rsl.Report, error) {
	doc, err := rsl.Parse(xmlContent, "request")
	if err != nil {
		return "", nil, err
	}
	return rsl.Generate(doc), rsl.Validate(doc.Contents), nil
}

// Utility functions
func getPaginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	return page, limit
}
