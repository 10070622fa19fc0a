package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/openrsl/rslserver/config"
	"github.com/openrsl/rslserver/internal/api"
	"github.com/openrsl/rslserver/internal/discovery"
	"github.com/openrsl/rslserver/internal/models"
	"github.com/openrsl/rslserver/internal/rsl"
	"github.com/openrsl/rslserver/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage
	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Initialize database tables
	if err := store.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database tables: %v", err)
	}

	// Initialize API server
	server := api.NewServer(cfg.Server.Port, store)

	// Setup periodic discovery refresh
	ticker := time.NewTicker(cfg.GetRefreshDuration())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for {
			select {
			case <-ticker.C:
				log.Println("Starting scheduled discovery refresh...")
				runDueDiscoveries(ctx, store, cfg.Discovery.MaxConcurrentDiscoveries)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Start the API server
	go func() {
		log.Printf("Starting API server on port %d", cfg.Server.Port)
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start API server: %v", err)
		}
	}()

	// Wait for shutdown
	waitForShutdown(cancel, server)
}

func newStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Database.Driver == "postgres" {
		return storage.NewPostgresStore(cfg.Database.URL)
	}
	return storage.NewSQLiteStore(cfg.Database.URL)
}

// runDueDiscoveries refreshes every stored discovery config whose schedule
// has come around, regenerating the site's draft document from a fresh
// sitemap pass.
func runDueDiscoveries(ctx context.Context, store storage.Store, maxConcurrent int) {
	configs, err := store.ListDiscoveryConfigs(ctx)
	if err != nil {
		log.Printf("Failed to fetch discovery configs: %v", err)
		return
	}

	if len(configs) == 0 {
		log.Println("No discoveries to run")
		return
	}

	now := time.Now()

	// Create a semaphore channel to limit concurrency
	semaphore := make(chan struct{}, maxConcurrent)
	wg := sync.WaitGroup{}

	for _, config := range configs {
		// Skip if the discovery is already running
		if config.Status == "Running" {
			log.Printf("Skipping discovery %s (%s) as it's already running", config.SiteURL, config.ID)
			continue
		}

		// Skip if it's not time to run yet
		if config.NextRun != nil && now.Before(*config.NextRun) {
			log.Printf("Skipping discovery %s (%s) as it's not scheduled yet", config.SiteURL, config.ID)
			continue
		}

		configCopy := *config
		wg.Add(1)

		// Acquire a spot in the semaphore
		semaphore <- struct{}{}

		go func(cfg models.DiscoveryConfig) {
			defer wg.Done()
			defer func() { <-semaphore }()

			log.Printf("Starting discovery for %s...", cfg.SiteURL)
			if err := refreshDiscovery(ctx, store, cfg); err != nil {
				log.Printf("Discovery failed for %s: %v", cfg.SiteURL, err)
			} else {
				log.Printf("Discovery completed for %s", cfg.SiteURL)
			}
		}(configCopy)
	}

	wg.Wait()
	log.Println("All discoveries completed")
}

func refreshDiscovery(ctx context.Context, store storage.Store, cfg models.DiscoveryConfig) error {
	d := discovery.NewDiscoverer(&discovery.Config{
		SiteURL:        cfg.SiteURL,
		SitemapURL:     cfg.SitemapURL,
		UserAgent:      cfg.UserAgent,
		AllowedDomains: cfg.AllowedDomains,
		MaxPages:       cfg.MaxPages,
	})

	pages, err := d.DiscoverPages(ctx)

	now := time.Now()
	if err != nil {
		cfg.Status = "Error"
		cfg.Errors = append(cfg.Errors, err.Error())
	} else {
		draft := discovery.SeedDocument(pages)
		doc := models.NewLicenseDocument(cfg.OwnerID, "Draft for "+cfg.SiteURL)
		doc.SiteURL = cfg.SiteURL
		doc.XMLContent = rsl.Generate(draft)

		if storeErr := store.CreateDocument(ctx, doc); storeErr != nil {
			cfg.Status = "Error"
			cfg.Errors = append(cfg.Errors, storeErr.Error())
			err = storeErr
		} else {
			cfg.Status = "Completed"
			cfg.LastRun = &now
			if interval, parseErr := time.ParseDuration(cfg.RefreshInterval); parseErr == nil {
				nextRun := now.Add(interval)
				cfg.NextRun = &nextRun
			}
		}
	}

	cfg.UpdatedAt = now
	if updateErr := store.UpdateDiscoveryConfig(ctx, &cfg); updateErr != nil {
		log.Printf("Failed to update discovery config: %v", updateErr)
	}

	return err
}

func waitForShutdown(cancel context.CancelFunc, server *api.Server) {
	// Handle system signals for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutting down...")
	cancel()

	// Graceful server shutdown
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
	log.Println("Server shut down gracefully")
}
