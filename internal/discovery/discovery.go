package discovery

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/openrsl/rslserver/internal/models"
	"github.com/openrsl/rslserver/internal/utils"
)

// Config controls a single discovery run.
type Config struct {
	SiteURL        string
	SitemapURL     string
	UserAgent      string
	AllowedDomains []string
	MaxPages       int
}

// Discoverer fetches a site's sitemap and visits the listed pages to
// collect the metadata (title, description) used to seed a draft RSL
// document. It does real network retrieval; there is no stubbed data path.
type Discoverer struct {
	collector *colly.Collector
	config    *Config
	client    *http.Client
}

func NewDiscoverer(config *Config) *Discoverer {
	c := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
		colly.MaxDepth(1),
		colly.AllowedDomains(config.AllowedDomains...),
	)

	// Set reasonable limits
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 2,
		RandomDelay: 2 * time.Second,
	})

	return &Discoverer{
		collector: c,
		config:    config,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchSitemap retrieves and parses the configured sitemap. Sitemap index
// files are followed one level deep. The result is capped at MaxPages.
func (d *Discoverer) FetchSitemap(ctx context.Context) ([]models.DiscoveredPage, error) {
	sitemapURL := d.config.SitemapURL
	if sitemapURL == "" {
		var err error
		sitemapURL, err = defaultSitemapURL(d.config.SiteURL)
		if err != nil {
			return nil, err
		}
	}

	pages, err := d.fetchSitemapURL(ctx, sitemapURL, true)
	if err != nil {
		return nil, err
	}

	if d.config.MaxPages > 0 && len(pages) > d.config.MaxPages {
		pages = pages[:d.config.MaxPages]
	}

	return pages, nil
}

func (d *Discoverer) fetchSitemapURL(ctx context.Context, sitemapURL string, followIndex bool) ([]models.DiscoveredPage, error) {
	body, err := d.fetch(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap %s: %w", sitemapURL, err)
	}

	var sitemap models.Sitemap
	if err := xml.Unmarshal(body, &sitemap); err == nil && len(sitemap.URLs) > 0 {
		pages := make([]models.DiscoveredPage, 0, len(sitemap.URLs))
		for _, entry := range sitemap.URLs {
			pages = append(pages, models.DiscoveredPage{
				URL:          strings.TrimSpace(entry.Loc),
				LastModified: strings.TrimSpace(entry.LastMod),
			})
		}
		return pages, nil
	}

	if followIndex {
		var index models.SitemapIndex
		if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
			var pages []models.DiscoveredPage
			for _, ref := range index.Sitemaps {
				child, err := d.fetchSitemapURL(ctx, strings.TrimSpace(ref.Loc), false)
				if err != nil {
					continue
				}
				pages = append(pages, child...)
				if d.config.MaxPages > 0 && len(pages) >= d.config.MaxPages {
					break
				}
			}
			return pages, nil
		}
	}

	return nil, fmt.Errorf("no url entries found in sitemap %s", sitemapURL)
}

func (d *Discoverer) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if d.config.UserAgent != "" {
		req.Header.Set("User-Agent", d.config.UserAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// DiscoverPages fetches the sitemap and visits each listed page, filling in
// title and description metadata where the pages expose it.
func (d *Discoverer) DiscoverPages(ctx context.Context) ([]models.DiscoveredPage, error) {
	logger, err := utils.NewRunLogger(d.config.SiteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	logger.LogInfo("Starting discovery for %s", d.config.SiteURL)

	pages, err := d.FetchSitemap(ctx)
	if err != nil {
		logger.LogError("Sitemap retrieval failed: %v", err)
		return nil, err
	}
	logger.LogInfo("Sitemap listed %d pages", len(pages))

	byURL := make(map[string]*models.DiscoveredPage, len(pages))
	var mutex sync.Mutex
	for i := range pages {
		byURL[pages[i].URL] = &pages[i]
	}

	d.collector.OnHTML("html", func(e *colly.HTMLElement) {
		pageURL := e.Request.URL.String()

		mutex.Lock()
		page, tracked := byURL[pageURL]
		mutex.Unlock()
		if !tracked {
			return
		}

		title := strings.TrimSpace(e.DOM.Find("title").First().Text())
		description := extractDescription(e.DOM)

		mutex.Lock()
		page.Title = title
		page.Description = description
		mutex.Unlock()

		logger.LogDebug("Visited %s: %q", pageURL, title)
	})

	d.collector.OnError(func(r *colly.Response, err error) {
		logger.LogError("Failed to visit %s: %v", r.Request.URL, err)
	})

	for _, page := range pages {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := d.collector.Visit(page.URL); err != nil {
			logger.LogDebug("Skipping %s: %v", page.URL, err)
		}
	}
	d.collector.Wait()

	logger.LogInfo("Discovery finished: %d pages", len(pages))
	return pages, nil
}

// extractDescription prefers the meta description; pages without one fall
// back to a text snippet of the body.
func extractDescription(doc *goquery.Selection) string {
	var description string
	doc.Find("meta[name='description']").Each(func(i int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists && description == "" {
			description = strings.TrimSpace(content)
		}
	})
	if description != "" {
		return description
	}

	if body, err := doc.Find("body").Html(); err == nil {
		return textSnippet(body, 200)
	}
	return ""
}

func defaultSitemapURL(siteURL string) (string, error) {
	u, err := url.Parse(siteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid site url %q", siteURL)
	}
	u.Path = "/sitemap.xml"
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
